package api

import "Paystone/internal/api/handler"

// HandlersGroup 封装了所有已初始化的 Handler 实例
type HandlersGroup struct {
	PayoutHandler    *handler.PayoutHandler
	SnapshotHandler  *handler.SnapshotHandler
	StatementHandler *handler.StatementHandler
}
