package handler

import (
	"strconv"

	"github.com/gin-gonic/gin"

	"Paystone/internal/pkg/response"
	"Paystone/internal/service"
)

type StatementHandler struct {
	statementSvc service.StatementService
}

func NewStatementHandler(statementSvc service.StatementService) *StatementHandler {
	return &StatementHandler{
		statementSvc: statementSvc,
	}
}

// Export 导出月度对账单
func (h *StatementHandler) Export(c *gin.Context) {
	year, err := strconv.Atoi(c.Param("year"))
	if err != nil {
		response.Error(c, service.ErrParamInvalid)
		return
	}
	month, err := strconv.Atoi(c.Param("month"))
	if err != nil {
		response.Error(c, service.ErrParamInvalid)
		return
	}

	url, err := h.statementSvc.ExportMonthly(c.Request.Context(), year, month)
	if err != nil {
		response.Error(c, err)
		return
	}
	response.Success(c, gin.H{"url": url})
}
