package util

import (
	"github.com/bwmarrin/snowflake"
)

var idNode *snowflake.Node

// InitIDGenerator 初始化雪花 ID 节点，启动时调用一次
func InitIDGenerator(nodeID int64) error {
	node, err := snowflake.NewNode(nodeID)
	if err != nil {
		return err
	}
	idNode = node
	return nil
}

// NewID 生成一个新的雪花 ID
func NewID() snowflake.ID {
	return idNode.Generate()
}
