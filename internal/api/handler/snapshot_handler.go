package handler

import (
	"github.com/bwmarrin/snowflake"
	"github.com/gin-gonic/gin"

	"Paystone/internal/api/dto"
	"Paystone/internal/pkg/response"
	"Paystone/internal/service"
)

type SnapshotHandler struct {
	snapshotSvc service.SnapshotService
}

func NewSnapshotHandler(snapshotSvc service.SnapshotService) *SnapshotHandler {
	return &SnapshotHandler{
		snapshotSvc: snapshotSvc,
	}
}

// Ingest 上报一条播放量快照
func (h *SnapshotHandler) Ingest(c *gin.Context) {
	var req dto.SnapshotIngestDTO
	if err := c.ShouldBindJSON(&req); err != nil {
		response.Error(c, err)
		return
	}

	if err := h.snapshotSvc.IngestSnapshot(c.Request.Context(), &req); err != nil {
		response.Error(c, err)
		return
	}
	response.Success(c, nil)
}

// Series 单帖快照序列
func (h *SnapshotHandler) Series(c *gin.Context) {
	postID, err := snowflake.ParseString(c.Param("post_id"))
	if err != nil {
		response.Error(c, service.ErrParamInvalid)
		return
	}

	series, err := h.snapshotSvc.ListSeries(c.Request.Context(), postID)
	if err != nil {
		response.Error(c, err)
		return
	}
	response.Success(c, series)
}
