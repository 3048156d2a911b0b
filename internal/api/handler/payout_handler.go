package handler

import (
	"strconv"

	"github.com/bwmarrin/snowflake"
	"github.com/gin-gonic/gin"

	"Paystone/internal/api/dto"
	"Paystone/internal/pkg/response"
	"Paystone/internal/service"
)

type PayoutHandler struct {
	payoutSvc service.PayoutService
}

func NewPayoutHandler(payoutSvc service.PayoutService) *PayoutHandler {
	return &PayoutHandler{
		payoutSvc: payoutSvc,
	}
}

// parsePeriodPath 解析 /:creator_id/:year/:month 路径参数
func parsePeriodPath(c *gin.Context) (snowflake.ID, int, int, error) {
	creatorID, err := snowflake.ParseString(c.Param("creator_id"))
	if err != nil {
		return 0, 0, 0, service.ErrParamInvalid
	}
	year, err := strconv.Atoi(c.Param("year"))
	if err != nil {
		return 0, 0, 0, service.ErrParamInvalid
	}
	month, err := strconv.Atoi(c.Param("month"))
	if err != nil {
		return 0, 0, 0, service.ErrParamInvalid
	}
	return creatorID, year, month, nil
}

func actorFrom(c *gin.Context) string {
	return strconv.FormatUint(c.GetUint64("user_id"), 10)
}

// List 按条件过滤结算周期
func (h *PayoutHandler) List(c *gin.Context) {
	var query dto.PayoutListQueryDTO
	if err := c.ShouldBindQuery(&query); err != nil {
		response.Error(c, err)
		return
	}

	var creatorID snowflake.ID
	if raw := c.Query("creator_id"); raw != "" {
		id, err := snowflake.ParseString(raw)
		if err != nil {
			response.Error(c, service.ErrParamInvalid)
			return
		}
		creatorID = id
	}

	periods, err := h.payoutSvc.ListPeriods(c.Request.Context(), &query, creatorID)
	if err != nil {
		response.Error(c, err)
		return
	}
	response.Success(c, periods)
}

// Get 读取单个结算周期
func (h *PayoutHandler) Get(c *gin.Context) {
	creatorID, year, month, err := parsePeriodPath(c)
	if err != nil {
		response.Error(c, err)
		return
	}

	period, err := h.payoutSvc.GetPeriod(c.Request.Context(), creatorID, year, month)
	if err != nil {
		response.Error(c, err)
		return
	}
	response.Success(c, period)
}

// Recompute 重算结算周期并返回明细
func (h *PayoutHandler) Recompute(c *gin.Context) {
	creatorID, year, month, err := parsePeriodPath(c)
	if err != nil {
		response.Error(c, err)
		return
	}

	result, err := h.payoutSvc.ComputePeriod(c.Request.Context(), creatorID, year, month)
	if err != nil {
		response.Error(c, err)
		return
	}
	response.Success(c, result)
}

// Approve 审批通过
func (h *PayoutHandler) Approve(c *gin.Context) {
	creatorID, year, month, err := parsePeriodPath(c)
	if err != nil {
		response.Error(c, err)
		return
	}

	period, err := h.payoutSvc.Approve(c.Request.Context(), creatorID, year, month, actorFrom(c))
	if err != nil {
		response.Error(c, err)
		return
	}
	response.Success(c, period)
}

// Pay 打款确认
func (h *PayoutHandler) Pay(c *gin.Context) {
	creatorID, year, month, err := parsePeriodPath(c)
	if err != nil {
		response.Error(c, err)
		return
	}

	period, err := h.payoutSvc.MarkPaid(c.Request.Context(), creatorID, year, month, actorFrom(c))
	if err != nil {
		response.Error(c, err)
		return
	}
	response.Success(c, period)
}

// Revert 撤回审批
func (h *PayoutHandler) Revert(c *gin.Context) {
	creatorID, year, month, err := parsePeriodPath(c)
	if err != nil {
		response.Error(c, err)
		return
	}

	period, err := h.payoutSvc.RevertToPending(c.Request.Context(), creatorID, year, month, actorFrom(c))
	if err != nil {
		response.Error(c, err)
		return
	}
	response.Success(c, period)
}

// MonthToDate 创作者当月实时结算预览
func (h *PayoutHandler) MonthToDate(c *gin.Context) {
	creatorID := snowflake.ID(c.GetUint64("user_id"))

	result, err := h.payoutSvc.MonthToDate(c.Request.Context(), creatorID)
	if err != nil {
		response.Error(c, err)
		return
	}
	response.Success(c, result)
}

// Audits 结算状态流转记录
func (h *PayoutHandler) Audits(c *gin.Context) {
	creatorID, year, month, err := parsePeriodPath(c)
	if err != nil {
		response.Error(c, err)
		return
	}

	audits, err := h.payoutSvc.ListAudits(c.Request.Context(), creatorID, year, month)
	if err != nil {
		response.Error(c, err)
		return
	}
	response.Success(c, audits)
}

// PostAttribution 单帖归因明细
func (h *PayoutHandler) PostAttribution(c *gin.Context) {
	postID, err := snowflake.ParseString(c.Param("post_id"))
	if err != nil {
		response.Error(c, service.ErrParamInvalid)
		return
	}
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

	item, err := h.payoutSvc.PostAttributionView(c.Request.Context(), postID, year, month)
	if err != nil {
		response.Error(c, err)
		return
	}
	response.Success(c, item)
}
