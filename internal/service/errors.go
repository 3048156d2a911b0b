package service

import (
	"errors"
)

const (
	BadRequest          = 400
	Unauthorized        = 401
	NotFound            = 404
	Conflict            = 409
	InternalServerError = 500
)

var (
	ErrParamInvalid       = errors.New("参数错误")
	ErrCreatorNotFound    = errors.New("创作者不存在")
	ErrContractTier       = errors.New("合约档位无效")
	ErrPostNotFound       = errors.New("帖子不存在")
	ErrPostNotApproved    = errors.New("帖子未通过审核")
	ErrPeriodInvalid      = errors.New("结算周期参数无效")
	ErrPayoutNotFound     = errors.New("结算周期不存在")
	ErrPayoutStateInvalid = errors.New("当前结算状态不允许该操作")
	ErrPayoutConflict     = errors.New("结算状态已被他人修改，请刷新后重试")
	ErrSnapshotRegression = errors.New("播放量低于已记录的快照")
	ErrSnapshotInFuture   = errors.New("快照时间不能晚于当前时间")
	ErrSnapshotNegative   = errors.New("播放量不能为负数")
	ErrStatementEmpty     = errors.New("该月份没有可导出的结算记录")
	ErrStatementBusy      = errors.New("对账单正在导出中，请稍后再试")
	UnauthorizedError     = errors.New("权限不足")
	UnExpectedError       = errors.New("系统异常，请稍后重试")
)

var ErrorMap = map[error]int{
	ErrParamInvalid:       BadRequest,
	ErrCreatorNotFound:    NotFound,
	ErrContractTier:       BadRequest,
	ErrPostNotFound:       NotFound,
	ErrPostNotApproved:    BadRequest,
	ErrPeriodInvalid:      BadRequest,
	ErrPayoutNotFound:     NotFound,
	ErrPayoutStateInvalid: BadRequest,
	ErrPayoutConflict:     Conflict,
	ErrSnapshotRegression: BadRequest,
	ErrSnapshotInFuture:   BadRequest,
	ErrSnapshotNegative:   BadRequest,
	ErrStatementEmpty:     NotFound,
	ErrStatementBusy:      Conflict,
	UnauthorizedError:     Unauthorized,
	UnExpectedError:       InternalServerError,
}
