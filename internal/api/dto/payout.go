package dto

import (
	"time"

	"github.com/bwmarrin/snowflake"
)

// PayoutPeriodDTO 结算周期
type PayoutPeriodDTO struct {
	CreatorID   snowflake.ID `json:"creator_id"`
	PeriodYear  int          `json:"period_year"`
	PeriodMonth int          `json:"period_month"`

	ContractTier    string `json:"contract_tier"`
	AttributedViews int64  `json:"attributed_views"`
	PostsCounted    int    `json:"posts_counted"`
	ApprovedPosts   int    `json:"approved_posts"`
	UnitPosts       int    `json:"unit_posts"`
	CompositePosts  int    `json:"composite_posts"`
	PairedPosts     int    `json:"paired_posts"`
	PostsShortfall  int    `json:"posts_shortfall"`
	Qualified       bool   `json:"qualified"`

	FixedAmount float64 `json:"fixed_amount"`
	CPMAmount   float64 `json:"cpm_amount"`
	TotalAmount float64 `json:"total_amount"`
	CapApplied  bool    `json:"cap_applied"`

	Status     string     `json:"status"`
	ApprovedAt *time.Time `json:"approved_at"`
	PaidAt     *time.Time `json:"paid_at"`
	ComputedAt time.Time  `json:"computed_at"`
}

// PostBreakdownDTO 单帖归因明细，用于解释金额构成
type PostBreakdownDTO struct {
	PostID        snowflake.ID `json:"post_id"`
	URL           string       `json:"url"`
	Platform      string       `json:"platform"`
	Category      string       `json:"category"`
	PostCreatedAt time.Time    `json:"post_created_at"`
	Views         int64        `json:"views"`
	CPMEarned     float64      `json:"cpm_earned"`
	PeriodStart   time.Time    `json:"period_start"`
	PeriodEnd     time.Time    `json:"period_end"`
	Active        bool         `json:"active"`
	DaysRemaining int          `json:"days_remaining"`
}

// ComputeResultDTO 重算结果：周期聚合 + 单帖明细
type ComputeResultDTO struct {
	Period *PayoutPeriodDTO    `json:"period"`
	Posts  []*PostBreakdownDTO `json:"posts"`
}

// PayoutListQueryDTO 列表过滤条件
type PayoutListQueryDTO struct {
	Status string `form:"status" validate:"omitempty,oneof=pending approved paid"`
	Year   int    `form:"year" validate:"omitempty,min=2020,max=2100"`
	Month  int    `form:"month" validate:"omitempty,min=1,max=12"`
}

// PayoutAuditDTO 状态流转审计记录
type PayoutAuditDTO struct {
	Action     string    `json:"action"`
	ActorID    string    `json:"actor_id"`
	FromStatus string    `json:"from_status"`
	ToStatus   string    `json:"to_status"`
	Amount     float64   `json:"amount"`
	CreatedAt  time.Time `json:"created_at"`
}
