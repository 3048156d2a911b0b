package model

import (
	"time"

	"github.com/bwmarrin/snowflake"
)

// PayoutPeriod 创作者月度结算聚合，(creator_id, period_year, period_month) 唯一
type PayoutPeriod struct {
	ID          snowflake.ID `gorm:"primaryKey" json:"id"`
	CreatorID   snowflake.ID `gorm:"not null;uniqueIndex:ux_creator_period,priority:1" json:"creator_id"`
	PeriodYear  int          `gorm:"not null;uniqueIndex:ux_creator_period,priority:2" json:"period_year"`
	PeriodMonth int          `gorm:"not null;uniqueIndex:ux_creator_period,priority:3" json:"period_month"`

	ContractTier    string `gorm:"type:varchar(32);not null" json:"contract_tier"`
	AttributedViews int64  `gorm:"not null;default:0" json:"attributed_views"`
	PostsCounted    int    `gorm:"not null;default:0" json:"posts_counted"`    // 有快照数据参与归因的帖子数
	ApprovedPosts   int    `gorm:"not null;default:0" json:"approved_posts"`   // 当月审核通过的帖子总数
	UnitPosts       int    `gorm:"not null;default:0" json:"unit_posts"`
	CompositePosts  int    `gorm:"not null;default:0" json:"composite_posts"`
	PairedPosts     int    `gorm:"not null;default:0" json:"paired_posts"`     // 跨平台配对数
	PostsShortfall  int    `gorm:"not null;default:0" json:"posts_shortfall"`
	Qualified       bool   `gorm:"not null;default:0" json:"qualified"`

	FixedAmount float64 `gorm:"type:decimal(12,4);not null;default:0" json:"fixed_amount"`
	CPMAmount   float64 `gorm:"type:decimal(12,4);not null;default:0;column:cpm_amount" json:"cpm_amount"`
	TotalAmount float64 `gorm:"type:decimal(12,4);not null;default:0" json:"total_amount"` // 封顶后金额
	CapApplied  bool    `gorm:"not null;default:0" json:"cap_applied"`

	Status     string     `gorm:"type:varchar(16);not null;default:pending" json:"status"`
	ApprovedAt *time.Time `json:"approved_at"`
	PaidAt     *time.Time `json:"paid_at"`
	ComputedAt time.Time  `json:"computed_at"`
	// Version 乐观锁，状态流转时校验
	Version   int       `gorm:"not null;default:0" json:"version"`
	CreatedAt time.Time `json:"created_at"`
	UpdatedAt time.Time `json:"updated_at"`
}

func (PayoutPeriod) TableName() string {
	return "payout_periods"
}
