package repository

import (
	"context"
	"errors"
	"time"

	"Paystone/internal/model"

	"github.com/bwmarrin/snowflake"
	"gorm.io/gorm"
	"gorm.io/gorm/clause"
)

// PayoutFilter 结算周期查询条件，零值字段不参与过滤
type PayoutFilter struct {
	CreatorID snowflake.ID
	Status    string
	Year      int
	Month     int
}

type PayoutRepo interface {
	// UpsertFinancials 按 (creator_id, period_year, period_month) 写入财务字段。
	// 冲突时只更新金额与统计列，不碰 status / approved_at / paid_at / version，
	// 保证重算永远不会偷偷改掉审批状态
	UpsertFinancials(ctx context.Context, period *model.PayoutPeriod) error
	GetPeriod(ctx context.Context, creatorID snowflake.ID, year, month int) (*model.PayoutPeriod, error)
	ListPeriods(ctx context.Context, filter PayoutFilter) ([]*model.PayoutPeriod, error)
	// TransitionStatus 乐观锁状态流转：status 与 version 同时匹配才会生效，
	// 返回受影响行数，0 行代表并发冲突或状态已变
	TransitionStatus(ctx context.Context, creatorID snowflake.ID, year, month int, fromStatus string, version int, updates map[string]any) (int64, error)
}

type payoutRepoImpl struct {
	db *gorm.DB
}

func NewPayoutRepo(db *gorm.DB) PayoutRepo {
	return &payoutRepoImpl{db: db}
}

var payoutFinancialColumns = []string{
	"contract_tier",
	"attributed_views",
	"posts_counted",
	"approved_posts",
	"unit_posts",
	"composite_posts",
	"paired_posts",
	"posts_shortfall",
	"qualified",
	"fixed_amount",
	"cpm_amount",
	"total_amount",
	"cap_applied",
	"computed_at",
	"updated_at",
}

func (r *payoutRepoImpl) UpsertFinancials(ctx context.Context, period *model.PayoutPeriod) error {
	period.UpdatedAt = time.Now().UTC()
	return r.db.WithContext(ctx).Clauses(clause.OnConflict{
		Columns: []clause.Column{
			{Name: "creator_id"},
			{Name: "period_year"},
			{Name: "period_month"},
		},
		DoUpdates: clause.AssignmentColumns(payoutFinancialColumns),
	}).Create(period).Error
}

func (r *payoutRepoImpl) GetPeriod(ctx context.Context, creatorID snowflake.ID, year, month int) (*model.PayoutPeriod, error) {
	var period model.PayoutPeriod
	err := r.db.WithContext(ctx).
		Where("creator_id = ? AND period_year = ? AND period_month = ?", creatorID, year, month).
		First(&period).Error
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, nil
		}
		return nil, err
	}
	return &period, nil
}

func (r *payoutRepoImpl) ListPeriods(ctx context.Context, filter PayoutFilter) ([]*model.PayoutPeriod, error) {
	periods := make([]*model.PayoutPeriod, 0)

	query := r.db.WithContext(ctx).Model(&model.PayoutPeriod{})
	if filter.CreatorID != 0 {
		query = query.Where("creator_id = ?", filter.CreatorID)
	}
	if filter.Status != "" {
		query = query.Where("status = ?", filter.Status)
	}
	if filter.Year != 0 {
		query = query.Where("period_year = ?", filter.Year)
	}
	if filter.Month != 0 {
		query = query.Where("period_month = ?", filter.Month)
	}

	result := query.
		Order("period_year DESC, period_month DESC, creator_id ASC").
		Find(&periods)
	if result.Error != nil {
		return nil, result.Error
	}
	return periods, nil
}

func (r *payoutRepoImpl) TransitionStatus(ctx context.Context, creatorID snowflake.ID, year, month int, fromStatus string, version int, updates map[string]any) (int64, error) {
	updates["version"] = version + 1
	result := r.db.WithContext(ctx).
		Model(&model.PayoutPeriod{}).
		Where("creator_id = ? AND period_year = ? AND period_month = ?", creatorID, year, month).
		Where("status = ? AND version = ?", fromStatus, version).
		Updates(updates)
	if result.Error != nil {
		return 0, result.Error
	}
	return result.RowsAffected, nil
}
