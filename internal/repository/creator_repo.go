package repository

import (
	"context"
	"errors"
	"time"

	"Paystone/internal/model"

	"github.com/bwmarrin/snowflake"
	"gorm.io/gorm"
)

type CreatorRepo interface {
	GetCreator(ctx context.Context, creatorID snowflake.ID) (*model.Creator, error)
	CreateCreator(ctx context.Context, creator *model.Creator) error
	ListCreatorsWithApprovedPosts(ctx context.Context, from, to time.Time) ([]snowflake.ID, error)
	ListActiveFixedRateCreators(ctx context.Context, before time.Time) ([]snowflake.ID, error)
}

type creatorRepoImpl struct {
	db *gorm.DB
}

func NewCreatorRepo(db *gorm.DB) CreatorRepo {
	return &creatorRepoImpl{db: db}
}

func (r *creatorRepoImpl) GetCreator(ctx context.Context, creatorID snowflake.ID) (*model.Creator, error) {
	var creator model.Creator
	err := r.db.WithContext(ctx).Where("id = ?", creatorID).First(&creator).Error
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, nil
		}
		return nil, err
	}
	return &creator, nil
}

func (r *creatorRepoImpl) CreateCreator(ctx context.Context, creator *model.Creator) error {
	return r.db.WithContext(ctx).Create(creator).Error
}

// ListCreatorsWithApprovedPosts 时间段内有过审帖子的创作者去重列表（月结时用）
func (r *creatorRepoImpl) ListCreatorsWithApprovedPosts(ctx context.Context, from, to time.Time) ([]snowflake.ID, error) {
	var ids []snowflake.ID
	err := r.db.WithContext(ctx).
		Model(&model.Post{}).
		Distinct("creator_id").
		Where("moderation_status = ?", "approved").
		Where("created_at >= ? AND created_at <= ?", from, to).
		Pluck("creator_id", &ids).Error
	if err != nil {
		return nil, err
	}
	return ids, nil
}

// ListActiveFixedRateCreators 指定时刻前已过入驻审核的包月创作者。
// 包月档没发帖也有固定金额，月结不能只看发帖记录
func (r *creatorRepoImpl) ListActiveFixedRateCreators(ctx context.Context, before time.Time) ([]snowflake.ID, error) {
	var ids []snowflake.ID
	err := r.db.WithContext(ctx).
		Model(&model.Creator{}).
		Where("contract_tier = ?", "fixed_rate").
		Where("approved_at IS NOT NULL AND approved_at <= ?", before).
		Pluck("id", &ids).Error
	if err != nil {
		return nil, err
	}
	return ids, nil
}
