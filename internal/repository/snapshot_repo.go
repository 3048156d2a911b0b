package repository

import (
	"context"
	"errors"

	"Paystone/internal/model"

	"github.com/bwmarrin/snowflake"
	"gorm.io/gorm"
	"gorm.io/gorm/clause"
)

type SnapshotRepo interface {
	AppendSnapshot(ctx context.Context, snap *model.ViewSnapshot) error
	// ListSnapshots 指定帖子的全部快照，按抓取时间升序
	ListSnapshots(ctx context.Context, postID snowflake.ID) ([]model.ViewSnapshot, error)
	// ListSnapshotsByPosts 批量取多个帖子的快照，按帖子分组返回
	ListSnapshotsByPosts(ctx context.Context, postIDs []snowflake.ID) (map[snowflake.ID][]model.ViewSnapshot, error)
	// GetLatestSnapshot 指定帖子最近一条快照，没有返回 nil
	GetLatestSnapshot(ctx context.Context, postID snowflake.ID) (*model.ViewSnapshot, error)
}

type snapshotRepoImpl struct {
	db *gorm.DB
}

func NewSnapshotRepo(db *gorm.DB) SnapshotRepo {
	return &snapshotRepoImpl{db: db}
}

// AppendSnapshot 同一 (post_id, fetched_at) 重复写入时忽略，保证轮询重放幂等
func (r *snapshotRepoImpl) AppendSnapshot(ctx context.Context, snap *model.ViewSnapshot) error {
	return r.db.WithContext(ctx).Clauses(clause.OnConflict{
		Columns:   []clause.Column{{Name: "post_id"}, {Name: "fetched_at"}},
		DoNothing: true,
	}).Create(snap).Error
}

func (r *snapshotRepoImpl) ListSnapshots(ctx context.Context, postID snowflake.ID) ([]model.ViewSnapshot, error) {
	snaps := make([]model.ViewSnapshot, 0)
	result := r.db.WithContext(ctx).
		Where("post_id = ?", postID).
		Order("fetched_at ASC").
		Find(&snaps)
	if result.Error != nil {
		return nil, result.Error
	}
	return snaps, nil
}

func (r *snapshotRepoImpl) ListSnapshotsByPosts(ctx context.Context, postIDs []snowflake.ID) (map[snowflake.ID][]model.ViewSnapshot, error) {
	if len(postIDs) == 0 {
		return map[snowflake.ID][]model.ViewSnapshot{}, nil
	}

	snaps := make([]model.ViewSnapshot, 0)
	result := r.db.WithContext(ctx).
		Where("post_id IN ?", postIDs).
		Order("fetched_at ASC").
		Find(&snaps)
	if result.Error != nil {
		return nil, result.Error
	}

	grouped := make(map[snowflake.ID][]model.ViewSnapshot, len(postIDs))
	for _, s := range snaps {
		grouped[s.PostID] = append(grouped[s.PostID], s)
	}
	return grouped, nil
}

func (r *snapshotRepoImpl) GetLatestSnapshot(ctx context.Context, postID snowflake.ID) (*model.ViewSnapshot, error) {
	var snap model.ViewSnapshot
	err := r.db.WithContext(ctx).
		Where("post_id = ?", postID).
		Order("fetched_at DESC").
		First(&snap).Error
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, nil
		}
		return nil, err
	}
	return &snap, nil
}
