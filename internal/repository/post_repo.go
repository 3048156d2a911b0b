package repository

import (
	"context"
	"errors"
	"time"

	"Paystone/internal/model"
	"Paystone/internal/pkg/consts"

	"github.com/bwmarrin/snowflake"
	"gorm.io/gorm"
)

type PostRepo interface {
	GetPost(ctx context.Context, postID snowflake.ID) (*model.Post, error)
	CreatePost(ctx context.Context, post *model.Post) error
	// ListApprovedPostsInRange 指定创作者、发布时间落在 [from, to] 内的过审帖子
	ListApprovedPostsInRange(ctx context.Context, creatorID snowflake.ID, from, to time.Time) ([]*model.Post, error)
	// ListPostsInWindow 计费窗口尚未结束的全部过审帖子（快照轮询用）
	ListPostsInWindow(ctx context.Context, windowStart time.Time) ([]*model.Post, error)
}

type postRepoImpl struct {
	db *gorm.DB
}

func NewPostRepo(db *gorm.DB) PostRepo {
	return &postRepoImpl{db: db}
}

func (r *postRepoImpl) GetPost(ctx context.Context, postID snowflake.ID) (*model.Post, error) {
	var post model.Post
	err := r.db.WithContext(ctx).Where("id = ?", postID).First(&post).Error
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, nil
		}
		return nil, err
	}
	return &post, nil
}

func (r *postRepoImpl) CreatePost(ctx context.Context, post *model.Post) error {
	return r.db.WithContext(ctx).Create(post).Error
}

func (r *postRepoImpl) ListApprovedPostsInRange(ctx context.Context, creatorID snowflake.ID, from, to time.Time) ([]*model.Post, error) {
	posts := make([]*model.Post, 0)
	result := r.db.WithContext(ctx).
		Where("creator_id = ?", creatorID).
		Where("moderation_status = ?", consts.ModerationApproved).
		Where("created_at >= ? AND created_at <= ?", from, to).
		Order("created_at ASC").
		Find(&posts)
	if result.Error != nil {
		return nil, result.Error
	}
	return posts, nil
}

func (r *postRepoImpl) ListPostsInWindow(ctx context.Context, windowStart time.Time) ([]*model.Post, error) {
	posts := make([]*model.Post, 0)
	result := r.db.WithContext(ctx).
		Where("moderation_status = ?", consts.ModerationApproved).
		Where("created_at >= ?", windowStart).
		Order("created_at ASC").
		Find(&posts)
	if result.Error != nil {
		return nil, result.Error
	}
	return posts, nil
}
