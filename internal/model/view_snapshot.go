package model

import (
	"time"

	"github.com/bwmarrin/snowflake"
)

// ViewSnapshot 帖子累计播放量快照，只追加不修改
type ViewSnapshot struct {
	ID        snowflake.ID `gorm:"primaryKey" json:"id"`
	PostID    snowflake.ID `gorm:"not null;index:idx_post_fetched,unique" json:"post_id"`
	FetchedAt time.Time    `gorm:"not null;index:idx_post_fetched,unique;column:fetched_at" json:"fetched_at"`
	Views     int64        `gorm:"not null;default:0" json:"views"`
	CreatedAt time.Time    `json:"created_at"`
}

func (ViewSnapshot) TableName() string {
	return "view_snapshots"
}
