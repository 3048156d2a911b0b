package model

import (
	"time"

	"github.com/bwmarrin/snowflake"
)

type Post struct {
	ID               snowflake.ID `gorm:"primaryKey" json:"id"`
	CreatorID        snowflake.ID `gorm:"not null;index:idx_creator_created" json:"creator_id"`
	URL              string       `gorm:"type:varchar(512)" json:"url"`
	Platform         string       `gorm:"type:varchar(32);not null" json:"platform"`
	Category         string       `gorm:"type:varchar(32);not null" json:"category"`
	ModerationStatus string       `gorm:"type:varchar(32);not null;default:pending;index" json:"moderation_status"`
	// CreatedAt 即发布时间，锚定计费窗口，写入后不可变更
	CreatedAt time.Time `gorm:"not null;index:idx_creator_created" json:"created_at"`

	Creator Creator `gorm:"foreignKey:CreatorID;references:ID" json:"-"`
}

func (Post) TableName() string {
	return "posts"
}
