package dto

import (
	"time"

	"github.com/bwmarrin/snowflake"
)

// SnapshotIngestDTO 快照上报
type SnapshotIngestDTO struct {
	PostID    string    `json:"post_id" binding:"required"`
	FetchedAt time.Time `json:"fetched_at" binding:"required"`
	Views     int64     `json:"views"`
}

// SnapshotDTO 快照
type SnapshotDTO struct {
	PostID    snowflake.ID `json:"post_id"`
	FetchedAt time.Time    `json:"fetched_at"`
	Views     int64        `json:"views"`
}

// SnapshotSeriesDTO 单帖快照序列
type SnapshotSeriesDTO struct {
	PostID    snowflake.ID   `json:"post_id"`
	Snapshots []*SnapshotDTO `json:"snapshots"`
}
