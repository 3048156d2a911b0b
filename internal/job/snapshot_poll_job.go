package job

import (
	"context"
	"fmt"
	log "log/slog"
	"strconv"
	"time"

	"github.com/go-resty/resty/v2"
	"github.com/google/uuid"

	"Paystone/internal/api/config"
	"Paystone/internal/api/dto"
	"Paystone/internal/pkg/consts"
	"Paystone/internal/pkg/logger"
	"Paystone/internal/pkg/redis"
	"Paystone/internal/repository"
	"Paystone/internal/service"
)

// statsResponse 播放量统计接口的返回体
type statsResponse struct {
	PostID    string    `json:"post_id"`
	Views     int64     `json:"views"`
	FetchedAt time.Time `json:"fetched_at"`
}

// SnapshotPollJob 对所有仍在计费窗口内的帖子主动拉取播放量，
// 作为平台推送链路之外的兜底数据源
type SnapshotPollJob struct {
	postRepo    repository.PostRepo
	snapshotSvc service.SnapshotService
	httpClient  *resty.Client
}

func NewSnapshotPollJob(postRepo repository.PostRepo, snapshotSvc service.SnapshotService) *SnapshotPollJob {
	cfg := config.Cfg.Stats
	client := resty.New().
		SetBaseURL(cfg.BaseURL).
		SetTimeout(time.Duration(cfg.Timeout) * time.Second).
		SetAuthToken(cfg.Token).
		SetRetryCount(2)

	return &SnapshotPollJob{
		postRepo:    postRepo,
		snapshotSvc: snapshotSvc,
		httpClient:  client,
	}
}

func (s *SnapshotPollJob) Run() {
	if config.Cfg.Stats.BaseURL == "" {
		return
	}

	traceID := "job-snapshot-poll-" + uuid.NewString()
	ctx := context.WithValue(context.Background(), logger.TraceIDKey, traceID)

	windowStart := time.Now().UTC().AddDate(0, 0, -config.Cfg.Pricing.WindowDays)
	posts, err := s.postRepo.ListPostsInWindow(ctx, windowStart)
	if err != nil {
		log.ErrorContext(ctx, "list posts in window error", "err", err)
		return
	}

	polled, ingested := 0, 0
	for _, post := range posts {
		var stats statsResponse
		resp, err := s.httpClient.R().
			SetContext(ctx).
			SetPathParam("platform", post.Platform).
			SetQueryParam("url", post.URL).
			SetResult(&stats).
			Get("/v1/{platform}/views")
		if err != nil {
			log.WarnContext(ctx, "poll stats error", "post_id", post.ID.String(), "err", err)
			continue
		}
		if resp.IsError() {
			log.WarnContext(ctx, "poll stats bad status", "post_id", post.ID.String(), "status", resp.StatusCode())
			continue
		}
		polled++

		fetchedAt := stats.FetchedAt
		if fetchedAt.IsZero() {
			fetchedAt = time.Now().UTC()
		}

		// 数值没变化就不落快照，避免表被轮询灌满
		lastSeenKey := consts.SnapshotLastSeenKey + post.ID.String()
		if lastSeen, err := redis.GetValue(ctx, lastSeenKey); err == nil && lastSeen == strconv.FormatInt(stats.Views, 10) {
			continue
		}

		err = s.snapshotSvc.IngestSnapshot(ctx, &dto.SnapshotIngestDTO{
			PostID:    post.ID.String(),
			FetchedAt: fetchedAt,
			Views:     stats.Views,
		})
		if err != nil {
			log.WarnContext(ctx, "ingest polled snapshot error", "post_id", post.ID.String(), "err", err)
			continue
		}
		ingested++

		_ = redis.SetWithExpiration(ctx, lastSeenKey, fmt.Sprintf("%d", stats.Views), 48*time.Hour)
	}

	log.InfoContext(ctx, "snapshot poll finished",
		"tracked", len(posts),
		"polled", polled,
		"ingested", ingested,
	)
}
