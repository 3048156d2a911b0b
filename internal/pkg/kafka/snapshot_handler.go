package kafka

import (
	"context"
	"errors"
	log "log/slog"
	"time"

	"github.com/IBM/sarama"
	"github.com/goccy/go-json"
	pkgerrors "github.com/pkg/errors"

	"Paystone/internal/api/dto"
	"Paystone/internal/service"
)

// snapshotMessage 平台抓取端上报的播放量快照
type snapshotMessage struct {
	PostID    string    `json:"post_id"`
	FetchedAt time.Time `json:"fetched_at"`
	Views     int64     `json:"views"`
}

type SnapshotHandler struct {
	snapshotService service.SnapshotService
}

func NewSnapshotHandler(snapshotService service.SnapshotService) *SnapshotHandler {
	return &SnapshotHandler{snapshotService: snapshotService}
}

func (s *SnapshotHandler) Setup(sarama.ConsumerGroupSession) error {
	log.Info("snapshot consumer setup")
	return nil
}

func (s *SnapshotHandler) Cleanup(sarama.ConsumerGroupSession) error {
	log.Info("snapshot consumer cleanup")
	return nil
}

func (s *SnapshotHandler) ConsumeClaim(session sarama.ConsumerGroupSession, claim sarama.ConsumerGroupClaim) error {
	log.Info("topic-snapshot consume claim")
	err := pullMessageBatch(session, claim, s.logic)
	if err != nil {
		log.Error("topic-snapshot process batch error", "err", err)
		return err
	}
	return nil
}

func (s *SnapshotHandler) logic(ctx context.Context, msg *sarama.ConsumerMessage) error {
	var m snapshotMessage
	if err := json.Unmarshal(msg.Value, &m); err != nil {
		// 坏消息没有重试价值，记日志后吞掉
		log.ErrorContext(ctx, "unmarshal snapshot message error", "err", err, "value", string(msg.Value))
		return nil
	}

	err := s.snapshotService.IngestSnapshot(ctx, &dto.SnapshotIngestDTO{
		PostID:    m.PostID,
		FetchedAt: m.FetchedAt,
		Views:     m.Views,
	})
	if err == nil {
		return nil
	}

	// 业务校验失败（未知帖子、计数回退等）同样不可重试，丢弃即可
	if isBusinessError(err) {
		log.WarnContext(ctx, "snapshot message dropped",
			"post_id", m.PostID,
			"reason", err.Error(),
		)
		return nil
	}

	return pkgerrors.Wrapf(err, "ingest snapshot for post %s", m.PostID)
}

func isBusinessError(err error) bool {
	for businessErr := range service.ErrorMap {
		if errors.Is(err, businessErr) {
			return true
		}
	}
	return false
}
