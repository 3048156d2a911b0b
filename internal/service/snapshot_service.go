package service

import (
	"context"
	"time"

	"github.com/bwmarrin/snowflake"

	"Paystone/internal/api/dto"
	"Paystone/internal/model"
	"Paystone/internal/pkg/consts"
	"Paystone/internal/pkg/redis"
	"Paystone/internal/pkg/util"
	"Paystone/internal/repository"
)

// fetchedAtSkew 允许上报端与本机时钟的最大偏差
const fetchedAtSkew = 5 * time.Minute

type SnapshotService interface {
	// IngestSnapshot 追加一条播放量快照并标记创作者待重算
	IngestSnapshot(ctx context.Context, req *dto.SnapshotIngestDTO) error
	// ListSeries 返回单帖的全部快照（按抓取时间正序）
	ListSeries(ctx context.Context, postID snowflake.ID) (*dto.SnapshotSeriesDTO, error)
}

type snapshotServiceImpl struct {
	postRepo     repository.PostRepo
	snapshotRepo repository.SnapshotRepo
}

func NewSnapshotService(postRepo repository.PostRepo, snapshotRepo repository.SnapshotRepo) SnapshotService {
	return &snapshotServiceImpl{
		postRepo:     postRepo,
		snapshotRepo: snapshotRepo,
	}
}

func (s *snapshotServiceImpl) IngestSnapshot(ctx context.Context, req *dto.SnapshotIngestDTO) error {
	postID, err := snowflake.ParseString(req.PostID)
	if err != nil {
		return ErrParamInvalid
	}

	if req.Views < 0 {
		return ErrSnapshotNegative
	}
	if req.FetchedAt.After(time.Now().Add(fetchedAtSkew)) {
		return ErrSnapshotInFuture
	}

	post, err := s.postRepo.GetPost(ctx, postID)
	if err != nil {
		return err
	}
	if post == nil {
		return ErrPostNotFound
	}

	// 播放量是平台侧的累计值，晚到的快照不能比已有更新的快照数值更高
	latest, err := s.snapshotRepo.GetLatestSnapshot(ctx, postID)
	if err != nil {
		return err
	}
	if latest != nil && req.FetchedAt.After(latest.FetchedAt) && req.Views < latest.Views {
		return ErrSnapshotRegression
	}

	snap := &model.ViewSnapshot{
		ID:        util.NewID(),
		PostID:    postID,
		FetchedAt: req.FetchedAt,
		Views:     req.Views,
	}
	if err = s.snapshotRepo.AppendSnapshot(ctx, snap); err != nil {
		return err
	}

	// 归因结果依赖快照，标记创作者等待定时任务重算
	_ = redis.SAdd(ctx, consts.PayoutDirtyKey, int64(post.CreatorID))
	_ = redis.DeleteKey(ctx, consts.PayoutMonthToDate+post.CreatorID.String())

	return nil
}

func (s *snapshotServiceImpl) ListSeries(ctx context.Context, postID snowflake.ID) (*dto.SnapshotSeriesDTO, error) {
	post, err := s.postRepo.GetPost(ctx, postID)
	if err != nil {
		return nil, err
	}
	if post == nil {
		return nil, ErrPostNotFound
	}

	snaps, err := s.snapshotRepo.ListSnapshots(ctx, postID)
	if err != nil {
		return nil, err
	}

	res := &dto.SnapshotSeriesDTO{
		PostID:    postID,
		Snapshots: make([]*dto.SnapshotDTO, 0, len(snaps)),
	}
	for _, snap := range snaps {
		res.Snapshots = append(res.Snapshots, &dto.SnapshotDTO{
			PostID:    snap.PostID,
			FetchedAt: snap.FetchedAt,
			Views:     snap.Views,
		})
	}
	return res, nil
}
