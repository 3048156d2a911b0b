package service

import (
	"context"
	"errors"
	"testing"
	"time"

	"gorm.io/driver/sqlite"
	"gorm.io/gorm"

	"Paystone/internal/api/dto"
	"Paystone/internal/model"
	"Paystone/internal/pkg/consts"
	"Paystone/internal/pkg/util"
	"Paystone/internal/repository"
)

func setupSnapshotService(t *testing.T) (SnapshotService, *gorm.DB) {
	t.Helper()

	if err := util.InitIDGenerator(1); err != nil {
		t.Fatalf("init id generator: %v", err)
	}

	db, err := gorm.Open(sqlite.Open(":memory:"), &gorm.Config{})
	if err != nil {
		t.Fatalf("open sqlite: %v", err)
	}
	if err = db.AutoMigrate(&model.Post{}, &model.ViewSnapshot{}); err != nil {
		t.Fatalf("auto migrate: %v", err)
	}

	err = db.Create(&model.Post{
		ID:               2001,
		CreatorID:        1001,
		Platform:         consts.PlatformTikTok,
		Category:         consts.CategoryUnit,
		ModerationStatus: consts.ModerationApproved,
		CreatedAt:        time.Date(2026, time.August, 1, 0, 0, 0, 0, time.UTC),
	}).Error
	if err != nil {
		t.Fatalf("seed post: %v", err)
	}

	svc := NewSnapshotService(repository.NewPostRepo(db), repository.NewSnapshotRepo(db))
	return svc, db
}

func TestIngestSnapshotAppends(t *testing.T) {
	svc, db := setupSnapshotService(t)
	ctx := context.Background()

	err := svc.IngestSnapshot(ctx, &dto.SnapshotIngestDTO{
		PostID:    "2001",
		FetchedAt: time.Date(2026, time.August, 2, 0, 0, 0, 0, time.UTC),
		Views:     100,
	})
	if err != nil {
		t.Fatalf("ingest: %v", err)
	}

	var count int64
	db.Model(&model.ViewSnapshot{}).Count(&count)
	if count != 1 {
		t.Fatalf("expected 1 snapshot, got %d", count)
	}
}

func TestIngestSnapshotRejectsRegression(t *testing.T) {
	svc, _ := setupSnapshotService(t)
	ctx := context.Background()

	err := svc.IngestSnapshot(ctx, &dto.SnapshotIngestDTO{
		PostID:    "2001",
		FetchedAt: time.Date(2026, time.August, 2, 0, 0, 0, 0, time.UTC),
		Views:     500,
	})
	if err != nil {
		t.Fatalf("ingest: %v", err)
	}

	// 更新的时间点却带着更低的累计值
	err = svc.IngestSnapshot(ctx, &dto.SnapshotIngestDTO{
		PostID:    "2001",
		FetchedAt: time.Date(2026, time.August, 3, 0, 0, 0, 0, time.UTC),
		Views:     300,
	})
	if !errors.Is(err, ErrSnapshotRegression) {
		t.Fatalf("expected ErrSnapshotRegression, got %v", err)
	}
}

func TestIngestSnapshotAllowsLateArrival(t *testing.T) {
	svc, _ := setupSnapshotService(t)
	ctx := context.Background()

	err := svc.IngestSnapshot(ctx, &dto.SnapshotIngestDTO{
		PostID:    "2001",
		FetchedAt: time.Date(2026, time.August, 5, 0, 0, 0, 0, time.UTC),
		Views:     500,
	})
	if err != nil {
		t.Fatalf("ingest: %v", err)
	}

	// 晚到的历史快照，数值更低是正常的
	err = svc.IngestSnapshot(ctx, &dto.SnapshotIngestDTO{
		PostID:    "2001",
		FetchedAt: time.Date(2026, time.August, 3, 0, 0, 0, 0, time.UTC),
		Views:     200,
	})
	if err != nil {
		t.Fatalf("late arrival should be accepted: %v", err)
	}
}

func TestIngestSnapshotValidation(t *testing.T) {
	svc, _ := setupSnapshotService(t)
	ctx := context.Background()

	err := svc.IngestSnapshot(ctx, &dto.SnapshotIngestDTO{
		PostID:    "2001",
		FetchedAt: time.Now().Add(time.Hour),
		Views:     1,
	})
	if !errors.Is(err, ErrSnapshotInFuture) {
		t.Fatalf("expected ErrSnapshotInFuture, got %v", err)
	}

	err = svc.IngestSnapshot(ctx, &dto.SnapshotIngestDTO{
		PostID:    "2001",
		FetchedAt: time.Date(2026, time.August, 2, 0, 0, 0, 0, time.UTC),
		Views:     -5,
	})
	if !errors.Is(err, ErrSnapshotNegative) {
		t.Fatalf("expected ErrSnapshotNegative, got %v", err)
	}

	err = svc.IngestSnapshot(ctx, &dto.SnapshotIngestDTO{
		PostID:    "999999",
		FetchedAt: time.Date(2026, time.August, 2, 0, 0, 0, 0, time.UTC),
		Views:     1,
	})
	if !errors.Is(err, ErrPostNotFound) {
		t.Fatalf("expected ErrPostNotFound, got %v", err)
	}
}

func TestListSeriesOrdered(t *testing.T) {
	svc, _ := setupSnapshotService(t)
	ctx := context.Background()

	times := []time.Time{
		time.Date(2026, time.August, 4, 0, 0, 0, 0, time.UTC),
		time.Date(2026, time.August, 2, 0, 0, 0, 0, time.UTC),
		time.Date(2026, time.August, 6, 0, 0, 0, 0, time.UTC),
	}
	views := []int64{200, 100, 300}
	for i := range times {
		err := svc.IngestSnapshot(ctx, &dto.SnapshotIngestDTO{
			PostID:    "2001",
			FetchedAt: times[i],
			Views:     views[i],
		})
		if err != nil {
			t.Fatalf("ingest %d: %v", i, err)
		}
	}

	series, err := svc.ListSeries(ctx, 2001)
	if err != nil {
		t.Fatalf("list series: %v", err)
	}
	if len(series.Snapshots) != 3 {
		t.Fatalf("expected 3 snapshots, got %d", len(series.Snapshots))
	}
	for i := 1; i < len(series.Snapshots); i++ {
		if series.Snapshots[i].FetchedAt.Before(series.Snapshots[i-1].FetchedAt) {
			t.Fatalf("series not ordered by fetched_at")
		}
	}
}
