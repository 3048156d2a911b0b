package util

import (
	"testing"
	"time"

	"Paystone/internal/model"
)

func ts(day int) time.Time {
	return time.Date(2025, time.May, day, 0, 0, 0, 0, time.UTC)
}

func TestFirstSnapshotAtOrAfter(t *testing.T) {
	snaps := []model.ViewSnapshot{
		{Views: 10, FetchedAt: ts(2)},
		{Views: 20, FetchedAt: ts(10)},
		{Views: 30, FetchedAt: ts(20)},
	}

	got := FirstSnapshotAtOrAfter(snaps, ts(5))
	if got == nil || got.Views != 20 {
		t.Fatalf("expected snapshot at day 10, got %+v", got)
	}

	// 精确命中边界
	got = FirstSnapshotAtOrAfter(snaps, ts(10))
	if got == nil || got.Views != 20 {
		t.Fatalf("expected exact match at day 10, got %+v", got)
	}

	// 全部早于目标时间时回退到最早一条作为基线
	got = FirstSnapshotAtOrAfter(snaps, ts(25))
	if got == nil || got.Views != 10 {
		t.Fatalf("expected fallback to earliest, got %+v", got)
	}
}

func TestLastSnapshotAtOrBefore(t *testing.T) {
	snaps := []model.ViewSnapshot{
		{Views: 10, FetchedAt: ts(2)},
		{Views: 20, FetchedAt: ts(10)},
		{Views: 30, FetchedAt: ts(20)},
	}

	got := LastSnapshotAtOrBefore(snaps, ts(15))
	if got == nil || got.Views != 20 {
		t.Fatalf("expected snapshot at day 10, got %+v", got)
	}

	// 全部晚于目标时间时回退到最晚一条
	got = LastSnapshotAtOrBefore(snaps, ts(1))
	if got == nil || got.Views != 30 {
		t.Fatalf("expected fallback to latest, got %+v", got)
	}
}

func TestSnapshotHelpersEmptyInput(t *testing.T) {
	if FirstSnapshotAtOrAfter(nil, ts(1)) != nil {
		t.Fatalf("expected nil for empty input")
	}
	if LastSnapshotAtOrBefore(nil, ts(1)) != nil {
		t.Fatalf("expected nil for empty input")
	}
}

func TestSortSnapshots(t *testing.T) {
	snaps := []model.ViewSnapshot{
		{FetchedAt: ts(20)},
		{FetchedAt: ts(2)},
		{FetchedAt: ts(10)},
	}
	SortSnapshots(snaps)

	for i := 1; i < len(snaps); i++ {
		if snaps[i].FetchedAt.Before(snaps[i-1].FetchedAt) {
			t.Fatalf("snapshots not sorted ascending")
		}
	}
}

func TestMonthBounds(t *testing.T) {
	start, end := MonthBounds(2025, 2)
	if !start.Equal(time.Date(2025, time.February, 1, 0, 0, 0, 0, time.UTC)) {
		t.Fatalf("unexpected month start: %v", start)
	}
	if end.Month() != time.February || end.Day() != 28 {
		t.Fatalf("unexpected month end: %v", end)
	}
}

func TestRoundCents(t *testing.T) {
	if got := RoundCents(3.125); got != 3.13 {
		t.Fatalf("expected 3.13, got %v", got)
	}
	if got := RoundCents(10.004); got != 10.0 {
		t.Fatalf("expected 10.0, got %v", got)
	}
}
