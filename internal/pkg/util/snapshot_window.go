package util

import (
	"sort"
	"time"

	"Paystone/internal/model"
)

// SortSnapshots 按抓取时间升序排列（原地排序）
func SortSnapshots(snaps []model.ViewSnapshot) {
	sort.Slice(snaps, func(i, j int) bool {
		return snaps[i].FetchedAt.Before(snaps[j].FetchedAt)
	})
}

// FirstSnapshotAtOrAfter 取第一条不早于 t 的快照。
// 全部早于 t 时回退到最早一条，作为已知基线而不是直接归零。
// 入参需已按 FetchedAt 升序排列。
func FirstSnapshotAtOrAfter(snaps []model.ViewSnapshot, t time.Time) *model.ViewSnapshot {
	if len(snaps) == 0 {
		return nil
	}
	for i := range snaps {
		if !snaps[i].FetchedAt.Before(t) {
			return &snaps[i]
		}
	}
	return &snaps[0]
}

// LastSnapshotAtOrBefore 取最后一条不晚于 t 的快照。
// 全部晚于 t 时回退到最晚一条。入参需已按 FetchedAt 升序排列。
func LastSnapshotAtOrBefore(snaps []model.ViewSnapshot, t time.Time) *model.ViewSnapshot {
	if len(snaps) == 0 {
		return nil
	}
	for i := len(snaps) - 1; i >= 0; i-- {
		if !snaps[i].FetchedAt.After(t) {
			return &snaps[i]
		}
	}
	return &snaps[len(snaps)-1]
}
