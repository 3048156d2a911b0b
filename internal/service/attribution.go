package service

import (
	"math"
	"time"

	"Paystone/internal/model"
	"Paystone/internal/pkg/util"

	"github.com/bwmarrin/snowflake"
)

// PostAttribution 单个帖子在某个自然月内的归因结果
type PostAttribution struct {
	PostID        snowflake.ID `json:"post_id"`
	Views         int64        `json:"views"`
	PeriodStart   time.Time    `json:"period_start"`
	PeriodEnd     time.Time    `json:"period_end"`
	Active        bool         `json:"active"` // 计费窗口尚未结束
	DaysRemaining int          `json:"days_remaining"`
}

// AttributePost 计算帖子在 (year, month) 内、计费窗口范围内新增的播放量。
//
// 归因区间取三者的交集：计费窗口 [createdAt, createdAt+windowDays)、
// 自然月、(-∞, now]。区间为空时归因为 0。快照缺失、乱序等异常一律退化为 0，
// 不返回错误——新发布的帖子没有数据是常态。
func AttributePost(post *model.Post, windowDays int, year int, month int, snaps []model.ViewSnapshot, now time.Time) PostAttribution {
	monthStart, monthEnd := util.MonthBounds(year, month)
	windowEnd := post.CreatedAt.AddDate(0, 0, windowDays)

	periodStart := util.MaxTime(post.CreatedAt, monthStart)
	periodEnd := util.MinTime(windowEnd, util.MinTime(monthEnd, now))

	active := now.Before(windowEnd)
	daysRemaining := 0
	if active {
		// 不足一天按一天算，整天数不再额外进位
		daysRemaining = int(math.Ceil(windowEnd.Sub(now).Hours() / 24))
	}

	out := PostAttribution{
		PostID:        post.ID,
		PeriodStart:   periodStart,
		PeriodEnd:     periodEnd,
		Active:        active,
		DaysRemaining: daysRemaining,
	}

	if periodStart.After(periodEnd) || len(snaps) == 0 {
		return out
	}

	util.SortSnapshots(snaps)
	first := util.FirstSnapshotAtOrAfter(snaps, periodStart)
	last := util.LastSnapshotAtOrBefore(snaps, periodEnd)

	delta := last.Views - first.Views
	if delta < 0 {
		// 平台侧修正过计数时会出现回退，夹到 0
		delta = 0
	}
	out.Views = delta
	return out
}
