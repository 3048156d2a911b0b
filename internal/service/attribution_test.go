package service

import (
	"testing"
	"time"

	"github.com/stretchr/testify/require"

	"Paystone/internal/model"
)

func snap(views int64, fetchedAt time.Time) model.ViewSnapshot {
	return model.ViewSnapshot{Views: views, FetchedAt: fetchedAt}
}

func utcDate(year int, month time.Month, day int) time.Time {
	return time.Date(year, month, day, 0, 0, 0, 0, time.UTC)
}

func TestAttributePostSplitsAcrossMonths(t *testing.T) {
	post := &model.Post{ID: 1, CreatedAt: utcDate(2025, time.January, 20)}
	snaps := []model.ViewSnapshot{
		snap(0, utcDate(2025, time.January, 20)),
		snap(1000, utcDate(2025, time.January, 31)),
		snap(1500, utcDate(2025, time.February, 10)),
		snap(1800, utcDate(2025, time.February, 18)),
	}
	now := utcDate(2025, time.March, 1)

	jan := AttributePost(post, 30, 2025, 1, snaps, now)
	require.Equal(t, int64(1000), jan.Views)
	require.False(t, jan.Active)

	feb := AttributePost(post, 30, 2025, 2, snaps, now)
	require.Equal(t, int64(300), feb.Views)

	// 两个月加起来不能超过实际增量
	require.LessOrEqual(t, jan.Views+feb.Views, int64(1800))
}

func TestAttributePostWindowEndedBeforeMonth(t *testing.T) {
	// 1 月 1 日发布，30 天窗口在 1 月 31 日结束，2 月没有任何归因
	post := &model.Post{ID: 2, CreatedAt: utcDate(2025, time.January, 1)}
	snaps := []model.ViewSnapshot{
		snap(0, utcDate(2025, time.January, 1)),
		snap(5000, utcDate(2025, time.February, 15)),
	}

	att := AttributePost(post, 30, 2025, 2, snaps, utcDate(2025, time.March, 1))
	require.Equal(t, int64(0), att.Views)
}

func TestAttributePostIgnoresViewsAfterWindowEnd(t *testing.T) {
	post := &model.Post{ID: 3, CreatedAt: utcDate(2025, time.March, 1)}
	snaps := []model.ViewSnapshot{
		snap(0, utcDate(2025, time.March, 1)),
		snap(2000, utcDate(2025, time.March, 30)),
		// 窗口结束后又涨了，这部分不计费
		snap(9000, utcDate(2025, time.April, 20)),
	}

	march := AttributePost(post, 30, 2025, 3, snaps, utcDate(2025, time.May, 1))
	require.Equal(t, int64(2000), march.Views)

	april := AttributePost(post, 30, 2025, 4, snaps, utcDate(2025, time.May, 1))
	require.Equal(t, int64(0), april.Views)
}

func TestAttributePostClampsRegression(t *testing.T) {
	post := &model.Post{ID: 4, CreatedAt: utcDate(2025, time.June, 1)}
	snaps := []model.ViewSnapshot{
		snap(800, utcDate(2025, time.June, 2)),
		snap(500, utcDate(2025, time.June, 20)),
	}

	att := AttributePost(post, 30, 2025, 6, snaps, utcDate(2025, time.July, 5))
	require.Equal(t, int64(0), att.Views)
}

func TestAttributePostNoSnapshots(t *testing.T) {
	post := &model.Post{ID: 5, CreatedAt: utcDate(2025, time.June, 1)}

	att := AttributePost(post, 30, 2025, 6, nil, utcDate(2025, time.June, 15))
	require.Equal(t, int64(0), att.Views)
	require.True(t, att.Active)
	require.Greater(t, att.DaysRemaining, 0)
}

func TestAttributePostDaysRemaining(t *testing.T) {
	// 6 月 1 日发布，30 天窗口在 7 月 1 日零点结束
	post := &model.Post{ID: 7, CreatedAt: utcDate(2025, time.June, 1)}

	// 剩整 48 小时就是 2 天，不多算一天
	att := AttributePost(post, 30, 2025, 6, nil, utcDate(2025, time.June, 29))
	require.Equal(t, 2, att.DaysRemaining)

	// 剩 36 小时向上取整到 2 天
	att = AttributePost(post, 30, 2025, 6, nil, time.Date(2025, time.June, 29, 12, 0, 0, 0, time.UTC))
	require.Equal(t, 2, att.DaysRemaining)

	// 窗口已结束
	att = AttributePost(post, 30, 2025, 7, nil, utcDate(2025, time.July, 2))
	require.False(t, att.Active)
	require.Equal(t, 0, att.DaysRemaining)
}

func TestAttributePostPeriodClampedToNow(t *testing.T) {
	post := &model.Post{ID: 6, CreatedAt: utcDate(2025, time.June, 1)}
	now := utcDate(2025, time.June, 10)
	snaps := []model.ViewSnapshot{
		snap(100, utcDate(2025, time.June, 2)),
		snap(600, utcDate(2025, time.June, 9)),
	}

	att := AttributePost(post, 30, 2025, 6, snaps, now)
	require.Equal(t, int64(500), att.Views)
	require.True(t, att.PeriodEnd.Equal(now))
	require.True(t, att.Active)
}
