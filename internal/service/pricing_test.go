package service

import (
	"testing"
	"time"

	"github.com/stretchr/testify/require"

	"Paystone/internal/model"
	"Paystone/internal/pkg/consts"
)

func perfTierConfig() TierConfig {
	return TierConfig{
		CPMRate:          0.5,
		UnitPostFee:      3.125,
		CompositePostFee: 6.25,
		CrossPostFee:     1.5,
		MonthlyCap:       5000,
		MinMonthlyPosts:  4,
		EnforceMinPosts:  true,
		PairingWindow:    consts.PairingWindowMonth,
	}
}

func TestPriceMonthPerformanceBreakdown(t *testing.T) {
	got := PriceMonth(consts.TierPerformanceBased, perfTierConfig(), PriceInput{
		AttributedViews: 100_000,
		UnitPosts:       4,
		CompositePosts:  2,
		PairedPosts:     1,
		ApprovedPosts:   6,
	})

	// CPM: 100000/1000*0.5 = 50；固定费: 4*3.125 + 2*6.25 + 1*1.5 = 26.5
	require.Equal(t, 26.5, got.FixedAmount)
	require.Equal(t, 50.0, got.CPMAmount)
	require.Equal(t, 76.5, got.TotalAmount)
	require.True(t, got.Qualified)
	require.False(t, got.CapApplied)
	require.Equal(t, 0, got.PostsShortfall)
}

func TestPriceMonthShortfallZeroesFixedOnly(t *testing.T) {
	got := PriceMonth(consts.TierPerformanceBased, perfTierConfig(), PriceInput{
		AttributedViews: 20_000,
		UnitPosts:       3,
		ApprovedPosts:   3,
	})

	require.False(t, got.Qualified)
	require.Equal(t, 1, got.PostsShortfall)
	// 未达门槛只清零固定费，CPM 照常结算
	require.Equal(t, 0.0, got.FixedAmount)
	require.Equal(t, 10.0, got.CPMAmount)
	require.Equal(t, 10.0, got.TotalAmount)
}

func TestPriceMonthShortfallWithoutEnforcement(t *testing.T) {
	cfg := perfTierConfig()
	cfg.EnforceMinPosts = false

	got := PriceMonth(consts.TierPerformanceBased, cfg, PriceInput{
		UnitPosts:     2,
		ApprovedPosts: 2,
	})

	require.False(t, got.Qualified)
	require.Equal(t, 2, got.PostsShortfall)
	require.Equal(t, 6.25, got.FixedAmount)
}

func TestPriceMonthCapKeepsFixedFirst(t *testing.T) {
	got := PriceMonth(consts.TierPerformanceBased, perfTierConfig(), PriceInput{
		AttributedViews: 12_000_000, // CPM 6000，远超封顶
		UnitPosts:       12,
		ApprovedPosts:   12,
	})

	require.True(t, got.CapApplied)
	require.Equal(t, 5000.0, got.TotalAmount)
	require.Equal(t, 37.5, got.FixedAmount)
	require.Equal(t, 4962.5, got.CPMAmount)
	require.Equal(t, got.TotalAmount, got.FixedAmount+got.CPMAmount)
}

func TestPriceMonthFixedRateTier(t *testing.T) {
	got := PriceMonth(consts.TierFixedRate, TierConfig{MonthlyFixedAmount: 1200}, PriceInput{
		AttributedViews: 999_999,
	})

	require.Equal(t, 1200.0, got.FixedAmount)
	require.Equal(t, 0.0, got.CPMAmount)
	require.Equal(t, 1200.0, got.TotalAmount)
	require.True(t, got.Qualified)
}

func TestApplyCapNeverExceedsCap(t *testing.T) {
	res := ApplyCap(4990, 100, 5000)
	require.True(t, res.CapApplied)
	require.Equal(t, 5000.0, res.CappedTotal)
	require.Equal(t, 10.0, res.CappedIncrement)

	// 已经打满之后增量恒为 0
	res = ApplyCap(5000, 50, 5000)
	require.Equal(t, 0.0, res.CappedIncrement)
	require.Equal(t, 0.0, res.RemainingBudget)
}

func TestApplyCapUncapped(t *testing.T) {
	res := ApplyCap(100, 200, 0)
	require.False(t, res.CapApplied)
	require.Equal(t, 300.0, res.CappedTotal)
	require.Equal(t, 200.0, res.CappedIncrement)
}

func pairedPost(platform string, day int) *model.Post {
	return &model.Post{
		Platform:  platform,
		CreatedAt: time.Date(2025, time.May, day, 12, 0, 0, 0, time.UTC),
	}
}

func TestCountPairedPostsMonthWindow(t *testing.T) {
	posts := []*model.Post{
		pairedPost(consts.PlatformTikTok, 1),
		pairedPost(consts.PlatformTikTok, 5),
		pairedPost(consts.PlatformTikTok, 9),
		pairedPost(consts.PlatformInstagram, 20),
		pairedPost(consts.PlatformInstagram, 25),
	}

	require.Equal(t, 2, CountPairedPosts(posts, consts.PairingWindowMonth))
}

func TestCountPairedPostsDayWindow(t *testing.T) {
	posts := []*model.Post{
		// 同一天各一条，配上
		pairedPost(consts.PlatformTikTok, 1),
		pairedPost(consts.PlatformInstagram, 1),
		// 不同天，day 口径配不上
		pairedPost(consts.PlatformTikTok, 5),
		pairedPost(consts.PlatformInstagram, 20),
	}

	require.Equal(t, 1, CountPairedPosts(posts, consts.PairingWindowDay))
	require.Equal(t, 2, CountPairedPosts(posts, consts.PairingWindowMonth))
}
