package service

import (
	"Paystone/internal/model"
	"Paystone/internal/pkg/consts"
	"Paystone/internal/pkg/util"
)

// TierConfig 合约档位参数，由调用方注入，不读全局状态，
// 便于并行验证多套费率和追溯历史合约
type TierConfig struct {
	CPMRate          float64 // 每 1000 次播放的单价
	UnitPostFee      float64 // 单条视频固定费
	CompositePostFee float64 // 轮播帖固定费
	CrossPostFee     float64 // 跨平台配对加成，可为 0
	MonthlyCap       float64 // 月度封顶，<=0 表示不封顶
	MinMonthlyPosts  int     // 解锁固定费的最低月审核通过帖数，0 表示不设门槛
	EnforceMinPosts  bool    // 未达门槛时是否将固定费清零
	PairingWindow    string  // 配对统计口径：month / day

	MonthlyFixedAmount float64 // fixed_rate 档位的月度固定金额
}

// PriceInput 单个创作者的月度聚合输入
type PriceInput struct {
	AttributedViews int64
	UnitPosts       int
	CompositePosts  int
	PairedPosts     int
	ApprovedPosts   int
}

// PriceBreakdown 金额拆解。永远返回结构化结果而非单个数字，
// 调用方必须能解释每一笔金额的构成
type PriceBreakdown struct {
	FixedAmount     float64 `json:"fixed_amount"`
	CPMAmount       float64 `json:"cpm_amount"`
	TotalAmount     float64 `json:"total_amount"`
	Qualified       bool    `json:"qualified"`
	PostsShortfall  int     `json:"posts_shortfall"`
	CapApplied      bool    `json:"cap_applied"`
	RemainingBudget float64 `json:"remaining_budget"`
}

// CapResult 封顶计算结果
type CapResult struct {
	TotalBeforeCap  float64
	CappedTotal     float64
	CappedIncrement float64
	CapApplied      bool
	RemainingBudget float64
}

// ApplyCap 对月度增量金额做封顶。cap<=0 视为不封顶。
// 同一基线下重复调用不会让累计值超过 cap。
func ApplyCap(earningsSoFar float64, increment float64, cap float64) CapResult {
	totalBefore := earningsSoFar + increment
	if cap <= 0 {
		return CapResult{
			TotalBeforeCap:  totalBefore,
			CappedTotal:     totalBefore,
			CappedIncrement: increment,
		}
	}

	capped := totalBefore
	if capped > cap {
		capped = cap
	}
	cappedIncrement := capped - earningsSoFar
	if cappedIncrement < 0 {
		cappedIncrement = 0
	}
	remaining := cap - earningsSoFar
	if remaining < 0 {
		remaining = 0
	}

	return CapResult{
		TotalBeforeCap:  totalBefore,
		CappedTotal:     capped,
		CappedIncrement: cappedIncrement,
		CapApplied:      totalBefore > cap,
		RemainingBudget: remaining,
	}
}

// PriceMonth 按合约档位把月度聚合换算成金额
func PriceMonth(tier string, cfg TierConfig, in PriceInput) PriceBreakdown {
	switch tier {
	case consts.TierFixedRate:
		return PriceBreakdown{
			FixedAmount: util.RoundCents(cfg.MonthlyFixedAmount),
			TotalAmount: util.RoundCents(cfg.MonthlyFixedAmount),
			Qualified:   true,
		}
	case consts.TierPerformanceBased:
		return pricePerformance(cfg, in)
	default:
		return PriceBreakdown{}
	}
}

func pricePerformance(cfg TierConfig, in PriceInput) PriceBreakdown {
	cpm := float64(in.AttributedViews) / 1000 * cfg.CPMRate
	fixed := float64(in.UnitPosts)*cfg.UnitPostFee +
		float64(in.CompositePosts)*cfg.CompositePostFee +
		float64(in.PairedPosts)*cfg.CrossPostFee

	shortfall := 0
	qualified := true
	if cfg.MinMonthlyPosts > 0 && in.ApprovedPosts < cfg.MinMonthlyPosts {
		shortfall = cfg.MinMonthlyPosts - in.ApprovedPosts
		qualified = false
		// CPM 部分不清零：门槛只约束固定费
		if cfg.EnforceMinPosts {
			fixed = 0
		}
	}

	capped := ApplyCap(0, fixed+cpm, cfg.MonthlyCap)
	total := util.RoundCents(capped.CappedTotal)

	cpmOut := util.RoundCents(cpm)
	fixedOut := util.RoundCents(fixed)
	if capped.CapApplied {
		// 封顶金额先抵扣固定费，余额记作 CPM 部分
		cpmOut = util.RoundCents(total - fixedOut)
		if cpmOut < 0 {
			fixedOut = total
			cpmOut = 0
		}
	}

	return PriceBreakdown{
		FixedAmount:     fixedOut,
		CPMAmount:       cpmOut,
		TotalAmount:     total,
		Qualified:       qualified,
		PostsShortfall:  shortfall,
		CapApplied:      capped.CapApplied,
		RemainingBudget: util.RoundCents(capped.RemainingBudget),
	}
}

// CountPairedPosts 统计跨平台配对数。
// month 口径：整月各平台计数取最小值；
// day 口径：按发布日分组后逐日取最小值再求和。
func CountPairedPosts(posts []*model.Post, pairingWindow string) int {
	if pairingWindow == consts.PairingWindowDay {
		type dayCount struct{ tiktok, instagram int }
		days := make(map[string]*dayCount)
		for _, p := range posts {
			key := util.GetMidnight(p.CreatedAt).Format("2006-01-02")
			c, ok := days[key]
			if !ok {
				c = &dayCount{}
				days[key] = c
			}
			switch p.Platform {
			case consts.PlatformTikTok:
				c.tiktok++
			case consts.PlatformInstagram:
				c.instagram++
			}
		}
		paired := 0
		for _, c := range days {
			paired += minInt(c.tiktok, c.instagram)
		}
		return paired
	}

	tiktok, instagram := 0, 0
	for _, p := range posts {
		switch p.Platform {
		case consts.PlatformTikTok:
			tiktok++
		case consts.PlatformInstagram:
			instagram++
		}
	}
	return minInt(tiktok, instagram)
}

func minInt(a, b int) int {
	if a < b {
		return a
	}
	return b
}
