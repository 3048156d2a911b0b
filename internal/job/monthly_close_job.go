package job

import (
	"context"
	log "log/slog"
	"time"

	"github.com/bwmarrin/snowflake"
	"github.com/google/uuid"

	"Paystone/internal/api/config"
	"Paystone/internal/pkg/logger"
	"Paystone/internal/pkg/util"
	"Paystone/internal/repository"
	"Paystone/internal/service"
)

// MonthlyCloseJob 月初对上一个自然月做终局重算，
// 让归因窗口已结束的帖子拿到最终数值，之后等待审批
type MonthlyCloseJob struct {
	creatorRepo  repository.CreatorRepo
	payoutSvc    service.PayoutService
	statementSvc service.StatementService
}

func NewMonthlyCloseJob(
	creatorRepo repository.CreatorRepo,
	payoutSvc service.PayoutService,
	statementSvc service.StatementService,
) *MonthlyCloseJob {
	return &MonthlyCloseJob{
		creatorRepo:  creatorRepo,
		payoutSvc:    payoutSvc,
		statementSvc: statementSvc,
	}
}

func (s *MonthlyCloseJob) Run() {
	traceID := "job-monthly-close-" + uuid.NewString()
	ctx := context.WithValue(context.Background(), logger.TraceIDKey, traceID)

	prev := time.Now().UTC().AddDate(0, -1, 0)
	year, month := prev.Year(), int(prev.Month())
	monthStart, monthEnd := util.MonthBounds(year, month)

	// 上月发布之前、但计费窗口延续到上月的帖子也要覆盖到
	from := monthStart.AddDate(0, 0, -config.Cfg.Pricing.WindowDays)
	creatorIDs, err := s.creatorRepo.ListCreatorsWithApprovedPosts(ctx, from, monthEnd)
	if err != nil {
		log.ErrorContext(ctx, "list creators for monthly close error", "err", err)
		return
	}

	// 包月档当月没发帖也要出周期，固定金额不依赖帖子
	fixedIDs, err := s.creatorRepo.ListActiveFixedRateCreators(ctx, monthEnd)
	if err != nil {
		log.ErrorContext(ctx, "list fixed rate creators error", "err", err)
		return
	}
	seen := make(map[snowflake.ID]struct{}, len(creatorIDs))
	for _, cid := range creatorIDs {
		seen[cid] = struct{}{}
	}
	for _, cid := range fixedIDs {
		if _, ok := seen[cid]; !ok {
			creatorIDs = append(creatorIDs, cid)
		}
	}

	succeeded := 0
	for _, cid := range creatorIDs {
		// 月结跑在审批之后时不回写已锁定的金额
		if _, err = s.payoutSvc.RecomputePeriod(ctx, cid, year, month); err != nil {
			log.ErrorContext(ctx, "monthly close recompute error", "creator_id", cid.String(), "err", err)
			continue
		}
		succeeded++
	}

	// 终局数值落库后顺手出一版对账单
	url, err := s.statementSvc.ExportMonthly(ctx, year, month)
	if err != nil {
		log.ErrorContext(ctx, "export monthly statement error", "err", err)
	}

	log.InfoContext(ctx, "monthly close finished",
		"period", prev.Format("2006-01"),
		"creators", len(creatorIDs),
		"succeeded", succeeded,
		"statement", url,
	)
}
