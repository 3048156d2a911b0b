package service

import (
	"context"
	"fmt"
	log "log/slog"
	"time"

	"github.com/bwmarrin/snowflake"
	"github.com/goccy/go-json"
	"github.com/jinzhu/copier"

	"Paystone/internal/api/config"
	"Paystone/internal/api/dto"
	"Paystone/internal/model"
	"Paystone/internal/pkg/consts"
	"Paystone/internal/pkg/mongo"
	"Paystone/internal/pkg/redis"
	"Paystone/internal/pkg/util"
	"Paystone/internal/repository"
)

type PayoutService interface {
	// ComputePeriod 重算某个创作者某个自然月的结算聚合并落库，
	// 返回周期聚合与单帖归因明细。可重复调用，结果只取决于输入数据。
	// 这是管理端的显式重算入口，approved/paid 的周期也会被覆盖金额
	ComputePeriod(ctx context.Context, creatorID snowflake.ID, year, month int) (*dto.ComputeResultDTO, error)
	// RecomputePeriod 定时任务等自动链路的重算入口：
	// 已审批/已打款的周期金额视为锁定，只回读不覆盖
	RecomputePeriod(ctx context.Context, creatorID snowflake.ID, year, month int) (*dto.ComputeResultDTO, error)
	// GetPeriod 读取已落库的结算周期
	GetPeriod(ctx context.Context, creatorID snowflake.ID, year, month int) (*dto.PayoutPeriodDTO, error)
	// ListPeriods 按条件过滤结算周期
	ListPeriods(ctx context.Context, query *dto.PayoutListQueryDTO, creatorID snowflake.ID) ([]*dto.PayoutPeriodDTO, error)
	// MonthToDate 创作者当前自然月的实时结算预览（带短缓存）
	MonthToDate(ctx context.Context, creatorID snowflake.ID) (*dto.ComputeResultDTO, error)
	// PostAttributionView 单帖在指定月份的归因明细，用于金额审计
	PostAttributionView(ctx context.Context, postID snowflake.ID, year, month int) (*dto.PostBreakdownDTO, error)

	// Approve 审批：pending -> approved
	Approve(ctx context.Context, creatorID snowflake.ID, year, month int, actorID string) (*dto.PayoutPeriodDTO, error)
	// MarkPaid 打款确认：approved -> paid，pending 直接打款视为流程错误
	MarkPaid(ctx context.Context, creatorID snowflake.ID, year, month int, actorID string) (*dto.PayoutPeriodDTO, error)
	// RevertToPending 撤回审批：approved -> pending，paid 不可撤回
	RevertToPending(ctx context.Context, creatorID snowflake.ID, year, month int, actorID string) (*dto.PayoutPeriodDTO, error)
	// ListAudits 某个结算周期的状态流转审计
	ListAudits(ctx context.Context, creatorID snowflake.ID, year, month int) ([]*dto.PayoutAuditDTO, error)
}

type payoutServiceImpl struct {
	creatorRepo  repository.CreatorRepo
	postRepo     repository.PostRepo
	snapshotRepo repository.SnapshotRepo
	payoutRepo   repository.PayoutRepo
	auditRepo    mongo.PayoutAuditRepo
}

func NewPayoutService(
	creatorRepo repository.CreatorRepo,
	postRepo repository.PostRepo,
	snapshotRepo repository.SnapshotRepo,
	payoutRepo repository.PayoutRepo,
	auditRepo mongo.PayoutAuditRepo,
) PayoutService {
	return &payoutServiceImpl{
		creatorRepo:  creatorRepo,
		postRepo:     postRepo,
		snapshotRepo: snapshotRepo,
		payoutRepo:   payoutRepo,
		auditRepo:    auditRepo,
	}
}

// tierConfigFor 把配置文件里的档位参数换算成定价引擎输入
func tierConfigFor(tier string) (TierConfig, error) {
	p := config.Cfg.Pricing
	switch tier {
	case consts.TierPerformanceBased:
		c := p.PerformanceBased
		return TierConfig{
			CPMRate:          c.CPMRate,
			UnitPostFee:      c.UnitPostFee,
			CompositePostFee: c.CompositePostFee,
			CrossPostFee:     c.CrossPostFee,
			MonthlyCap:       c.MonthlyCap,
			MinMonthlyPosts:  c.MinMonthlyPosts,
			EnforceMinPosts:  c.EnforceMinPosts,
			PairingWindow:    c.PairingWindow,
		}, nil
	case consts.TierFixedRate:
		c := p.FixedRate
		return TierConfig{
			MonthlyFixedAmount: c.MonthlyFixedAmount,
			MonthlyCap:         c.MonthlyCap,
		}, nil
	default:
		return TierConfig{}, ErrContractTier
	}
}

func validPeriod(year, month int) bool {
	return year >= 2020 && year <= 2100 && month >= 1 && month <= 12
}

func (s *payoutServiceImpl) ComputePeriod(ctx context.Context, creatorID snowflake.ID, year, month int) (*dto.ComputeResultDTO, error) {
	return s.computePeriod(ctx, creatorID, year, month, time.Now().UTC(), true)
}

func (s *payoutServiceImpl) RecomputePeriod(ctx context.Context, creatorID snowflake.ID, year, month int) (*dto.ComputeResultDTO, error) {
	return s.computePeriod(ctx, creatorID, year, month, time.Now().UTC(), false)
}

// computePeriod 单独拆出 now 参数，方便定时任务统一用同一时刻重算。
// force 为 false 时不覆盖已审批/已打款周期的金额
func (s *payoutServiceImpl) computePeriod(ctx context.Context, creatorID snowflake.ID, year, month int, now time.Time, force bool) (*dto.ComputeResultDTO, error) {
	if !validPeriod(year, month) {
		return nil, ErrPeriodInvalid
	}

	creator, err := s.creatorRepo.GetCreator(ctx, creatorID)
	if err != nil {
		return nil, err
	}
	if creator == nil {
		return nil, ErrCreatorNotFound
	}

	tierCfg, err := tierConfigFor(creator.ContractTier)
	if err != nil {
		return nil, err
	}

	windowDays := config.Cfg.Pricing.WindowDays
	monthStart, monthEnd := util.MonthBounds(year, month)

	// 取所有计费窗口可能与该月重叠的帖子：
	// 上个月发布、窗口延续到本月的帖子也要参与归因
	posts, err := s.postRepo.ListApprovedPostsInRange(ctx, creatorID, monthStart.AddDate(0, 0, -windowDays), monthEnd)
	if err != nil {
		return nil, err
	}

	postIDs := make([]snowflake.ID, 0, len(posts))
	for _, p := range posts {
		postIDs = append(postIDs, p.ID)
	}
	snapsByPost, err := s.snapshotRepo.ListSnapshotsByPosts(ctx, postIDs)
	if err != nil {
		return nil, err
	}

	var (
		totalViews   int64
		postsCounted int
		breakdowns   = make([]*dto.PostBreakdownDTO, 0, len(posts))
		inMonthPosts = make([]*model.Post, 0, len(posts))
	)

	for _, post := range posts {
		if !post.CreatedAt.Before(monthStart) && !post.CreatedAt.After(monthEnd) {
			inMonthPosts = append(inMonthPosts, post)
		}

		att := AttributePost(post, windowDays, year, month, snapsByPost[post.ID], now)
		if att.PeriodStart.After(att.PeriodEnd) {
			// 计费窗口与该月没有交集
			continue
		}

		totalViews += att.Views
		if len(snapsByPost[post.ID]) > 0 {
			postsCounted++
		}

		item := &dto.PostBreakdownDTO{
			PostID:        post.ID,
			URL:           post.URL,
			Platform:      post.Platform,
			Category:      post.Category,
			PostCreatedAt: post.CreatedAt,
			Views:         att.Views,
			PeriodStart:   att.PeriodStart,
			PeriodEnd:     att.PeriodEnd,
			Active:        att.Active,
			DaysRemaining: att.DaysRemaining,
		}
		if creator.ContractTier == consts.TierPerformanceBased {
			item.CPMEarned = util.RoundCents(float64(att.Views) / 1000 * tierCfg.CPMRate)
		}
		breakdowns = append(breakdowns, item)
	}

	unitPosts, compositePosts := 0, 0
	for _, p := range inMonthPosts {
		switch p.Category {
		case consts.CategoryUnit:
			unitPosts++
		case consts.CategoryComposite:
			compositePosts++
		}
	}
	pairedPosts := CountPairedPosts(inMonthPosts, tierCfg.PairingWindow)

	price := PriceMonth(creator.ContractTier, tierCfg, PriceInput{
		AttributedViews: totalViews,
		UnitPosts:       unitPosts,
		CompositePosts:  compositePosts,
		PairedPosts:     pairedPosts,
		ApprovedPosts:   len(inMonthPosts),
	})

	period := &model.PayoutPeriod{
		ID:              util.NewID(),
		CreatorID:       creatorID,
		PeriodYear:      year,
		PeriodMonth:     month,
		ContractTier:    creator.ContractTier,
		AttributedViews: totalViews,
		PostsCounted:    postsCounted,
		ApprovedPosts:   len(inMonthPosts),
		UnitPosts:       unitPosts,
		CompositePosts:  compositePosts,
		PairedPosts:     pairedPosts,
		PostsShortfall:  price.PostsShortfall,
		Qualified:       price.Qualified,
		FixedAmount:     price.FixedAmount,
		CPMAmount:       price.CPMAmount,
		TotalAmount:     price.TotalAmount,
		CapApplied:      price.CapApplied,
		Status:          consts.PayoutStatusPending,
		ComputedAt:      now,
	}

	// 审批后的金额即为打款口径，自动重算只读不写，
	// 覆盖只能走管理端的显式重算
	stored, err := s.payoutRepo.GetPeriod(ctx, creatorID, year, month)
	if err != nil {
		return nil, err
	}
	if !force && stored != nil && stored.Status != consts.PayoutStatusPending {
		log.InfoContext(ctx, "payout period locked, skip overwriting amounts",
			"creator_id", creatorID.String(),
			"period", fmt.Sprintf("%d-%02d", year, month),
			"status", stored.Status,
		)
		return &dto.ComputeResultDTO{
			Period: toPeriodDTO(stored),
			Posts:  breakdowns,
		}, nil
	}

	if err = s.payoutRepo.UpsertFinancials(ctx, period); err != nil {
		return nil, err
	}

	s.invalidateCaches(ctx, creatorID, year, month)

	// 重算不改状态，回读拿到真实的 status / approved_at / paid_at
	stored, err = s.payoutRepo.GetPeriod(ctx, creatorID, year, month)
	if err != nil {
		return nil, err
	}
	if stored == nil {
		return nil, UnExpectedError
	}

	return &dto.ComputeResultDTO{
		Period: toPeriodDTO(stored),
		Posts:  breakdowns,
	}, nil
}

func (s *payoutServiceImpl) GetPeriod(ctx context.Context, creatorID snowflake.ID, year, month int) (*dto.PayoutPeriodDTO, error) {
	if !validPeriod(year, month) {
		return nil, ErrPeriodInvalid
	}

	key := consts.PayoutSummaryKey + fmt.Sprintf("%s:%d:%d", creatorID.String(), year, month)
	if val, err := redis.GetValue(ctx, key); err == nil && val != "" {
		var res dto.PayoutPeriodDTO
		_ = json.Unmarshal([]byte(val), &res)
		return &res, nil
	}

	period, err := s.payoutRepo.GetPeriod(ctx, creatorID, year, month)
	if err != nil {
		return nil, err
	}
	if period == nil {
		return nil, ErrPayoutNotFound
	}

	res := toPeriodDTO(period)
	if data, err := json.Marshal(res); err == nil {
		_ = redis.SetWithExpiration(ctx, key, string(data), 10*time.Minute)
	}
	return res, nil
}

func (s *payoutServiceImpl) ListPeriods(ctx context.Context, query *dto.PayoutListQueryDTO, creatorID snowflake.ID) ([]*dto.PayoutPeriodDTO, error) {
	if err := util.ValidateDTO(query); err != nil {
		return nil, err
	}

	periods, err := s.payoutRepo.ListPeriods(ctx, repository.PayoutFilter{
		CreatorID: creatorID,
		Status:    query.Status,
		Year:      query.Year,
		Month:     query.Month,
	})
	if err != nil {
		return nil, err
	}

	res := make([]*dto.PayoutPeriodDTO, 0, len(periods))
	for _, p := range periods {
		res = append(res, toPeriodDTO(p))
	}
	return res, nil
}

func (s *payoutServiceImpl) MonthToDate(ctx context.Context, creatorID snowflake.ID) (*dto.ComputeResultDTO, error) {
	key := consts.PayoutMonthToDate + creatorID.String()
	if val, err := redis.GetValue(ctx, key); err == nil && val != "" {
		var res dto.ComputeResultDTO
		_ = json.Unmarshal([]byte(val), &res)
		return &res, nil
	}

	now := time.Now().UTC()
	res, err := s.computePeriod(ctx, creatorID, now.Year(), int(now.Month()), now, false)
	if err != nil {
		return nil, err
	}

	if data, err := json.Marshal(res); err == nil {
		_ = redis.SetWithExpiration(ctx, key, string(data), 5*time.Minute)
	}
	return res, nil
}

func (s *payoutServiceImpl) PostAttributionView(ctx context.Context, postID snowflake.ID, year, month int) (*dto.PostBreakdownDTO, error) {
	if !validPeriod(year, month) {
		return nil, ErrPeriodInvalid
	}

	post, err := s.postRepo.GetPost(ctx, postID)
	if err != nil {
		return nil, err
	}
	if post == nil {
		return nil, ErrPostNotFound
	}
	if post.ModerationStatus != consts.ModerationApproved {
		return nil, ErrPostNotApproved
	}

	creator, err := s.creatorRepo.GetCreator(ctx, post.CreatorID)
	if err != nil {
		return nil, err
	}
	if creator == nil {
		return nil, ErrCreatorNotFound
	}
	tierCfg, err := tierConfigFor(creator.ContractTier)
	if err != nil {
		return nil, err
	}

	snaps, err := s.snapshotRepo.ListSnapshots(ctx, postID)
	if err != nil {
		return nil, err
	}

	att := AttributePost(post, config.Cfg.Pricing.WindowDays, year, month, snaps, time.Now().UTC())
	res := &dto.PostBreakdownDTO{
		PostID:        post.ID,
		URL:           post.URL,
		Platform:      post.Platform,
		Category:      post.Category,
		PostCreatedAt: post.CreatedAt,
		Views:         att.Views,
		PeriodStart:   att.PeriodStart,
		PeriodEnd:     att.PeriodEnd,
		Active:        att.Active,
		DaysRemaining: att.DaysRemaining,
	}
	if creator.ContractTier == consts.TierPerformanceBased {
		res.CPMEarned = util.RoundCents(float64(att.Views) / 1000 * tierCfg.CPMRate)
	}
	return res, nil
}

func (s *payoutServiceImpl) Approve(ctx context.Context, creatorID snowflake.ID, year, month int, actorID string) (*dto.PayoutPeriodDTO, error) {
	now := time.Now().UTC()
	return s.transition(ctx, creatorID, year, month, consts.PayoutStatusPending, map[string]any{
		"status":      consts.PayoutStatusApproved,
		"approved_at": now,
		"updated_at":  now,
	}, consts.AuditActionApprove, actorID)
}

func (s *payoutServiceImpl) MarkPaid(ctx context.Context, creatorID snowflake.ID, year, month int, actorID string) (*dto.PayoutPeriodDTO, error) {
	now := time.Now().UTC()
	return s.transition(ctx, creatorID, year, month, consts.PayoutStatusApproved, map[string]any{
		"status":     consts.PayoutStatusPaid,
		"paid_at":    now,
		"updated_at": now,
	}, consts.AuditActionMarkPaid, actorID)
}

func (s *payoutServiceImpl) RevertToPending(ctx context.Context, creatorID snowflake.ID, year, month int, actorID string) (*dto.PayoutPeriodDTO, error) {
	now := time.Now().UTC()
	return s.transition(ctx, creatorID, year, month, consts.PayoutStatusApproved, map[string]any{
		"status":      consts.PayoutStatusPending,
		"approved_at": nil,
		"updated_at":  now,
	}, consts.AuditActionRevert, actorID)
}

// transition 乐观锁状态流转。先读出来做业务校验给出明确错误，
// 再用 status+version 条件更新兜底并发
func (s *payoutServiceImpl) transition(
	ctx context.Context,
	creatorID snowflake.ID,
	year, month int,
	fromStatus string,
	updates map[string]any,
	action string,
	actorID string,
) (*dto.PayoutPeriodDTO, error) {
	if !validPeriod(year, month) {
		return nil, ErrPeriodInvalid
	}

	period, err := s.payoutRepo.GetPeriod(ctx, creatorID, year, month)
	if err != nil {
		return nil, err
	}
	if period == nil {
		return nil, ErrPayoutNotFound
	}
	if period.Status != fromStatus {
		return nil, ErrPayoutStateInvalid
	}

	rows, err := s.payoutRepo.TransitionStatus(ctx, creatorID, year, month, fromStatus, period.Version, updates)
	if err != nil {
		return nil, err
	}
	if rows == 0 {
		return nil, ErrPayoutConflict
	}

	s.invalidateCaches(ctx, creatorID, year, month)
	s.appendAudit(ctx, period, action, actorID, updates)

	stored, err := s.payoutRepo.GetPeriod(ctx, creatorID, year, month)
	if err != nil {
		return nil, err
	}
	if stored == nil {
		return nil, UnExpectedError
	}
	return toPeriodDTO(stored), nil
}

// appendAudit 审计写入失败不阻断主流程，只记日志
func (s *payoutServiceImpl) appendAudit(ctx context.Context, period *model.PayoutPeriod, action, actorID string, updates map[string]any) {
	if s.auditRepo == nil {
		return
	}

	toStatus, _ := updates["status"].(string)
	err := s.auditRepo.AppendAudit(ctx, &mongo.PayoutAuditModel{
		CreatorID:   int64(period.CreatorID),
		PeriodYear:  period.PeriodYear,
		PeriodMonth: period.PeriodMonth,
		Action:      action,
		ActorID:     actorID,
		FromStatus:  period.Status,
		ToStatus:    toStatus,
		Amount:      period.TotalAmount,
		CreatedAt:   time.Now().UTC(),
	})
	if err != nil {
		log.ErrorContext(ctx, "Failed to append payout audit",
			"creator_id", period.CreatorID.String(),
			"action", action,
			"err", err,
		)
	}
}

func (s *payoutServiceImpl) ListAudits(ctx context.Context, creatorID snowflake.ID, year, month int) ([]*dto.PayoutAuditDTO, error) {
	if !validPeriod(year, month) {
		return nil, ErrPeriodInvalid
	}
	if s.auditRepo == nil {
		return []*dto.PayoutAuditDTO{}, nil
	}

	audits, err := s.auditRepo.ListAudits(ctx, int64(creatorID), year, month)
	if err != nil {
		return nil, err
	}

	res := make([]*dto.PayoutAuditDTO, 0, len(audits))
	for _, a := range audits {
		item := &dto.PayoutAuditDTO{}
		_ = copier.Copy(item, a)
		res = append(res, item)
	}
	return res, nil
}

func (s *payoutServiceImpl) invalidateCaches(ctx context.Context, creatorID snowflake.ID, year, month int) {
	_ = redis.DeleteKey(ctx, consts.PayoutSummaryKey+fmt.Sprintf("%s:%d:%d", creatorID.String(), year, month))
	_ = redis.DeleteKey(ctx, consts.PayoutMonthToDate+creatorID.String())
}

func toPeriodDTO(p *model.PayoutPeriod) *dto.PayoutPeriodDTO {
	res := &dto.PayoutPeriodDTO{}
	_ = copier.Copy(res, p)
	return res
}
