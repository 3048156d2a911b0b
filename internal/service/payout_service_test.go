package service

import (
	"context"
	"errors"
	"testing"
	"time"

	"github.com/bwmarrin/snowflake"
	"gorm.io/driver/sqlite"
	"gorm.io/gorm"

	"Paystone/internal/api/config"
	"Paystone/internal/model"
	"Paystone/internal/pkg/consts"
	"Paystone/internal/pkg/util"
	"Paystone/internal/repository"
)

const (
	testCreatorID = snowflake.ID(1001)
	testAdminID   = "9001"
)

func setupPayoutTestDB(t *testing.T) *gorm.DB {
	t.Helper()

	db, err := gorm.Open(sqlite.Open(":memory:"), &gorm.Config{})
	if err != nil {
		t.Fatalf("open sqlite: %v", err)
	}
	err = db.AutoMigrate(
		&model.Creator{},
		&model.Post{},
		&model.ViewSnapshot{},
		&model.PayoutPeriod{},
	)
	if err != nil {
		t.Fatalf("auto migrate: %v", err)
	}
	return db
}

func setupPayoutService(t *testing.T) (PayoutService, repository.PayoutRepo, *gorm.DB) {
	t.Helper()

	config.Cfg = &config.Config{
		Pricing: config.PricingConfig{
			WindowDays: 30,
			PerformanceBased: config.TierParamsConfig{
				CPMRate:          0.5,
				UnitPostFee:      3.125,
				CompositePostFee: 6.25,
				CrossPostFee:     1.5,
				MonthlyCap:       5000,
				MinMonthlyPosts:  2,
				EnforceMinPosts:  true,
				PairingWindow:    consts.PairingWindowMonth,
			},
			FixedRate: config.TierParamsConfig{
				MonthlyFixedAmount: 1200,
			},
		},
	}
	if err := util.InitIDGenerator(1); err != nil {
		t.Fatalf("init id generator: %v", err)
	}

	db := setupPayoutTestDB(t)
	creatorRepo := repository.NewCreatorRepo(db)
	postRepo := repository.NewPostRepo(db)
	snapshotRepo := repository.NewSnapshotRepo(db)
	payoutRepo := repository.NewPayoutRepo(db)

	svc := NewPayoutService(creatorRepo, postRepo, snapshotRepo, payoutRepo, nil)
	return svc, payoutRepo, db
}

// seedCreatorWithPosts 造一个创作者：5 月发布两条过审帖子并各带两条快照
func seedCreatorWithPosts(t *testing.T, db *gorm.DB) {
	t.Helper()
	ctx := context.Background()

	approvedAt := time.Date(2025, time.April, 1, 0, 0, 0, 0, time.UTC)
	err := db.WithContext(ctx).Create(&model.Creator{
		ID:           testCreatorID,
		Name:         "Ada Chen",
		Email:        "ada@example.com",
		ContractTier: consts.TierPerformanceBased,
		ApprovedAt:   &approvedAt,
	}).Error
	if err != nil {
		t.Fatalf("seed creator: %v", err)
	}

	posts := []*model.Post{
		{
			ID:               2001,
			CreatorID:        testCreatorID,
			Platform:         consts.PlatformTikTok,
			Category:         consts.CategoryUnit,
			ModerationStatus: consts.ModerationApproved,
			CreatedAt:        time.Date(2025, time.May, 2, 0, 0, 0, 0, time.UTC),
		},
		{
			ID:               2002,
			CreatorID:        testCreatorID,
			Platform:         consts.PlatformInstagram,
			Category:         consts.CategoryComposite,
			ModerationStatus: consts.ModerationApproved,
			CreatedAt:        time.Date(2025, time.May, 10, 0, 0, 0, 0, time.UTC),
		},
	}
	for _, p := range posts {
		if err = db.WithContext(ctx).Create(p).Error; err != nil {
			t.Fatalf("seed post: %v", err)
		}
	}

	snaps := []*model.ViewSnapshot{
		{ID: 3001, PostID: 2001, FetchedAt: time.Date(2025, time.May, 2, 1, 0, 0, 0, time.UTC), Views: 0},
		{ID: 3002, PostID: 2001, FetchedAt: time.Date(2025, time.May, 25, 0, 0, 0, 0, time.UTC), Views: 40_000},
		{ID: 3003, PostID: 2002, FetchedAt: time.Date(2025, time.May, 10, 1, 0, 0, 0, time.UTC), Views: 0},
		{ID: 3004, PostID: 2002, FetchedAt: time.Date(2025, time.May, 28, 0, 0, 0, 0, time.UTC), Views: 10_000},
	}
	for _, s := range snaps {
		if err = db.WithContext(ctx).Create(s).Error; err != nil {
			t.Fatalf("seed snapshot: %v", err)
		}
	}
}

func TestComputePeriodAggregates(t *testing.T) {
	svc, _, db := setupPayoutService(t)
	seedCreatorWithPosts(t, db)
	ctx := context.Background()

	res, err := svc.ComputePeriod(ctx, testCreatorID, 2025, 5)
	if err != nil {
		t.Fatalf("compute period: %v", err)
	}

	p := res.Period
	if p.AttributedViews != 50_000 {
		t.Fatalf("expected 50000 views, got %d", p.AttributedViews)
	}
	if p.ApprovedPosts != 2 || p.UnitPosts != 1 || p.CompositePosts != 1 {
		t.Fatalf("unexpected post counts: %+v", p)
	}
	if p.PairedPosts != 1 {
		t.Fatalf("expected 1 paired post, got %d", p.PairedPosts)
	}
	// CPM 25 + 单条 3.125 + 轮播 6.25 + 配对 1.5 = 35.875，按分四舍五入
	if p.TotalAmount != 35.88 {
		t.Fatalf("expected total 35.88, got %v", p.TotalAmount)
	}
	if !p.Qualified || p.CapApplied {
		t.Fatalf("unexpected flags: %+v", p)
	}
	if p.Status != consts.PayoutStatusPending {
		t.Fatalf("expected pending, got %s", p.Status)
	}
	if len(res.Posts) != 2 {
		t.Fatalf("expected 2 breakdown rows, got %d", len(res.Posts))
	}
}

func TestComputePeriodIdempotent(t *testing.T) {
	svc, _, db := setupPayoutService(t)
	seedCreatorWithPosts(t, db)
	ctx := context.Background()

	first, err := svc.ComputePeriod(ctx, testCreatorID, 2025, 5)
	if err != nil {
		t.Fatalf("first compute: %v", err)
	}
	second, err := svc.ComputePeriod(ctx, testCreatorID, 2025, 5)
	if err != nil {
		t.Fatalf("second compute: %v", err)
	}

	if first.Period.TotalAmount != second.Period.TotalAmount ||
		first.Period.AttributedViews != second.Period.AttributedViews {
		t.Fatalf("recompute changed result: %v vs %v", first.Period, second.Period)
	}

	var count int64
	db.Model(&model.PayoutPeriod{}).Count(&count)
	if count != 1 {
		t.Fatalf("expected single period row, got %d", count)
	}
}

func TestComputePeriodUnknownCreator(t *testing.T) {
	svc, _, _ := setupPayoutService(t)

	_, err := svc.ComputePeriod(context.Background(), snowflake.ID(424242), 2025, 5)
	if !errors.Is(err, ErrCreatorNotFound) {
		t.Fatalf("expected ErrCreatorNotFound, got %v", err)
	}
}

func TestApproveFlow(t *testing.T) {
	svc, _, db := setupPayoutService(t)
	seedCreatorWithPosts(t, db)
	ctx := context.Background()

	if _, err := svc.ComputePeriod(ctx, testCreatorID, 2025, 5); err != nil {
		t.Fatalf("compute: %v", err)
	}

	approved, err := svc.Approve(ctx, testCreatorID, 2025, 5, testAdminID)
	if err != nil {
		t.Fatalf("approve: %v", err)
	}
	if approved.Status != consts.PayoutStatusApproved || approved.ApprovedAt == nil {
		t.Fatalf("unexpected approved period: %+v", approved)
	}

	// 重复审批被拒绝
	_, err = svc.Approve(ctx, testCreatorID, 2025, 5, testAdminID)
	if !errors.Is(err, ErrPayoutStateInvalid) {
		t.Fatalf("expected ErrPayoutStateInvalid, got %v", err)
	}
}

func TestMarkPaidRequiresApproval(t *testing.T) {
	svc, _, db := setupPayoutService(t)
	seedCreatorWithPosts(t, db)
	ctx := context.Background()

	if _, err := svc.ComputePeriod(ctx, testCreatorID, 2025, 5); err != nil {
		t.Fatalf("compute: %v", err)
	}

	// pending 直接打款是流程错误
	_, err := svc.MarkPaid(ctx, testCreatorID, 2025, 5, testAdminID)
	if !errors.Is(err, ErrPayoutStateInvalid) {
		t.Fatalf("expected ErrPayoutStateInvalid, got %v", err)
	}

	if _, err = svc.Approve(ctx, testCreatorID, 2025, 5, testAdminID); err != nil {
		t.Fatalf("approve: %v", err)
	}
	paid, err := svc.MarkPaid(ctx, testCreatorID, 2025, 5, testAdminID)
	if err != nil {
		t.Fatalf("mark paid: %v", err)
	}
	if paid.Status != consts.PayoutStatusPaid || paid.PaidAt == nil {
		t.Fatalf("unexpected paid period: %+v", paid)
	}

	// paid 是终态，不可撤回
	_, err = svc.RevertToPending(ctx, testCreatorID, 2025, 5, testAdminID)
	if !errors.Is(err, ErrPayoutStateInvalid) {
		t.Fatalf("expected ErrPayoutStateInvalid, got %v", err)
	}
}

func TestRevertClearsApproval(t *testing.T) {
	svc, _, db := setupPayoutService(t)
	seedCreatorWithPosts(t, db)
	ctx := context.Background()

	if _, err := svc.ComputePeriod(ctx, testCreatorID, 2025, 5); err != nil {
		t.Fatalf("compute: %v", err)
	}
	if _, err := svc.Approve(ctx, testCreatorID, 2025, 5, testAdminID); err != nil {
		t.Fatalf("approve: %v", err)
	}

	reverted, err := svc.RevertToPending(ctx, testCreatorID, 2025, 5, testAdminID)
	if err != nil {
		t.Fatalf("revert: %v", err)
	}
	if reverted.Status != consts.PayoutStatusPending {
		t.Fatalf("expected pending, got %s", reverted.Status)
	}
	if reverted.ApprovedAt != nil {
		t.Fatalf("expected approved_at cleared, got %v", reverted.ApprovedAt)
	}
}

func TestRecomputeKeepsApprovedStatus(t *testing.T) {
	svc, _, db := setupPayoutService(t)
	seedCreatorWithPosts(t, db)
	ctx := context.Background()

	if _, err := svc.ComputePeriod(ctx, testCreatorID, 2025, 5); err != nil {
		t.Fatalf("compute: %v", err)
	}
	if _, err := svc.Approve(ctx, testCreatorID, 2025, 5, testAdminID); err != nil {
		t.Fatalf("approve: %v", err)
	}

	res, err := svc.ComputePeriod(ctx, testCreatorID, 2025, 5)
	if err != nil {
		t.Fatalf("recompute: %v", err)
	}
	if res.Period.Status != consts.PayoutStatusApproved {
		t.Fatalf("recompute must not reset status, got %s", res.Period.Status)
	}
}

func TestAutoRecomputeKeepsApprovedAmounts(t *testing.T) {
	svc, _, db := setupPayoutService(t)
	seedCreatorWithPosts(t, db)
	ctx := context.Background()

	if _, err := svc.ComputePeriod(ctx, testCreatorID, 2025, 5); err != nil {
		t.Fatalf("compute: %v", err)
	}
	if _, err := svc.Approve(ctx, testCreatorID, 2025, 5, testAdminID); err != nil {
		t.Fatalf("approve: %v", err)
	}

	// 审批之后又进来一批快照
	err := db.WithContext(ctx).Create(&model.ViewSnapshot{
		ID:        3005,
		PostID:    2001,
		FetchedAt: time.Date(2025, time.May, 29, 0, 0, 0, 0, time.UTC),
		Views:     60_000,
	}).Error
	if err != nil {
		t.Fatalf("seed snapshot: %v", err)
	}

	// 定时任务链路不改已审批周期的金额
	res, err := svc.RecomputePeriod(ctx, testCreatorID, 2025, 5)
	if err != nil {
		t.Fatalf("auto recompute: %v", err)
	}
	if res.Period.TotalAmount != 35.88 {
		t.Fatalf("auto recompute changed approved amount: %v", res.Period.TotalAmount)
	}
	if res.Period.AttributedViews != 50_000 {
		t.Fatalf("auto recompute changed approved views: %d", res.Period.AttributedViews)
	}
	if res.Period.Status != consts.PayoutStatusApproved {
		t.Fatalf("expected approved, got %s", res.Period.Status)
	}

	// 管理端显式重算才允许覆盖金额，状态保持不变
	forced, err := svc.ComputePeriod(ctx, testCreatorID, 2025, 5)
	if err != nil {
		t.Fatalf("forced recompute: %v", err)
	}
	if forced.Period.TotalAmount != 45.88 {
		t.Fatalf("expected total 45.88 after forced recompute, got %v", forced.Period.TotalAmount)
	}
	if forced.Period.Status != consts.PayoutStatusApproved {
		t.Fatalf("expected approved, got %s", forced.Period.Status)
	}
}

func TestFixedRateCreatorWithoutPosts(t *testing.T) {
	svc, _, db := setupPayoutService(t)
	ctx := context.Background()

	fixedID := snowflake.ID(1002)
	approvedAt := time.Date(2025, time.March, 1, 0, 0, 0, 0, time.UTC)
	err := db.WithContext(ctx).Create(&model.Creator{
		ID:           fixedID,
		Name:         "Bo Lin",
		Email:        "bo@example.com",
		ContractTier: consts.TierFixedRate,
		ApprovedAt:   &approvedAt,
	}).Error
	if err != nil {
		t.Fatalf("seed creator: %v", err)
	}

	// 月结名单要包含没发帖的包月创作者
	monthEnd := time.Date(2025, time.May, 31, 23, 59, 59, 0, time.UTC)
	creatorRepo := repository.NewCreatorRepo(db)
	ids, err := creatorRepo.ListActiveFixedRateCreators(ctx, monthEnd)
	if err != nil {
		t.Fatalf("list fixed rate creators: %v", err)
	}
	if len(ids) != 1 || ids[0] != fixedID {
		t.Fatalf("unexpected creator ids: %v", ids)
	}

	res, err := svc.RecomputePeriod(ctx, fixedID, 2025, 5)
	if err != nil {
		t.Fatalf("compute: %v", err)
	}
	if res.Period.FixedAmount != 1200 || res.Period.TotalAmount != 1200 {
		t.Fatalf("unexpected amounts: %+v", res.Period)
	}
	if !res.Period.Qualified {
		t.Fatalf("fixed rate period should always qualify")
	}
}

func TestTransitionStaleVersionRejected(t *testing.T) {
	svc, payoutRepo, db := setupPayoutService(t)
	seedCreatorWithPosts(t, db)
	ctx := context.Background()

	if _, err := svc.ComputePeriod(ctx, testCreatorID, 2025, 5); err != nil {
		t.Fatalf("compute: %v", err)
	}

	// 版本号对不上时更新零行，调用方据此返回冲突
	rows, err := payoutRepo.TransitionStatus(ctx, testCreatorID, 2025, 5, consts.PayoutStatusPending, 99, map[string]any{
		"status": consts.PayoutStatusApproved,
	})
	if err != nil {
		t.Fatalf("transition: %v", err)
	}
	if rows != 0 {
		t.Fatalf("expected 0 rows affected, got %d", rows)
	}
}
