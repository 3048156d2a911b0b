package service

import (
	"bytes"
	"context"
	"encoding/csv"
	"fmt"
	log "log/slog"
	"strconv"
	"time"

	"github.com/google/uuid"

	"Paystone/internal/pkg/consts"
	"Paystone/internal/pkg/minio"
	"Paystone/internal/pkg/redis"
	"Paystone/internal/repository"
)

type StatementService interface {
	// ExportMonthly 导出某月全部结算周期为 CSV 并上传到对象存储，返回下载地址
	ExportMonthly(ctx context.Context, year, month int) (string, error)
}

type statementServiceImpl struct {
	creatorRepo repository.CreatorRepo
	payoutRepo  repository.PayoutRepo
}

func NewStatementService(creatorRepo repository.CreatorRepo, payoutRepo repository.PayoutRepo) StatementService {
	return &statementServiceImpl{
		creatorRepo: creatorRepo,
		payoutRepo:  payoutRepo,
	}
}

var statementHeader = []string{
	"creator_id", "creator_name", "payout_info", "contract_tier",
	"period", "attributed_views", "approved_posts", "paired_posts",
	"fixed_amount", "cpm_amount", "total_amount", "cap_applied",
	"status", "computed_at",
}

func (s *statementServiceImpl) ExportMonthly(ctx context.Context, year, month int) (string, error) {
	if !validPeriod(year, month) {
		return "", ErrPeriodInvalid
	}

	// 同一月份的导出串行化，避免并发重复生成
	lockKey := consts.StatementLockKey + fmt.Sprintf("%d:%02d", year, month)
	lockValue := uuid.New().String()
	locked, err := redis.TryLock(ctx, lockKey, lockValue, 5*time.Minute, 0)
	if err != nil {
		return "", err
	}
	if !locked {
		return "", ErrStatementBusy
	}
	defer redis.UnLock(ctx, lockKey, lockValue)

	periods, err := s.payoutRepo.ListPeriods(ctx, repository.PayoutFilter{Year: year, Month: month})
	if err != nil {
		return "", err
	}
	if len(periods) == 0 {
		return "", ErrStatementEmpty
	}

	var buf bytes.Buffer
	w := csv.NewWriter(&buf)
	if err = w.Write(statementHeader); err != nil {
		return "", err
	}

	for _, p := range periods {
		name, payoutInfo := "", ""
		if creator, cErr := s.creatorRepo.GetCreator(ctx, p.CreatorID); cErr == nil && creator != nil {
			name = creator.Name
			payoutInfo = creator.PayoutInfo
		}

		record := []string{
			p.CreatorID.String(),
			name,
			payoutInfo,
			p.ContractTier,
			fmt.Sprintf("%d-%02d", p.PeriodYear, p.PeriodMonth),
			strconv.FormatInt(p.AttributedViews, 10),
			strconv.Itoa(p.ApprovedPosts),
			strconv.Itoa(p.PairedPosts),
			strconv.FormatFloat(p.FixedAmount, 'f', 2, 64),
			strconv.FormatFloat(p.CPMAmount, 'f', 2, 64),
			strconv.FormatFloat(p.TotalAmount, 'f', 2, 64),
			strconv.FormatBool(p.CapApplied),
			p.Status,
			p.ComputedAt.Format(time.RFC3339),
		}
		if err = w.Write(record); err != nil {
			return "", err
		}
	}

	w.Flush()
	if err = w.Error(); err != nil {
		return "", err
	}

	objectName := fmt.Sprintf("statements/%d-%02d.csv", year, month)
	if _, err = minio.UploadFile(ctx, objectName, &buf, int64(buf.Len()), "text/csv"); err != nil {
		return "", err
	}

	log.InfoContext(ctx, "Monthly statement exported",
		"period", fmt.Sprintf("%d-%02d", year, month),
		"rows", len(periods),
	)
	return minio.GetPublicURL(objectName), nil
}
