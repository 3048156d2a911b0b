package job

import (
	"context"
	log "log/slog"
	"time"

	"github.com/bwmarrin/snowflake"
	"github.com/google/uuid"

	"Paystone/internal/pkg/consts"
	"Paystone/internal/pkg/logger"
	"Paystone/internal/pkg/redis"
	"Paystone/internal/pkg/util"
	"Paystone/internal/service"
)

// PayoutRecomputeJob 消费脏集合，重算有新快照进来的创作者的当月结算
type PayoutRecomputeJob struct {
	payoutSvc service.PayoutService
}

func NewPayoutRecomputeJob(payoutSvc service.PayoutService) *PayoutRecomputeJob {
	return &PayoutRecomputeJob{payoutSvc: payoutSvc}
}

func (s *PayoutRecomputeJob) Run() {
	traceID := "job-recompute-" + uuid.NewString()
	ctx := context.WithValue(context.Background(), logger.TraceIDKey, traceID)

	// rename 原子接管脏集合，期间新增的标记进下一轮
	processingKey := consts.PayoutDirtyKey + ":processing"
	err := redis.Rename(ctx, consts.PayoutDirtyKey, processingKey)
	if err != nil {
		return
	}

	tempSet, err := redis.GetSet(ctx, processingKey)
	if err != nil {
		log.ErrorContext(ctx, "get payout dirty set error", "err", err)
		return
	}

	creatorIDs, err := util.StrSliceToInt64Slice(tempSet)
	if err != nil {
		log.ErrorContext(ctx, "convert dirty set to int slice error", "err", err)
		return
	}

	now := time.Now().UTC()
	year, month := now.Year(), int(now.Month())

	for _, cid := range creatorIDs {
		// 审批后的周期金额锁定，自动链路只重算还处于 pending 的周期
		_, err = s.payoutSvc.RecomputePeriod(ctx, snowflake.ID(cid), year, month)
		if err != nil {
			log.ErrorContext(ctx, "recompute payout error", "creator_id", cid, "err", err)
			continue
		}
	}

	err = redis.DeleteKey(ctx, processingKey)
	if err != nil {
		log.ErrorContext(ctx, "delete processing set error", "err", err)
	}

	log.InfoContext(ctx, "payout recompute finished", "creators", len(creatorIDs))
}
