package consts

const (
	PayoutSummaryKey    = "payout:summary:"     // + creatorID:year:month
	PayoutMonthToDate   = "payout:mtd:"         // + creatorID
	PayoutDirtyKey      = "payout:dirty"        // 待重算的创作者集合
	SnapshotLastSeenKey = "snapshot:last_seen:" // + postID，轮询去重用
	StatementLockKey    = "statement:lock:"     // + year:month
)
