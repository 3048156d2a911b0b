package consts

// 合约档位
const (
	TierPerformanceBased = "performance_based"
	TierFixedRate        = "fixed_rate"
)

// 帖子平台
const (
	PlatformTikTok    = "tiktok"
	PlatformInstagram = "instagram"
)

// 帖子类型
const (
	CategoryUnit      = "unit"      // 单条视频
	CategoryComposite = "composite" // 多图轮播
)

// 帖子审核状态
const (
	ModerationPending  = "pending"
	ModerationApproved = "approved"
	ModerationRejected = "rejected"
)

// 结算周期状态
const (
	PayoutStatusPending  = "pending"
	PayoutStatusApproved = "approved"
	PayoutStatusPaid     = "paid"
)

// 结算审计动作
const (
	AuditActionApprove  = "approve"
	AuditActionMarkPaid = "mark_paid"
	AuditActionRevert   = "revert"
)

// 跨平台配对窗口
const (
	PairingWindowMonth = "month"
	PairingWindowDay   = "day"
)
