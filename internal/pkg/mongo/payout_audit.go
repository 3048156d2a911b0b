package mongo

import (
	"time"

	"go.mongodb.org/mongo-driver/bson/primitive"
)

// PayoutAuditModel 结算状态流转审计记录，只追加
type PayoutAuditModel struct {
	ID          primitive.ObjectID `bson:"_id,omitempty" json:"id"`
	CreatorID   int64              `bson:"creator_id" json:"creatorId"`
	PeriodYear  int                `bson:"period_year" json:"periodYear"`
	PeriodMonth int                `bson:"period_month" json:"periodMonth"`
	Action      string             `bson:"action" json:"action"`           // approve / mark_paid / revert
	ActorID     string             `bson:"actor_id" json:"actorId"`        // 操作管理员
	FromStatus  string             `bson:"from_status" json:"fromStatus"`
	ToStatus    string             `bson:"to_status" json:"toStatus"`
	Amount      float64            `bson:"amount" json:"amount"` // 流转时的结算金额快照
	CreatedAt   time.Time          `bson:"created_at" json:"createdAt"`
}
