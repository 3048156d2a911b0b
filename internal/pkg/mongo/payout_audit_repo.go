package mongo

import (
	"context"

	"go.mongodb.org/mongo-driver/bson"
	"go.mongodb.org/mongo-driver/mongo"
	"go.mongodb.org/mongo-driver/mongo/options"
)

type PayoutAuditRepo interface {
	AppendAudit(ctx context.Context, audit *PayoutAuditModel) error
	ListAudits(ctx context.Context, creatorID int64, year, month int) ([]*PayoutAuditModel, error)
}

type payoutAuditRepoImpl struct {
	col *mongo.Collection
}

func NewPayoutAuditRepo(db *mongo.Database) PayoutAuditRepo {
	return &payoutAuditRepoImpl{
		col: db.Collection("payout_audit"),
	}
}

// AppendAudit 插入一条审计记录
func (s *payoutAuditRepoImpl) AppendAudit(ctx context.Context, audit *PayoutAuditModel) error {
	_, err := s.col.InsertOne(ctx, audit)
	return err
}

// ListAudits 按时间正序返回某个结算周期的全部流转记录
func (s *payoutAuditRepoImpl) ListAudits(ctx context.Context, creatorID int64, year, month int) ([]*PayoutAuditModel, error) {
	filter := bson.M{
		"creator_id":   creatorID,
		"period_year":  year,
		"period_month": month,
	}
	opts := options.Find().SetSort(bson.D{{Key: "created_at", Value: 1}})

	cursor, err := s.col.Find(ctx, filter, opts)
	if err != nil {
		return nil, err
	}
	defer func() {
		_ = cursor.Close(ctx)
	}()

	var list []*PayoutAuditModel
	if err = cursor.All(ctx, &list); err != nil {
		return nil, err
	}
	return list, nil
}
