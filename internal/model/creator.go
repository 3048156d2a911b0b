package model

import (
	"time"

	"github.com/bwmarrin/snowflake"
)

type Creator struct {
	ID           snowflake.ID `gorm:"primaryKey" json:"id"`
	Name         string       `gorm:"type:varchar(128);not null" json:"name"`
	Email        string       `gorm:"type:varchar(255);not null;uniqueIndex" json:"email"`
	PayoutInfo   string       `gorm:"type:varchar(255)" json:"payout_info"` // PayPal 账号等收款信息
	ContractTier string       `gorm:"type:varchar(32);not null" json:"contract_tier"`
	ApprovedAt   *time.Time   `json:"approved_at"` // 入驻审核通过时间，早于该时间的周不计入考核
	CreatedAt    time.Time    `json:"created_at"`
	UpdatedAt    time.Time    `json:"updated_at"`
}

func (Creator) TableName() string {
	return "creators"
}
