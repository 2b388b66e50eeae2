package model

import (
	"time"
)

// TokenBalanceModel 股权代币余额（每个活动一套独立代币账本）
// 治理引擎的1%门槛和投票权重依赖本表在同一事务内同步可查
type TokenBalanceModel struct {
	Id        int64     `json:"id" gorm:"primaryKey"`
	CreatedAt time.Time `json:"created_at"`
	UpdatedAt time.Time `json:"updated_at"`

	CampaignId int64  `json:"campaign_id" gorm:"not null;uniqueIndex:idx_token_campaign_address"`
	Address    string `json:"address" gorm:"not null;uniqueIndex:idx_token_campaign_address"`
	Balance    int64  `json:"balance" gorm:"not null;default:0"`
}

// TableName 自定义表名
func (TokenBalanceModel) TableName() string {
	return "token_balance"
}
