package model

import (
	"time"
)

// PledgeModel 出资记录（每个活动 × 投资人一条）
// 金额为0视为不存在出资关系
type PledgeModel struct {
	Id        int64     `json:"id" gorm:"primaryKey"`
	CreatedAt time.Time `json:"created_at"`
	UpdatedAt time.Time `json:"updated_at"`

	CampaignId int64  `json:"campaign_id" gorm:"not null;uniqueIndex:idx_pledge_campaign_address"`
	Address    string `json:"address" gorm:"not null;uniqueIndex:idx_pledge_campaign_address"`
	Amount     int64  `json:"amount" gorm:"not null;default:0"`

	// 代币领取标记：每个投资人只能按出资1:1领取一次股权代币
	TokensClaimed bool `json:"tokens_claimed" gorm:"default:false"`
}

// TableName 自定义表名
func (PledgeModel) TableName() string {
	return "pledge"
}
