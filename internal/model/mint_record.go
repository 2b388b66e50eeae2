package model

import (
	"time"
)

// MintRecordModel 链上镜像铸币记录
// 本地代币账本先行落库（权威状态），链上ERC-20镜像铸币异步重试
type MintRecordModel struct {
	Id        int64     `json:"id" gorm:"primaryKey"`
	CreatedAt time.Time `json:"created_at"`
	UpdatedAt time.Time `json:"updated_at"`

	CampaignId int64  `json:"campaign_id" gorm:"not null;index"`
	Address    string `json:"address" gorm:"not null"`
	Amount     int64  `json:"amount" gorm:"not null"`

	Status   MintStatus `json:"status" gorm:"default:'pending';index"`
	TxHash   string     `json:"tx_hash"`
	Attempts int        `json:"attempts" gorm:"default:0"`
	LastErr  string     `json:"last_err" gorm:"type:text"`
}

// MintStatus 铸币记录状态
type MintStatus string

const (
	MintStatusPending MintStatus = "pending" // 待上链
	MintStatusSuccess MintStatus = "success" // 已上链
	MintStatusFailed  MintStatus = "failed"  // 超过重试上限
)

// TableName 自定义表名
func (MintRecordModel) TableName() string {
	return "mint_record"
}
