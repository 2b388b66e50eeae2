package model

import (
	"time"
)

// CampaignModel 众筹活动模型
type CampaignModel struct {
	Id        int64     `json:"id" gorm:"primaryKey"`
	CreatedAt time.Time `json:"created_at"`
	UpdatedAt time.Time `json:"updated_at"`

	// 基本信息
	Name        string `json:"name" gorm:"not null" binding:"required"`
	Description string `json:"description" gorm:"type:text"`

	// 募资信息（最小单位定点金额）
	Goal    int64 `json:"goal" gorm:"not null"`
	Pledged int64 `json:"pledged" gorm:"default:0"`

	// 时间信息
	StartAt time.Time `json:"start_at" gorm:"not null"`
	EndAt   time.Time `json:"end_at" gorm:"not null"`

	// 创建者信息
	CreatorAddress string `json:"creator_address" gorm:"not null;index"`

	// 股权代币信息
	TokenName            string `json:"token_name"`
	TokenSymbol          string `json:"token_symbol"`
	FounderShareBps      int64  `json:"founder_share_bps" gorm:"default:0"` // 创建者预留份额（基点，0-3000）
	FounderTokensClaimed bool   `json:"founder_tokens_claimed" gorm:"default:false"`

	// 放款信息
	Claimed        bool  `json:"claimed" gorm:"default:false"`        // 无里程碑活动：创建者是否已一次性提款
	HasMilestones  bool  `json:"has_milestones" gorm:"default:false"` // 创建后不可变，决定放款路径
	ReleasedAmount int64 `json:"released_amount" gorm:"default:0"`    // 已按里程碑放款的累计金额

	// 结束事件是否已发出（定时任务置位）
	Finalized bool `json:"finalized" gorm:"default:false"`
}

// TableName 自定义表名
func (CampaignModel) TableName() string {
	return "campaign"
}

// 众筹策略常量
const (
	MinDurationDays    = 1    // 最短众筹天数
	MaxFounderShareBps = 3000 // 创建者预留份额上限（30%）
)
