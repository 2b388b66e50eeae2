package model

import (
	"time"
)

// PayoutRecordModel 放款/退款记录
// 记录在状态变更的同一事务内写入；防重复支付依赖状态标志位而非本记录
type PayoutRecordModel struct {
	Id        int64     `json:"id" gorm:"primaryKey"`
	CreatedAt time.Time `json:"created_at"`
	UpdatedAt time.Time `json:"updated_at"`

	CampaignId     int64      `json:"campaign_id" gorm:"not null;index"`
	MilestoneIndex int        `json:"milestone_index"`               // 仅里程碑放款有效，其余写入-1（不加 default 标签，避免序号0被剔除）
	Address        string     `json:"address" gorm:"not null"`       // 收款方
	Amount         int64      `json:"amount" gorm:"not null"`        // 毛额
	PlatformFee    int64      `json:"platform_fee" gorm:"default:0"` // 平台手续费
	NetAmount      int64      `json:"net_amount" gorm:"not null"`    // 实际到账净额
	Type           PayoutType `json:"type" gorm:"not null"`
}

// PayoutType 放款类型
type PayoutType string

const (
	PayoutTypeClaim            PayoutType = "claim"             // 无里程碑活动创建者一次性提款
	PayoutTypeMilestoneRelease PayoutType = "milestone_release" // 里程碑分期放款
	PayoutTypeRefund           PayoutType = "refund"            // 失败活动普通退款
	PayoutTypeEmergencyRefund  PayoutType = "emergency_refund"  // 里程碑否决后的紧急退款
	PayoutTypePlatformFee      PayoutType = "platform_fee"      // 手续费入账到平台钱包
)

// TableName 自定义表名
func (PayoutRecordModel) TableName() string {
	return "payout_record"
}
