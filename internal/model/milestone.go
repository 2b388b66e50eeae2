package model

import (
	"time"
)

// MilestoneModel 里程碑模型（按活动内序号寻址，严格顺序放款）
type MilestoneModel struct {
	Id        int64     `json:"id" gorm:"primaryKey"`
	CreatedAt time.Time `json:"created_at"`
	UpdatedAt time.Time `json:"updated_at"`

	CampaignId int64 `json:"campaign_id" gorm:"not null;uniqueIndex:idx_milestone_campaign_seq"`
	// 活动内序号，列名避开保留字 index
	Index int `json:"index" gorm:"column:seq;not null;uniqueIndex:idx_milestone_campaign_seq"`

	Title         string    `json:"title" gorm:"not null"`
	Description   string    `json:"description" gorm:"type:text"`
	PercentageBps int64     `json:"percentage_bps" gorm:"not null"` // 占总出资额的基点比例
	Deadline      time.Time `json:"deadline" gorm:"not null"`       // endAt + daysAfterEnd，仅作展示参考

	Status     MilestoneStatus `json:"status" gorm:"default:'pending'"`
	ProposalId int64           `json:"proposal_id" gorm:"default:0"` // 提交审批后绑定的提案ID
}

// MilestoneStatus 里程碑状态
type MilestoneStatus string

const (
	MilestoneStatusPending  MilestoneStatus = "pending"  // 待提交
	MilestoneStatusVoting   MilestoneStatus = "voting"   // 投票中
	MilestoneStatusApproved MilestoneStatus = "approved" // 投票通过，待放款
	MilestoneStatusReleased MilestoneStatus = "released" // 已放款（终态）
	MilestoneStatusRejected MilestoneStatus = "rejected" // 投票否决（终态，解锁全活动紧急退款）
)

// TableName 自定义表名
func (MilestoneModel) TableName() string {
	return "milestone"
}
