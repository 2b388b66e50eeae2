package model

import (
	"time"
)

// ProposalModel 治理提案模型（全局自增ID）
type ProposalModel struct {
	Id        int64     `json:"id" gorm:"primaryKey"`
	CreatedAt time.Time `json:"created_at"`
	UpdatedAt time.Time `json:"updated_at"`

	CampaignId      int64  `json:"campaign_id" gorm:"not null;index"`
	ProposerAddress string `json:"proposer_address" gorm:"not null"`
	Title           string `json:"title" gorm:"not null"`
	Description     string `json:"description" gorm:"type:text"`

	// 票数为代币权重累计值
	ForVotes     int64 `json:"for_votes" gorm:"default:0"`
	AgainstVotes int64 `json:"against_votes" gorm:"default:0"`

	StartTime time.Time `json:"start_time" gorm:"not null"`
	EndTime   time.Time `json:"end_time" gorm:"not null"`

	Executed bool `json:"executed" gorm:"default:false"`
	Canceled bool `json:"canceled" gorm:"default:false"`

	// 仅 milestone 类型有效，普通提案由创建方显式写入-1
	// 不加 default 标签：gorm 会把零值字段从 INSERT 中剔除，序号0的里程碑会被默认值覆盖
	Type           ProposalType `json:"type" gorm:"not null;default:'general'"`
	MilestoneIndex int          `json:"milestone_index"`
}

// ProposalType 提案类型
type ProposalType string

const (
	ProposalTypeGeneral   ProposalType = "general"   // 普通提案（执行仅记录结果）
	ProposalTypeMilestone ProposalType = "milestone" // 里程碑提案（执行回调里程碑状态）
)

// ProposalStatus 提案状态，由时间与标记字段实时推导，不落库
type ProposalStatus string

const (
	ProposalStatusPending  ProposalStatus = "pending"  // 未到开始时间
	ProposalStatusActive   ProposalStatus = "active"   // 投票窗口内
	ProposalStatusEnded    ProposalStatus = "ended"    // 窗口结束，待执行
	ProposalStatusExecuted ProposalStatus = "executed" // 已执行（终态）
	ProposalStatusCanceled ProposalStatus = "canceled" // 已取消（终态）
)

// TableName 自定义表名
func (ProposalModel) TableName() string {
	return "proposal"
}

// StatusAt 推导提案在 now 时刻的状态
func (p *ProposalModel) StatusAt(now time.Time) ProposalStatus {
	switch {
	case p.Canceled:
		return ProposalStatusCanceled
	case p.Executed:
		return ProposalStatusExecuted
	case now.Before(p.StartTime):
		return ProposalStatusPending
	case now.Before(p.EndTime):
		return ProposalStatusActive
	default:
		return ProposalStatusEnded
	}
}

// Passed 简单多数判定：赞成票严格大于反对票才算通过，平票视为否决
func (p *ProposalModel) Passed() bool {
	return p.ForVotes > p.AgainstVotes
}
