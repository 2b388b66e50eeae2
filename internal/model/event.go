package model

import (
	"time"
)

// EventModel 领域事件记录
// 与状态变更同一事务写入，携带足够字段供外部读模型重建当前状态
type EventModel struct {
	Id        int64     `json:"id" gorm:"primaryKey"`
	CreatedAt time.Time `json:"created_at"`

	EventType  EventType `json:"event_type" gorm:"not null;index"`
	CampaignId int64     `json:"campaign_id" gorm:"not null;index"`
	ProposalId int64     `json:"proposal_id" gorm:"default:0"`
	Data       string    `json:"data" gorm:"type:text"` // JSON载荷
	Dispatched bool      `json:"dispatched" gorm:"default:false;index"`
}

// EventType 事件类型
type EventType string

const (
	EventCampaignCreated           EventType = "CampaignCreated"
	EventPledged                   EventType = "Pledged"
	EventUnpledged                 EventType = "Unpledged"
	EventCampaignClaimed           EventType = "CampaignClaimed"
	EventCampaignSucceeded         EventType = "CampaignSucceeded"
	EventCampaignFailed            EventType = "CampaignFailed"
	EventMilestoneSubmitted        EventType = "MilestoneSubmitted"
	EventMilestoneStatusUpdated    EventType = "MilestoneStatusUpdated"
	EventMilestoneFundsReleased    EventType = "MilestoneFundsReleased"
	EventEmergencyRefund           EventType = "EmergencyRefund"
	EventTokensClaimed             EventType = "TokensClaimed"
	EventRefunded                  EventType = "Refunded"
	EventProposalCreated           EventType = "ProposalCreated"
	EventVoted                     EventType = "Voted"
	EventProposalExecuted          EventType = "ProposalExecuted"
	EventMilestoneProposalExecuted EventType = "MilestoneProposalExecuted"
	EventProposalCanceled          EventType = "ProposalCanceled"
)

// TableName 自定义表名
func (EventModel) TableName() string {
	return "event"
}
