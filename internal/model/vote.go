package model

import (
	"time"
)

// VoteModel 投票记录（每个提案 × 投票人唯一，重复投票报错而非覆盖）
type VoteModel struct {
	Id        int64     `json:"id" gorm:"primaryKey"`
	CreatedAt time.Time `json:"created_at"`

	ProposalId int64  `json:"proposal_id" gorm:"not null;uniqueIndex:idx_vote_proposal_voter"`
	Voter      string `json:"voter" gorm:"not null;uniqueIndex:idx_vote_proposal_voter"`
	Weight     int64  `json:"weight" gorm:"not null"` // 投票时刻的代币余额
	Support    bool   `json:"support" gorm:"not null"`
}

// TableName 自定义表名
func (VoteModel) TableName() string {
	return "vote"
}
