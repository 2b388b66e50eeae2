package handler

// 请求模型定义
// 调用方身份以地址字段传入，钱包签名校验属于UI/SDK层职责

// CreateCampaignRequest 创建活动请求
type CreateCampaignRequest struct {
	Creator         string `json:"creator" binding:"required"`
	Name            string `json:"name" binding:"required"`
	Description     string `json:"description"`
	Goal            int64  `json:"goal" binding:"required"`
	DurationDays    int    `json:"duration_days" binding:"required"`
	TokenName       string `json:"token_name"`
	TokenSymbol     string `json:"token_symbol"`
	FounderShareBps int64  `json:"founder_share_bps"`

	// 里程碑计划，四个数组长度一致时生效
	MilestoneTitles       []string `json:"milestone_titles"`
	MilestoneDescriptions []string `json:"milestone_descriptions"`
	MilestonePercentages  []int64  `json:"milestone_percentages_bps"`
	MilestoneDaysAfterEnd []int    `json:"milestone_days_after_end"`
}

// PledgeRequest 出资/撤回出资请求
type PledgeRequest struct {
	Address string `json:"address" binding:"required"`
	Amount  int64  `json:"amount" binding:"required"`
}

// CallerRequest 仅携带调用方地址的请求
type CallerRequest struct {
	Address string `json:"address" binding:"required"`
}

// SubmitMilestoneRequest 提交里程碑审批请求
type SubmitMilestoneRequest struct {
	Address string `json:"address" binding:"required"`
}

// CreateProposalRequest 创建普通提案请求
type CreateProposalRequest struct {
	CampaignId  int64  `json:"campaign_id" binding:"required"`
	Proposer    string `json:"proposer" binding:"required"`
	Title       string `json:"title" binding:"required"`
	Description string `json:"description"`
}

// VoteRequest 投票请求
type VoteRequest struct {
	Voter   string `json:"voter" binding:"required"`
	Support *bool  `json:"support" binding:"required"`
}
