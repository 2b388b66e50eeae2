package model

import (
	"errors"
)

// 业务错误定义
// 所有违规操作同步返回类型化错误且对状态零副作用；重试由调用方负责
var (
	// 资源不存在
	ErrCampaignNotFound  = errors.New("活动不存在")
	ErrMilestoneNotFound = errors.New("里程碑不存在")
	ErrProposalNotFound  = errors.New("提案不存在")

	// 前置条件违规（调用者/角色/时机错误）
	ErrNotCampaignCreator = errors.New("只有活动创建者可以执行此操作")
	ErrNotProposer        = errors.New("只有提案发起人可以取消提案")
	ErrNotEscrow          = errors.New("只有托管引擎可以创建里程碑提案")
	ErrCampaignEnded      = errors.New("活动已结束")
	ErrCampaignNotEnded   = errors.New("活动尚未结束")
	ErrVotingNotStarted   = errors.New("投票尚未开始")
	ErrVotingClosed       = errors.New("投票窗口已关闭")
	ErrVotingNotEnded     = errors.New("投票窗口尚未结束")

	// 状态违规（生命周期阶段错误）
	ErrCampaignNotSuccessful         = errors.New("活动未达成目标")
	ErrCampaignSuccessful            = errors.New("活动已达成目标，不能退款")
	ErrAlreadyClaimed                = errors.New("已经提取过资金")
	ErrAlreadyVoted                  = errors.New("已经投过票")
	ErrAlreadyExecuted               = errors.New("提案已执行")
	ErrProposalCanceled              = errors.New("提案已取消")
	ErrPreviousMilestoneNotCompleted = errors.New("前序里程碑尚未放款完成")
	ErrMilestoneNotPending           = errors.New("里程碑不在待提交状态")
	ErrMilestoneNotApproved          = errors.New("里程碑尚未投票通过")
	ErrMilestoneNotRejected          = errors.New("没有被否决的里程碑，不能紧急退款")
	ErrMilestoneProposalOutstanding  = errors.New("该里程碑已有未决提案")
	ErrNoMilestones                  = errors.New("活动没有里程碑计划")
	ErrHasMilestones                 = errors.New("里程碑活动必须按里程碑分期放款")

	// 输入校验违规（在任何状态读取之前拒绝）
	ErrInvalidAmount            = errors.New("金额必须大于0")
	ErrInvalidDuration          = errors.New("众筹天数超出允许范围")
	ErrInvalidFounderShare      = errors.New("创建者预留份额超出上限")
	ErrInvalidMilestoneCount    = errors.New("里程碑数量不合法")
	ErrPercentagesMustSumTo100  = errors.New("里程碑比例之和必须恰好等于100%")
	ErrInvalidMilestoneSchedule = errors.New("里程碑截止时间必须严格递增")

	// 不足类违规（在变更之前拒绝）
	ErrInsufficientPledge = errors.New("出资余额不足")
	ErrInsufficientTokens = errors.New("持有代币未达到提案门槛")
	ErrNothingToRefund    = errors.New("没有可退款的出资")
	ErrTokensNotClaimed   = errors.New("没有可领取的代币")
)
