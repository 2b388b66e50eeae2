package logic

import (
	"testing"

	"github.com/hoddukzoa12/crowdmantle-sub000/internal/model"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestMilestonePlanValidation(t *testing.T) {
	env := newTestEnv(t)

	params := CreateCampaignParams{
		Creator:      testCreator,
		Name:         "里程碑活动",
		Goal:         10000,
		DurationDays: 30,
	}
	validPlan := MilestonePlan{
		Titles:         []string{"一期", "二期"},
		Descriptions:   []string{"", ""},
		PercentagesBps: []int64{6000, 4000},
		DaysAfterEnd:   []int{30, 60},
	}

	// 比例之和不足100%
	plan := validPlan
	plan.PercentagesBps = []int64{6000, 3000}
	_, err := env.campaign.CreateCampaignWithMilestones(params, plan)
	assert.ErrorIs(t, err, model.ErrPercentagesMustSumTo100)

	// 比例之和超出100%
	plan = validPlan
	plan.PercentagesBps = []int64{6000, 5000}
	_, err = env.campaign.CreateCampaignWithMilestones(params, plan)
	assert.ErrorIs(t, err, model.ErrPercentagesMustSumTo100)

	// 零比例分期
	plan = validPlan
	plan.PercentagesBps = []int64{10000, 0}
	_, err = env.campaign.CreateCampaignWithMilestones(params, plan)
	assert.ErrorIs(t, err, model.ErrPercentagesMustSumTo100)

	// 空计划
	_, err = env.campaign.CreateCampaignWithMilestones(params, MilestonePlan{})
	assert.ErrorIs(t, err, model.ErrInvalidMilestoneCount)

	// 超过数量上限
	plan = MilestonePlan{
		Titles:         []string{"1", "2", "3", "4"},
		Descriptions:   []string{"", "", "", ""},
		PercentagesBps: []int64{2500, 2500, 2500, 2500},
		DaysAfterEnd:   []int{10, 20, 30, 40},
	}
	_, err = env.campaign.CreateCampaignWithMilestones(params, plan)
	assert.ErrorIs(t, err, model.ErrInvalidMilestoneCount)

	// 数组长度不一致
	plan = validPlan
	plan.DaysAfterEnd = []int{30}
	_, err = env.campaign.CreateCampaignWithMilestones(params, plan)
	assert.ErrorIs(t, err, model.ErrInvalidMilestoneCount)

	// 截止日非严格递增
	plan = validPlan
	plan.DaysAfterEnd = []int{60, 60}
	_, err = env.campaign.CreateCampaignWithMilestones(params, plan)
	assert.ErrorIs(t, err, model.ErrInvalidMilestoneSchedule)

	plan = validPlan
	plan.DaysAfterEnd = []int{0, 60}
	_, err = env.campaign.CreateCampaignWithMilestones(params, plan)
	assert.ErrorIs(t, err, model.ErrInvalidMilestoneSchedule)
}

func TestCreateCampaignWithMilestones(t *testing.T) {
	env := newTestEnv(t)
	campaign := env.createMilestoneCampaign()

	assert.True(t, campaign.HasMilestones)

	milestones, err := env.milestone.GetCampaignMilestones(campaign.Id)
	require.NoError(t, err)
	require.Len(t, milestones, 3)
	for i, m := range milestones {
		assert.Equal(t, i, m.Index)
		assert.Equal(t, model.MilestoneStatusPending, m.Status)
	}
	assert.Equal(t, int64(3000), milestones[0].PercentageBps)
	assert.Equal(t, int64(4000), milestones[1].PercentageBps)
	assert.Equal(t, int64(3000), milestones[2].PercentageBps)
}

func TestSubmitMilestoneGuards(t *testing.T) {
	env := newTestEnv(t)
	campaign := env.createMilestoneCampaign()
	require.NoError(t, env.campaign.Pledge(campaign.Id, testInvestor1, 10000))

	// 未截止
	_, err := env.milestone.SubmitMilestoneForApproval(campaign.Id, 0, testCreator)
	assert.ErrorIs(t, err, model.ErrCampaignNotEnded)

	env.endCampaign(campaign.Id)

	// 非创建者
	_, err = env.milestone.SubmitMilestoneForApproval(campaign.Id, 0, testInvestor1)
	assert.ErrorIs(t, err, model.ErrNotCampaignCreator)

	// 越过顺序提交
	_, err = env.milestone.SubmitMilestoneForApproval(campaign.Id, 1, testCreator)
	assert.ErrorIs(t, err, model.ErrPreviousMilestoneNotCompleted)

	// 序号越界
	_, err = env.milestone.SubmitMilestoneForApproval(campaign.Id, 5, testCreator)
	assert.ErrorIs(t, err, model.ErrMilestoneNotFound)

	// 正常提交后重复提交
	_, err = env.milestone.SubmitMilestoneForApproval(campaign.Id, 0, testCreator)
	require.NoError(t, err)
	_, err = env.milestone.SubmitMilestoneForApproval(campaign.Id, 0, testCreator)
	assert.ErrorIs(t, err, model.ErrMilestoneProposalOutstanding)

	// 无里程碑活动
	simple := env.createSimpleCampaign()
	env.fundAndEnd(simple.Id, map[string]int64{testInvestor1: 10000})
	_, err = env.milestone.SubmitMilestoneForApproval(simple.Id, 0, testCreator)
	assert.ErrorIs(t, err, model.ErrNoMilestones)
}

func TestSubmitMilestoneUnsuccessfulCampaign(t *testing.T) {
	env := newTestEnv(t)
	campaign := env.createMilestoneCampaign()
	env.fundAndEnd(campaign.Id, map[string]int64{testInvestor1: 100})

	_, err := env.milestone.SubmitMilestoneForApproval(campaign.Id, 0, testCreator)
	assert.ErrorIs(t, err, model.ErrCampaignNotSuccessful)
}

func TestMilestoneReleaseFlow(t *testing.T) {
	env := newTestEnv(t)
	campaign := env.createMilestoneCampaign()
	env.fundAndEnd(campaign.Id, map[string]int64{testInvestor1: 10000})

	// 投票权重来自股权代币
	_, err := env.campaign.ClaimTokens(campaign.Id, testInvestor1)
	require.NoError(t, err)

	// 未审批不能放款
	_, err = env.milestone.ReleaseMilestoneFunds(campaign.Id, 0, testCreator)
	assert.ErrorIs(t, err, model.ErrMilestoneNotApproved)

	env.approveMilestone(campaign.Id, 0, testInvestor1, true)

	milestone, err := env.milestone.GetMilestone(campaign.Id, 0)
	require.NoError(t, err)
	assert.Equal(t, model.MilestoneStatusApproved, milestone.Status)

	// 30%分期：3000毛额，2%手续费60，净额2940
	payout, err := env.milestone.ReleaseMilestoneFunds(campaign.Id, 0, testCreator)
	require.NoError(t, err)
	assert.Equal(t, int64(3000), payout.Amount)
	assert.Equal(t, int64(60), payout.PlatformFee)
	assert.Equal(t, int64(2940), payout.NetAmount)

	// 重复放款
	_, err = env.milestone.ReleaseMilestoneFunds(campaign.Id, 0, testCreator)
	assert.ErrorIs(t, err, model.ErrMilestoneNotApproved)

	// 未放款余额 = 10000 - 3000
	unreleased, err := env.milestone.GetUnreleasedFunds(campaign.Id)
	require.NoError(t, err)
	assert.Equal(t, int64(7000), unreleased)

	got, err := env.campaign.GetCampaign(campaign.Id)
	require.NoError(t, err)
	assert.Equal(t, int64(3000), got.ReleasedAmount)

	// 第一期放款后第二期可以提交
	_, err = env.milestone.SubmitMilestoneForApproval(campaign.Id, 1, testCreator)
	require.NoError(t, err)
}

func TestMilestoneSequentialRelease(t *testing.T) {
	env := newTestEnv(t)
	campaign := env.createMilestoneCampaign()
	env.fundAndEnd(campaign.Id, map[string]int64{testInvestor1: 10000})
	_, err := env.campaign.ClaimTokens(campaign.Id, testInvestor1)
	require.NoError(t, err)

	// 三期依次走完
	var released int64
	for i := 0; i < 3; i++ {
		env.approveMilestone(campaign.Id, i, testInvestor1, true)
		payout, err := env.milestone.ReleaseMilestoneFunds(campaign.Id, i, testCreator)
		require.NoError(t, err)
		released += payout.Amount
	}
	assert.Equal(t, int64(10000), released)

	unreleased, err := env.milestone.GetUnreleasedFunds(campaign.Id)
	require.NoError(t, err)
	assert.Equal(t, int64(0), unreleased)

	// 平台累计手续费 = 60 + 80 + 60
	revenue, err := env.disburse.GetPlatformRevenue()
	require.NoError(t, err)
	assert.Equal(t, int64(200), revenue)
}

func TestMilestoneRejectionAndEmergencyRefund(t *testing.T) {
	env := newTestEnv(t)
	campaign := env.createMilestoneCampaign()
	env.fundAndEnd(campaign.Id, map[string]int64{
		testInvestor1: 6000,
		testInvestor2: 4000,
	})
	_, err := env.campaign.ClaimTokens(campaign.Id, testInvestor1)
	require.NoError(t, err)

	// 未有里程碑被否决时不允许紧急退款
	_, err = env.milestone.EmergencyRefund(campaign.Id, testInvestor1)
	assert.ErrorIs(t, err, model.ErrMilestoneNotRejected)

	// 投票否决第一期
	env.approveMilestone(campaign.Id, 0, testInvestor1, false)

	milestone, err := env.milestone.GetMilestone(campaign.Id, 0)
	require.NoError(t, err)
	assert.Equal(t, model.MilestoneStatusRejected, milestone.Status)

	// 否决的里程碑不能放款
	_, err = env.milestone.ReleaseMilestoneFunds(campaign.Id, 0, testCreator)
	assert.ErrorIs(t, err, model.ErrMilestoneNotApproved)

	// 紧急退款取回全部出资，不收手续费
	refunded, err := env.milestone.EmergencyRefund(campaign.Id, testInvestor2)
	require.NoError(t, err)
	assert.Equal(t, int64(4000), refunded)

	payouts, _, err := env.disburse.GetCampaignPayouts(campaign.Id, 1, 10)
	require.NoError(t, err)
	require.Len(t, payouts, 1)
	assert.Equal(t, model.PayoutTypeEmergencyRefund, payouts[0].Type)
	assert.Equal(t, int64(0), payouts[0].PlatformFee)

	// 重复紧急退款
	_, err = env.milestone.EmergencyRefund(campaign.Id, testInvestor2)
	assert.ErrorIs(t, err, model.ErrNothingToRefund)

	// 另一位投资人仍可退款
	refunded, err = env.milestone.EmergencyRefund(campaign.Id, testInvestor1)
	require.NoError(t, err)
	assert.Equal(t, int64(6000), refunded)
}

func TestMilestoneProposalKeepsIndexZero(t *testing.T) {
	env := newTestEnv(t)
	campaign := env.createMilestoneCampaign()
	env.fundAndEnd(campaign.Id, map[string]int64{testInvestor1: 10000})
	_, err := env.campaign.ClaimTokens(campaign.Id, testInvestor1)
	require.NoError(t, err)

	proposal, err := env.milestone.SubmitMilestoneForApproval(campaign.Id, 0, testCreator)
	require.NoError(t, err)

	// 落库后的序号必须仍是0，不能被列默认值改写
	var persisted model.ProposalModel
	require.NoError(t, env.db.First(&persisted, proposal.Id).Error)
	assert.Equal(t, 0, persisted.MilestoneIndex)
	assert.Equal(t, model.ProposalTypeMilestone, persisted.Type)

	// 执行回调按落库序号找到第一期
	_, err = env.governance.Vote(proposal.Id, testInvestor1, true)
	require.NoError(t, err)
	env.closeVoting(proposal.Id)
	_, err = env.governance.ExecuteProposal(proposal.Id, testInvestor1)
	require.NoError(t, err)

	milestone, err := env.milestone.GetMilestone(campaign.Id, 0)
	require.NoError(t, err)
	assert.Equal(t, model.MilestoneStatusApproved, milestone.Status)

	// 放款记录同样保留序号0
	_, err = env.milestone.ReleaseMilestoneFunds(campaign.Id, 0, testCreator)
	require.NoError(t, err)
	var record model.PayoutRecordModel
	err = env.db.Where("campaign_id = ? AND type = ?", campaign.Id, model.PayoutTypeMilestoneRelease).
		First(&record).Error
	require.NoError(t, err)
	assert.Equal(t, 0, record.MilestoneIndex)
}

func TestEmergencyRefundAfterPartialRelease(t *testing.T) {
	env := newTestEnv(t)
	campaign := env.createMilestoneCampaign()
	env.fundAndEnd(campaign.Id, map[string]int64{
		testInvestor1: 6000,
		testInvestor2: 4000,
	})
	_, err := env.campaign.ClaimTokens(campaign.Id, testInvestor1)
	require.NoError(t, err)

	// 第一期30%放款后第二期被否决
	env.approveMilestone(campaign.Id, 0, testInvestor1, true)
	released, err := env.milestone.ReleaseMilestoneFunds(campaign.Id, 0, testCreator)
	require.NoError(t, err)
	require.Equal(t, int64(3000), released.Amount)

	env.approveMilestone(campaign.Id, 1, testInvestor1, false)

	// 退款按未放款余额7000折算：6000 × 7000 / 10000 = 4200
	refunded1, err := env.milestone.EmergencyRefund(campaign.Id, testInvestor1)
	require.NoError(t, err)
	assert.Equal(t, int64(4200), refunded1)

	refunded2, err := env.milestone.EmergencyRefund(campaign.Id, testInvestor2)
	require.NoError(t, err)
	assert.Equal(t, int64(2800), refunded2)

	// 已放款 + 退款总额不得超过总出资额
	got, err := env.campaign.GetCampaign(campaign.Id)
	require.NoError(t, err)
	assert.LessOrEqual(t, got.ReleasedAmount+refunded1+refunded2, got.Pledged)

	// 放款记录逐笔求和同样守恒，平台手续费行是放款毛额的一部分不另计
	var outflow int64
	err = env.db.Model(&model.PayoutRecordModel{}).
		Where("campaign_id = ? AND type <> ?", campaign.Id, model.PayoutTypePlatformFee).
		Select("COALESCE(SUM(amount), 0)").
		Scan(&outflow).Error
	require.NoError(t, err)
	assert.Equal(t, int64(10000), outflow)
	assert.LessOrEqual(t, outflow, got.Pledged)
}

func TestMilestoneAmountScalesWithOverfunding(t *testing.T) {
	env := newTestEnv(t)
	campaign := env.createMilestoneCampaign()
	// 超募：目标10000实收20000，各期按总出资额等比例放大
	env.fundAndEnd(campaign.Id, map[string]int64{testInvestor1: 20000})
	_, err := env.campaign.ClaimTokens(campaign.Id, testInvestor1)
	require.NoError(t, err)

	env.approveMilestone(campaign.Id, 0, testInvestor1, true)
	payout, err := env.milestone.ReleaseMilestoneFunds(campaign.Id, 0, testCreator)
	require.NoError(t, err)
	assert.Equal(t, int64(6000), payout.Amount)
}

func TestUnreleasedFundsConservation(t *testing.T) {
	env := newTestEnv(t)
	campaign := env.createMilestoneCampaign()
	env.fundAndEnd(campaign.Id, map[string]int64{testInvestor1: 10000})
	_, err := env.campaign.ClaimTokens(campaign.Id, testInvestor1)
	require.NoError(t, err)

	// 放款后任意时刻：已放款 + 未放款 == 总出资额
	env.approveMilestone(campaign.Id, 0, testInvestor1, true)
	_, err = env.milestone.ReleaseMilestoneFunds(campaign.Id, 0, testCreator)
	require.NoError(t, err)

	got, err := env.campaign.GetCampaign(campaign.Id)
	require.NoError(t, err)
	unreleased, err := env.milestone.GetUnreleasedFunds(campaign.Id)
	require.NoError(t, err)
	assert.Equal(t, got.Pledged, got.ReleasedAmount+unreleased)
}
