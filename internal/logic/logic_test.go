package logic

import (
	"path/filepath"
	"testing"
	"time"

	"github.com/glebarez/sqlite"
	"github.com/hoddukzoa12/crowdmantle-sub000/internal/config"
	"github.com/hoddukzoa12/crowdmantle-sub000/internal/event"
	"github.com/hoddukzoa12/crowdmantle-sub000/internal/model"
	"github.com/hoddukzoa12/crowdmantle-sub000/internal/repository"
	"github.com/hoddukzoa12/crowdmantle-sub000/internal/token"
	"github.com/stretchr/testify/require"
	"gorm.io/gorm"
	gormLogger "gorm.io/gorm/logger"
	"gorm.io/gorm/schema"
)

const (
	testCreator   = "0xaaaaaaaaaaaaaaaaaaaaaaaaaaaaaaaaaaaaaaaa"
	testInvestor1 = "0x1111111111111111111111111111111111111111"
	testInvestor2 = "0x2222222222222222222222222222222222222222"
	testInvestor3 = "0x3333333333333333333333333333333333333333"
	testPlatform  = "0xffffffffffffffffffffffffffffffffffffffff"
)

// testEnv 组装一套完整的业务引擎，落在独立的临时数据库上
type testEnv struct {
	t          *testing.T
	db         *gorm.DB
	campaign   *CampaignLogic
	milestone  *MilestoneLogic
	governance *GovernanceLogic
	disburse   *DisburseLogic
}

func newTestEnv(t *testing.T) *testEnv {
	t.Helper()

	db, err := gorm.Open(sqlite.Open(filepath.Join(t.TempDir(), "test.db")), &gorm.Config{
		Logger: gormLogger.Default.LogMode(gormLogger.Silent),
		NamingStrategy: &schema.NamingStrategy{
			SingularTable: true,
		},
	})
	require.NoError(t, err)
	require.NoError(t, repository.Migrate(db))

	cfg := config.EscrowConfig{
		PlatformFeeBps:       200,
		PlatformAddress:      testPlatform,
		MaxMilestones:        3,
		MaxDurationDays:      90,
		VotingPeriodDays:     3,
		ProposalThresholdBps: 100,
	}

	issuer := token.NewLedgerIssuer(false)
	recorder := event.NewRecorder()
	locks := NewKeyLocks()

	campaignLogic := NewCampaignLogic(db, cfg, issuer, recorder, locks)
	governanceLogic := NewGovernanceLogic(db, cfg, issuer, recorder, locks)
	milestoneLogic := NewMilestoneLogic(db, cfg, governanceLogic, recorder, locks)
	governanceLogic.BindEscrow(milestoneLogic)

	return &testEnv{
		t:          t,
		db:         db,
		campaign:   campaignLogic,
		milestone:  milestoneLogic,
		governance: governanceLogic,
		disburse:   NewDisburseLogic(db),
	}
}

// endCampaign 把活动结束时间拨到过去，模拟众筹已截止
func (e *testEnv) endCampaign(campaignId int64) {
	e.t.Helper()
	err := e.db.Model(&model.CampaignModel{}).
		Where("id = ?", campaignId).
		Update("end_at", time.Now().Add(-time.Hour)).Error
	require.NoError(e.t, err)
}

// closeVoting 把提案投票窗口拨到过去，模拟窗口已结束
func (e *testEnv) closeVoting(proposalId int64) {
	e.t.Helper()
	err := e.db.Model(&model.ProposalModel{}).
		Where("id = ?", proposalId).
		Update("end_time", time.Now().Add(-time.Minute)).Error
	require.NoError(e.t, err)
}

// createSimpleCampaign 创建无里程碑活动，目标10000
func (e *testEnv) createSimpleCampaign() *model.CampaignModel {
	e.t.Helper()
	campaign, err := e.campaign.CreateCampaign(CreateCampaignParams{
		Creator:      testCreator,
		Name:         "测试活动",
		Goal:         10000,
		DurationDays: 30,
		TokenName:    "Test Share",
		TokenSymbol:  "TST",
	})
	require.NoError(e.t, err)
	return campaign
}

// createMilestoneCampaign 创建 30/40/30 三期里程碑活动，目标10000
func (e *testEnv) createMilestoneCampaign() *model.CampaignModel {
	e.t.Helper()
	campaign, err := e.campaign.CreateCampaignWithMilestones(CreateCampaignParams{
		Creator:      testCreator,
		Name:         "里程碑活动",
		Goal:         10000,
		DurationDays: 30,
		TokenName:    "Test Share",
		TokenSymbol:  "TST",
	}, MilestonePlan{
		Titles:         []string{"原型", "开发", "交付"},
		Descriptions:   []string{"完成原型", "完成开发", "完成交付"},
		PercentagesBps: []int64{3000, 4000, 3000},
		DaysAfterEnd:   []int{30, 60, 90},
	})
	require.NoError(e.t, err)
	return campaign
}

// fundAndEnd 出资至达标并截止活动
func (e *testEnv) fundAndEnd(campaignId int64, pledges map[string]int64) {
	e.t.Helper()
	for addr, amount := range pledges {
		require.NoError(e.t, e.campaign.Pledge(campaignId, addr, amount))
	}
	e.endCampaign(campaignId)
}

// approveMilestone 走完一个里程碑的提交、投票、执行流程
// 投票人必须已持有代币
func (e *testEnv) approveMilestone(campaignId int64, index int, voter string, support bool) *model.ProposalModel {
	e.t.Helper()

	proposal, err := e.milestone.SubmitMilestoneForApproval(campaignId, index, testCreator)
	require.NoError(e.t, err)

	_, err = e.governance.Vote(proposal.Id, voter, support)
	require.NoError(e.t, err)

	e.closeVoting(proposal.Id)
	executed, err := e.governance.ExecuteProposal(proposal.Id, voter)
	require.NoError(e.t, err)
	return executed
}
