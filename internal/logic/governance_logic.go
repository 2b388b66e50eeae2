package logic

import (
	"errors"
	"fmt"
	"time"

	"github.com/hoddukzoa12/crowdmantle-sub000/internal/config"
	"github.com/hoddukzoa12/crowdmantle-sub000/internal/event"
	"github.com/hoddukzoa12/crowdmantle-sub000/internal/ledger"
	"github.com/hoddukzoa12/crowdmantle-sub000/internal/model"
	"github.com/hoddukzoa12/crowdmantle-sub000/internal/token"
	"gorm.io/gorm"
)

// GovernanceLogic 治理引擎业务逻辑
// 提案生命周期：创建 → 投票 → 执行/取消；执行严格一次
type GovernanceLogic struct {
	db       *gorm.DB
	cfg      config.EscrowConfig
	issuer   token.Issuer
	recorder *event.Recorder
	locks    *KeyLocks

	// 绑定的托管引擎：里程碑提案只能由它创建，执行结果回调给它
	escrow *MilestoneLogic
}

// NewGovernanceLogic 创建治理引擎
func NewGovernanceLogic(db *gorm.DB, cfg config.EscrowConfig, issuer token.Issuer,
	recorder *event.Recorder, locks *KeyLocks) *GovernanceLogic {
	return &GovernanceLogic{
		db:       db,
		cfg:      cfg,
		issuer:   issuer,
		recorder: recorder,
		locks:    locks,
	}
}

// BindEscrow 绑定唯一授权的托管引擎，启动时注入一次
func (l *GovernanceLogic) BindEscrow(escrow *MilestoneLogic) {
	l.escrow = escrow
}

// CreateProposal 创建普通提案
// 发起人必须持有该活动代币总量的门槛比例（默认1%），每次调用实时校验
func (l *GovernanceLogic) CreateProposal(campaignId int64, proposer, title, description string) (*model.ProposalModel, error) {
	addr, err := ledger.NormalizeAddress(proposer)
	if err != nil {
		return nil, err
	}

	unlock := l.locks.LockCampaign(campaignId)
	defer unlock()

	var proposal *model.ProposalModel
	err = l.db.Transaction(func(tx *gorm.DB) error {
		if _, err := findCampaign(tx, campaignId); err != nil {
			return err
		}

		supply, err := l.issuer.TotalSupply(tx, campaignId)
		if err != nil {
			return err
		}
		balance, err := l.issuer.BalanceOf(tx, campaignId, addr)
		if err != nil {
			return err
		}
		// 总量为零时持有0也满足0门槛，显式拒绝
		threshold := ledger.ApplyBps(supply, l.cfg.ProposalThresholdBps)
		if supply == 0 || balance == 0 || balance < threshold {
			return model.ErrInsufficientTokens
		}

		now := time.Now()
		proposal = &model.ProposalModel{
			CampaignId:      campaignId,
			ProposerAddress: addr,
			Title:           title,
			Description:     description,
			StartTime:       now,
			EndTime:         now.AddDate(0, 0, l.cfg.VotingPeriodDays),
			Type:            model.ProposalTypeGeneral,
			MilestoneIndex:  -1,
		}
		if err := tx.Create(proposal).Error; err != nil {
			return fmt.Errorf("创建提案失败: %w", err)
		}

		return l.recorder.Record(tx, model.EventProposalCreated, campaignId, proposal.Id, map[string]interface{}{
			"proposal_id": proposal.Id,
			"campaign_id": campaignId,
			"proposer":    addr,
			"title":       title,
			"type":        model.ProposalTypeGeneral,
			"start_time":  proposal.StartTime,
			"end_time":    proposal.EndTime,
		})
	})
	if err != nil {
		return nil, err
	}

	return proposal, nil
}

// CreateMilestoneProposal 创建里程碑提案
// 能力校验：只接受绑定的托管引擎作为调用方，外部直接调用一律拒绝
// 在托管引擎提交里程碑的事务内执行
func (l *GovernanceLogic) CreateMilestoneProposal(tx *gorm.DB, caller *MilestoneLogic,
	campaign *model.CampaignModel, milestone *model.MilestoneModel) (*model.ProposalModel, error) {
	if l.escrow == nil || caller != l.escrow {
		return nil, model.ErrNotEscrow
	}

	// 同一 (活动, 里程碑序号) 不允许并存未决提案
	var outstanding int64
	err := tx.Model(&model.ProposalModel{}).
		Where("campaign_id = ? AND type = ? AND milestone_index = ? AND executed = ? AND canceled = ?",
			campaign.Id, model.ProposalTypeMilestone, milestone.Index, false, false).
		Count(&outstanding).Error
	if err != nil {
		return nil, err
	}
	if outstanding > 0 {
		return nil, model.ErrMilestoneProposalOutstanding
	}

	now := time.Now()
	proposal := &model.ProposalModel{
		CampaignId:      campaign.Id,
		ProposerAddress: campaign.CreatorAddress,
		Title:           fmt.Sprintf("里程碑审批: %s", milestone.Title),
		Description:     milestone.Description,
		StartTime:       now,
		EndTime:         now.AddDate(0, 0, l.cfg.VotingPeriodDays),
		Type:            model.ProposalTypeMilestone,
		MilestoneIndex:  milestone.Index,
	}
	if err := tx.Create(proposal).Error; err != nil {
		return nil, fmt.Errorf("创建里程碑提案失败: %w", err)
	}

	if err := l.recorder.Record(tx, model.EventProposalCreated, campaign.Id, proposal.Id, map[string]interface{}{
		"proposal_id":     proposal.Id,
		"campaign_id":     campaign.Id,
		"proposer":        campaign.CreatorAddress,
		"title":           proposal.Title,
		"type":            model.ProposalTypeMilestone,
		"milestone_index": milestone.Index,
		"start_time":      proposal.StartTime,
		"end_time":        proposal.EndTime,
	}); err != nil {
		return nil, err
	}

	return proposal, nil
}

// Vote 投票
// 权重取投票时刻的代币余额（非提案创建时的快照），重复投票报错且票数不变
// 已知经济学缺口：投票人可在窗口内增持代币提高权重，或投票后转走代币而已计权重不变
func (l *GovernanceLogic) Vote(proposalId int64, voter string, support bool) (int64, error) {
	addr, err := ledger.NormalizeAddress(voter)
	if err != nil {
		return 0, err
	}

	unlock := l.locks.LockProposal(proposalId)
	defer unlock()

	var weight int64
	err = l.db.Transaction(func(tx *gorm.DB) error {
		proposal, err := findProposal(tx, proposalId)
		if err != nil {
			return err
		}
		if proposal.Canceled {
			return model.ErrProposalCanceled
		}
		now := time.Now()
		if now.Before(proposal.StartTime) {
			return model.ErrVotingNotStarted
		}
		if !now.Before(proposal.EndTime) {
			return model.ErrVotingClosed
		}

		var existing model.VoteModel
		err = tx.Where("proposal_id = ? AND voter = ?", proposalId, addr).First(&existing).Error
		if err == nil {
			return model.ErrAlreadyVoted
		}
		if !errors.Is(err, gorm.ErrRecordNotFound) {
			return err
		}

		weight, err = l.issuer.BalanceOf(tx, proposal.CampaignId, addr)
		if err != nil {
			return err
		}
		if weight <= 0 {
			return model.ErrInsufficientTokens
		}

		vote := model.VoteModel{
			ProposalId: proposalId,
			Voter:      addr,
			Weight:     weight,
			Support:    support,
		}
		if err := tx.Create(&vote).Error; err != nil {
			return fmt.Errorf("创建投票记录失败: %w", err)
		}

		column := "against_votes"
		if support {
			column = "for_votes"
		}
		if err := tx.Model(proposal).
			Update(column, gorm.Expr(column+" + ?", weight)).Error; err != nil {
			return fmt.Errorf("更新票数失败: %w", err)
		}

		return l.recorder.Record(tx, model.EventVoted, proposal.CampaignId, proposalId, map[string]interface{}{
			"proposal_id": proposalId,
			"campaign_id": proposal.CampaignId,
			"voter":       addr,
			"support":     support,
			"weight":      weight,
		})
	})
	if err != nil {
		return 0, err
	}

	return weight, nil
}

// ExecuteProposal 执行提案
// 任何人可在投票窗口结束后触发，执行严格一次
// 通过 = 赞成票严格多于反对票；里程碑提案回调托管引擎更新里程碑状态
func (l *GovernanceLogic) ExecuteProposal(proposalId int64, executor string) (*model.ProposalModel, error) {
	unlock := l.locks.LockProposal(proposalId)
	defer unlock()

	var result *model.ProposalModel
	err := l.db.Transaction(func(tx *gorm.DB) error {
		proposal, err := findProposal(tx, proposalId)
		if err != nil {
			return err
		}
		if proposal.Executed {
			return model.ErrAlreadyExecuted
		}
		if proposal.Canceled {
			return model.ErrProposalCanceled
		}
		if time.Now().Before(proposal.EndTime) {
			return model.ErrVotingNotEnded
		}

		passed := proposal.Passed()
		if err := tx.Model(proposal).Update("executed", true).Error; err != nil {
			return fmt.Errorf("更新提案执行标记失败: %w", err)
		}

		if err := l.recorder.Record(tx, model.EventProposalExecuted, proposal.CampaignId, proposalId, map[string]interface{}{
			"proposal_id":   proposalId,
			"campaign_id":   proposal.CampaignId,
			"executor":      executor,
			"passed":        passed,
			"for_votes":     proposal.ForVotes,
			"against_votes": proposal.AgainstVotes,
		}); err != nil {
			return err
		}

		if proposal.Type == model.ProposalTypeMilestone {
			// 锁定顺序：先提案后活动
			unlockCampaign := l.locks.LockCampaign(proposal.CampaignId)
			defer unlockCampaign()

			if err := l.escrow.OnMilestoneProposalExecuted(tx, proposal.CampaignId, proposal.MilestoneIndex, passed); err != nil {
				return err
			}
			if err := l.recorder.Record(tx, model.EventMilestoneProposalExecuted, proposal.CampaignId, proposalId, map[string]interface{}{
				"proposal_id":     proposalId,
				"campaign_id":     proposal.CampaignId,
				"milestone_index": proposal.MilestoneIndex,
				"passed":          passed,
			}); err != nil {
				return err
			}
		}

		proposal.Executed = true
		result = proposal
		return nil
	})
	if err != nil {
		return nil, err
	}

	return result, nil
}

// CancelProposal 取消提案
// 只有发起人可以取消，且必须在执行之前
func (l *GovernanceLogic) CancelProposal(proposalId int64, caller string) error {
	addr, err := ledger.NormalizeAddress(caller)
	if err != nil {
		return err
	}

	unlock := l.locks.LockProposal(proposalId)
	defer unlock()

	return l.db.Transaction(func(tx *gorm.DB) error {
		proposal, err := findProposal(tx, proposalId)
		if err != nil {
			return err
		}
		if proposal.ProposerAddress != addr {
			return model.ErrNotProposer
		}
		if proposal.Executed {
			return model.ErrAlreadyExecuted
		}
		if proposal.Canceled {
			return model.ErrProposalCanceled
		}

		if err := tx.Model(proposal).Update("canceled", true).Error; err != nil {
			return fmt.Errorf("更新提案取消标记失败: %w", err)
		}

		if proposal.Type == model.ProposalTypeMilestone {
			unlockCampaign := l.locks.LockCampaign(proposal.CampaignId)
			defer unlockCampaign()

			if err := l.escrow.OnMilestoneProposalCanceled(tx, proposal.CampaignId, proposal.MilestoneIndex); err != nil {
				return err
			}
		}

		return l.recorder.Record(tx, model.EventProposalCanceled, proposal.CampaignId, proposalId, map[string]interface{}{
			"proposal_id": proposalId,
			"campaign_id": proposal.CampaignId,
			"proposer":    addr,
		})
	})
}

// GetProposal 获取提案详情
func (l *GovernanceLogic) GetProposal(proposalId int64) (*model.ProposalModel, error) {
	return findProposal(l.db, proposalId)
}

// GetCampaignProposals 获取活动的提案列表
func (l *GovernanceLogic) GetCampaignProposals(campaignId int64, page, pageSize int) ([]model.ProposalModel, int64, error) {
	var proposals []model.ProposalModel
	var total int64

	if err := l.db.Model(&model.ProposalModel{}).Where("campaign_id = ?", campaignId).Count(&total).Error; err != nil {
		return nil, 0, fmt.Errorf("获取提案总数失败: %w", err)
	}

	offset := (page - 1) * pageSize
	if err := l.db.Where("campaign_id = ?", campaignId).
		Order("created_at DESC").
		Offset(offset).
		Limit(pageSize).
		Find(&proposals).Error; err != nil {
		return nil, 0, fmt.Errorf("获取提案列表失败: %w", err)
	}

	return proposals, total, nil
}

// VotingResults 投票结果统计
type VotingResults struct {
	ForVotes       int64   `json:"for_votes"`
	AgainstVotes   int64   `json:"against_votes"`
	TotalVotes     int64   `json:"total_votes"`
	ForPercent     float64 `json:"for_percent"`
	AgainstPercent float64 `json:"against_percent"`
}

// GetVotingResults 获取投票结果
// 百分比按已投票总权重计算，零票时返回0/0避免除零
func (l *GovernanceLogic) GetVotingResults(proposalId int64) (*VotingResults, error) {
	proposal, err := findProposal(l.db, proposalId)
	if err != nil {
		return nil, err
	}

	results := &VotingResults{
		ForVotes:     proposal.ForVotes,
		AgainstVotes: proposal.AgainstVotes,
		TotalVotes:   proposal.ForVotes + proposal.AgainstVotes,
	}
	if results.TotalVotes > 0 {
		results.ForPercent = float64(proposal.ForVotes) / float64(results.TotalVotes) * 100
		results.AgainstPercent = float64(proposal.AgainstVotes) / float64(results.TotalVotes) * 100
	}
	return results, nil
}

// GetProposalStatus 获取提案当前状态（实时推导）
func (l *GovernanceLogic) GetProposalStatus(proposalId int64) (model.ProposalStatus, error) {
	proposal, err := findProposal(l.db, proposalId)
	if err != nil {
		return "", err
	}
	return proposal.StatusAt(time.Now()), nil
}

// GetTimeRemaining 获取投票窗口剩余时长，窗口已结束返回0
func (l *GovernanceLogic) GetTimeRemaining(proposalId int64) (time.Duration, error) {
	proposal, err := findProposal(l.db, proposalId)
	if err != nil {
		return 0, err
	}
	remaining := time.Until(proposal.EndTime)
	if remaining < 0 {
		return 0, nil
	}
	return remaining, nil
}

// ExecuteDueProposals 执行所有窗口已结束的未决提案，返回执行条数
// 供调度任务使用，与 ExecuteProposal 走同一代码路径
func (l *GovernanceLogic) ExecuteDueProposals() (int, error) {
	var due []model.ProposalModel
	err := l.db.Where("executed = ? AND canceled = ? AND end_time <= ?", false, false, time.Now()).
		Order("id ASC").
		Find(&due).Error
	if err != nil {
		return 0, fmt.Errorf("获取到期提案失败: %w", err)
	}

	executed := 0
	for _, proposal := range due {
		if _, err := l.ExecuteProposal(proposal.Id, "scheduler"); err != nil {
			// 与手动执行竞争属正常情况，跳过即可
			if errors.Is(err, model.ErrAlreadyExecuted) || errors.Is(err, model.ErrProposalCanceled) {
				continue
			}
			return executed, err
		}
		executed++
	}
	return executed, nil
}

// findProposal 按ID查询提案
func findProposal(tx *gorm.DB, proposalId int64) (*model.ProposalModel, error) {
	var proposal model.ProposalModel
	if err := tx.First(&proposal, proposalId).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, model.ErrProposalNotFound
		}
		return nil, fmt.Errorf("获取提案详情失败: %w", err)
	}
	return &proposal, nil
}
