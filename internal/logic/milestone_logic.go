package logic

import (
	"errors"
	"fmt"
	"time"

	"github.com/hoddukzoa12/crowdmantle-sub000/internal/config"
	"github.com/hoddukzoa12/crowdmantle-sub000/internal/event"
	"github.com/hoddukzoa12/crowdmantle-sub000/internal/ledger"
	"github.com/hoddukzoa12/crowdmantle-sub000/internal/model"
	"gorm.io/gorm"
)

// MilestoneLogic 里程碑引擎业务逻辑
// 强制顺序放款：第 i+1 个里程碑在第 i 个放款完成前不能提交审批
type MilestoneLogic struct {
	db       *gorm.DB
	cfg      config.EscrowConfig
	gov      *GovernanceLogic
	recorder *event.Recorder
	locks    *KeyLocks
}

// NewMilestoneLogic 创建里程碑引擎
func NewMilestoneLogic(db *gorm.DB, cfg config.EscrowConfig, gov *GovernanceLogic,
	recorder *event.Recorder, locks *KeyLocks) *MilestoneLogic {
	return &MilestoneLogic{
		db:       db,
		cfg:      cfg,
		gov:      gov,
		recorder: recorder,
		locks:    locks,
	}
}

// SubmitMilestoneForApproval 创建者提交里程碑审批
// 在治理引擎开启里程碑提案并把里程碑置为投票中
func (l *MilestoneLogic) SubmitMilestoneForApproval(campaignId int64, index int, caller string) (*model.ProposalModel, error) {
	addr, err := ledger.NormalizeAddress(caller)
	if err != nil {
		return nil, err
	}

	unlock := l.locks.LockCampaign(campaignId)
	defer unlock()

	var proposal *model.ProposalModel
	err = l.db.Transaction(func(tx *gorm.DB) error {
		campaign, err := findCampaign(tx, campaignId)
		if err != nil {
			return err
		}
		if campaign.CreatorAddress != addr {
			return model.ErrNotCampaignCreator
		}
		if !campaign.HasMilestones {
			return model.ErrNoMilestones
		}
		now := time.Now()
		if now.Before(campaign.EndAt) {
			return model.ErrCampaignNotEnded
		}
		if !campaignSuccessful(campaign, now) {
			return model.ErrCampaignNotSuccessful
		}

		milestones, err := loadMilestones(tx, campaignId)
		if err != nil {
			return err
		}
		if index < 0 || index >= len(milestones) {
			return model.ErrMilestoneNotFound
		}

		// 顺序校验：只有第一个未放款的里程碑可以提交
		firstUnreleased := len(milestones)
		for i, m := range milestones {
			if m.Status != model.MilestoneStatusReleased {
				firstUnreleased = i
				break
			}
		}
		if index != firstUnreleased {
			return model.ErrPreviousMilestoneNotCompleted
		}

		milestone := milestones[index]
		switch milestone.Status {
		case model.MilestoneStatusPending:
		case model.MilestoneStatusVoting:
			return model.ErrMilestoneProposalOutstanding
		default:
			return model.ErrMilestoneNotPending
		}

		proposal, err = l.gov.CreateMilestoneProposal(tx, l, campaign, &milestone)
		if err != nil {
			return err
		}

		if err := tx.Model(&milestone).Updates(map[string]interface{}{
			"status":      model.MilestoneStatusVoting,
			"proposal_id": proposal.Id,
		}).Error; err != nil {
			return fmt.Errorf("更新里程碑状态失败: %w", err)
		}

		return l.recorder.Record(tx, model.EventMilestoneSubmitted, campaignId, proposal.Id, map[string]interface{}{
			"campaign_id":     campaignId,
			"milestone_index": index,
			"proposal_id":     proposal.Id,
			"status":          model.MilestoneStatusVoting,
			"voting_ends_at":  proposal.EndTime,
		})
	})
	if err != nil {
		return nil, err
	}

	return proposal, nil
}

// GetMilestoneAmount 计算里程碑分期金额
// 始终按总出资额计算（超募活动各期按比例放大），而非按目标金额
func GetMilestoneAmount(campaign *model.CampaignModel, milestone *model.MilestoneModel) int64 {
	return ledger.ApplyBps(campaign.Pledged, milestone.PercentageBps)
}

// ReleaseMilestoneFunds 放款已通过投票的里程碑
// 只有 approved 状态可以放款，放款只能发生在投票通过之后
func (l *MilestoneLogic) ReleaseMilestoneFunds(campaignId int64, index int, caller string) (*model.PayoutRecordModel, error) {
	addr, err := ledger.NormalizeAddress(caller)
	if err != nil {
		return nil, err
	}

	unlock := l.locks.LockCampaign(campaignId)
	defer unlock()

	var payout *model.PayoutRecordModel
	err = l.db.Transaction(func(tx *gorm.DB) error {
		campaign, err := findCampaign(tx, campaignId)
		if err != nil {
			return err
		}
		if campaign.CreatorAddress != addr {
			return model.ErrNotCampaignCreator
		}

		milestone, err := findMilestone(tx, campaignId, index)
		if err != nil {
			return err
		}
		if milestone.Status != model.MilestoneStatusApproved {
			return model.ErrMilestoneNotApproved
		}

		amount := GetMilestoneAmount(campaign, milestone)
		fee := feeFor(model.PayoutTypeMilestoneRelease, amount, l.cfg.PlatformFeeBps)

		// 先翻转状态与累计额，再记账（checks-effects顺序）
		if err := tx.Model(milestone).Update("status", model.MilestoneStatusReleased).Error; err != nil {
			return fmt.Errorf("更新里程碑状态失败: %w", err)
		}
		if err := tx.Model(campaign).
			Update("released_amount", gorm.Expr("released_amount + ?", amount)).Error; err != nil {
			return fmt.Errorf("更新活动已放款金额失败: %w", err)
		}
		if err := writePayout(tx, campaignId, index, addr, amount, fee, model.PayoutTypeMilestoneRelease); err != nil {
			return err
		}
		if err := writePlatformFee(tx, campaignId, index, l.cfg.PlatformAddress, fee); err != nil {
			return err
		}

		payout = &model.PayoutRecordModel{
			CampaignId:     campaignId,
			MilestoneIndex: index,
			Address:        addr,
			Amount:         amount,
			PlatformFee:    fee,
			NetAmount:      amount - fee,
			Type:           model.PayoutTypeMilestoneRelease,
		}

		if err := l.recorder.Record(tx, model.EventMilestoneFundsReleased, campaignId, milestone.ProposalId, map[string]interface{}{
			"campaign_id":     campaignId,
			"milestone_index": index,
			"amount":          amount,
			"platform_fee":    fee,
			"net_amount":      amount - fee,
			"released_total":  campaign.ReleasedAmount + amount,
		}); err != nil {
			return err
		}
		return l.recorder.Record(tx, model.EventMilestoneStatusUpdated, campaignId, milestone.ProposalId, map[string]interface{}{
			"campaign_id":     campaignId,
			"milestone_index": index,
			"status":          model.MilestoneStatusReleased,
		})
	})
	if err != nil {
		return nil, err
	}

	return payout, nil
}

// EmergencyRefund 紧急退款
// 任一里程碑被否决即触发全活动熔断
// 已放款分期无法追回，退款按未放款余额占总出资额的比例折算，保证总放出不超过托管余额
func (l *MilestoneLogic) EmergencyRefund(campaignId int64, investor string) (int64, error) {
	addr, err := ledger.NormalizeAddress(investor)
	if err != nil {
		return 0, err
	}

	unlock := l.locks.LockCampaign(campaignId)
	defer unlock()

	var refunded int64
	err = l.db.Transaction(func(tx *gorm.DB) error {
		campaign, err := findCampaign(tx, campaignId)
		if err != nil {
			return err
		}
		if !campaign.HasMilestones {
			return model.ErrNoMilestones
		}

		var rejected int64
		if err := tx.Model(&model.MilestoneModel{}).
			Where("campaign_id = ? AND status = ?", campaignId, model.MilestoneStatusRejected).
			Count(&rejected).Error; err != nil {
			return err
		}
		if rejected == 0 {
			return model.ErrMilestoneNotRejected
		}

		var pledge model.PledgeModel
		err = tx.Where("campaign_id = ? AND address = ?", campaignId, addr).First(&pledge).Error
		if errors.Is(err, gorm.ErrRecordNotFound) || (err == nil && pledge.Amount <= 0) {
			return model.ErrNothingToRefund
		}
		if err != nil {
			return err
		}

		// 出资 × 未放款余额 / 总出资额，向下取整
		amount := ledger.ProRata(pledge.Amount, campaign.Pledged-campaign.ReleasedAmount, campaign.Pledged)
		if err := tx.Model(&pledge).Update("amount", 0).Error; err != nil {
			return fmt.Errorf("清零出资记录失败: %w", err)
		}
		if err := writePayout(tx, campaignId, -1, addr, amount, 0, model.PayoutTypeEmergencyRefund); err != nil {
			return err
		}
		refunded = amount

		return l.recorder.Record(tx, model.EventEmergencyRefund, campaignId, 0, map[string]interface{}{
			"campaign_id":   campaignId,
			"investor":      addr,
			"pledge_amount": pledge.Amount,
			"amount":        amount,
		})
	})
	if err != nil {
		return 0, err
	}

	return refunded, nil
}

// GetMilestone 获取单个里程碑
func (l *MilestoneLogic) GetMilestone(campaignId int64, index int) (*model.MilestoneModel, error) {
	return findMilestone(l.db, campaignId, index)
}

// GetCampaignMilestones 获取活动的全部里程碑（按序号排列）
func (l *MilestoneLogic) GetCampaignMilestones(campaignId int64) ([]model.MilestoneModel, error) {
	if _, err := findCampaign(l.db, campaignId); err != nil {
		return nil, err
	}
	return loadMilestones(l.db, campaignId)
}

// GetUnreleasedFunds 未放款余额 = 总出资额 - 已放款金额
func (l *MilestoneLogic) GetUnreleasedFunds(campaignId int64) (int64, error) {
	campaign, err := findCampaign(l.db, campaignId)
	if err != nil {
		return 0, err
	}
	return campaign.Pledged - campaign.ReleasedAmount, nil
}

// OnMilestoneProposalExecuted 治理引擎执行里程碑提案后的回调
// 通过 → approved，否决 → rejected（解锁全活动紧急退款）
// 在执行提案的同一事务内运行
func (l *MilestoneLogic) OnMilestoneProposalExecuted(tx *gorm.DB, campaignId int64, index int, passed bool) error {
	milestone, err := findMilestone(tx, campaignId, index)
	if err != nil {
		return err
	}
	if milestone.Status != model.MilestoneStatusVoting {
		return model.ErrMilestoneNotPending
	}

	status := model.MilestoneStatusRejected
	if passed {
		status = model.MilestoneStatusApproved
	}
	if err := tx.Model(milestone).Update("status", status).Error; err != nil {
		return fmt.Errorf("更新里程碑状态失败: %w", err)
	}

	return l.recorder.Record(tx, model.EventMilestoneStatusUpdated, campaignId, milestone.ProposalId, map[string]interface{}{
		"campaign_id":     campaignId,
		"milestone_index": index,
		"status":          status,
		"passed":          passed,
	})
}

// OnMilestoneProposalCanceled 里程碑提案被取消后的回调
// 里程碑回滚到待提交状态，避免永久卡在投票中
func (l *MilestoneLogic) OnMilestoneProposalCanceled(tx *gorm.DB, campaignId int64, index int) error {
	milestone, err := findMilestone(tx, campaignId, index)
	if err != nil {
		return err
	}
	if milestone.Status != model.MilestoneStatusVoting {
		return nil
	}

	if err := tx.Model(milestone).Updates(map[string]interface{}{
		"status":      model.MilestoneStatusPending,
		"proposal_id": 0,
	}).Error; err != nil {
		return fmt.Errorf("回滚里程碑状态失败: %w", err)
	}

	return l.recorder.Record(tx, model.EventMilestoneStatusUpdated, campaignId, 0, map[string]interface{}{
		"campaign_id":     campaignId,
		"milestone_index": index,
		"status":          model.MilestoneStatusPending,
	})
}

// findMilestone 按活动与序号查询里程碑
func findMilestone(tx *gorm.DB, campaignId int64, index int) (*model.MilestoneModel, error) {
	var milestone model.MilestoneModel
	err := tx.Where("campaign_id = ? AND seq = ?", campaignId, index).First(&milestone).Error
	if errors.Is(err, gorm.ErrRecordNotFound) {
		return nil, model.ErrMilestoneNotFound
	}
	if err != nil {
		return nil, fmt.Errorf("获取里程碑失败: %w", err)
	}
	return &milestone, nil
}

// loadMilestones 加载活动的全部里程碑，按序号升序
func loadMilestones(tx *gorm.DB, campaignId int64) ([]model.MilestoneModel, error) {
	var milestones []model.MilestoneModel
	if err := tx.Where("campaign_id = ?", campaignId).
		Order("seq ASC").
		Find(&milestones).Error; err != nil {
		return nil, fmt.Errorf("获取里程碑列表失败: %w", err)
	}
	return milestones, nil
}
