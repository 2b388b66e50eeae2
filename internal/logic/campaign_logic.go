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

// CampaignLogic 活动登记与出资账本业务逻辑
type CampaignLogic struct {
	db       *gorm.DB
	cfg      config.EscrowConfig
	issuer   token.Issuer
	recorder *event.Recorder
	locks    *KeyLocks
}

// NewCampaignLogic 创建活动业务逻辑
func NewCampaignLogic(db *gorm.DB, cfg config.EscrowConfig, issuer token.Issuer,
	recorder *event.Recorder, locks *KeyLocks) *CampaignLogic {
	return &CampaignLogic{
		db:       db,
		cfg:      cfg,
		issuer:   issuer,
		recorder: recorder,
		locks:    locks,
	}
}

// CreateCampaignParams 创建活动参数
type CreateCampaignParams struct {
	Creator         string
	Name            string
	Description     string
	Goal            int64
	DurationDays    int
	TokenName       string
	TokenSymbol     string
	FounderShareBps int64
}

// MilestonePlan 里程碑计划参数
type MilestonePlan struct {
	Titles         []string
	Descriptions   []string
	PercentagesBps []int64
	DaysAfterEnd   []int
}

// CreateCampaign 创建无里程碑活动
// 活动结束且达标后由创建者一次性提款
func (l *CampaignLogic) CreateCampaign(params CreateCampaignParams) (*model.CampaignModel, error) {
	campaign, err := l.buildCampaign(params, false)
	if err != nil {
		return nil, err
	}

	err = l.db.Transaction(func(tx *gorm.DB) error {
		if err := tx.Create(campaign).Error; err != nil {
			return fmt.Errorf("创建活动失败: %w", err)
		}
		return l.recorder.Record(tx, model.EventCampaignCreated, campaign.Id, 0, map[string]interface{}{
			"campaign_id":       campaign.Id,
			"creator":           campaign.CreatorAddress,
			"name":              campaign.Name,
			"goal":              campaign.Goal,
			"start_at":          campaign.StartAt,
			"end_at":            campaign.EndAt,
			"founder_share_bps": campaign.FounderShareBps,
			"has_milestones":    false,
		})
	})
	if err != nil {
		return nil, err
	}

	return campaign, nil
}

// CreateCampaignWithMilestones 创建带里程碑计划的活动
// 四个数组长度必须一致、非零且不超过上限，比例之和必须恰好等于100%
func (l *CampaignLogic) CreateCampaignWithMilestones(params CreateCampaignParams, plan MilestonePlan) (*model.CampaignModel, error) {
	if err := l.validatePlan(plan); err != nil {
		return nil, err
	}

	campaign, err := l.buildCampaign(params, true)
	if err != nil {
		return nil, err
	}

	err = l.db.Transaction(func(tx *gorm.DB) error {
		if err := tx.Create(campaign).Error; err != nil {
			return fmt.Errorf("创建活动失败: %w", err)
		}

		for i := range plan.Titles {
			milestone := model.MilestoneModel{
				CampaignId:    campaign.Id,
				Index:         i,
				Title:         plan.Titles[i],
				Description:   plan.Descriptions[i],
				PercentageBps: plan.PercentagesBps[i],
				Deadline:      campaign.EndAt.AddDate(0, 0, plan.DaysAfterEnd[i]),
				Status:        model.MilestoneStatusPending,
			}
			if err := tx.Create(&milestone).Error; err != nil {
				return fmt.Errorf("创建里程碑失败: %w", err)
			}
		}

		return l.recorder.Record(tx, model.EventCampaignCreated, campaign.Id, 0, map[string]interface{}{
			"campaign_id":       campaign.Id,
			"creator":           campaign.CreatorAddress,
			"name":              campaign.Name,
			"goal":              campaign.Goal,
			"start_at":          campaign.StartAt,
			"end_at":            campaign.EndAt,
			"founder_share_bps": campaign.FounderShareBps,
			"has_milestones":    true,
			"milestone_count":   len(plan.Titles),
		})
	})
	if err != nil {
		return nil, err
	}

	return campaign, nil
}

// buildCampaign 校验参数并组装活动模型
func (l *CampaignLogic) buildCampaign(params CreateCampaignParams, hasMilestones bool) (*model.CampaignModel, error) {
	if params.Goal <= 0 {
		return nil, model.ErrInvalidAmount
	}
	if params.DurationDays < model.MinDurationDays || params.DurationDays > l.cfg.MaxDurationDays {
		return nil, model.ErrInvalidDuration
	}
	if params.FounderShareBps < 0 || params.FounderShareBps > model.MaxFounderShareBps {
		return nil, model.ErrInvalidFounderShare
	}

	creator, err := ledger.NormalizeAddress(params.Creator)
	if err != nil {
		return nil, err
	}

	now := time.Now()
	return &model.CampaignModel{
		Name:            params.Name,
		Description:     params.Description,
		Goal:            params.Goal,
		StartAt:         now,
		EndAt:           now.AddDate(0, 0, params.DurationDays),
		CreatorAddress:  creator,
		TokenName:       params.TokenName,
		TokenSymbol:     params.TokenSymbol,
		FounderShareBps: params.FounderShareBps,
		HasMilestones:   hasMilestones,
	}, nil
}

// validatePlan 校验里程碑计划
func (l *CampaignLogic) validatePlan(plan MilestonePlan) error {
	count := len(plan.Titles)
	if count == 0 || count > l.cfg.MaxMilestones {
		return model.ErrInvalidMilestoneCount
	}
	if len(plan.Descriptions) != count || len(plan.PercentagesBps) != count || len(plan.DaysAfterEnd) != count {
		return model.ErrInvalidMilestoneCount
	}

	var sum int64
	for _, bps := range plan.PercentagesBps {
		if bps <= 0 {
			return model.ErrPercentagesMustSumTo100
		}
		sum += bps
	}
	if sum != ledger.BpsDenominator {
		return model.ErrPercentagesMustSumTo100
	}

	// 截止时间必须严格递增，拒绝后序里程碑早于前序的病态计划
	for i, days := range plan.DaysAfterEnd {
		if days <= 0 {
			return model.ErrInvalidMilestoneSchedule
		}
		if i > 0 && days <= plan.DaysAfterEnd[i-1] {
			return model.ErrInvalidMilestoneSchedule
		}
	}

	return nil
}

// Pledge 出资
// 只允许在活动截止前出资；出资额与活动累计额在同一事务内更新
func (l *CampaignLogic) Pledge(campaignId int64, investor string, amount int64) error {
	if amount <= 0 {
		return model.ErrInvalidAmount
	}
	addr, err := ledger.NormalizeAddress(investor)
	if err != nil {
		return err
	}

	unlock := l.locks.LockCampaign(campaignId)
	defer unlock()

	return l.db.Transaction(func(tx *gorm.DB) error {
		campaign, err := findCampaign(tx, campaignId)
		if err != nil {
			return err
		}
		if !time.Now().Before(campaign.EndAt) {
			return model.ErrCampaignEnded
		}

		var pledge model.PledgeModel
		err = tx.Where("campaign_id = ? AND address = ?", campaignId, addr).First(&pledge).Error
		if errors.Is(err, gorm.ErrRecordNotFound) {
			pledge = model.PledgeModel{
				CampaignId: campaignId,
				Address:    addr,
				Amount:     amount,
			}
			if err := tx.Create(&pledge).Error; err != nil {
				return fmt.Errorf("创建出资记录失败: %w", err)
			}
		} else if err != nil {
			return err
		} else {
			if err := tx.Model(&pledge).
				Update("amount", gorm.Expr("amount + ?", amount)).Error; err != nil {
				return fmt.Errorf("更新出资记录失败: %w", err)
			}
		}

		if err := tx.Model(campaign).
			Update("pledged", gorm.Expr("pledged + ?", amount)).Error; err != nil {
			return fmt.Errorf("更新活动累计出资失败: %w", err)
		}

		return l.recorder.Record(tx, model.EventPledged, campaignId, 0, map[string]interface{}{
			"campaign_id": campaignId,
			"investor":    addr,
			"amount":      amount,
			"pledged":     campaign.Pledged + amount,
		})
	})
}

// Unpledge 撤回出资
// 只允许在活动截止前撤回；截止后只能走退款/提款路径
func (l *CampaignLogic) Unpledge(campaignId int64, investor string, amount int64) error {
	if amount <= 0 {
		return model.ErrInvalidAmount
	}
	addr, err := ledger.NormalizeAddress(investor)
	if err != nil {
		return err
	}

	unlock := l.locks.LockCampaign(campaignId)
	defer unlock()

	return l.db.Transaction(func(tx *gorm.DB) error {
		campaign, err := findCampaign(tx, campaignId)
		if err != nil {
			return err
		}
		if !time.Now().Before(campaign.EndAt) {
			return model.ErrCampaignEnded
		}

		var pledge model.PledgeModel
		err = tx.Where("campaign_id = ? AND address = ?", campaignId, addr).First(&pledge).Error
		if errors.Is(err, gorm.ErrRecordNotFound) || (err == nil && pledge.Amount < amount) {
			return model.ErrInsufficientPledge
		}
		if err != nil {
			return err
		}

		if err := tx.Model(&pledge).
			Update("amount", gorm.Expr("amount - ?", amount)).Error; err != nil {
			return fmt.Errorf("更新出资记录失败: %w", err)
		}
		if err := tx.Model(campaign).
			Update("pledged", gorm.Expr("pledged - ?", amount)).Error; err != nil {
			return fmt.Errorf("更新活动累计出资失败: %w", err)
		}

		return l.recorder.Record(tx, model.EventUnpledged, campaignId, 0, map[string]interface{}{
			"campaign_id": campaignId,
			"investor":    addr,
			"amount":      amount,
			"pledged":     campaign.Pledged - amount,
		})
	})
}

// GetCampaign 获取活动详情
func (l *CampaignLogic) GetCampaign(campaignId int64) (*model.CampaignModel, error) {
	return findCampaign(l.db, campaignId)
}

// GetCampaigns 获取活动列表
func (l *CampaignLogic) GetCampaigns(creator string, page, pageSize int) ([]model.CampaignModel, int64, error) {
	var campaigns []model.CampaignModel
	var total int64

	query := l.db.Model(&model.CampaignModel{})
	if creator != "" {
		addr, err := ledger.NormalizeAddress(creator)
		if err != nil {
			return nil, 0, err
		}
		query = query.Where("creator_address = ?", addr)
	}

	if err := query.Count(&total).Error; err != nil {
		return nil, 0, fmt.Errorf("获取活动总数失败: %w", err)
	}

	offset := (page - 1) * pageSize
	if err := query.Order("created_at DESC").
		Offset(offset).
		Limit(pageSize).
		Find(&campaigns).Error; err != nil {
		return nil, 0, fmt.Errorf("获取活动列表失败: %w", err)
	}

	return campaigns, total, nil
}

// GetPledge 获取投资人在活动中的出资记录
func (l *CampaignLogic) GetPledge(campaignId int64, investor string) (*model.PledgeModel, error) {
	addr, err := ledger.NormalizeAddress(investor)
	if err != nil {
		return nil, err
	}

	var pledge model.PledgeModel
	err = l.db.Where("campaign_id = ? AND address = ?", campaignId, addr).First(&pledge).Error
	if errors.Is(err, gorm.ErrRecordNotFound) {
		// 无记录等价于零出资
		return &model.PledgeModel{CampaignId: campaignId, Address: addr}, nil
	}
	if err != nil {
		return nil, err
	}
	return &pledge, nil
}

// IsCampaignSuccessful 判断活动是否成功
// 每次实时重新计算，不缓存，避免与当前时间脱节
func (l *CampaignLogic) IsCampaignSuccessful(campaignId int64) (bool, error) {
	campaign, err := findCampaign(l.db, campaignId)
	if err != nil {
		return false, err
	}
	return campaignSuccessful(campaign, time.Now()), nil
}

// Claim 无里程碑活动创建者一次性提款
// 先翻转 claimed 标记再写放款记录，保证不会重复提款
func (l *CampaignLogic) Claim(campaignId int64, caller string) (*model.PayoutRecordModel, error) {
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
		if campaign.HasMilestones {
			return model.ErrHasMilestones
		}
		now := time.Now()
		if now.Before(campaign.EndAt) {
			return model.ErrCampaignNotEnded
		}
		if !campaignSuccessful(campaign, now) {
			return model.ErrCampaignNotSuccessful
		}
		if campaign.Claimed {
			return model.ErrAlreadyClaimed
		}

		amount := campaign.Pledged
		fee := feeFor(model.PayoutTypeClaim, amount, l.cfg.PlatformFeeBps)

		if err := tx.Model(campaign).Update("claimed", true).Error; err != nil {
			return fmt.Errorf("更新提款标记失败: %w", err)
		}
		if err := writePayout(tx, campaignId, -1, addr, amount, fee, model.PayoutTypeClaim); err != nil {
			return err
		}
		if err := writePlatformFee(tx, campaignId, -1, l.cfg.PlatformAddress, fee); err != nil {
			return err
		}

		payout = &model.PayoutRecordModel{
			CampaignId:     campaignId,
			MilestoneIndex: -1,
			Address:        addr,
			Amount:         amount,
			PlatformFee:    fee,
			NetAmount:      amount - fee,
			Type:           model.PayoutTypeClaim,
		}

		return l.recorder.Record(tx, model.EventCampaignClaimed, campaignId, 0, map[string]interface{}{
			"campaign_id":  campaignId,
			"creator":      addr,
			"amount":       amount,
			"platform_fee": fee,
			"net_amount":   amount - fee,
		})
	})
	if err != nil {
		return nil, err
	}

	return payout, nil
}

// ClaimTokens 投资人按出资1:1领取股权代币
// 每个投资人只能领取一次，第二次调用报错且余额不变
func (l *CampaignLogic) ClaimTokens(campaignId int64, investor string) (int64, error) {
	addr, err := ledger.NormalizeAddress(investor)
	if err != nil {
		return 0, err
	}

	unlock := l.locks.LockCampaign(campaignId)
	defer unlock()

	var minted int64
	err = l.db.Transaction(func(tx *gorm.DB) error {
		campaign, err := findCampaign(tx, campaignId)
		if err != nil {
			return err
		}
		now := time.Now()
		if now.Before(campaign.EndAt) {
			return model.ErrCampaignNotEnded
		}
		if !campaignSuccessful(campaign, now) {
			return model.ErrCampaignNotSuccessful
		}

		var pledge model.PledgeModel
		err = tx.Where("campaign_id = ? AND address = ?", campaignId, addr).First(&pledge).Error
		if errors.Is(err, gorm.ErrRecordNotFound) || (err == nil && pledge.Amount <= 0) {
			return model.ErrTokensNotClaimed
		}
		if err != nil {
			return err
		}
		if pledge.TokensClaimed {
			return model.ErrAlreadyClaimed
		}

		if err := tx.Model(&pledge).Update("tokens_claimed", true).Error; err != nil {
			return fmt.Errorf("更新代币领取标记失败: %w", err)
		}
		if err := l.issuer.Mint(tx, campaignId, addr, pledge.Amount); err != nil {
			return fmt.Errorf("铸币失败: %w", err)
		}
		minted = pledge.Amount

		return l.recorder.Record(tx, model.EventTokensClaimed, campaignId, 0, map[string]interface{}{
			"campaign_id": campaignId,
			"address":     addr,
			"amount":      pledge.Amount,
			"role":        "investor",
		})
	})
	if err != nil {
		return 0, err
	}

	return minted, nil
}

// ClaimFounderTokens 创建者领取预留份额代币
// 份额 = 总出资额 × founderShareBps / 10000，只能领取一次
func (l *CampaignLogic) ClaimFounderTokens(campaignId int64, caller string) (int64, error) {
	addr, err := ledger.NormalizeAddress(caller)
	if err != nil {
		return 0, err
	}

	unlock := l.locks.LockCampaign(campaignId)
	defer unlock()

	var minted int64
	err = l.db.Transaction(func(tx *gorm.DB) error {
		campaign, err := findCampaign(tx, campaignId)
		if err != nil {
			return err
		}
		if campaign.CreatorAddress != addr {
			return model.ErrNotCampaignCreator
		}
		now := time.Now()
		if now.Before(campaign.EndAt) {
			return model.ErrCampaignNotEnded
		}
		if !campaignSuccessful(campaign, now) {
			return model.ErrCampaignNotSuccessful
		}
		if campaign.FounderTokensClaimed {
			return model.ErrAlreadyClaimed
		}

		amount := ledger.ApplyBps(campaign.Pledged, campaign.FounderShareBps)
		if amount <= 0 {
			return model.ErrTokensNotClaimed
		}

		if err := tx.Model(campaign).Update("founder_tokens_claimed", true).Error; err != nil {
			return fmt.Errorf("更新创建者代币领取标记失败: %w", err)
		}
		if err := l.issuer.Mint(tx, campaignId, addr, amount); err != nil {
			return fmt.Errorf("铸币失败: %w", err)
		}
		minted = amount

		return l.recorder.Record(tx, model.EventTokensClaimed, campaignId, 0, map[string]interface{}{
			"campaign_id": campaignId,
			"address":     addr,
			"amount":      amount,
			"role":        "founder",
		})
	})
	if err != nil {
		return 0, err
	}

	return minted, nil
}

// Refund 失败活动普通退款
// 活动截止且未达标时，投资人取回全部出资；出资先清零再记账
func (l *CampaignLogic) Refund(campaignId int64, investor string) (int64, error) {
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
		now := time.Now()
		if now.Before(campaign.EndAt) {
			return model.ErrCampaignNotEnded
		}
		if campaignSuccessful(campaign, now) {
			return model.ErrCampaignSuccessful
		}

		var pledge model.PledgeModel
		err = tx.Where("campaign_id = ? AND address = ?", campaignId, addr).First(&pledge).Error
		if errors.Is(err, gorm.ErrRecordNotFound) || (err == nil && pledge.Amount <= 0) {
			return model.ErrNothingToRefund
		}
		if err != nil {
			return err
		}

		amount := pledge.Amount
		if err := tx.Model(&pledge).Update("amount", 0).Error; err != nil {
			return fmt.Errorf("清零出资记录失败: %w", err)
		}
		if err := writePayout(tx, campaignId, -1, addr, amount, 0, model.PayoutTypeRefund); err != nil {
			return err
		}
		refunded = amount

		return l.recorder.Record(tx, model.EventRefunded, campaignId, 0, map[string]interface{}{
			"campaign_id": campaignId,
			"investor":    addr,
			"amount":      amount,
		})
	})
	if err != nil {
		return 0, err
	}

	return refunded, nil
}

// findCampaign 按ID查询活动
func findCampaign(tx *gorm.DB, campaignId int64) (*model.CampaignModel, error) {
	var campaign model.CampaignModel
	if err := tx.First(&campaign, campaignId).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, model.ErrCampaignNotFound
		}
		return nil, fmt.Errorf("获取活动详情失败: %w", err)
	}
	return &campaign, nil
}

// campaignSuccessful 成功判定：已截止且达到目标
func campaignSuccessful(campaign *model.CampaignModel, now time.Time) bool {
	return !now.Before(campaign.EndAt) && campaign.Pledged >= campaign.Goal
}
