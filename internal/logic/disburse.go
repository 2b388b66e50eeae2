package logic

import (
	"fmt"

	"github.com/hoddukzoa12/crowdmantle-sub000/internal/ledger"
	"github.com/hoddukzoa12/crowdmantle-sub000/internal/model"
	"gorm.io/gorm"
)

// writePayout 写入放款/退款记录
// 调用方必须先完成状态变更（余额清零、状态翻转）再调用本函数，
// 防重复支付依赖状态标志位，记录本身只是账目
func writePayout(tx *gorm.DB, campaignId int64, milestoneIndex int, address string,
	amount, platformFee int64, payoutType model.PayoutType) error {
	record := model.PayoutRecordModel{
		CampaignId:     campaignId,
		MilestoneIndex: milestoneIndex,
		Address:        address,
		Amount:         amount,
		PlatformFee:    platformFee,
		NetAmount:      amount - platformFee,
		Type:           payoutType,
	}
	if err := tx.Create(&record).Error; err != nil {
		return fmt.Errorf("创建放款记录失败: %w", err)
	}
	return nil
}

// writePlatformFee 手续费入账到平台钱包
// 与对应放款在同一事务内写入；手续费字段记0，平台收入统计不会重复计费
func writePlatformFee(tx *gorm.DB, campaignId int64, milestoneIndex int, platformAddress string, fee int64) error {
	if fee <= 0 || platformAddress == "" {
		return nil
	}
	return writePayout(tx, campaignId, milestoneIndex, platformAddress, fee, 0, model.PayoutTypePlatformFee)
}

// DisburseLogic 放款记录查询逻辑
type DisburseLogic struct {
	db *gorm.DB
}

// NewDisburseLogic 创建放款记录查询逻辑
func NewDisburseLogic(db *gorm.DB) *DisburseLogic {
	return &DisburseLogic{db: db}
}

// GetCampaignPayouts 获取活动的放款/退款记录
func (d *DisburseLogic) GetCampaignPayouts(campaignId int64, page, pageSize int) ([]model.PayoutRecordModel, int64, error) {
	var payouts []model.PayoutRecordModel
	var total int64

	if err := d.db.Model(&model.PayoutRecordModel{}).Where("campaign_id = ?", campaignId).Count(&total).Error; err != nil {
		return nil, 0, fmt.Errorf("获取放款记录总数失败: %w", err)
	}

	offset := (page - 1) * pageSize
	if err := d.db.Where("campaign_id = ?", campaignId).
		Order("created_at DESC").
		Offset(offset).
		Limit(pageSize).
		Find(&payouts).Error; err != nil {
		return nil, 0, fmt.Errorf("获取放款记录失败: %w", err)
	}

	return payouts, total, nil
}

// GetPlatformRevenue 统计平台累计手续费收入
func (d *DisburseLogic) GetPlatformRevenue() (int64, error) {
	var total int64
	err := d.db.Model(&model.PayoutRecordModel{}).
		Select("COALESCE(SUM(platform_fee), 0)").
		Scan(&total).Error
	if err != nil {
		return 0, fmt.Errorf("统计平台手续费失败: %w", err)
	}
	return total, nil
}

// feeFor 计算手续费，退款类放款不收手续费
func feeFor(payoutType model.PayoutType, amount, feeBps int64) int64 {
	switch payoutType {
	case model.PayoutTypeClaim, model.PayoutTypeMilestoneRelease:
		return ledger.Fee(amount, feeBps)
	default:
		return 0
	}
}
