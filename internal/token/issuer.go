package token

import (
	"errors"

	"github.com/hoddukzoa12/crowdmantle-sub000/internal/model"
	"gorm.io/gorm"
)

// Issuer 股权代币发行方接口
// 每个活动一套独立代币账本；1代币 ≈ 1出资单位
// 余额与总量必须在调用方事务内同步可查（治理门槛与投票权重依赖）
type Issuer interface {
	Mint(tx *gorm.DB, campaignId int64, to string, amount int64) error
	BalanceOf(tx *gorm.DB, campaignId int64, address string) (int64, error)
	TotalSupply(tx *gorm.DB, campaignId int64) (int64, error)
}

// LedgerIssuer 数据库账本实现
// 铸币同时写入链上镜像待办记录，由后台任务异步推送
type LedgerIssuer struct {
	mirror bool // 是否登记链上镜像记录
}

// NewLedgerIssuer 创建账本发行方
func NewLedgerIssuer(mirror bool) *LedgerIssuer {
	return &LedgerIssuer{mirror: mirror}
}

// Mint 铸币：增加余额，必要时登记镜像记录
// 必须在调用方的事务内执行
func (i *LedgerIssuer) Mint(tx *gorm.DB, campaignId int64, to string, amount int64) error {
	if amount <= 0 {
		return model.ErrInvalidAmount
	}

	var balance model.TokenBalanceModel
	err := tx.Where("campaign_id = ? AND address = ?", campaignId, to).First(&balance).Error
	if errors.Is(err, gorm.ErrRecordNotFound) {
		balance = model.TokenBalanceModel{
			CampaignId: campaignId,
			Address:    to,
			Balance:    amount,
		}
		if err := tx.Create(&balance).Error; err != nil {
			return err
		}
	} else if err != nil {
		return err
	} else {
		if err := tx.Model(&balance).
			Update("balance", gorm.Expr("balance + ?", amount)).Error; err != nil {
			return err
		}
	}

	if i.mirror {
		record := model.MintRecordModel{
			CampaignId: campaignId,
			Address:    to,
			Amount:     amount,
			Status:     model.MintStatusPending,
		}
		if err := tx.Create(&record).Error; err != nil {
			return err
		}
	}

	return nil
}

// BalanceOf 查询地址余额
func (i *LedgerIssuer) BalanceOf(tx *gorm.DB, campaignId int64, address string) (int64, error) {
	var balance model.TokenBalanceModel
	err := tx.Where("campaign_id = ? AND address = ?", campaignId, address).First(&balance).Error
	if errors.Is(err, gorm.ErrRecordNotFound) {
		return 0, nil
	}
	if err != nil {
		return 0, err
	}
	return balance.Balance, nil
}

// TotalSupply 查询活动代币总量
func (i *LedgerIssuer) TotalSupply(tx *gorm.DB, campaignId int64) (int64, error) {
	var total int64
	err := tx.Model(&model.TokenBalanceModel{}).
		Where("campaign_id = ?", campaignId).
		Select("COALESCE(SUM(balance), 0)").
		Scan(&total).Error
	if err != nil {
		return 0, err
	}
	return total, nil
}
