package task

import (
	"context"
	"time"

	"github.com/cenkalti/backoff/v5"
	"github.com/go-co-op/gocron/v2"
	"github.com/hoddukzoa12/crowdmantle-sub000/internal/config"
	"github.com/hoddukzoa12/crowdmantle-sub000/internal/logger"
	"github.com/hoddukzoa12/crowdmantle-sub000/internal/model"
	"github.com/hoddukzoa12/crowdmantle-sub000/internal/token"
	"gorm.io/gorm"
)

// MintRetryJob 链上镜像铸币重试任务
// 本地代币账本是权威状态，该任务只负责把待上链的铸币记录推到链上副本
type MintRetryJob struct {
	db     *gorm.DB
	config *config.Config
	mirror *token.MirrorClient
}

// NewMintRetryJob 创建铸币重试任务
func NewMintRetryJob(db *gorm.DB, cfg *config.Config, mirror *token.MirrorClient) *MintRetryJob {
	return &MintRetryJob{
		db:     db,
		config: cfg,
		mirror: mirror,
	}
}

// GetName 获取任务名称
func (j *MintRetryJob) GetName() string {
	return "mint_retry_worker"
}

// GetSchedule 获取调度配置
func (j *MintRetryJob) GetSchedule() gocron.JobDefinition {
	return gocron.DurationJob(time.Duration(j.config.Task.Interval) * time.Second)
}

// Execute 执行任务
func (j *MintRetryJob) Execute() {
	logger.Info("Starting mint retry task")

	var records []model.MintRecordModel
	err := j.db.Where("status = ?", model.MintStatusPending).
		Order("id ASC").
		Limit(100).
		Find(&records).Error
	if err != nil {
		logger.Error("Failed to fetch pending mint records: %v", err)
		return
	}

	successCount := 0

	for _, record := range records {
		txHash, err := j.submitWithBackoff(record)
		if err != nil {
			j.markFailure(record, err)
			continue
		}

		updates := map[string]interface{}{
			"status":   model.MintStatusSuccess,
			"tx_hash":  txHash,
			"attempts": gorm.Expr("attempts + ?", 1),
			"last_err": "",
		}
		if err := j.db.Model(&model.MintRecordModel{}).
			Where("id = ?", record.Id).
			Updates(updates).Error; err != nil {
			logger.Error("Failed to update mint record %d: %v", record.Id, err)
			continue
		}

		logger.Info("Mint record %d mirrored on chain, tx: %s", record.Id, txHash)
		successCount++
	}

	logger.Info("Mint retry task completed. Mirrored %d of %d records", successCount, len(records))
}

// submitWithBackoff 带指数退避地提交单条铸币交易
func (j *MintRetryJob) submitWithBackoff(record model.MintRecordModel) (string, error) {
	ctx, cancel := context.WithTimeout(context.Background(), 2*time.Minute)
	defer cancel()

	operation := func() (string, error) {
		return j.mirror.MintOnChain(ctx, record.CampaignId, record.Address, record.Amount)
	}

	return backoff.Retry(ctx, operation,
		backoff.WithBackOff(backoff.NewExponentialBackOff()),
		backoff.WithMaxTries(3),
	)
}

// markFailure 记录失败原因并累计尝试次数，超过上限后不再重试
func (j *MintRetryJob) markFailure(record model.MintRecordModel, cause error) {
	logger.Error("Failed to mirror mint record %d on chain: %v", record.Id, cause)

	attempts := record.Attempts + 1
	status := model.MintStatusPending
	if j.config.Chain.MaxAttempts > 0 && attempts >= j.config.Chain.MaxAttempts {
		status = model.MintStatusFailed
		logger.Error("Mint record %d exceeded max attempts (%d), giving up", record.Id, attempts)
	}

	updates := map[string]interface{}{
		"status":   status,
		"attempts": attempts,
		"last_err": cause.Error(),
	}
	if err := j.db.Model(&model.MintRecordModel{}).
		Where("id = ?", record.Id).
		Updates(updates).Error; err != nil {
		logger.Error("Failed to update mint record %d: %v", record.Id, err)
	}
}
