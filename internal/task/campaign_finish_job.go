package task

import (
	"time"

	"github.com/go-co-op/gocron/v2"
	"github.com/hoddukzoa12/crowdmantle-sub000/internal/config"
	"github.com/hoddukzoa12/crowdmantle-sub000/internal/event"
	"github.com/hoddukzoa12/crowdmantle-sub000/internal/logger"
	"github.com/hoddukzoa12/crowdmantle-sub000/internal/model"
	"gorm.io/gorm"
)

// CampaignFinishJob 活动结束任务
// 扫描已越过结束时间的活动，发出成功或失败事件并置位，保证事件只发一次
type CampaignFinishJob struct {
	db       *gorm.DB
	config   *config.Config
	recorder *event.Recorder
}

// NewCampaignFinishJob 创建活动结束任务
func NewCampaignFinishJob(db *gorm.DB, cfg *config.Config, recorder *event.Recorder) *CampaignFinishJob {
	return &CampaignFinishJob{
		db:       db,
		config:   cfg,
		recorder: recorder,
	}
}

// GetName 获取任务名称
func (j *CampaignFinishJob) GetName() string {
	return "campaign_finish_updater"
}

// GetSchedule 获取调度配置
func (j *CampaignFinishJob) GetSchedule() gocron.JobDefinition {
	return gocron.DurationJob(time.Duration(j.config.Task.Interval) * time.Second)
}

// Execute 执行任务
func (j *CampaignFinishJob) Execute() {
	logger.Info("Starting campaign finish task")

	now := time.Now()

	// 查找需要结算状态的活动：未置位且结束时间已到
	var campaigns []model.CampaignModel
	err := j.db.Where("finalized = ? AND end_at <= ?", false, now).Find(&campaigns).Error
	if err != nil {
		logger.Error("Failed to fetch campaigns for finishing: %v", err)
		return
	}

	finishedCount := 0

	for _, campaign := range campaigns {
		eventType := model.EventCampaignFailed
		if campaign.Pledged >= campaign.Goal {
			eventType = model.EventCampaignSucceeded
			logger.Info("Campaign %d reached goal: %d/%d",
				campaign.Id, campaign.Pledged, campaign.Goal)
		} else {
			logger.Info("Campaign %d failed to reach goal: %d/%d",
				campaign.Id, campaign.Pledged, campaign.Goal)
		}

		err := j.db.Transaction(func(tx *gorm.DB) error {
			result := tx.Model(&model.CampaignModel{}).
				Where("id = ? AND finalized = ?", campaign.Id, false).
				Update("finalized", true)
			if result.Error != nil {
				return result.Error
			}
			// 并发置位时另一方已发过事件
			if result.RowsAffected == 0 {
				return nil
			}

			return j.recorder.Record(tx, eventType, campaign.Id, 0, map[string]interface{}{
				"campaign_id": campaign.Id,
				"goal":        campaign.Goal,
				"pledged":     campaign.Pledged,
			})
		})
		if err != nil {
			logger.Error("Failed to finalize campaign %d: %v", campaign.Id, err)
			continue
		}

		finishedCount++
	}

	logger.Info("Campaign finish task completed. Finalized %d campaigns", finishedCount)
}
