package event

import (
	"encoding/json"
	"fmt"

	"github.com/hoddukzoa12/crowdmantle-sub000/internal/model"
	"gorm.io/gorm"
)

// Recorder 领域事件记录器
// 事件与状态变更在同一事务内落库，保证外部读模型不会观察到半程状态
type Recorder struct{}

// NewRecorder 创建事件记录器
func NewRecorder() *Recorder {
	return &Recorder{}
}

// Record 在事务内写入一条领域事件
// payload 携带重建当前状态所需的全部字段（ID、金额、结果状态）
func (r *Recorder) Record(tx *gorm.DB, eventType model.EventType, campaignId, proposalId int64, payload interface{}) error {
	data, err := json.Marshal(payload)
	if err != nil {
		return fmt.Errorf("failed to marshal event payload: %w", err)
	}

	record := model.EventModel{
		EventType:  eventType,
		CampaignId: campaignId,
		ProposalId: proposalId,
		Data:       string(data),
	}
	if err := tx.Create(&record).Error; err != nil {
		return fmt.Errorf("failed to record event: %w", err)
	}
	return nil
}

// GetCampaignEvents 查询活动的事件流
func (r *Recorder) GetCampaignEvents(db *gorm.DB, campaignId int64, page, pageSize int) ([]model.EventModel, int64, error) {
	var events []model.EventModel
	var total int64

	if err := db.Model(&model.EventModel{}).Where("campaign_id = ?", campaignId).Count(&total).Error; err != nil {
		return nil, 0, err
	}

	offset := (page - 1) * pageSize
	if err := db.Where("campaign_id = ?", campaignId).
		Order("id ASC").
		Offset(offset).
		Limit(pageSize).
		Find(&events).Error; err != nil {
		return nil, 0, err
	}

	return events, total, nil
}
