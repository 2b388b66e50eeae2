package task

import (
	"time"

	"github.com/go-co-op/gocron/v2"
	"github.com/hoddukzoa12/crowdmantle-sub000/internal/config"
	"github.com/hoddukzoa12/crowdmantle-sub000/internal/event"
	"github.com/hoddukzoa12/crowdmantle-sub000/internal/logger"
)

// EventDispatchJob 事件分发任务
// 把事务内落库的领域事件推送给进程内订阅者
type EventDispatchJob struct {
	config     *config.Config
	dispatcher *event.Dispatcher
}

// NewEventDispatchJob 创建事件分发任务
func NewEventDispatchJob(cfg *config.Config, dispatcher *event.Dispatcher) *EventDispatchJob {
	return &EventDispatchJob{
		config:     cfg,
		dispatcher: dispatcher,
	}
}

// GetName 获取任务名称
func (j *EventDispatchJob) GetName() string {
	return "event_dispatch_worker"
}

// GetSchedule 获取调度配置
func (j *EventDispatchJob) GetSchedule() gocron.JobDefinition {
	return gocron.DurationJob(time.Duration(j.config.Task.Interval) * time.Second)
}

// Execute 执行任务
func (j *EventDispatchJob) Execute() {
	dispatched, err := j.dispatcher.DispatchPending()
	if err != nil {
		logger.Error("Failed to dispatch pending events: %v", err)
		return
	}

	if dispatched > 0 {
		logger.Info("Event dispatch task completed. Dispatched %d events", dispatched)
	}
}
