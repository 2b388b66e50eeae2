package task

import (
	"github.com/go-co-op/gocron/v2"
	"github.com/hoddukzoa12/crowdmantle-sub000/internal/config"
	"github.com/hoddukzoa12/crowdmantle-sub000/internal/event"
	"github.com/hoddukzoa12/crowdmantle-sub000/internal/logger"
	"github.com/hoddukzoa12/crowdmantle-sub000/internal/logic"
	"github.com/hoddukzoa12/crowdmantle-sub000/internal/token"
	"gorm.io/gorm"
)

// Job 定时任务接口
type Job interface {
	GetName() string
	GetSchedule() gocron.JobDefinition
	Execute()
}

// Manager 任务管理器
type Manager struct {
	scheduler  gocron.Scheduler
	db         *gorm.DB
	config     *config.Config
	governance *logic.GovernanceLogic
	recorder   *event.Recorder
	dispatcher *event.Dispatcher
	mirror     *token.MirrorClient
}

// NewManager 创建新的任务管理器
func NewManager(db *gorm.DB, cfg *config.Config, governance *logic.GovernanceLogic,
	recorder *event.Recorder, dispatcher *event.Dispatcher, mirror *token.MirrorClient) *Manager {
	s, err := gocron.NewScheduler()
	if err != nil {
		logger.Fatal("Failed to create scheduler: %v", err)
	}

	return &Manager{
		scheduler:  s,
		db:         db,
		config:     cfg,
		governance: governance,
		recorder:   recorder,
		dispatcher: dispatcher,
		mirror:     mirror,
	}
}

// Start 启动任务管理器
func Start(db *gorm.DB, cfg *config.Config, governance *logic.GovernanceLogic,
	recorder *event.Recorder, dispatcher *event.Dispatcher, mirror *token.MirrorClient) *Manager {
	manager := NewManager(db, cfg, governance, recorder, dispatcher, mirror)

	// 注册所有任务
	manager.RegisterJobs()

	// 启动调度器
	manager.scheduler.Start()

	logger.Info("Task manager started successfully")
	return manager
}

// RegisterJobs 注册所有任务
func (m *Manager) RegisterJobs() {
	// 活动结束状态任务
	m.registerJob(NewCampaignFinishJob(m.db, m.config, m.recorder))

	// 到期提案执行任务
	m.registerJob(NewProposalExecuteJob(m.config, m.governance))

	// 事件分发任务
	if m.dispatcher != nil {
		m.registerJob(NewEventDispatchJob(m.config, m.dispatcher))
	}

	// 链上镜像铸币重试任务（未启用链上镜像时跳过）
	if m.config.Chain.Enabled && m.mirror != nil {
		m.registerJob(NewMintRetryJob(m.db, m.config, m.mirror))
	}
}

// registerJob 向调度器注册单个任务
func (m *Manager) registerJob(job Job) {
	_, err := m.scheduler.NewJob(
		job.GetSchedule(),
		gocron.NewTask(job.Execute),
		gocron.WithName(job.GetName()),
		gocron.WithSingletonMode(gocron.LimitModeReschedule),
	)
	if err != nil {
		logger.Error("Failed to register job %s: %v", job.GetName(), err)
	}
}

// Stop 停止任务管理器
func (m *Manager) Stop() {
	if err := m.scheduler.Shutdown(); err != nil {
		logger.Error("Failed to shutdown scheduler: %v", err)
	}
	logger.Info("Task manager stopped")
}
