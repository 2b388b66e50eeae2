package main

import (
	"log"

	"github.com/gin-gonic/gin"
	"github.com/hoddukzoa12/crowdmantle-sub000/internal/config"
	"github.com/hoddukzoa12/crowdmantle-sub000/internal/event"
	"github.com/hoddukzoa12/crowdmantle-sub000/internal/logger"
	"github.com/hoddukzoa12/crowdmantle-sub000/internal/logic"
	"github.com/hoddukzoa12/crowdmantle-sub000/internal/model"
	"github.com/hoddukzoa12/crowdmantle-sub000/internal/repository"
	"github.com/hoddukzoa12/crowdmantle-sub000/internal/router"
	"github.com/hoddukzoa12/crowdmantle-sub000/internal/task"
	"github.com/hoddukzoa12/crowdmantle-sub000/internal/token"
)

func main() {
	// 加载配置
	cfg := config.Load()

	// 初始化日志
	if err := logger.Setup(cfg.Log); err != nil {
		log.Fatalf("Failed to setup logger: %v", err)
	}
	defer logger.Sync()

	// 初始化数据库
	db, err := repository.Init(cfg.Database)
	if err != nil {
		logger.Fatal("Failed to initialize database: %v", err)
	}

	// 初始化链上镜像客户端（可整体关闭，本地账本为权威状态）
	var mirror *token.MirrorClient
	if cfg.Chain.Enabled {
		mirror, err = token.NewMirrorClient(cfg.Chain)
		if err != nil {
			logger.Fatal("Failed to initialize chain mirror client: %v", err)
		}
	}

	// 组装业务引擎
	issuer := token.NewLedgerIssuer(cfg.Chain.Enabled)
	recorder := event.NewRecorder()
	locks := logic.NewKeyLocks()

	campaignLogic := logic.NewCampaignLogic(db, cfg.Escrow, issuer, recorder, locks)
	governanceLogic := logic.NewGovernanceLogic(db, cfg.Escrow, issuer, recorder, locks)
	milestoneLogic := logic.NewMilestoneLogic(db, cfg.Escrow, governanceLogic, recorder, locks)
	governanceLogic.BindEscrow(milestoneLogic)
	disburseLogic := logic.NewDisburseLogic(db)

	// 事件分发器
	dispatcher, err := event.NewDispatcher(db, 8)
	if err != nil {
		logger.Fatal("Failed to create event dispatcher: %v", err)
	}
	defer dispatcher.Release()
	dispatcher.Subscribe(func(ev model.EventModel) {
		logger.Info("Event %s for campaign %d dispatched", ev.EventType, ev.CampaignId)
	})

	// 设置Gin模式
	if cfg.Server.Mode == "release" {
		gin.SetMode(gin.ReleaseMode)
	}

	// 初始化路由
	r := router.Setup(db, router.Engines{
		Campaign:   campaignLogic,
		Milestone:  milestoneLogic,
		Governance: governanceLogic,
		Disburse:   disburseLogic,
		Recorder:   recorder,
	})

	// 启动定时任务
	manager := task.Start(db, cfg, governanceLogic, recorder, dispatcher, mirror)
	defer manager.Stop()

	// 启动服务器
	logger.Info("Server starting on port %s", cfg.Server.Port)
	if err := r.Run(":" + cfg.Server.Port); err != nil {
		logger.Fatal("Failed to start server: %v", err)
	}
}
