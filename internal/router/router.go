package router

import (
	"github.com/gin-gonic/gin"
	"github.com/hoddukzoa12/crowdmantle-sub000/internal/event"
	"github.com/hoddukzoa12/crowdmantle-sub000/internal/handler"
	"github.com/hoddukzoa12/crowdmantle-sub000/internal/logic"
	"gorm.io/gorm"
)

// Engines 路由依赖的业务引擎集合
type Engines struct {
	Campaign   *logic.CampaignLogic
	Milestone  *logic.MilestoneLogic
	Governance *logic.GovernanceLogic
	Disburse   *logic.DisburseLogic
	Recorder   *event.Recorder
}

func Setup(db *gorm.DB, engines Engines) *gin.Engine {
	r := gin.Default()

	// 中间件
	r.Use(gin.Logger())
	r.Use(gin.Recovery())
	r.Use(corsMiddleware())

	// 健康检查
	r.GET("/health", func(c *gin.Context) {
		c.JSON(200, gin.H{
			"status":  "ok",
			"service": "crowdmantle",
		})
	})

	// API版本组
	v1 := r.Group("/api/v1")
	{
		// 活动登记路由
		campaignHandler := handler.NewCampaignHandler(engines.Campaign)
		campaigns := v1.Group("/campaigns")
		{
			campaigns.POST("", campaignHandler.CreateCampaign)
			campaigns.GET("", campaignHandler.GetCampaigns)
			campaigns.GET("/:id", campaignHandler.GetCampaign)
			campaigns.GET("/:id/status", campaignHandler.GetCampaignStatus)
			campaigns.POST("/:id/pledge", campaignHandler.Pledge)
			campaigns.POST("/:id/unpledge", campaignHandler.Unpledge)
			campaigns.GET("/:id/pledges/:address", campaignHandler.GetPledge)
			campaigns.POST("/:id/claim", campaignHandler.Claim)
			campaigns.POST("/:id/claim-tokens", campaignHandler.ClaimTokens)
			campaigns.POST("/:id/claim-founder-tokens", campaignHandler.ClaimFounderTokens)
			campaigns.POST("/:id/refund", campaignHandler.Refund)
		}

		// 里程碑引擎路由
		milestoneHandler := handler.NewMilestoneHandler(engines.Milestone, engines.Disburse)
		{
			campaigns.GET("/:id/milestones", milestoneHandler.GetCampaignMilestones)
			campaigns.GET("/:id/milestones/:index", milestoneHandler.GetMilestone)
			campaigns.POST("/:id/milestones/:index/submit", milestoneHandler.SubmitForApproval)
			campaigns.POST("/:id/milestones/:index/release", milestoneHandler.ReleaseFunds)
			campaigns.POST("/:id/emergency-refund", milestoneHandler.EmergencyRefund)
			campaigns.GET("/:id/unreleased-funds", milestoneHandler.GetUnreleasedFunds)
			campaigns.GET("/:id/payouts", milestoneHandler.GetCampaignPayouts)
		}

		// 治理引擎路由（里程碑提案无路由，只能由托管引擎内部创建）
		governanceHandler := handler.NewGovernanceHandler(engines.Governance)
		proposals := v1.Group("/proposals")
		{
			proposals.POST("", governanceHandler.CreateProposal)
			proposals.GET("/:id", governanceHandler.GetProposal)
			proposals.POST("/:id/vote", governanceHandler.Vote)
			proposals.POST("/:id/execute", governanceHandler.Execute)
			proposals.POST("/:id/cancel", governanceHandler.Cancel)
			proposals.GET("/:id/results", governanceHandler.GetVotingResults)
			proposals.GET("/:id/status", governanceHandler.GetStatus)
		}
		campaigns.GET("/:id/proposals", governanceHandler.GetCampaignProposals)

		// 事件流路由
		eventHandler := handler.NewEventHandler(db, engines.Recorder)
		campaigns.GET("/:id/events", eventHandler.GetCampaignEvents)
	}

	return r
}

// CORS中间件
func corsMiddleware() gin.HandlerFunc {
	return func(c *gin.Context) {
		c.Header("Access-Control-Allow-Origin", "*")
		c.Header("Access-Control-Allow-Methods", "GET, POST, PUT, DELETE, OPTIONS")
		c.Header("Access-Control-Allow-Headers", "Origin, Content-Type, Content-Length, Accept-Encoding, X-CSRF-Token, Authorization")

		if c.Request.Method == "OPTIONS" {
			c.AbortWithStatus(204)
			return
		}

		c.Next()
	}
}
