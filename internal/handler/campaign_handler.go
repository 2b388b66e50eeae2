package handler

import (
	"net/http"
	"strconv"

	"github.com/gin-gonic/gin"
	"github.com/hoddukzoa12/crowdmantle-sub000/internal/logic"
)

// CampaignHandler 活动登记处理器
type CampaignHandler struct {
	campaignLogic *logic.CampaignLogic
}

// NewCampaignHandler 创建活动处理器
func NewCampaignHandler(campaignLogic *logic.CampaignLogic) *CampaignHandler {
	return &CampaignHandler{campaignLogic: campaignLogic}
}

// CreateCampaign 创建活动（带里程碑数组时创建里程碑活动）
func (h *CampaignHandler) CreateCampaign(c *gin.Context) {
	var req CreateCampaignRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		ErrorResponse(c, http.StatusBadRequest, err.Error())
		return
	}

	params := logic.CreateCampaignParams{
		Creator:         req.Creator,
		Name:            req.Name,
		Description:     req.Description,
		Goal:            req.Goal,
		DurationDays:    req.DurationDays,
		TokenName:       req.TokenName,
		TokenSymbol:     req.TokenSymbol,
		FounderShareBps: req.FounderShareBps,
	}

	if len(req.MilestoneTitles) > 0 {
		plan := logic.MilestonePlan{
			Titles:         req.MilestoneTitles,
			Descriptions:   req.MilestoneDescriptions,
			PercentagesBps: req.MilestonePercentages,
			DaysAfterEnd:   req.MilestoneDaysAfterEnd,
		}
		campaign, err := h.campaignLogic.CreateCampaignWithMilestones(params, plan)
		if err != nil {
			FailWithError(c, err)
			return
		}
		SuccessResponse(c, http.StatusCreated, "活动创建成功", campaign)
		return
	}

	campaign, err := h.campaignLogic.CreateCampaign(params)
	if err != nil {
		FailWithError(c, err)
		return
	}
	SuccessResponse(c, http.StatusCreated, "活动创建成功", campaign)
}

// GetCampaigns 获取活动列表
func (h *CampaignHandler) GetCampaigns(c *gin.Context) {
	creator := c.Query("creator")
	page, _ := strconv.Atoi(c.DefaultQuery("page", "1"))
	pageSize, _ := strconv.Atoi(c.DefaultQuery("page_size", "10"))

	campaigns, total, err := h.campaignLogic.GetCampaigns(creator, page, pageSize)
	if err != nil {
		FailWithError(c, err)
		return
	}

	c.JSON(http.StatusOK, gin.H{
		"campaigns": campaigns,
		"total":     total,
		"page":      page,
		"page_size": pageSize,
	})
}

// GetCampaign 获取单个活动详情
func (h *CampaignHandler) GetCampaign(c *gin.Context) {
	id, err := strconv.ParseInt(c.Param("id"), 10, 64)
	if err != nil {
		ErrorResponse(c, http.StatusBadRequest, "无效的活动ID")
		return
	}

	campaign, err := h.campaignLogic.GetCampaign(id)
	if err != nil {
		FailWithError(c, err)
		return
	}
	SuccessResponse(c, http.StatusOK, "ok", campaign)
}

// GetCampaignStatus 获取活动成败状态（实时计算）
func (h *CampaignHandler) GetCampaignStatus(c *gin.Context) {
	id, err := strconv.ParseInt(c.Param("id"), 10, 64)
	if err != nil {
		ErrorResponse(c, http.StatusBadRequest, "无效的活动ID")
		return
	}

	successful, err := h.campaignLogic.IsCampaignSuccessful(id)
	if err != nil {
		FailWithError(c, err)
		return
	}
	c.JSON(http.StatusOK, gin.H{
		"campaign_id": id,
		"successful":  successful,
	})
}

// Pledge 出资
func (h *CampaignHandler) Pledge(c *gin.Context) {
	id, err := strconv.ParseInt(c.Param("id"), 10, 64)
	if err != nil {
		ErrorResponse(c, http.StatusBadRequest, "无效的活动ID")
		return
	}

	var req PledgeRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		ErrorResponse(c, http.StatusBadRequest, err.Error())
		return
	}

	if err := h.campaignLogic.Pledge(id, req.Address, req.Amount); err != nil {
		FailWithError(c, err)
		return
	}
	SuccessResponse(c, http.StatusOK, "出资成功", nil)
}

// Unpledge 撤回出资
func (h *CampaignHandler) Unpledge(c *gin.Context) {
	id, err := strconv.ParseInt(c.Param("id"), 10, 64)
	if err != nil {
		ErrorResponse(c, http.StatusBadRequest, "无效的活动ID")
		return
	}

	var req PledgeRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		ErrorResponse(c, http.StatusBadRequest, err.Error())
		return
	}

	if err := h.campaignLogic.Unpledge(id, req.Address, req.Amount); err != nil {
		FailWithError(c, err)
		return
	}
	SuccessResponse(c, http.StatusOK, "撤回出资成功", nil)
}

// GetPledge 查询投资人出资
func (h *CampaignHandler) GetPledge(c *gin.Context) {
	id, err := strconv.ParseInt(c.Param("id"), 10, 64)
	if err != nil {
		ErrorResponse(c, http.StatusBadRequest, "无效的活动ID")
		return
	}

	pledge, err := h.campaignLogic.GetPledge(id, c.Param("address"))
	if err != nil {
		FailWithError(c, err)
		return
	}
	SuccessResponse(c, http.StatusOK, "ok", pledge)
}

// Claim 无里程碑活动创建者一次性提款
func (h *CampaignHandler) Claim(c *gin.Context) {
	id, err := strconv.ParseInt(c.Param("id"), 10, 64)
	if err != nil {
		ErrorResponse(c, http.StatusBadRequest, "无效的活动ID")
		return
	}

	var req CallerRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		ErrorResponse(c, http.StatusBadRequest, err.Error())
		return
	}

	payout, err := h.campaignLogic.Claim(id, req.Address)
	if err != nil {
		FailWithError(c, err)
		return
	}
	SuccessResponse(c, http.StatusOK, "提款成功", payout)
}

// ClaimTokens 投资人领取股权代币
func (h *CampaignHandler) ClaimTokens(c *gin.Context) {
	id, err := strconv.ParseInt(c.Param("id"), 10, 64)
	if err != nil {
		ErrorResponse(c, http.StatusBadRequest, "无效的活动ID")
		return
	}

	var req CallerRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		ErrorResponse(c, http.StatusBadRequest, err.Error())
		return
	}

	minted, err := h.campaignLogic.ClaimTokens(id, req.Address)
	if err != nil {
		FailWithError(c, err)
		return
	}
	c.JSON(http.StatusOK, gin.H{
		"campaign_id": id,
		"address":     req.Address,
		"minted":      minted,
	})
}

// ClaimFounderTokens 创建者领取预留份额代币
func (h *CampaignHandler) ClaimFounderTokens(c *gin.Context) {
	id, err := strconv.ParseInt(c.Param("id"), 10, 64)
	if err != nil {
		ErrorResponse(c, http.StatusBadRequest, "无效的活动ID")
		return
	}

	var req CallerRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		ErrorResponse(c, http.StatusBadRequest, err.Error())
		return
	}

	minted, err := h.campaignLogic.ClaimFounderTokens(id, req.Address)
	if err != nil {
		FailWithError(c, err)
		return
	}
	c.JSON(http.StatusOK, gin.H{
		"campaign_id": id,
		"address":     req.Address,
		"minted":      minted,
	})
}

// Refund 失败活动退款
func (h *CampaignHandler) Refund(c *gin.Context) {
	id, err := strconv.ParseInt(c.Param("id"), 10, 64)
	if err != nil {
		ErrorResponse(c, http.StatusBadRequest, "无效的活动ID")
		return
	}

	var req CallerRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		ErrorResponse(c, http.StatusBadRequest, err.Error())
		return
	}

	amount, err := h.campaignLogic.Refund(id, req.Address)
	if err != nil {
		FailWithError(c, err)
		return
	}
	c.JSON(http.StatusOK, gin.H{
		"campaign_id": id,
		"address":     req.Address,
		"refunded":    amount,
	})
}
