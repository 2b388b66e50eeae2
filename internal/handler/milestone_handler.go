package handler

import (
	"net/http"
	"strconv"

	"github.com/gin-gonic/gin"
	"github.com/hoddukzoa12/crowdmantle-sub000/internal/logic"
)

// MilestoneHandler 里程碑引擎处理器
type MilestoneHandler struct {
	milestoneLogic *logic.MilestoneLogic
	disburseLogic  *logic.DisburseLogic
}

// NewMilestoneHandler 创建里程碑处理器
func NewMilestoneHandler(milestoneLogic *logic.MilestoneLogic, disburseLogic *logic.DisburseLogic) *MilestoneHandler {
	return &MilestoneHandler{
		milestoneLogic: milestoneLogic,
		disburseLogic:  disburseLogic,
	}
}

// SubmitForApproval 提交里程碑审批，开启治理投票
func (h *MilestoneHandler) SubmitForApproval(c *gin.Context) {
	id, index, ok := h.parseIds(c)
	if !ok {
		return
	}

	var req SubmitMilestoneRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		ErrorResponse(c, http.StatusBadRequest, err.Error())
		return
	}

	proposal, err := h.milestoneLogic.SubmitMilestoneForApproval(id, index, req.Address)
	if err != nil {
		FailWithError(c, err)
		return
	}
	SuccessResponse(c, http.StatusOK, "里程碑已提交审批", proposal)
}

// ReleaseFunds 放款已通过投票的里程碑
func (h *MilestoneHandler) ReleaseFunds(c *gin.Context) {
	id, index, ok := h.parseIds(c)
	if !ok {
		return
	}

	var req CallerRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		ErrorResponse(c, http.StatusBadRequest, err.Error())
		return
	}

	payout, err := h.milestoneLogic.ReleaseMilestoneFunds(id, index, req.Address)
	if err != nil {
		FailWithError(c, err)
		return
	}
	SuccessResponse(c, http.StatusOK, "里程碑放款成功", payout)
}

// EmergencyRefund 紧急退款
func (h *MilestoneHandler) EmergencyRefund(c *gin.Context) {
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

	amount, err := h.milestoneLogic.EmergencyRefund(id, req.Address)
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

// GetMilestone 获取单个里程碑
func (h *MilestoneHandler) GetMilestone(c *gin.Context) {
	id, index, ok := h.parseIds(c)
	if !ok {
		return
	}

	milestone, err := h.milestoneLogic.GetMilestone(id, index)
	if err != nil {
		FailWithError(c, err)
		return
	}
	SuccessResponse(c, http.StatusOK, "ok", milestone)
}

// GetCampaignMilestones 获取活动的全部里程碑
func (h *MilestoneHandler) GetCampaignMilestones(c *gin.Context) {
	id, err := strconv.ParseInt(c.Param("id"), 10, 64)
	if err != nil {
		ErrorResponse(c, http.StatusBadRequest, "无效的活动ID")
		return
	}

	milestones, err := h.milestoneLogic.GetCampaignMilestones(id)
	if err != nil {
		FailWithError(c, err)
		return
	}
	c.JSON(http.StatusOK, gin.H{
		"campaign_id": id,
		"milestones":  milestones,
	})
}

// GetUnreleasedFunds 获取未放款余额
func (h *MilestoneHandler) GetUnreleasedFunds(c *gin.Context) {
	id, err := strconv.ParseInt(c.Param("id"), 10, 64)
	if err != nil {
		ErrorResponse(c, http.StatusBadRequest, "无效的活动ID")
		return
	}

	unreleased, err := h.milestoneLogic.GetUnreleasedFunds(id)
	if err != nil {
		FailWithError(c, err)
		return
	}
	c.JSON(http.StatusOK, gin.H{
		"campaign_id":      id,
		"unreleased_funds": unreleased,
	})
}

// GetCampaignPayouts 获取活动放款/退款记录
func (h *MilestoneHandler) GetCampaignPayouts(c *gin.Context) {
	id, err := strconv.ParseInt(c.Param("id"), 10, 64)
	if err != nil {
		ErrorResponse(c, http.StatusBadRequest, "无效的活动ID")
		return
	}

	page, _ := strconv.Atoi(c.DefaultQuery("page", "1"))
	pageSize, _ := strconv.Atoi(c.DefaultQuery("page_size", "20"))

	payouts, total, err := h.disburseLogic.GetCampaignPayouts(id, page, pageSize)
	if err != nil {
		FailWithError(c, err)
		return
	}
	c.JSON(http.StatusOK, gin.H{
		"payouts":   payouts,
		"total":     total,
		"page":      page,
		"page_size": pageSize,
	})
}

// parseIds 解析路径中的活动ID与里程碑序号
func (h *MilestoneHandler) parseIds(c *gin.Context) (int64, int, bool) {
	id, err := strconv.ParseInt(c.Param("id"), 10, 64)
	if err != nil {
		ErrorResponse(c, http.StatusBadRequest, "无效的活动ID")
		return 0, 0, false
	}
	index, err := strconv.Atoi(c.Param("index"))
	if err != nil {
		ErrorResponse(c, http.StatusBadRequest, "无效的里程碑序号")
		return 0, 0, false
	}
	return id, index, true
}
