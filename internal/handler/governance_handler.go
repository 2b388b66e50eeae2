package handler

import (
	"net/http"
	"strconv"

	"github.com/gin-gonic/gin"
	"github.com/hoddukzoa12/crowdmantle-sub000/internal/logic"
)

// GovernanceHandler 治理引擎处理器
// 里程碑提案没有对应路由：它只能由托管引擎在内部创建
type GovernanceHandler struct {
	governanceLogic *logic.GovernanceLogic
}

// NewGovernanceHandler 创建治理处理器
func NewGovernanceHandler(governanceLogic *logic.GovernanceLogic) *GovernanceHandler {
	return &GovernanceHandler{governanceLogic: governanceLogic}
}

// CreateProposal 创建普通提案
func (h *GovernanceHandler) CreateProposal(c *gin.Context) {
	var req CreateProposalRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		ErrorResponse(c, http.StatusBadRequest, err.Error())
		return
	}

	proposal, err := h.governanceLogic.CreateProposal(req.CampaignId, req.Proposer, req.Title, req.Description)
	if err != nil {
		FailWithError(c, err)
		return
	}
	SuccessResponse(c, http.StatusCreated, "提案创建成功", proposal)
}

// GetProposal 获取提案详情
func (h *GovernanceHandler) GetProposal(c *gin.Context) {
	id, ok := h.parseId(c)
	if !ok {
		return
	}

	proposal, err := h.governanceLogic.GetProposal(id)
	if err != nil {
		FailWithError(c, err)
		return
	}
	SuccessResponse(c, http.StatusOK, "ok", proposal)
}

// GetCampaignProposals 获取活动提案列表
func (h *GovernanceHandler) GetCampaignProposals(c *gin.Context) {
	campaignId, err := strconv.ParseInt(c.Param("id"), 10, 64)
	if err != nil {
		ErrorResponse(c, http.StatusBadRequest, "无效的活动ID")
		return
	}

	page, _ := strconv.Atoi(c.DefaultQuery("page", "1"))
	pageSize, _ := strconv.Atoi(c.DefaultQuery("page_size", "10"))

	proposals, total, err := h.governanceLogic.GetCampaignProposals(campaignId, page, pageSize)
	if err != nil {
		FailWithError(c, err)
		return
	}
	c.JSON(http.StatusOK, gin.H{
		"proposals": proposals,
		"total":     total,
		"page":      page,
		"page_size": pageSize,
	})
}

// Vote 投票
func (h *GovernanceHandler) Vote(c *gin.Context) {
	id, ok := h.parseId(c)
	if !ok {
		return
	}

	var req VoteRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		ErrorResponse(c, http.StatusBadRequest, err.Error())
		return
	}

	weight, err := h.governanceLogic.Vote(id, req.Voter, *req.Support)
	if err != nil {
		FailWithError(c, err)
		return
	}
	c.JSON(http.StatusOK, gin.H{
		"proposal_id": id,
		"voter":       req.Voter,
		"support":     *req.Support,
		"weight":      weight,
	})
}

// Execute 执行提案（任何人可触发）
func (h *GovernanceHandler) Execute(c *gin.Context) {
	id, ok := h.parseId(c)
	if !ok {
		return
	}

	var req CallerRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		ErrorResponse(c, http.StatusBadRequest, err.Error())
		return
	}

	proposal, err := h.governanceLogic.ExecuteProposal(id, req.Address)
	if err != nil {
		FailWithError(c, err)
		return
	}
	SuccessResponse(c, http.StatusOK, "提案执行成功", proposal)
}

// Cancel 取消提案（仅发起人）
func (h *GovernanceHandler) Cancel(c *gin.Context) {
	id, ok := h.parseId(c)
	if !ok {
		return
	}

	var req CallerRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		ErrorResponse(c, http.StatusBadRequest, err.Error())
		return
	}

	if err := h.governanceLogic.CancelProposal(id, req.Address); err != nil {
		FailWithError(c, err)
		return
	}
	SuccessResponse(c, http.StatusOK, "提案已取消", nil)
}

// GetVotingResults 获取投票结果
func (h *GovernanceHandler) GetVotingResults(c *gin.Context) {
	id, ok := h.parseId(c)
	if !ok {
		return
	}

	results, err := h.governanceLogic.GetVotingResults(id)
	if err != nil {
		FailWithError(c, err)
		return
	}
	SuccessResponse(c, http.StatusOK, "ok", results)
}

// GetStatus 获取提案状态与剩余投票时长
func (h *GovernanceHandler) GetStatus(c *gin.Context) {
	id, ok := h.parseId(c)
	if !ok {
		return
	}

	status, err := h.governanceLogic.GetProposalStatus(id)
	if err != nil {
		FailWithError(c, err)
		return
	}
	remaining, err := h.governanceLogic.GetTimeRemaining(id)
	if err != nil {
		FailWithError(c, err)
		return
	}
	c.JSON(http.StatusOK, gin.H{
		"proposal_id":        id,
		"status":             status,
		"time_remaining_sec": int64(remaining.Seconds()),
	})
}

// parseId 解析路径中的提案ID
func (h *GovernanceHandler) parseId(c *gin.Context) (int64, bool) {
	id, err := strconv.ParseInt(c.Param("id"), 10, 64)
	if err != nil {
		ErrorResponse(c, http.StatusBadRequest, "无效的提案ID")
		return 0, false
	}
	return id, true
}
