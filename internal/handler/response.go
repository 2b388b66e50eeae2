package handler

import (
	"errors"
	"net/http"

	"github.com/gin-gonic/gin"
	"github.com/hoddukzoa12/crowdmantle-sub000/internal/ledger"
	"github.com/hoddukzoa12/crowdmantle-sub000/internal/model"
)

// Response 通用响应结构
type Response struct {
	Success bool        `json:"success"`
	Message string      `json:"message"`
	Data    interface{} `json:"data"`
}

// SuccessResponse 成功响应
func SuccessResponse(c *gin.Context, statusCode int, message string, data interface{}) {
	c.JSON(statusCode, Response{
		Success: true,
		Message: message,
		Data:    data,
	})
}

// ErrorResponse 错误响应
func ErrorResponse(c *gin.Context, statusCode int, message string) {
	c.JSON(statusCode, Response{
		Success: false,
		Message: message,
		Data:    nil,
	})
}

// FailWithError 按业务错误类型映射HTTP状态码
// 校验类 400，权限类 403，不存在 404，状态/前置条件类 409
func FailWithError(c *gin.Context, err error) {
	c.JSON(statusCodeFor(err), Response{
		Success: false,
		Message: err.Error(),
		Data:    nil,
	})
}

func statusCodeFor(err error) int {
	switch {
	case errors.Is(err, model.ErrCampaignNotFound),
		errors.Is(err, model.ErrMilestoneNotFound),
		errors.Is(err, model.ErrProposalNotFound):
		return http.StatusNotFound
	case errors.Is(err, model.ErrNotCampaignCreator),
		errors.Is(err, model.ErrNotProposer),
		errors.Is(err, model.ErrNotEscrow):
		return http.StatusForbidden
	case errors.Is(err, model.ErrInvalidAmount),
		errors.Is(err, model.ErrInvalidDuration),
		errors.Is(err, model.ErrInvalidFounderShare),
		errors.Is(err, model.ErrInvalidMilestoneCount),
		errors.Is(err, model.ErrPercentagesMustSumTo100),
		errors.Is(err, model.ErrInvalidMilestoneSchedule),
		errors.Is(err, ledger.ErrInvalidAddress),
		errors.Is(err, ledger.ErrZeroAddress):
		return http.StatusBadRequest
	case errors.Is(err, model.ErrCampaignEnded),
		errors.Is(err, model.ErrCampaignNotEnded),
		errors.Is(err, model.ErrCampaignNotSuccessful),
		errors.Is(err, model.ErrCampaignSuccessful),
		errors.Is(err, model.ErrAlreadyClaimed),
		errors.Is(err, model.ErrAlreadyVoted),
		errors.Is(err, model.ErrAlreadyExecuted),
		errors.Is(err, model.ErrProposalCanceled),
		errors.Is(err, model.ErrVotingNotStarted),
		errors.Is(err, model.ErrVotingClosed),
		errors.Is(err, model.ErrVotingNotEnded),
		errors.Is(err, model.ErrPreviousMilestoneNotCompleted),
		errors.Is(err, model.ErrMilestoneNotPending),
		errors.Is(err, model.ErrMilestoneNotApproved),
		errors.Is(err, model.ErrMilestoneNotRejected),
		errors.Is(err, model.ErrMilestoneProposalOutstanding),
		errors.Is(err, model.ErrNoMilestones),
		errors.Is(err, model.ErrHasMilestones),
		errors.Is(err, model.ErrInsufficientPledge),
		errors.Is(err, model.ErrInsufficientTokens),
		errors.Is(err, model.ErrNothingToRefund),
		errors.Is(err, model.ErrTokensNotClaimed):
		return http.StatusConflict
	default:
		return http.StatusInternalServerError
	}
}
