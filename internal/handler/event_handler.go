package handler

import (
	"net/http"
	"strconv"

	"github.com/gin-gonic/gin"
	"github.com/hoddukzoa12/crowdmantle-sub000/internal/event"
	"gorm.io/gorm"
)

// EventHandler 领域事件查询处理器（供外部读模型/索引器拉取）
type EventHandler struct {
	db       *gorm.DB
	recorder *event.Recorder
}

// NewEventHandler 创建事件处理器
func NewEventHandler(db *gorm.DB, recorder *event.Recorder) *EventHandler {
	return &EventHandler{db: db, recorder: recorder}
}

// GetCampaignEvents 获取活动事件流
func (h *EventHandler) GetCampaignEvents(c *gin.Context) {
	id, err := strconv.ParseInt(c.Param("id"), 10, 64)
	if err != nil {
		ErrorResponse(c, http.StatusBadRequest, "无效的活动ID")
		return
	}

	page, _ := strconv.Atoi(c.DefaultQuery("page", "1"))
	pageSize, _ := strconv.Atoi(c.DefaultQuery("page_size", "50"))

	events, total, err := h.recorder.GetCampaignEvents(h.db, id, page, pageSize)
	if err != nil {
		FailWithError(c, err)
		return
	}
	c.JSON(http.StatusOK, gin.H{
		"events":    events,
		"total":     total,
		"page":      page,
		"page_size": pageSize,
	})
}
