package handlers

import (
	"net/http"

	"github.com/gin-gonic/gin"

	"tripplanner-backend/models"
	"tripplanner-backend/utils"
)

// GET /api/notifications
func (h *Handler) GetNotificationSummary(c *gin.Context) {
	summary, err := h.Notifications.Summary(c.Request.Context(), utils.GetCurrentUserID(c))
	if err != nil {
		utils.RespondError(c, err)
		return
	}
	utils.SuccessResponse(c, http.StatusOK, "", summary)
}

// GET /api/notifications/history
func (h *Handler) GetNotificationHistory(c *gin.Context) {
	var pagination utils.PaginationQuery
	_ = c.ShouldBindQuery(&pagination)
	pagination.Normalize(20, 100)

	notes, total, err := h.Notifications.History(c.Request.Context(), utils.GetCurrentUserID(c), pagination.Offset(), pagination.Limit)
	if err != nil {
		utils.RespondError(c, err)
		return
	}
	out := make([]models.NotificationResponse, len(notes))
	for i := range notes {
		out[i] = notes[i].ToResponse()
	}
	utils.SuccessResponse(c, http.StatusOK, "", pagination.Paged(out, total))
}

// POST /api/notifications/mark-read
func (h *Handler) MarkNotificationsRead(c *gin.Context) {
	var req models.MarkReadRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		utils.BindError(c, err)
		return
	}
	if err := h.Notifications.MarkRead(c.Request.Context(), utils.GetCurrentUserID(c), req); err != nil {
		utils.RespondError(c, err)
		return
	}
	utils.SuccessResponse(c, http.StatusOK, "Marked as read", nil)
}

// POST /api/notifications/history/:id/read
func (h *Handler) MarkNotificationRead(c *gin.Context) {
	id, ok := utils.ParamUint(c, "id")
	if !ok {
		return
	}
	if err := h.Notifications.MarkNotificationRead(c.Request.Context(), utils.GetCurrentUserID(c), id); err != nil {
		utils.RespondError(c, err)
		return
	}
	utils.SuccessResponse(c, http.StatusOK, "Marked as read", nil)
}
