package handlers

import (
	"net/http"

	"github.com/gin-gonic/gin"

	"tripplanner-backend/models"
	"tripplanner-backend/utils"
)

// GET /api/trips/:id/chat
func (h *Handler) GetMessages(c *gin.Context) {
	tripID, ok := utils.ParamUUID(c, "id")
	if !ok {
		return
	}
	var pagination utils.PaginationQuery
	_ = c.ShouldBindQuery(&pagination)
	if c.Query("limit") == "" {
		pagination.Limit = 50
	}
	pagination.Normalize(50, 100)

	msgs, total, err := h.Chat.List(c.Request.Context(), utils.GetCurrentUserID(c), tripID, pagination.Offset(), pagination.Limit)
	if err != nil {
		utils.RespondError(c, err)
		return
	}
	out := make([]models.ChatMessageResponse, len(msgs))
	for i := range msgs {
		out[i] = msgs[i].ToResponse()
	}
	utils.SuccessResponse(c, http.StatusOK, "", pagination.Paged(out, total))
}

// POST /api/trips/:id/chat
func (h *Handler) SendMessage(c *gin.Context) {
	tripID, ok := utils.ParamUUID(c, "id")
	if !ok {
		return
	}
	var req models.SendMessageRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		utils.BindError(c, err)
		return
	}

	msg, err := h.Chat.Send(c.Request.Context(), utils.GetCurrentUserID(c), tripID, req.Message)
	if err != nil {
		utils.RespondError(c, err)
		return
	}
	utils.SuccessResponse(c, http.StatusCreated, "Message sent", msg.ToResponse())
}
