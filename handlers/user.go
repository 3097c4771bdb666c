package handlers

import (
	"net/http"

	"github.com/gin-gonic/gin"

	"tripplanner-backend/models"
	"tripplanner-backend/utils"
)

// GET /api/users/me
func (h *Handler) GetProfile(c *gin.Context) {
	user, err := h.Users.Get(c.Request.Context(), utils.GetCurrentUserID(c))
	if err != nil {
		utils.RespondError(c, err)
		return
	}
	utils.SuccessResponse(c, http.StatusOK, "", user.ToResponse())
}

// PUT /api/users/me/fcm-token
func (h *Handler) UpdateFCMToken(c *gin.Context) {
	var req models.UpdateFCMTokenRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		utils.BindError(c, err)
		return
	}

	if err := h.Users.UpdateFCMToken(c.Request.Context(), utils.GetCurrentUserID(c), req.Token); err != nil {
		utils.RespondError(c, err)
		return
	}
	utils.SuccessResponse(c, http.StatusOK, "FCM token updated", nil)
}
