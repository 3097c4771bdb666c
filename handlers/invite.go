package handlers

import (
	"net/http"

	"github.com/gin-gonic/gin"

	"tripplanner-backend/models"
	"tripplanner-backend/utils"
)

// POST /api/trips/:id/invite
func (h *Handler) InviteToTrip(c *gin.Context) {
	tripID, ok := utils.ParamUUID(c, "id")
	if !ok {
		return
	}
	var req models.InviteRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		utils.BindError(c, err)
		return
	}

	invite, err := h.Invites.Invite(c.Request.Context(), utils.GetCurrentUserID(c), tripID, req.Identifier)
	if err != nil {
		utils.RespondError(c, err)
		return
	}
	utils.SuccessResponse(c, http.StatusOK, "Invitation sent", invite.ToResponse(true))
}

// GET /api/invitations
func (h *Handler) GetInvitations(c *gin.Context) {
	invites, err := h.Invites.ListReceived(c.Request.Context(), utils.GetCurrentUserID(c))
	if err != nil {
		utils.RespondError(c, err)
		return
	}
	out := make([]models.InviteResponse, len(invites))
	for i := range invites {
		out[i] = invites[i].ToResponse(true)
	}
	utils.SuccessResponse(c, http.StatusOK, "", out)
}

// POST /api/invitations/:inviteId/respond
func (h *Handler) RespondToInvitation(c *gin.Context) {
	inviteID, ok := utils.ParamUUID(c, "inviteId")
	if !ok {
		return
	}
	var req models.RespondInviteRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		utils.BindError(c, err)
		return
	}

	invite, err := h.Invites.Respond(c.Request.Context(), utils.GetCurrentUserID(c), inviteID, req.Status)
	if err != nil {
		utils.RespondError(c, err)
		return
	}
	utils.SuccessResponse(c, http.StatusOK, "Invitation "+string(invite.Status), invite.ToResponse(false))
}

// POST /api/invites/:token/accept
// GET  /api/invites/accept/:token
func (h *Handler) AcceptInvite(c *gin.Context) {
	token, ok := utils.ParamUUID(c, "token")
	if !ok {
		return
	}
	invite, err := h.Invites.AcceptByToken(c.Request.Context(), utils.GetCurrentUserID(c), token)
	if err != nil {
		utils.RespondError(c, err)
		return
	}
	utils.SuccessResponse(c, http.StatusOK, "Invitation accepted", invite.ToResponse(false))
}

// POST /api/invites/:token/decline
func (h *Handler) DeclineInvite(c *gin.Context) {
	token, ok := utils.ParamUUID(c, "token")
	if !ok {
		return
	}
	invite, err := h.Invites.DeclineByToken(c.Request.Context(), utils.GetCurrentUserID(c), token)
	if err != nil {
		utils.RespondError(c, err)
		return
	}
	utils.SuccessResponse(c, http.StatusOK, "Invitation declined", invite.ToResponse(false))
}
