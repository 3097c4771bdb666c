package handlers

import (
	"net/http"

	"github.com/gin-gonic/gin"

	"tripplanner-backend/models"
	"tripplanner-backend/utils"
)

// GET /api/trips/:id/polls
func (h *Handler) GetPolls(c *gin.Context) {
	tripID, ok := utils.ParamUUID(c, "id")
	if !ok {
		return
	}
	polls, err := h.Polls.List(c.Request.Context(), utils.GetCurrentUserID(c), tripID)
	if err != nil {
		utils.RespondError(c, err)
		return
	}
	utils.SuccessResponse(c, http.StatusOK, "", polls)
}

// POST /api/trips/:id/polls
func (h *Handler) CreatePoll(c *gin.Context) {
	tripID, ok := utils.ParamUUID(c, "id")
	if !ok {
		return
	}
	var req models.CreatePollRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		utils.BindError(c, err)
		return
	}

	poll, err := h.Polls.Create(c.Request.Context(), utils.GetCurrentUserID(c), tripID, req)
	if err != nil {
		utils.RespondError(c, err)
		return
	}
	utils.SuccessResponse(c, http.StatusCreated, "Poll created", poll)
}

// DELETE /api/trips/:id/polls/:pollId
func (h *Handler) DeletePoll(c *gin.Context) {
	tripID, ok := utils.ParamUUID(c, "id")
	if !ok {
		return
	}
	pollID, ok := utils.ParamUint(c, "pollId")
	if !ok {
		return
	}
	if err := h.Polls.Delete(c.Request.Context(), utils.GetCurrentUserID(c), tripID, pollID); err != nil {
		utils.RespondError(c, err)
		return
	}
	c.Status(http.StatusNoContent)
}

// POST /api/polls/:pollId/vote
func (h *Handler) Vote(c *gin.Context) {
	pollID, ok := utils.ParamUint(c, "pollId")
	if !ok {
		return
	}
	var req models.VoteRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		utils.BindError(c, err)
		return
	}

	poll, err := h.Polls.CastVote(c.Request.Context(), utils.GetCurrentUserID(c), pollID, req.OptionID)
	if err != nil {
		utils.RespondError(c, err)
		return
	}
	utils.SuccessResponse(c, http.StatusOK, "Vote recorded", poll)
}
