package handlers

import (
	"net/http"

	"github.com/gin-gonic/gin"

	"tripplanner-backend/models"
	"tripplanner-backend/utils"
)

// POST /api/trips
func (h *Handler) CreateTrip(c *gin.Context) {
	var req models.CreateTripRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		utils.BindError(c, err)
		return
	}

	trip, err := h.Trips.Create(c.Request.Context(), utils.GetCurrentUserID(c), req)
	if err != nil {
		utils.RespondError(c, err)
		return
	}
	utils.SuccessResponse(c, http.StatusCreated, "Trip created", trip)
}

// GET /api/trips
func (h *Handler) GetTrips(c *gin.Context) {
	var pagination utils.PaginationQuery
	_ = c.ShouldBindQuery(&pagination)
	pagination.Normalize(20, 100)

	trips, total, err := h.Trips.List(c.Request.Context(), utils.GetCurrentUserID(c), pagination.Offset(), pagination.Limit)
	if err != nil {
		utils.RespondError(c, err)
		return
	}
	utils.SuccessResponse(c, http.StatusOK, "", pagination.Paged(trips, total))
}

// GET /api/trips/:id
func (h *Handler) GetTrip(c *gin.Context) {
	tripID, ok := utils.ParamUUID(c, "id")
	if !ok {
		return
	}
	trip, err := h.Trips.Get(c.Request.Context(), utils.GetCurrentUserID(c), tripID)
	if err != nil {
		utils.RespondError(c, err)
		return
	}
	utils.SuccessResponse(c, http.StatusOK, "", trip)
}

// PUT /api/trips/:id
func (h *Handler) UpdateTrip(c *gin.Context) {
	tripID, ok := utils.ParamUUID(c, "id")
	if !ok {
		return
	}
	var req models.UpdateTripRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		utils.BindError(c, err)
		return
	}

	trip, err := h.Trips.Update(c.Request.Context(), utils.GetCurrentUserID(c), tripID, req)
	if err != nil {
		utils.RespondError(c, err)
		return
	}
	utils.SuccessResponse(c, http.StatusOK, "Trip updated", trip)
}

// DELETE /api/trips/:id
func (h *Handler) DeleteTrip(c *gin.Context) {
	tripID, ok := utils.ParamUUID(c, "id")
	if !ok {
		return
	}
	if err := h.Trips.Delete(c.Request.Context(), utils.GetCurrentUserID(c), tripID); err != nil {
		utils.RespondError(c, err)
		return
	}
	c.Status(http.StatusNoContent)
}

// POST /api/trips/:id/add-collaborator
func (h *Handler) AddCollaborator(c *gin.Context) {
	tripID, ok := utils.ParamUUID(c, "id")
	if !ok {
		return
	}
	var req models.CollaboratorRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		utils.BindError(c, err)
		return
	}

	trip, err := h.Trips.AddCollaborator(c.Request.Context(), utils.GetCurrentUserID(c), tripID, req.Username)
	if err != nil {
		utils.RespondError(c, err)
		return
	}
	utils.SuccessResponse(c, http.StatusOK, "Collaborator added", trip)
}

// POST /api/trips/:id/remove-collaborator
func (h *Handler) RemoveCollaborator(c *gin.Context) {
	tripID, ok := utils.ParamUUID(c, "id")
	if !ok {
		return
	}
	var req models.CollaboratorRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		utils.BindError(c, err)
		return
	}

	trip, err := h.Trips.RemoveCollaborator(c.Request.Context(), utils.GetCurrentUserID(c), tripID, req.Username)
	if err != nil {
		utils.RespondError(c, err)
		return
	}
	utils.SuccessResponse(c, http.StatusOK, "Collaborator removed", trip)
}
