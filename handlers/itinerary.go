package handlers

import (
	"net/http"

	"github.com/gin-gonic/gin"

	"tripplanner-backend/models"
	"tripplanner-backend/utils"
)

// GET /api/trips/:id/itinerary
func (h *Handler) GetItinerary(c *gin.Context) {
	tripID, ok := utils.ParamUUID(c, "id")
	if !ok {
		return
	}
	items, err := h.Itinerary.List(c.Request.Context(), utils.GetCurrentUserID(c), tripID)
	if err != nil {
		utils.RespondError(c, err)
		return
	}
	utils.SuccessResponse(c, http.StatusOK, "", items)
}

// POST /api/trips/:id/itinerary
func (h *Handler) CreateItineraryItem(c *gin.Context) {
	tripID, ok := utils.ParamUUID(c, "id")
	if !ok {
		return
	}
	var req models.CreateItineraryItemRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		utils.BindError(c, err)
		return
	}

	item, err := h.Itinerary.Create(c.Request.Context(), utils.GetCurrentUserID(c), tripID, req)
	if err != nil {
		utils.RespondError(c, err)
		return
	}
	utils.SuccessResponse(c, http.StatusCreated, "Itinerary item added", item)
}

// POST /api/trips/:id/itinerary/reorder
func (h *Handler) ReorderItinerary(c *gin.Context) {
	tripID, ok := utils.ParamUUID(c, "id")
	if !ok {
		return
	}
	var req models.ReorderItineraryRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		utils.BindError(c, err)
		return
	}

	items, err := h.Itinerary.Reorder(c.Request.Context(), utils.GetCurrentUserID(c), tripID, req.ItemIDs)
	if err != nil {
		utils.RespondError(c, err)
		return
	}
	utils.SuccessResponse(c, http.StatusOK, "Itinerary reordered", items)
}

// DELETE /api/trips/:id/itinerary/:itemId
func (h *Handler) DeleteItineraryItem(c *gin.Context) {
	tripID, ok := utils.ParamUUID(c, "id")
	if !ok {
		return
	}
	itemID, ok := utils.ParamUint(c, "itemId")
	if !ok {
		return
	}
	if err := h.Itinerary.Delete(c.Request.Context(), utils.GetCurrentUserID(c), tripID, itemID); err != nil {
		utils.RespondError(c, err)
		return
	}
	c.Status(http.StatusNoContent)
}
