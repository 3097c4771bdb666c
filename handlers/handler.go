package handlers

import (
	"github.com/gin-gonic/gin"

	"tripplanner-backend/services"
	"tripplanner-backend/utils"
)

type Handler struct {
	Tokens        *utils.TokenManager
	Users         *services.UserService
	Trips         *services.TripService
	Invites       *services.InviteService
	Itinerary     *services.ItineraryService
	Polls         *services.PollService
	Chat          *services.ChatService
	Notifications *services.NotificationService
}

// RegisterAuth mounts the public account routes.
func (h *Handler) RegisterAuth(auth *gin.RouterGroup) {
	auth.POST("/register", h.Register)
	auth.POST("/login", h.Login)
}

// RegisterAPI mounts the authenticated routes.
func (h *Handler) RegisterAPI(api *gin.RouterGroup) {
	// User
	api.GET("/users/me", h.GetProfile)
	api.PUT("/users/me/fcm-token", h.UpdateFCMToken)

	// Trips
	api.POST("/trips", h.CreateTrip)
	api.GET("/trips", h.GetTrips)
	api.GET("/trips/:id", h.GetTrip)
	api.PUT("/trips/:id", h.UpdateTrip)
	api.DELETE("/trips/:id", h.DeleteTrip)
	api.POST("/trips/:id/add-collaborator", h.AddCollaborator)
	api.POST("/trips/:id/remove-collaborator", h.RemoveCollaborator)

	// Invitations
	api.POST("/trips/:id/invite", h.InviteToTrip)
	api.GET("/invitations", h.GetInvitations)
	api.POST("/invitations/:inviteId/respond", h.RespondToInvitation)
	api.POST("/invites/:token/accept", h.AcceptInvite)
	api.POST("/invites/:token/decline", h.DeclineInvite)
	api.GET("/invites/accept/:token", h.AcceptInvite)

	// Itinerary
	api.GET("/trips/:id/itinerary", h.GetItinerary)
	api.POST("/trips/:id/itinerary", h.CreateItineraryItem)
	api.POST("/trips/:id/itinerary/reorder", h.ReorderItinerary)
	api.DELETE("/trips/:id/itinerary/:itemId", h.DeleteItineraryItem)

	// Polls
	api.GET("/trips/:id/polls", h.GetPolls)
	api.POST("/trips/:id/polls", h.CreatePoll)
	api.DELETE("/trips/:id/polls/:pollId", h.DeletePoll)
	api.POST("/polls/:pollId/vote", h.Vote)

	// Chat
	api.GET("/trips/:id/chat", h.GetMessages)
	api.POST("/trips/:id/chat", h.SendMessage)

	// Notifications
	api.GET("/notifications", h.GetNotificationSummary)
	api.GET("/notifications/history", h.GetNotificationHistory)
	api.POST("/notifications/mark-read", h.MarkNotificationsRead)
	api.POST("/notifications/history/:id/read", h.MarkNotificationRead)
}
