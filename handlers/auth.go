package handlers

import (
	"net/http"

	"github.com/gin-gonic/gin"

	"tripplanner-backend/apperr"
	"tripplanner-backend/models"
	"tripplanner-backend/utils"
)

type AuthResponse struct {
	Token string              `json:"token"`
	User  models.UserResponse `json:"user"`
}

// POST /auth/register
func (h *Handler) Register(c *gin.Context) {
	var req models.RegisterRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		utils.BindError(c, err)
		return
	}

	user, err := h.Users.Register(c.Request.Context(), req)
	if err != nil {
		utils.RespondError(c, err)
		return
	}

	token, err := h.Tokens.Generate(user.ID, user.Email)
	if err != nil {
		utils.RespondError(c, apperr.Internal("generate token", err))
		return
	}

	utils.SuccessResponse(c, http.StatusCreated, "Registration successful", AuthResponse{
		Token: token,
		User:  user.ToResponse(),
	})
}

// POST /auth/login
func (h *Handler) Login(c *gin.Context) {
	var req models.LoginRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		utils.BindError(c, err)
		return
	}

	user, err := h.Users.Authenticate(c.Request.Context(), req.Identifier, req.Password)
	if err != nil {
		utils.RespondError(c, err)
		return
	}

	token, err := h.Tokens.Generate(user.ID, user.Email)
	if err != nil {
		utils.RespondError(c, apperr.Internal("generate token", err))
		return
	}

	utils.SuccessResponse(c, http.StatusOK, "Login successful", AuthResponse{
		Token: token,
		User:  user.ToResponse(),
	})
}
