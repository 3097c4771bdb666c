package middleware

import (
	"net/http"
	"strings"

	"github.com/gin-gonic/gin"

	"tripplanner-backend/utils"
)

// AuthRequired validates the bearer token and stores user_id and email on
// the context.
func AuthRequired(tm *utils.TokenManager) gin.HandlerFunc {
	return func(c *gin.Context) {
		header := c.GetHeader("Authorization")
		scheme, token, ok := strings.Cut(header, " ")
		if !ok || !strings.EqualFold(scheme, "Bearer") || token == "" {
			abortUnauthorized(c, "Authentication credentials were not provided.")
			return
		}

		claims, err := tm.Parse(strings.TrimSpace(token))
		if err != nil {
			abortUnauthorized(c, "Invalid or expired token.")
			return
		}

		c.Set("user_id", claims.UserID)
		c.Set("email", claims.Email)
		c.Next()
	}
}

func abortUnauthorized(c *gin.Context, message string) {
	c.AbortWithStatusJSON(http.StatusUnauthorized, utils.APIResponse{Success: false, Message: message})
}
