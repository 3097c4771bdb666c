package utils

import (
	"net/http"
	"strconv"

	"github.com/gin-gonic/gin"
	"github.com/google/uuid"
)

// Standard API response
type APIResponse struct {
	Success bool           `json:"success"`
	Message string         `json:"message,omitempty"`
	Data    interface{}    `json:"data,omitempty"`
	Details map[string]any `json:"details,omitempty"`
}

type PagedData struct {
	Items interface{} `json:"items"`
	Total int64       `json:"total"`
	Page  int         `json:"page"`
	Limit int         `json:"limit"`
}

func SuccessResponse(c *gin.Context, statusCode int, message string, data interface{}) {
	c.JSON(statusCode, APIResponse{
		Success: true,
		Message: message,
		Data:    data,
	})
}

func ErrorResponse(c *gin.Context, statusCode int, message string) {
	c.JSON(statusCode, APIResponse{
		Success: false,
		Message: message,
	})
}

func BadRequest(c *gin.Context, message string) {
	ErrorResponse(c, http.StatusBadRequest, message)
}

func Unauthorized(c *gin.Context, message string) {
	ErrorResponse(c, http.StatusUnauthorized, message)
}

// Parse a UUID path parameter, answering 404 when it is malformed.
func ParamUUID(c *gin.Context, name string) (uuid.UUID, bool) {
	id, err := uuid.Parse(c.Param(name))
	if err != nil {
		ErrorResponse(c, http.StatusNotFound, "Not found.")
		return uuid.Nil, false
	}
	return id, true
}

// Parse a numeric path parameter, answering 404 when it is malformed.
func ParamUint(c *gin.Context, name string) (uint, bool) {
	n, err := strconv.ParseUint(c.Param(name), 10, 64)
	if err != nil || n == 0 {
		ErrorResponse(c, http.StatusNotFound, "Not found.")
		return 0, false
	}
	return uint(n), true
}

// Get current user ID from context (set by auth middleware)
func GetCurrentUserID(c *gin.Context) uuid.UUID {
	userID, exists := c.Get("user_id")
	if !exists {
		return uuid.Nil
	}
	return userID.(uuid.UUID)
}

// Pagination helpers
type PaginationQuery struct {
	Page  int `form:"page,default=1"`
	Limit int `form:"limit,default=20"`
}

// Normalize clamps page to >= 1 and limit to 1..max, using def when the
// limit is unset or invalid.
func (p *PaginationQuery) Normalize(def, max int) {
	if p.Page < 1 {
		p.Page = 1
	}
	if p.Limit < 1 {
		p.Limit = def
	}
	if p.Limit > max {
		p.Limit = max
	}
}

func (p *PaginationQuery) Offset() int {
	return (p.Page - 1) * p.Limit
}

func (p *PaginationQuery) Paged(items interface{}, total int64) PagedData {
	return PagedData{Items: items, Total: total, Page: p.Page, Limit: p.Limit}
}
