package api

import (
	"net/http"
	"strings"

	"github.com/gin-gonic/gin"

	"trove-sync-go/internal/sync"
)

// ErrorResponse is the generic error payload of the API.
type ErrorResponse struct {
	Error   string `json:"error"`
	Details string `json:"details,omitempty"`
}

// SuccessResponse is the generic payload for simple success messages.
type SuccessResponse struct {
	Message string      `json:"message"`
	Data    interface{} `json:"data,omitempty"`
}

// writeResult renders a mutation Result. Successful mutations answer with
// successStatus and the Result body (the client reads ID and Draft from it);
// failures map onto conventional status codes.
func writeResult(c *gin.Context, res sync.Result, successStatus int) {
	if res.OK {
		c.JSON(successStatus, res)
		return
	}
	c.JSON(resultStatus(res), res)
}

func resultStatus(res sync.Result) int {
	switch {
	case res.Conflict:
		return http.StatusConflict
	case res.Message == "permission denied":
		return http.StatusForbidden
	case res.Message == "connection required":
		return http.StatusServiceUnavailable
	case strings.Contains(res.Message, "not found"):
		return http.StatusNotFound
	default:
		return http.StatusUnprocessableEntity
	}
}

// actingUserID extracts the authenticated user's id set by the auth
// middleware; it answers 401 itself when absent.
func actingUserID(c *gin.Context) (string, bool) {
	userID := c.GetString("userID")
	if userID == "" {
		c.JSON(http.StatusUnauthorized, ErrorResponse{Error: "User ID not found in context"})
		return "", false
	}
	return userID, true
}
