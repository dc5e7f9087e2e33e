package api

import (
	"net/http"

	"github.com/gin-gonic/gin"

	"trove-sync-go/internal/sync"
)

// InvitationHandler handles invitation endpoints.
type InvitationHandler struct {
	manager *sync.Manager
}

// NewInvitationHandler creates a new InvitationHandler.
func NewInvitationHandler(manager *sync.Manager) *InvitationHandler {
	return &InvitationHandler{manager: manager}
}

// ListInvitations handles GET /invitations.
func (h *InvitationHandler) ListInvitations(c *gin.Context) {
	userID, ok := actingUserID(c)
	if !ok {
		return
	}
	invitations, err := h.manager.Invitations(c.Request.Context(), userID)
	if err != nil {
		c.JSON(http.StatusInternalServerError, ErrorResponse{Error: "Failed to list invitations", Details: err.Error()})
		return
	}
	c.JSON(http.StatusOK, invitations)
}

// AcceptInvitation handles POST /invitations/:code/accept.
func (h *InvitationHandler) AcceptInvitation(c *gin.Context) {
	userID, ok := actingUserID(c)
	if !ok {
		return
	}
	writeResult(c, h.manager.AcceptInvitation(c.Request.Context(), userID, c.Param("code")), http.StatusOK)
}

// DenyInvitation handles POST /invitations/:code/deny.
func (h *InvitationHandler) DenyInvitation(c *gin.Context) {
	userID, ok := actingUserID(c)
	if !ok {
		return
	}
	writeResult(c, h.manager.DenyInvitation(c.Request.Context(), userID, c.Param("code")), http.StatusOK)
}
