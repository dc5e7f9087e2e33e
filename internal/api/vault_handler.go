package api

import (
	"errors"
	"net/http"

	"github.com/gin-gonic/gin"

	"trove-sync-go/internal/db"
	"trove-sync-go/internal/hierarchy"
	"trove-sync-go/internal/models"
	"trove-sync-go/internal/sync"
)

// VaultHandler handles vault endpoints.
type VaultHandler struct {
	manager *sync.Manager
	mirror  *hierarchy.Store
}

// NewVaultHandler creates a new VaultHandler.
func NewVaultHandler(manager *sync.Manager, mirror *hierarchy.Store) *VaultHandler {
	return &VaultHandler{manager: manager, mirror: mirror}
}

// CreateVault handles POST /vaults.
func (h *VaultHandler) CreateVault(c *gin.Context) {
	userID, ok := actingUserID(c)
	if !ok {
		return
	}
	var req models.CreateVaultRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, ErrorResponse{Error: "Invalid request payload", Details: err.Error()})
		return
	}
	writeResult(c, h.manager.CreateVault(c.Request.Context(), userID, req.Name), http.StatusCreated)
}

// GetVault handles GET /vaults/:vaultId.
func (h *VaultHandler) GetVault(c *gin.Context) {
	if _, ok := actingUserID(c); !ok {
		return
	}
	vaultID := c.Param("vaultId")
	vault, err := h.mirror.LoadVault(c.Request.Context(), vaultID)
	if err != nil {
		if errors.Is(err, db.ErrNotFound) {
			c.JSON(http.StatusNotFound, ErrorResponse{Error: "Vault not found"})
			return
		}
		c.JSON(http.StatusInternalServerError, ErrorResponse{Error: "Failed to load vault", Details: err.Error()})
		return
	}
	c.JSON(http.StatusOK, vault)
}

// UpdateVault handles PUT /vaults/:vaultId.
func (h *VaultHandler) UpdateVault(c *gin.Context) {
	userID, ok := actingUserID(c)
	if !ok {
		return
	}
	var req models.UpdateVaultRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, ErrorResponse{Error: "Invalid request payload", Details: err.Error()})
		return
	}
	writeResult(c, h.manager.UpdateVault(c.Request.Context(), userID, c.Param("vaultId"), req), http.StatusOK)
}

// GetVaultCapabilities handles GET /vaults/:vaultId/capabilities. The record
// is resolved from the local mirror; the client uses it to enable or disable
// actions without a round trip per action.
func (h *VaultHandler) GetVaultCapabilities(c *gin.Context) {
	userID, ok := actingUserID(c)
	if !ok {
		return
	}
	c.JSON(http.StatusOK, h.manager.VaultCapabilitiesFor(c.Param("vaultId"), userID))
}
