package api

import (
	"net/http"

	"github.com/gin-gonic/gin"

	"trove-sync-go/internal/hierarchy"
	"trove-sync-go/internal/models"
	"trove-sync-go/internal/sync"
)

// AssetHandler handles asset endpoints.
type AssetHandler struct {
	manager *sync.Manager
	mirror  *hierarchy.Store
}

// NewAssetHandler creates a new AssetHandler.
func NewAssetHandler(manager *sync.Manager, mirror *hierarchy.Store) *AssetHandler {
	return &AssetHandler{manager: manager, mirror: mirror}
}

// ListVaultAssets handles GET /vaults/:vaultId/assets.
func (h *AssetHandler) ListVaultAssets(c *gin.Context) {
	if _, ok := actingUserID(c); !ok {
		return
	}
	c.JSON(http.StatusOK, h.manager.AssetsForVault(c.Param("vaultId")))
}

// ListCollectionAssets handles GET /vaults/:vaultId/collections/:collectionId/assets.
// Queued children of a still-provisional collection are included.
func (h *AssetHandler) ListCollectionAssets(c *gin.Context) {
	if _, ok := actingUserID(c); !ok {
		return
	}
	c.JSON(http.StatusOK, h.manager.AssetsForCollection(c.Param("vaultId"), c.Param("collectionId")))
}

// CreateAsset handles POST /vaults/:vaultId/collections/:collectionId/assets.
// The collection id may still be provisional; the create is then queued until
// the parent confirms.
func (h *AssetHandler) CreateAsset(c *gin.Context) {
	userID, ok := actingUserID(c)
	if !ok {
		return
	}
	var req models.CreateAssetRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, ErrorResponse{Error: "Invalid request payload", Details: err.Error()})
		return
	}
	writeResult(c, h.manager.CreateAsset(c.Request.Context(), userID, c.Param("vaultId"), c.Param("collectionId"), req), http.StatusCreated)
}

// UpdateAsset handles PUT /assets/:assetId.
func (h *AssetHandler) UpdateAsset(c *gin.Context) {
	userID, ok := actingUserID(c)
	if !ok {
		return
	}
	var req models.UpdateAssetRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, ErrorResponse{Error: "Invalid request payload", Details: err.Error()})
		return
	}
	writeResult(c, h.manager.UpdateAsset(c.Request.Context(), userID, c.Param("assetId"), req), http.StatusOK)
}

// DeleteAsset handles DELETE /assets/:assetId.
func (h *AssetHandler) DeleteAsset(c *gin.Context) {
	userID, ok := actingUserID(c)
	if !ok {
		return
	}
	writeResult(c, h.manager.DeleteAsset(c.Request.Context(), userID, c.Param("assetId")), http.StatusOK)
}

// MoveAsset handles POST /assets/:assetId/move.
func (h *AssetHandler) MoveAsset(c *gin.Context) {
	userID, ok := actingUserID(c)
	if !ok {
		return
	}
	var req models.MoveAssetRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, ErrorResponse{Error: "Invalid request payload", Details: err.Error()})
		return
	}
	writeResult(c, h.manager.MoveAsset(c.Request.Context(), userID, c.Param("assetId"), req.TargetVaultID, req.TargetCollectionID), http.StatusOK)
}

// CloneAsset handles POST /assets/:assetId/clone.
func (h *AssetHandler) CloneAsset(c *gin.Context) {
	userID, ok := actingUserID(c)
	if !ok {
		return
	}
	writeResult(c, h.manager.CloneAsset(c.Request.Context(), userID, c.Param("assetId")), http.StatusCreated)
}

// GetAssetCapabilities handles GET /assets/:assetId/capabilities.
func (h *AssetHandler) GetAssetCapabilities(c *gin.Context) {
	userID, ok := actingUserID(c)
	if !ok {
		return
	}
	c.JSON(http.StatusOK, h.manager.AssetCapabilitiesFor(c.Param("assetId"), userID))
}

// Subscribe handles POST /vaults/:vaultId/assets/subscribe.
func (h *AssetHandler) Subscribe(c *gin.Context) {
	if _, ok := actingUserID(c); !ok {
		return
	}
	vaultID := c.Param("vaultId")
	if err := h.mirror.RetainAssets(vaultID); err != nil {
		c.JSON(http.StatusBadGateway, ErrorResponse{Error: "Failed to open asset subscription", Details: err.Error()})
		return
	}
	c.JSON(http.StatusOK, SuccessResponse{Message: "subscribed", Data: h.manager.AssetsForVault(vaultID)})
}

// Unsubscribe handles POST /vaults/:vaultId/assets/unsubscribe.
func (h *AssetHandler) Unsubscribe(c *gin.Context) {
	if _, ok := actingUserID(c); !ok {
		return
	}
	h.mirror.ReleaseAssets(c.Param("vaultId"))
	c.JSON(http.StatusOK, SuccessResponse{Message: "unsubscribed"})
}
