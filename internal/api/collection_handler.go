package api

import (
	"net/http"

	"github.com/gin-gonic/gin"

	"trove-sync-go/internal/hierarchy"
	"trove-sync-go/internal/models"
	"trove-sync-go/internal/sync"
)

// CollectionHandler handles collection endpoints. List responses are merged
// views: authoritative snapshot entries plus still-unconfirmed optimistic
// ones.
type CollectionHandler struct {
	manager *sync.Manager
	mirror  *hierarchy.Store
}

// NewCollectionHandler creates a new CollectionHandler.
func NewCollectionHandler(manager *sync.Manager, mirror *hierarchy.Store) *CollectionHandler {
	return &CollectionHandler{manager: manager, mirror: mirror}
}

// ListCollections handles GET /vaults/:vaultId/collections.
func (h *CollectionHandler) ListCollections(c *gin.Context) {
	if _, ok := actingUserID(c); !ok {
		return
	}
	c.JSON(http.StatusOK, h.manager.CollectionsForVault(c.Param("vaultId")))
}

// CreateCollection handles POST /vaults/:vaultId/collections.
func (h *CollectionHandler) CreateCollection(c *gin.Context) {
	userID, ok := actingUserID(c)
	if !ok {
		return
	}
	var req models.CreateCollectionRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, ErrorResponse{Error: "Invalid request payload", Details: err.Error()})
		return
	}
	writeResult(c, h.manager.CreateCollection(c.Request.Context(), userID, c.Param("vaultId"), req.Name), http.StatusCreated)
}

// UpdateCollection handles PUT /collections/:collectionId.
func (h *CollectionHandler) UpdateCollection(c *gin.Context) {
	userID, ok := actingUserID(c)
	if !ok {
		return
	}
	var req models.UpdateCollectionRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, ErrorResponse{Error: "Invalid request payload", Details: err.Error()})
		return
	}
	writeResult(c, h.manager.UpdateCollection(c.Request.Context(), userID, c.Param("collectionId"), req), http.StatusOK)
}

// MoveCollection handles POST /collections/:collectionId/move.
func (h *CollectionHandler) MoveCollection(c *gin.Context) {
	userID, ok := actingUserID(c)
	if !ok {
		return
	}
	var req models.MoveCollectionRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, ErrorResponse{Error: "Invalid request payload", Details: err.Error()})
		return
	}
	writeResult(c, h.manager.MoveCollection(c.Request.Context(), userID, c.Param("collectionId"), req.TargetVaultID), http.StatusOK)
}

// CloneCollection handles POST /collections/:collectionId/clone.
func (h *CollectionHandler) CloneCollection(c *gin.Context) {
	userID, ok := actingUserID(c)
	if !ok {
		return
	}
	writeResult(c, h.manager.CloneCollection(c.Request.Context(), userID, c.Param("collectionId")), http.StatusCreated)
}

// GetCollectionCapabilities handles GET /collections/:collectionId/capabilities.
func (h *CollectionHandler) GetCollectionCapabilities(c *gin.Context) {
	userID, ok := actingUserID(c)
	if !ok {
		return
	}
	c.JSON(http.StatusOK, h.manager.CollectionCapabilitiesFor(c.Param("collectionId"), userID))
}

// Subscribe handles POST /vaults/:vaultId/collections/subscribe. Each call
// takes one reference on the vault's collection subscription; the client must
// pair it with exactly one unsubscribe.
func (h *CollectionHandler) Subscribe(c *gin.Context) {
	if _, ok := actingUserID(c); !ok {
		return
	}
	vaultID := c.Param("vaultId")
	// The subscription is shared and outlives this request; the mirror opens
	// it on its own lifetime context.
	if err := h.mirror.RetainCollections(vaultID); err != nil {
		c.JSON(http.StatusBadGateway, ErrorResponse{Error: "Failed to open collection subscription", Details: err.Error()})
		return
	}
	c.JSON(http.StatusOK, SuccessResponse{Message: "subscribed", Data: h.manager.CollectionsForVault(vaultID)})
}

// Unsubscribe handles POST /vaults/:vaultId/collections/unsubscribe.
func (h *CollectionHandler) Unsubscribe(c *gin.Context) {
	if _, ok := actingUserID(c); !ok {
		return
	}
	h.mirror.ReleaseCollections(c.Param("vaultId"))
	c.JSON(http.StatusOK, SuccessResponse{Message: "unsubscribed"})
}
