// Package api exposes the synchronization core over HTTP.
package api

import (
	"net/http"

	"firebase.google.com/go/v4/auth"
	"github.com/gin-gonic/gin"
	"go.uber.org/zap"

	"trove-sync-go/internal/hierarchy"
	"trove-sync-go/internal/middleware"
	"trove-sync-go/internal/sync"
)

// SetupRoutes wires all handlers under /api/v1. Global middleware (logging,
// recovery, CORS) is applied to the router before this is called.
func SetupRoutes(
	router *gin.Engine,
	logger *zap.Logger,
	authClient *auth.Client,
	manager *sync.Manager,
	mirror *hierarchy.Store,
) {
	authMW := middleware.NewAuthMiddleware(authClient, mirror, logger)

	vaultHandler := NewVaultHandler(manager, mirror)
	collectionHandler := NewCollectionHandler(manager, mirror)
	assetHandler := NewAssetHandler(manager, mirror)
	invitationHandler := NewInvitationHandler(manager)

	apiV1 := router.Group("/api/v1", authMW.VerifyToken())
	{
		vaults := apiV1.Group("/vaults")
		{
			vaults.POST("", vaultHandler.CreateVault)
			vaults.GET("/:vaultId", vaultHandler.GetVault)
			vaults.PUT("/:vaultId", vaultHandler.UpdateVault)
			vaults.GET("/:vaultId/capabilities", vaultHandler.GetVaultCapabilities)

			collections := vaults.Group("/:vaultId/collections")
			{
				collections.GET("", collectionHandler.ListCollections)
				collections.POST("", collectionHandler.CreateCollection)
				collections.POST("/subscribe", collectionHandler.Subscribe)
				collections.POST("/unsubscribe", collectionHandler.Unsubscribe)
				collections.GET("/:collectionId/assets", assetHandler.ListCollectionAssets)
				collections.POST("/:collectionId/assets", assetHandler.CreateAsset)
			}

			assets := vaults.Group("/:vaultId/assets")
			{
				assets.GET("", assetHandler.ListVaultAssets)
				assets.POST("/subscribe", assetHandler.Subscribe)
				assets.POST("/unsubscribe", assetHandler.Unsubscribe)
			}
		}

		collections := apiV1.Group("/collections")
		{
			collections.PUT("/:collectionId", collectionHandler.UpdateCollection)
			collections.POST("/:collectionId/move", collectionHandler.MoveCollection)
			collections.POST("/:collectionId/clone", collectionHandler.CloneCollection)
			collections.GET("/:collectionId/capabilities", collectionHandler.GetCollectionCapabilities)
		}

		assets := apiV1.Group("/assets")
		{
			assets.PUT("/:assetId", assetHandler.UpdateAsset)
			assets.DELETE("/:assetId", assetHandler.DeleteAsset)
			assets.POST("/:assetId/move", assetHandler.MoveAsset)
			assets.POST("/:assetId/clone", assetHandler.CloneAsset)
			assets.GET("/:assetId/capabilities", assetHandler.GetAssetCapabilities)
		}

		invitations := apiV1.Group("/invitations")
		{
			invitations.GET("", invitationHandler.ListInvitations)
			invitations.POST("/:code/accept", invitationHandler.AcceptInvitation)
			invitations.POST("/:code/deny", invitationHandler.DenyInvitation)
		}
	}

	router.GET("/health", func(c *gin.Context) {
		c.JSON(http.StatusOK, gin.H{"status": "UP"})
	})

	logger.Info("API routes configured under /api/v1 and /health")
}
