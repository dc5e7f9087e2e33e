package db

import (
	"context"
	"errors"
	"time"

	"trove-sync-go/internal/models"
)

// Sentinel errors surfaced by RemoteStore implementations.
var (
	// ErrNotFound means the referenced document does not exist.
	ErrNotFound = errors.New("document not found")
	// ErrStaleWrite means an edit's expected editedAt watermark no longer
	// matches the server's; the caller should reload rather than retry.
	ErrStaleWrite = errors.New("stale write: editedAt watermark mismatch")
)

// Unsubscribe tears down a change subscription. Safe to call once.
type Unsubscribe func()

// CollectionsHandler receives the full authoritative collection set of a
// vault each time it changes.
type CollectionsHandler func(vaultID string, collections []models.Collection)

// AssetsHandler receives the full authoritative asset set of a vault each
// time it changes.
type AssetsHandler func(vaultID string, assets []models.Asset)

// RemoteStore is the authoritative document store the sync core runs
// against. Implementations assign ids on create, reject stale edits by
// watermark, and deliver change streams per vault.
type RemoteStore interface {
	CreateVault(ctx context.Context, vault *models.Vault) (string, error)
	CreateCollection(ctx context.Context, collection *models.Collection) (string, error)
	CreateAsset(ctx context.Context, asset *models.Asset) (string, error)

	// Updates carry the client's last-known editedAt watermark; the store
	// rejects the write with ErrStaleWrite when the server-side watermark
	// differs.
	UpdateVault(ctx context.Context, vaultID string, patch models.UpdateVaultRequest, expectedEditedAt time.Time) error
	UpdateCollection(ctx context.Context, collectionID string, patch models.UpdateCollectionRequest, expectedEditedAt time.Time) error
	UpdateAsset(ctx context.Context, assetID string, patch models.UpdateAssetRequest, expectedEditedAt time.Time) error

	// MoveCollection re-homes a collection and the denormalized vaultId of
	// every asset it contains atomically.
	MoveCollection(ctx context.Context, collectionID, targetVaultID string) error
	MoveAsset(ctx context.Context, assetID, targetVaultID, targetCollectionID string) error

	DeleteAsset(ctx context.Context, assetID string) error

	SubscribeVaultCollections(ctx context.Context, vaultID string, onChange CollectionsHandler) (Unsubscribe, error)
	SubscribeVaultAssets(ctx context.Context, vaultID string, onChange AssetsHandler) (Unsubscribe, error)

	GetVault(ctx context.Context, vaultID string) (*models.Vault, error)
	GetRoleForVault(ctx context.Context, vaultID, userID string) (string, error)
	CanCreateCollectionsInVault(ctx context.Context, vaultID, userID string) (bool, error)
	CanCreateAssetsInCollection(ctx context.Context, collectionID, userID string) (bool, error)
	ListMemberships(ctx context.Context, userID string) ([]models.Membership, error)

	ListMyInvitations(ctx context.Context, userID string) ([]models.Invitation, error)
	AcceptInvitationCode(ctx context.Context, userID, code string) error
	DenyInvitationCode(ctx context.Context, userID, code string) error
}
