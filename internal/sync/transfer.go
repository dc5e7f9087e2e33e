package sync

import (
	"context"
	"fmt"

	"trove-sync-go/internal/models"
)

// Moves are confined to a single owner's hierarchy: a delegate of a shared
// vault cannot move content into a vault they do not own. Destination
// ownership is validated locally before any remote call.
//
// Unlike creates, moves are not applied optimistically: a cross-container
// move changes two foreign keys atomically, which is riskier to roll back
// than an insert, so the UI keeps its state until the remote call succeeds.

// MoveCollection moves a collection into another vault owned by the same
// owner.
func (m *Manager) MoveCollection(ctx context.Context, userID, collectionID, targetVaultID string) Result {
	if !m.isOnline() {
		return offlineResult()
	}

	id := m.resolveID(collectionID)
	collection, ok := m.mirror.Collection(id)
	if !ok {
		if opt, optimistic := m.optimisticCollection(id); optimistic {
			if opt.ID.IsProvisional() {
				return failResult(msgNotConfirmed)
			}
			collection = opt
		} else {
			return failResult("collection not found")
		}
	}

	caps := m.CollectionCapabilitiesFor(id, userID)
	if !caps.CanMove {
		return deniedResult()
	}

	targetVault, err := m.mirror.LoadVault(ctx, targetVaultID)
	if err != nil {
		return failResult(err.Error())
	}
	if targetVault.OwnerID != collection.OwnerID {
		return failResult(fmt.Sprintf("destination vault '%s' is not owned by the collection's owner", targetVaultID))
	}

	if err := m.remote.MoveCollection(ctx, id, targetVaultID); err != nil {
		return failResult(err.Error())
	}
	// Selection follows the moved entity: the id is unchanged, only its
	// parentage moved, so returning it lets the UI re-select in place.
	return okResult(id)
}

// MoveAsset moves an asset into another collection, possibly across vaults,
// within the same owner's hierarchy.
func (m *Manager) MoveAsset(ctx context.Context, userID, assetID, targetVaultID, targetCollectionID string) Result {
	if !m.isOnline() {
		return offlineResult()
	}

	id := m.resolveID(assetID)
	asset, ok := m.mirror.Asset(id)
	if !ok {
		if opt, optimistic := m.optimisticAsset(id); optimistic {
			if opt.ID.IsProvisional() {
				return failResult(msgNotConfirmed)
			}
			asset = opt
		} else {
			return failResult("asset not found")
		}
	}

	caps := m.AssetCapabilitiesFor(id, userID)
	if !caps.CanMove {
		return deniedResult()
	}

	targetVault, err := m.mirror.LoadVault(ctx, targetVaultID)
	if err != nil {
		return failResult(err.Error())
	}
	if targetVault.OwnerID != asset.OwnerID {
		return failResult(fmt.Sprintf("destination vault '%s' is not owned by the asset's owner", targetVaultID))
	}
	resolvedTarget := m.resolveID(targetCollectionID)
	if targetCollection, ok := m.mirror.Collection(resolvedTarget); ok {
		if targetCollection.VaultID.String() != targetVaultID {
			return failResult(fmt.Sprintf("collection '%s' does not belong to vault '%s'", targetCollectionID, targetVaultID))
		}
	}

	if err := m.remote.MoveAsset(ctx, id, targetVaultID, resolvedTarget); err != nil {
		return failResult(err.Error())
	}
	return okResult(id)
}

// CloneCollection duplicates a collection's content fields under
// "<name> (Copy)" within the same owner's scope. Clones ride the optimistic
// create path, so unlike moves they show up instantly.
func (m *Manager) CloneCollection(ctx context.Context, userID, collectionID string) Result {
	if !m.isOnline() {
		return offlineResult()
	}

	id := m.resolveID(collectionID)
	collection, ok := m.mirror.Collection(id)
	if !ok {
		return failResult("collection not found")
	}
	caps := m.CollectionCapabilitiesFor(id, userID)
	if !caps.CanClone {
		return deniedResult()
	}

	vault, err := m.mirror.LoadVault(ctx, collection.VaultID.String())
	if err != nil {
		return failResult(err.Error())
	}
	return m.createCollection(ctx, vault, copyName(collection.Name))
}

// CloneAsset duplicates an asset's content fields under "<title> (Copy)"
// into its own collection.
func (m *Manager) CloneAsset(ctx context.Context, userID, assetID string) Result {
	if !m.isOnline() {
		return offlineResult()
	}

	id := m.resolveID(assetID)
	asset, ok := m.mirror.Asset(id)
	if !ok {
		return failResult("asset not found")
	}
	caps := m.AssetCapabilitiesFor(id, userID)
	if !caps.CanClone {
		return deniedResult()
	}

	vault, err := m.mirror.LoadVault(ctx, asset.VaultID.String())
	if err != nil {
		return failResult(err.Error())
	}
	return m.createAsset(ctx, vault, asset.CollectionID.String(), models.CreateAssetRequest{
		Title:          copyName(asset.Title),
		Category:       asset.Category,
		Quantity:       asset.Quantity,
		EstimatedValue: asset.EstimatedValue,
	})
}
