// Package hierarchy mirrors the authoritative entity tree (vaults,
// collections, assets, memberships) as the remote store delivers it, and
// manages the lifecycle of the underlying change subscriptions with exact
// reference counting.
package hierarchy

import (
	"context"
	"fmt"
	"sync"

	"go.uber.org/zap"

	"trove-sync-go/internal/access"
	"trove-sync-go/internal/db"
	"trove-sync-go/internal/models"
)

// Observer is notified after an authoritative snapshot has been applied to
// the mirror. The sync manager registers one to reconcile its optimistic
// entries.
type Observer interface {
	CollectionsChanged(vaultID string, collections []models.Collection)
	AssetsChanged(vaultID string, assets []models.Asset)
}

// Store is the in-memory mirror of the remote hierarchy. All lookups are
// local; the network is only touched when a subscription opens.
type Store struct {
	// ctx bounds the lifetime of every subscription the store opens. A
	// subscription is shared and refcounted, so it must not inherit the
	// context of whichever request happened to open it.
	ctx    context.Context
	remote db.RemoteStore
	logger *zap.Logger

	mu          sync.RWMutex
	vaults      map[string]models.Vault
	collections map[string][]models.Collection // keyed by vaultID
	assets      map[string][]models.Asset      // keyed by vaultID
	memberships map[string][]models.Membership // keyed by userID

	collectionSubs *arena
	assetSubs      *arena

	observers []Observer
}

// NewStore creates an empty mirror over the given remote store. ctx must
// outlive the last consumer; main passes the process lifetime context.
func NewStore(ctx context.Context, remote db.RemoteStore, logger *zap.Logger) *Store {
	return &Store{
		ctx:            ctx,
		remote:         remote,
		logger:         logger,
		vaults:         make(map[string]models.Vault),
		collections:    make(map[string][]models.Collection),
		assets:         make(map[string][]models.Asset),
		memberships:    make(map[string][]models.Membership),
		collectionSubs: newArena(),
		assetSubs:      newArena(),
	}
}

// AddObserver registers an observer for authoritative changes.
func (s *Store) AddObserver(o Observer) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.observers = append(s.observers, o)
}

// --- Subscription lifecycle ---

// RetainCollections increments the collection-subscription refcount for the
// vault and opens the remote subscription on the 0 -> 1 transition. Multiple
// consumers of the same vault share one subscription, so it opens on the
// store's lifetime context rather than any caller's.
func (s *Store) RetainCollections(vaultID string) error {
	return s.collectionSubs.retain(vaultID, func() (db.Unsubscribe, error) {
		return s.remote.SubscribeVaultCollections(s.ctx, vaultID, s.applyCollections)
	})
}

// ReleaseCollections decrements the refcount and tears the subscription down
// on the 1 -> 0 transition. Releasing an unretained vault is a logged no-op;
// the count must stay exact, never negative.
func (s *Store) ReleaseCollections(vaultID string) {
	if !s.collectionSubs.release(vaultID) {
		s.logger.Warn("release of unretained collection subscription", zap.String("vaultId", vaultID))
	}
}

// RetainAssets is the asset-side counterpart of RetainCollections; the two
// arenas are independent.
func (s *Store) RetainAssets(vaultID string) error {
	return s.assetSubs.retain(vaultID, func() (db.Unsubscribe, error) {
		return s.remote.SubscribeVaultAssets(s.ctx, vaultID, s.applyAssets)
	})
}

// ReleaseAssets decrements the asset-subscription refcount for the vault.
func (s *Store) ReleaseAssets(vaultID string) {
	if !s.assetSubs.release(vaultID) {
		s.logger.Warn("release of unretained asset subscription", zap.String("vaultId", vaultID))
	}
}

// --- Snapshot application ---

func (s *Store) applyCollections(vaultID string, collections []models.Collection) {
	s.mu.Lock()
	s.collections[vaultID] = collections
	observers := append([]Observer(nil), s.observers...)
	s.mu.Unlock()

	for _, o := range observers {
		o.CollectionsChanged(vaultID, collections)
	}
}

func (s *Store) applyAssets(vaultID string, assets []models.Asset) {
	s.mu.Lock()
	s.assets[vaultID] = assets
	observers := append([]Observer(nil), s.observers...)
	s.mu.Unlock()

	for _, o := range observers {
		o.AssetsChanged(vaultID, assets)
	}
}

// SetVault stores a vault in the mirror.
func (s *Store) SetVault(vault models.Vault) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.vaults[vault.ID.String()] = vault
}

// SetUserMemberships replaces one user's membership set. Other users' cached
// memberships are untouched.
func (s *Store) SetUserMemberships(userID string, memberships []models.Membership) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.memberships[userID] = append([]models.Membership(nil), memberships...)
}

// LoadVault fetches a vault from the remote store into the mirror if it is
// not already present.
func (s *Store) LoadVault(ctx context.Context, vaultID string) (models.Vault, error) {
	s.mu.RLock()
	vault, ok := s.vaults[vaultID]
	s.mu.RUnlock()
	if ok {
		return vault, nil
	}
	remoteVault, err := s.remote.GetVault(ctx, vaultID)
	if err != nil {
		return models.Vault{}, fmt.Errorf("failed to load vault '%s': %w", vaultID, err)
	}
	s.SetVault(*remoteVault)
	return *remoteVault, nil
}

// RefreshMemberships reloads one user's memberships from the remote store.
func (s *Store) RefreshMemberships(ctx context.Context, userID string) error {
	memberships, err := s.remote.ListMemberships(ctx, userID)
	if err != nil {
		return fmt.Errorf("failed to refresh memberships for user '%s': %w", userID, err)
	}
	s.SetUserMemberships(userID, memberships)
	return nil
}

// EnsureMemberships loads a user's memberships on first sight; once a set is
// cached (even an empty one) later calls are local no-ops. The auth
// middleware calls this per request so role resolution sees pre-existing
// delegations, not just ones granted while this process was running.
func (s *Store) EnsureMemberships(ctx context.Context, userID string) error {
	s.mu.RLock()
	_, loaded := s.memberships[userID]
	s.mu.RUnlock()
	if loaded {
		return nil
	}
	return s.RefreshMemberships(ctx, userID)
}

// --- Lookups (local, no network) ---

// Vault returns the mirrored vault, if present.
func (s *Store) Vault(vaultID string) (models.Vault, bool) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	vault, ok := s.vaults[vaultID]
	return vault, ok
}

// CollectionsForVault returns the authoritative collections of a vault.
func (s *Store) CollectionsForVault(vaultID string) []models.Collection {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return append([]models.Collection(nil), s.collections[vaultID]...)
}

// AssetsForVault returns the authoritative assets of a vault.
func (s *Store) AssetsForVault(vaultID string) []models.Asset {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return append([]models.Asset(nil), s.assets[vaultID]...)
}

// Collection looks up a mirrored collection by id across all vaults.
func (s *Store) Collection(collectionID string) (models.Collection, bool) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	for _, collections := range s.collections {
		for _, c := range collections {
			if c.ID.String() == collectionID {
				return c, true
			}
		}
	}
	return models.Collection{}, false
}

// Asset looks up a mirrored asset by id across all vaults.
func (s *Store) Asset(assetID string) (models.Asset, bool) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	for _, assets := range s.assets {
		for _, a := range assets {
			if a.ID.String() == assetID {
				return a, true
			}
		}
	}
	return models.Asset{}, false
}

// activeMembership returns the user's ACTIVE membership for the vault, if any.
// Callers hold at least the read lock.
func (s *Store) activeMembership(vaultID, userID string) (models.Membership, bool) {
	for _, m := range s.memberships[userID] {
		if m.VaultID.String() == vaultID && m.UserID == userID && m.Status == models.MembershipActive {
			return m, true
		}
	}
	return models.Membership{}, false
}

// RoleForVault resolves the user's effective role on a vault: owner if the
// user owns it, else the ACTIVE membership role, else none. Ownership always
// outranks membership.
func (s *Store) RoleForVault(vaultID, userID string) access.Role {
	s.mu.RLock()
	defer s.mu.RUnlock()
	if vault, ok := s.vaults[vaultID]; ok && vault.OwnerID == userID {
		return access.RoleOwner
	}
	if m, ok := s.activeMembership(vaultID, userID); ok {
		return access.Normalize(m.Role)
	}
	return access.RoleNone
}

// CanCreateCollections reports the server-side delegation flag for creating
// collections in a vault. Owners always can.
func (s *Store) CanCreateCollections(vaultID, userID string) bool {
	s.mu.RLock()
	defer s.mu.RUnlock()
	if vault, ok := s.vaults[vaultID]; ok && vault.OwnerID == userID {
		return true
	}
	m, ok := s.activeMembership(vaultID, userID)
	return ok && m.CanCreateCollections
}

// CanCreateAssets reports the server-side delegation flag for creating
// assets in a vault's collections. Owners always can.
func (s *Store) CanCreateAssets(vaultID, userID string) bool {
	s.mu.RLock()
	defer s.mu.RUnlock()
	if vault, ok := s.vaults[vaultID]; ok && vault.OwnerID == userID {
		return true
	}
	m, ok := s.activeMembership(vaultID, userID)
	return ok && m.CanCreateAssets
}
