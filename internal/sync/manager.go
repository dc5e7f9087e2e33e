package sync

import (
	"context"
	"errors"
	"strings"
	stdsync "sync"
	"time"

	"go.uber.org/zap"

	"trove-sync-go/internal/access"
	"trove-sync-go/internal/db"
	"trove-sync-go/internal/hierarchy"
	"trove-sync-go/internal/models"
)

// dedupWindow is the creation-timestamp tolerance of the near-duplicate
// heuristic: an optimistic entry and an authoritative entry with the same
// parent and case-insensitively equal title collapse when their creation
// times are within this window. Best-effort only — two legitimately distinct
// same-titled creations inside the window would also collapse.
const dedupWindow = 15 * time.Second

// Manager applies mutations optimistically: provisional entities appear in
// the merged views immediately, the remote call follows, and the provisional
// id is promoted in place once the store confirms. All local state changes
// happen under one mutex; remote calls run outside it.
type Manager struct {
	remote db.RemoteStore
	mirror *hierarchy.Store
	logger *zap.Logger
	online ConnectivityFunc
	now    func() time.Time

	mu          stdsync.Mutex
	collections []models.Collection // optimistic, unconfirmed
	assets      []models.Asset      // optimistic, unconfirmed
	// pendingAssets queues asset creates whose parent collection is itself
	// still provisional, in submission order per parent temp id.
	pendingAssets map[string][]string // parent temp id -> asset temp ids
	tombstones    map[string]struct{}
	promotions    map[string]string // temp id -> confirmed id
	// discarded marks provisional assets deleted while their create call was
	// in flight; the remote delete fires once the create confirms.
	discarded map[string]struct{}
}

var _ hierarchy.Observer = (*Manager)(nil)

// NewManager wires the optimistic core over a remote store and the
// authoritative mirror. It registers itself as a mirror observer so
// authoritative snapshots reconcile the optimistic lists.
func NewManager(remote db.RemoteStore, mirror *hierarchy.Store, online ConnectivityFunc, logger *zap.Logger) *Manager {
	m := &Manager{
		remote:        remote,
		mirror:        mirror,
		logger:        logger,
		online:        online,
		now:           time.Now,
		pendingAssets: make(map[string][]string),
		tombstones:    make(map[string]struct{}),
		promotions:    make(map[string]string),
		discarded:     make(map[string]struct{}),
	}
	mirror.AddObserver(m)
	return m
}

func (m *Manager) isOnline() bool {
	return m.online == nil || m.online()
}

// resolveID follows a promotion, so a caller still holding a pre-promotion
// provisional id addresses the confirmed entity.
func (m *Manager) resolveID(raw string) string {
	m.mu.Lock()
	defer m.mu.Unlock()
	return m.resolveIDLocked(raw)
}

func (m *Manager) resolveIDLocked(raw string) string {
	if confirmed, ok := m.promotions[raw]; ok {
		return confirmed
	}
	return raw
}

// --- Vault mutations ---

// CreateVault creates a vault owned by the acting user. Vault creation is
// not optimistic: there is no parent whose view needs an instant row, and
// the caller navigates into the vault only once it exists.
func (m *Manager) CreateVault(ctx context.Context, userID, name string) Result {
	if err := validateName(name); err != nil {
		return failResult(err.Error())
	}
	if !m.isOnline() {
		return offlineResult()
	}

	now := m.now().UTC()
	vault := models.Vault{
		OwnerID:   userID,
		Name:      name,
		CreatedAt: now,
		EditedAt:  now,
	}
	id, err := m.remote.CreateVault(ctx, &vault)
	if err != nil {
		return Result{Message: err.Error(), Draft: &Draft{Name: name}}
	}
	vault.ID = models.ConfirmedID(id)
	m.mirror.SetVault(vault)
	return okResult(id)
}

// UpdateVault edits a vault under the conflict guard.
func (m *Manager) UpdateVault(ctx context.Context, userID, vaultID string, patch models.UpdateVaultRequest) Result {
	if patch.Name != nil {
		if err := validateName(*patch.Name); err != nil {
			return failResult(err.Error())
		}
	}
	if !m.isOnline() {
		return offlineResult()
	}

	vault, err := m.mirror.LoadVault(ctx, vaultID)
	if err != nil {
		return failResult(err.Error())
	}
	caps := m.VaultCapabilitiesFor(vaultID, userID)
	if !caps.CanEdit {
		return deniedResult()
	}

	if err := m.remote.UpdateVault(ctx, vaultID, patch, vault.EditedAt); err != nil {
		if errors.Is(err, db.ErrStaleWrite) {
			return conflictResult()
		}
		return failResult(err.Error())
	}
	m.refreshVault(ctx, vaultID)
	return okResult(vaultID)
}

// refreshVault re-reads a vault after a successful edit so the mirrored
// watermark matches the server again.
func (m *Manager) refreshVault(ctx context.Context, vaultID string) {
	vault, err := m.remote.GetVault(ctx, vaultID)
	if err != nil {
		m.logger.Warn("failed to refresh vault after update",
			zap.String("vaultId", vaultID), zap.Error(err))
		return
	}
	m.mirror.SetVault(*vault)
}

// --- Collection mutations ---

// CreateCollection creates a collection in a vault: provisional entity
// first, remote create after, promotion or rollback when it resolves.
func (m *Manager) CreateCollection(ctx context.Context, userID, vaultID, name string) Result {
	if err := validateName(name); err != nil {
		return failResult(err.Error())
	}
	if !m.isOnline() {
		return offlineResult()
	}
	vault, err := m.mirror.LoadVault(ctx, vaultID)
	if err != nil {
		return failResult(err.Error())
	}
	if !m.mirror.CanCreateCollections(vaultID, userID) {
		return deniedResult()
	}
	return m.createCollection(ctx, vault, name)
}

// createCollection is the shared optimistic create path; the caller has
// already checked permissions.
func (m *Manager) createCollection(ctx context.Context, vault models.Vault, name string) Result {
	now := m.now().UTC()
	collection := models.Collection{
		ID:        models.NewProvisionalID(),
		VaultID:   vault.ID,
		OwnerID:   vault.OwnerID,
		Name:      name,
		CreatedAt: now,
		EditedAt:  now,
	}

	m.mu.Lock()
	m.collections = append(m.collections, collection)
	m.mu.Unlock()

	tempID := collection.ID.String()
	realID, err := m.remote.CreateCollection(ctx, &collection)
	if err != nil {
		orphans := m.rollbackCollection(tempID)
		m.logger.Info("collection create rolled back",
			zap.String("tempId", tempID), zap.Int("orphanedChildren", orphans), zap.Error(err))
		return Result{Message: err.Error(), Draft: &Draft{Name: name}}
	}

	m.promoteCollection(tempID, realID)
	m.flushPendingAssets(ctx, tempID, realID)
	return okResult(realID)
}

// rollbackCollection removes a failed provisional collection together with
// every asset queued on it; a child must not be left pointing at a temp id
// that will never confirm. Returns the number of discarded children.
func (m *Manager) rollbackCollection(tempID string) int {
	m.mu.Lock()
	defer m.mu.Unlock()

	m.collections = removeCollection(m.collections, tempID)
	orphanIDs := m.pendingAssets[tempID]
	delete(m.pendingAssets, tempID)
	for _, assetID := range orphanIDs {
		m.assets = removeAsset(m.assets, assetID)
	}
	return len(orphanIDs)
}

// promoteCollection swaps a provisional collection id for its confirmed id
// in place, so a consumer referencing the temp id keeps addressing the same
// entity. Idempotent: a duplicate confirmation is a no-op.
func (m *Manager) promoteCollection(tempID, realID string) {
	m.mu.Lock()
	defer m.mu.Unlock()

	if _, done := m.promotions[tempID]; done {
		return
	}
	m.promotions[tempID] = realID
	for i := range m.collections {
		if m.collections[i].ID.String() == tempID {
			m.collections[i].ID = models.ConfirmedID(realID)
			break
		}
	}
	// Queued children keep their provisional parent reference until flush;
	// only their visible parent linkage is rewritten here.
	for i := range m.assets {
		if m.assets[i].CollectionID.String() == tempID {
			m.assets[i].CollectionID = models.ConfirmedID(realID)
		}
	}
}

// UpdateCollection edits a collection under the conflict guard. Provisional
// collections cannot be edited until their create confirms.
func (m *Manager) UpdateCollection(ctx context.Context, userID, collectionID string, patch models.UpdateCollectionRequest) Result {
	if patch.Name != nil {
		if err := validateName(*patch.Name); err != nil {
			return failResult(err.Error())
		}
	}
	if !m.isOnline() {
		return offlineResult()
	}

	id := m.resolveID(collectionID)
	collection, ok := m.mirror.Collection(id)
	if !ok {
		// The authoritative snapshot may lag a just-confirmed create; its
		// optimistic copy carries the right watermark. A still-provisional
		// entry has no server document to edit yet.
		opt, optimistic := m.optimisticCollection(id)
		if !optimistic {
			return failResult("collection not found")
		}
		if opt.ID.IsProvisional() {
			return failResult(msgNotConfirmed)
		}
		collection = opt
	}
	caps := m.CollectionCapabilitiesFor(id, userID)
	if !caps.CanEdit {
		return deniedResult()
	}

	if err := m.remote.UpdateCollection(ctx, id, patch, collection.EditedAt); err != nil {
		if errors.Is(err, db.ErrStaleWrite) {
			return conflictResult()
		}
		return failResult(err.Error())
	}
	return okResult(id)
}

// --- Asset mutations ---

// CreateAsset creates an asset in a collection. If the collection is itself
// still provisional the asset is queued locally and its remote create fires
// only once the parent confirms.
func (m *Manager) CreateAsset(ctx context.Context, userID, vaultID, collectionID string, req models.CreateAssetRequest) Result {
	if err := validateName(req.Title); err != nil {
		return failResult(err.Error())
	}
	if !m.isOnline() {
		return offlineResult()
	}
	vault, err := m.mirror.LoadVault(ctx, vaultID)
	if err != nil {
		return failResult(err.Error())
	}
	if !m.mirror.CanCreateAssets(vaultID, userID) {
		return deniedResult()
	}
	return m.createAsset(ctx, vault, collectionID, req)
}

// createAsset is the shared optimistic create path for assets; permissions
// are the caller's responsibility.
func (m *Manager) createAsset(ctx context.Context, vault models.Vault, collectionID string, req models.CreateAssetRequest) Result {
	now := m.now().UTC()
	asset := models.Asset{
		ID:             models.NewProvisionalID(),
		VaultID:        vault.ID,
		OwnerID:        vault.OwnerID,
		Title:          req.Title,
		Category:       req.Category,
		Quantity:       req.Quantity,
		EstimatedValue: req.EstimatedValue,
		CreatedAt:      now,
		EditedAt:       now,
	}

	m.mu.Lock()
	resolvedParent := m.resolveIDLocked(collectionID)
	parent, inOptimistic := m.optimisticCollectionLocked(resolvedParent)
	if inOptimistic && parent.ID.IsProvisional() {
		// Parent has no confirmed id yet: tag the child with the parent's
		// provisional id and hold the remote create.
		asset.CollectionID = parent.ID
		m.assets = append(m.assets, asset)
		m.pendingAssets[parent.ID.String()] = append(m.pendingAssets[parent.ID.String()], asset.ID.String())
		m.mu.Unlock()
		return okResult(asset.ID.String())
	}
	asset.CollectionID = models.ConfirmedID(resolvedParent)
	m.assets = append(m.assets, asset)
	m.mu.Unlock()

	return m.sendAssetCreate(ctx, asset)
}

// sendAssetCreate issues the remote create for an already-inserted
// optimistic asset and promotes or rolls it back.
func (m *Manager) sendAssetCreate(ctx context.Context, asset models.Asset) Result {
	tempID := asset.ID.String()
	realID, err := m.remote.CreateAsset(ctx, &asset)
	if err != nil {
		m.mu.Lock()
		m.assets = removeAsset(m.assets, tempID)
		delete(m.discarded, tempID)
		m.mu.Unlock()
		m.logger.Info("asset create rolled back", zap.String("tempId", tempID), zap.Error(err))
		return Result{Message: err.Error(), Draft: &Draft{
			Name:           asset.Title,
			Category:       asset.Category,
			Quantity:       asset.Quantity,
			EstimatedValue: asset.EstimatedValue,
		}}
	}
	m.promoteAsset(tempID, realID)
	if m.takeDiscarded(tempID) {
		m.completeDiscardedDelete(ctx, realID)
	}
	return okResult(realID)
}

func (m *Manager) takeDiscarded(tempID string) bool {
	m.mu.Lock()
	defer m.mu.Unlock()
	if _, ok := m.discarded[tempID]; !ok {
		return false
	}
	delete(m.discarded, tempID)
	return true
}

// completeDiscardedDelete finishes a delete that was requested while the
// asset's create was still in flight: the confirmed id is tombstoned and the
// remote delete issued. On failure the tombstone is lifted, so the asset
// resurfaces rather than diverging silently from the server.
func (m *Manager) completeDiscardedDelete(ctx context.Context, id string) {
	m.mu.Lock()
	m.tombstones[id] = struct{}{}
	m.mu.Unlock()

	err := m.remote.DeleteAsset(ctx, id)

	m.mu.Lock()
	delete(m.tombstones, id)
	m.mu.Unlock()
	if err != nil {
		m.logger.Warn("delete of just-confirmed asset failed",
			zap.String("assetId", id), zap.Error(err))
	}
}

// promoteAsset is the asset counterpart of promoteCollection. Idempotent.
func (m *Manager) promoteAsset(tempID, realID string) {
	m.mu.Lock()
	defer m.mu.Unlock()

	if _, done := m.promotions[tempID]; done {
		return
	}
	m.promotions[tempID] = realID
	for i := range m.assets {
		if m.assets[i].ID.String() == tempID {
			m.assets[i].ID = models.ConfirmedID(realID)
			break
		}
	}
}

// flushPendingAssets issues the held creates of every asset queued on a
// just-confirmed collection, in original submission order. Each child is
// promoted or rolled back individually.
func (m *Manager) flushPendingAssets(ctx context.Context, parentTempID, parentRealID string) {
	m.mu.Lock()
	queued := m.pendingAssets[parentTempID]
	delete(m.pendingAssets, parentTempID)
	var toSend []models.Asset
	for _, assetTempID := range queued {
		for i := range m.assets {
			if m.assets[i].ID.String() == assetTempID {
				m.assets[i].CollectionID = models.ConfirmedID(parentRealID)
				toSend = append(toSend, m.assets[i])
				break
			}
		}
	}
	m.mu.Unlock()

	for _, asset := range toSend {
		m.sendAssetCreate(ctx, asset)
	}
}

// UpdateAsset edits an asset under the conflict guard.
func (m *Manager) UpdateAsset(ctx context.Context, userID, assetID string, patch models.UpdateAssetRequest) Result {
	if patch.Title != nil {
		if err := validateName(*patch.Title); err != nil {
			return failResult(err.Error())
		}
	}
	if !m.isOnline() {
		return offlineResult()
	}

	id := m.resolveID(assetID)
	asset, ok := m.mirror.Asset(id)
	if !ok {
		opt, optimistic := m.optimisticAsset(id)
		if !optimistic {
			return failResult("asset not found")
		}
		if opt.ID.IsProvisional() {
			return failResult(msgNotConfirmed)
		}
		asset = opt
	}
	caps := m.AssetCapabilitiesFor(id, userID)
	if !caps.CanEdit {
		return deniedResult()
	}

	if err := m.remote.UpdateAsset(ctx, id, patch, asset.EditedAt); err != nil {
		if errors.Is(err, db.ErrStaleWrite) {
			return conflictResult()
		}
		return failResult(err.Error())
	}
	return okResult(id)
}

// DeleteAsset deletes an asset optimistically: the id is tombstoned first,
// hiding it from every merged view, and the tombstone is lifted again if the
// remote delete fails.
func (m *Manager) DeleteAsset(ctx context.Context, userID, assetID string) Result {
	if !m.isOnline() {
		return offlineResult()
	}

	id := m.resolveID(assetID)

	m.mu.Lock()
	if asset, ok := m.optimisticAssetLocked(id); ok && asset.ID.IsProvisional() {
		m.assets = removeAsset(m.assets, id)
		if !m.dropPendingReferenceLocked(id) {
			// Not queued on a provisional parent, so its create call is in
			// flight right now. Mark it; the remote delete fires once the
			// create confirms, otherwise the server copy would survive and
			// resurface with the next authoritative snapshot.
			m.discarded[id] = struct{}{}
		}
		m.mu.Unlock()
		return okResult(id)
	}
	m.mu.Unlock()

	if _, ok := m.mirror.Asset(id); !ok {
		if _, optimistic := m.optimisticAsset(id); !optimistic {
			return failResult("asset not found")
		}
	}
	caps := m.AssetCapabilitiesFor(id, userID)
	if !caps.CanDelete {
		return deniedResult()
	}

	m.mu.Lock()
	m.tombstones[id] = struct{}{}
	m.mu.Unlock()

	if err := m.remote.DeleteAsset(ctx, id); err != nil {
		m.mu.Lock()
		delete(m.tombstones, id)
		m.mu.Unlock()
		return failResult(err.Error())
	}

	m.mu.Lock()
	delete(m.tombstones, id)
	m.mu.Unlock()
	return okResult(id)
}

// dropPendingReferenceLocked removes an asset temp id from whichever pending
// queue holds it, reporting whether it was queued at all.
func (m *Manager) dropPendingReferenceLocked(assetTempID string) bool {
	for parent, queue := range m.pendingAssets {
		for i, id := range queue {
			if id == assetTempID {
				m.pendingAssets[parent] = append(queue[:i], queue[i+1:]...)
				return true
			}
		}
	}
	return false
}

// --- Optimistic lookups ---

func (m *Manager) optimisticCollection(id string) (models.Collection, bool) {
	m.mu.Lock()
	defer m.mu.Unlock()
	return m.optimisticCollectionLocked(id)
}

func (m *Manager) optimisticCollectionLocked(id string) (models.Collection, bool) {
	for _, c := range m.collections {
		if c.ID.String() == id {
			return c, true
		}
	}
	return models.Collection{}, false
}

func (m *Manager) optimisticAsset(id string) (models.Asset, bool) {
	m.mu.Lock()
	defer m.mu.Unlock()
	return m.optimisticAssetLocked(id)
}

func (m *Manager) optimisticAssetLocked(id string) (models.Asset, bool) {
	for _, a := range m.assets {
		if a.ID.String() == id {
			return a, true
		}
	}
	return models.Asset{}, false
}

// --- Reconciliation against authoritative snapshots ---

// CollectionsChanged reconciles the optimistic collection list against the
// authoritative set of a vault: entries whose id is now authoritative are
// dropped, as are near-duplicates matched by the dedup heuristic.
func (m *Manager) CollectionsChanged(vaultID string, authoritative []models.Collection) {
	m.mu.Lock()
	defer m.mu.Unlock()

	kept := m.collections[:0]
	for _, c := range m.collections {
		if c.VaultID.String() == vaultID && collectionSuperseded(c, authoritative) {
			continue
		}
		kept = append(kept, c)
	}
	m.collections = kept
}

// AssetsChanged is the asset counterpart of CollectionsChanged.
func (m *Manager) AssetsChanged(vaultID string, authoritative []models.Asset) {
	m.mu.Lock()
	defer m.mu.Unlock()

	kept := m.assets[:0]
	for _, a := range m.assets {
		if a.VaultID.String() == vaultID && assetSuperseded(a, authoritative) {
			continue
		}
		kept = append(kept, a)
	}
	m.assets = kept
}

func collectionSuperseded(c models.Collection, authoritative []models.Collection) bool {
	for _, auth := range authoritative {
		if auth.ID.Equals(c.ID) {
			return true
		}
		if nearDuplicate(auth.VaultID.String(), c.VaultID.String(), auth.Name, c.Name, auth.CreatedAt, c.CreatedAt) {
			return true
		}
	}
	return false
}

func assetSuperseded(a models.Asset, authoritative []models.Asset) bool {
	for _, auth := range authoritative {
		if auth.ID.Equals(a.ID) {
			return true
		}
		if nearDuplicate(auth.CollectionID.String(), a.CollectionID.String(), auth.Title, a.Title, auth.CreatedAt, a.CreatedAt) {
			return true
		}
	}
	return false
}

// nearDuplicate covers the window where the server echo of an optimistic
// create arrives under a different, now-superseded identifier path: same
// parent, case-insensitive exact title match, creation timestamps within
// the dedup window.
func nearDuplicate(parentA, parentB, titleA, titleB string, createdA, createdB time.Time) bool {
	if parentA != parentB {
		return false
	}
	if !strings.EqualFold(titleA, titleB) {
		return false
	}
	diff := createdA.Sub(createdB)
	if diff < 0 {
		diff = -diff
	}
	return diff <= dedupWindow
}

// --- Merged views ---

// CollectionsForVault returns the merged collection list of a vault:
// authoritative entries plus unconfirmed optimistic ones, deduped and
// tombstone-filtered.
func (m *Manager) CollectionsForVault(vaultID string) []models.Collection {
	authoritative := m.mirror.CollectionsForVault(vaultID)

	m.mu.Lock()
	defer m.mu.Unlock()

	merged := make([]models.Collection, 0, len(authoritative))
	seen := make(map[string]struct{}, len(authoritative))
	for _, c := range authoritative {
		if _, dead := m.tombstones[c.ID.String()]; dead {
			continue
		}
		seen[c.ID.String()] = struct{}{}
		merged = append(merged, c)
	}
	for _, c := range m.collections {
		if c.VaultID.String() != vaultID {
			continue
		}
		id := c.ID.String()
		if _, dup := seen[id]; dup {
			continue
		}
		if _, dead := m.tombstones[id]; dead {
			continue
		}
		merged = append(merged, c)
	}
	return merged
}

// AssetsForVault returns the merged asset list of a vault.
func (m *Manager) AssetsForVault(vaultID string) []models.Asset {
	return m.mergeAssets(m.mirror.AssetsForVault(vaultID), func(a models.Asset) bool {
		return a.VaultID.String() == vaultID
	})
}

// AssetsForCollection returns the merged asset list of one collection,
// including queued children still pointing at the collection's provisional
// id.
func (m *Manager) AssetsForCollection(vaultID, collectionID string) []models.Asset {
	resolved := m.resolveID(collectionID)
	authoritative := make([]models.Asset, 0)
	for _, a := range m.mirror.AssetsForVault(vaultID) {
		if a.CollectionID.String() == resolved {
			authoritative = append(authoritative, a)
		}
	}
	return m.mergeAssets(authoritative, func(a models.Asset) bool {
		return a.CollectionID.String() == resolved || a.CollectionID.String() == collectionID
	})
}

func (m *Manager) mergeAssets(authoritative []models.Asset, match func(models.Asset) bool) []models.Asset {
	m.mu.Lock()
	defer m.mu.Unlock()

	merged := make([]models.Asset, 0, len(authoritative))
	seen := make(map[string]struct{}, len(authoritative))
	for _, a := range authoritative {
		if _, dead := m.tombstones[a.ID.String()]; dead {
			continue
		}
		seen[a.ID.String()] = struct{}{}
		merged = append(merged, a)
	}
	for _, a := range m.assets {
		if !match(a) {
			continue
		}
		id := a.ID.String()
		if _, dup := seen[id]; dup {
			continue
		}
		if _, dead := m.tombstones[id]; dead {
			continue
		}
		merged = append(merged, a)
	}
	return merged
}

// --- Capability records ---

// VaultCapabilitiesFor resolves the acting user's capability record at a
// vault from the local mirror; no network involved.
func (m *Manager) VaultCapabilitiesFor(vaultID, userID string) access.VaultCapabilities {
	role := m.mirror.RoleForVault(vaultID, userID)
	return access.ForVault(role, m.mirror.CanCreateCollections(vaultID, userID))
}

// CollectionCapabilitiesFor resolves the capability record at a collection.
func (m *Manager) CollectionCapabilitiesFor(collectionID, userID string) access.CollectionCapabilities {
	id := m.resolveID(collectionID)
	vaultID := ""
	if collection, ok := m.mirror.Collection(id); ok {
		vaultID = collection.VaultID.String()
	} else if collection, ok := m.optimisticCollection(id); ok {
		vaultID = collection.VaultID.String()
	}
	role := m.mirror.RoleForVault(vaultID, userID)
	return access.ForCollection(role, m.mirror.CanCreateAssets(vaultID, userID))
}

// AssetCapabilitiesFor resolves the capability record at an asset.
func (m *Manager) AssetCapabilitiesFor(assetID, userID string) access.AssetCapabilities {
	id := m.resolveID(assetID)
	vaultID := ""
	if asset, ok := m.mirror.Asset(id); ok {
		vaultID = asset.VaultID.String()
	} else if asset, ok := m.optimisticAsset(id); ok {
		vaultID = asset.VaultID.String()
	}
	return access.ForAsset(m.mirror.RoleForVault(vaultID, userID))
}

// --- Invitations ---

// Invitations lists the acting user's pending invitations.
func (m *Manager) Invitations(ctx context.Context, userID string) ([]models.Invitation, error) {
	return m.remote.ListMyInvitations(ctx, userID)
}

// AcceptInvitation redeems an invitation code and refreshes the membership
// mirror so the new role is visible to capability lookups immediately.
func (m *Manager) AcceptInvitation(ctx context.Context, userID, code string) Result {
	if !m.isOnline() {
		return offlineResult()
	}
	if err := m.remote.AcceptInvitationCode(ctx, userID, code); err != nil {
		return failResult(err.Error())
	}
	if err := m.mirror.RefreshMemberships(ctx, userID); err != nil {
		m.logger.Warn("failed to refresh memberships after invitation accept",
			zap.String("userId", userID), zap.Error(err))
	}
	return okResult(code)
}

// DenyInvitation declines an invitation code.
func (m *Manager) DenyInvitation(ctx context.Context, userID, code string) Result {
	if !m.isOnline() {
		return offlineResult()
	}
	if err := m.remote.DenyInvitationCode(ctx, userID, code); err != nil {
		return failResult(err.Error())
	}
	return okResult(code)
}

// --- Slice helpers ---

func removeCollection(list []models.Collection, id string) []models.Collection {
	for i := range list {
		if list[i].ID.String() == id {
			return append(list[:i], list[i+1:]...)
		}
	}
	return list
}

func removeAsset(list []models.Asset, id string) []models.Asset {
	for i := range list {
		if list[i].ID.String() == id {
			return append(list[:i], list[i+1:]...)
		}
	}
	return list
}
