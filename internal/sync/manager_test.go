package sync

import (
	"context"
	"errors"
	"fmt"
	stdsync "sync"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"

	"trove-sync-go/internal/db"
	"trove-sync-go/internal/hierarchy"
	"trove-sync-go/internal/models"
)

type fakeCreate struct {
	id  string
	err error
}

// fakeRemote is a scripted RemoteStore: tests queue create outcomes and
// inspect recorded calls. Methods not overridden panic via the embedded nil
// interface, which is the desired behavior for unexpected calls.
type fakeRemote struct {
	db.RemoteStore

	mu     stdsync.Mutex
	nextID int

	vaults map[string]models.Vault

	collectionResults []fakeCreate
	collectionCalls   []models.Collection
	// collectionHook runs inside CreateCollection, after the optimistic
	// insert but before the call resolves, with the provisional id of the
	// collection being created. Tests use it to submit children while the
	// parent is still in flight.
	collectionHook func(tempID string)

	assetResults []fakeCreate
	assetCalls   []models.Asset
	// assetHook runs inside CreateAsset, before the call resolves, with the
	// provisional id of the asset being created.
	assetHook func(tempID string)

	updateVaultErr       error
	updateCollectionErr  error
	updateAssetErr       error
	lastExpectedEditedAt time.Time

	deleteErr   error
	deleteCalls []string
	deleteHook  func()

	moveCollectionErr   error
	moveCollectionCalls [][2]string
	moveAssetErr        error
	moveAssetCalls      [][3]string

	memberships []models.Membership

	colHandlers   map[string]db.CollectionsHandler
	assetHandlers map[string]db.AssetsHandler
}

var _ db.RemoteStore = (*fakeRemote)(nil)

func newFakeRemote() *fakeRemote {
	return &fakeRemote{
		vaults:        make(map[string]models.Vault),
		colHandlers:   make(map[string]db.CollectionsHandler),
		assetHandlers: make(map[string]db.AssetsHandler),
	}
}

func (f *fakeRemote) popCollectionResult() fakeCreate {
	f.mu.Lock()
	defer f.mu.Unlock()
	if len(f.collectionResults) == 0 {
		f.nextID++
		return fakeCreate{id: fmt.Sprintf("srv_col_%d", f.nextID)}
	}
	res := f.collectionResults[0]
	f.collectionResults = f.collectionResults[1:]
	return res
}

func (f *fakeRemote) popAssetResult() fakeCreate {
	f.mu.Lock()
	defer f.mu.Unlock()
	if len(f.assetResults) == 0 {
		f.nextID++
		return fakeCreate{id: fmt.Sprintf("srv_asset_%d", f.nextID)}
	}
	res := f.assetResults[0]
	f.assetResults = f.assetResults[1:]
	return res
}

func (f *fakeRemote) CreateCollection(_ context.Context, collection *models.Collection) (string, error) {
	f.mu.Lock()
	f.collectionCalls = append(f.collectionCalls, *collection)
	hook := f.collectionHook
	f.mu.Unlock()
	if hook != nil {
		hook(collection.ID.String())
	}
	res := f.popCollectionResult()
	return res.id, res.err
}

func (f *fakeRemote) CreateAsset(_ context.Context, asset *models.Asset) (string, error) {
	f.mu.Lock()
	f.assetCalls = append(f.assetCalls, *asset)
	hook := f.assetHook
	f.mu.Unlock()
	if hook != nil {
		hook(asset.ID.String())
	}
	res := f.popAssetResult()
	return res.id, res.err
}

func (f *fakeRemote) UpdateVault(_ context.Context, _ string, _ models.UpdateVaultRequest, expected time.Time) error {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.lastExpectedEditedAt = expected
	return f.updateVaultErr
}

func (f *fakeRemote) UpdateCollection(_ context.Context, _ string, _ models.UpdateCollectionRequest, expected time.Time) error {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.lastExpectedEditedAt = expected
	return f.updateCollectionErr
}

func (f *fakeRemote) UpdateAsset(_ context.Context, _ string, _ models.UpdateAssetRequest, expected time.Time) error {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.lastExpectedEditedAt = expected
	return f.updateAssetErr
}

func (f *fakeRemote) DeleteAsset(_ context.Context, assetID string) error {
	f.mu.Lock()
	f.deleteCalls = append(f.deleteCalls, assetID)
	hook := f.deleteHook
	err := f.deleteErr
	f.mu.Unlock()
	if hook != nil {
		hook()
	}
	return err
}

func (f *fakeRemote) MoveCollection(_ context.Context, collectionID, targetVaultID string) error {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.moveCollectionCalls = append(f.moveCollectionCalls, [2]string{collectionID, targetVaultID})
	return f.moveCollectionErr
}

func (f *fakeRemote) MoveAsset(_ context.Context, assetID, targetVaultID, targetCollectionID string) error {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.moveAssetCalls = append(f.moveAssetCalls, [3]string{assetID, targetVaultID, targetCollectionID})
	return f.moveAssetErr
}

func (f *fakeRemote) GetVault(_ context.Context, vaultID string) (*models.Vault, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	vault, ok := f.vaults[vaultID]
	if !ok {
		return nil, db.ErrNotFound
	}
	return &vault, nil
}

func (f *fakeRemote) ListMemberships(_ context.Context, userID string) ([]models.Membership, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	var mine []models.Membership
	for _, m := range f.memberships {
		if m.UserID == userID {
			mine = append(mine, m)
		}
	}
	return mine, nil
}

func (f *fakeRemote) AcceptInvitationCode(_ context.Context, _, _ string) error { return nil }

func (f *fakeRemote) SubscribeVaultCollections(_ context.Context, vaultID string, onChange db.CollectionsHandler) (db.Unsubscribe, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.colHandlers[vaultID] = onChange
	return func() {}, nil
}

func (f *fakeRemote) SubscribeVaultAssets(_ context.Context, vaultID string, onChange db.AssetsHandler) (db.Unsubscribe, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.assetHandlers[vaultID] = onChange
	return func() {}, nil
}

func (f *fakeRemote) emitCollections(vaultID string, collections []models.Collection) {
	f.mu.Lock()
	handler := f.colHandlers[vaultID]
	f.mu.Unlock()
	if handler != nil {
		handler(vaultID, collections)
	}
}

func (f *fakeRemote) emitAssets(vaultID string, assets []models.Asset) {
	f.mu.Lock()
	handler := f.assetHandlers[vaultID]
	f.mu.Unlock()
	if handler != nil {
		handler(vaultID, assets)
	}
}

// --- Test environment ---

type env struct {
	fake   *fakeRemote
	mirror *hierarchy.Store
	mgr    *Manager
}

func newEnv(t *testing.T) *env {
	t.Helper()
	fake := newFakeRemote()
	mirror := hierarchy.NewStore(context.Background(), fake, zap.NewNop())
	mgr := NewManager(fake, mirror, nil, zap.NewNop())
	return &env{fake: fake, mirror: mirror, mgr: mgr}
}

func (e *env) seedVault(t *testing.T, vaultID, ownerID string) {
	t.Helper()
	vault := models.Vault{
		ID:        models.ConfirmedID(vaultID),
		OwnerID:   ownerID,
		Name:      "Vault " + vaultID,
		CreatedAt: time.Now().UTC(),
		EditedAt:  time.Now().UTC(),
	}
	e.fake.vaults[vaultID] = vault
	e.mirror.SetVault(vault)
}

func (e *env) seedAssets(t *testing.T, vaultID string, assets ...models.Asset) {
	t.Helper()
	require.NoError(t, e.mirror.RetainAssets(vaultID))
	e.fake.emitAssets(vaultID, assets)
}

func (e *env) seedCollections(t *testing.T, vaultID string, collections ...models.Collection) {
	t.Helper()
	require.NoError(t, e.mirror.RetainCollections(vaultID))
	e.fake.emitCollections(vaultID, collections)
}

func confirmedAsset(id, collectionID, vaultID, ownerID, title string, editedAt time.Time) models.Asset {
	return models.Asset{
		ID:           models.ConfirmedID(id),
		CollectionID: models.ConfirmedID(collectionID),
		VaultID:      models.ConfirmedID(vaultID),
		OwnerID:      ownerID,
		Title:        title,
		CreatedAt:    editedAt,
		EditedAt:     editedAt,
	}
}

// --- Creates ---

func TestCreateCollection_PromotesProvisionalID(t *testing.T) {
	e := newEnv(t)
	e.seedVault(t, "v1", "alice")
	e.fake.collectionResults = []fakeCreate{{id: "col_42"}}

	res := e.mgr.CreateCollection(context.Background(), "alice", "v1", "Jewelry")
	require.True(t, res.OK, "message: %s", res.Message)
	assert.Equal(t, "col_42", res.ID)

	merged := e.mgr.CollectionsForVault("v1")
	require.Len(t, merged, 1)
	assert.Equal(t, "col_42", merged[0].ID.String())
	assert.False(t, merged[0].ID.IsProvisional())

	// The remote saw the provisional id before promotion.
	require.Len(t, e.fake.collectionCalls, 1)
	assert.True(t, e.fake.collectionCalls[0].ID.IsProvisional())
}

func TestCreateCollection_RollbackRestoresDraft(t *testing.T) {
	e := newEnv(t)
	e.seedVault(t, "v1", "alice")
	e.fake.collectionResults = []fakeCreate{{err: errors.New("quota exceeded")}}

	res := e.mgr.CreateCollection(context.Background(), "alice", "v1", "Jewelry")
	require.False(t, res.OK)
	assert.Equal(t, "quota exceeded", res.Message)
	require.NotNil(t, res.Draft)
	assert.Equal(t, "Jewelry", res.Draft.Name)
	assert.Empty(t, e.mgr.CollectionsForVault("v1"))
}

func TestCreateCollection_PermissionDeniedIssuesNoRemoteCall(t *testing.T) {
	e := newEnv(t)
	e.seedVault(t, "v1", "alice")
	// bob is a manager but lacks the server-side creation delegation flag.
	e.mirror.SetUserMemberships("bob", []models.Membership{{
		UserID:  "bob",
		VaultID: models.ConfirmedID("v1"),
		Role:    "manager",
		Status:  models.MembershipActive,
	}})

	res := e.mgr.CreateCollection(context.Background(), "bob", "v1", "Jewelry")
	require.False(t, res.OK)
	assert.Equal(t, msgPermissionDenied, res.Message)
	assert.Empty(t, e.fake.collectionCalls)
	assert.Empty(t, e.mgr.CollectionsForVault("v1"))
}

func TestCreateCollection_NameBoundEnforced(t *testing.T) {
	e := newEnv(t)
	e.seedVault(t, "v1", "alice")

	long := "this collection name is far far too long to keep"
	res := e.mgr.CreateCollection(context.Background(), "alice", "v1", long)
	require.False(t, res.OK)
	assert.Empty(t, e.fake.collectionCalls)
}

func TestCreateAsset_PendingChildrenFlushInSubmissionOrder(t *testing.T) {
	e := newEnv(t)
	e.seedVault(t, "v1", "alice")
	e.fake.collectionResults = []fakeCreate{{id: "col_42"}}

	// While the collection create is in flight, three asset creates arrive
	// against its provisional id.
	e.fake.collectionHook = func(tempID string) {
		for _, title := range []string{"Ring A", "Ring B", "Ring C"} {
			res := e.mgr.CreateAsset(context.Background(), "alice", "v1", tempID, models.CreateAssetRequest{Title: title})
			require.True(t, res.OK, "queued create should succeed locally: %s", res.Message)
		}
		// Nothing goes to the remote store while the parent is provisional.
		require.Empty(t, e.fake.assetCalls)
	}

	res := e.mgr.CreateCollection(context.Background(), "alice", "v1", "Jewelry")
	require.True(t, res.OK)

	require.Len(t, e.fake.assetCalls, 3)
	assert.Equal(t, "Ring A", e.fake.assetCalls[0].Title)
	assert.Equal(t, "Ring B", e.fake.assetCalls[1].Title)
	assert.Equal(t, "Ring C", e.fake.assetCalls[2].Title)
	for _, call := range e.fake.assetCalls {
		assert.Equal(t, "col_42", call.CollectionID.String())
	}
}

func TestCreateCollection_FailureDiscardsPendingChildren(t *testing.T) {
	e := newEnv(t)
	e.seedVault(t, "v1", "alice")
	e.fake.collectionResults = []fakeCreate{{err: errors.New("quota exceeded")}}

	e.fake.collectionHook = func(tempID string) {
		res := e.mgr.CreateAsset(context.Background(), "alice", "v1", tempID, models.CreateAssetRequest{Title: "Ring"})
		require.True(t, res.OK)
	}

	res := e.mgr.CreateCollection(context.Background(), "alice", "v1", "Jewelry")
	require.False(t, res.OK)

	// The orphaned child is discarded with its parent, never sent.
	assert.Empty(t, e.fake.assetCalls)
	assert.Empty(t, e.mgr.AssetsForVault("v1"))
	assert.Empty(t, e.mgr.CollectionsForVault("v1"))
}

func TestPromoteCollection_Idempotent(t *testing.T) {
	e := newEnv(t)
	e.seedVault(t, "v1", "alice")
	e.fake.collectionResults = []fakeCreate{{id: "col_42"}}

	res := e.mgr.CreateCollection(context.Background(), "alice", "v1", "Jewelry")
	require.True(t, res.OK)
	tempID := e.fake.collectionCalls[0].ID.String()

	// Duplicate confirmation (e.g. a repeated server echo) is a no-op.
	e.mgr.promoteCollection(tempID, "col_42")

	merged := e.mgr.CollectionsForVault("v1")
	require.Len(t, merged, 1)
	assert.Equal(t, "col_42", merged[0].ID.String())
	assert.Equal(t, "col_42", e.mgr.resolveID(tempID))
}

// --- Reconciliation ---

func TestReconcile_RemovesEntriesByConfirmedID(t *testing.T) {
	e := newEnv(t)
	e.seedVault(t, "v1", "alice")
	e.fake.collectionResults = []fakeCreate{{id: "col_42"}}

	res := e.mgr.CreateCollection(context.Background(), "alice", "v1", "Jewelry")
	require.True(t, res.OK)

	// The authoritative echo arrives; the optimistic entry must collapse
	// into it instead of showing a duplicate row.
	now := time.Now().UTC()
	e.seedCollections(t, "v1", models.Collection{
		ID:        models.ConfirmedID("col_42"),
		VaultID:   models.ConfirmedID("v1"),
		OwnerID:   "alice",
		Name:      "Jewelry",
		CreatedAt: now,
		EditedAt:  now,
	})

	merged := e.mgr.CollectionsForVault("v1")
	require.Len(t, merged, 1)
	assert.Equal(t, "col_42", merged[0].ID.String())
}

func TestReconcile_DedupHeuristic(t *testing.T) {
	base := time.Date(2026, 5, 4, 12, 0, 0, 0, time.UTC)

	cases := []struct {
		name      string
		authTitle string
		authAt    time.Time
		collapsed bool
	}{
		{"same title within window", "jewelry", base.Add(15 * time.Second), true},
		{"same title outside window", "jewelry", base.Add(16 * time.Second), false},
		{"different title within window", "Watches", base.Add(2 * time.Second), false},
	}
	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			e := newEnv(t)
			e.seedVault(t, "v1", "alice")
			e.mgr.now = func() time.Time { return base }
			e.fake.collectionHook = func(string) {
				// Authoritative snapshot lands while the create is still in
				// flight, carrying a different identifier path.
				e.seedCollections(t, "v1", models.Collection{
					ID:        models.ConfirmedID("col_echo"),
					VaultID:   models.ConfirmedID("v1"),
					OwnerID:   "alice",
					Name:      tc.authTitle,
					CreatedAt: tc.authAt,
					EditedAt:  tc.authAt,
				})
			}
			e.fake.collectionResults = []fakeCreate{{id: "col_real"}}

			res := e.mgr.CreateCollection(context.Background(), "alice", "v1", "Jewelry")
			require.True(t, res.OK)

			merged := e.mgr.CollectionsForVault("v1")
			if tc.collapsed {
				// The echo swallowed the optimistic entry; only the
				// authoritative row remains.
				require.Len(t, merged, 1)
				assert.Equal(t, "col_echo", merged[0].ID.String())
			} else {
				// Distinct entries stay side by side.
				require.Len(t, merged, 2)
			}
		})
	}
}

func TestReconcile_DedupHeuristicKeepsDistinctEntries(t *testing.T) {
	e := newEnv(t)
	e.seedVault(t, "v1", "alice")
	base := time.Date(2026, 5, 4, 12, 0, 0, 0, time.UTC)
	e.mgr.now = func() time.Time { return base }
	e.fake.collectionResults = []fakeCreate{{id: "col_real"}}

	res := e.mgr.CreateCollection(context.Background(), "alice", "v1", "Jewelry")
	require.True(t, res.OK)

	// An unrelated same-named collection created 16s earlier must not
	// swallow the optimistic entry.
	e.seedCollections(t, "v1", models.Collection{
		ID:        models.ConfirmedID("col_other"),
		VaultID:   models.ConfirmedID("v1"),
		OwnerID:   "alice",
		Name:      "Jewelry",
		CreatedAt: base.Add(-16 * time.Second),
		EditedAt:  base.Add(-16 * time.Second),
	})

	merged := e.mgr.CollectionsForVault("v1")
	assert.Len(t, merged, 2)
}

// --- Conflict guard ---

func TestUpdateAsset_SubmitsWatermarkAndFlagsConflict(t *testing.T) {
	e := newEnv(t)
	e.seedVault(t, "v1", "alice")
	editedAt := time.Date(2026, 3, 1, 9, 0, 0, 0, time.UTC)
	e.seedAssets(t, "v1", confirmedAsset("a1", "c1", "v1", "alice", "Ring", editedAt))

	title := "Gold Ring"
	res := e.mgr.UpdateAsset(context.Background(), "alice", "a1", models.UpdateAssetRequest{Title: &title})
	require.True(t, res.OK)
	assert.True(t, e.fake.lastExpectedEditedAt.Equal(editedAt))

	e.fake.updateAssetErr = db.ErrStaleWrite
	res = e.mgr.UpdateAsset(context.Background(), "alice", "a1", models.UpdateAssetRequest{Title: &title})
	require.False(t, res.OK)
	assert.True(t, res.Conflict, "stale write must be distinguishable from generic failure")
}

func TestUpdateAsset_GenericFailureIsNotConflict(t *testing.T) {
	e := newEnv(t)
	e.seedVault(t, "v1", "alice")
	e.seedAssets(t, "v1", confirmedAsset("a1", "c1", "v1", "alice", "Ring", time.Now().UTC()))

	e.fake.updateAssetErr = errors.New("backend unavailable")
	title := "Gold Ring"
	res := e.mgr.UpdateAsset(context.Background(), "alice", "a1", models.UpdateAssetRequest{Title: &title})
	require.False(t, res.OK)
	assert.False(t, res.Conflict)
	assert.Equal(t, "backend unavailable", res.Message)
}

// --- Optimistic delete ---

func TestDeleteAsset_TombstoneLifecycle(t *testing.T) {
	e := newEnv(t)
	e.seedVault(t, "v1", "alice")
	e.seedAssets(t, "v1", confirmedAsset("a1", "c1", "v1", "alice", "Ring", time.Now().UTC()))

	// The asset is hidden before the remote delete resolves.
	e.fake.deleteHook = func() {
		assert.Empty(t, e.mgr.AssetsForVault("v1"), "asset must be hidden while delete is in flight")
	}

	// Failure lifts the tombstone; the asset reappears.
	e.fake.deleteErr = errors.New("backend unavailable")
	res := e.mgr.DeleteAsset(context.Background(), "alice", "a1")
	require.False(t, res.OK)
	assert.Len(t, e.mgr.AssetsForVault("v1"), 1)

	// Success clears the tombstone; absence comes from the mirror.
	e.fake.deleteErr = nil
	res = e.mgr.DeleteAsset(context.Background(), "alice", "a1")
	require.True(t, res.OK)
	e.fake.emitAssets("v1", nil)
	assert.Empty(t, e.mgr.AssetsForVault("v1"))
}

func TestDeleteAsset_ManagerRankBlockedLocally(t *testing.T) {
	e := newEnv(t)
	e.seedVault(t, "v1", "alice")
	e.seedAssets(t, "v1", confirmedAsset("a1", "c1", "v1", "alice", "Ring", time.Now().UTC()))
	e.mirror.SetUserMemberships("bob", []models.Membership{{
		UserID:  "bob",
		VaultID: models.ConfirmedID("v1"),
		Role:    "manager",
		Status:  models.MembershipActive,
	}})

	res := e.mgr.DeleteAsset(context.Background(), "bob", "a1")
	require.False(t, res.OK)
	assert.Equal(t, msgPermissionDenied, res.Message)
	assert.Empty(t, e.fake.deleteCalls, "no remote call on local permission denial")
	assert.Len(t, e.mgr.AssetsForVault("v1"), 1, "no tombstone on local permission denial")
}

func TestDeleteAsset_DuringInFlightCreateFiresAfterConfirmation(t *testing.T) {
	e := newEnv(t)
	e.seedVault(t, "v1", "alice")
	e.fake.assetResults = []fakeCreate{{id: "a_real"}}

	// The delete arrives while the create call is still on the wire. The
	// local entry disappears at once; the remote delete must follow the
	// confirmation, otherwise the server copy survives and resurfaces with
	// the next authoritative snapshot.
	e.fake.assetHook = func(tempID string) {
		res := e.mgr.DeleteAsset(context.Background(), "alice", tempID)
		require.True(t, res.OK, "message: %s", res.Message)
		assert.Empty(t, e.mgr.AssetsForVault("v1"))
	}

	res := e.mgr.CreateAsset(context.Background(), "alice", "v1", "c1", models.CreateAssetRequest{Title: "Ring"})
	require.True(t, res.OK)

	assert.Equal(t, []string{"a_real"}, e.fake.deleteCalls)
	assert.Empty(t, e.mgr.AssetsForVault("v1"))
}

func TestDeleteAsset_QueuedOnProvisionalParentStaysLocal(t *testing.T) {
	e := newEnv(t)
	e.seedVault(t, "v1", "alice")
	e.fake.collectionResults = []fakeCreate{{id: "col_42"}}

	// Child queued on the in-flight parent, then deleted before the parent
	// confirms: nothing about it ever reaches the remote store.
	e.fake.collectionHook = func(tempID string) {
		created := e.mgr.CreateAsset(context.Background(), "alice", "v1", tempID, models.CreateAssetRequest{Title: "Ring"})
		require.True(t, created.OK)
		deleted := e.mgr.DeleteAsset(context.Background(), "alice", created.ID)
		require.True(t, deleted.OK)
	}

	res := e.mgr.CreateCollection(context.Background(), "alice", "v1", "Jewelry")
	require.True(t, res.OK)

	assert.Empty(t, e.fake.assetCalls)
	assert.Empty(t, e.fake.deleteCalls)
	assert.Empty(t, e.mgr.AssetsForVault("v1"))
}

// --- Connectivity gate ---

func TestOfflineGateBlocksMutations(t *testing.T) {
	fake := newFakeRemote()
	mirror := hierarchy.NewStore(context.Background(), fake, zap.NewNop())
	offline := func() bool { return false }
	mgr := NewManager(fake, mirror, offline, zap.NewNop())

	vault := models.Vault{ID: models.ConfirmedID("v1"), OwnerID: "alice"}
	fake.vaults["v1"] = vault
	mirror.SetVault(vault)

	res := mgr.CreateCollection(context.Background(), "alice", "v1", "Jewelry")
	require.False(t, res.OK)
	assert.Equal(t, msgOffline, res.Message)
	assert.Empty(t, fake.collectionCalls)
	assert.Empty(t, mgr.CollectionsForVault("v1"))
}

// --- Invitations ---

func TestAcceptInvitation_RefreshesMemberships(t *testing.T) {
	e := newEnv(t)
	e.seedVault(t, "v1", "alice")
	e.fake.memberships = []models.Membership{{
		UserID:  "bob",
		VaultID: models.ConfirmedID("v1"),
		Role:    "editor",
		Status:  models.MembershipActive,
	}}

	res := e.mgr.AcceptInvitation(context.Background(), "bob", "INV-123")
	require.True(t, res.OK)
	assert.Equal(t, "editor", string(e.mirror.RoleForVault("v1", "bob")))
}
