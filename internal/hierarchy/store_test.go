package hierarchy

import (
	"context"
	"errors"
	stdsync "sync"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"

	"trove-sync-go/internal/db"
	"trove-sync-go/internal/models"
)

type fakeRemote struct {
	db.RemoteStore

	mu stdsync.Mutex

	colSubs    int
	colCancels int
	colErr     error
	// lastColCtx is the context the most recent collection subscription was
	// opened with; the real store derives its listener lifetime from it.
	lastColCtx  context.Context
	colHandlers map[string]db.CollectionsHandler

	assetSubs     int
	assetCancels  int
	assetHandlers map[string]db.AssetsHandler

	vaults      map[string]models.Vault
	memberships []models.Membership
	listCalls   int
}

var _ db.RemoteStore = (*fakeRemote)(nil)

func newFakeRemote() *fakeRemote {
	return &fakeRemote{
		colHandlers:   make(map[string]db.CollectionsHandler),
		assetHandlers: make(map[string]db.AssetsHandler),
		vaults:        make(map[string]models.Vault),
	}
}

func (f *fakeRemote) SubscribeVaultCollections(ctx context.Context, vaultID string, onChange db.CollectionsHandler) (db.Unsubscribe, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	if f.colErr != nil {
		return nil, f.colErr
	}
	f.colSubs++
	f.lastColCtx = ctx
	f.colHandlers[vaultID] = onChange
	return func() {
		f.mu.Lock()
		defer f.mu.Unlock()
		f.colCancels++
	}, nil
}

func (f *fakeRemote) SubscribeVaultAssets(_ context.Context, vaultID string, onChange db.AssetsHandler) (db.Unsubscribe, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.assetSubs++
	f.assetHandlers[vaultID] = onChange
	return func() {
		f.mu.Lock()
		defer f.mu.Unlock()
		f.assetCancels++
	}, nil
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
	f.listCalls++
	var mine []models.Membership
	for _, m := range f.memberships {
		if m.UserID == userID {
			mine = append(mine, m)
		}
	}
	return mine, nil
}

type recordingObserver struct {
	mu          stdsync.Mutex
	collections map[string][]models.Collection
	assets      map[string][]models.Asset
}

func newRecordingObserver() *recordingObserver {
	return &recordingObserver{
		collections: make(map[string][]models.Collection),
		assets:      make(map[string][]models.Asset),
	}
}

func (r *recordingObserver) CollectionsChanged(vaultID string, collections []models.Collection) {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.collections[vaultID] = collections
}

func (r *recordingObserver) AssetsChanged(vaultID string, assets []models.Asset) {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.assets[vaultID] = assets
}

func newTestStore() (*Store, *fakeRemote) {
	fake := newFakeRemote()
	return NewStore(context.Background(), fake, zap.NewNop()), fake
}

// --- Subscription refcounting ---

func TestRetainCollections_SharesOneSubscription(t *testing.T) {
	store, fake := newTestStore()

	for i := 0; i < 3; i++ {
		require.NoError(t, store.RetainCollections("v1"))
	}
	assert.Equal(t, 1, fake.colSubs, "one subscription per vault, regardless of consumer count")

	store.ReleaseCollections("v1")
	store.ReleaseCollections("v1")
	assert.Equal(t, 0, fake.colCancels, "subscription survives while any consumer remains")

	store.ReleaseCollections("v1")
	assert.Equal(t, 1, fake.colCancels, "last release tears the subscription down")

	// A fresh retain reopens.
	require.NoError(t, store.RetainCollections("v1"))
	assert.Equal(t, 2, fake.colSubs)
}

func TestRetainCollections_SubscriptionOutlivesOpeningCaller(t *testing.T) {
	storeCtx, cancelStore := context.WithCancel(context.Background())
	defer cancelStore()
	fake := newFakeRemote()
	store := NewStore(storeCtx, fake, zap.NewNop())

	// The consumer that happens to open the subscription has its own
	// short-lived context (an HTTP request's, in production). Its end must
	// not end the shared listener.
	requestCtx, endRequest := context.WithCancel(context.Background())
	require.NoError(t, store.RetainCollections("v1"))
	endRequest()
	require.Error(t, requestCtx.Err())

	require.NotNil(t, fake.lastColCtx)
	assert.NoError(t, fake.lastColCtx.Err(), "listener context must stay live while the subscription is retained")

	// Only the store's lifetime ends the listener context.
	cancelStore()
	assert.Error(t, fake.lastColCtx.Err())
}

func TestReleaseCollections_UnretainedIsNoOp(t *testing.T) {
	store, fake := newTestStore()

	store.ReleaseCollections("v1")
	assert.Equal(t, 0, fake.colCancels)

	// A later retain/release pair still balances to exactly one teardown.
	require.NoError(t, store.RetainCollections("v1"))
	store.ReleaseCollections("v1")
	assert.Equal(t, 1, fake.colCancels)
}

func TestRetain_ArenasAreIndependent(t *testing.T) {
	store, fake := newTestStore()

	require.NoError(t, store.RetainAssets("v1"))
	assert.Equal(t, 0, fake.colSubs)
	assert.Equal(t, 1, fake.assetSubs)

	require.NoError(t, store.RetainCollections("v1"))
	assert.Equal(t, 1, fake.colSubs)

	store.ReleaseAssets("v1")
	assert.Equal(t, 1, fake.assetCancels)
	assert.Equal(t, 0, fake.colCancels, "releasing assets must not touch the collection subscription")
}

func TestRetainCollections_OpenFailureLeavesCountAtZero(t *testing.T) {
	store, fake := newTestStore()
	fake.colErr = errors.New("listen refused")

	err := store.RetainCollections("v1")
	require.Error(t, err)

	// The failed retain left no count behind: the next one opens again.
	fake.colErr = nil
	require.NoError(t, store.RetainCollections("v1"))
	assert.Equal(t, 1, fake.colSubs)
}

// --- Snapshot application ---

func TestSnapshots_PopulateMirrorAndNotifyObservers(t *testing.T) {
	store, fake := newTestStore()
	observer := newRecordingObserver()
	store.AddObserver(observer)

	require.NoError(t, store.RetainCollections("v1"))
	require.NoError(t, store.RetainAssets("v1"))

	now := time.Now().UTC()
	collections := []models.Collection{{
		ID:        models.ConfirmedID("c1"),
		VaultID:   models.ConfirmedID("v1"),
		OwnerID:   "alice",
		Name:      "Jewelry",
		CreatedAt: now,
		EditedAt:  now,
	}}
	assets := []models.Asset{{
		ID:           models.ConfirmedID("a1"),
		CollectionID: models.ConfirmedID("c1"),
		VaultID:      models.ConfirmedID("v1"),
		OwnerID:      "alice",
		Title:        "Ring",
	}}
	fake.colHandlers["v1"]("v1", collections)
	fake.assetHandlers["v1"]("v1", assets)

	assert.Equal(t, collections, store.CollectionsForVault("v1"))
	assert.Equal(t, assets, store.AssetsForVault("v1"))
	assert.Equal(t, collections, observer.collections["v1"])
	assert.Equal(t, assets, observer.assets["v1"])

	got, ok := store.Collection("c1")
	require.True(t, ok)
	assert.Equal(t, "Jewelry", got.Name)
	asset, ok := store.Asset("a1")
	require.True(t, ok)
	assert.Equal(t, "Ring", asset.Title)
}

func TestLoadVault_FetchesOnceThenServesFromMirror(t *testing.T) {
	store, fake := newTestStore()
	fake.vaults["v1"] = models.Vault{ID: models.ConfirmedID("v1"), OwnerID: "alice", Name: "Estate"}

	vault, err := store.LoadVault(context.Background(), "v1")
	require.NoError(t, err)
	assert.Equal(t, "Estate", vault.Name)

	// Remote copy changes; the mirror keeps serving its version until a
	// refresh replaces it.
	fake.vaults["v1"] = models.Vault{ID: models.ConfirmedID("v1"), OwnerID: "alice", Name: "Renamed"}
	vault, err = store.LoadVault(context.Background(), "v1")
	require.NoError(t, err)
	assert.Equal(t, "Estate", vault.Name)

	_, err = store.LoadVault(context.Background(), "missing")
	require.ErrorIs(t, err, db.ErrNotFound)
}

// --- Role resolution ---

func TestRoleForVault_OwnershipOutranksMembership(t *testing.T) {
	store, _ := newTestStore()
	store.SetVault(models.Vault{ID: models.ConfirmedID("v1"), OwnerID: "alice"})
	// A stale reviewer membership for the owner must not demote them.
	store.SetUserMemberships("alice", []models.Membership{{
		UserID:  "alice",
		VaultID: models.ConfirmedID("v1"),
		Role:    "reviewer",
		Status:  models.MembershipActive,
	}})

	assert.Equal(t, "owner", string(store.RoleForVault("v1", "alice")))
}

func TestRoleForVault_MembershipStatusAndAliases(t *testing.T) {
	store, _ := newTestStore()
	store.SetVault(models.Vault{ID: models.ConfirmedID("v1"), OwnerID: "alice"})
	store.SetUserMemberships("bob", []models.Membership{
		{UserID: "bob", VaultID: models.ConfirmedID("v1"), Role: "viewer", Status: models.MembershipActive},
	})
	store.SetUserMemberships("carol", []models.Membership{
		{UserID: "carol", VaultID: models.ConfirmedID("v1"), Role: "manager", Status: models.MembershipPending},
	})
	store.SetUserMemberships("dave", []models.Membership{
		{UserID: "dave", VaultID: models.ConfirmedID("v1"), Role: "editor", Status: models.MembershipDenied},
	})

	// Legacy "viewer" normalizes to reviewer.
	assert.Equal(t, "reviewer", string(store.RoleForVault("v1", "bob")))
	// Only ACTIVE memberships grant a role.
	assert.Equal(t, "", string(store.RoleForVault("v1", "carol")))
	assert.Equal(t, "", string(store.RoleForVault("v1", "dave")))
	assert.Equal(t, "", string(store.RoleForVault("v1", "mallory")))
}

func TestCreationFlags_ComeFromMembershipNotRank(t *testing.T) {
	store, _ := newTestStore()
	store.SetVault(models.Vault{ID: models.ConfirmedID("v1"), OwnerID: "alice"})
	// High rank without the flag.
	store.SetUserMemberships("bob", []models.Membership{
		{UserID: "bob", VaultID: models.ConfirmedID("v1"), Role: "manager", Status: models.MembershipActive},
	})
	// Low rank with the flag.
	store.SetUserMemberships("carol", []models.Membership{
		{UserID: "carol", VaultID: models.ConfirmedID("v1"), Role: "editor", Status: models.MembershipActive,
			CanCreateCollections: true, CanCreateAssets: true},
	})

	assert.True(t, store.CanCreateCollections("v1", "alice"), "owners always can")
	assert.True(t, store.CanCreateAssets("v1", "alice"))

	assert.False(t, store.CanCreateCollections("v1", "bob"))
	assert.False(t, store.CanCreateAssets("v1", "bob"))

	assert.True(t, store.CanCreateCollections("v1", "carol"))
	assert.True(t, store.CanCreateAssets("v1", "carol"))
}

// --- Membership loading ---

func TestEnsureMemberships_LoadsOnFirstSightOnly(t *testing.T) {
	store, fake := newTestStore()
	store.SetVault(models.Vault{ID: models.ConfirmedID("v1"), OwnerID: "alice"})
	fake.memberships = []models.Membership{{
		UserID:  "bob",
		VaultID: models.ConfirmedID("v1"),
		Role:    "editor",
		Status:  models.MembershipActive,
	}}

	// A pre-existing delegation resolves without any prior in-process grant.
	require.NoError(t, store.EnsureMemberships(context.Background(), "bob"))
	assert.Equal(t, "editor", string(store.RoleForVault("v1", "bob")))
	assert.Equal(t, 1, fake.listCalls)

	// Later calls serve from the mirror.
	require.NoError(t, store.EnsureMemberships(context.Background(), "bob"))
	assert.Equal(t, 1, fake.listCalls)

	// An empty result is cached too: a user with no memberships does not
	// trigger a remote list per request.
	require.NoError(t, store.EnsureMemberships(context.Background(), "mallory"))
	require.NoError(t, store.EnsureMemberships(context.Background(), "mallory"))
	assert.Equal(t, 2, fake.listCalls)
}

func TestRefreshMemberships_DoesNotClobberOtherUsers(t *testing.T) {
	store, fake := newTestStore()
	store.SetVault(models.Vault{ID: models.ConfirmedID("v1"), OwnerID: "alice"})
	fake.memberships = []models.Membership{
		{UserID: "bob", VaultID: models.ConfirmedID("v1"), Role: "editor", Status: models.MembershipActive},
		{UserID: "carol", VaultID: models.ConfirmedID("v1"), Role: "manager", Status: models.MembershipActive},
	}

	require.NoError(t, store.RefreshMemberships(context.Background(), "bob"))
	require.NoError(t, store.RefreshMemberships(context.Background(), "carol"))

	assert.Equal(t, "manager", string(store.RoleForVault("v1", "carol")))
	assert.Equal(t, "editor", string(store.RoleForVault("v1", "bob")),
		"one user's refresh must not drop another user's cached memberships")
}
