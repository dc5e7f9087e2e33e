package db

import (
	"context"
	"errors"
	"fmt"
	"time"

	"cloud.google.com/go/firestore"
	"go.uber.org/zap"
	"google.golang.org/api/iterator"
	"google.golang.org/grpc/codes"
	"google.golang.org/grpc/status"

	"trove-sync-go/internal/access"
	"trove-sync-go/internal/models"
)

// Firestore collection names.
const (
	vaultsCollection      = "vaults"
	collectionsCollection = "collections"
	assetsCollection      = "assets"
	membershipsCollection = "memberships"
	invitationsCollection = "invitations"
)

// FirestoreStore implements RemoteStore on Cloud Firestore. Entities live in
// top-level collections with plain foreign key fields so vault-scoped change
// subscriptions are single Where queries.
type FirestoreStore struct {
	client *firestore.Client
	logger *zap.Logger
}

var _ RemoteStore = (*FirestoreStore)(nil)

// NewFirestoreStore creates a RemoteStore backed by the given client.
func NewFirestoreStore(client *firestore.Client, logger *zap.Logger) *FirestoreStore {
	if client == nil {
		panic("FirestoreStore requires a non-nil firestore client")
	}
	return &FirestoreStore{client: client, logger: logger}
}

// Wire representations. Foreign keys are stored as plain strings; the tagged
// EntityID values on the models are reconstructed on read.

type vaultDoc struct {
	OwnerID   string    `firestore:"ownerId"`
	Name      string    `firestore:"name"`
	CreatedAt time.Time `firestore:"createdAt"`
	EditedAt  time.Time `firestore:"editedAt"`
}

type collectionDoc struct {
	VaultID   string    `firestore:"vaultId"`
	OwnerID   string    `firestore:"ownerId"`
	Name      string    `firestore:"name"`
	CreatedAt time.Time `firestore:"createdAt"`
	EditedAt  time.Time `firestore:"editedAt"`
}

type assetDoc struct {
	CollectionID   string    `firestore:"collectionId"`
	VaultID        string    `firestore:"vaultId"`
	OwnerID        string    `firestore:"ownerId"`
	Title          string    `firestore:"title"`
	Category       string    `firestore:"category,omitempty"`
	Quantity       int64     `firestore:"quantity"`
	EstimatedValue float64   `firestore:"estimatedValue"`
	CreatedAt      time.Time `firestore:"createdAt"`
	EditedAt       time.Time `firestore:"editedAt"`
}

type membershipDoc struct {
	UserID               string `firestore:"userId"`
	VaultID              string `firestore:"vaultId"`
	Role                 string `firestore:"role"`
	Status               string `firestore:"status"`
	CanCreateCollections bool   `firestore:"canCreateCollections"`
	CanCreateAssets      bool   `firestore:"canCreateAssets"`
}

type invitationDoc struct {
	VaultID      string    `firestore:"vaultId"`
	Code         string    `firestore:"code"`
	TargetUserID string    `firestore:"targetUserId"`
	Role         string    `firestore:"role"`
	Status       string    `firestore:"status"`
	CreatedAt    time.Time `firestore:"createdAt"`
}

func wrapFirestoreErr(op string, err error) error {
	if status.Code(err) == codes.NotFound {
		return fmt.Errorf("%s: %w", op, ErrNotFound)
	}
	return fmt.Errorf("%s: %w", op, err)
}

// --- Creates ---

func (s *FirestoreStore) CreateVault(ctx context.Context, vault *models.Vault) (string, error) {
	docRef := s.client.Collection(vaultsCollection).NewDoc()
	doc := vaultDoc{
		OwnerID:   vault.OwnerID,
		Name:      vault.Name,
		CreatedAt: vault.CreatedAt,
		EditedAt:  vault.EditedAt,
	}
	if _, err := docRef.Create(ctx, doc); err != nil {
		return "", fmt.Errorf("failed to create vault: %w", err)
	}
	return docRef.ID, nil
}

func (s *FirestoreStore) CreateCollection(ctx context.Context, collection *models.Collection) (string, error) {
	docRef := s.client.Collection(collectionsCollection).NewDoc()
	doc := collectionDoc{
		VaultID:   collection.VaultID.String(),
		OwnerID:   collection.OwnerID,
		Name:      collection.Name,
		CreatedAt: collection.CreatedAt,
		EditedAt:  collection.EditedAt,
	}
	if _, err := docRef.Create(ctx, doc); err != nil {
		return "", fmt.Errorf("failed to create collection: %w", err)
	}
	return docRef.ID, nil
}

func (s *FirestoreStore) CreateAsset(ctx context.Context, asset *models.Asset) (string, error) {
	docRef := s.client.Collection(assetsCollection).NewDoc()
	doc := assetDoc{
		CollectionID:   asset.CollectionID.String(),
		VaultID:        asset.VaultID.String(),
		OwnerID:        asset.OwnerID,
		Title:          asset.Title,
		Category:       asset.Category,
		Quantity:       asset.Quantity,
		EstimatedValue: asset.EstimatedValue,
		CreatedAt:      asset.CreatedAt,
		EditedAt:       asset.EditedAt,
	}
	if _, err := docRef.Create(ctx, doc); err != nil {
		return "", fmt.Errorf("failed to create asset: %w", err)
	}
	return docRef.ID, nil
}

// --- Guarded updates ---

// guardedUpdate applies updates to a document inside a transaction, first
// comparing the stored editedAt watermark against the caller's expectation.
// A mismatch means a concurrent edit won; the write is rejected with
// ErrStaleWrite instead of silently overwriting it.
func (s *FirestoreStore) guardedUpdate(ctx context.Context, ref *firestore.DocumentRef, expectedEditedAt time.Time, updates []firestore.Update) error {
	err := s.client.RunTransaction(ctx, func(ctx context.Context, tx *firestore.Transaction) error {
		snap, err := tx.Get(ref)
		if err != nil {
			return err
		}
		stored, err := snap.DataAt("editedAt")
		if err != nil {
			return fmt.Errorf("failed to read editedAt watermark: %w", err)
		}
		storedAt, ok := stored.(time.Time)
		if !ok || !storedAt.Equal(expectedEditedAt) {
			return ErrStaleWrite
		}
		updates = append(updates, firestore.Update{Path: "editedAt", Value: time.Now().UTC()})
		return tx.Update(ref, updates)
	})
	if err != nil {
		if errors.Is(err, ErrStaleWrite) {
			return ErrStaleWrite
		}
		return wrapFirestoreErr("guarded update", err)
	}
	return nil
}

func (s *FirestoreStore) UpdateVault(ctx context.Context, vaultID string, patch models.UpdateVaultRequest, expectedEditedAt time.Time) error {
	var updates []firestore.Update
	if patch.Name != nil {
		updates = append(updates, firestore.Update{Path: "name", Value: *patch.Name})
	}
	if len(updates) == 0 {
		return nil
	}
	ref := s.client.Collection(vaultsCollection).Doc(vaultID)
	return s.guardedUpdate(ctx, ref, expectedEditedAt, updates)
}

func (s *FirestoreStore) UpdateCollection(ctx context.Context, collectionID string, patch models.UpdateCollectionRequest, expectedEditedAt time.Time) error {
	var updates []firestore.Update
	if patch.Name != nil {
		updates = append(updates, firestore.Update{Path: "name", Value: *patch.Name})
	}
	if len(updates) == 0 {
		return nil
	}
	ref := s.client.Collection(collectionsCollection).Doc(collectionID)
	return s.guardedUpdate(ctx, ref, expectedEditedAt, updates)
}

func (s *FirestoreStore) UpdateAsset(ctx context.Context, assetID string, patch models.UpdateAssetRequest, expectedEditedAt time.Time) error {
	var updates []firestore.Update
	if patch.Title != nil {
		updates = append(updates, firestore.Update{Path: "title", Value: *patch.Title})
	}
	if patch.Category != nil {
		updates = append(updates, firestore.Update{Path: "category", Value: *patch.Category})
	}
	if patch.Quantity != nil {
		updates = append(updates, firestore.Update{Path: "quantity", Value: *patch.Quantity})
	}
	if patch.EstimatedValue != nil {
		updates = append(updates, firestore.Update{Path: "estimatedValue", Value: *patch.EstimatedValue})
	}
	if len(updates) == 0 {
		return nil
	}
	ref := s.client.Collection(assetsCollection).Doc(assetID)
	return s.guardedUpdate(ctx, ref, expectedEditedAt, updates)
}

// --- Moves ---

// MoveCollection re-homes a collection into another vault. The denormalized
// vaultId on every contained asset is rewritten in the same transaction so
// the asset.vaultId == collection.vaultId invariant never breaks.
func (s *FirestoreStore) MoveCollection(ctx context.Context, collectionID, targetVaultID string) error {
	err := s.client.RunTransaction(ctx, func(ctx context.Context, tx *firestore.Transaction) error {
		colRef := s.client.Collection(collectionsCollection).Doc(collectionID)
		if _, err := tx.Get(colRef); err != nil {
			return err
		}
		if _, err := tx.Get(s.client.Collection(vaultsCollection).Doc(targetVaultID)); err != nil {
			return err
		}

		assetQuery := s.client.Collection(assetsCollection).Where("collectionId", "==", collectionID)
		assetSnaps, err := tx.Documents(assetQuery).GetAll()
		if err != nil {
			return fmt.Errorf("failed to load assets of collection '%s': %w", collectionID, err)
		}

		now := time.Now().UTC()
		if err := tx.Update(colRef, []firestore.Update{
			{Path: "vaultId", Value: targetVaultID},
			{Path: "editedAt", Value: now},
		}); err != nil {
			return err
		}
		for _, snap := range assetSnaps {
			if err := tx.Update(snap.Ref, []firestore.Update{
				{Path: "vaultId", Value: targetVaultID},
			}); err != nil {
				return err
			}
		}
		return nil
	})
	if err != nil {
		return wrapFirestoreErr(fmt.Sprintf("move collection '%s'", collectionID), err)
	}
	return nil
}

// MoveAsset re-homes an asset into another collection, verifying that the
// destination collection actually belongs to the destination vault.
func (s *FirestoreStore) MoveAsset(ctx context.Context, assetID, targetVaultID, targetCollectionID string) error {
	err := s.client.RunTransaction(ctx, func(ctx context.Context, tx *firestore.Transaction) error {
		assetRef := s.client.Collection(assetsCollection).Doc(assetID)
		if _, err := tx.Get(assetRef); err != nil {
			return err
		}
		colSnap, err := tx.Get(s.client.Collection(collectionsCollection).Doc(targetCollectionID))
		if err != nil {
			return err
		}
		var col collectionDoc
		if err := colSnap.DataTo(&col); err != nil {
			return fmt.Errorf("failed to decode target collection '%s': %w", targetCollectionID, err)
		}
		if col.VaultID != targetVaultID {
			return fmt.Errorf("target collection '%s' does not belong to vault '%s'", targetCollectionID, targetVaultID)
		}

		return tx.Update(assetRef, []firestore.Update{
			{Path: "collectionId", Value: targetCollectionID},
			{Path: "vaultId", Value: targetVaultID},
			{Path: "editedAt", Value: time.Now().UTC()},
		})
	})
	if err != nil {
		return wrapFirestoreErr(fmt.Sprintf("move asset '%s'", assetID), err)
	}
	return nil
}

// --- Deletes ---

func (s *FirestoreStore) DeleteAsset(ctx context.Context, assetID string) error {
	_, err := s.client.Collection(assetsCollection).Doc(assetID).Delete(ctx, firestore.Exists)
	if err != nil {
		return wrapFirestoreErr(fmt.Sprintf("delete asset '%s'", assetID), err)
	}
	return nil
}

// --- Subscriptions ---

func (s *FirestoreStore) SubscribeVaultCollections(ctx context.Context, vaultID string, onChange CollectionsHandler) (Unsubscribe, error) {
	subCtx, cancel := context.WithCancel(ctx)
	query := s.client.Collection(collectionsCollection).Where("vaultId", "==", vaultID)
	snapIter := query.Snapshots(subCtx)

	go func() {
		defer snapIter.Stop()
		for {
			snap, err := snapIter.Next()
			if err != nil {
				if status.Code(err) != codes.Canceled {
					s.logger.Warn("collection subscription terminated",
						zap.String("vaultId", vaultID), zap.Error(err))
				}
				return
			}
			collections, err := decodeCollections(snap.Documents)
			if err != nil {
				s.logger.Warn("failed to decode collection snapshot",
					zap.String("vaultId", vaultID), zap.Error(err))
				continue
			}
			onChange(vaultID, collections)
		}
	}()

	return func() { cancel() }, nil
}

func (s *FirestoreStore) SubscribeVaultAssets(ctx context.Context, vaultID string, onChange AssetsHandler) (Unsubscribe, error) {
	subCtx, cancel := context.WithCancel(ctx)
	query := s.client.Collection(assetsCollection).Where("vaultId", "==", vaultID)
	snapIter := query.Snapshots(subCtx)

	go func() {
		defer snapIter.Stop()
		for {
			snap, err := snapIter.Next()
			if err != nil {
				if status.Code(err) != codes.Canceled {
					s.logger.Warn("asset subscription terminated",
						zap.String("vaultId", vaultID), zap.Error(err))
				}
				return
			}
			assets, err := decodeAssets(snap.Documents)
			if err != nil {
				s.logger.Warn("failed to decode asset snapshot",
					zap.String("vaultId", vaultID), zap.Error(err))
				continue
			}
			onChange(vaultID, assets)
		}
	}()

	return func() { cancel() }, nil
}

func decodeCollections(iter *firestore.DocumentIterator) ([]models.Collection, error) {
	var out []models.Collection
	for {
		doc, err := iter.Next()
		if err == iterator.Done {
			return out, nil
		}
		if err != nil {
			return nil, err
		}
		var wire collectionDoc
		if err := doc.DataTo(&wire); err != nil {
			return nil, fmt.Errorf("collection '%s': %w", doc.Ref.ID, err)
		}
		out = append(out, models.Collection{
			ID:        models.ConfirmedID(doc.Ref.ID),
			VaultID:   models.ConfirmedID(wire.VaultID),
			OwnerID:   wire.OwnerID,
			Name:      wire.Name,
			CreatedAt: wire.CreatedAt,
			EditedAt:  wire.EditedAt,
		})
	}
}

func decodeAssets(iter *firestore.DocumentIterator) ([]models.Asset, error) {
	var out []models.Asset
	for {
		doc, err := iter.Next()
		if err == iterator.Done {
			return out, nil
		}
		if err != nil {
			return nil, err
		}
		var wire assetDoc
		if err := doc.DataTo(&wire); err != nil {
			return nil, fmt.Errorf("asset '%s': %w", doc.Ref.ID, err)
		}
		out = append(out, models.Asset{
			ID:             models.ConfirmedID(doc.Ref.ID),
			CollectionID:   models.ConfirmedID(wire.CollectionID),
			VaultID:        models.ConfirmedID(wire.VaultID),
			OwnerID:        wire.OwnerID,
			Title:          wire.Title,
			Category:       wire.Category,
			Quantity:       wire.Quantity,
			EstimatedValue: wire.EstimatedValue,
			CreatedAt:      wire.CreatedAt,
			EditedAt:       wire.EditedAt,
		})
	}
}

// --- Role and delegation lookups ---

func (s *FirestoreStore) GetVault(ctx context.Context, vaultID string) (*models.Vault, error) {
	snap, err := s.client.Collection(vaultsCollection).Doc(vaultID).Get(ctx)
	if err != nil {
		return nil, wrapFirestoreErr(fmt.Sprintf("get vault '%s'", vaultID), err)
	}
	var wire vaultDoc
	if err := snap.DataTo(&wire); err != nil {
		return nil, fmt.Errorf("failed to decode vault '%s': %w", vaultID, err)
	}
	return &models.Vault{
		ID:        models.ConfirmedID(snap.Ref.ID),
		OwnerID:   wire.OwnerID,
		Name:      wire.Name,
		CreatedAt: wire.CreatedAt,
		EditedAt:  wire.EditedAt,
	}, nil
}

func (s *FirestoreStore) activeMembership(ctx context.Context, vaultID, userID string) (*membershipDoc, error) {
	iter := s.client.Collection(membershipsCollection).
		Where("vaultId", "==", vaultID).
		Where("userId", "==", userID).
		Where("status", "==", models.MembershipActive).
		Limit(1).
		Documents(ctx)
	defer iter.Stop()

	doc, err := iter.Next()
	if err == iterator.Done {
		return nil, nil
	}
	if err != nil {
		return nil, fmt.Errorf("failed to query membership (vault '%s', user '%s'): %w", vaultID, userID, err)
	}
	var wire membershipDoc
	if err := doc.DataTo(&wire); err != nil {
		return nil, fmt.Errorf("failed to decode membership '%s': %w", doc.Ref.ID, err)
	}
	return &wire, nil
}

func (s *FirestoreStore) GetRoleForVault(ctx context.Context, vaultID, userID string) (string, error) {
	vault, err := s.GetVault(ctx, vaultID)
	if err != nil {
		return "", err
	}
	if vault.OwnerID == userID {
		return string(access.RoleOwner), nil
	}
	membership, err := s.activeMembership(ctx, vaultID, userID)
	if err != nil {
		return "", err
	}
	if membership == nil {
		return "", nil
	}
	return membership.Role, nil
}

func (s *FirestoreStore) CanCreateCollectionsInVault(ctx context.Context, vaultID, userID string) (bool, error) {
	vault, err := s.GetVault(ctx, vaultID)
	if err != nil {
		return false, err
	}
	if vault.OwnerID == userID {
		return true, nil
	}
	membership, err := s.activeMembership(ctx, vaultID, userID)
	if err != nil {
		return false, err
	}
	return membership != nil && membership.CanCreateCollections, nil
}

func (s *FirestoreStore) CanCreateAssetsInCollection(ctx context.Context, collectionID, userID string) (bool, error) {
	snap, err := s.client.Collection(collectionsCollection).Doc(collectionID).Get(ctx)
	if err != nil {
		return false, wrapFirestoreErr(fmt.Sprintf("get collection '%s'", collectionID), err)
	}
	var wire collectionDoc
	if err := snap.DataTo(&wire); err != nil {
		return false, fmt.Errorf("failed to decode collection '%s': %w", collectionID, err)
	}
	if wire.OwnerID == userID {
		return true, nil
	}
	membership, err := s.activeMembership(ctx, wire.VaultID, userID)
	if err != nil {
		return false, err
	}
	return membership != nil && membership.CanCreateAssets, nil
}

func (s *FirestoreStore) ListMemberships(ctx context.Context, userID string) ([]models.Membership, error) {
	iter := s.client.Collection(membershipsCollection).
		Where("userId", "==", userID).
		Where("status", "==", models.MembershipActive).
		Documents(ctx)
	defer iter.Stop()

	var out []models.Membership
	for {
		doc, err := iter.Next()
		if err == iterator.Done {
			return out, nil
		}
		if err != nil {
			return nil, fmt.Errorf("failed to list memberships for user '%s': %w", userID, err)
		}
		var wire membershipDoc
		if err := doc.DataTo(&wire); err != nil {
			return nil, fmt.Errorf("failed to decode membership '%s': %w", doc.Ref.ID, err)
		}
		out = append(out, models.Membership{
			ID:                   models.ConfirmedID(doc.Ref.ID),
			UserID:               wire.UserID,
			VaultID:              models.ConfirmedID(wire.VaultID),
			Role:                 wire.Role,
			Status:               wire.Status,
			CanCreateCollections: wire.CanCreateCollections,
			CanCreateAssets:      wire.CanCreateAssets,
		})
	}
}

// --- Invitations ---

func (s *FirestoreStore) ListMyInvitations(ctx context.Context, userID string) ([]models.Invitation, error) {
	iter := s.client.Collection(invitationsCollection).
		Where("targetUserId", "==", userID).
		Where("status", "==", models.InvitationPending).
		Documents(ctx)
	defer iter.Stop()

	var out []models.Invitation
	for {
		doc, err := iter.Next()
		if err == iterator.Done {
			return out, nil
		}
		if err != nil {
			return nil, fmt.Errorf("failed to list invitations for user '%s': %w", userID, err)
		}
		var wire invitationDoc
		if err := doc.DataTo(&wire); err != nil {
			return nil, fmt.Errorf("failed to decode invitation '%s': %w", doc.Ref.ID, err)
		}
		out = append(out, models.Invitation{
			ID:           models.ConfirmedID(doc.Ref.ID),
			VaultID:      models.ConfirmedID(wire.VaultID),
			Code:         wire.Code,
			TargetUserID: wire.TargetUserID,
			Role:         wire.Role,
			Status:       wire.Status,
			CreatedAt:    wire.CreatedAt,
		})
	}
}

func (s *FirestoreStore) pendingInvitationByCode(ctx context.Context, userID, code string) (*firestore.DocumentSnapshot, error) {
	iter := s.client.Collection(invitationsCollection).
		Where("code", "==", code).
		Where("targetUserId", "==", userID).
		Where("status", "==", models.InvitationPending).
		Limit(1).
		Documents(ctx)
	defer iter.Stop()

	doc, err := iter.Next()
	if err == iterator.Done {
		return nil, fmt.Errorf("invitation code '%s': %w", code, ErrNotFound)
	}
	if err != nil {
		return nil, fmt.Errorf("failed to look up invitation code '%s': %w", code, err)
	}
	return doc, nil
}

// AcceptInvitationCode marks the invitation accepted and creates the ACTIVE
// membership in one transaction.
func (s *FirestoreStore) AcceptInvitationCode(ctx context.Context, userID, code string) error {
	snap, err := s.pendingInvitationByCode(ctx, userID, code)
	if err != nil {
		return err
	}
	var wire invitationDoc
	if err := snap.DataTo(&wire); err != nil {
		return fmt.Errorf("failed to decode invitation '%s': %w", snap.Ref.ID, err)
	}

	err = s.client.RunTransaction(ctx, func(ctx context.Context, tx *firestore.Transaction) error {
		if err := tx.Update(snap.Ref, []firestore.Update{
			{Path: "status", Value: models.InvitationAccepted},
		}); err != nil {
			return err
		}
		membershipRef := s.client.Collection(membershipsCollection).NewDoc()
		return tx.Create(membershipRef, membershipDoc{
			UserID:  userID,
			VaultID: wire.VaultID,
			Role:    wire.Role,
			Status:  models.MembershipActive,
		})
	})
	if err != nil {
		return wrapFirestoreErr(fmt.Sprintf("accept invitation '%s'", code), err)
	}
	return nil
}

func (s *FirestoreStore) DenyInvitationCode(ctx context.Context, userID, code string) error {
	snap, err := s.pendingInvitationByCode(ctx, userID, code)
	if err != nil {
		return err
	}
	if _, err := snap.Ref.Update(ctx, []firestore.Update{
		{Path: "status", Value: models.InvitationDenied},
	}); err != nil {
		return wrapFirestoreErr(fmt.Sprintf("deny invitation '%s'", code), err)
	}
	return nil
}
