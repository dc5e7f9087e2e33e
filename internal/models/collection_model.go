package models

import "time"

// Collection is a named grouping of assets. It belongs to exactly one vault
// at a time; OwnerID is inherited from the owning vault.
type Collection struct {
	ID        EntityID  `json:"id" firestore:"-"` // Document ID, auto-generated
	VaultID   EntityID  `json:"vaultId" firestore:"-"`
	OwnerID   string    `json:"ownerId" firestore:"ownerId"`
	Name      string    `json:"name" firestore:"name"`
	CreatedAt time.Time `json:"createdAt" firestore:"createdAt"`
	EditedAt  time.Time `json:"editedAt" firestore:"editedAt"`
}
