package models

import "time"

// Asset is a tracked item record. It belongs to exactly one collection at a
// time; VaultID is denormalized from the owning collection for fast lookup
// and total-value queries, and must always match that collection's VaultID.
type Asset struct {
	ID           EntityID  `json:"id" firestore:"-"` // Document ID, auto-generated
	CollectionID EntityID  `json:"collectionId" firestore:"-"`
	VaultID      EntityID  `json:"vaultId" firestore:"-"`
	OwnerID      string    `json:"ownerId" firestore:"ownerId"`
	Title        string    `json:"title" firestore:"title"`
	Category     string    `json:"category,omitempty" firestore:"category,omitempty"`
	Quantity     int64     `json:"quantity" firestore:"quantity"`
	// EstimatedValue is the user's own estimate, in their display currency.
	EstimatedValue float64   `json:"estimatedValue" firestore:"estimatedValue"`
	CreatedAt      time.Time `json:"createdAt" firestore:"createdAt"`
	EditedAt       time.Time `json:"editedAt" firestore:"editedAt"`
}
