package models

import "time"

// MaxNameLength bounds vault, collection and asset names. Enforced at the
// point of mutation, not merely at render time.
const MaxNameLength = 35

// Vault is the top of the ownership hierarchy. A vault is owned by exactly
// one user; delegates reach it through Membership records.
type Vault struct {
	ID        EntityID  `json:"id" firestore:"-"` // Document ID, auto-generated
	OwnerID   string    `json:"ownerId" firestore:"ownerId"`
	Name      string    `json:"name" firestore:"name"`
	CreatedAt time.Time `json:"createdAt" firestore:"createdAt"`
	// EditedAt is the last-modified watermark the conflict guard submits
	// with every edit.
	EditedAt time.Time `json:"editedAt" firestore:"editedAt"`
}
