package models

import "time"

// Invitation statuses.
const (
	InvitationPending  = "PENDING"
	InvitationAccepted = "ACCEPTED"
	InvitationDenied   = "DENIED"
)

// Invitation is an offer of membership on a vault, addressed to a user and
// redeemed by code. Acceptance creates the ACTIVE membership.
type Invitation struct {
	ID           EntityID  `json:"id" firestore:"-"`
	VaultID      EntityID  `json:"vaultId" firestore:"-"`
	Code         string    `json:"code" firestore:"code"`
	TargetUserID string    `json:"targetUserId" firestore:"targetUserId"`
	Role         string    `json:"role" firestore:"role"`
	Status       string    `json:"status" firestore:"status"`
	CreatedAt    time.Time `json:"createdAt" firestore:"createdAt"`
}
