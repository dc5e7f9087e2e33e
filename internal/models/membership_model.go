package models

// Membership statuses. A user has at most one ACTIVE membership per vault.
const (
	MembershipActive  = "ACTIVE"
	MembershipPending = "PENDING"
	MembershipDenied  = "DENIED"
)

// Membership grants a non-owner user a role on a vault. Vault ownership is a
// distinct relation (Vault.OwnerID) and always outranks the membership role.
type Membership struct {
	ID      EntityID `json:"id" firestore:"-"`
	UserID  string   `json:"userId" firestore:"userId"`
	VaultID EntityID `json:"vaultId" firestore:"-"`
	Role    string   `json:"role" firestore:"role"`
	Status  string   `json:"status" firestore:"status"`
	// Server-side delegation flags. The capability resolver echoes these;
	// it never derives them from rank.
	CanCreateCollections bool `json:"canCreateCollections" firestore:"canCreateCollections"`
	CanCreateAssets      bool `json:"canCreateAssets" firestore:"canCreateAssets"`
}
