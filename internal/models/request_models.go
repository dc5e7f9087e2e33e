package models

// CreateVaultRequest is the payload for creating a new vault.
type CreateVaultRequest struct {
	Name string `json:"name" binding:"required"`
}

// CreateCollectionRequest is the payload for creating a collection in a vault.
type CreateCollectionRequest struct {
	Name string `json:"name" binding:"required"`
}

// CreateAssetRequest is the payload for creating an asset in a collection.
type CreateAssetRequest struct {
	Title          string  `json:"title" binding:"required"`
	Category       string  `json:"category,omitempty"`
	Quantity       int64   `json:"quantity"`
	EstimatedValue float64 `json:"estimatedValue"`
}

// UpdateVaultRequest is a partial vault edit. Pointers distinguish fields to
// update from fields left untouched.
type UpdateVaultRequest struct {
	Name *string `json:"name,omitempty"`
}

// UpdateCollectionRequest is a partial collection edit.
type UpdateCollectionRequest struct {
	Name *string `json:"name,omitempty"`
}

// UpdateAssetRequest is a partial asset edit.
type UpdateAssetRequest struct {
	Title          *string  `json:"title,omitempty"`
	Category       *string  `json:"category,omitempty"`
	Quantity       *int64   `json:"quantity,omitempty"`
	EstimatedValue *float64 `json:"estimatedValue,omitempty"`
}

// MoveCollectionRequest carries a cross-vault collection move.
type MoveCollectionRequest struct {
	TargetVaultID string `json:"targetVaultId" binding:"required"`
}

// MoveAssetRequest carries a cross-container asset move.
type MoveAssetRequest struct {
	TargetVaultID      string `json:"targetVaultId" binding:"required"`
	TargetCollectionID string `json:"targetCollectionId" binding:"required"`
}
