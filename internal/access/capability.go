package access

// VaultCapabilities is the resolved capability record for a principal at a
// vault. CanCreateCollections is echoed from the server-side delegation
// flag, never derived from rank.
type VaultCapabilities struct {
	Role                 Role `json:"role"`
	CanEdit              bool `json:"canEdit"`
	CanMove              bool `json:"canMove"`
	CanClone             bool `json:"canClone"`
	CanDelete            bool `json:"canDelete"`
	CanShare             bool `json:"canShare"`
	CanCreateCollections bool `json:"canCreateCollections"`
}

// CollectionCapabilities is the capability record at a collection.
type CollectionCapabilities struct {
	Role            Role `json:"role"`
	CanEdit         bool `json:"canEdit"`
	CanMove         bool `json:"canMove"`
	CanClone        bool `json:"canClone"`
	CanDelete       bool `json:"canDelete"`
	CanShare        bool `json:"canShare"`
	CanCreateAssets bool `json:"canCreateAssets"`
}

// AssetCapabilities is the capability record at an asset. Sharing an asset is
// permitted from manager up, the one asymmetry against vault and collection
// where sharing is owner-only.
type AssetCapabilities struct {
	Role      Role `json:"role"`
	CanEdit   bool `json:"canEdit"`
	CanMove   bool `json:"canMove"`
	CanClone  bool `json:"canClone"`
	CanDelete bool `json:"canDelete"`
	CanShare  bool `json:"canShare"`
}

// ForVault resolves capabilities at the vault level.
func ForVault(role Role, canCreateCollections bool) VaultCapabilities {
	return VaultCapabilities{
		Role:                 role,
		CanEdit:              role.AtLeast(RoleEditor),
		CanMove:              role.AtLeast(RoleManager),
		CanClone:             role.AtLeast(RoleManager),
		CanDelete:            role.AtLeast(RoleOwner),
		CanShare:             role.AtLeast(RoleOwner),
		CanCreateCollections: canCreateCollections,
	}
}

// ForCollection resolves capabilities at the collection level.
func ForCollection(role Role, canCreateAssets bool) CollectionCapabilities {
	return CollectionCapabilities{
		Role:            role,
		CanEdit:         role.AtLeast(RoleEditor),
		CanMove:         role.AtLeast(RoleManager),
		CanClone:        role.AtLeast(RoleManager),
		CanDelete:       role.AtLeast(RoleOwner),
		CanShare:        role.AtLeast(RoleOwner),
		CanCreateAssets: canCreateAssets,
	}
}

// ForAsset resolves capabilities at the asset level.
func ForAsset(role Role) AssetCapabilities {
	return AssetCapabilities{
		Role:      role,
		CanEdit:   role.AtLeast(RoleEditor),
		CanMove:   role.AtLeast(RoleManager),
		CanClone:  role.AtLeast(RoleManager),
		CanDelete: role.AtLeast(RoleOwner),
		CanShare:  role.AtLeast(RoleManager),
	}
}
