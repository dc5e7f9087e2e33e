package models

import (
	"encoding/json"

	"github.com/google/uuid"
)

// ProvisionalPrefix marks locally generated identifiers in logs and wire
// output. Code must never branch on the prefix; provisional-ness is carried
// by the EntityID tag itself.
const ProvisionalPrefix = "tmp_"

// EntityID is a tagged identifier: either a provisional id minted locally
// for an entity the remote store has not confirmed yet, or a confirmed
// server-assigned document id. The zero value is an empty confirmed id.
type EntityID struct {
	value       string
	provisional bool
}

// NewProvisionalID mints a fresh provisional identifier.
func NewProvisionalID() EntityID {
	return EntityID{value: ProvisionalPrefix + uuid.NewString(), provisional: true}
}

// ConfirmedID wraps a server-assigned identifier.
func ConfirmedID(id string) EntityID {
	return EntityID{value: id}
}

// String returns the raw identifier value.
func (id EntityID) String() string { return id.value }

// IsProvisional reports whether the identifier is still awaiting promotion.
func (id EntityID) IsProvisional() bool { return id.provisional }

// IsZero reports whether the identifier is empty.
func (id EntityID) IsZero() bool { return id.value == "" }

// Equals compares identifiers by value, ignoring the provisional tag, so a
// consumer holding a pre-promotion id still matches the promoted entity.
func (id EntityID) Equals(other EntityID) bool { return id.value == other.value }

// MarshalJSON emits the raw identifier string.
func (id EntityID) MarshalJSON() ([]byte, error) {
	return json.Marshal(id.value)
}

// UnmarshalJSON restores the raw value. Identifiers arriving over the wire
// are treated as confirmed; the sync manager re-tags ones it recognizes as
// its own provisional entries.
func (id *EntityID) UnmarshalJSON(data []byte) error {
	var v string
	if err := json.Unmarshal(data, &v); err != nil {
		return err
	}
	*id = EntityID{value: v}
	return nil
}
