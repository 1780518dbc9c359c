package domain

import "time"

// Label is a user-defined tag attachable to members, many-to-many.
// Name keeps its display casing; uniqueness within a member's label set is
// enforced case-insensitively before persistence.
type Label struct {
	ID   string `json:"id" db:"id"`
	Name string `json:"name" db:"name"`

	// MemberCount is a read-model field populated by list queries only.
	MemberCount int `json:"member_count,omitempty" db:"-"`

	CreatedAt time.Time `json:"created_at" db:"created_at"`
	UpdatedAt time.Time `json:"updated_at" db:"updated_at"`
}
