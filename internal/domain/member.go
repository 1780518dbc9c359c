package domain

import (
	"regexp"
	"strings"
	"time"
)

// MemberStatus enumerates the billing states a member can be in.
type MemberStatus string

const (
	MemberFree   MemberStatus = "free"
	MemberPaid   MemberStatus = "paid"
	MemberComped MemberStatus = "comped"
)

// Valid reports whether s is a known member status.
func (s MemberStatus) Valid() bool {
	switch s {
	case MemberFree, MemberPaid, MemberComped:
		return true
	}
	return false
}

// Member represents a single subscriber of the audience.
//
// ID and UUID are both immutable after creation: ID is the internal
// identifier (lexicographically sortable by creation time), UUID is the
// external-facing one handed to integrations.
type Member struct {
	ID         string       `json:"id" db:"id"`
	UUID       string       `json:"uuid" db:"uuid"`
	Email      string       `json:"email" db:"email"`
	Name       string       `json:"name" db:"name"`
	Status     MemberStatus `json:"status" db:"status"`
	Subscribed bool         `json:"subscribed" db:"subscribed"`

	EmailCount       int      `json:"email_count" db:"email_count"`
	EmailOpenedCount int      `json:"email_opened_count" db:"email_opened_count"`
	EmailOpenRate    *float64 `json:"email_open_rate" db:"email_open_rate"`

	// AvatarImage is derived at read time from the email address and is
	// never stored. Nil when gravatar lookups are disabled by privacy
	// configuration.
	AvatarImage *string `json:"avatar_image" db:"-"`

	Labels []Label `json:"labels" db:"-"`

	CreatedAt time.Time `json:"created_at" db:"created_at"`
	UpdatedAt time.Time `json:"updated_at" db:"updated_at"`
}

var emailPattern = regexp.MustCompile(`^[a-zA-Z0-9._%+\-]+@[a-zA-Z0-9.\-]+\.[a-zA-Z]{2,}$`)

// ValidateEmail reports whether the given address looks like a deliverable
// email. This is a sanity check, not full RFC 5322 validation.
func ValidateEmail(email string) bool {
	if email == "" || len(email) > 254 {
		return false
	}
	local := strings.SplitN(email, "@", 2)[0]
	if len(local) > 64 {
		return false
	}
	return emailPattern.MatchString(email)
}
