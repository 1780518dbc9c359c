package domain

import "time"

// SubscribeEventSourceMember marks subscribe events reconstructed from the
// member snapshot by the backfill migration.
const SubscribeEventSourceMember = "member"

// SubscribeEvent is one immutable row of the subscription-state change log.
// Rows are append-only; MemberID is deliberately not a foreign key so the
// log survives member deletion and bulk backfills stay cheap.
type SubscribeEvent struct {
	ID         string    `json:"id" db:"id"`
	MemberID   string    `json:"member_id" db:"member_id"`
	Subscribed bool      `json:"subscribed" db:"subscribed"`
	Source     *string   `json:"source" db:"source"`
	CreatedAt  time.Time `json:"created_at" db:"created_at"`
}
