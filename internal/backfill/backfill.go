// Package backfill reconstructs the subscription event log from the member
// snapshot table.
//
// The migration runs once, after the members_subscribe_events table exists
// but before the lifecycle engine starts appending live events: Forward
// synthesizes the history the snapshot model never kept, Backward is its
// inverse. Reverting discards the whole log, including any live events
// appended after the backfill ran; there is no selective rollback.
package backfill

import (
	"context"
	"database/sql"
	"fmt"
	"strings"
	"time"

	"github.com/ignite/audience-hub/internal/domain"
	"github.com/ignite/audience-hub/internal/member"
	"github.com/ignite/audience-hub/internal/pkg/ids"
	"github.com/ignite/audience-hub/internal/pkg/logger"
)

// eventColumns is the number of bound parameters per inserted event row.
const eventColumns = 5

// DefaultMaxBindParams is the bound-parameter ceiling assumed when the
// storage config doesn't supply one (the Postgres protocol limit).
const DefaultMaxBindParams = 65535

// Backfill migrates the members_subscribe_events table forward and
// backward. Batch size is derived from the storage engine's bind-parameter
// ceiling so the chunking logic stays engine-agnostic.
type Backfill struct {
	db        *sql.DB
	batchRows int
}

// New creates a backfill sized for a storage engine allowing at most
// maxBindParams bound parameters per statement. Zero or negative means
// DefaultMaxBindParams.
func New(db *sql.DB, maxBindParams int) *Backfill {
	if maxBindParams <= 0 {
		maxBindParams = DefaultMaxBindParams
	}
	rows := maxBindParams / eventColumns
	if rows < 1 {
		rows = 1
	}
	return &Backfill{db: db, batchRows: rows}
}

// BatchRows returns the number of event rows inserted per statement.
func (b *Backfill) BatchRows() int { return b.batchRows }

// Forward reconstructs the full event history from snapshot state: one
// subscribe event per member at its creation time (source "member"), plus
// one unsubscribe event at last-update time (source NULL) for members
// currently not subscribed. Subscribe events are written first, then
// unsubscribe events, not interleaved by timestamp. All chunks run in one
// transaction; any failure rolls the whole migration back.
//
// Returns the number of events written.
func (b *Backfill) Forward(ctx context.Context) (int, error) {
	var events []domain.SubscribeEvent

	err := member.RunInTx(ctx, b.db, nil, func(tx *sql.Tx) error {
		subscribed, err := readMemberTimes(ctx, tx, `SELECT id, created_at FROM members ORDER BY id`)
		if err != nil {
			return fmt.Errorf("read members: %w", err)
		}
		unsubscribed, err := readMemberTimes(ctx, tx, `SELECT id, updated_at FROM members WHERE subscribed = false ORDER BY id`)
		if err != nil {
			return fmt.Errorf("read unsubscribed members: %w", err)
		}

		source := domain.SubscribeEventSourceMember
		for _, mt := range subscribed {
			events = append(events, domain.SubscribeEvent{
				ID:         ids.New(),
				MemberID:   mt.id,
				Subscribed: true,
				Source:     &source,
				CreatedAt:  mt.at,
			})
		}
		for _, mt := range unsubscribed {
			events = append(events, domain.SubscribeEvent{
				ID:         ids.New(),
				MemberID:   mt.id,
				Subscribed: false,
				CreatedAt:  mt.at,
			})
		}

		for _, batch := range chunk(events, b.batchRows) {
			if err := insertBatch(ctx, tx, batch); err != nil {
				return fmt.Errorf("insert event batch: %w", err)
			}
		}
		return nil
	})
	if err != nil {
		return 0, err
	}
	logger.Info("subscribe event backfill applied", "events", len(events), "batch_rows", b.batchRows)
	return len(events), nil
}

// Backward deletes every row of the event log unconditionally.
func (b *Backfill) Backward(ctx context.Context) (int64, error) {
	var deleted int64
	err := member.RunInTx(ctx, b.db, nil, func(tx *sql.Tx) error {
		res, err := tx.ExecContext(ctx, `DELETE FROM members_subscribe_events`)
		if err != nil {
			return fmt.Errorf("delete subscribe events: %w", err)
		}
		deleted, _ = res.RowsAffected()
		return nil
	})
	if err != nil {
		return 0, err
	}
	logger.Info("subscribe event backfill reverted", "events", deleted)
	return deleted, nil
}

type memberTime struct {
	id string
	at time.Time
}

func readMemberTimes(ctx context.Context, tx *sql.Tx, query string) ([]memberTime, error) {
	rows, err := tx.QueryContext(ctx, query)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var out []memberTime
	for rows.Next() {
		var mt memberTime
		if err := rows.Scan(&mt.id, &mt.at); err != nil {
			return nil, err
		}
		out = append(out, mt)
	}
	return out, rows.Err()
}

// chunk splits events into batches of at most size rows, preserving order.
func chunk(events []domain.SubscribeEvent, size int) [][]domain.SubscribeEvent {
	var out [][]domain.SubscribeEvent
	for len(events) > size {
		out = append(out, events[:size])
		events = events[size:]
	}
	if len(events) > 0 {
		out = append(out, events)
	}
	return out
}

// insertBatch writes one chunk as a single multi-row INSERT statement.
func insertBatch(ctx context.Context, tx *sql.Tx, batch []domain.SubscribeEvent) error {
	values := make([]string, len(batch))
	args := make([]interface{}, 0, len(batch)*eventColumns)
	for i, e := range batch {
		base := i * eventColumns
		values[i] = fmt.Sprintf("($%d, $%d, $%d, $%d, $%d)", base+1, base+2, base+3, base+4, base+5)
		args = append(args, e.ID, e.MemberID, e.Subscribed, e.Source, e.CreatedAt)
	}
	query := `INSERT INTO members_subscribe_events (id, member_id, subscribed, source, created_at) VALUES ` +
		strings.Join(values, ", ")
	_, err := tx.ExecContext(ctx, query, args...)
	return err
}
