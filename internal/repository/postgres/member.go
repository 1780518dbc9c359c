package postgres

import (
	"context"
	"database/sql"
	"fmt"
	"strings"

	"github.com/lib/pq"

	"github.com/ignite/audience-hub/internal/domain"
	"github.com/ignite/audience-hub/internal/member"
	"github.com/ignite/audience-hub/internal/pkg/ids"
)

// MemberRepo implements member.Repository against PostgreSQL.
type MemberRepo struct{ db *sql.DB }

// NewMemberRepo creates a Postgres-backed member repository.
func NewMemberRepo(db *sql.DB) *MemberRepo { return &MemberRepo{db: db} }

// querier is satisfied by both *sql.DB and *sql.Tx.
type querier interface {
	ExecContext(ctx context.Context, query string, args ...interface{}) (sql.Result, error)
	QueryContext(ctx context.Context, query string, args ...interface{}) (*sql.Rows, error)
	QueryRowContext(ctx context.Context, query string, args ...interface{}) *sql.Row
}

func (r *MemberRepo) q(tx *sql.Tx) querier {
	if tx != nil {
		return tx
	}
	return r.db
}

// mapErr translates driver errors into the service layer's sentinels.
func mapErr(err error) error {
	if err == sql.ErrNoRows {
		return member.ErrNotFound
	}
	if pqErr, ok := err.(*pq.Error); ok && pqErr.Code == "23505" {
		return fmt.Errorf("%w: %s", member.ErrConflict, pqErr.Constraint)
	}
	return err
}

const memberColumns = `id, uuid, email, name, status, subscribed,
		       email_count, email_opened_count, email_open_rate, created_at, updated_at`

func scanMember(row interface{ Scan(...interface{}) error }, m *domain.Member) error {
	return row.Scan(
		&m.ID, &m.UUID, &m.Email, &m.Name, &m.Status, &m.Subscribed,
		&m.EmailCount, &m.EmailOpenedCount, &m.EmailOpenRate, &m.CreatedAt, &m.UpdatedAt,
	)
}

func (r *MemberRepo) Get(ctx context.Context, tx *sql.Tx, id string) (*domain.Member, error) {
	m := &domain.Member{}
	err := scanMember(r.q(tx).QueryRowContext(ctx, `
		SELECT `+memberColumns+`
		FROM members
		WHERE id = $1
	`, id), m)
	if err == sql.ErrNoRows {
		return nil, member.ErrNotFound
	}
	if err != nil {
		return nil, fmt.Errorf("get member: %w", err)
	}
	return m, nil
}

func (r *MemberRepo) List(ctx context.Context, f member.ListFilter) ([]domain.Member, int, error) {
	limit := f.Limit
	if limit <= 0 {
		limit = 50
	}

	where := ""
	args := []interface{}{}
	idx := 1
	if f.Search != "" {
		where = fmt.Sprintf(" WHERE (name ILIKE $%d OR email ILIKE $%d)", idx, idx)
		args = append(args, "%"+f.Search+"%")
		idx++
	}

	var total int
	if err := r.db.QueryRowContext(ctx, `SELECT COUNT(*) FROM members`+where, args...).Scan(&total); err != nil {
		return nil, 0, fmt.Errorf("count members: %w", err)
	}

	q := `SELECT ` + memberColumns + ` FROM members` + where + orderClause(f)
	q += fmt.Sprintf(" LIMIT $%d OFFSET $%d", idx, idx+1)
	args = append(args, limit, f.Offset)

	rows, err := r.db.QueryContext(ctx, q, args...)
	if err != nil {
		return nil, 0, fmt.Errorf("list members: %w", err)
	}
	defer rows.Close()

	var out []domain.Member
	for rows.Next() {
		var m domain.Member
		if err := scanMember(rows, &m); err != nil {
			return nil, 0, fmt.Errorf("scan member: %w", err)
		}
		out = append(out, m)
	}
	return out, total, rows.Err()
}

// orderClause builds the ORDER BY for a list filter from a whitelist of
// sortable columns. Open-rate ordering keeps members without a rate last
// in both directions.
func orderClause(f member.ListFilter) string {
	col := f.OrderBy
	switch col {
	case member.OrderEmail, member.OrderName, member.OrderOpenRate:
	default:
		col = member.OrderCreatedAt
	}
	dir := "ASC"
	if f.Descending {
		dir = "DESC"
	}
	if col == member.OrderOpenRate {
		return fmt.Sprintf(" ORDER BY %s %s NULLS LAST, created_at DESC", col, dir)
	}
	return fmt.Sprintf(" ORDER BY %s %s", col, dir)
}

func (r *MemberRepo) Insert(ctx context.Context, tx *sql.Tx, m *domain.Member) error {
	_, err := r.q(tx).ExecContext(ctx, `
		INSERT INTO members (id, uuid, email, name, status, subscribed,
		                     email_count, email_opened_count, created_at, updated_at)
		VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9, $10)
	`, m.ID, m.UUID, m.Email, m.Name, m.Status, m.Subscribed,
		m.EmailCount, m.EmailOpenedCount, m.CreatedAt, m.UpdatedAt)
	if err != nil {
		return fmt.Errorf("insert member: %w", mapErr(err))
	}
	return nil
}

func (r *MemberRepo) Update(ctx context.Context, tx *sql.Tx, m *domain.Member) error {
	res, err := r.q(tx).ExecContext(ctx, `
		UPDATE members
		SET email = $2, name = $3, status = $4, subscribed = $5, updated_at = $6
		WHERE id = $1
	`, m.ID, m.Email, m.Name, m.Status, m.Subscribed, m.UpdatedAt)
	if err != nil {
		return fmt.Errorf("update member: %w", mapErr(err))
	}
	if n, _ := res.RowsAffected(); n == 0 {
		return member.ErrNotFound
	}
	return nil
}

func (r *MemberRepo) Delete(ctx context.Context, tx *sql.Tx, id string) error {
	// Association rows go via ON DELETE CASCADE; members_subscribe_events
	// carries no foreign key and is left untouched.
	res, err := r.q(tx).ExecContext(ctx, `DELETE FROM members WHERE id = $1`, id)
	if err != nil {
		return fmt.Errorf("delete member: %w", err)
	}
	if n, _ := res.RowsAffected(); n == 0 {
		return member.ErrNotFound
	}
	return nil
}

func (r *MemberRepo) Labels(ctx context.Context, tx *sql.Tx, memberID string) ([]domain.Label, error) {
	rows, err := r.q(tx).QueryContext(ctx, `
		SELECT l.id, l.name, l.created_at, l.updated_at
		FROM labels l
		JOIN members_labels ml ON ml.label_id = l.id
		WHERE ml.member_id = $1
		ORDER BY ml.sort_order ASC
	`, memberID)
	if err != nil {
		return nil, fmt.Errorf("member labels: %w", err)
	}
	defer rows.Close()

	var out []domain.Label
	for rows.Next() {
		var l domain.Label
		if err := rows.Scan(&l.ID, &l.Name, &l.CreatedAt, &l.UpdatedAt); err != nil {
			return nil, fmt.Errorf("scan label: %w", err)
		}
		out = append(out, l)
	}
	return out, rows.Err()
}

func (r *MemberRepo) ReplaceLabels(ctx context.Context, tx *sql.Tx, memberID string, labels []domain.Label) ([]domain.Label, error) {
	q := r.q(tx)
	if _, err := q.ExecContext(ctx, `DELETE FROM members_labels WHERE member_id = $1`, memberID); err != nil {
		return nil, fmt.Errorf("clear label associations: %w", err)
	}

	out := make([]domain.Label, 0, len(labels))
	for i, l := range labels {
		if l.ID == "" {
			l.ID = ids.New()
			err := q.QueryRowContext(ctx, `
				INSERT INTO labels (id, name, created_at, updated_at)
				VALUES ($1, $2, NOW(), NOW())
				ON CONFLICT (lower(name)) DO UPDATE SET updated_at = NOW()
				RETURNING id, name, created_at, updated_at
			`, l.ID, l.Name).Scan(&l.ID, &l.Name, &l.CreatedAt, &l.UpdatedAt)
			if err != nil {
				return nil, fmt.Errorf("create label %q: %w", l.Name, err)
			}
		}
		if _, err := q.ExecContext(ctx, `
			INSERT INTO members_labels (member_id, label_id, sort_order)
			VALUES ($1, $2, $3)
		`, memberID, l.ID, i); err != nil {
			return nil, fmt.Errorf("attach label %q: %w", l.Name, err)
		}
		out = append(out, l)
	}
	return out, nil
}

func (r *MemberRepo) LookupLabels(ctx context.Context, tx *sql.Tx, names []string) ([]domain.Label, error) {
	if len(names) == 0 {
		return nil, nil
	}
	lowered := make([]string, len(names))
	for i, n := range names {
		lowered[i] = strings.ToLower(n)
	}
	rows, err := r.q(tx).QueryContext(ctx, `
		SELECT id, name, created_at, updated_at
		FROM labels
		WHERE lower(name) = ANY($1)
	`, pq.Array(lowered))
	if err != nil {
		return nil, fmt.Errorf("lookup labels: %w", err)
	}
	defer rows.Close()

	var out []domain.Label
	for rows.Next() {
		var l domain.Label
		if err := rows.Scan(&l.ID, &l.Name, &l.CreatedAt, &l.UpdatedAt); err != nil {
			return nil, fmt.Errorf("scan label: %w", err)
		}
		out = append(out, l)
	}
	return out, rows.Err()
}

func (r *MemberRepo) ListLabels(ctx context.Context) ([]domain.Label, error) {
	rows, err := r.db.QueryContext(ctx, `
		SELECT l.id, l.name, COUNT(ml.member_id), l.created_at, l.updated_at
		FROM labels l
		LEFT JOIN members_labels ml ON ml.label_id = l.id
		GROUP BY l.id, l.name, l.created_at, l.updated_at
		ORDER BY l.name
	`)
	if err != nil {
		return nil, fmt.Errorf("list labels: %w", err)
	}
	defer rows.Close()

	var out []domain.Label
	for rows.Next() {
		var l domain.Label
		if err := rows.Scan(&l.ID, &l.Name, &l.MemberCount, &l.CreatedAt, &l.UpdatedAt); err != nil {
			return nil, fmt.Errorf("scan label: %w", err)
		}
		out = append(out, l)
	}
	return out, rows.Err()
}

func (r *MemberRepo) InsertSubscribeEvent(ctx context.Context, tx *sql.Tx, e *domain.SubscribeEvent) error {
	_, err := r.q(tx).ExecContext(ctx, `
		INSERT INTO members_subscribe_events (id, member_id, subscribed, source, created_at)
		VALUES ($1, $2, $3, $4, $5)
	`, e.ID, e.MemberID, e.Subscribed, e.Source, e.CreatedAt)
	if err != nil {
		return fmt.Errorf("insert subscribe event: %w", err)
	}
	return nil
}
