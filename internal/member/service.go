package member

import (
	"context"
	"database/sql"
	"fmt"
	"strings"
	"time"

	"github.com/google/uuid"

	"github.com/ignite/audience-hub/internal/domain"
	"github.com/ignite/audience-hub/internal/events"
	"github.com/ignite/audience-hub/internal/pkg/ids"
	"github.com/ignite/audience-hub/internal/pkg/logger"
)

// Config carries service-level behavior switches.
type Config struct {
	// DisableGravatar suppresses avatar derivation; members then always
	// carry a nil avatar_image.
	DisableGravatar bool
}

// Option adjusts a single service call.
type Option func(*callOptions)

type callOptions struct {
	tx *sql.Tx
}

// WithTx folds the operation into an already-open transaction instead of
// letting it open its own. Commit and rollback stay with the caller.
func WithTx(tx *sql.Tx) Option {
	return func(o *callOptions) { o.tx = tx }
}

func applyOptions(opts []Option) callOptions {
	var o callOptions
	for _, opt := range opts {
		opt(&o)
	}
	return o
}

// AddInput holds the fields for creating a member.
type AddInput struct {
	Email      string
	Name       string
	Status     domain.MemberStatus // defaults to free
	Subscribed *bool               // defaults to true
	Labels     []string
}

// EditInput holds the mutable fields for a member update. Nil fields are
// left untouched; a non-nil empty Labels slice detaches every label.
type EditInput struct {
	Email      *string
	Name       *string
	Status     *domain.MemberStatus
	Subscribed *bool
	Labels     *[]string
}

// Service implements the member lifecycle engine. Every mutating operation
// runs inside exactly one transaction: its own unless the caller supplies
// one via WithTx. Label lists are normalized before any association write,
// attach/detach events are derived from the before/after label sets, and
// each successful mutation emits a member lifecycle event carrying the
// full label-inclusive snapshot.
type Service struct {
	db   *sql.DB
	repo Repository
	sink events.Sink
	cfg  Config
}

// NewService creates a member service backed by the given repository. A nil
// sink discards events.
func NewService(db *sql.DB, repo Repository, sink events.Sink, cfg Config) *Service {
	if sink == nil {
		sink = events.NopSink{}
	}
	return &Service{db: db, repo: repo, sink: sink, cfg: cfg}
}

// Get returns a member with labels loaded and derived fields populated.
func (s *Service) Get(ctx context.Context, id string) (*domain.Member, error) {
	m, err := s.repo.Get(ctx, nil, id)
	if err != nil {
		return nil, err
	}
	labels, err := s.repo.Labels(ctx, nil, id)
	if err != nil {
		return nil, fmt.Errorf("load labels: %w", err)
	}
	m.Labels = labels
	s.decorate(m)
	return m, nil
}

// List returns members matching the filter plus the unpaginated total.
func (s *Service) List(ctx context.Context, f ListFilter) ([]domain.Member, int, error) {
	ms, total, err := s.repo.List(ctx, f)
	if err != nil {
		return nil, 0, err
	}
	for i := range ms {
		s.decorate(&ms[i])
	}
	return ms, total, nil
}

// ListLabels returns all labels with member counts.
func (s *Service) ListLabels(ctx context.Context) ([]domain.Label, error) {
	return s.repo.ListLabels(ctx)
}

// Add creates a member. Subscribed defaults to true and a subscribe event
// is appended to the log for members created subscribed.
func (s *Service) Add(ctx context.Context, in AddInput, opts ...Option) (*domain.Member, error) {
	email := strings.TrimSpace(in.Email)
	if !domain.ValidateEmail(email) {
		return nil, fmt.Errorf("%w: invalid email %q", ErrValidation, email)
	}
	status := in.Status
	if status == "" {
		status = domain.MemberFree
	}
	if !status.Valid() {
		return nil, fmt.Errorf("%w: unknown status %q", ErrValidation, status)
	}

	now := time.Now().UTC()
	m := &domain.Member{
		ID:         ids.New(),
		UUID:       uuid.NewString(),
		Email:      email,
		Name:       strings.TrimSpace(in.Name),
		Status:     status,
		Subscribed: true,
		CreatedAt:  now,
		UpdatedAt:  now,
	}
	if in.Subscribed != nil {
		m.Subscribed = *in.Subscribed
	}

	o := applyOptions(opts)
	err := RunInTx(ctx, s.db, o.tx, func(tx *sql.Tx) error {
		if err := s.repo.Insert(ctx, tx, m); err != nil {
			return err
		}
		if len(in.Labels) > 0 {
			normalized, err := s.normalize(ctx, tx, in.Labels)
			if err != nil {
				return err
			}
			final, err := s.repo.ReplaceLabels(ctx, tx, m.ID, normalized)
			if err != nil {
				return fmt.Errorf("replace labels: %w", err)
			}
			m.Labels = final
		}
		if m.Subscribed {
			if err := s.appendSubscribeEvent(ctx, tx, m, now); err != nil {
				return err
			}
		}
		s.decorate(m)
		s.emitLabelChanges(ctx, tx, m, m.Labels, nil)
		s.sink.Emit(ctx, events.Event{Name: events.MemberAdded, Member: m, Tx: tx, OccurredAt: time.Now().UTC()})
		return nil
	})
	if err != nil {
		return nil, err
	}
	logger.Info("member added", "member_id", m.ID, "email", m.Email)
	return m, nil
}

// Edit updates a member. Supplying Labels replaces the full label set; the
// attach/detach delta is derived from the sets before and after the write.
// Flipping Subscribed appends one event to the subscription log.
func (s *Service) Edit(ctx context.Context, id string, in EditInput, opts ...Option) (*domain.Member, error) {
	o := applyOptions(opts)
	var out *domain.Member
	err := RunInTx(ctx, s.db, o.tx, func(tx *sql.Tx) error {
		m, err := s.repo.Get(ctx, tx, id)
		if err != nil {
			return err
		}
		before, err := s.repo.Labels(ctx, tx, id)
		if err != nil {
			return fmt.Errorf("load labels: %w", err)
		}

		wasSubscribed := m.Subscribed
		if in.Email != nil {
			email := strings.TrimSpace(*in.Email)
			if !domain.ValidateEmail(email) {
				return fmt.Errorf("%w: invalid email %q", ErrValidation, email)
			}
			m.Email = email
		}
		if in.Name != nil {
			m.Name = strings.TrimSpace(*in.Name)
		}
		if in.Status != nil {
			if !in.Status.Valid() {
				return fmt.Errorf("%w: unknown status %q", ErrValidation, *in.Status)
			}
			m.Status = *in.Status
		}
		if in.Subscribed != nil {
			m.Subscribed = *in.Subscribed
		}
		now := time.Now().UTC()
		m.UpdatedAt = now

		if err := s.repo.Update(ctx, tx, m); err != nil {
			return err
		}

		m.Labels = before
		var attached, detached []domain.Label
		if in.Labels != nil {
			normalized, err := s.normalize(ctx, tx, *in.Labels)
			if err != nil {
				return err
			}
			after, err := s.repo.ReplaceLabels(ctx, tx, m.ID, normalized)
			if err != nil {
				return fmt.Errorf("replace labels: %w", err)
			}
			attached, detached = diffLabels(before, after)
			m.Labels = after
		}

		// The event log only grows on actual transitions.
		if m.Subscribed != wasSubscribed {
			if err := s.appendSubscribeEvent(ctx, tx, m, now); err != nil {
				return err
			}
		}

		s.decorate(m)
		s.emitLabelChanges(ctx, tx, m, attached, detached)
		s.sink.Emit(ctx, events.Event{Name: events.MemberEdited, Member: m, Tx: tx, OccurredAt: time.Now().UTC()})
		out = m
		return nil
	})
	if err != nil {
		return nil, err
	}
	logger.Info("member edited", "member_id", out.ID)
	return out, nil
}

// Destroy deletes the member and its label associations, emitting a detach
// event pair for every label that goes away. Historical subscribe-event
// rows are retained for analytics.
func (s *Service) Destroy(ctx context.Context, id string, opts ...Option) error {
	o := applyOptions(opts)
	err := RunInTx(ctx, s.db, o.tx, func(tx *sql.Tx) error {
		m, err := s.repo.Get(ctx, tx, id)
		if err != nil {
			return err
		}
		labels, err := s.repo.Labels(ctx, tx, id)
		if err != nil {
			return fmt.Errorf("load labels: %w", err)
		}
		if err := s.repo.Delete(ctx, tx, id); err != nil {
			return err
		}
		m.Labels = labels
		s.decorate(m)
		s.emitLabelChanges(ctx, tx, m, nil, labels)
		s.sink.Emit(ctx, events.Event{Name: events.MemberDeleted, Member: m, Tx: tx, OccurredAt: time.Now().UTC()})
		return nil
	})
	if err != nil {
		return err
	}
	logger.Info("member deleted", "member_id", id)
	return nil
}

func (s *Service) normalize(ctx context.Context, tx *sql.Tx, names []string) ([]domain.Label, error) {
	proposed := make([]domain.Label, len(names))
	for i, n := range names {
		proposed[i] = domain.Label{Name: n}
	}
	lookup := func(ctx context.Context, names []string) ([]domain.Label, error) {
		return s.repo.LookupLabels(ctx, tx, names)
	}
	normalized, err := NormalizeLabels(ctx, proposed, lookup)
	if err != nil {
		return nil, fmt.Errorf("normalize labels: %w", err)
	}
	return normalized, nil
}

func (s *Service) appendSubscribeEvent(ctx context.Context, tx *sql.Tx, m *domain.Member, at time.Time) error {
	e := &domain.SubscribeEvent{
		ID:         ids.New(),
		MemberID:   m.ID,
		Subscribed: m.Subscribed,
		CreatedAt:  at,
	}
	if m.Subscribed {
		src := domain.SubscribeEventSourceMember
		e.Source = &src
	}
	if err := s.repo.InsertSubscribeEvent(ctx, tx, e); err != nil {
		return fmt.Errorf("append subscribe event: %w", err)
	}
	return nil
}

// emitLabelChanges fires one label-scoped and one member-scoped event per
// attached and per detached label. Callers invoke it only after the
// association write has been applied in tx.
func (s *Service) emitLabelChanges(ctx context.Context, tx *sql.Tx, m *domain.Member, attached, detached []domain.Label) {
	now := time.Now().UTC()
	for i := range attached {
		l := attached[i]
		s.sink.Emit(ctx, events.Event{Name: events.LabelAttached, Member: m, Label: &l, Tx: tx, OccurredAt: now})
		s.sink.Emit(ctx, events.Event{Name: events.MemberLabelAttached, Member: m, Label: &l, Tx: tx, OccurredAt: now})
	}
	for i := range detached {
		l := detached[i]
		s.sink.Emit(ctx, events.Event{Name: events.LabelDetached, Member: m, Label: &l, Tx: tx, OccurredAt: now})
		s.sink.Emit(ctx, events.Event{Name: events.MemberLabelDetached, Member: m, Label: &l, Tx: tx, OccurredAt: now})
	}
}

// decorate computes derived read-only fields. AvatarImage is never stored;
// it stays nil whenever gravatar lookups are disabled by privacy config.
func (s *Service) decorate(m *domain.Member) {
	if s.cfg.DisableGravatar {
		m.AvatarImage = nil
		return
	}
	u := GravatarURL(m.Email)
	m.AvatarImage = &u
}
