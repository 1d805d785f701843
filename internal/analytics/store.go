// Package analytics implements the append-only goal analytics log and the
// windowed queries, category rollups, and date-range reports computed over it.
package analytics

import (
	"context"
	"fmt"
	"sync"
	"time"

	charmlog "github.com/charmbracelet/log"
	"github.com/hylla/sikte/internal/domain"
)

// IDGenerator returns unique identifiers for new log records.
type IDGenerator func() string

// Clock returns the current time.
type Clock func() time.Time

// Store owns the in-memory analytics log. Mutations append, persist the whole
// log through the configured Persister, and return; they never rewrite or
// drop existing records. Reads work on a consistent copy of the log and are
// total: missing goals or empty windows yield empty results, not errors.
type Store struct {
	mu        sync.Mutex
	log       Log
	persister Persister
	idGen     IDGenerator
	clock     Clock
	logger    *charmlog.Logger
}

// NewStore loads the persisted log and returns a ready store. Missing or
// unreadable storage degrades to an empty log with a warning; construction
// never fails on storage problems.
func NewStore(ctx context.Context, persister Persister, idGen IDGenerator, clock Clock, logger *charmlog.Logger) *Store {
	if idGen == nil {
		idGen = func() string { return "" }
	}
	if clock == nil {
		clock = time.Now
	}
	if logger == nil {
		logger = charmlog.New(nil)
	}

	s := &Store{
		persister: persister,
		idGen:     idGen,
		clock:     clock,
		logger:    logger,
	}
	if persister == nil {
		return s
	}
	loaded, ok, err := persister.Load(ctx)
	switch {
	case err != nil:
		logger.Warn("analytics log unreadable, starting empty", "err", err)
	case !ok:
		logger.Debug("no persisted analytics log, starting empty")
	default:
		s.log = loaded
		logger.Info("analytics log loaded",
			"progress_entries", len(loaded.ProgressEntries),
			"sessions", len(loaded.Sessions),
			"goal_snapshots", len(loaded.GoalHistory))
	}
	return s
}

// AppendProgress assigns a fresh id, appends the entry, and persists the log.
// On persistence failure the stored entry is still returned together with an
// error wrapping ErrPersistFailed.
func (s *Store) AppendProgress(ctx context.Context, in domain.ProgressInput) (domain.ProgressEntry, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	entry, err := domain.NewProgressEntry(s.idGen(), in, s.clock())
	if err != nil {
		return domain.ProgressEntry{}, err
	}
	s.log.ProgressEntries = append(s.log.ProgressEntries, entry)
	return entry, s.persistLocked(ctx)
}

// AppendSession assigns a fresh id, appends the session, and persists the log.
func (s *Store) AppendSession(ctx context.Context, in domain.SessionInput) (domain.ProductivitySession, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	session, err := domain.NewProductivitySession(s.idGen(), in, s.clock())
	if err != nil {
		return domain.ProductivitySession{}, err
	}
	s.log.Sessions = append(s.log.Sessions, session)
	return session, s.persistLocked(ctx)
}

// RecordGoalSnapshot appends one goal snapshot to the history log. Repeated
// snapshots for the same goal id are expected; each represents a successive
// state of the goal.
func (s *Store) RecordGoalSnapshot(ctx context.Context, g domain.Goal) (domain.Goal, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	snapshot, err := domain.NewGoalSnapshot(g, s.clock())
	if err != nil {
		return domain.Goal{}, err
	}
	s.log.GoalHistory = append(s.log.GoalHistory, snapshot)
	return snapshot, s.persistLocked(ctx)
}

// SyncGoals records snapshots for a batch of goals from the goal-management
// collaborator, persisting once after the batch. Invalid goals abort before
// any append so a partial batch is never persisted.
func (s *Store) SyncGoals(ctx context.Context, goals []domain.Goal) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	now := s.clock()
	snapshots := make([]domain.Goal, 0, len(goals))
	for _, g := range goals {
		snapshot, err := domain.NewGoalSnapshot(g, now)
		if err != nil {
			return fmt.Errorf("goal %q: %w", g.ID, err)
		}
		snapshots = append(snapshots, snapshot)
	}
	s.log.GoalHistory = append(s.log.GoalHistory, snapshots...)
	return s.persistLocked(ctx)
}

// SyncFrom pulls the current goal list from a source and records it.
func (s *Store) SyncFrom(ctx context.Context, src GoalSource) error {
	goals, err := src.ListGoals(ctx)
	if err != nil {
		return fmt.Errorf("list goals: %w", err)
	}
	return s.SyncGoals(ctx, goals)
}

// snapshot returns a consistent copy of the log for read-side queries.
func (s *Store) snapshot() Log {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.log.Clone()
}

// persistLocked saves the full log. Callers hold the store lock, so persisted
// state never reflects a partial append.
func (s *Store) persistLocked(ctx context.Context) error {
	if s.persister == nil {
		return nil
	}
	if err := s.persister.Save(ctx, s.log.Clone()); err != nil {
		s.logger.Error("analytics log persist failed", "err", err)
		return fmt.Errorf("%w: %v", ErrPersistFailed, err)
	}
	return nil
}
