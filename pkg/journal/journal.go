// Package journal persists quick practice moments and logged sessions
package journal

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"log/slog"
	"strings"
	"time"

	"github.com/dgraph-io/badger/v4"
	"github.com/go-playground/validator/v10"
	gonanoid "github.com/matoous/go-nanoid/v2"
)

const (
	momentPrefix  = "moment:"
	sessionPrefix = "session:"
)

// ErrNotFound is returned when an entry ID does not exist
var ErrNotFound = errors.New("journal entry not found")

// Options configures the badger-backed journal
type Options struct {
	// Dir is required unless InMemory is set
	Dir      string
	InMemory bool
	Logger   *slog.Logger
	// Now overrides the clock, for tests
	Now func() time.Time
}

// Journal is a time-ordered log backed by badger. Keys embed the entry
// timestamp so prefix iteration yields chronological order.
type Journal struct {
	db       *badger.DB
	logger   *slog.Logger
	validate *validator.Validate
	now      func() time.Time
}

// Open opens or creates the journal
func Open(opts Options) (*Journal, error) {
	if !opts.InMemory && opts.Dir == "" {
		return nil, errors.New("journal dir is required for on-disk mode")
	}

	dbOpts := badger.DefaultOptions(opts.Dir)
	if opts.InMemory {
		dbOpts = badger.DefaultOptions("").WithInMemory(true)
	}
	dbOpts.Logger = nil
	dbOpts.SyncWrites = !opts.InMemory

	db, err := badger.Open(dbOpts)
	if err != nil {
		return nil, fmt.Errorf("failed to open journal: %w", err)
	}

	logger := opts.Logger
	if logger == nil {
		logger = slog.New(slog.DiscardHandler)
	}
	now := opts.Now
	if now == nil {
		now = time.Now
	}

	logger.Debug("journal opened", "dir", opts.Dir, "in_memory", opts.InMemory)
	return &Journal{db: db, logger: logger, validate: validator.New(), now: now}, nil
}

// Close flushes and closes the database
func (j *Journal) Close() error {
	return j.db.Close()
}

// AddMoment stores a moment, assigning its ID and time when unset
func (j *Journal) AddMoment(ctx context.Context, m QuickMoment) (QuickMoment, error) {
	if err := ctx.Err(); err != nil {
		return QuickMoment{}, err
	}
	m.Note = strings.TrimSpace(m.Note)
	if err := j.validate.Struct(m); err != nil {
		return QuickMoment{}, fmt.Errorf("invalid moment: %w", err)
	}

	id, err := newID("mom")
	if err != nil {
		return QuickMoment{}, err
	}
	m.ID = id
	if m.Time.IsZero() {
		m.Time = j.now()
	}

	if err := j.put(entryKey(momentPrefix, m.Time, m.ID), m); err != nil {
		return QuickMoment{}, fmt.Errorf("failed to save moment: %w", err)
	}
	j.logger.Debug("moment saved", "id", m.ID, "tune", m.Tune)
	return m, nil
}

// Moments returns moments oldest first. A non-empty tune filters by tune.
func (j *Journal) Moments(ctx context.Context, tune string) ([]QuickMoment, error) {
	var out []QuickMoment
	err := scan(ctx, j.db, momentPrefix, func(m QuickMoment) {
		if tune == "" || m.Tune == tune {
			out = append(out, m)
		}
	})
	if err != nil {
		return nil, fmt.Errorf("failed to list moments: %w", err)
	}
	return out, nil
}

// DeleteMoment removes a moment by ID
func (j *Journal) DeleteMoment(ctx context.Context, id string) error {
	return j.delete(ctx, momentPrefix, id)
}

// AddSession stores a practice session. A zero Duration is filled with the
// sum of the pillar times.
func (j *Journal) AddSession(ctx context.Context, s Session) (Session, error) {
	if err := ctx.Err(); err != nil {
		return Session{}, err
	}
	if err := j.validate.Struct(s); err != nil {
		return Session{}, fmt.Errorf("invalid session: %w", err)
	}
	if s.Duration == 0 {
		s.Duration = s.PillarSum()
	}

	id, err := newID("ses")
	if err != nil {
		return Session{}, err
	}
	s.ID = id
	if s.Date.IsZero() {
		s.Date = j.now()
	}

	if err := j.put(entryKey(sessionPrefix, s.Date, s.ID), s); err != nil {
		return Session{}, fmt.Errorf("failed to save session: %w", err)
	}
	j.logger.Debug("session saved", "id", s.ID, "minutes", s.Duration)
	return s, nil
}

// Sessions returns every session oldest first
func (j *Journal) Sessions(ctx context.Context) ([]Session, error) {
	var out []Session
	if err := scan(ctx, j.db, sessionPrefix, func(s Session) { out = append(out, s) }); err != nil {
		return nil, fmt.Errorf("failed to list sessions: %w", err)
	}
	return out, nil
}

// RecentSessions returns the last n sessions, oldest first
func (j *Journal) RecentSessions(ctx context.Context, n int) ([]Session, error) {
	all, err := j.Sessions(ctx)
	if err != nil {
		return nil, err
	}
	if n >= 0 && len(all) > n {
		all = all[len(all)-n:]
	}
	return all, nil
}

// DeleteSession removes a session by ID
func (j *Journal) DeleteSession(ctx context.Context, id string) error {
	return j.delete(ctx, sessionPrefix, id)
}

// PillarTotals sums pillar minutes across sessions
func PillarTotals(sessions []Session) Pillars {
	var p Pillars
	for _, s := range sessions {
		p.Tone += s.ToneTime
		p.Technique += s.TechniqueTime
		p.Tunes += s.TunesTime
		p.Transcriptions += s.TranscriptionsTime
	}
	p.Total = p.Tone + p.Technique + p.Tunes + p.Transcriptions
	return p
}

func (j *Journal) put(key []byte, v any) error {
	data, err := json.Marshal(v)
	if err != nil {
		return fmt.Errorf("failed to marshal entry: %w", err)
	}
	return j.db.Update(func(txn *badger.Txn) error {
		return txn.Set(key, data)
	})
}

// delete finds the key ending in id under prefix. IDs are unique so the
// first hit is the only one.
func (j *Journal) delete(ctx context.Context, prefix, id string) error {
	if err := ctx.Err(); err != nil {
		return err
	}
	suffix := ":" + id
	return j.db.Update(func(txn *badger.Txn) error {
		it := txn.NewIterator(badger.IteratorOptions{Prefix: []byte(prefix)})
		var found []byte
		for it.Rewind(); it.Valid(); it.Next() {
			if strings.HasSuffix(string(it.Item().Key()), suffix) {
				found = it.Item().KeyCopy(nil)
				break
			}
		}
		it.Close()
		if found == nil {
			return fmt.Errorf("%w: %s", ErrNotFound, id)
		}
		return txn.Delete(found)
	})
}

// scan decodes every value under prefix in key order
func scan[T any](ctx context.Context, db *badger.DB, prefix string, fn func(T)) error {
	return db.View(func(txn *badger.Txn) error {
		opts := badger.DefaultIteratorOptions
		opts.Prefix = []byte(prefix)
		it := txn.NewIterator(opts)
		defer it.Close()

		for it.Rewind(); it.Valid(); it.Next() {
			if err := ctx.Err(); err != nil {
				return err
			}
			var v T
			if err := it.Item().Value(func(val []byte) error {
				return json.Unmarshal(val, &v)
			}); err != nil {
				return fmt.Errorf("failed to decode %s: %w", it.Item().Key(), err)
			}
			fn(v)
		}
		return nil
	})
}

// entryKey is prefix + zero-padded unix nanos + ":" + id. Times before
// 1970 clamp to zero.
func entryKey(prefix string, t time.Time, id string) []byte {
	nanos := max(t.UnixNano(), 0)
	return fmt.Appendf(nil, "%s%020d:%s", prefix, nanos, id)
}

func newID(prefix string) (string, error) {
	id, err := gonanoid.New()
	if err != nil {
		return "", fmt.Errorf("generate nanoid: %w", err)
	}
	return prefix + "-" + id, nil
}
