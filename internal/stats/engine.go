package stats

import (
	"encoding/json"
	"math"
	"sync"
	"time"

	"github.com/pechorka/readstreak/internal/storage"
	"github.com/pechorka/readstreak/pkg/daykey"
	"github.com/pkg/errors"
	"go.uber.org/zap"
	"golang.org/x/exp/slices"
)

// StorageKey is the key the stats record is persisted under.
const StorageKey = "userAppStats"

type KV interface {
	Get(key string) ([]byte, error)
	Set(key string, value []byte) error
}

// Engine owns the UserStats record. All mutations go through its methods,
// are serialized and persisted right after they are applied.
type Engine struct {
	mu     sync.Mutex
	kv     KV
	now    func() time.Time
	logger *zap.Logger
	stats  UserStats
}

type Option func(*Engine)

func WithClock(now func() time.Time) Option {
	return func(e *Engine) {
		e.now = now
	}
}

func WithLogger(logger *zap.Logger) Option {
	return func(e *Engine) {
		e.logger = logger
	}
}

// NewEngine loads the stats record from kv, falling back to defaults
// when it is absent or unreadable.
func NewEngine(kv KV, opts ...Option) *Engine {
	e := &Engine{
		kv:     kv,
		now:    time.Now,
		logger: zap.NewNop(),
	}
	for _, opt := range opts {
		opt(e)
	}
	e.stats = e.load()
	return e
}

// Stats returns a copy of the current record.
func (e *Engine) Stats() UserStats {
	e.mu.Lock()
	defer e.mu.Unlock()
	return e.stats.clone()
}

// RecordActivity marks today as an active day and advances the streak.
// Repeated calls on the same day have no effect.
func (e *Engine) RecordActivity() {
	now := e.now().Local()
	today := daykey.Of(now)
	yesterday := daykey.Yesterday(now)
	e.mutate("record_activity", func(s *UserStats) bool {
		if s.LastReadingDate != nil && *s.LastReadingDate == today {
			return false
		}
		streak := int64(1)
		if s.LastReadingDate != nil && *s.LastReadingDate == yesterday {
			streak = s.CurrentStreak + 1
		}
		s.CurrentStreak = streak
		s.LongestStreak = max(s.LongestStreak, streak)
		s.LastReadingDate = &today
		return true
	})
}

func (e *Engine) IncrementMinutesRead(minutes float64) {
	if !e.validMinutes("increment_minutes_read", minutes) {
		return
	}
	e.mutate("increment_minutes_read", func(s *UserStats) bool {
		s.TotalMinutesRead += minutes
		return true
	})
}

func (e *Engine) IncrementMinutesListened(minutes float64) {
	if !e.validMinutes("increment_minutes_listened", minutes) {
		return
	}
	e.mutate("increment_minutes_listened", func(s *UserStats) bool {
		s.TotalMinutesListened += minutes
		return true
	})
}

// MarkBookCompleted adds bookID to the completed set. Completing a book twice is a no-op.
func (e *Engine) MarkBookCompleted(bookID string) {
	if bookID == "" {
		e.logger.Debug("ignoring completion without book id")
		return
	}
	e.mutate("mark_book_completed", func(s *UserStats) bool {
		if slices.Contains(s.CompletedBookIDs, bookID) {
			return false
		}
		s.CompletedBookIDs = append(s.CompletedBookIDs, bookID)
		return true
	})
}

func (e *Engine) IncrementBooksImported() {
	e.mutate("increment_books_imported", func(s *UserStats) bool {
		s.TotalBooksImported++
		return true
	})
}

func (e *Engine) validMinutes(op string, minutes float64) bool {
	if minutes > 0 && !math.IsInf(minutes, 1) {
		return true
	}
	e.logger.Debug("ignoring non positive minutes", zap.String("op", op), zap.Float64("minutes", minutes))
	return false
}

// mutate applies fn under the lock and persists the result when fn reports a change.
// A failed write is logged and the in-memory change is kept.
func (e *Engine) mutate(op string, fn func(*UserStats) bool) {
	e.mu.Lock()
	defer e.mu.Unlock()
	if !fn(&e.stats) {
		return
	}
	if err := e.save(e.stats); err != nil {
		e.logger.Error("failed to save user stats", zap.String("op", op), zap.Error(err))
	}
}

func (e *Engine) load() UserStats {
	v, err := e.kv.Get(StorageKey)
	if err != nil {
		if !errors.Is(err, storage.ErrNotFound) {
			e.logger.Warn("failed to read user stats, using defaults", zap.Error(err))
		}
		return defaultUserStats()
	}
	s, err := Decode(v)
	if err != nil {
		e.logger.Warn("failed to parse user stats, using defaults", zap.Error(err))
		return defaultUserStats()
	}
	return s
}

func (e *Engine) save(s UserStats) error {
	encoded, err := Encode(s)
	if err != nil {
		return err
	}
	return errors.Wrap(e.kv.Set(StorageKey, encoded), "failed to put user stats")
}

// Encode serializes s into the persisted JSON layout.
func Encode(s UserStats) ([]byte, error) {
	if s.CompletedBookIDs == nil {
		s.CompletedBookIDs = []string{}
	}
	encoded, err := json.Marshal(s)
	if err != nil {
		return nil, errors.Wrap(err, "failed to marshal user stats")
	}
	return encoded, nil
}

// Decode parses a persisted record. Fields missing from v keep their defaults,
// unknown fields are ignored.
func Decode(v []byte) (UserStats, error) {
	s := defaultUserStats()
	if err := json.Unmarshal(v, &s); err != nil {
		return defaultUserStats(), errors.Wrap(err, "failed to unmarshal user stats")
	}
	return normalize(s), nil
}

// normalize repairs records written by older or hand-edited versions so the
// record invariants hold after load.
func normalize(s UserStats) UserStats {
	s.TotalBooksImported = max(s.TotalBooksImported, 0)
	s.TotalMinutesRead = nonNegative(s.TotalMinutesRead)
	s.TotalMinutesListened = nonNegative(s.TotalMinutesListened)
	s.CurrentStreak = max(s.CurrentStreak, 0)
	s.LongestStreak = max(s.LongestStreak, s.CurrentStreak)

	ids := make([]string, 0, len(s.CompletedBookIDs))
	for _, id := range s.CompletedBookIDs {
		if id != "" && !slices.Contains(ids, id) {
			ids = append(ids, id)
		}
	}
	s.CompletedBookIDs = ids

	if s.LastReadingDate != nil && !daykey.Valid(*s.LastReadingDate) {
		s.LastReadingDate = nil
	}
	return s
}

func nonNegative(f float64) float64 {
	if math.IsNaN(f) || f < 0 {
		return 0
	}
	return f
}
