package activity

import (
	"context"
	"sync"
	"time"

	"go.uber.org/zap"
)

// MinActiveSpan is the shortest credited time span that also counts towards
// the daily streak.
const MinActiveSpan = 5 * time.Second

const (
	defaultIdleTimeout  = 60 * time.Second
	defaultTickInterval = time.Second
	secondsPerMinute    = 60
)

type ReadRecorder interface {
	IncrementMinutesRead(minutes float64)
	RecordActivity()
}

// ReadingTimer credits active reading time. While started it counts ticks
// during which the reader touched the page within the idle timeout, and every
// 60 counted seconds credits one minute read.
type ReadingTimer struct {
	mu          sync.Mutex
	stats       ReadRecorder
	logger      *zap.Logger
	now         func() time.Time
	idleTimeout time.Duration

	bookID    string
	active    bool
	lastTouch time.Time
	seconds   int
}

type ReadingTimerConfig struct {
	Stats       ReadRecorder
	Logger      *zap.Logger
	IdleTimeout time.Duration
	Now         func() time.Time
}

func NewReadingTimer(cfg ReadingTimerConfig) *ReadingTimer {
	if cfg.IdleTimeout == 0 {
		cfg.IdleTimeout = defaultIdleTimeout
	}
	if cfg.Logger == nil {
		cfg.Logger = zap.NewNop()
	}
	if cfg.Now == nil {
		cfg.Now = time.Now
	}
	return &ReadingTimer{
		stats:       cfg.Stats,
		logger:      cfg.Logger,
		now:         cfg.Now,
		idleTimeout: cfg.IdleTimeout,
	}
}

// Start begins counting for bookID. Seconds counted towards an unfinished
// minute carry over from the previous session.
func (t *ReadingTimer) Start(bookID string) {
	t.mu.Lock()
	defer t.mu.Unlock()
	t.bookID = bookID
	t.active = true
	t.lastTouch = t.now()
}

func (t *ReadingTimer) Stop() {
	t.mu.Lock()
	defer t.mu.Unlock()
	t.active = false
	t.bookID = ""
}

// Touch marks reader interaction (scroll, key press, page turn).
func (t *ReadingTimer) Touch() {
	t.mu.Lock()
	defer t.mu.Unlock()
	t.lastTouch = t.now()
}

// Current returns the book being read, if any.
func (t *ReadingTimer) Current() (string, bool) {
	t.mu.Lock()
	defer t.mu.Unlock()
	return t.bookID, t.active
}

// Tick accounts one second of wall time.
func (t *ReadingTimer) Tick() {
	t.mu.Lock()
	if !t.active || t.now().Sub(t.lastTouch) >= t.idleTimeout {
		t.mu.Unlock()
		return
	}
	t.seconds++
	credit := t.seconds >= secondsPerMinute
	if credit {
		t.seconds -= secondsPerMinute
	}
	bookID := t.bookID
	t.mu.Unlock()

	if credit {
		CreditRead(t.stats, 1)
		t.logger.Debug("credited reading minute", zap.String("book_id", bookID))
	}
}

// Run ticks every interval until ctx is done.
func (t *ReadingTimer) Run(ctx context.Context, interval time.Duration) {
	if interval <= 0 {
		interval = defaultTickInterval
	}
	ticker := time.NewTicker(interval)
	defer ticker.Stop()
	for {
		select {
		case <-ctx.Done():
			return
		case <-ticker.C:
			t.Tick()
		}
	}
}
