package activity

import (
	"sync"

	"github.com/pkg/errors"
	"go.uber.org/zap"
)

var ErrNotPlaying = errors.New("no audio book is playing")

type ListenRecorder interface {
	IncrementMinutesListened(minutes float64)
	RecordActivity()
}

type ProgressUpdater interface {
	UpdateProgress(bookID string, percent float64) (float64, error)
}

type ProgressUpdaterFunc func(bookID string, percent float64) (float64, error)

func (f ProgressUpdaterFunc) UpdateProgress(bookID string, percent float64) (float64, error) {
	return f(bookID, percent)
}

type playback struct {
	bookID string
	last   float64 // seconds
}

// ListeningTracker turns playback position updates of the current audio book
// into listened minutes and progress. Only forward movement is credited.
type ListeningTracker struct {
	mu       sync.Mutex
	stats    ListenRecorder
	progress ProgressUpdater
	logger   *zap.Logger
	current  *playback
}

func NewListeningTracker(stats ListenRecorder, progress ProgressUpdater, logger *zap.Logger) *ListeningTracker {
	if logger == nil {
		logger = zap.NewNop()
	}
	return &ListeningTracker{stats: stats, progress: progress, logger: logger}
}

// Start switches playback to bookID. The last reported position is seeded
// from the saved progress so resuming does not credit already heard audio.
func (l *ListeningTracker) Start(bookID string, savedProgress, durationSeconds float64) {
	var last float64
	if savedProgress > 0 && durationSeconds > 0 {
		last = savedProgress / 100 * durationSeconds
	}
	l.mu.Lock()
	defer l.mu.Unlock()
	l.current = &playback{bookID: bookID, last: last}
}

func (l *ListeningTracker) Stop() {
	l.mu.Lock()
	defer l.mu.Unlock()
	l.current = nil
}

func (l *ListeningTracker) Current() (string, bool) {
	l.mu.Lock()
	defer l.mu.Unlock()
	if l.current == nil {
		return "", false
	}
	return l.current.bookID, true
}

// Update reports the playback position of the current book and returns the
// stored progress in percent. Updates with an unknown duration are ignored,
// positions outside the track are clamped to it.
func (l *ListeningTracker) Update(positionSeconds, durationSeconds float64) (float64, error) {
	l.mu.Lock()
	if l.current == nil {
		l.mu.Unlock()
		return 0, ErrNotPlaying
	}
	if !(durationSeconds > 0) {
		l.mu.Unlock()
		return 0, nil
	}
	positionSeconds = min(max(positionSeconds, 0), durationSeconds)
	bookID := l.current.bookID
	var delta float64
	if positionSeconds > l.current.last {
		delta = positionSeconds - l.current.last
	}
	l.current.last = positionSeconds
	l.mu.Unlock()

	CreditListened(l.stats, delta/60)
	progress, err := l.progress.UpdateProgress(bookID, positionSeconds/durationSeconds*100)
	if err != nil {
		return 0, errors.Wrap(err, "failed to update listening progress")
	}
	l.logger.Debug("playback update",
		zap.String("book_id", bookID),
		zap.Float64("delta_seconds", delta),
		zap.Float64("progress", progress),
	)
	return progress, nil
}
