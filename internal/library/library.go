package library

import (
	"encoding/json"
	"math"
	"strings"
	"time"
	"unicode/utf8"

	"github.com/google/uuid"
	"github.com/pechorka/readstreak/internal/storage"
	"github.com/pechorka/readstreak/pkg/contenttype"
	"github.com/pechorka/readstreak/pkg/filechecksum"
	"github.com/pechorka/readstreak/pkg/sizeconverter"
	"github.com/pkg/errors"
	"go.uber.org/zap"
)

var (
	ErrTooBig          = errors.New("file is too big")
	ErrEmptyFile       = errors.New("file is empty")
	ErrEmptyTitle      = errors.New("book title is empty")
	ErrTitleTooLong    = errors.New("book title is too long")
	ErrUnsupportedType = errors.New("unsupported file type")
	ErrInvalidProgress = errors.New("invalid progress")
	ErrInvalidDuration = errors.New("invalid duration")
)

// BooksKey is the key the book list is persisted under.
const BooksKey = "myBooks"

const (
	defaultMaxFileSize = 20 * 1024 * 1024 // 20 MB
	maxTitleLength     = 255
)

type Store interface {
	Get(key string) ([]byte, error)
	Update(key string, updFunc storage.UpdateFunc) error
	PutContent(id string, data []byte) error
	GetContent(id string) ([]byte, error)
	DeleteContent(id string) error
}

type Stats interface {
	IncrementBooksImported()
	RecordActivity()
	MarkBookCompleted(bookID string)
}

type Library struct {
	store       Store
	stats       Stats
	logger      *zap.Logger
	now         func() time.Time
	maxFileSize int64
}

type Config struct {
	Store       Store
	Stats       Stats
	Logger      *zap.Logger
	MaxFileSize int64
	Now         func() time.Time
}

func New(cfg Config) *Library {
	if cfg.MaxFileSize == 0 {
		cfg.MaxFileSize = defaultMaxFileSize
	}
	if cfg.Logger == nil {
		cfg.Logger = zap.NewNop()
	}
	if cfg.Now == nil {
		cfg.Now = time.Now
	}
	return &Library{
		store:       cfg.Store,
		stats:       cfg.Stats,
		logger:      cfg.Logger,
		now:         cfg.Now,
		maxFileSize: cfg.MaxFileSize,
	}
}

// Import stores a new book and counts it as an import and as today's activity.
// The same file can not be imported twice.
func (l *Library) Import(nb NewBook) (Book, error) {
	title := strings.TrimSpace(nb.Title)
	if title == "" {
		return Book{}, ErrEmptyTitle
	}
	if utf8.RuneCountInString(title) > maxTitleLength {
		return Book{}, errors.Wrapf(ErrTitleTooLong, "max length is %d", maxTitleLength)
	}
	if len(nb.Data) == 0 {
		return Book{}, ErrEmptyFile
	}
	if int64(len(nb.Data)) > l.maxFileSize {
		return Book{}, errors.Wrapf(ErrTooBig, "max size is %s", sizeconverter.HumanReadableSizeInMB(l.maxFileSize))
	}
	kind := contenttype.Detect(nb.ContentType, nb.Filename, nb.Data)
	if kind == contenttype.KindUnknown {
		return Book{}, errors.Wrapf(ErrUnsupportedType, "content type %q", nb.ContentType)
	}

	now := l.now()
	book := Book{
		ID:          uuid.NewString(),
		Title:       title,
		Filename:    nb.Filename,
		Kind:        kind,
		ContentType: nb.ContentType,
		Size:        int64(len(nb.Data)),
		CheckSum:    filechecksum.Calculate(nb.Data),
		CreatedAt:   now,
		ModifiedAt:  now,
	}
	if err := l.store.PutContent(book.ID, nb.Data); err != nil {
		return Book{}, errors.Wrap(err, "failed to store book content")
	}
	err := l.updateBooks(func(books []Book) ([]Book, error) {
		for _, b := range books {
			if b.CheckSum == book.CheckSum {
				return nil, errors.Wrapf(storage.ErrAlreadyExists, "file already imported as %q", b.Title)
			}
		}
		return append(books, book), nil
	})
	if err != nil {
		if delErr := l.store.DeleteContent(book.ID); delErr != nil {
			l.logger.Error("failed to clean up book content", zap.String("book_id", book.ID), zap.Error(delErr))
		}
		return Book{}, err
	}

	l.stats.IncrementBooksImported()
	l.stats.RecordActivity()
	l.logger.Info("book imported",
		zap.String("book_id", book.ID),
		zap.String("kind", string(book.Kind)),
		zap.String("size", sizeconverter.HumanReadableSize(book.Size)),
	)
	return book, nil
}

func (l *Library) List() ([]Book, error) {
	v, err := l.store.Get(BooksKey)
	if err != nil {
		if errors.Is(err, storage.ErrNotFound) {
			return []Book{}, nil
		}
		return nil, err
	}
	return unmarshalBooks(v)
}

func (l *Library) Get(id string) (Book, error) {
	books, err := l.List()
	if err != nil {
		return Book{}, err
	}
	for _, b := range books {
		if b.ID == id {
			return b, nil
		}
	}
	return Book{}, storage.ErrNotFound
}

func (l *Library) Content(id string) (Book, []byte, error) {
	book, err := l.Get(id)
	if err != nil {
		return Book{}, nil, err
	}
	data, err := l.store.GetContent(id)
	if err != nil {
		return Book{}, nil, errors.Wrap(err, "failed to get book content")
	}
	return book, data, nil
}

// Remove deletes the book from the library. Stats are not affected.
func (l *Library) Remove(id string) error {
	err := l.updateBooks(func(books []Book) ([]Book, error) {
		for i, b := range books {
			if b.ID == id {
				return append(books[:i], books[i+1:]...), nil
			}
		}
		return nil, storage.ErrNotFound
	})
	if err != nil {
		return err
	}
	return errors.Wrap(l.store.DeleteContent(id), "failed to delete book content")
}

// UpdateProgress stores the reading progress in percent, clamped to [0, 100].
// Reaching 100 marks the book completed.
func (l *Library) UpdateProgress(id string, percent float64) (Book, error) {
	if math.IsNaN(percent) {
		return Book{}, ErrInvalidProgress
	}
	percent = min(100, max(0, percent))
	book, err := l.updateBook(id, func(b *Book) {
		b.Progress = percent
	})
	if err != nil {
		return Book{}, err
	}
	if book.Completed() {
		l.stats.MarkBookCompleted(book.ID)
	}
	return book, nil
}

// SetDuration records the playback length of an audio book in seconds.
func (l *Library) SetDuration(id string, seconds float64) (Book, error) {
	if !(seconds > 0) || math.IsInf(seconds, 1) {
		return Book{}, ErrInvalidDuration
	}
	return l.updateBook(id, func(b *Book) {
		b.DurationSeconds = seconds
	})
}

func (l *Library) updateBook(id string, updFunc func(*Book)) (Book, error) {
	var updated Book
	err := l.updateBooks(func(books []Book) ([]Book, error) {
		for i := range books {
			if books[i].ID == id {
				updFunc(&books[i])
				books[i].ModifiedAt = l.now()
				updated = books[i]
				return books, nil
			}
		}
		return nil, storage.ErrNotFound
	})
	return updated, err
}

func (l *Library) updateBooks(updFunc func([]Book) ([]Book, error)) error {
	return l.store.Update(BooksKey, func(current []byte) ([]byte, error) {
		books := []Book{}
		if current != nil {
			var err error
			books, err = unmarshalBooks(current)
			if err != nil {
				return nil, err
			}
		}
		books, err := updFunc(books)
		if err != nil {
			return nil, err
		}
		encoded, err := json.Marshal(books)
		if err != nil {
			return nil, errors.Wrap(err, "failed to marshal books")
		}
		return encoded, nil
	})
}

func unmarshalBooks(v []byte) ([]Book, error) {
	var books []Book
	if err := json.Unmarshal(v, &books); err != nil {
		return nil, errors.Wrap(err, "failed to unmarshal books")
	}
	if books == nil {
		books = []Book{}
	}
	return books, nil
}
