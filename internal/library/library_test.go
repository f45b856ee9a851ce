package library

import (
	"strings"
	"testing"
	"time"

	"github.com/pechorka/readstreak/internal/stats"
	"github.com/pechorka/readstreak/internal/storage"
	"github.com/pechorka/readstreak/pkg/contenttype"
	"github.com/pkg/errors"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func testStorage(t *testing.T) *storage.Storage {
	s, err := storage.NewTempStorage()
	require.NoError(t, err)
	t.Cleanup(func() {
		require.NoError(t, s.Close())
	})
	return s
}

func testLibrary(t *testing.T, maxFileSize int64) (*Library, *stats.Engine) {
	store := testStorage(t)
	now := func() time.Time { return time.Date(2024, 3, 1, 10, 0, 0, 0, time.Local) }
	engine := stats.NewEngine(store, stats.WithClock(now))
	lib := New(Config{
		Store:       store,
		Stats:       engine,
		MaxFileSize: maxFileSize,
		Now:         now,
	})
	return lib, engine
}

func importText(t *testing.T, lib *Library, title, text string) Book {
	book, err := lib.Import(NewBook{
		Title:       title,
		Filename:    title + ".txt",
		ContentType: "text/plain",
		Data:        []byte(text),
	})
	require.NoError(t, err)
	return book
}

func TestImport(t *testing.T) {
	lib, engine := testLibrary(t, 0)

	book := importText(t, lib, "  Moby Dick ", "Call me Ishmael.")
	assert.NotEmpty(t, book.ID)
	assert.Equal(t, "Moby Dick", book.Title)
	assert.Equal(t, contenttype.KindText, book.Kind)
	assert.Equal(t, int64(len("Call me Ishmael.")), book.Size)
	assert.Zero(t, book.Progress)

	s := engine.Stats()
	assert.Equal(t, int64(1), s.TotalBooksImported)
	assert.Equal(t, int64(1), s.CurrentStreak)
	require.NotNil(t, s.LastReadingDate)
	assert.Equal(t, "2024-03-01", *s.LastReadingDate)

	books, err := lib.List()
	require.NoError(t, err)
	require.Len(t, books, 1)
	assert.Equal(t, book, books[0])

	got, data, err := lib.Content(book.ID)
	require.NoError(t, err)
	assert.Equal(t, book, got)
	assert.Equal(t, "Call me Ishmael.", string(data))
}

func TestImport_Errors(t *testing.T) {
	lib, engine := testLibrary(t, 16)
	importText(t, lib, "first", "0123456789")

	tests := []struct {
		name    string
		nb      NewBook
		wantErr error
	}{
		{name: "empty title", nb: NewBook{Title: " ", ContentType: "text/plain", Data: []byte("x")}, wantErr: ErrEmptyTitle},
		{name: "empty file", nb: NewBook{Title: "t", ContentType: "text/plain"}, wantErr: ErrEmptyFile},
		{name: "too big", nb: NewBook{Title: "t", ContentType: "text/plain", Data: []byte(strings.Repeat("a", 17))}, wantErr: ErrTooBig},
		{name: "unsupported", nb: NewBook{Title: "t", ContentType: "image/png", Data: []byte("png")}, wantErr: ErrUnsupportedType},
		{name: "duplicate content", nb: NewBook{Title: "second", ContentType: "text/plain", Data: []byte("0123456789")}, wantErr: storage.ErrAlreadyExists},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			_, err := lib.Import(tt.nb)
			require.ErrorIs(t, err, tt.wantErr)
		})
	}

	_, err := lib.Import(NewBook{Title: strings.Repeat("a", 256), ContentType: "text/plain", Data: []byte("y")})
	require.ErrorIs(t, err, ErrTitleTooLong)

	books, err := lib.List()
	require.NoError(t, err)
	require.Len(t, books, 1)
	require.Equal(t, int64(1), engine.Stats().TotalBooksImported, "failed imports are not counted")
}

func TestImport_TooBigMessage(t *testing.T) {
	lib, _ := testLibrary(t, 20*1024*1024)
	_, err := lib.Import(NewBook{Title: "big", ContentType: "text/plain", Data: make([]byte, 20*1024*1024+1)})
	require.ErrorIs(t, err, ErrTooBig)
	require.Contains(t, err.Error(), "20 MB")
}

func TestList_Empty(t *testing.T) {
	lib, _ := testLibrary(t, 0)
	books, err := lib.List()
	require.NoError(t, err)
	require.Empty(t, books)
}

func TestRemove(t *testing.T) {
	lib, engine := testLibrary(t, 0)
	book := importText(t, lib, "a", "aaa")
	importText(t, lib, "b", "bbb")

	require.NoError(t, lib.Remove(book.ID))
	require.ErrorIs(t, lib.Remove(book.ID), storage.ErrNotFound)

	_, err := lib.Get(book.ID)
	require.ErrorIs(t, err, storage.ErrNotFound)
	_, _, err = lib.Content(book.ID)
	require.ErrorIs(t, err, storage.ErrNotFound)

	books, err := lib.List()
	require.NoError(t, err)
	require.Len(t, books, 1)
	require.Equal(t, int64(2), engine.Stats().TotalBooksImported, "removal never decrements imports")

	// the same file can be imported again once removed
	importText(t, lib, "a again", "aaa")
}

func TestUpdateProgress(t *testing.T) {
	lib, engine := testLibrary(t, 0)
	book := importText(t, lib, "a", "aaa")

	tests := []struct {
		name string
		in   float64
		want float64
	}{
		{name: "regular", in: 42.5, want: 42.5},
		{name: "below zero", in: -10, want: 0},
		{name: "above hundred", in: 140, want: 100},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got, err := lib.UpdateProgress(book.ID, tt.in)
			require.NoError(t, err)
			require.Equal(t, tt.want, got.Progress)
		})
	}

	require.True(t, engine.Stats().IsCompleted(book.ID))

	_, err := lib.UpdateProgress(book.ID, 100)
	require.NoError(t, err)
	require.Equal(t, []string{book.ID}, engine.Stats().CompletedBookIDs)

	_, err = lib.UpdateProgress("missing", 10)
	require.ErrorIs(t, err, storage.ErrNotFound)
}

func TestSetDuration(t *testing.T) {
	lib, _ := testLibrary(t, 0)
	book, err := lib.Import(NewBook{Title: "audio", Filename: "a.mp3", ContentType: "audio/mpeg", Data: []byte("ID3")})
	require.NoError(t, err)
	require.Equal(t, contenttype.KindAudio, book.Kind)

	got, err := lib.SetDuration(book.ID, 3600)
	require.NoError(t, err)
	require.Equal(t, 3600.0, got.DurationSeconds)

	_, err = lib.SetDuration(book.ID, 0)
	require.ErrorIs(t, err, ErrInvalidDuration)
}

type failingStore struct {
	Store
	updateErr error
	deleted   []string
}

func (f *failingStore) Update(string, storage.UpdateFunc) error { return f.updateErr }

func (f *failingStore) PutContent(string, []byte) error { return nil }

func (f *failingStore) DeleteContent(id string) error {
	f.deleted = append(f.deleted, id)
	return nil
}

func TestImport_CleansUpContentOnFailure(t *testing.T) {
	store := &failingStore{updateErr: errors.New("disk full")}
	engine := stats.NewEngine(testStorage(t))
	lib := New(Config{Store: store, Stats: engine})

	_, err := lib.Import(NewBook{Title: "a", ContentType: "text/plain", Data: []byte("aaa")})
	require.Error(t, err)
	require.Len(t, store.deleted, 1)
	require.Zero(t, engine.Stats().TotalBooksImported)
}
