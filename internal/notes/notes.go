package notes

import (
	"encoding/json"
	"strings"
	"time"

	"github.com/google/uuid"
	"github.com/pechorka/readstreak/internal/storage"
	"github.com/pkg/errors"
)

var (
	ErrEmptyText   = errors.New("note text is empty")
	ErrEmptyBookID = errors.New("book id is empty")
)

// NotesKey is the key the notes list is persisted under.
const NotesKey = "bookNotes"

type Note struct {
	ID        string    `json:"id"`
	BookID    string    `json:"bookId"`
	Text      string    `json:"text"`
	CreatedAt time.Time `json:"createdAt"`
}

type Store interface {
	Get(key string) ([]byte, error)
	Update(key string, updFunc storage.UpdateFunc) error
}

type Notes struct {
	store Store
	now   func() time.Time
}

func New(store Store, now func() time.Time) *Notes {
	if now == nil {
		now = time.Now
	}
	return &Notes{store: store, now: now}
}

func (n *Notes) Add(bookID, text string) (Note, error) {
	if bookID == "" {
		return Note{}, ErrEmptyBookID
	}
	text = strings.TrimSpace(text)
	if text == "" {
		return Note{}, ErrEmptyText
	}
	note := Note{
		ID:        uuid.NewString(),
		BookID:    bookID,
		Text:      text,
		CreatedAt: n.now().UTC().Truncate(time.Second),
	}
	err := n.update(func(notes []Note) ([]Note, error) {
		return append(notes, note), nil
	})
	return note, err
}

func (n *Notes) Update(id, text string) (Note, error) {
	text = strings.TrimSpace(text)
	if text == "" {
		return Note{}, ErrEmptyText
	}
	var updated Note
	err := n.update(func(notes []Note) ([]Note, error) {
		for i := range notes {
			if notes[i].ID == id {
				notes[i].Text = text
				updated = notes[i]
				return notes, nil
			}
		}
		return nil, storage.ErrNotFound
	})
	return updated, err
}

func (n *Notes) Delete(id string) error {
	return n.update(func(notes []Note) ([]Note, error) {
		for i := range notes {
			if notes[i].ID == id {
				return append(notes[:i], notes[i+1:]...), nil
			}
		}
		return nil, storage.ErrNotFound
	})
}

// DeleteForBook drops every note of bookID and returns how many were removed.
func (n *Notes) DeleteForBook(bookID string) (int, error) {
	var removed int
	err := n.update(func(notes []Note) ([]Note, error) {
		kept := notes[:0]
		for _, note := range notes {
			if note.BookID == bookID {
				removed++
				continue
			}
			kept = append(kept, note)
		}
		return kept, nil
	})
	return removed, err
}

func (n *Notes) ForBook(bookID string) ([]Note, error) {
	all, err := n.All()
	if err != nil {
		return nil, err
	}
	result := make([]Note, 0)
	for _, note := range all {
		if note.BookID == bookID {
			result = append(result, note)
		}
	}
	return result, nil
}

func (n *Notes) All() ([]Note, error) {
	v, err := n.store.Get(NotesKey)
	if err != nil {
		if errors.Is(err, storage.ErrNotFound) {
			return []Note{}, nil
		}
		return nil, err
	}
	return unmarshalNotes(v)
}

func (n *Notes) update(updFunc func([]Note) ([]Note, error)) error {
	return n.store.Update(NotesKey, func(current []byte) ([]byte, error) {
		notes := []Note{}
		if current != nil {
			var err error
			notes, err = unmarshalNotes(current)
			if err != nil {
				return nil, err
			}
		}
		notes, err := updFunc(notes)
		if err != nil {
			return nil, err
		}
		encoded, err := json.Marshal(notes)
		if err != nil {
			return nil, errors.Wrap(err, "failed to marshal notes")
		}
		return encoded, nil
	})
}

func unmarshalNotes(v []byte) ([]Note, error) {
	var notes []Note
	if err := json.Unmarshal(v, &notes); err != nil {
		return nil, errors.Wrap(err, "failed to unmarshal notes")
	}
	if notes == nil {
		notes = []Note{}
	}
	return notes, nil
}
