package stats

import "golang.org/x/exp/slices"

// UserStats is the persisted reading record of the installation.
type UserStats struct {
	TotalBooksImported   int64    `json:"totalBooksImported"`
	CompletedBookIDs     []string `json:"completedBookIds"`
	TotalMinutesRead     float64  `json:"totalMinutesRead"`
	TotalMinutesListened float64  `json:"totalMinutesListened"`
	CurrentStreak        int64    `json:"currentStreak"`
	LongestStreak        int64    `json:"longestStreak"`
	LastReadingDate      *string  `json:"lastReadingDate"`
}

func defaultUserStats() UserStats {
	return UserStats{
		CompletedBookIDs: []string{},
	}
}

// BooksCompleted returns the number of distinct completed books.
func (s UserStats) BooksCompleted() int {
	return len(s.CompletedBookIDs)
}

// IsCompleted reports whether bookID was marked completed.
func (s UserStats) IsCompleted(bookID string) bool {
	return slices.Contains(s.CompletedBookIDs, bookID)
}

func (s UserStats) clone() UserStats {
	c := s
	c.CompletedBookIDs = append(make([]string, 0, len(s.CompletedBookIDs)), s.CompletedBookIDs...)
	if s.LastReadingDate != nil {
		d := *s.LastReadingDate
		c.LastReadingDate = &d
	}
	return c
}
