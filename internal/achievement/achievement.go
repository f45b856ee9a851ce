package achievement

import "github.com/pechorka/readstreak/internal/stats"

type Tier string

const (
	TierGold   Tier = "gold"
	TierSilver Tier = "silver"
	TierBronze Tier = "bronze"
	TierLocked Tier = "locked"
)

// ProgressFunc returns how far stats are towards a goal and the goal itself.
type ProgressFunc func(s stats.UserStats) (current, target float64)

type Definition struct {
	ID          string
	Title       string
	Description string
	Tier        Tier
	Progress    ProgressFunc
}

// Achievement is the view of a Definition for a particular stats record.
// Progress and MaxProgress are only set while the achievement is locked.
type Achievement struct {
	ID          string   `json:"id"`
	Title       string   `json:"title"`
	Description string   `json:"description"`
	Type        Tier     `json:"type"`
	Progress    *float64 `json:"progress,omitempty"`
	MaxProgress *float64 `json:"maxProgress,omitempty"`
}

func (a Achievement) Unlocked() bool {
	return a.Type != TierLocked
}

var definitions = []Definition{
	{
		ID:          "streak_10",
		Title:       "Bookworm",
		Description: "Maintain a 10 day reading streak",
		Tier:        TierGold,
		Progress:    threshold(10, func(s stats.UserStats) float64 { return float64(s.CurrentStreak) }),
	},
	{
		ID:          "minutes_300",
		Title:       "Marathon Reader",
		Description: "Read for 300 minutes",
		Tier:        TierSilver,
		Progress:    threshold(300, func(s stats.UserStats) float64 { return s.TotalMinutesRead }),
	},
	{
		ID:          "books_5",
		Title:       "Finisher",
		Description: "Finish 5 books",
		Tier:        TierBronze,
		Progress:    threshold(5, func(s stats.UserStats) float64 { return float64(s.BooksCompleted()) }),
	},
	{
		ID:          "import_10",
		Title:       "Collector",
		Description: "Import 10 books",
		Tier:        TierBronze,
		Progress:    threshold(10, func(s stats.UserStats) float64 { return float64(s.TotalBooksImported) }),
	},
	{
		ID:          "complete_1",
		Title:       "First Finish",
		Description: "Finish your first book",
		Tier:        TierSilver,
		Progress:    threshold(1, func(s stats.UserStats) float64 { return float64(s.BooksCompleted()) }),
	},
	{
		ID:          "listen_100",
		Title:       "Audio Aficionado",
		Description: "Listen for 100 minutes",
		Tier:        TierSilver,
		Progress:    threshold(100, func(s stats.UserStats) float64 { return s.TotalMinutesListened }),
	},
}

func threshold(target float64, current func(stats.UserStats) float64) ProgressFunc {
	return func(s stats.UserStats) (float64, float64) {
		return current(s), target
	}
}

// Definitions returns the achievement table in evaluation order.
func Definitions() []Definition {
	return append([]Definition(nil), definitions...)
}

// Evaluate computes one achievement per definition, in table order.
func Evaluate(s stats.UserStats) []Achievement {
	return EvaluateWith(definitions, s)
}

func EvaluateWith(defs []Definition, s stats.UserStats) []Achievement {
	result := make([]Achievement, 0, len(defs))
	for _, def := range defs {
		result = append(result, evaluate(def, s))
	}
	return result
}

func evaluate(def Definition, s stats.UserStats) Achievement {
	current, target := def.Progress(s)
	a := Achievement{
		ID:          def.ID,
		Title:       def.Title,
		Description: def.Description,
		Type:        def.Tier,
	}
	if current >= target {
		return a
	}
	a.Type = TierLocked
	a.Progress = &current
	a.MaxProgress = &target
	return a
}

type Summary struct {
	Unlocked int `json:"unlocked"`
	Locked   int `json:"locked"`
}

func Summarize(list []Achievement) Summary {
	var sum Summary
	for _, a := range list {
		if a.Unlocked() {
			sum.Unlocked++
		} else {
			sum.Locked++
		}
	}
	return sum
}
