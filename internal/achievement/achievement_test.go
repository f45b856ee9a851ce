package achievement

import (
	"encoding/json"
	"testing"

	"github.com/pechorka/readstreak/internal/stats"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func byID(list []Achievement) map[string]Achievement {
	result := make(map[string]Achievement, len(list))
	for _, a := range list {
		result[a.ID] = a
	}
	return result
}

func TestEvaluate_DefaultStatsAllLocked(t *testing.T) {
	list := Evaluate(stats.UserStats{CompletedBookIDs: []string{}})
	require.Len(t, list, len(definitions))
	for _, a := range list {
		require.Equal(t, TierLocked, a.Type, a.ID)
		require.NotNil(t, a.Progress, a.ID)
		require.NotNil(t, a.MaxProgress, a.ID)
		require.Zero(t, *a.Progress, a.ID)
	}
}

func TestEvaluate_KeepsDefinitionOrder(t *testing.T) {
	list := Evaluate(stats.UserStats{})
	for i, def := range Definitions() {
		require.Equal(t, def.ID, list[i].ID)
		require.Equal(t, def.Title, list[i].Title)
		require.Equal(t, def.Description, list[i].Description)
	}
}

func TestEvaluate_UnlocksWhenRequirementsMet(t *testing.T) {
	last := "2024-01-01"
	s := stats.UserStats{
		TotalBooksImported:   10,
		CompletedBookIDs:     []string{"1", "2", "3", "4", "5"},
		TotalMinutesRead:     300,
		TotalMinutesListened: 0,
		CurrentStreak:        10,
		LongestStreak:        10,
		LastReadingDate:      &last,
	}

	got := byID(Evaluate(s))
	want := map[string]Tier{
		"streak_10":   TierGold,
		"minutes_300": TierSilver,
		"books_5":     TierBronze,
		"import_10":   TierBronze,
	}
	for id, tier := range want {
		a := got[id]
		assert.Equal(t, tier, a.Type, id)
		assert.Nil(t, a.Progress, id)
		assert.Nil(t, a.MaxProgress, id)
	}
	assert.Equal(t, TierLocked, got["listen_100"].Type)
}

func TestEvaluate_StreakTen(t *testing.T) {
	s := stats.UserStats{CurrentStreak: 10, LongestStreak: 10}
	got := byID(Evaluate(s))

	for _, def := range Definitions() {
		a := got[def.ID]
		if def.ID == "streak_10" {
			require.Equal(t, def.Tier, a.Type)
			require.Nil(t, a.Progress)
			continue
		}
		require.Equal(t, TierLocked, a.Type, def.ID)
	}
}

func TestEvaluate_LockedProgress(t *testing.T) {
	s := stats.UserStats{TotalMinutesRead: 120.5, CurrentStreak: 3, TotalBooksImported: 4}
	got := byID(Evaluate(s))

	tests := []struct {
		id      string
		current float64
		max     float64
	}{
		{id: "minutes_300", current: 120.5, max: 300},
		{id: "streak_10", current: 3, max: 10},
		{id: "import_10", current: 4, max: 10},
		{id: "books_5", current: 0, max: 5},
	}
	for _, tt := range tests {
		t.Run(tt.id, func(t *testing.T) {
			a := got[tt.id]
			require.Equal(t, TierLocked, a.Type)
			require.Equal(t, tt.current, *a.Progress)
			require.Equal(t, tt.max, *a.MaxProgress)
		})
	}
}

func TestEvaluate_JSONOmitsProgressWhenUnlocked(t *testing.T) {
	list := EvaluateWith([]Definition{
		{
			ID: "done", Title: "Done", Description: "done", Tier: TierGold,
			Progress: func(stats.UserStats) (float64, float64) { return 2, 1 },
		},
		{
			ID: "todo", Title: "Todo", Description: "todo", Tier: TierBronze,
			Progress: func(stats.UserStats) (float64, float64) { return 1, 2 },
		},
	}, stats.UserStats{})

	encoded, err := json.Marshal(list)
	require.NoError(t, err)
	require.JSONEq(t, `[
		{"id":"done","title":"Done","description":"done","type":"gold"},
		{"id":"todo","title":"Todo","description":"todo","type":"locked","progress":1,"maxProgress":2}
	]`, string(encoded))
}

func TestSummarize(t *testing.T) {
	s := stats.UserStats{CompletedBookIDs: []string{"a"}, TotalMinutesListened: 100}
	sum := Summarize(Evaluate(s))
	require.Equal(t, Summary{Unlocked: 2, Locked: 4}, sum)
}
