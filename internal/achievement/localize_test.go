package achievement_test

import (
	"strings"
	"testing"

	"github.com/pechorka/readstreak/internal/achievement"
	"github.com/pechorka/readstreak/internal/stats"
	"github.com/pechorka/readstreak/pkg/i18n"
	"github.com/stretchr/testify/require"
)

func TestLocalize(t *testing.T) {
	catalog := i18n.New("en")
	err := catalog.Read(strings.NewReader(`{
		"en": {"minutes_300.description": "Read for {{target}} minutes in total"},
		"de": {"streak_10.title": "Bücherwurm", "streak_10.description": "{{target}} Tage in Folge lesen"}
	}`))
	require.NoError(t, err)

	list := achievement.Localize(achievement.Evaluate(stats.UserStats{}), catalog, "de")

	byID := make(map[string]achievement.Achievement)
	for _, a := range list {
		byID[a.ID] = a
	}
	require.Equal(t, "Bücherwurm", byID["streak_10"].Title)
	require.Equal(t, "10 Tage in Folge lesen", byID["streak_10"].Description)
	require.Equal(t, "Read for 300 minutes in total", byID["minutes_300"].Description, "falls back to english catalog")
	require.Equal(t, "Marathon Reader", byID["minutes_300"].Title, "falls back to built-in text")
	require.Equal(t, achievement.TierLocked, byID["streak_10"].Type)
}

func TestLocalize_NilTranslator(t *testing.T) {
	list := achievement.Evaluate(stats.UserStats{})
	require.Equal(t, list, achievement.Localize(list, nil, "de"))
}
