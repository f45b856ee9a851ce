package achievement

import (
	"strconv"

	"github.com/pechorka/readstreak/internal/stats"
)

type Translator interface {
	GetWithArgs(lang, id string, args map[string]string) (string, error)
}

// Localize replaces titles and descriptions with translations of
// "<id>.title" and "<id>.description". Missing translations keep the
// built-in English text. Templates may reference {{target}}.
func Localize(list []Achievement, tr Translator, lang string) []Achievement {
	if tr == nil {
		return list
	}
	result := make([]Achievement, 0, len(list))
	for _, a := range list {
		args := map[string]string{"target": targetOf(a.ID)}
		if title, err := tr.GetWithArgs(lang, a.ID+".title", args); err == nil {
			a.Title = title
		}
		if description, err := tr.GetWithArgs(lang, a.ID+".description", args); err == nil {
			a.Description = description
		}
		result = append(result, a)
	}
	return result
}

func targetOf(id string) string {
	for _, def := range definitions {
		if def.ID == id {
			_, target := def.Progress(stats.UserStats{})
			return strconv.FormatFloat(target, 'f', -1, 64)
		}
	}
	return ""
}
