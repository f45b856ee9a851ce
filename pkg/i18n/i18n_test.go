package i18n

import (
	"strings"
	"testing"

	"github.com/stretchr/testify/require"
)

const testCatalog = `{
	"en": {"greeting": "hello", "goal": "Read for {{target}} minutes"},
	"de": {"greeting": "hallo"}
}`

func TestCatalog_Fallback(t *testing.T) {
	c := New("en")
	require.NoError(t, c.Read(strings.NewReader(testCatalog)))

	got, err := c.GetWithArgs("de", "greeting", nil)
	require.NoError(t, err)
	require.Equal(t, "hallo", got)

	got, err = c.GetWithArgs("fr", "greeting", nil)
	require.NoError(t, err)
	require.Equal(t, "hello", got, "unknown language falls back")

	_, err = c.GetWithArgs("en", "missing", nil)
	require.ErrorIs(t, err, ErrNotFound)

	require.Equal(t, []string{"de", "en"}, c.Languages())
}

func TestCatalog_GetWithArgs(t *testing.T) {
	c := New("en")
	require.NoError(t, c.Read(strings.NewReader(testCatalog)))

	got, err := c.GetWithArgs("de", "goal", map[string]string{"target": "300"})
	require.NoError(t, err)
	require.Equal(t, "Read for 300 minutes", got)

	_, err = c.GetWithArgs("en", "goal", nil)
	require.Error(t, err)
}

func TestCatalog_ReadInvalid(t *testing.T) {
	c := New("en")
	require.Error(t, c.Read(strings.NewReader(`{"en": {"bad": "{{unclosed"}}`)))
	require.Error(t, c.Read(strings.NewReader(`[]`)))
}
