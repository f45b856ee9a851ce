package i18n

import (
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"os"
	"sort"
	"sync"

	"github.com/valyala/fasttemplate"
)

var ErrNotFound = errors.New("not found")

type translation struct {
	template *fasttemplate.Template
	text     string
}

func (t *translation) UnmarshalJSON(data []byte) error {
	var text string
	err := json.Unmarshal(data, &text)
	if err != nil {
		return err
	}
	t.text = text
	t.template, err = fasttemplate.NewTemplate(text, "{{", "}}")
	return err
}

// Catalog holds translations keyed by language and message id.
// It is safe for concurrent use and can be reloaded while in use.
type Catalog struct {
	mu       sync.RWMutex
	fallback string
	cms      map[string]map[string]*translation // map[language_code]map[message_id]message
}

// New creates an empty catalog. Lookups in a language without the message
// fall back to fallbackLang.
func New(fallbackLang string) *Catalog {
	return &Catalog{fallback: fallbackLang}
}

func (c *Catalog) Load(path string) (err error) {
	f, err := os.Open(path)
	if err != nil {
		return err
	}
	defer func() { err = errors.Join(err, f.Close()) }()
	return c.Read(f)
}

func (c *Catalog) Read(r io.Reader) error {
	var translations map[string]map[string]*translation
	if err := json.NewDecoder(r).Decode(&translations); err != nil {
		return err
	}

	c.mu.Lock()
	c.cms = translations
	c.mu.Unlock()
	return nil
}

func (c *Catalog) GetWithArgs(lang, id string, args map[string]string) (string, error) {
	translation, ok := c.get(lang, id)
	if !ok {
		return "", ErrNotFound
	}
	return translation.template.ExecuteFuncStringWithErr(func(w io.Writer, tag string) (int, error) {
		value, ok := args[tag]
		if !ok {
			return 0, fmt.Errorf("missing argument %s", tag)
		}
		return w.Write([]byte(value))
	})
}

// Languages lists the loaded language codes in sorted order.
func (c *Catalog) Languages() []string {
	c.mu.RLock()
	defer c.mu.RUnlock()
	langs := make([]string, 0, len(c.cms))
	for lang := range c.cms {
		langs = append(langs, lang)
	}
	sort.Strings(langs)
	return langs
}

func (c *Catalog) get(lang, id string) (*translation, bool) {
	c.mu.RLock()
	defer c.mu.RUnlock()

	if t, ok := c.cms[lang][id]; ok {
		return t, true
	}
	t, ok := c.cms[c.fallback][id]
	return t, ok
}
