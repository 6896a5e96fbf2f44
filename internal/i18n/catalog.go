// Package i18n translates form messages.
//
// A Catalog keeps messages per language and hands out the plain
// func(string) string translator the form factory expects. Language
// selection uses golang.org/x/text matching, so "nb-NO" falls back to a
// catalog registered for "nb" and unknown languages to the fallback.
package i18n

import (
	"fmt"
	"sort"
	"sync"

	"golang.org/x/text/language"
)

// Catalog holds message translations keyed by language.
type Catalog struct {
	mu       sync.RWMutex
	fallback language.Tag
	messages map[language.Tag]map[string]string
	tags     []language.Tag
	matcher  language.Matcher
}

// New creates a catalog whose untranslated language is fallback.
func New(fallback language.Tag) *Catalog {
	c := &Catalog{
		fallback: fallback,
		messages: map[language.Tag]map[string]string{fallback: {}},
	}
	c.rebuild()
	return c
}

// Add merges messages for tag. Later calls override earlier keys.
func (c *Catalog) Add(tag language.Tag, messages map[string]string) {
	c.mu.Lock()
	defer c.mu.Unlock()

	m, ok := c.messages[tag]
	if !ok {
		m = make(map[string]string, len(messages))
		c.messages[tag] = m
	}
	for k, v := range messages {
		m[k] = v
	}
	if !ok {
		c.rebuild()
	}
}

// AddString parses lang and merges messages for it.
func (c *Catalog) AddString(lang string, messages map[string]string) error {
	tag, err := language.Parse(lang)
	if err != nil {
		return fmt.Errorf("invalid language %q: %w", lang, err)
	}
	c.Add(tag, messages)
	return nil
}

// rebuild refreshes the matcher; the fallback is always first.
func (c *Catalog) rebuild() {
	tags := make([]language.Tag, 0, len(c.messages))
	for tag := range c.messages {
		if tag != c.fallback {
			tags = append(tags, tag)
		}
	}
	sort.Slice(tags, func(i, j int) bool { return tags[i].String() < tags[j].String() })
	c.tags = append([]language.Tag{c.fallback}, tags...)
	c.matcher = language.NewMatcher(c.tags)
}

// Languages returns the supported languages, fallback first.
func (c *Catalog) Languages() []language.Tag {
	c.mu.RLock()
	defer c.mu.RUnlock()
	return append([]language.Tag(nil), c.tags...)
}

// Match returns the supported language closest to the preferences.
func (c *Catalog) Match(prefs ...language.Tag) language.Tag {
	c.mu.RLock()
	defer c.mu.RUnlock()
	_, i, conf := c.matcher.Match(prefs...)
	if conf == language.No {
		return c.fallback
	}
	return c.tags[i]
}

// MatchString matches a configured language or an Accept-Language header.
func (c *Catalog) MatchString(s string) language.Tag {
	prefs, _, err := language.ParseAcceptLanguage(s)
	if err != nil || len(prefs) == 0 {
		return c.fallback
	}
	return c.Match(prefs...)
}

// Translator returns the translation function for the language closest to
// tag. Messages without a translation are returned unchanged.
func (c *Catalog) Translator(tag language.Tag) func(string) string {
	matched := c.Match(tag)
	return func(msg string) string {
		c.mu.RLock()
		defer c.mu.RUnlock()
		if t, ok := c.messages[matched][msg]; ok {
			return t
		}
		return msg
	}
}
