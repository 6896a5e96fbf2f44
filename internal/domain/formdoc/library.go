package formdoc

import (
	"errors"
	"fmt"
	"sort"
	"sync"
	"sync/atomic"
	"time"

	"github.com/GriffinCanCode/formwork/internal/form"
	"go.uber.org/zap"
)

// ErrNotFound is returned for a form the library does not hold.
var ErrNotFound = errors.New("form not found")

// Entry is a built form held by the library.
type Entry struct {
	Document *Document
	Widget   *form.Widget
	Source   string
	LoadedAt time.Time
}

// Summary describes an entry for listings.
type Summary struct {
	Name        string    `json:"name"`
	Title       string    `json:"title,omitempty"`
	Description string    `json:"description,omitempty"`
	Source      string    `json:"source,omitempty"`
	LoadedAt    time.Time `json:"loaded_at"`
}

// Stats reports library counters.
type Stats struct {
	Forms       int        `json:"forms"`
	Loads       int64      `json:"loads"`
	Failures    int64      `json:"failures"`
	LastUpdated *time.Time `json:"last_updated,omitempty"`
}

// Library holds built forms by document name. Built widget trees are
// shared by all requests.
type Library struct {
	factory  *form.Factory
	bindings Bindings
	logger   *zap.Logger

	entries  sync.Map
	size     atomic.Int64
	loads    atomic.Int64
	failures atomic.Int64
	now      func() time.Time
}

// NewLibrary creates a library building documents with f.
func NewLibrary(f *form.Factory, b Bindings, logger *zap.Logger) *Library {
	if logger == nil {
		logger = zap.NewNop()
	}
	return &Library{factory: f, bindings: b, logger: logger, now: time.Now}
}

// Factory returns the factory documents are built with.
func (l *Library) Factory() *form.Factory { return l.factory }

// Add builds doc and stores it, replacing a form of the same name.
func (l *Library) Add(doc *Document, source string) (*Entry, error) {
	if err := doc.Validate(); err != nil {
		l.failures.Add(1)
		return nil, err
	}
	w, err := doc.Build(l.factory, l.bindings)
	if err != nil {
		l.failures.Add(1)
		return nil, err
	}

	e := &Entry{Document: doc, Widget: w, Source: source, LoadedAt: l.now()}
	if _, existed := l.entries.Swap(doc.Name, e); !existed {
		l.size.Add(1)
	}
	l.loads.Add(1)

	l.logger.Debug("Form added", zap.String("form", doc.Name), zap.String("source", source))
	return e, nil
}

// AddBytes parses and adds a document.
func (l *Library) AddBytes(data []byte, source string) (*Entry, error) {
	doc, err := Parse(data)
	if err != nil {
		l.failures.Add(1)
		return nil, fmt.Errorf("%s: %w", source, err)
	}
	return l.Add(doc, source)
}

// Get returns the form called name.
func (l *Library) Get(name string) (*Entry, error) {
	if v, ok := l.entries.Load(name); ok {
		return v.(*Entry), nil
	}
	return nil, fmt.Errorf("%w: %s", ErrNotFound, name)
}

// Exists checks if a form exists.
func (l *Library) Exists(name string) bool {
	_, ok := l.entries.Load(name)
	return ok
}

// Delete removes a form.
func (l *Library) Delete(name string) bool {
	if _, existed := l.entries.LoadAndDelete(name); existed {
		l.size.Add(-1)
		return true
	}
	return false
}

// Len returns the number of forms.
func (l *Library) Len() int { return int(l.size.Load()) }

// List returns summaries sorted by name.
func (l *Library) List() []Summary {
	var out []Summary
	l.entries.Range(func(_, value any) bool {
		e := value.(*Entry)
		out = append(out, Summary{
			Name:        e.Document.Name,
			Title:       e.Document.Title,
			Description: e.Document.Description,
			Source:      e.Source,
			LoadedAt:    e.LoadedAt,
		})
		return true
	})
	sort.Slice(out, func(i, j int) bool { return out[i].Name < out[j].Name })
	return out
}

// Stats returns library statistics.
func (l *Library) Stats() Stats {
	var lastUpdated *time.Time
	l.entries.Range(func(_, value any) bool {
		e := value.(*Entry)
		if lastUpdated == nil || e.LoadedAt.After(*lastUpdated) {
			t := e.LoadedAt
			lastUpdated = &t
		}
		return true
	})
	return Stats{
		Forms:       l.Len(),
		Loads:       l.loads.Load(),
		Failures:    l.failures.Load(),
		LastUpdated: lastUpdated,
	}
}
