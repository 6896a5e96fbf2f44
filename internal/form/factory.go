package form

import (
	"fmt"
	"sort"
	"strings"
	"sync"
	"sync/atomic"
	"time"

	"go.uber.org/zap"
)

// GlobalOrigin tags links registered with RegisterGlobalPreprocessor. It
// contains a forbidden character so no blueprint can claim it.
const GlobalOrigin = "*global"

const forbidden = "*:#"

// Blueprint is a named set of phase lists. It holds no state.
type Blueprint struct {
	Name             string
	Extractors       []Extractor
	EditRenderers    []Renderer
	DisplayRenderers []Renderer
	Preprocessors    []Preprocessor
	Builders         []Builder
}

// Macro is a named chain with default properties.
type Macro struct {
	Name  string
	Chain []string
	Props map[string]any
}

// Observer receives timings of top-level extract and render calls.
type Observer interface {
	ObserveExtract(path string, d time.Duration, err error)
	ObserveRender(path string, mode Mode, d time.Duration, err error)
}

// Stats summarises the registry.
type Stats struct {
	Blueprints    int      `json:"blueprints"`
	Macros        int      `json:"macros"`
	Globals       int      `json:"globals"`
	Defaults      int      `json:"defaults"`
	Compositions  int64    `json:"compositions"`
	BlueprintList []string `json:"blueprint_list"`
}

// Factory stores blueprints and macros and composes widgets from them.
// Registration is expected at boot; lookups are safe for concurrent use.
type Factory struct {
	mu         sync.RWMutex
	blueprints map[string]Blueprint
	macros     map[string]Macro
	globals    []Preprocessor
	defaults   map[string]any

	compositions atomic.Int64

	logger    *zap.Logger
	translate func(string) string
	observer  Observer
}

// FactoryOption configures a Factory.
type FactoryOption func(*Factory)

// WithLogger sets the logger used for registry diagnostics.
func WithLogger(logger *zap.Logger) FactoryOption {
	return func(f *Factory) {
		if logger != nil {
			f.logger = logger
		}
	}
}

// WithTranslator sets the message translator. Identity by default.
func WithTranslator(fn func(string) string) FactoryOption {
	return func(f *Factory) {
		if fn != nil {
			f.translate = fn
		}
	}
}

// WithObserver sets the observer notified of top-level extract/render calls.
func WithObserver(o Observer) FactoryOption {
	return func(f *Factory) {
		f.observer = o
	}
}

// NewFactory creates an empty factory with the compound and array blueprints
// registered.
func NewFactory(opts ...FactoryOption) *Factory {
	f := &Factory{
		blueprints: make(map[string]Blueprint),
		macros:     make(map[string]Macro),
		defaults:   make(map[string]any),
		logger:     zap.NewNop(),
		translate:  func(s string) string { return s },
	}
	for _, opt := range opts {
		opt(f)
	}
	f.mustRegister(compoundBlueprint())
	f.mustRegister(arrayBlueprint())
	return f
}

func validName(name string) error {
	if name == "" {
		return fmt.Errorf("%w: empty name", ErrName)
	}
	if strings.ContainsAny(name, forbidden) {
		return fmt.Errorf("%w: %q contains one of %q", ErrName, name, forbidden)
	}
	return nil
}

// Register stores bp under bp.Name, replacing any previous registration.
func (f *Factory) Register(bp Blueprint) error {
	if err := validName(bp.Name); err != nil {
		return err
	}
	f.mu.Lock()
	_, replaced := f.blueprints[bp.Name]
	f.blueprints[bp.Name] = bp
	f.mu.Unlock()

	f.logger.Debug("Registered blueprint",
		zap.String("name", bp.Name),
		zap.Bool("replaced", replaced),
		zap.Int("extractors", len(bp.Extractors)),
		zap.Int("preprocessors", len(bp.Preprocessors)))
	return nil
}

func (f *Factory) mustRegister(bp Blueprint) {
	if err := f.Register(bp); err != nil {
		panic(err)
	}
}

// RegisterMacro stores a named chain. Referenced names are resolved when the
// macro is expanded, so macros may be registered before their blueprints.
func (f *Factory) RegisterMacro(name string, chain []string, props map[string]any) error {
	if err := validName(name); err != nil {
		return err
	}
	m := Macro{Name: name, Chain: append([]string(nil), chain...), Props: copyProps(props)}
	f.mu.Lock()
	f.macros[name] = m
	f.mu.Unlock()

	f.logger.Debug("Registered macro", zap.String("name", name), zap.Strings("chain", chain))
	return nil
}

// RegisterGlobalPreprocessor adds p to the list run before every composed
// preprocessor chain.
func (f *Factory) RegisterGlobalPreprocessor(p Preprocessor) {
	f.mu.Lock()
	f.globals = append(f.globals, p)
	f.mu.Unlock()
}

// Blueprint returns the blueprint registered under name.
func (f *Factory) Blueprint(name string) (Blueprint, bool) {
	f.mu.RLock()
	defer f.mu.RUnlock()
	bp, ok := f.blueprints[name]
	return bp, ok
}

// Macro returns the macro registered under name.
func (f *Factory) Macro(name string) (Macro, bool) {
	f.mu.RLock()
	defer f.mu.RUnlock()
	m, ok := f.macros[name]
	return m, ok
}

// SetDefault sets a registry-wide attribute default. Keys may carry a
// blueprint prefix ("label.class").
func (f *Factory) SetDefault(key string, value any) {
	f.mu.Lock()
	f.defaults[key] = value
	f.mu.Unlock()
}

// Default returns a registry-wide attribute default.
func (f *Factory) Default(key string) (any, bool) {
	f.mu.RLock()
	defer f.mu.RUnlock()
	v, ok := f.defaults[key]
	return v, ok
}

// Translate runs msg through the configured translator.
func (f *Factory) Translate(msg string) string {
	return f.translate(msg)
}

// Logger returns the factory logger.
func (f *Factory) Logger() *zap.Logger {
	return f.logger
}

// Stats returns registry statistics.
func (f *Factory) Stats() Stats {
	f.mu.RLock()
	defer f.mu.RUnlock()
	names := make([]string, 0, len(f.blueprints))
	for name := range f.blueprints {
		names = append(names, name)
	}
	sort.Strings(names)
	return Stats{
		Blueprints:    len(f.blueprints),
		Macros:        len(f.macros),
		Globals:       len(f.globals),
		Defaults:      len(f.defaults),
		Compositions:  f.compositions.Load(),
		BlueprintList: names,
	}
}

func copyProps(props map[string]any) map[string]any {
	out := make(map[string]any, len(props))
	for k, v := range props {
		out[k] = v
	}
	return out
}
