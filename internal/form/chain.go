package form

import (
	"fmt"
	"slices"
	"strings"

	"go.uber.org/zap"
)

// maxMacroDepth bounds macro nesting independently of cycle detection.
const maxMacroDepth = 32

// ParseChain splits a colon-separated chain ("field:label:text") into tokens.
func ParseChain(spec string) []string {
	if spec == "" {
		return nil
	}
	parts := strings.Split(spec, ":")
	tokens := parts[:0]
	for _, p := range parts {
		if p = strings.TrimSpace(p); p != "" {
			tokens = append(tokens, p)
		}
	}
	return tokens
}

// ChainTokens converts a decoded chain spec, a colon string or a list of
// strings, into tokens.
func ChainTokens(spec any) ([]string, error) {
	switch c := spec.(type) {
	case string:
		return ParseChain(c), nil
	case []string:
		return slices.Clone(c), nil
	case []any:
		tokens := make([]string, len(c))
		for i, t := range c {
			s, ok := t.(string)
			if !ok {
				return nil, fmt.Errorf("%w: chain token %d has type %T", ErrValue, i, t)
			}
			tokens[i] = s
		}
		return tokens, nil
	case nil:
		return nil, fmt.Errorf("%w: chain is missing", ErrValue)
	}
	return nil, fmt.Errorf("%w: chain has type %T", ErrValue, spec)
}

// composition is the result of expanding a chain spec.
type composition struct {
	extractors []Link[Extractor]
	edit       []Link[Renderer]
	display    []Link[Renderer]
	pre        []Link[Preprocessor]
	builders   []Link[Builder]
	props      map[string]any
}

// add merges one blueprint. Extractors and renderers are prepended so the
// innermost (last) token runs first; preprocessors and builders are appended.
func (c *composition) add(origin string, bp Blueprint) {
	c.extractors = append(links(origin, bp.Extractors), c.extractors...)
	c.edit = append(links(origin, bp.EditRenderers), c.edit...)
	c.display = append(links(origin, bp.DisplayRenderers), c.display...)
	c.pre = append(c.pre, links(origin, bp.Preprocessors)...)
	c.builders = append(c.builders, links(origin, bp.Builders)...)
}

func links[T any](origin string, fns []T) []Link[T] {
	out := make([]Link[T], len(fns))
	for i, fn := range fns {
		out[i] = Link[T]{Origin: origin, Fn: fn}
	}
	return out
}

// compose expands tokens into the five phase lists without building a widget.
func (f *Factory) compose(tokens []string, custom map[string]Blueprint) (*composition, error) {
	c := &composition{props: make(map[string]any)}

	f.mu.RLock()
	globals := slices.Clone(f.globals)
	f.mu.RUnlock()
	c.pre = append(c.pre, links(GlobalOrigin, globals)...)

	if err := f.expand(c, tokens, custom, nil); err != nil {
		return nil, err
	}
	return c, nil
}

func (f *Factory) expand(c *composition, tokens []string, custom map[string]Blueprint, stack []string) error {
	for _, tok := range tokens {
		switch {
		case strings.HasPrefix(tok, "#"):
			name := tok[1:]
			if slices.Contains(stack, name) {
				return fmt.Errorf("%w: %s", ErrCycle, strings.Join(append(stack, name), " -> "))
			}
			if len(stack) >= maxMacroDepth {
				return fmt.Errorf("%w: nesting deeper than %d at %q", ErrCycle, maxMacroDepth, name)
			}
			m, ok := f.Macro(name)
			if !ok {
				return fmt.Errorf("%w: macro %q", ErrUnknown, name)
			}
			if err := f.expand(c, m.Chain, custom, append(stack, name)); err != nil {
				return err
			}
			for k, v := range m.Props {
				c.props[k] = v
			}

		case strings.HasPrefix(tok, "*"):
			name := tok[1:]
			bp, ok := custom[name]
			if !ok {
				return fmt.Errorf("%w: custom %q", ErrUnknown, name)
			}
			c.add(name, bp)

		default:
			if err := validName(tok); err != nil {
				return err
			}
			bp, ok := f.Blueprint(tok)
			if !ok {
				return fmt.Errorf("%w: %q", ErrUnknown, tok)
			}
			c.add(tok, bp)
		}
	}
	return nil
}

// Option configures a widget under construction.
type Option func(*options)

type options struct {
	props    map[string]any
	value    any
	hasValue bool
	getter   Getter
	mode     Mode
	modeFn   ModeFunc
	custom   map[string]Blueprint
	children []*Widget
}

// WithProps merges static properties. Later options win.
func WithProps(props map[string]any) Option {
	return func(o *options) {
		for k, v := range props {
			o.props[k] = v
		}
	}
}

// WithProp sets one static property.
func WithProp(key string, value any) Option {
	return func(o *options) { o.props[key] = value }
}

// WithValue sets the widget's static value.
func WithValue(v any) Option {
	return func(o *options) {
		o.value, o.hasValue, o.getter = v, true, nil
	}
}

// WithGetter sets a per-call value getter.
func WithGetter(g Getter) Option {
	return func(o *options) {
		o.getter, o.hasValue, o.value = g, g != nil, nil
	}
}

// WithMode sets a static mode.
func WithMode(m Mode) Option {
	return func(o *options) { o.mode, o.modeFn = m, nil }
}

// WithModeFunc sets a per-call mode.
func WithModeFunc(fn ModeFunc) Option {
	return func(o *options) { o.modeFn, o.mode = fn, "" }
}

// WithCustom supplies a blueprint for a "*name" chain token.
func WithCustom(name string, bp Blueprint) Option {
	return func(o *options) {
		if o.custom == nil {
			o.custom = make(map[string]Blueprint)
		}
		bp.Name = name
		o.custom[name] = bp
	}
}

// WithChildren attaches children in order before builders run.
func WithChildren(children ...*Widget) Option {
	return func(o *options) { o.children = append(o.children, children...) }
}

// New composes a widget from a colon chain.
func (f *Factory) New(name, chain string, opts ...Option) (*Widget, error) {
	return f.NewChain(name, ParseChain(chain), opts...)
}

// NewChain composes a widget from chain tokens, attaches children and runs
// builders.
func (f *Factory) NewChain(name string, tokens []string, opts ...Option) (*Widget, error) {
	if name != "" {
		if err := validName(name); err != nil {
			return nil, err
		}
	}
	o := options{props: make(map[string]any)}
	for _, opt := range opts {
		opt(&o)
	}

	c, err := f.compose(tokens, o.custom)
	if err != nil {
		return nil, fmt.Errorf("compose %q [%s]: %w", name, strings.Join(tokens, ":"), err)
	}
	for k, v := range o.props {
		c.props[k] = v
	}

	w := &Widget{
		name:       name,
		chain:      slices.Clone(tokens),
		extractors: c.extractors,
		edit:       c.edit,
		display:    c.display,
		pre:        c.pre,
		props:      c.props,
		value:      o.value,
		hasValue:   o.hasValue,
		getter:     o.getter,
		mode:       o.mode,
		modeFn:     o.modeFn,
		factory:    f,
		index:      make(map[string]int),
	}
	for _, child := range o.children {
		if err := w.Attach(child); err != nil {
			return nil, err
		}
	}
	for _, b := range c.builders {
		if err := b.Fn.Build(w, f); err != nil {
			return nil, w.wrap(err, PhaseBuild, "", b.Origin)
		}
	}
	f.compositions.Add(1)

	f.logger.Debug("Composed widget",
		zap.String("name", name),
		zap.Strings("chain", tokens),
		zap.Int("extractors", len(c.extractors)),
		zap.Int("preprocessors", len(c.pre)),
		zap.Int("builders", len(c.builders)))
	return w, nil
}
