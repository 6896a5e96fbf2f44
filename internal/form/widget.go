package form

import (
	"fmt"
	"slices"
	"strings"
)

// Widget is a composed form node. Chains are fixed once the widget is built;
// per-call state lives in Data, so one widget may serve concurrent calls.
type Widget struct {
	name  string
	chain []string

	extractors []Link[Extractor]
	edit       []Link[Renderer]
	display    []Link[Renderer]
	pre        []Link[Preprocessor]

	props    map[string]any
	value    any
	hasValue bool
	getter   Getter
	mode     Mode
	modeFn   ModeFunc

	factory  *Factory
	parent   *Widget
	children []*Widget
	index    map[string]int
}

// Name returns the widget's unique name among its siblings.
func (w *Widget) Name() string { return w.name }

// Chain returns the chain tokens the widget was composed from.
func (w *Widget) Chain() []string { return slices.Clone(w.chain) }

// Factory returns the factory that composed the widget.
func (w *Widget) Factory() *Factory { return w.factory }

// Parent returns the owning widget, or nil for a root.
func (w *Widget) Parent() *Widget { return w.parent }

// Root returns the top of the tree.
func (w *Widget) Root() *Widget {
	r := w
	for r.parent != nil {
		r = r.parent
	}
	return r
}

// Children returns the attached children in order.
func (w *Widget) Children() []*Widget { return slices.Clone(w.children) }

// Child returns the attached child called name.
func (w *Widget) Child(name string) *Widget {
	if i, ok := w.index[name]; ok {
		return w.children[i]
	}
	return nil
}

// HasValue reports whether the widget carries an explicit value or getter.
func (w *Widget) HasValue() bool { return w.hasValue }

// Property returns a static property without default fallback.
func (w *Widget) Property(key string) (any, bool) {
	v, ok := w.props[key]
	return v, ok
}

// Properties returns a copy of the static properties.
func (w *Widget) Properties() map[string]any { return copyProps(w.props) }

// Set changes a property. It is meant for builders; widgets must not be
// modified once they serve requests.
func (w *Widget) Set(key string, value any) { w.props[key] = value }

// Structural reports whether the widget is elided from dotted paths.
func (w *Widget) Structural() bool {
	v, _ := w.props["structural"].(bool)
	return v
}

// Path returns the dotted path: names of non-structural ancestors and self.
func (w *Widget) Path() string {
	var segs []string
	for n := w; n != nil; n = n.parent {
		if n.name == "" || n.Structural() {
			continue
		}
		segs = append(segs, n.name)
	}
	slices.Reverse(segs)
	return strings.Join(segs, ".")
}

// Attributes returns the attribute view of the widget for a phase origin.
func (w *Widget) Attributes(phase string) Attributes {
	return Attributes{widget: w, phase: phase}
}

// Attach appends child. The child must be unowned and its name unique among
// siblings; no two non-structural widgets of the tree may share a path.
func (w *Widget) Attach(child *Widget) error {
	return w.Insert(len(w.children), child)
}

// Insert places child at position at.
func (w *Widget) Insert(at int, child *Widget) error {
	if child == nil {
		return fmt.Errorf("%w: nil child", ErrValue)
	}
	if child.name == "" {
		return fmt.Errorf("%w: child of %q has no name", ErrName, w.Path())
	}
	if child.parent != nil {
		return fmt.Errorf("%w: %q is already owned by %q", ErrValue, child.name, child.parent.Path())
	}
	for a := w; a != nil; a = a.parent {
		if a == child {
			return fmt.Errorf("%w: %q cannot own its ancestor", ErrValue, w.Path())
		}
	}
	if _, dup := w.index[child.name]; dup {
		return fmt.Errorf("%w: %q already has a child %q", ErrName, w.Path(), child.name)
	}
	if at < 0 || at > len(w.children) {
		return fmt.Errorf("%w: insert position %d out of range", ErrValue, at)
	}

	child.parent = w
	w.children = slices.Insert(w.children, at, child)
	w.reindex()

	if path, dup := duplicatePath(w.Root()); dup {
		w.children = slices.Delete(w.children, at, at+1)
		w.reindex()
		child.parent = nil
		return fmt.Errorf("%w: dotted path %q is used twice", ErrName, path)
	}
	return nil
}

// Detach removes and returns the child called name.
func (w *Widget) Detach(name string) *Widget {
	i, ok := w.index[name]
	if !ok {
		return nil
	}
	child := w.children[i]
	w.children = slices.Delete(w.children, i, i+1)
	w.reindex()
	child.parent = nil
	return child
}

func (w *Widget) reindex() {
	clear(w.index)
	for i, c := range w.children {
		w.index[c.name] = i
	}
}

// Walk visits w and its descendants depth-first until fn returns false.
func (w *Widget) Walk(fn func(*Widget) bool) bool {
	if !fn(w) {
		return false
	}
	for _, c := range w.children {
		if !c.Walk(fn) {
			return false
		}
	}
	return true
}

func duplicatePath(root *Widget) (string, bool) {
	seen := make(map[string]bool)
	var dup string
	root.Walk(func(n *Widget) bool {
		if n.Structural() {
			return true
		}
		p := n.Path()
		if seen[p] {
			dup = p
			return false
		}
		seen[p] = true
		return true
	})
	return dup, dup != ""
}

// Clone copies proto under a new name. The property overlay and the subtree
// are copied; composed chains are shared.
func Clone(proto *Widget, name string) *Widget {
	c := &Widget{
		name:       name,
		chain:      proto.chain,
		extractors: proto.extractors,
		edit:       proto.edit,
		display:    proto.display,
		pre:        proto.pre,
		props:      copyProps(proto.props),
		value:      proto.value,
		hasValue:   proto.hasValue,
		getter:     proto.getter,
		mode:       proto.mode,
		modeFn:     proto.modeFn,
		factory:    proto.factory,
		index:      make(map[string]int, len(proto.children)),
	}
	for _, ch := range proto.children {
		cc := Clone(ch, ch.name)
		cc.parent = c
		c.children = append(c.children, cc)
	}
	c.reindex()
	return c
}

// String describes the widget for diagnostics.
func (w *Widget) String() string {
	return fmt.Sprintf("%s[%s]", w.Path(), strings.Join(w.chain, ":"))
}
