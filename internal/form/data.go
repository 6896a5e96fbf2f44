package form

import (
	"slices"
	"strings"
)

// Data is the per-call state of one widget. A Data tree mirrors the widget
// tree as it exists for that call and is never shared between calls.
type Data struct {
	// Value is the resolved widget value (Unset when none was given).
	Value any
	// Extracted is the output of the extractor chain (Unset until produced).
	Extracted any
	// Rendered is the output of the last renderer that ran.
	Rendered string
	// Errors collects validation failures of this node only.
	Errors []*ExtractionError

	name    string
	widget  *Widget
	request Request
	mode    Mode
	phase   string

	preprocessed bool

	parent   *Data
	children []*Data
	index    map[string]int

	members      []*Widget
	hasMembers   bool
	memberValues map[string]any
}

func (w *Widget) newData(req Request, parent *Data) *Data {
	if req == nil && parent != nil {
		req = parent.request
	}
	if req == nil {
		req = Empty
	}
	d := &Data{
		Value:     Unset,
		Extracted: Unset,
		name:      w.name,
		widget:    w,
		request:   req,
		index:     make(map[string]int),
	}
	if parent != nil {
		parent.attach(d)
	}
	return d
}

func (d *Data) attach(c *Data) {
	c.parent = d
	if i, ok := d.index[c.name]; ok {
		d.children[i] = c
		return
	}
	d.index[c.name] = len(d.children)
	d.children = append(d.children, c)
}

// Name returns the name of the widget the node belongs to.
func (d *Data) Name() string { return d.name }

// Widget returns the widget the node belongs to.
func (d *Data) Widget() *Widget { return d.widget }

// Request returns the request of the call.
func (d *Data) Request() Request { return d.request }

// Mode returns the resolved mode.
func (d *Data) Mode() Mode { return d.mode }

// SetMode changes the resolved mode. Preprocessors use it to switch a
// widget to display or skip.
func (d *Data) SetMode(m Mode) error {
	if !m.Valid() {
		return modeError(m)
	}
	d.mode = m
	return nil
}

// Phase returns the origin of the link currently running on this node.
func (d *Data) Phase() string { return d.phase }

// Attr resolves a property for the link currently running on this node.
func (d *Data) Attr() Attributes {
	return d.widget.Attributes(d.phase)
}

// Translate runs msg through the factory translator.
func (d *Data) Translate(msg string) string {
	if d.widget.factory == nil {
		return msg
	}
	return d.widget.factory.Translate(msg)
}

// Parent returns the enclosing node, or nil for the root of the call.
func (d *Data) Parent() *Data { return d.parent }

// Child returns the direct child called name.
func (d *Data) Child(name string) *Data {
	if i, ok := d.index[name]; ok {
		return d.children[i]
	}
	return nil
}

// Children returns the direct children in creation order.
func (d *Data) Children() []*Data { return slices.Clone(d.children) }

// Lookup resolves a dotted path relative to d. Nodes of structural widgets
// are transparent, as they are in widget paths.
func (d *Data) Lookup(path string) *Data {
	n := d
	for _, seg := range strings.Split(path, ".") {
		if n = n.find(seg); n == nil {
			return nil
		}
	}
	return n
}

func (d *Data) find(name string) *Data {
	if c := d.Child(name); c != nil && !c.widget.Structural() {
		return c
	}
	for _, c := range d.children {
		if c.widget.Structural() {
			if n := c.find(name); n != nil {
				return n
			}
		}
	}
	return nil
}

// Walk visits d and its descendants depth-first until fn returns false.
func (d *Data) Walk(fn func(*Data) bool) bool {
	if !fn(d) {
		return false
	}
	for _, c := range d.children {
		if !c.Walk(fn) {
			return false
		}
	}
	return true
}

// HasErrors reports whether this node collected validation errors.
func (d *Data) HasErrors() bool { return len(d.Errors) > 0 }

// Members returns the widgets a composite processes in this call: the rows
// set by SetMembers, or the widget's attached children.
func (d *Data) Members() []*Widget {
	if d.hasMembers {
		return d.members
	}
	return d.widget.children
}

// SetMembers replaces the members for this call only.
func (d *Data) SetMembers(ws []*Widget) {
	d.members, d.hasMembers = ws, true
}

// SetMemberValue injects the value a member resolves in this call.
func (d *Data) SetMemberValue(name string, v any) {
	if d.memberValues == nil {
		d.memberValues = make(map[string]any)
	}
	d.memberValues[name] = v
}

func (d *Data) memberValue(name string) (any, bool) {
	v, ok := d.memberValues[name]
	return v, ok
}

// Refresh discards children and per-call members so the next render
// preprocesses again. Extracted and Errors are kept, which lets composites
// re-derive their shape from a result a handler has changed.
func (d *Data) Refresh() {
	d.preprocessed = false
	d.children = nil
	clear(d.index)
	d.members, d.hasMembers = nil, false
	d.memberValues = nil
	d.Rendered = ""
}
