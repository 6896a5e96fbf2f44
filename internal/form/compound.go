package form

import (
	"fmt"
	"strings"
)

// Compound is the name of the built-in static composite blueprint.
const Compound = "compound"

func compoundBlueprint() Blueprint {
	return Blueprint{
		Name:             Compound,
		Preprocessors:    []Preprocessor{PreprocessorFunc(distributeValue)},
		Extractors:       []Extractor{ExtractorFunc(collectMembers)},
		EditRenderers:    []Renderer{RendererFunc(renderMembers)},
		DisplayRenderers: []Renderer{RendererFunc(renderMembers)},
		Builders:         []Builder{BuilderFunc(checkStaticConflicts)},
	}
}

func memberConflict(name string) error {
	return fmt.Errorf("%w: both compound and compound member provide a value for %q", ErrValue, name)
}

// checkStaticConflicts rejects at construction time what distributeValue
// would reject on every call.
func checkStaticConflicts(w *Widget, _ *Factory) error {
	if !w.hasValue || w.getter != nil {
		return nil
	}
	for _, m := range w.children {
		if m.Structural() || !m.hasValue {
			continue
		}
		if _, ok := lookupMember(w.value, m.name); ok {
			return memberConflict(m.name)
		}
	}
	return nil
}

// distributeValue hands each member its entry of the compound value.
// Structural members receive the whole value.
func distributeValue(w *Widget, d *Data) error {
	value := d.Value
	if IsUnset(value) || value == nil {
		return nil
	}
	for _, m := range d.Members() {
		if m.Structural() {
			if !m.hasValue {
				d.SetMemberValue(m.name, value)
			}
			continue
		}
		v, ok := lookupMember(value, m.name)
		if !ok {
			continue
		}
		if m.hasValue {
			return memberConflict(m.name)
		}
		d.SetMemberValue(m.name, v)
	}
	return nil
}

// collectMembers extracts every member against the call's request. Members
// that are not in edit mode contribute Unset; structural members are
// flattened into the result.
func collectMembers(w *Widget, d *Data) (any, error) {
	out := Fields{}
	for _, m := range d.Members() {
		md, err := m.Extract(nil, d)
		if err != nil {
			return nil, err
		}
		if m.Structural() {
			if fs, ok := md.Extracted.(Fields); ok {
				out = append(out, fs...)
			}
			continue
		}
		out = append(out, Field{Name: m.name, Value: md.Extracted})
	}
	return out, nil
}

// renderMembers renders each member from its node in this call and appends
// the markup in member order.
func renderMembers(w *Widget, d *Data) (string, error) {
	var b strings.Builder
	b.WriteString(d.Rendered)
	for _, m := range d.Members() {
		md, err := m.Prepare(d)
		if err != nil {
			return "", err
		}
		out, err := m.Render(md)
		if err != nil {
			return "", err
		}
		b.WriteString(out)
	}
	return b.String(), nil
}
