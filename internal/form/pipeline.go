package form

import (
	"errors"
	"fmt"
	"time"
)

func modeError(m Mode) error {
	return fmt.Errorf("%w: mode %q is not one of edit, display, skip", ErrValue, m)
}

// Extract runs the widget against req. When parent is given the new node is
// attached to it and inherits its request if req is nil. Validation failures
// are collected on the returned Data; other failures are returned as
// *ContractError.
func (w *Widget) Extract(req Request, parent *Data) (*Data, error) {
	start := time.Now()
	d := w.newData(req, parent)
	err := w.extract(d)
	if parent == nil && w.factory != nil && w.factory.observer != nil {
		w.factory.observer.ObserveExtract(w.Path(), time.Since(start), err)
	}
	return d, err
}

func (w *Widget) extract(d *Data) error {
	if err := w.preprocess(d); err != nil {
		return err
	}
	if d.mode != ModeEdit {
		return nil
	}
	defer func() { d.phase = "" }()
	for _, l := range w.extractors {
		d.phase = l.Origin
		v, err := l.Fn.Extract(w, d)
		if err == nil {
			d.Extracted = v
			continue
		}
		var ce *ContractError
		if errors.As(err, &ce) {
			return err
		}
		var ve *ExtractionError
		if !errors.As(err, &ve) {
			return w.wrap(err, PhaseExtract, d.mode, l.Origin)
		}
		d.Errors = append(d.Errors, ve)
		if ve.Abort {
			break
		}
	}
	return nil
}

// preprocess resolves value and mode and runs the preprocessor chain, once
// per Data.
func (w *Widget) preprocess(d *Data) error {
	if d.preprocessed {
		return nil
	}
	d.preprocessed = true
	defer func() { d.phase = "" }()

	v, err := w.resolveValue(d)
	if err != nil {
		return w.wrap(err, PhasePreprocess, "", "value")
	}
	d.Value = v

	m, err := w.resolveMode(d)
	if err != nil {
		return w.wrap(err, PhasePreprocess, "", "mode")
	}
	d.mode = m

	for _, l := range w.pre {
		d.phase = l.Origin
		if err := l.Fn.Preprocess(w, d); err != nil {
			return w.wrap(err, PhasePreprocess, d.mode, l.Origin)
		}
	}
	if !d.mode.Valid() {
		return w.wrap(modeError(d.mode), PhasePreprocess, "", "mode")
	}
	return nil
}

func (w *Widget) resolveValue(d *Data) (any, error) {
	if d.parent != nil {
		if v, ok := d.parent.memberValue(w.name); ok {
			if g, ok := v.(Getter); ok {
				return g(w, d)
			}
			return v, nil
		}
	}
	if w.getter != nil {
		return w.getter(w, d)
	}
	if w.hasValue {
		return w.value, nil
	}
	return Unset, nil
}

func (w *Widget) resolveMode(d *Data) (Mode, error) {
	m := w.mode
	if w.modeFn != nil {
		var err error
		if m, err = w.modeFn(w, d); err != nil {
			return "", err
		}
	}
	if m == "" {
		m = ModeEdit
		if d.parent != nil && d.parent.mode != "" {
			m = d.parent.mode
		}
	}
	if !m.Valid() {
		return "", modeError(m)
	}
	return m, nil
}

// Prepare returns the node of w under parent, creating and preprocessing it
// when the call has not produced one yet. Composite renderers use it to
// render members from already extracted state.
func (w *Widget) Prepare(parent *Data) (*Data, error) {
	d := parent.Child(w.name)
	if d == nil || d.widget != w {
		d = w.newData(nil, parent)
	}
	if err := w.preprocess(d); err != nil {
		return nil, err
	}
	return d, nil
}

// Call renders the widget. Supply d to render existing state or req to
// render a fresh, preprocessed but unextracted node; not both. With neither
// an empty request is used.
func (w *Widget) Call(d *Data, req Request) (string, error) {
	if d != nil && req != nil {
		return "", w.wrap(fmt.Errorf("%w: supply data or request, not both", ErrValue), PhaseRender, "", "")
	}
	if d != nil && d.widget != w {
		return "", w.wrap(fmt.Errorf("%w: data belongs to %q", ErrValue, d.widget.Path()), PhaseRender, "", "")
	}
	start := time.Now()
	if d == nil {
		d = w.newData(req, nil)
	}
	out, err := w.render(d)
	if d.parent == nil && w.factory != nil && w.factory.observer != nil {
		w.factory.observer.ObserveRender(w.Path(), d.mode, time.Since(start), err)
	}
	return out, err
}

// Render renders existing state; nil renders a fresh node.
func (w *Widget) Render(d *Data) (string, error) {
	return w.Call(d, nil)
}

// RenderRequest renders a fresh node for req without extracting it.
func (w *Widget) RenderRequest(req Request) (string, error) {
	return w.Call(nil, req)
}

func (w *Widget) render(d *Data) (string, error) {
	if err := w.preprocess(d); err != nil {
		return "", err
	}
	var chain []Link[Renderer]
	switch d.mode {
	case ModeSkip:
		d.Rendered = ""
		return "", nil
	case ModeDisplay:
		chain = w.display
	default:
		chain = w.edit
	}
	if len(chain) == 0 {
		return "", w.wrap(fmt.Errorf("%w: no %s renderers", ErrValue, d.mode), PhaseRender, d.mode, "")
	}

	defer func() { d.phase = "" }()
	d.Rendered = ""
	for _, l := range chain {
		d.phase = l.Origin
		out, err := l.Fn.Render(w, d)
		if err != nil {
			return "", w.wrap(err, PhaseRender, d.mode, l.Origin)
		}
		d.Rendered = out
	}
	return d.Rendered, nil
}
