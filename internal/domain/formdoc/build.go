package formdoc

import (
	"fmt"
	"maps"

	"github.com/GriffinCanCode/formwork/internal/form"
	"github.com/GriffinCanCode/formwork/internal/form/controller"
)

// Bindings resolves the named callbacks a document refers to.
type Bindings struct {
	Handlers map[string]controller.Handler
	Next     map[string]controller.Next
}

// Build composes the widget tree of d with f. The root widget is named
// after the document unless the form node names itself.
func (d *Document) Build(f *form.Factory, b Bindings) (*form.Widget, error) {
	root := d.Form
	if root.Name == "" {
		root.Name = d.Name
	}
	w, err := d.build(f, b, root)
	if err != nil {
		return nil, fmt.Errorf("form %s: %w", d.Name, err)
	}
	return w, nil
}

func (d *Document) build(f *form.Factory, b Bindings, n Node) (*form.Widget, error) {
	chain, props := n.Chain, map[string]any{}
	if n.Template != "" {
		t, ok := d.Templates[n.Template]
		if !ok {
			return nil, fmt.Errorf("%s: %w: unknown template %q", n.Name, ErrInvalid, n.Template)
		}
		if chain == nil {
			chain = t.Chain
		}
		maps.Copy(props, t.Props)
	}
	maps.Copy(props, n.Props)

	tokens, err := form.ChainTokens(chain)
	if err != nil {
		return nil, fmt.Errorf("%s: %w", n.Name, err)
	}
	if err := b.bind(props); err != nil {
		return nil, fmt.Errorf("%s: %w", n.Name, err)
	}

	children := make([]*form.Widget, 0, len(n.Children))
	for _, c := range n.Children {
		cw, err := d.build(f, b, c)
		if err != nil {
			return nil, err
		}
		children = append(children, cw)
	}

	opts := []form.Option{form.WithProps(props), form.WithChildren(children...)}
	if n.Value != nil {
		opts = append(opts, form.WithValue(n.Value))
	}
	if n.Mode != "" {
		m := form.Mode(n.Mode)
		if !m.Valid() {
			return nil, fmt.Errorf("%s: %w: mode %q", n.Name, ErrInvalid, n.Mode)
		}
		opts = append(opts, form.WithMode(m))
	}
	return f.NewChain(n.Name, tokens, opts...)
}

// bind replaces string "handler" and "next" properties by their callbacks.
// A "next" string without a binding is kept as a literal URL.
func (b Bindings) bind(props map[string]any) error {
	if name, ok := props["handler"].(string); ok {
		h, ok := b.Handlers[name]
		if !ok {
			return fmt.Errorf("%w: unknown handler %q", ErrInvalid, name)
		}
		props["handler"] = h
	}
	if name, ok := props["next"].(string); ok {
		if n, ok := b.Next[name]; ok {
			props["next"] = n
		}
	}
	return nil
}
