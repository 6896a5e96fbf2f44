package form_test

import (
	"fmt"
	"testing"

	"github.com/GriffinCanCode/formwork/internal/form"
	"github.com/stretchr/testify/require"
)

// leaf extracts the submitted value, falling back to the widget value, and
// renders "path=value;".
func leaf() form.Blueprint {
	return form.Blueprint{
		Name: "leaf",
		Extractors: []form.Extractor{form.ExtractorFunc(func(w *form.Widget, d *form.Data) (any, error) {
			if d.Request().Has(w.Path()) {
				return d.Request().Get(w.Path()), nil
			}
			if form.IsUnset(d.Value) {
				return "", nil
			}
			return d.Value, nil
		})},
		EditRenderers: []form.Renderer{form.RendererFunc(func(w *form.Widget, d *form.Data) (string, error) {
			v := d.Extracted
			if form.IsUnset(v) {
				v = d.Value
			}
			if form.IsUnset(v) {
				v = ""
			}
			return fmt.Sprintf("%s%s=%v;", d.Rendered, w.Path(), v), nil
		})},
		DisplayRenderers: []form.Renderer{form.RendererFunc(func(w *form.Widget, d *form.Data) (string, error) {
			return fmt.Sprintf("%s[%v]", d.Rendered, d.Value), nil
		})},
	}
}

func newFactory(t *testing.T, bps ...form.Blueprint) *form.Factory {
	t.Helper()
	f := form.NewFactory()
	require.NoError(t, f.Register(leaf()))
	for _, bp := range bps {
		require.NoError(t, f.Register(bp))
	}
	return f
}

func mustNew(t *testing.T, f *form.Factory, name, chain string, opts ...form.Option) *form.Widget {
	t.Helper()
	w, err := f.New(name, chain, opts...)
	require.NoError(t, err)
	return w
}

// recorder builds blueprints that log every phase they run.
type recorder struct {
	log []string
}

func (r *recorder) blueprint(name string) form.Blueprint {
	return form.Blueprint{
		Name: name,
		Extractors: []form.Extractor{form.ExtractorFunc(func(w *form.Widget, d *form.Data) (any, error) {
			r.log = append(r.log, "extract "+name)
			return name, nil
		})},
		EditRenderers: []form.Renderer{form.RendererFunc(func(w *form.Widget, d *form.Data) (string, error) {
			r.log = append(r.log, "render "+name)
			return d.Rendered + name, nil
		})},
		DisplayRenderers: []form.Renderer{form.RendererFunc(func(w *form.Widget, d *form.Data) (string, error) {
			return d.Rendered + "(" + name + ")", nil
		})},
		Preprocessors: []form.Preprocessor{form.PreprocessorFunc(func(w *form.Widget, d *form.Data) error {
			r.log = append(r.log, "pre "+name)
			return nil
		})},
		Builders: []form.Builder{form.BuilderFunc(func(w *form.Widget, f *form.Factory) error {
			r.log = append(r.log, "build "+name)
			return nil
		})},
	}
}

func (r *recorder) reset() { r.log = nil }
