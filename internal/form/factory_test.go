package form_test

import (
	"errors"
	"testing"

	"github.com/GriffinCanCode/formwork/internal/form"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestRegisterRejectsForbiddenNames(t *testing.T) {
	f := form.NewFactory()

	for _, name := range []string{"", "a:b", "#a", "*a", "x*"} {
		err := f.Register(form.Blueprint{Name: name})
		assert.ErrorIs(t, err, form.ErrName, "name %q", name)

		err = f.RegisterMacro(name, []string{"leaf"}, nil)
		assert.ErrorIs(t, err, form.ErrName, "macro %q", name)
	}
}

func TestRegisterOverwrites(t *testing.T) {
	r := &recorder{}
	f := newFactory(t, r.blueprint("a"))
	require.NoError(t, f.Register(r.blueprint("b")))

	replacement := r.blueprint("b")
	replacement.Name = "a"
	require.NoError(t, f.Register(replacement))

	w := mustNew(t, f, "w", "a")
	out, err := w.Render(nil)
	require.NoError(t, err)
	assert.Equal(t, "b", out)
}

func TestChainOrdering(t *testing.T) {
	r := &recorder{}
	f := newFactory(t, r.blueprint("A"), r.blueprint("B"))

	w := mustNew(t, f, "w", "A:B")
	assert.Equal(t, []string{"build A", "build B"}, r.log)
	assert.Equal(t, []string{"A", "B"}, w.Chain())

	r.reset()
	d, err := w.Extract(form.Map{}, nil)
	require.NoError(t, err)
	assert.Equal(t, []string{"pre A", "pre B", "extract B", "extract A"}, r.log)
	assert.Equal(t, "A", d.Extracted)

	r.reset()
	out, err := w.Render(d)
	require.NoError(t, err)
	assert.Equal(t, []string{"render B", "render A"}, r.log)
	assert.Equal(t, "BA", out)
}

func TestChainListAndStringAreEquivalent(t *testing.T) {
	r := &recorder{}
	f := newFactory(t, r.blueprint("A"), r.blueprint("B"), r.blueprint("C"))

	a := mustNew(t, f, "a", "A:B:C")
	b, err := f.NewChain("b", []string{"A", "B", "C"})
	require.NoError(t, err)

	outA, err := a.Render(nil)
	require.NoError(t, err)
	outB, err := b.Render(nil)
	require.NoError(t, err)
	assert.Equal(t, "CBA", outA)
	assert.Equal(t, outA, outB)
}

func TestParseChain(t *testing.T) {
	tests := []struct {
		spec string
		want []string
	}{
		{"", nil},
		{"text", []string{"text"}},
		{"field:label:text", []string{"field", "label", "text"}},
		{" field : #labeled :: *extra ", []string{"field", "#labeled", "*extra"}},
	}
	for _, tt := range tests {
		assert.Equal(t, tt.want, form.ParseChain(tt.spec), tt.spec)
	}
}

func TestChainTokens(t *testing.T) {
	tokens, err := form.ChainTokens("field:text")
	require.NoError(t, err)
	assert.Equal(t, []string{"field", "text"}, tokens)

	tokens, err = form.ChainTokens([]any{"field", "#labeled"})
	require.NoError(t, err)
	assert.Equal(t, []string{"field", "#labeled"}, tokens)

	for _, bad := range []any{nil, 3, []any{"field", 1}} {
		_, err := form.ChainTokens(bad)
		assert.ErrorIs(t, err, form.ErrValue)
	}
}

func TestMacroExpansion(t *testing.T) {
	r := &recorder{}
	f := newFactory(t, r.blueprint("A"), r.blueprint("B"), r.blueprint("C"))

	require.NoError(t, f.RegisterMacro("ab", []string{"A", "B"}, map[string]any{"x": "ab", "y": "ab"}))
	require.NoError(t, f.RegisterMacro("outer", []string{"#ab"}, map[string]any{"x": "outer"}))

	w := mustNew(t, f, "w", "#outer:C", form.WithProp("y", "widget"))
	out, err := w.Render(nil)
	require.NoError(t, err)
	assert.Equal(t, "CBA", out)

	x, err := w.Attributes("").Get("x")
	require.NoError(t, err)
	assert.Equal(t, "outer", x)
	y, err := w.Attributes("").Get("y")
	require.NoError(t, err)
	assert.Equal(t, "widget", y)
}

func TestMacroForwardReference(t *testing.T) {
	f := form.NewFactory()
	require.NoError(t, f.RegisterMacro("later", []string{"leaf"}, nil))

	_, err := f.New("w", "#later")
	assert.ErrorIs(t, err, form.ErrUnknown)

	require.NoError(t, f.Register(leaf()))
	_, err = f.New("w", "#later")
	assert.NoError(t, err)
}

func TestMacroCycle(t *testing.T) {
	f := newFactory(t)
	require.NoError(t, f.RegisterMacro("self", []string{"leaf", "#self"}, nil))
	require.NoError(t, f.RegisterMacro("ping", []string{"#pong"}, nil))
	require.NoError(t, f.RegisterMacro("pong", []string{"#ping"}, nil))

	_, err := f.New("w", "#self")
	assert.ErrorIs(t, err, form.ErrCycle)

	_, err = f.New("w", "#ping")
	assert.ErrorIs(t, err, form.ErrCycle)
	assert.Contains(t, err.Error(), "ping -> pong -> ping")
}

func TestMacroRepeatedWithoutCycle(t *testing.T) {
	f := newFactory(t)
	require.NoError(t, f.RegisterMacro("l", []string{"leaf"}, nil))

	_, err := f.New("w", "#l:#l")
	assert.NoError(t, err)
}

func TestUnknownTokens(t *testing.T) {
	f := newFactory(t)

	_, err := f.New("w", "missing")
	assert.ErrorIs(t, err, form.ErrUnknown)
	assert.ErrorIs(t, err, form.ErrKey)

	_, err = f.New("w", "#missing")
	assert.ErrorIs(t, err, form.ErrUnknown)

	_, err = f.New("w", "*missing")
	assert.ErrorIs(t, err, form.ErrUnknown)
}

func TestCustomToken(t *testing.T) {
	f := newFactory(t)
	var origin string
	custom := form.Blueprint{
		EditRenderers: []form.Renderer{form.RendererFunc(func(w *form.Widget, d *form.Data) (string, error) {
			origin = d.Phase()
			return "<" + d.Rendered + ">", nil
		})},
	}

	w := mustNew(t, f, "w", "*wrap:leaf", form.WithCustom("wrap", custom), form.WithValue("v"))
	out, err := w.Render(nil)
	require.NoError(t, err)
	assert.Equal(t, "<w=v;>", out)
	assert.Equal(t, "wrap", origin)
}

func TestGlobalPreprocessorsRunFirst(t *testing.T) {
	r := &recorder{}
	f := newFactory(t, r.blueprint("A"))
	var phase string
	f.RegisterGlobalPreprocessor(form.PreprocessorFunc(func(w *form.Widget, d *form.Data) error {
		phase = d.Phase()
		r.log = append(r.log, "global")
		return nil
	}))

	w := mustNew(t, f, "w", "A")
	r.reset()
	_, err := w.Extract(form.Map{}, nil)
	require.NoError(t, err)
	assert.Equal(t, []string{"global", "pre A", "extract A"}, r.log)
	assert.Equal(t, form.GlobalOrigin, phase)
}

func TestBuilderFailureCarriesContext(t *testing.T) {
	boom := errors.New("boom")
	f := newFactory(t, form.Blueprint{
		Name:     "bad",
		Builders: []form.Builder{form.BuilderFunc(func(*form.Widget, *form.Factory) error { return boom })},
	})

	_, err := f.New("w", "leaf:bad")
	require.Error(t, err)
	assert.ErrorIs(t, err, boom)

	var ce *form.ContractError
	require.ErrorAs(t, err, &ce)
	assert.Equal(t, form.PhaseBuild, ce.Phase)
	assert.Equal(t, "bad", ce.Origin)
	assert.Equal(t, []string{"leaf", "bad"}, ce.Chain)
}

func TestStats(t *testing.T) {
	f := newFactory(t)
	require.NoError(t, f.RegisterMacro("m", []string{"leaf"}, nil))
	f.SetDefault("class", "x")
	mustNew(t, f, "a", "leaf")
	mustNew(t, f, "b", "#m")

	stats := f.Stats()
	assert.Equal(t, 3, stats.Blueprints)
	assert.Equal(t, 1, stats.Macros)
	assert.Equal(t, 1, stats.Defaults)
	assert.Equal(t, int64(2), stats.Compositions)
	assert.Equal(t, []string{"array", "compound", "leaf"}, stats.BlueprintList)
}

func TestTranslator(t *testing.T) {
	f := form.NewFactory(form.WithTranslator(func(s string) string { return "<" + s + ">" }))
	assert.Equal(t, "<hi>", f.Translate("hi"))
	assert.Equal(t, "hi", form.NewFactory().Translate("hi"))
}
