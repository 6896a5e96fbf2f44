package form_test

import (
	"errors"
	"fmt"
	"sync"
	"testing"
	"time"

	"github.com/GriffinCanCode/formwork/internal/form"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func sequence(abort bool, withTail bool) form.Blueprint {
	ex := []form.Extractor{
		form.ExtractorFunc(func(*form.Widget, *form.Data) (any, error) { return "x", nil }),
		form.ExtractorFunc(func(*form.Widget, *form.Data) (any, error) {
			if abort {
				return nil, form.AbortExtraction("stop")
			}
			return nil, form.NewExtractionError("warn")
		}),
	}
	if withTail {
		ex = append(ex, form.ExtractorFunc(func(*form.Widget, *form.Data) (any, error) { return "y", nil }))
	}
	return form.Blueprint{Name: "seq", Extractors: ex}
}

func TestExtractionAbort(t *testing.T) {
	tests := []struct {
		name     string
		abort    bool
		tail     bool
		want     any
		messages []string
	}{
		{"abort stops chain", true, true, "x", []string{"stop"}},
		{"non-abort continues", false, true, "y", []string{"warn"}},
		{"failing link keeps prior result", false, false, "x", []string{"warn"}},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			f := newFactory(t, sequence(tt.abort, tt.tail))
			w := mustNew(t, f, "w", "seq")

			d, err := w.Extract(form.Map{}, nil)
			require.NoError(t, err)
			assert.Equal(t, tt.want, d.Extracted)
			require.Len(t, d.Errors, len(tt.messages))
			for i, msg := range tt.messages {
				assert.Equal(t, msg, d.Errors[i].Message)
			}
			assert.True(t, d.HasErrors())
		})
	}
}

func TestExtractWrapsForeignErrors(t *testing.T) {
	boom := errors.New("boom")
	f := newFactory(t, form.Blueprint{
		Name: "bad",
		Extractors: []form.Extractor{form.ExtractorFunc(func(*form.Widget, *form.Data) (any, error) {
			return nil, boom
		})},
	})
	w := mustNew(t, f, "w", "bad:leaf")

	_, err := w.Extract(form.Map{}, nil)
	require.Error(t, err)
	assert.ErrorIs(t, err, boom)

	var ce *form.ContractError
	require.ErrorAs(t, err, &ce)
	assert.Equal(t, "w", ce.Path)
	assert.Equal(t, form.PhaseExtract, ce.Phase)
	assert.Equal(t, form.ModeEdit, ce.Mode)
	assert.Equal(t, "bad", ce.Origin)
	assert.Equal(t, []string{"bad", "leaf"}, ce.Chain)
}

func TestNestedContractErrorKeepsInnermostContext(t *testing.T) {
	boom := errors.New("boom")
	f := newFactory(t, form.Blueprint{
		Name: "bad",
		Extractors: []form.Extractor{form.ExtractorFunc(func(*form.Widget, *form.Data) (any, error) {
			return nil, boom
		})},
	})
	inner := mustNew(t, f, "inner", "bad")
	outer := mustNew(t, f, "outer", form.Compound, form.WithChildren(inner))

	_, err := outer.Extract(form.Map{}, nil)
	var ce *form.ContractError
	require.ErrorAs(t, err, &ce)
	assert.Equal(t, "outer.inner", ce.Path)
	assert.Equal(t, "bad", ce.Origin)
}

func TestModes(t *testing.T) {
	r := &recorder{}
	f := newFactory(t, r.blueprint("A"))

	t.Run("display skips extraction", func(t *testing.T) {
		r.reset()
		w := mustNew(t, f, "w", "A", form.WithMode(form.ModeDisplay))
		d, err := w.Extract(form.Map{"w": "v"}, nil)
		require.NoError(t, err)
		assert.Equal(t, form.ModeDisplay, d.Mode())
		assert.True(t, form.IsUnset(d.Extracted))
		assert.Equal(t, []string{"pre A"}, r.log)

		out, err := w.Render(d)
		require.NoError(t, err)
		assert.Equal(t, "(A)", out)
	})

	t.Run("skip renders nothing", func(t *testing.T) {
		w := mustNew(t, f, "w", "A", form.WithMode(form.ModeSkip))
		out, err := w.Render(nil)
		require.NoError(t, err)
		assert.Empty(t, out)
	})

	t.Run("mode func decides per call", func(t *testing.T) {
		w := mustNew(t, f, "w", "A", form.WithModeFunc(func(_ *form.Widget, d *form.Data) (form.Mode, error) {
			if d.Request().Has("ro") {
				return form.ModeDisplay, nil
			}
			return form.ModeEdit, nil
		}))
		out, err := w.RenderRequest(form.Map{"ro": "1"})
		require.NoError(t, err)
		assert.Equal(t, "(A)", out)

		out, err = w.RenderRequest(form.Map{})
		require.NoError(t, err)
		assert.Equal(t, "A", out)
	})

	t.Run("invalid mode is a contract error", func(t *testing.T) {
		w := mustNew(t, f, "w", "A", form.WithMode("bogus"))
		_, err := w.Extract(form.Map{}, nil)
		assert.ErrorIs(t, err, form.ErrValue)
		var ce *form.ContractError
		assert.ErrorAs(t, err, &ce)
	})

	t.Run("preprocessor may switch mode", func(t *testing.T) {
		custom := form.Blueprint{Preprocessors: []form.Preprocessor{form.PreprocessorFunc(func(_ *form.Widget, d *form.Data) error {
			return d.SetMode(form.ModeSkip)
		})}}
		w := mustNew(t, f, "w", "*hide:A", form.WithCustom("hide", custom))
		out, err := w.Render(nil)
		require.NoError(t, err)
		assert.Empty(t, out)
	})

	t.Run("children inherit mode", func(t *testing.T) {
		child := mustNew(t, f, "c", "leaf", form.WithValue("v"))
		parent := mustNew(t, f, "p", form.Compound, form.WithMode(form.ModeDisplay), form.WithChildren(child))
		out, err := parent.Render(nil)
		require.NoError(t, err)
		assert.Equal(t, "[v]", out)
	})
}

func TestCallArguments(t *testing.T) {
	f := newFactory(t)
	w := mustNew(t, f, "w", "leaf")
	other := mustNew(t, f, "o", "leaf")

	d, err := w.Extract(form.Map{"w": "1"}, nil)
	require.NoError(t, err)

	_, err = w.Call(d, form.Map{})
	assert.ErrorIs(t, err, form.ErrValue)

	_, err = other.Call(d, nil)
	assert.ErrorIs(t, err, form.ErrValue)

	out, err := w.Call(nil, form.Map{"w": "2"})
	require.NoError(t, err)
	assert.Equal(t, "w=;", out)

	out, err = w.Call(d, nil)
	require.NoError(t, err)
	assert.Equal(t, "w=1;", out)
}

func TestRenderWithoutRenderers(t *testing.T) {
	f := newFactory(t, form.Blueprint{Name: "bare"})
	w := mustNew(t, f, "w", "bare")

	_, err := w.Render(nil)
	assert.ErrorIs(t, err, form.ErrValue)

	var ce *form.ContractError
	require.ErrorAs(t, err, &ce)
	assert.Equal(t, form.PhaseRender, ce.Phase)
}

func TestValueResolution(t *testing.T) {
	f := newFactory(t)

	w := mustNew(t, f, "w", "leaf")
	d, err := w.Extract(form.Map{}, nil)
	require.NoError(t, err)
	assert.True(t, form.IsUnset(d.Value))

	w = mustNew(t, f, "w", "leaf", form.WithValue("static"))
	d, err = w.Extract(form.Map{}, nil)
	require.NoError(t, err)
	assert.Equal(t, "static", d.Value)

	calls := 0
	w = mustNew(t, f, "w", "leaf", form.WithGetter(func(*form.Widget, *form.Data) (any, error) {
		calls++
		return fmt.Sprintf("call %d", calls), nil
	}))
	d, err = w.Extract(form.Map{}, nil)
	require.NoError(t, err)
	assert.Equal(t, "call 1", d.Value)
	_, err = w.Render(d)
	require.NoError(t, err)
	assert.Equal(t, 1, calls)
}

type observed struct {
	mu       sync.Mutex
	extracts []string
	renders  []string
}

func (o *observed) ObserveExtract(path string, _ time.Duration, _ error) {
	o.mu.Lock()
	defer o.mu.Unlock()
	o.extracts = append(o.extracts, path)
}

func (o *observed) ObserveRender(path string, _ form.Mode, _ time.Duration, _ error) {
	o.mu.Lock()
	defer o.mu.Unlock()
	o.renders = append(o.renders, path)
}

func TestObserverSeesTopLevelCallsOnly(t *testing.T) {
	o := &observed{}
	f := form.NewFactory(form.WithObserver(o))
	require.NoError(t, f.Register(leaf()))

	a := mustNew(t, f, "a", "leaf")
	b := mustNew(t, f, "b", "leaf")
	root := mustNew(t, f, "root", form.Compound, form.WithChildren(a, b))

	d, err := root.Extract(form.Map{}, nil)
	require.NoError(t, err)
	_, err = root.Render(d)
	require.NoError(t, err)

	assert.Equal(t, []string{"root"}, o.extracts)
	assert.Equal(t, []string{"root"}, o.renders)
}

func TestConcurrentCallsShareWidget(t *testing.T) {
	f := newFactory(t)
	a := mustNew(t, f, "a", "leaf")
	b := mustNew(t, f, "b", "leaf")
	root := mustNew(t, f, "root", form.Compound, form.WithChildren(a, b))

	var wg sync.WaitGroup
	results := make([]string, 50)
	for i := range results {
		wg.Add(1)
		go func(i int) {
			defer wg.Done()
			req := form.Map{"root.a": fmt.Sprint(i), "root.b": fmt.Sprint(-i)}
			d, err := root.Extract(req, nil)
			if err != nil {
				return
			}
			results[i], _ = root.Render(d)
		}(i)
	}
	wg.Wait()

	for i, got := range results {
		assert.Equal(t, fmt.Sprintf("root.a=%d;root.b=%d;", i, -i), got)
	}
}
