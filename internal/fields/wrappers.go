package fields

import (
	"github.com/GriffinCanCode/formwork/internal/form"
	"github.com/GriffinCanCode/formwork/internal/form/controller"
	"github.com/GriffinCanCode/formwork/internal/markup"
)

// ActionPrefix prefixes the request key of a triggered action.
const ActionPrefix = controller.ActionPrefix

func formBlueprint() form.Blueprint {
	wrap := func(w *form.Widget, d *form.Data) (string, error) {
		attrs := d.Attr()
		return markup.Tag("form", markup.Attrs{
			{Key: "method", Value: attrs.String("method", "post")},
			{Key: "action", Value: attrs.String("action", "")},
			{Key: "class", Value: markup.Classes(attrs.String("class", ""))},
		}, d.Rendered), nil
	}
	show := func(w *form.Widget, d *form.Data) (string, error) {
		return markup.Tag("div", markup.Attrs{{Key: "class", Value: "form"}}, d.Rendered), nil
	}
	return form.Blueprint{
		Name:             "form",
		EditRenderers:    []form.Renderer{form.RendererFunc(wrap)},
		DisplayRenderers: []form.Renderer{form.RendererFunc(show)},
	}
}

// fieldBlueprint wraps inner markup in a container that carries the error
// class and lists the node's validation errors.
func fieldBlueprint() form.Blueprint {
	wrap := func(w *form.Widget, d *form.Data) (string, error) {
		attrs := d.Attr()
		classes := []string{attrs.String("class", "field")}
		inner := d.Rendered
		if d.HasErrors() {
			classes = append(classes, attrs.String("error_class", "error"))
			items := make([]string, len(d.Errors))
			for i, e := range d.Errors {
				items[i] = markup.Tag("li", nil, markup.Text(e.Message))
			}
			inner += markup.Tag("ul", markup.Attrs{{Key: "class", Value: "errors"}}, items...)
		}
		return markup.Tag("div", markup.Attrs{{Key: "class", Value: markup.Classes(classes...)}}, inner), nil
	}
	return form.Blueprint{
		Name:             "field",
		EditRenderers:    []form.Renderer{form.RendererFunc(wrap)},
		DisplayRenderers: []form.Renderer{form.RendererFunc(wrap)},
	}
}

func labelBlueprint() form.Blueprint {
	render := func(w *form.Widget, d *form.Data) (string, error) {
		attrs := d.Attr()
		return markup.Tag("label", markup.Attrs{
			{Key: "for", Value: attrs.String("for", w.Path())},
			{Key: "class", Value: markup.Classes(attrs.String("class", ""))},
		}, markup.Text(label(w, d))) + d.Rendered, nil
	}
	return form.Blueprint{
		Name:             "label",
		EditRenderers:    []form.Renderer{form.RendererFunc(render)},
		DisplayRenderers: []form.Renderer{form.RendererFunc(render)},
	}
}

func helpBlueprint() form.Blueprint {
	render := func(w *form.Widget, d *form.Data) (string, error) {
		help := d.Attr().String("help", "")
		if help == "" {
			return d.Rendered, nil
		}
		return d.Rendered + markup.Tag("p", markup.Attrs{{Key: "class", Value: "help"}}, markup.Sanitize(d.Translate(help))), nil
	}
	return form.Blueprint{
		Name:             "help",
		EditRenderers:    []form.Renderer{form.RendererFunc(render)},
		DisplayRenderers: []form.Renderer{form.RendererFunc(render)},
	}
}

// fieldsetBlueprint is a structural wrapper: its members address as if it
// were not there. Compose it over "compound".
func fieldsetBlueprint() form.Blueprint {
	render := func(w *form.Widget, d *form.Data) (string, error) {
		inner := []string{d.Rendered}
		if legend := d.Attr().String("legend", ""); legend != "" {
			inner = append([]string{markup.Tag("legend", nil, markup.Text(d.Translate(legend)))}, inner...)
		}
		return markup.Tag("fieldset", markup.Attrs{{Key: "class", Value: markup.Classes(d.Attr().String("class", ""))}}, inner...), nil
	}
	return form.Blueprint{
		Name:             "fieldset",
		EditRenderers:    []form.Renderer{form.RendererFunc(render)},
		DisplayRenderers: []form.Renderer{form.RendererFunc(render)},
		Builders: []form.Builder{form.BuilderFunc(func(w *form.Widget, _ *form.Factory) error {
			if _, ok := w.Property("structural"); !ok {
				w.Set("structural", true)
			}
			return nil
		})},
	}
}

// submitBlueprint renders an action button. The controller dispatches it
// when "action.<path>" is posted; it extracts whether it was pressed.
func submitBlueprint() form.Blueprint {
	return form.Blueprint{
		Name: "submit",
		Extractors: []form.Extractor{form.ExtractorFunc(func(w *form.Widget, d *form.Data) (any, error) {
			return d.Request().Has(ActionPrefix + w.Path()), nil
		})},
		EditRenderers: []form.Renderer{form.RendererFunc(func(w *form.Widget, d *form.Data) (string, error) {
			return d.Rendered + markup.Tag("button", markup.Attrs{
				{Key: "type", Value: "submit"},
				{Key: "name", Value: ActionPrefix + w.Path()},
				{Key: "value", Value: "1"},
				{Key: "class", Value: markup.Classes(d.Attr().String("class", ""))},
			}, markup.Text(label(w, d))), nil
		})},
		DisplayRenderers: []form.Renderer{form.RendererFunc(func(w *form.Widget, d *form.Data) (string, error) {
			return d.Rendered, nil
		})},
		Builders: []form.Builder{form.BuilderFunc(func(w *form.Widget, _ *form.Factory) error {
			if _, ok := w.Property("action"); !ok {
				w.Set("action", true)
			}
			return nil
		})},
	}
}
