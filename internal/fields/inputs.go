package fields

import (
	"regexp"
	"strings"
	"unicode/utf8"

	"github.com/GriffinCanCode/formwork/internal/form"
	"github.com/GriffinCanCode/formwork/internal/markup"
)

var emailPattern = regexp.MustCompile(`^[^@\s]+@[^@\s]+\.[^@\s]+$`)

// scalar reads the submitted string, storing it as the extracted value
// before validating so a failed check still echoes the input.
func scalar(w *form.Widget, d *form.Data) (any, error) {
	v := d.Request().Get(w.Path())
	if d.Attr().Bool("strip") {
		v = strings.TrimSpace(v)
	}
	d.Extracted = v

	attrs := d.Attr()
	if attrs.Bool("required") && strings.TrimSpace(v) == "" {
		return nil, form.AbortExtraction("%s", d.Translate(MsgRequired))
	}
	if limit := attrs.Int("maxlength", 0); limit > 0 && utf8.RuneCountInString(v) > limit {
		return nil, form.NewExtractionError(d.Translate(MsgTooLong), limit)
	}
	return v, nil
}

func input(kind string) form.RendererFunc {
	return func(w *form.Widget, d *form.Data) (string, error) {
		attrs := d.Attr()
		path := w.Path()
		tag := markup.Tag("input", markup.Attrs{
			{Key: "type", Value: attrs.String("type", kind)},
			{Key: "name", Value: path},
			{Key: "id", Value: attrs.String("id", path)},
			{Key: "value", Value: current(w, d)},
			{Key: "class", Value: markup.Classes(attrs.String("class", ""))},
			{Key: "placeholder", Value: optional(attrs, "placeholder")},
			{Key: "maxlength", Value: optional(attrs, "maxlength")},
			{Key: "required", Value: attrs.Bool("required")},
		})
		return d.Rendered + tag, nil
	}
}

func optional(attrs form.Attributes, key string) any {
	if v, ok := attrs.Lookup(key); ok {
		return v
	}
	return nil
}

func displayValue(w *form.Widget, d *form.Data) (string, error) {
	return d.Rendered + markup.Tag("span", markup.Attrs{{Key: "class", Value: "value"}}, markup.Text(current(w, d))), nil
}

func textBlueprint() form.Blueprint {
	return form.Blueprint{
		Name:             "text",
		Extractors:       []form.Extractor{form.ExtractorFunc(scalar)},
		EditRenderers:    []form.Renderer{input("text")},
		DisplayRenderers: []form.Renderer{form.RendererFunc(displayValue)},
	}
}

func hiddenBlueprint() form.Blueprint {
	return form.Blueprint{
		Name:             "hidden",
		Extractors:       []form.Extractor{form.ExtractorFunc(scalar)},
		EditRenderers:    []form.Renderer{input("hidden")},
		DisplayRenderers: []form.Renderer{input("hidden")},
	}
}

// emailBlueprint validates the value an inner input extracted and switches
// the inner text input to type=email.
func emailBlueprint() form.Blueprint {
	return form.Blueprint{
		Name: "email",
		Extractors: []form.Extractor{form.ExtractorFunc(func(w *form.Widget, d *form.Data) (any, error) {
			v, _ := d.Extracted.(string)
			if v != "" && !emailPattern.MatchString(v) {
				return nil, form.NewExtractionError("%s", d.Translate(MsgEmail))
			}
			return d.Extracted, nil
		})},
		Builders: []form.Builder{form.BuilderFunc(func(w *form.Widget, _ *form.Factory) error {
			if _, ok := w.Property("text.type"); !ok {
				w.Set("text.type", "email")
			}
			return nil
		})},
	}
}

func textareaBlueprint() form.Blueprint {
	return form.Blueprint{
		Name:       "textarea",
		Extractors: []form.Extractor{form.ExtractorFunc(scalar)},
		EditRenderers: []form.Renderer{form.RendererFunc(func(w *form.Widget, d *form.Data) (string, error) {
			attrs := d.Attr()
			path := w.Path()
			tag := markup.Tag("textarea", markup.Attrs{
				{Key: "name", Value: path},
				{Key: "id", Value: attrs.String("id", path)},
				{Key: "rows", Value: attrs.Int("rows", 4)},
				{Key: "class", Value: markup.Classes(attrs.String("class", ""))},
				{Key: "required", Value: attrs.Bool("required")},
			}, markup.Text(current(w, d)))
			return d.Rendered + tag, nil
		})},
		DisplayRenderers: []form.Renderer{form.RendererFunc(displayValue)},
	}
}

func checkboxBlueprint() form.Blueprint {
	checked := func(w *form.Widget, d *form.Data) bool {
		if b, ok := d.Extracted.(bool); ok {
			return b
		}
		if d.Request().Has(w.Path()) {
			return true
		}
		return form.Truthy(d.Value)
	}
	return form.Blueprint{
		Name: "checkbox",
		Extractors: []form.Extractor{form.ExtractorFunc(func(w *form.Widget, d *form.Data) (any, error) {
			on := d.Request().Has(w.Path())
			if !on && d.Attr().Bool("required") {
				d.Extracted = false
				return nil, form.AbortExtraction("%s", d.Translate(MsgRequired))
			}
			return on, nil
		})},
		EditRenderers: []form.Renderer{form.RendererFunc(func(w *form.Widget, d *form.Data) (string, error) {
			path := w.Path()
			return d.Rendered + markup.Tag("input", markup.Attrs{
				{Key: "type", Value: "checkbox"},
				{Key: "name", Value: path},
				{Key: "id", Value: d.Attr().String("id", path)},
				{Key: "value", Value: "on"},
				{Key: "checked", Value: checked(w, d)},
			}), nil
		})},
		DisplayRenderers: []form.Renderer{form.RendererFunc(func(w *form.Widget, d *form.Data) (string, error) {
			text := d.Translate("no")
			if checked(w, d) {
				text = d.Translate("yes")
			}
			return d.Rendered + markup.Tag("span", markup.Attrs{{Key: "class", Value: "value"}}, markup.Text(text)), nil
		})},
	}
}
