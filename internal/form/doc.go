// Package form composes HTML form widgets from named blueprints and runs them
// through the extraction and rendering pipelines.
//
// A Blueprint is a named set of phase lists (extractors, edit and display
// renderers, preprocessors, builders). The Factory registers blueprints and
// macros and composes a Widget from a chain such as "field:label:text",
// read outer to inner:
//   - Extractors and renderers run inner first ("text" before "label")
//   - Preprocessors and builders run outer first
//   - "#name" expands a macro, "*name" uses a blueprint passed WithCustom
//
// Every call works on a fresh Data tree that mirrors the widget tree for
// that call. Widgets are not mutated by calls, so one widget tree can serve
// concurrent requests.
//
// Built-in composites:
//   - compound: static members, value distributed by member name
//   - array: rows cloned from one prototype, count derived per call from the
//     prior result, the request keys, the value, or "min"
//
// Example:
//
//	f := form.NewFactory()
//	fields.Register(f)
//	email, _ := f.New("EMAIL", "field:label:text", form.WithProp("required", true))
//	data, err := email.Extract(form.Map{"EMAIL": ""}, nil)
//	html, err := email.Render(data)
package form
