package fields

import (
	"fmt"

	"github.com/GriffinCanCode/formwork/internal/form"
)

// Messages reported by the standard extractors, before translation.
const (
	MsgRequired = "Mandatory field was empty"
	MsgEmail    = "Invalid email address"
	MsgTooLong  = "Value is longer than %d characters"
)

// Labeled is the macro wrapping an input in field, label and help.
const Labeled = "labeled"

// Blueprints returns the standard blueprints.
func Blueprints() []form.Blueprint {
	return []form.Blueprint{
		formBlueprint(),
		fieldBlueprint(),
		labelBlueprint(),
		helpBlueprint(),
		fieldsetBlueprint(),
		submitBlueprint(),
		textBlueprint(),
		emailBlueprint(),
		textareaBlueprint(),
		hiddenBlueprint(),
		checkboxBlueprint(),
	}
}

// Register adds the standard blueprints and macros to f.
func Register(f *form.Factory) error {
	for _, bp := range Blueprints() {
		if err := f.Register(bp); err != nil {
			return fmt.Errorf("register %s: %w", bp.Name, err)
		}
	}
	return f.RegisterMacro(Labeled, []string{"field", "label", "help"}, nil)
}

// current is the value an input shows: the extracted value, else the
// submitted one, else the widget value.
func current(w *form.Widget, d *form.Data) string {
	if !form.IsUnset(d.Extracted) && d.Extracted != nil {
		return stringify(d.Extracted)
	}
	if p := w.Path(); d.Request().Has(p) {
		return d.Request().Get(p)
	}
	if form.IsUnset(d.Value) || d.Value == nil {
		return ""
	}
	return stringify(d.Value)
}

func stringify(v any) string {
	if s, ok := v.(string); ok {
		return s
	}
	return fmt.Sprint(v)
}

func label(w *form.Widget, d *form.Data) string {
	return d.Translate(d.Attr().String("label", w.Name()))
}
