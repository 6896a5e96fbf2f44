// Package fields provides the standard blueprints applications compose
// forms from: wrappers (form, field, label, help, fieldset), inputs (text,
// email, textarea, hidden, checkbox) and the submit action.
//
// Register adds them, plus the "labeled" macro (field:label:help), to a
// factory:
//
//	f := form.NewFactory()
//	if err := fields.Register(f); err != nil {
//	    return err
//	}
//	w, err := f.New("EMAIL", "#labeled:email:text")
package fields
