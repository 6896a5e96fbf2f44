package form

import "fmt"

// Writer stores an extracted value on a model. Implementations live with
// the application's persistence layer.
type Writer interface {
	Write(model any, target string, value any) error
}

// WriterFunc adapts a function to Writer.
type WriterFunc func(model any, target string, value any) error

func (fn WriterFunc) Write(model any, target string, value any) error {
	return fn(model, target, value)
}

// Persist walks an extracted tree and writes the value of every widget whose
// "persist" attribute is set. The "target" attribute names the destination
// and defaults to the dotted path. Nodes in error, outside edit mode or
// without an extracted value are skipped; a persisted node's children are not
// visited.
func Persist(d *Data, model any, w Writer) error {
	var err error
	d.Walk(func(n *Data) bool {
		if err != nil {
			return false
		}
		attrs := n.widget.Attributes("")
		if !attrs.Bool("persist") {
			return true
		}
		if n.mode != ModeEdit || n.HasErrors() || IsUnset(n.Extracted) {
			return false
		}
		target := attrs.String("target", n.widget.Path())
		if werr := w.Write(model, target, n.Extracted); werr != nil {
			err = fmt.Errorf("persist %s: %w", target, werr)
		}
		return false
	})
	return err
}
