package form

import (
	"fmt"
	"reflect"
	"sort"
	"strconv"
	"strings"
)

// Array is the name of the built-in repeating composite blueprint.
const Array = "array"

// RowDigits is the zero padding of generated row indices.
const RowDigits = 7

func arrayBlueprint() Blueprint {
	return Blueprint{
		Name:             Array,
		Preprocessors:    []Preprocessor{PreprocessorFunc(expandRows)},
		Extractors:       []Extractor{ExtractorFunc(collectMembers), ExtractorFunc(keepTruthy)},
		EditRenderers:    []Renderer{RendererFunc(renderMembers)},
		DisplayRenderers: []Renderer{RendererFunc(renderMembers)},
	}
}

// RowName formats the name of row index i of prototype proto.
func RowName(proto string, i int) string {
	return fmt.Sprintf("%s-%0*d", proto, RowDigits, i)
}

type recoveredRow struct {
	index int
	name  string
}

// expandRows decides how many rows this call has and materializes them as
// clones of the single prototype child. The rows live on d only.
func expandRows(w *Widget, d *Data) error {
	if len(w.children) != 1 {
		return fmt.Errorf("%w: array %q needs exactly one prototype child, has %d", ErrValue, w.Path(), len(w.children))
	}
	proto := w.children[0]
	attrs := d.Attr()
	minRows := attrs.Int("min", 1)
	additional := attrs.Int("additional", 0)

	recovered := recoverRows(d.Request(), w.Path(), proto.name)

	source := d.Value
	base := -1
	if prior, ok := asSlice(d.Extracted); ok {
		base, source = len(prior), d.Extracted
	} else if len(recovered) > 0 {
		base = len(recovered)
	} else if values, ok := asSlice(d.Value); ok {
		base = len(values)
	}

	count := minRows
	if base >= 0 {
		count = base
	}
	count += additional
	if count < minRows {
		count = minRows
	}

	names := rowNames(proto.name, recovered, count)
	values, _ := asSlice(source)
	rows := make([]*Widget, len(names))
	for i, name := range names {
		row := Clone(proto, name)
		row.parent = w
		rows[i] = row
		if i < len(values) {
			d.SetMemberValue(name, values[i])
		}
	}
	d.SetMembers(rows)
	return nil
}

// recoverRows finds the row indices a request carries for an array, keyed
// "<path>.<proto>-<digits>" optionally followed by ".<more>".
func recoverRows(req Request, path, proto string) []recoveredRow {
	prefix := proto + "-"
	if path != "" {
		prefix = path + "." + prefix
	}
	seen := make(map[string]bool)
	var rows []recoveredRow
	for _, key := range req.Keys() {
		rest, ok := strings.CutPrefix(key, prefix)
		if !ok {
			continue
		}
		end := 0
		for end < len(rest) && rest[end] >= '0' && rest[end] <= '9' {
			end++
		}
		if end == 0 || (end < len(rest) && rest[end] != '.') {
			continue
		}
		digits := rest[:end]
		name := proto + "-" + digits
		if seen[name] {
			continue
		}
		idx, err := strconv.Atoi(digits)
		if err != nil {
			continue
		}
		seen[name] = true
		rows = append(rows, recoveredRow{index: idx, name: name})
	}
	sort.Slice(rows, func(i, j int) bool { return rows[i].index < rows[j].index })
	return rows
}

// rowNames keeps recovered names first, truncates to count, and grows with
// indices past the highest one in use.
func rowNames(proto string, recovered []recoveredRow, count int) []string {
	names := make([]string, 0, count)
	next := 0
	for _, r := range recovered {
		if len(names) == count {
			break
		}
		names = append(names, r.name)
		if r.index >= next {
			next = r.index + 1
		}
	}
	for len(names) < count {
		names = append(names, RowName(proto, next))
		next++
	}
	return names
}

// keepTruthy turns the collected rows into a list, dropping empty rows.
func keepTruthy(w *Widget, d *Data) (any, error) {
	rows, ok := d.Extracted.(Fields)
	if !ok {
		return nil, fmt.Errorf("%w: array rows collected as %T", ErrValue, d.Extracted)
	}
	out := make([]any, 0, len(rows))
	for _, r := range rows {
		if Truthy(r.Value) {
			out = append(out, r.Value)
		}
	}
	return out, nil
}

func asSlice(v any) ([]any, bool) {
	switch t := v.(type) {
	case nil, string, unset, Fields:
		return nil, false
	case []any:
		return t, true
	}
	rv := reflect.ValueOf(v)
	if rv.Kind() != reflect.Slice && rv.Kind() != reflect.Array {
		return nil, false
	}
	out := make([]any, rv.Len())
	for i := range out {
		out[i] = rv.Index(i).Interface()
	}
	return out, true
}
