package markup

import (
	"fmt"
	"strings"

	"github.com/GriffinCanCode/formwork/internal/form"
	"golang.org/x/net/html"
)

// Attr is one element attribute. Nil, false and unset values are omitted, true
// renders a bare attribute, string slices are joined with spaces.
type Attr struct {
	Key   string
	Value any
}

// Attrs keeps attributes in output order.
type Attrs []Attr

// With returns a copy of a with key set, replacing an existing entry.
func (a Attrs) With(key string, value any) Attrs {
	out := make(Attrs, 0, len(a)+1)
	replaced := false
	for _, at := range a {
		if at.Key == key {
			at.Value, replaced = value, true
		}
		out = append(out, at)
	}
	if !replaced {
		out = append(out, Attr{Key: key, Value: value})
	}
	return out
}

// Tag serializes an element. Inner content is written as given; without
// inner content the element self-closes.
func Tag(name string, attrs Attrs, inner ...string) string {
	var b strings.Builder
	b.WriteByte('<')
	b.WriteString(name)
	for _, at := range attrs {
		val, ok := attrValue(at.Value)
		if !ok {
			continue
		}
		b.WriteByte(' ')
		b.WriteString(at.Key)
		if val != nil {
			b.WriteString(`="`)
			b.WriteString(html.EscapeString(*val))
			b.WriteByte('"')
		}
	}
	if len(inner) == 0 {
		b.WriteString(" />")
		return b.String()
	}
	b.WriteByte('>')
	for _, s := range inner {
		b.WriteString(s)
	}
	b.WriteString("</")
	b.WriteString(name)
	b.WriteByte('>')
	return b.String()
}

// attrValue returns the serialized value, nil for a bare attribute, and
// false when the attribute is omitted.
func attrValue(v any) (*string, bool) {
	var s string
	switch t := v.(type) {
	case nil:
		return nil, false
	case bool:
		return nil, t
	case string:
		s = t
	case []string:
		if len(t) == 0 {
			return nil, false
		}
		s = strings.Join(t, " ")
	default:
		if form.IsUnset(v) {
			return nil, false
		}
		s = fmt.Sprint(t)
	}
	return &s, true
}

// Text escapes s for use as element content.
func Text(s string) string {
	return html.EscapeString(s)
}

// Classes joins the non-empty class names.
func Classes(names ...string) []string {
	out := make([]string, 0, len(names))
	for _, n := range names {
		out = append(out, strings.Fields(n)...)
	}
	return out
}
