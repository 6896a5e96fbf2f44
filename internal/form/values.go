package form

import (
	"bytes"
	"reflect"

	"github.com/bytedance/sonic"
)

type unset struct{}

func (unset) String() string { return "<unset>" }

// MarshalJSON encodes Unset as null.
func (unset) MarshalJSON() ([]byte, error) { return []byte("null"), nil }

// Unset marks a value that was never produced, as opposed to an empty one.
var Unset any = unset{}

// IsUnset reports whether v is Unset.
func IsUnset(v any) bool {
	_, ok := v.(unset)
	return ok
}

// Mode selects which pipeline a widget participates in.
type Mode string

const (
	ModeEdit    Mode = "edit"
	ModeDisplay Mode = "display"
	ModeSkip    Mode = "skip"
)

// Valid reports whether m is one of the three known modes.
func (m Mode) Valid() bool {
	switch m {
	case ModeEdit, ModeDisplay, ModeSkip:
		return true
	}
	return false
}

// Getter computes a widget value per call.
type Getter func(w *Widget, d *Data) (any, error)

// ModeFunc computes a widget mode per call.
type ModeFunc func(w *Widget, d *Data) (Mode, error)

// Field is one named entry of Fields.
type Field struct {
	Name  string
	Value any
}

// Fields is an ordered map. Compound widgets produce and consume it so that
// member declaration order survives extraction.
type Fields []Field

// Get returns the value stored under name.
func (fs Fields) Get(name string) (any, bool) {
	for _, f := range fs {
		if f.Name == name {
			return f.Value, true
		}
	}
	return nil, false
}

// Set replaces the value under name or appends it.
func (fs Fields) Set(name string, v any) Fields {
	for i := range fs {
		if fs[i].Name == name {
			fs[i].Value = v
			return fs
		}
	}
	return append(fs, Field{Name: name, Value: v})
}

// Names returns the keys in order.
func (fs Fields) Names() []string {
	names := make([]string, len(fs))
	for i, f := range fs {
		names[i] = f.Name
	}
	return names
}

// Map converts to an unordered map.
func (fs Fields) Map() map[string]any {
	m := make(map[string]any, len(fs))
	for _, f := range fs {
		m[f.Name] = f.Value
	}
	return m
}

// MarshalJSON encodes Fields as a JSON object in declaration order.
func (fs Fields) MarshalJSON() ([]byte, error) {
	var buf bytes.Buffer
	buf.WriteByte('{')
	for i, f := range fs {
		if i > 0 {
			buf.WriteByte(',')
		}
		key, err := sonic.Marshal(f.Name)
		if err != nil {
			return nil, err
		}
		val, err := sonic.Marshal(f.Value)
		if err != nil {
			return nil, err
		}
		buf.Write(key)
		buf.WriteByte(':')
		buf.Write(val)
	}
	buf.WriteByte('}')
	return buf.Bytes(), nil
}

// lookupMember reads name from a compound value.
func lookupMember(value any, name string) (any, bool) {
	switch v := value.(type) {
	case Fields:
		return v.Get(name)
	case map[string]any:
		val, ok := v[name]
		return val, ok
	case map[string]string:
		val, ok := v[name]
		return val, ok
	}
	return nil, false
}

// Truthy reports whether an extracted value counts as present. Fields are
// truthy when any member is.
func Truthy(v any) bool {
	switch t := v.(type) {
	case nil:
		return false
	case unset:
		return false
	case bool:
		return t
	case string:
		return t != ""
	case Fields:
		for _, f := range t {
			if Truthy(f.Value) {
				return true
			}
		}
		return false
	}
	rv := reflect.ValueOf(v)
	switch rv.Kind() {
	case reflect.Slice, reflect.Map, reflect.Array:
		return rv.Len() > 0
	case reflect.Pointer, reflect.Interface:
		return !rv.IsNil()
	case reflect.Int, reflect.Int8, reflect.Int16, reflect.Int32, reflect.Int64:
		return rv.Int() != 0
	case reflect.Uint, reflect.Uint8, reflect.Uint16, reflect.Uint32, reflect.Uint64:
		return rv.Uint() != 0
	case reflect.Float32, reflect.Float64:
		return rv.Float() != 0
	}
	return true
}
