package form

import (
	"fmt"
	"strconv"
)

// Attributes resolves properties of a widget for the blueprint currently
// executing. Lookup order: "phase.key" on the widget, "key" on the widget,
// "phase.key" in factory defaults, "key" in factory defaults.
type Attributes struct {
	widget *Widget
	phase  string
}

// Lookup resolves key and reports whether any source had it.
func (a Attributes) Lookup(key string) (any, bool) {
	w := a.widget
	if a.phase != "" {
		if v, ok := w.props[a.phase+"."+key]; ok {
			return v, true
		}
	}
	if v, ok := w.props[key]; ok {
		return v, true
	}
	if w.factory == nil {
		return nil, false
	}
	if a.phase != "" {
		if v, ok := w.factory.Default(a.phase + "." + key); ok {
			return v, true
		}
	}
	return w.factory.Default(key)
}

// Get resolves key or fails with a *KeyError.
func (a Attributes) Get(key string) (any, error) {
	if v, ok := a.Lookup(key); ok {
		return v, nil
	}
	return nil, &KeyError{Key: key, Path: a.widget.Path()}
}

// String resolves key as a string.
func (a Attributes) String(key, fallback string) string {
	v, ok := a.Lookup(key)
	if !ok || v == nil {
		return fallback
	}
	if s, ok := v.(string); ok {
		return s
	}
	return fmt.Sprint(v)
}

// Bool resolves key as a boolean; missing keys are false.
func (a Attributes) Bool(key string) bool {
	v, ok := a.Lookup(key)
	if !ok {
		return false
	}
	switch t := v.(type) {
	case bool:
		return t
	case string:
		b, _ := strconv.ParseBool(t)
		return b
	}
	return Truthy(v)
}

// Int resolves key as an integer.
func (a Attributes) Int(key string, fallback int) int {
	v, ok := a.Lookup(key)
	if !ok {
		return fallback
	}
	switch t := v.(type) {
	case int:
		return t
	case int64:
		return int(t)
	case uint64:
		return int(t)
	case float64:
		return int(t)
	case string:
		if n, err := strconv.Atoi(t); err == nil {
			return n
		}
	}
	return fallback
}
