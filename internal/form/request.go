package form

import (
	"net/url"
	"sort"
)

// Request is the read-only submission a form is extracted from.
type Request interface {
	Has(key string) bool
	Get(key string) string
	Values(key string) []string
	Keys() []string
}

// Values adapts url.Values to Request.
type Values url.Values

func (v Values) Has(key string) bool {
	_, ok := v[key]
	return ok
}

func (v Values) Get(key string) string {
	return url.Values(v).Get(key)
}

func (v Values) Values(key string) []string {
	return v[key]
}

func (v Values) Keys() []string {
	keys := make([]string, 0, len(v))
	for k := range v {
		keys = append(keys, k)
	}
	sort.Strings(keys)
	return keys
}

// Map adapts a single-valued map to Request.
type Map map[string]string

func (m Map) Has(key string) bool {
	_, ok := m[key]
	return ok
}

func (m Map) Get(key string) string {
	return m[key]
}

func (m Map) Values(key string) []string {
	if v, ok := m[key]; ok {
		return []string{v}
	}
	return nil
}

func (m Map) Keys() []string {
	keys := make([]string, 0, len(m))
	for k := range m {
		keys = append(keys, k)
	}
	sort.Strings(keys)
	return keys
}

type emptyRequest struct{}

func (emptyRequest) Has(string) bool        { return false }
func (emptyRequest) Get(string) string      { return "" }
func (emptyRequest) Values(string) []string { return nil }
func (emptyRequest) Keys() []string         { return nil }

// Empty is a request without keys.
var Empty Request = emptyRequest{}
