package formdoc

import (
	"bytes"
	"errors"
	"fmt"
	"strings"
	"unicode/utf8"

	"github.com/goccy/go-yaml"
	"github.com/saintfish/chardet"
	"golang.org/x/net/html/charset"
)

// ErrInvalid marks a document that cannot describe a form.
var ErrInvalid = errors.New("invalid form document")

// Document is one declarative form.
type Document struct {
	Name        string              `yaml:"name" json:"name"`
	Title       string              `yaml:"title,omitempty" json:"title,omitempty"`
	Description string              `yaml:"description,omitempty" json:"description,omitempty"`
	Templates   map[string]Template `yaml:"templates,omitempty" json:"templates,omitempty"`
	Form        Node                `yaml:"form" json:"form"`
}

// Template is a reusable set of properties, optionally with a chain, that a
// node refers to by name. Node properties override template properties.
type Template struct {
	Chain any            `yaml:"chain,omitempty" json:"chain,omitempty"`
	Props map[string]any `yaml:"props,omitempty" json:"props,omitempty"`
}

// Node describes one widget. Chain is a colon string or a list of tokens.
type Node struct {
	Name     string         `yaml:"name,omitempty" json:"name,omitempty"`
	Chain    any            `yaml:"chain,omitempty" json:"chain,omitempty"`
	Template string         `yaml:"template,omitempty" json:"template,omitempty"`
	Props    map[string]any `yaml:"props,omitempty" json:"props,omitempty"`
	Value    any            `yaml:"value,omitempty" json:"value,omitempty"`
	Mode     string         `yaml:"mode,omitempty" json:"mode,omitempty"`
	Children []Node         `yaml:"children,omitempty" json:"children,omitempty"`
}

// Parse decodes a document, converting it to UTF-8 first when needed.
func Parse(data []byte) (*Document, error) {
	text, err := Decode(data)
	if err != nil {
		return nil, err
	}

	var doc Document
	if err := yaml.Unmarshal(text, &doc); err != nil {
		return nil, fmt.Errorf("failed to parse document: %w", err)
	}
	if err := doc.Validate(); err != nil {
		return nil, err
	}
	return &doc, nil
}

// Validate checks the fields Build relies on.
func (d *Document) Validate() error {
	if d.Name == "" {
		return fmt.Errorf("%w: name is required", ErrInvalid)
	}
	if strings.ContainsAny(d.Name, "/.") {
		return fmt.Errorf("%w: name %q contains '/' or '.'", ErrInvalid, d.Name)
	}
	if d.Form.Chain == nil && d.Form.Template == "" {
		return fmt.Errorf("%w: form has no chain", ErrInvalid)
	}
	return nil
}

// DetectCharset guesses the charset of data, defaulting to utf-8.
func DetectCharset(data []byte) string {
	result, err := chardet.NewTextDetector().DetectBest(data)
	if err != nil || result == nil {
		return "utf-8"
	}
	return strings.ToLower(result.Charset)
}

// Decode returns data as UTF-8. Valid UTF-8 is returned unchanged; other
// input is transcoded from its detected charset.
func Decode(data []byte) ([]byte, error) {
	data = bytes.TrimPrefix(data, []byte("\xef\xbb\xbf"))
	if utf8.Valid(data) {
		return data, nil
	}

	name := DetectCharset(data)
	r, err := charset.NewReader(bytes.NewReader(data), "text/plain; charset="+name)
	if err != nil {
		return nil, fmt.Errorf("failed to decode %s document: %w", name, err)
	}
	var buf bytes.Buffer
	if _, err := buf.ReadFrom(r); err != nil {
		return nil, fmt.Errorf("failed to decode %s document: %w", name, err)
	}
	if !utf8.Valid(buf.Bytes()) {
		return nil, fmt.Errorf("%w: %s content did not decode to UTF-8", ErrInvalid, name)
	}
	return buf.Bytes(), nil
}
