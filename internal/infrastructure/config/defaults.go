package config

import (
	"fmt"
	"os"
	"sort"

	"github.com/GriffinCanCode/formwork/internal/form"
	"github.com/GriffinCanCode/formwork/internal/i18n"
	"github.com/pelletier/go-toml/v2"
)

// Defaults is the content of the TOML defaults file:
//
//	[defaults]
//	"text.maxlength" = 200
//
//	[macros.labeled]
//	chain = "field:label:text"
//	props = { required = true }
//
//	[messages.de]
//	"Mandatory field was empty" = "Pflichtfeld ist leer"
type Defaults struct {
	Defaults map[string]any               `toml:"defaults"`
	Macros   map[string]MacroConfig       `toml:"macros"`
	Messages map[string]map[string]string `toml:"messages"`
}

// MacroConfig describes one macro. Chain is a colon string or a list.
type MacroConfig struct {
	Chain any            `toml:"chain"`
	Props map[string]any `toml:"props"`
}

// Tokens returns the chain as a token list.
func (m MacroConfig) Tokens() ([]string, error) {
	return form.ChainTokens(m.Chain)
}

// ParseDefaults decodes a TOML defaults document.
func ParseDefaults(data []byte) (*Defaults, error) {
	var d Defaults
	if err := toml.Unmarshal(data, &d); err != nil {
		return nil, fmt.Errorf("failed to parse defaults: %w", err)
	}
	return &d, nil
}

// LoadDefaults reads the defaults file at path. An empty path yields empty
// defaults.
func LoadDefaults(path string) (*Defaults, error) {
	if path == "" {
		return &Defaults{}, nil
	}
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("failed to read defaults: %w", err)
	}
	return ParseDefaults(data)
}

// Apply registers the defaults and macros on f.
func (d *Defaults) Apply(f *form.Factory) error {
	for key, value := range d.Defaults {
		f.SetDefault(key, value)
	}

	names := make([]string, 0, len(d.Macros))
	for name := range d.Macros {
		names = append(names, name)
	}
	sort.Strings(names)
	for _, name := range names {
		m := d.Macros[name]
		tokens, err := m.Tokens()
		if err != nil {
			return fmt.Errorf("macro %s: %w", name, err)
		}
		if err := f.RegisterMacro(name, tokens, m.Props); err != nil {
			return fmt.Errorf("macro %s: %w", name, err)
		}
	}
	return nil
}

// ApplyMessages adds the message translations to catalog. Call it before
// taking a translator from the catalog, which matches its language against
// the languages present at that time.
func (d *Defaults) ApplyMessages(catalog *i18n.Catalog) error {
	for lang, messages := range d.Messages {
		if err := catalog.AddString(lang, messages); err != nil {
			return err
		}
	}
	return nil
}
