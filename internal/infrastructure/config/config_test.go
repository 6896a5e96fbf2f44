package config

import (
	"os"
	"path/filepath"
	"testing"

	"github.com/GriffinCanCode/formwork/internal/form"
	"github.com/GriffinCanCode/formwork/internal/i18n"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"golang.org/x/text/language"
)

var envKeys = []string{
	"PORT", "HOST",
	"FORMS_DIR", "FORMS_PATTERN", "FORMS_DEFAULTS", "FORMS_LANGUAGE",
	"LOG_LEVEL", "LOG_DEV",
	"RATE_LIMIT_RPS", "RATE_LIMIT_BURST", "RATE_LIMIT_ENABLED",
	"CORS_ORIGINS",
}

// clearEnv unsets every configuration variable for the test.
func clearEnv(t *testing.T) {
	t.Helper()
	for _, key := range envKeys {
		t.Setenv(key, "")
		require.NoError(t, os.Unsetenv(key))
	}
}

func TestDefault(t *testing.T) {
	cfg := Default()

	assert.Equal(t, "8000", cfg.Server.Port)
	assert.Equal(t, "0.0.0.0", cfg.Server.Host)
	assert.Equal(t, "0.0.0.0:8000", cfg.Server.Addr())

	assert.Equal(t, "forms", cfg.Forms.Dir)
	assert.Equal(t, "**/*.{yaml,yml,json}", cfg.Forms.Pattern)
	assert.Empty(t, cfg.Forms.Defaults)
	assert.Equal(t, "en", cfg.Forms.Language)

	assert.Equal(t, "info", cfg.Logging.Level)
	assert.False(t, cfg.Logging.Development)

	assert.Equal(t, 100, cfg.RateLimit.RequestsPerSecond)
	assert.Equal(t, 200, cfg.RateLimit.Burst)
	assert.True(t, cfg.RateLimit.Enabled)

	assert.Equal(t, []string{"*"}, cfg.CORS.Origins)
}

func TestLoadMatchesDefault(t *testing.T) {
	clearEnv(t)
	cfg, err := Load()
	require.NoError(t, err)
	assert.Equal(t, Default(), cfg)
}

func TestLoadWithEnvironmentVariables(t *testing.T) {
	clearEnv(t)
	envVars := map[string]string{
		"PORT":               "9000",
		"HOST":               "127.0.0.1",
		"FORMS_DIR":          "/srv/forms",
		"FORMS_PATTERN":      "*.yaml",
		"FORMS_DEFAULTS":     "/srv/defaults.toml",
		"FORMS_LANGUAGE":     "de",
		"LOG_LEVEL":          "debug",
		"LOG_DEV":            "true",
		"RATE_LIMIT_RPS":     "500",
		"RATE_LIMIT_BURST":   "1000",
		"RATE_LIMIT_ENABLED": "false",
		"CORS_ORIGINS":       "https://a.example,https://b.example",
	}
	for key, value := range envVars {
		t.Setenv(key, value)
	}

	cfg, err := Load()
	require.NoError(t, err)

	assert.Equal(t, "127.0.0.1:9000", cfg.Server.Addr())
	assert.Equal(t, FormsConfig{
		Dir:      "/srv/forms",
		Pattern:  "*.yaml",
		Defaults: "/srv/defaults.toml",
		Language: "de",
	}, cfg.Forms)
	assert.Equal(t, "debug", cfg.Logging.Level)
	assert.True(t, cfg.Logging.Development)
	assert.Equal(t, 500, cfg.RateLimit.RequestsPerSecond)
	assert.Equal(t, 1000, cfg.RateLimit.Burst)
	assert.False(t, cfg.RateLimit.Enabled)
	assert.Equal(t, []string{"https://a.example", "https://b.example"}, cfg.CORS.Origins)
}

func TestLoadWithInvalidValue(t *testing.T) {
	clearEnv(t)
	t.Setenv("RATE_LIMIT_RPS", "many")

	_, err := Load()
	require.Error(t, err)
	assert.Contains(t, err.Error(), "failed to load config")

	cfg := LoadOrDefault()
	assert.Equal(t, 100, cfg.RateLimit.RequestsPerSecond)
}

const defaultsFile = `
[defaults]
"text.maxlength" = 200
help = "see docs"

[macros.labeled]
chain = "field:label:text"
props = { required = true }

[macros.mail]
chain = ["field", "label", "email"]

[messages.de]
"Mandatory field was empty" = "Pflichtfeld ist leer"
`

func TestParseDefaults(t *testing.T) {
	d, err := ParseDefaults([]byte(defaultsFile))
	require.NoError(t, err)

	assert.Equal(t, int64(200), d.Defaults["text.maxlength"])
	assert.Equal(t, "see docs", d.Defaults["help"])
	require.Contains(t, d.Macros, "labeled")
	assert.Equal(t, true, d.Macros["labeled"].Props["required"])
	assert.Equal(t, "Pflichtfeld ist leer", d.Messages["de"]["Mandatory field was empty"])

	_, err = ParseDefaults([]byte("[defaults"))
	assert.Error(t, err)
}

func TestMacroTokens(t *testing.T) {
	got, err := MacroConfig{Chain: []any{"field", "text"}}.Tokens()
	require.NoError(t, err)
	assert.Equal(t, []string{"field", "text"}, got)

	_, err = MacroConfig{}.Tokens()
	assert.ErrorIs(t, err, form.ErrValue)
}

func TestApply(t *testing.T) {
	d, err := ParseDefaults([]byte(defaultsFile))
	require.NoError(t, err)

	f := form.NewFactory()
	catalog := i18n.New(language.English)
	require.NoError(t, d.ApplyMessages(catalog))
	require.NoError(t, d.Apply(f))

	v, ok := f.Default("text.maxlength")
	require.True(t, ok)
	assert.Equal(t, int64(200), v)

	m, ok := f.Macro("labeled")
	require.True(t, ok)
	assert.Equal(t, []string{"field", "label", "text"}, m.Chain)
	assert.Equal(t, true, m.Props["required"])

	m, ok = f.Macro("mail")
	require.True(t, ok)
	assert.Equal(t, []string{"field", "label", "email"}, m.Chain)

	de := catalog.Translator(language.German)
	assert.Equal(t, "Pflichtfeld ist leer", de("Mandatory field was empty"))

	bad := &Defaults{Messages: map[string]map[string]string{"not a tag!": {}}}
	assert.Error(t, bad.ApplyMessages(catalog))
}

func TestApplyRejectsBadMacro(t *testing.T) {
	d := &Defaults{Macros: map[string]MacroConfig{"bad:name": {Chain: "text"}}}
	err := d.Apply(form.NewFactory())
	require.Error(t, err)
	assert.ErrorIs(t, err, form.ErrName)
}

func TestLoadDefaults(t *testing.T) {
	d, err := LoadDefaults("")
	require.NoError(t, err)
	assert.Empty(t, d.Macros)

	path := filepath.Join(t.TempDir(), "defaults.toml")
	require.NoError(t, os.WriteFile(path, []byte(defaultsFile), 0o644))
	d, err = LoadDefaults(path)
	require.NoError(t, err)
	assert.Len(t, d.Macros, 2)

	_, err = LoadDefaults(filepath.Join(t.TempDir(), "missing.toml"))
	assert.Error(t, err)
}
