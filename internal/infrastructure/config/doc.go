// Package config provides 12-factor configuration for the form server.
//
// Configuration is loaded from environment variables with sensible defaults.
// Form-level defaults, macros and message translations live in an optional
// TOML file named by FORMS_DEFAULTS.
//
// Configuration Sections:
//   - Server: HTTP server settings (port, host)
//   - Forms: document directory, file pattern, defaults file, language
//   - Logging: Log level and output format
//   - RateLimit: Per-IP rate limiting configuration
//   - CORS: allowed origins
//
// Example Usage:
//
//	cfg := config.LoadOrDefault()
//	defaults, err := config.LoadDefaults(cfg.Forms.Defaults)
//	err = defaults.ApplyMessages(catalog)
//	err = defaults.Apply(factory)
//
// Environment Variables:
//   - PORT, HOST
//   - FORMS_DIR, FORMS_PATTERN, FORMS_DEFAULTS, FORMS_LANGUAGE
//   - LOG_LEVEL, LOG_DEV
//   - RATE_LIMIT_RPS, RATE_LIMIT_BURST, RATE_LIMIT_ENABLED
//   - CORS_ORIGINS
package config
