// Command server serves the form documents of a directory over HTTP.
//
// Configuration comes from the environment (see internal/infrastructure/config)
// and can be overridden with flags:
//
//	server -port 8080 -forms ./forms -defaults ./defaults.toml -lang de
package main
