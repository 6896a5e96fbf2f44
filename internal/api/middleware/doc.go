// Package middleware provides the gin middleware of the form server.
//
//   - CORS: cross-origin access for the JSON submission API
//   - RateLimit: per-IP token bucket limiting of form submissions
//
// Example Usage:
//
//	router.Use(middleware.CORS(middleware.CORSForOrigins(cfg.CORS.Origins)))
//	router.Use(middleware.RateLimit(middleware.DefaultRateLimitConfig()))
package middleware
