// Package logging provides structured logging using uber/zap.
//
// Two modes:
//   - Production: JSON output for machine parsing
//   - Development: colored console output for human readability
//
// The form factory, the controller, the document seeder and the HTTP layer
// all take the *zap.Logger embedded in Logger.
//
// Example Usage:
//
//	logger := logging.NewDefault()
//	logger.Info("Server starting", zap.String("port", "8000"))
//	f := form.NewFactory(form.WithLogger(logger.Named("form")))
package logging
