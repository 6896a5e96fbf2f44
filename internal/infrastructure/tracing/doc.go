// Package tracing records one span per form request and logs it.
//
// Spans carry a trace id taken from the X-Trace-ID header or generated with
// uuid, the route, the form name and the submission id. Finished spans are
// submitted to a buffered collector that logs them with zap; a full buffer
// drops spans instead of blocking requests.
package tracing
