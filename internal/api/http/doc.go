// Package http serves form documents over HTTP.
//
// Routes:
//   - GET  /forms                        list the library
//   - GET  /forms/:name                  render a form page, prefilled from the query
//   - POST /forms/:name                  submit; redirect to the action's next URL
//     or re-render with errors (422)
//   - POST /api/forms/:name              submit form-encoded or JSON, answer JSON
//   - GET  /api/forms/:name/submissions  stored submissions of a form
//   - GET  /api/submissions/:id          one stored submission
//   - GET  /health                       library, factory and metrics totals
//
// Every submission gets a ULID submission id, returned in the
// X-Submission-ID header and tagged on the request span.
package http
