// Package markup renders and reads the HTML produced by form blueprints.
//
// Components:
//   - Tag: element serialization with escaped attributes
//   - Submission: the values a browser would post for a rendered form
//   - Sanitize: user-generated-content policy for help texts
//
// Example:
//
//	html := markup.Tag("input", markup.Attrs{{"type", "text"}, {"name", "EMAIL"}})
//	values, err := markup.Submission(page)
package markup
