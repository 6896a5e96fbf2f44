package http

import (
	"github.com/GriffinCanCode/formwork/internal/domain/formdoc"
	"github.com/GriffinCanCode/formwork/internal/markup"
)

// page wraps rendered form markup in a minimal HTML document.
func page(doc *formdoc.Document, body string) []byte {
	title := doc.Title
	if title == "" {
		title = doc.Name
	}
	head := markup.Tag("head", nil,
		markup.Tag("meta", markup.Attrs{{Key: "charset", Value: "utf-8"}}),
		markup.Tag("title", nil, markup.Text(title)),
	)
	content := []string{markup.Tag("h1", nil, markup.Text(title))}
	if doc.Description != "" {
		content = append(content, markup.Tag("p", markup.Attrs{{Key: "class", Value: "description"}}, markup.Text(doc.Description)))
	}
	content = append(content, body)
	return []byte("<!DOCTYPE html>\n" + markup.Tag("html", nil, head, markup.Tag("body", nil, content...)))
}
