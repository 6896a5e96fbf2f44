package markup

import (
	"fmt"
	"net/url"
	"strings"

	"github.com/PuerkitoBio/goquery"
)

// Submission returns the values a browser would post for the first form in
// page, or for the whole fragment when it has no form element. Disabled
// controls, buttons and unchecked boxes are not successful controls.
func Submission(page string) (url.Values, error) {
	doc, err := goquery.NewDocumentFromReader(strings.NewReader(page))
	if err != nil {
		return nil, fmt.Errorf("parse failed: %w", err)
	}

	scope := doc.Find("form").First()
	if scope.Length() == 0 {
		scope = doc.Selection
	}

	values := url.Values{}
	scope.Find("input, textarea, select").Each(func(_ int, s *goquery.Selection) {
		name := s.AttrOr("name", "")
		if name == "" {
			return
		}
		if _, disabled := s.Attr("disabled"); disabled {
			return
		}

		switch goquery.NodeName(s) {
		case "textarea":
			values.Add(name, s.Text())
		case "select":
			selected := s.Find("option[selected]")
			if selected.Length() == 0 {
				if _, multiple := s.Attr("multiple"); multiple {
					return
				}
				selected = s.Find("option").First()
			}
			selected.Each(func(_ int, o *goquery.Selection) {
				values.Add(name, o.AttrOr("value", o.Text()))
			})
		default:
			switch strings.ToLower(s.AttrOr("type", "text")) {
			case "submit", "button", "image", "reset", "file":
				return
			case "checkbox", "radio":
				if _, checked := s.Attr("checked"); !checked {
					return
				}
				values.Add(name, s.AttrOr("value", "on"))
			default:
				values.Add(name, s.AttrOr("value", ""))
			}
		}
	})
	return values, nil
}

// Actions lists the action button names present in page, in document order.
func Actions(page string) ([]string, error) {
	doc, err := goquery.NewDocumentFromReader(strings.NewReader(page))
	if err != nil {
		return nil, fmt.Errorf("parse failed: %w", err)
	}
	var names []string
	doc.Find(`button[type="submit"], input[type="submit"]`).Each(func(_ int, s *goquery.Selection) {
		if name := s.AttrOr("name", ""); strings.HasPrefix(name, "action.") {
			names = append(names, name)
		}
	})
	return names, nil
}
