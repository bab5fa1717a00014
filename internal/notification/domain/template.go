package domain

import (
	"fmt"
	"html"
	"html/template"
	"regexp"
)

var placeholder = regexp.MustCompile(`\{\{\s*([A-Za-z0-9_]+)\s*\}\}`)

// Template is an email body with {{key}} placeholders. Unknown keys render
// as the empty string.
type Template struct {
	Subject string
	Body    string
}

// Render substitutes data into the body. Values are HTML-escaped unless they
// are template.HTML.
func (t Template) Render(data map[string]any) string {
	return placeholder.ReplaceAllStringFunc(t.Body, func(m string) string {
		key := placeholder.FindStringSubmatch(m)[1]
		v, ok := data[key]
		if !ok || v == nil {
			return ""
		}
		switch v := v.(type) {
		case template.HTML:
			return string(v)
		case string:
			return html.EscapeString(v)
		default:
			return html.EscapeString(fmt.Sprint(v))
		}
	})
}

func (t Template) RenderSubject(data map[string]any) string {
	return placeholder.ReplaceAllStringFunc(t.Subject, func(m string) string {
		key := placeholder.FindStringSubmatch(m)[1]
		if v, ok := data[key]; ok && v != nil {
			return fmt.Sprint(v)
		}
		return ""
	})
}

type Message struct {
	To      string
	ToName  string
	Subject string
	HTML    string
}
