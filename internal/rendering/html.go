package rendering

import (
	"fmt"
	"html/template"
	"strings"

	"github.com/jonathan/resume-builder/internal/layout"
)

const pageTemplate = `<!DOCTYPE html>
<html lang="en">
<head>
<meta charset="utf-8">
<title>{{.Doc.Title}}</title>
<style>
@page { size: {{.Width}}pt {{.Height}}pt; margin: 0; }
html, body { margin: 0; padding: 0; }
body { width: {{.Width}}pt; min-height: {{.Height}}pt; {{css .Doc.Page}} }
.row { display: flex; flex-wrap: wrap; gap: 8pt; }
.row > .right { margin-left: auto; }
.badges { display: flex; flex-wrap: wrap; gap: 4pt; margin: 2pt 0 6pt; }
.badges span { border-radius: 3pt; }
a { text-decoration: none; }
</style>
</head>
<body data-template="{{.Doc.Template}}">
{{range .Doc.Blocks}}{{template "block" .}}{{end}}
</body>
</html>
{{define "block"}}{{if eq .Kind "heading"}}<h2 class="heading" style="{{css .Style}}">{{.Text}}</h2>
{{else if eq .Kind "text"}}<p class="text{{if eq .Style.Align "right"}} right{{end}}" style="{{css .Style}}">{{.Text}}</p>
{{else if eq .Kind "link"}}<a class="link" href="{{.Href}}" style="{{css .Style}}">{{.Text}}</a>
{{else if eq .Kind "badges"}}<div class="badges">{{$s := .Style}}{{range .Items}}<span style="{{css $s}}">{{.}}</span>{{end}}</div>
{{else if eq .Kind "rule"}}<hr style="{{css .Style}}">
{{else}}<div class="{{.Kind}}"{{with .Section}} data-section="{{.}}"{{end}} style="{{css .Style}}">
{{range .Children}}{{template "block" .}}{{end}}</div>
{{end}}{{end}}`

var htmlPage = template.Must(template.New("page").Funcs(template.FuncMap{"css": styleCSS}).Parse(pageTemplate))

// RenderHTML serializes a document as a standalone HTML page whose @page rule declares
// the given page size with zero margins.
func RenderHTML(doc *Document, page layout.PageSize) (string, error) {
	if doc == nil {
		return "", &RenderError{Message: "no document to serialize"}
	}
	var b strings.Builder
	err := htmlPage.Execute(&b, struct {
		Doc    *Document
		Width  string
		Height string
	}{doc, points(page.Width), points(page.Height)})
	if err != nil {
		return "", &TemplateError{Message: "failed to execute page template", Cause: err}
	}
	return b.String(), nil
}

func points(v float64) string {
	return strings.TrimRight(strings.TrimRight(fmt.Sprintf("%.2f", v), "0"), ".")
}

// styleCSS converts a Style into inline CSS declarations.
func styleCSS(s Style) template.CSS {
	var decls []string
	add := func(format string, args ...any) {
		decls = append(decls, fmt.Sprintf(format, args...))
	}
	switch s.Font {
	case FontMono:
		add("font-family: Courier, 'Courier New', monospace")
	case FontSans:
		add("font-family: Helvetica, Arial, sans-serif")
	}
	if s.FontSize > 0 {
		add("font-size: %spt", points(s.FontSize))
	}
	if s.Bold {
		add("font-weight: bold")
	}
	if s.Italic {
		add("font-style: italic")
	}
	if isHexColor(s.Color) {
		add("color: %s", s.Color)
	}
	if isHexColor(s.Background) {
		add("background-color: %s", s.Background)
	}
	if s.Align != "" {
		add("text-align: %s", s.Align)
	}
	if s.Align == AlignCenter {
		add("justify-content: center")
	}
	if s.Padding > 0 {
		add("padding: %spt", points(s.Padding))
	}
	add("margin: %spt 0 %spt", points(s.MarginTop), points(s.MarginBottom))
	if isHexColor(s.BorderColor) {
		add("border-bottom: 1pt solid %s", s.BorderColor)
	}
	return template.CSS(strings.Join(decls, "; "))
}

// isHexColor guards the inline CSS against values that are not plain #rgb or #rrggbb.
func isHexColor(s string) bool {
	if len(s) != 4 && len(s) != 7 || s[0] != '#' {
		return false
	}
	for _, c := range s[1:] {
		if !strings.ContainsRune("0123456789abcdefABCDEF", c) {
			return false
		}
	}
	return true
}
