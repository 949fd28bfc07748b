package render

import (
	"embed"
	"fmt"
	"html/template"
	"io"
	"net/url"

	"gradecalc/internal/model"
	"gradecalc/internal/service"
)

//go:embed templates/*.html
var templateFS embed.FS

const pageTitle = "🎓 Student Grade Calculator"

// PageData is what the page template sees.
type PageData struct {
	Title     string
	View      service.View
	Rows      []model.Row
	Headers   []string
	Subjects  []model.Subject
	CSRFField template.HTML
	Footer    template.HTML
	ChartURL  string
}

type Page struct {
	tpl    *template.Template
	footer template.HTML
}

// NewPage parses the page template once; footerMarkdown is rendered below
// every page.
func NewPage(footerMarkdown string) (*Page, error) {
	tpl, err := template.New("page.html").Funcs(template.FuncMap{
		"average": func(v float64) string { return fmt.Sprintf("%.1f", v) },
	}).ParseFS(templateFS, "templates/page.html")
	if err != nil {
		return nil, fmt.Errorf("parse page template: %w", err)
	}
	return &Page{tpl: tpl, footer: Markdown(footerMarkdown)}, nil
}

func (p *Page) Render(w io.Writer, view service.View, csrfField template.HTML) error {
	data := PageData{
		Title:     pageTitle,
		View:      view,
		Rows:      view.Rows(),
		Headers:   model.RowHeaders,
		Subjects:  model.Subjects,
		CSRFField: csrfField,
		Footer:    p.footer,
	}
	if view.Chart != nil {
		data.ChartURL = "/chart.png?student=" + url.QueryEscape(view.Selected)
	}
	return p.tpl.Execute(w, data)
}
