package enhancer

import (
	"context"
	"strings"

	"github.com/PuerkitoBio/goquery"

	"github.com/agentstation/supplymap/pkg/catalogs"
)

// HTMLDescription derives a plain-text description from description_html.
type HTMLDescription struct {
	priority int
}

// NewHTMLDescription creates an HTMLDescription enhancer.
func NewHTMLDescription() *HTMLDescription {
	return &HTMLDescription{priority: 90}
}

// Name returns the enhancer name
func (e *HTMLDescription) Name() string { return "html_description" }

// Priority returns the priority
func (e *HTMLDescription) Priority() int { return e.priority }

// CanEnhance reports whether description is missing and HTML is available.
func (e *HTMLDescription) CanEnhance(rec catalogs.Record) bool {
	return !rec.Has(catalogs.FieldDescription) && rec.Has(catalogs.FieldDescriptionHTML)
}

// Enhance extracts the visible text of description_html.
func (e *HTMLDescription) Enhance(_ context.Context, rec catalogs.Record) (catalogs.Record, error) {
	doc, err := goquery.NewDocumentFromReader(strings.NewReader(rec.String(catalogs.FieldDescriptionHTML)))
	if err != nil {
		return nil, err
	}
	doc.Find("script, style").Remove()
	doc.Find("p, div, li, td, th, h1, h2, h3, h4, h5, h6").AppendHtml(" ")
	text := strings.Join(strings.Fields(doc.Text()), " ")
	if text == "" {
		return rec, nil
	}
	return rec.With(catalogs.FieldDescription, catalogs.Text(text)), nil
}
