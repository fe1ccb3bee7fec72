package render

import (
	"embed"
	"fmt"
	"html/template"
	"io"

	"github.com/couchcryptid/quake-map-service/internal/domain"
)

//go:embed templates/map.html.tmpl
var templateFS embed.FS

var pageTemplate = template.Must(template.ParseFS(templateFS, "templates/map.html.tmpl"))

// DefaultTitle is the page title used when PageData.Title is empty.
const DefaultTitle = "Earthquakes"

// PageData feeds the map page template.
type PageData struct {
	Title  string
	Map    Map
	Legend template.HTML
}

// NewPageData pairs a map with the standard legend.
func NewPageData(m Map) PageData {
	return PageData{
		Title:  DefaultTitle,
		Map:    m,
		Legend: LegendHTML(domain.LegendBins()),
	}
}

// Page writes the full-viewport map page.
func Page(w io.Writer, data PageData) error {
	if data.Title == "" {
		data.Title = DefaultTitle
	}
	if err := pageTemplate.Execute(w, data); err != nil {
		return fmt.Errorf("render map page: %w", err)
	}
	return nil
}
