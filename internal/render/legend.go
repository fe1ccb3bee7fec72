package render

import (
	"html"
	"html/template"
	"strings"

	"github.com/couchcryptid/quake-map-service/internal/domain"
)

// LegendHTML renders the legend body: one swatch and range label per bin.
func LegendHTML(bins []domain.LegendBin) template.HTML {
	rows := make([]string, len(bins))
	for i, b := range bins {
		rows[i] = `<i style="background: ` + html.EscapeString(string(b.Color)) + `"></i> ` + html.EscapeString(b.Label())
	}
	return template.HTML(strings.Join(rows, "<br>")) //nolint:gosec // built from escaped parts
}
