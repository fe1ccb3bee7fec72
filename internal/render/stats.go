package render

import (
	"fmt"
	"io"

	"github.com/couchcryptid/quake-map-service/internal/domain"
	"github.com/go-echarts/go-echarts/v2/charts"
	"github.com/go-echarts/go-echarts/v2/opts"
)

// BinCounts tallies markers per legend bin, in LegendBins order.
func BinCounts(markers []domain.Marker) []int {
	counts := make([]int, len(domain.LegendBins()))
	for _, m := range markers {
		counts[domain.BinIndex(m.Feature.Magnitude)]++
	}
	return counts
}

// MagnitudeChart builds a bar chart of marker counts per magnitude bin, each
// bar drawn in its legend color.
func MagnitudeChart(markers []domain.Marker, subtitle string) *charts.Bar {
	bins := domain.LegendBins()
	counts := BinCounts(markers)

	labels := make([]string, len(bins))
	data := make([]opts.BarData, len(bins))
	for i, b := range bins {
		labels[i] = b.Label()
		data[i] = opts.BarData{
			Name:      b.Label(),
			Value:     counts[i],
			ItemStyle: &opts.ItemStyle{Color: string(b.Color)},
		}
	}

	bar := charts.NewBar()
	bar.SetGlobalOptions(
		charts.WithInitializationOpts(opts.Initialization{PageTitle: DefaultTitle + " by magnitude", Width: "900px", Height: "480px"}),
		charts.WithTitleOpts(opts.Title{
			Title:    fmt.Sprintf("%d earthquakes by magnitude", len(markers)),
			Subtitle: subtitle,
		}),
		charts.WithLegendOpts(opts.Legend{Show: opts.Bool(false)}),
		charts.WithTooltipOpts(opts.Tooltip{Show: opts.Bool(true), Trigger: "axis"}),
		charts.WithXAxisOpts(opts.XAxis{Name: "magnitude"}),
		charts.WithYAxisOpts(opts.YAxis{Name: "events"}),
	)
	bar.SetXAxis(labels).AddSeries("events", data)
	return bar
}

// StatsPage writes the magnitude chart as a standalone HTML page.
func StatsPage(w io.Writer, markers []domain.Marker, subtitle string) error {
	if err := MagnitudeChart(markers, subtitle).Render(w); err != nil {
		return fmt.Errorf("render stats page: %w", err)
	}
	return nil
}
