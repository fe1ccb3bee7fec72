package domain

import "strconv"

// LegendBin is one magnitude range shown in the map legend. Upper is nil for
// the open-ended top bin.
type LegendBin struct {
	Lower float64  `json:"lower"`
	Upper *float64 `json:"upper"`
	Color ColorHex `json:"color"`
}

// Label renders the bin range, "2–3" or "5+" for the last bin.
func (b LegendBin) Label() string {
	lower := strconv.FormatFloat(b.Lower, 'f', -1, 64)
	if b.Upper == nil {
		return lower + "+"
	}
	return lower + "–" + strconv.FormatFloat(*b.Upper, 'f', -1, 64)
}

var legendColors = []ColorHex{
	ColorGray,
	ColorDarkGreen,
	ColorGreen,
	ColorYellow,
	ColorOrange,
	ColorRed,
}

// LegendBins returns the six legend bins in ascending order. A fresh slice is
// returned on every call.
func LegendBins() []LegendBin {
	bins := make([]LegendBin, len(legendColors))
	for i, c := range legendColors {
		bins[i] = LegendBin{Lower: float64(i), Color: c}
		if i < len(legendColors)-1 {
			upper := float64(i + 1)
			bins[i].Upper = &upper
		}
	}
	return bins
}

// BinIndex returns the position in LegendBins of the bin whose color ColorFor
// assigns to m.
func BinIndex(m float64) int {
	c := ColorFor(m)
	for i, lc := range legendColors {
		if lc == c {
			return i
		}
	}
	return 0
}
