package domain

import "time"

// MarkerRecord is the published form of a rendered marker. Magnitude is a
// pointer because a missing magnitude is NaN in memory and JSON has no NaN.
type MarkerRecord struct {
	ID         string     `json:"id"`
	Magnitude  *float64   `json:"magnitude"`
	Place      string     `json:"place"`
	Geo        Geo        `json:"geo"`
	Depth      float64    `json:"depth_km"`
	Time       *time.Time `json:"time,omitempty"`
	URL        string     `json:"url,omitempty"`
	Style      StyleSpec  `json:"style"`
	Popup      string     `json:"popup"`
	Bin        int        `json:"bin"`
	RenderID   string     `json:"render_id"`
	RenderedAt time.Time  `json:"rendered_at"`
}

// NewMarkerRecord flattens a marker for publishing. All markers from one
// render share renderID and renderedAt.
func NewMarkerRecord(m Marker, renderID string, renderedAt time.Time) MarkerRecord {
	f := m.Feature
	rec := MarkerRecord{
		ID:         f.ID,
		Place:      f.Place,
		Geo:        f.Geo,
		Depth:      f.Depth,
		URL:        f.URL,
		Style:      m.Style,
		Popup:      m.Popup,
		Bin:        BinIndex(f.Magnitude),
		RenderID:   renderID,
		RenderedAt: renderedAt,
	}
	if f.HasMagnitude() {
		mag := f.Magnitude
		rec.Magnitude = &mag
	}
	if !f.Time.IsZero() {
		t := f.Time
		rec.Time = &t
	}
	return rec
}
