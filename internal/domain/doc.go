// Package domain models USGS earthquake summary data and its visual encoding.
//
// # Data Source
//
// Earthquake summaries come from the USGS real-time GeoJSON feeds at
// https://earthquake.usgs.gov/earthquakes/feed/v1.0/summary/. Four feeds are
// published, differing only by time window (hour, day, week, month); see
// [FeedWindow]. Each feature carries:
//
//	properties.mag    magnitude, a real number (may be null)
//	properties.place  human-readable location, e.g. "10km N of Testville"
//	properties.time   origin time in epoch milliseconds
//	geometry          Point with coordinates [lon, lat, depth_km]
//
// Tectonic plate boundaries come from the PB2002 dataset
// (https://github.com/fraxen/tectonicplates) as LineString features.
//
// # Visual Encoding
//
// Magnitude drives both marker color and marker radius. Color is a step
// function with strict greater-than thresholds evaluated from the highest bin
// down:
//
//	> 5  #FF0000  bright red
//	> 4  #FF7F00  orange
//	> 3  #FFFF00  yellow
//	> 2  #00FF00  bright green
//	> 1  #008B00  dark green
//	else #DEDEDE  gray
//
// A boundary value belongs to the lower bin: magnitude 5.0 is orange.
//
// Radius has two policies, see [RadiusPolicy]. The dense policy, (2m)^1.5,
// suits a regional view at zoom 5. The wide policy, m^2, suits a world view
// at zoom 2.5 where the dense curve exaggerates large events.
//
// # Degenerate Magnitudes
//
// A missing magnitude is carried as NaN. NaN fails every threshold comparison
// and lands in the gray bin. Both radius policies return [MinRadius] for NaN
// and for magnitudes at or below zero, so every marker stays visible and the
// dense policy never raises a negative base to a fractional power.
//
// Magnitudes too large for the radius to be represented (an infinite
// magnitude, or a finite one whose square overflows) also get [MinRadius].
// Non-finite magnitudes are published and served as null, since JSON has no
// encoding for them.
package domain
