// Package domain models historical tropical cyclone tracks and the spatial
// exposure queries answered over them.
//
// # Data Source
//
// Tracks come from the NOAA National Hurricane Center best-track archive
// (HURDAT2), published at https://www.nhc.noaa.gov/data/#hurdat. The file is a
// plain comma-separated text format with two kinds of lines.
//
// # HURDAT2 Conventions
//
// Header lines introduce a storm and carry fewer than five fields:
//
//	AL092004,            IVAN,     69,
//	  identifier (basin, number, year), name, declared observation count
//
// Observation lines follow their header and carry at least twenty fields:
//
//	20040913, 1800,  , HU, 24.2N,  86.2W, 140,  914, 200, 160, 120, 150,  ...
//	  date, time, record type, status, latitude, longitude, max wind (kt),
//	  min pressure (mb), then twelve wind radii (nm):
//	  34 kt NE/SE/SW/NW, 50 kt NE/SE/SW/NW, 64 kt NE/SE/SW/NW.
//	Newer releases append the radius of maximum wind (nm) as a 21st field.
//
// Coordinates carry a hemisphere suffix: "26.5N" is +26.5, "80.0W" is -80.0.
// Missing numeric values use the sentinel -999 (-99 for some early winds).
//
// Short tracks:
//
//	Tracks whose declared count is below [MinTrackObservations] are discarded
//	while parsing. Their observation lines are skipped without being parsed.
//
// # Influence Radius
//
// Each observation is assigned one circular footprint derived from the
// largest reported wind radius across all thresholds and quadrants. When no
// radius of at least [MinReportedRadiusNM] is reported, [FallbackRadiusNM] is
// used so the fix still participates in queries. Nautical miles are converted
// with [KmPerNauticalMile].
//
// # Recency
//
// Only observations newer than now minus N years are retained, where a year
// is exactly 365 days. The approximation is intentional and drifts by a few
// days over a fifteen-year window.
//
// # Ranking
//
// Storms with at least one hit are ranked closest-first and truncated to
// [TopK]. Colors come from a fixed palette indexed by rank. An alternate
// policy ranks by maximum wind and colors by absolute intensity tier.
package domain
