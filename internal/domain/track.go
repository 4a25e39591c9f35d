package domain

import "time"

// Quadrants holds one wind-radius threshold split by compass quadrant (nm).
type Quadrants struct {
	NE float64 `json:"ne"`
	SE float64 `json:"se"`
	SW float64 `json:"sw"`
	NW float64 `json:"nw"`
}

func (q Quadrants) max() float64 {
	return max(q.NE, q.SE, q.SW, q.NW)
}

// WindRadii is the full wind-extent block of an observation: the maximum
// distance from the center (nm) at which 34, 50, and 64 kt winds were analyzed.
type WindRadii struct {
	Kt34 Quadrants `json:"kt34"`
	Kt50 Quadrants `json:"kt50"`
	Kt64 Quadrants `json:"kt64"`
}

// Max returns the largest of the twelve radii.
func (w WindRadii) Max() float64 {
	return max(w.Kt34.max(), w.Kt50.max(), w.Kt64.max())
}

// Observation is one best-track fix of a storm.
type Observation struct {
	StormID     string    `json:"storm_id"`
	StormName   string    `json:"storm_name"`
	Time        time.Time `json:"time"`
	RecordType  string    `json:"record_type,omitempty"` // e.g. "L" for landfall
	Status      string    `json:"status"`                // e.g. "HU", "TS", "EX"
	Lat         float64   `json:"lat"`
	Lon         float64   `json:"lon"`
	MaxWind     float64   `json:"max_wind"`     // kt
	MinPressure float64   `json:"min_pressure"` // mb
	WindRadii   WindRadii `json:"wind_radii"`

	// RadiusMaxWind is only present in releases after 2021; zero otherwise.
	RadiusMaxWind float64 `json:"radius_max_wind,omitempty"`

	// InfluenceRadiusKm is derived by AttachRadii, never parsed.
	InfluenceRadiusKm float64 `json:"influence_radius_km"`
}

// Track is the ordered sequence of observations for one storm.
type Track struct {
	ID            string        `json:"id"`
	Name          string        `json:"name"`
	DeclaredCount int           `json:"declared_count"`
	Observations  []Observation `json:"observations"`
}

// LatestTime returns the time of the most recent observation, or zero for an
// empty track.
func (t Track) LatestTime() time.Time {
	var latest time.Time
	for i := range t.Observations {
		if t.Observations[i].Time.After(latest) {
			latest = t.Observations[i].Time
		}
	}
	return latest
}

// ParseStats counts what the parser kept and skipped.
type ParseStats struct {
	Lines               int `json:"lines"`
	TracksParsed        int `json:"tracks_parsed"`
	TracksDiscarded     int `json:"tracks_discarded"`
	ObservationsParsed  int `json:"observations_parsed"`
	ObservationsSkipped int `json:"observations_skipped"`
}

// LoadStats summarizes one dataset build.
type LoadStats struct {
	ParseStats
	ObservationsExpired  int       `json:"observations_expired"`
	TracksExpired        int       `json:"tracks_expired"`
	TracksRetained       int       `json:"tracks_retained"`
	ObservationsRetained int       `json:"observations_retained"`
	Cutoff               time.Time `json:"cutoff"`
}
