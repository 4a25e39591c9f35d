package domain

import (
	"io"
	"time"
)

// Dataset is an immutable snapshot of the retained tracks. Queries only read
// from it; a reload builds a new Dataset.
type Dataset struct {
	Tracks   []Track
	LoadedAt time.Time
	Stats    LoadStats

	// index maps a storm ID to its positions in Tracks. HURDAT2 IDs are
	// unique in practice, but a repeated ID is merged rather than dropped.
	index map[string][]int
}

// NewDataset builds a Dataset over tracks that already carry influence radii
// and have been recency filtered.
func NewDataset(tracks []Track, loadedAt time.Time, stats LoadStats) *Dataset {
	ds := &Dataset{
		Tracks:   tracks,
		LoadedAt: loadedAt,
		Stats:    stats,
		index:    make(map[string][]int, len(tracks)),
	}
	for i := range tracks {
		ds.index[tracks[i].ID] = append(ds.index[tracks[i].ID], i)
	}
	ds.Stats.TracksRetained = len(tracks)
	ds.Stats.ObservationsRetained = ds.ObservationCount()
	return ds
}

// LoadDataset parses HURDAT2 text, derives influence radii, and keeps the
// observations within years × 365 days of now. Any *ParseError aborts the load.
func LoadDataset(r io.Reader, now time.Time, years int) (*Dataset, error) {
	tracks, parsed, err := ParseTracks(r)
	if err != nil {
		return nil, err
	}

	AttachRadii(tracks)

	cutoff := RecencyCutoff(now, years)
	kept, expiredObs, expiredTracks := FilterRecent(tracks, cutoff)

	return NewDataset(kept, now, LoadStats{
		ParseStats:          parsed,
		ObservationsExpired: expiredObs,
		TracksExpired:       expiredTracks,
		Cutoff:              cutoff,
	}), nil
}

// ObservationCount returns the number of retained observations.
func (d *Dataset) ObservationCount() int {
	if d == nil {
		return 0
	}
	n := 0
	for i := range d.Tracks {
		n += len(d.Tracks[i].Observations)
	}
	return n
}

// TrackPoints returns the full retained geometry of a storm in file order.
func (d *Dataset) TrackPoints(stormID string) []TrackPoint {
	idx := d.index[stormID]
	var n int
	for _, i := range idx {
		n += len(d.Tracks[i].Observations)
	}
	points := make([]TrackPoint, 0, n)
	for _, i := range idx {
		for _, o := range d.Tracks[i].Observations {
			points = append(points, TrackPoint{
				Lat:      o.Lat,
				Lon:      o.Lon,
				RadiusKm: o.InfluenceRadiusKm,
				Wind:     o.MaxWind,
				Time:     o.Time,
			})
		}
	}
	return points
}
