package domain

import "time"

const (
	// DefaultRecencyYears is the default lookback window.
	DefaultRecencyYears = 15

	// daysPerYear is deliberately calendar-naive.
	daysPerYear = 365
)

// RecencyCutoff returns now minus years × 365 days.
func RecencyCutoff(now time.Time, years int) time.Time {
	return now.AddDate(0, 0, -years*daysPerYear)
}

// FilterRecent drops observations strictly older than cutoff and then drops
// tracks left empty. The input slice is not modified.
func FilterRecent(tracks []Track, cutoff time.Time) (kept []Track, expiredObs, expiredTracks int) {
	kept = make([]Track, 0, len(tracks))
	for _, t := range tracks {
		obs := make([]Observation, 0, len(t.Observations))
		for _, o := range t.Observations {
			if o.Time.Before(cutoff) {
				expiredObs++
				continue
			}
			obs = append(obs, o)
		}
		if len(obs) == 0 {
			expiredTracks++
			continue
		}
		t.Observations = obs
		kept = append(kept, t)
	}
	return kept, expiredObs, expiredTracks
}
