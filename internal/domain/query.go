package domain

import (
	"fmt"
	"slices"
	"strings"
	"time"
)

// TopK is the number of storms kept in a ranked result.
const TopK = 5

// Palette colors storms by rank position, closest first.
var Palette = [TopK]string{"#343131", "#A04747", "#D8A25E", "#EEDF7A", "#E2F1E7"}

// Wind tiers used by RankByWind, in knots.
const (
	windTierRed    = 130.0
	windTierOrange = 90.0
)

// RankPolicy selects how storms are ordered and colored.
type RankPolicy string

const (
	// RankByDistance orders by closest approach and colors by rank.
	RankByDistance RankPolicy = "distance"
	// RankByWind orders by peak wind and colors by absolute intensity tier.
	RankByWind RankPolicy = "wind"
)

// ParseRankPolicy validates a policy name. Empty selects RankByDistance.
func ParseRankPolicy(s string) (RankPolicy, error) {
	switch RankPolicy(strings.ToLower(strings.TrimSpace(s))) {
	case "", RankByDistance:
		return RankByDistance, nil
	case RankByWind:
		return RankByWind, nil
	default:
		return "", fmt.Errorf("unknown rank policy %q", s)
	}
}

// QueryPoint is the location being checked for exposure.
type QueryPoint = Geo

// Hit is an observation whose influence circle contains the query point.
type Hit struct {
	Observation *Observation
	DistanceKm  float64
}

// TrackPoint is one circle of a storm's rendered footprint.
type TrackPoint struct {
	Lat      float64
	Lon      float64
	RadiusKm float64
	Wind     float64
	Time     time.Time
}

// StormSummary aggregates the hits of one storm together with its full track.
type StormSummary struct {
	ID            string
	Name          string
	MinDistanceKm float64
	MaxWind       float64
	LatestTime    time.Time
	HitCount      int
	Points        []TrackPoint
}

// RankedStorm is a StormSummary with its position and color in a result.
type RankedStorm struct {
	StormSummary
	Rank  int
	Color string
}

// RankedResult holds at most TopK storms in rank order.
type RankedResult struct {
	Query  QueryPoint
	Policy RankPolicy
	Storms []RankedStorm
}

// Empty reports whether no storm intersected the query point.
func (r RankedResult) Empty() bool { return len(r.Storms) == 0 }

// Intersect scans every retained observation and returns those whose
// influence circle contains p. The boundary is inclusive.
func Intersect(ds *Dataset, p QueryPoint) []Hit {
	if ds == nil {
		return nil
	}
	var hits []Hit
	for i := range ds.Tracks {
		obs := ds.Tracks[i].Observations
		for j := range obs {
			d := HaversineKm(obs[j].Lat, obs[j].Lon, p.Lat, p.Lon)
			if d <= obs[j].InfluenceRadiusKm {
				hits = append(hits, Hit{Observation: &obs[j], DistanceKm: d})
			}
		}
	}
	return hits
}

// Aggregate groups hits by storm ID. Geometry comes from the storm's whole
// retained track, not only the hit observations. Summaries are returned in
// storm ID order.
func Aggregate(ds *Dataset, hits []Hit) []StormSummary {
	byID := make(map[string]*StormSummary)
	for _, h := range hits {
		o := h.Observation
		s, ok := byID[o.StormID]
		if !ok {
			s = &StormSummary{
				ID:            o.StormID,
				Name:          o.StormName,
				MinDistanceKm: h.DistanceKm,
				MaxWind:       o.MaxWind,
				LatestTime:    o.Time,
			}
			byID[o.StormID] = s
		}
		s.HitCount++
		s.MinDistanceKm = min(s.MinDistanceKm, h.DistanceKm)
		s.MaxWind = max(s.MaxWind, o.MaxWind)
		if o.Time.After(s.LatestTime) {
			s.LatestTime = o.Time
		}
	}

	summaries := make([]StormSummary, 0, len(byID))
	for _, s := range byID {
		s.Points = ds.TrackPoints(s.ID)
		summaries = append(summaries, *s)
	}
	slices.SortFunc(summaries, func(a, b StormSummary) int {
		return strings.Compare(a.ID, b.ID)
	})
	return summaries
}

// Rank orders summaries by policy, truncates to TopK, and assigns colors.
// Ties are broken by storm ID ascending so results are deterministic.
func Rank(summaries []StormSummary, policy RankPolicy) []RankedStorm {
	sorted := slices.Clone(summaries)
	slices.SortStableFunc(sorted, compareFor(policy))
	if len(sorted) > TopK {
		sorted = sorted[:TopK]
	}

	ranked := make([]RankedStorm, len(sorted))
	for i, s := range sorted {
		ranked[i] = RankedStorm{
			StormSummary: s,
			Rank:         i + 1,
			Color:        colorFor(policy, i, s.MaxWind),
		}
	}
	return ranked
}

// Query runs intersection, aggregation, and ranking for one point. It never
// fails: a point with no nearby storms yields an empty result.
func Query(ds *Dataset, lat, lon float64, policy RankPolicy) RankedResult {
	p := QueryPoint{Lat: lat, Lon: lon}
	hits := Intersect(ds, p)
	result := RankedResult{Query: p, Policy: policy}
	if len(hits) == 0 {
		return result
	}
	result.Storms = Rank(Aggregate(ds, hits), policy)
	return result
}

func compareFor(policy RankPolicy) func(a, b StormSummary) int {
	byDistance := func(a, b StormSummary) int {
		switch {
		case a.MinDistanceKm < b.MinDistanceKm:
			return -1
		case a.MinDistanceKm > b.MinDistanceKm:
			return 1
		}
		return strings.Compare(a.ID, b.ID)
	}
	if policy != RankByWind {
		return byDistance
	}
	return func(a, b StormSummary) int {
		switch {
		case a.MaxWind > b.MaxWind:
			return -1
		case a.MaxWind < b.MaxWind:
			return 1
		}
		return byDistance(a, b)
	}
}

func colorFor(policy RankPolicy, rank int, maxWind float64) string {
	if policy != RankByWind {
		return Palette[rank]
	}
	switch {
	case maxWind >= windTierRed:
		return "red"
	case maxWind >= windTierOrange:
		return "orange"
	default:
		return "yellow"
	}
}
