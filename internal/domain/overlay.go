package domain

// OverlayPoint is one circle of the rendered footprint. Field names follow the
// map client's wire format.
type OverlayPoint struct {
	Lat      float64 `json:"lat"`
	Lon      float64 `json:"lng"`
	RadiusKm float64 `json:"r"`
	Wind     float64 `json:"speed"`
}

// StormOverlay is the rendering payload of one ranked storm.
type StormOverlay struct {
	ID       string         `json:"id"`
	Name     string         `json:"name"`
	MaxSpeed float64        `json:"maxSpeed"`
	Color    string         `json:"color"`
	Rank     int            `json:"rank"`
	Points   []OverlayPoint `json:"points"`
}

// Overlay is the rendering payload of a ranked result, in rank order.
type Overlay struct {
	Query  Geo            `json:"query"`
	Policy RankPolicy     `json:"policy"`
	Storms []StormOverlay `json:"storms"`
}

// BuildOverlay maps a ranked result onto its rendering payload.
func BuildOverlay(result RankedResult) Overlay {
	storms := make([]StormOverlay, len(result.Storms))
	for i, s := range result.Storms {
		points := make([]OverlayPoint, len(s.Points))
		for j, p := range s.Points {
			points[j] = OverlayPoint{Lat: p.Lat, Lon: p.Lon, RadiusKm: p.RadiusKm, Wind: p.Wind}
		}
		storms[i] = StormOverlay{
			ID:       s.ID,
			Name:     s.Name,
			MaxSpeed: s.MaxWind,
			Color:    s.Color,
			Rank:     s.Rank,
			Points:   points,
		}
	}
	return Overlay{Query: result.Query, Policy: result.Policy, Storms: storms}
}

// ByID keys the overlay by storm ID, the shape served by /find_hurricanes.
func (o Overlay) ByID() map[string]StormOverlay {
	m := make(map[string]StormOverlay, len(o.Storms))
	for _, s := range o.Storms {
		m[s.ID] = s
	}
	return m
}
