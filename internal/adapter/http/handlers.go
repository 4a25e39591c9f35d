package http

import (
	"encoding/json"
	"errors"
	"fmt"
	"net/http"
	"strconv"

	"github.com/couchcryptid/storm-track-service/internal/domain"
	"github.com/couchcryptid/storm-track-service/internal/engine"
	sharedobs "github.com/couchcryptid/storm-data-shared/observability"
)

const maxRequestBody = 1 << 10

// findRequest is the body of POST /find_hurricanes. Longitude is "lng" to
// match the map client.
type findRequest struct {
	Lat *float64 `json:"lat"`
	Lng *float64 `json:"lng"`
}

// handleFindHurricanes returns the overlay keyed by storm ID. An empty object
// means no storm passed over the point.
func (s *Server) handleFindHurricanes(w http.ResponseWriter, r *http.Request) {
	r.Body = http.MaxBytesReader(w, r.Body, maxRequestBody)

	var req findRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		writeError(w, http.StatusBadRequest, "invalid JSON body")
		return
	}
	if req.Lat == nil || req.Lng == nil {
		writeError(w, http.StatusBadRequest, "lat and lng are required")
		return
	}

	p := domain.Geo{Lat: *req.Lat, Lon: *req.Lng}
	if !p.Valid() {
		writeError(w, http.StatusBadRequest, "lat must be within [-90, 90] and lng within [-180, 180]")
		return
	}

	overlay := domain.BuildOverlay(s.engine.Query(p.Lat, p.Lon))
	sharedobs.WriteJSON(w, http.StatusOK, overlay.ByID())
}

// handleStorms returns the overlay in rank order.
func (s *Server) handleStorms(w http.ResponseWriter, r *http.Request) {
	q := r.URL.Query()
	lat, err := parseCoordinate(q.Get("lat"), "lat")
	if err != nil {
		writeError(w, http.StatusBadRequest, err.Error())
		return
	}
	lon, err := parseCoordinate(q.Get("lon"), "lon")
	if err != nil {
		writeError(w, http.StatusBadRequest, err.Error())
		return
	}

	p := domain.Geo{Lat: lat, Lon: lon}
	if !p.Valid() {
		writeError(w, http.StatusBadRequest, "lat must be within [-90, 90] and lon within [-180, 180]")
		return
	}

	sharedobs.WriteJSON(w, http.StatusOK, domain.BuildOverlay(s.engine.Query(p.Lat, p.Lon)))
}

func parseCoordinate(s, name string) (float64, error) {
	if s == "" {
		return 0, fmt.Errorf("%s is required", name)
	}
	v, err := strconv.ParseFloat(s, 64)
	if err != nil {
		return 0, fmt.Errorf("%s must be a number", name)
	}
	return v, nil
}

// handleReload forces a reload. The previous snapshot keeps serving when it fails.
func (s *Server) handleReload(w http.ResponseWriter, r *http.Request) {
	stats, err := s.engine.Load(r.Context())
	if err == nil {
		sharedobs.WriteJSON(w, http.StatusOK, stats)
		return
	}

	var perr *domain.ParseError
	switch {
	case errors.As(err, &perr):
		sharedobs.WriteJSON(w, http.StatusUnprocessableEntity, errorResponse{
			Error: err.Error(),
			Line:  perr.Line,
			Field: perr.Field,
		})
	case errors.Is(err, engine.ErrSource):
		writeError(w, http.StatusBadGateway, err.Error())
	default:
		s.logger.Error("reload failed", "error", err)
		writeError(w, http.StatusInternalServerError, "reload failed")
	}
}
