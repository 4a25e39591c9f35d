package domain

import (
	"bufio"
	"errors"
	"fmt"
	"io"
	"math"
	"strconv"
	"strings"
	"time"
)

const (
	// MinTrackObservations is the smallest declared count for which a track
	// is kept. Fewer fixes do not give a reliable extent estimate.
	MinTrackObservations = 4

	// headerMaxFields: a line with fewer fields than this is a header.
	headerMaxFields = 5

	// observationFields is the number of fields every observation must carry:
	// 8 positional values plus 12 wind radii.
	observationFields = 20

	dateLayout  = "20060102"
	clockLayout = "1504"
	maxLineSize = 1 << 20
)

// Field names reported in ParseError.
const (
	FieldStormID       = "storm_id"
	FieldStormName     = "storm_name"
	FieldDeclaredCount = "declared_count"
	FieldDate          = "date"
	FieldTime          = "time"
	FieldLatitude      = "latitude"
	FieldLongitude     = "longitude"
	FieldMaxWind       = "max_wind"
	FieldMinPressure   = "min_pressure"
	FieldRadiusMaxWind = "radius_max_wind"
	FieldFieldCount    = "field_count"
)

// numericFields names the columns after the coordinates, in file order.
var numericFields = [14]string{
	FieldMaxWind, FieldMinPressure,
	"radius_34kt_ne", "radius_34kt_se", "radius_34kt_sw", "radius_34kt_nw",
	"radius_50kt_ne", "radius_50kt_se", "radius_50kt_sw", "radius_50kt_nw",
	"radius_64kt_ne", "radius_64kt_se", "radius_64kt_sw", "radius_64kt_nw",
}

var (
	errNotNumeric   = errors.New("not numeric")
	errHemisphere   = errors.New("missing or invalid hemisphere suffix")
	errOutOfRange   = errors.New("out of range")
	errNoHeader     = errors.New("observation before any header")
	errShortHeader  = errors.New("header has fewer than 3 fields")
	errTooFewFields = errors.New("too few fields for an observation")
)

// ParseError reports a malformed line. It aborts the whole file.
type ParseError struct {
	Line  int
	Field string
	Value string
	Err   error
}

func (e *ParseError) Error() string {
	return fmt.Sprintf("line %d: field %s: invalid value %q: %v", e.Line, e.Field, e.Value, e.Err)
}

func (e *ParseError) Unwrap() error { return e.Err }

// ParseTracks reads HURDAT2 text and groups observations into tracks.
//
// Tracks with a declared count below MinTrackObservations are discarded and
// their observation lines are skipped unparsed. On the first malformed line
// parsing stops with a *ParseError; the tracks read so far, including the
// valid observations of the track in progress, are returned alongside it.
func ParseTracks(r io.Reader) ([]Track, ParseStats, error) {
	var (
		tracks  []Track
		stats   ParseStats
		current *Track
		skip    bool
		seen    bool
	)

	flush := func() {
		if current != nil {
			tracks = append(tracks, *current)
			current = nil
		}
	}

	scanner := bufio.NewScanner(r)
	scanner.Buffer(make([]byte, 0, 64*1024), maxLineSize)

	lineNo := 0
	for scanner.Scan() {
		lineNo++
		line := strings.TrimSpace(scanner.Text())
		if line == "" {
			continue
		}
		stats.Lines++

		fields := splitFields(line)
		if len(fields) < headerMaxFields {
			flush()
			seen = true
			track, err := parseHeader(lineNo, fields)
			if err != nil {
				return tracks, stats, err
			}
			if track.DeclaredCount < MinTrackObservations {
				skip = true
				stats.TracksDiscarded++
				continue
			}
			skip = false
			stats.TracksParsed++
			current = &track
			continue
		}

		if !seen {
			return tracks, stats, &ParseError{Line: lineNo, Field: FieldStormID, Value: fields[0], Err: errNoHeader}
		}
		if skip {
			stats.ObservationsSkipped++
			continue
		}

		obs, err := parseObservation(lineNo, fields)
		if err != nil {
			if len(current.Observations) > 0 {
				flush()
			}
			return tracks, stats, err
		}
		obs.StormID = current.ID
		obs.StormName = current.Name
		current.Observations = append(current.Observations, obs)
		stats.ObservationsParsed++
	}
	if err := scanner.Err(); err != nil {
		return tracks, stats, fmt.Errorf("read tracks: %w", err)
	}

	flush()
	return tracks, stats, nil
}

func splitFields(line string) []string {
	fields := strings.Split(line, ",")
	for i := range fields {
		fields[i] = strings.TrimSpace(fields[i])
	}
	return fields
}

func parseHeader(lineNo int, fields []string) (Track, error) {
	if len(fields) < 3 {
		return Track{}, &ParseError{Line: lineNo, Field: FieldDeclaredCount, Value: strings.Join(fields, ","), Err: errShortHeader}
	}
	count, err := strconv.Atoi(fields[2])
	if err != nil {
		return Track{}, &ParseError{Line: lineNo, Field: FieldDeclaredCount, Value: fields[2], Err: errNotNumeric}
	}
	return Track{
		ID:            fields[0],
		Name:          fields[1],
		DeclaredCount: count,
	}, nil
}

func parseObservation(lineNo int, f []string) (Observation, error) {
	if len(f) < observationFields {
		return Observation{}, &ParseError{Line: lineNo, Field: FieldFieldCount, Value: strconv.Itoa(len(f)), Err: errTooFewFields}
	}

	date, err := time.Parse(dateLayout, f[0])
	if err != nil {
		return Observation{}, &ParseError{Line: lineNo, Field: FieldDate, Value: f[0], Err: err}
	}
	clock, err := time.Parse(clockLayout, f[1])
	if err != nil {
		return Observation{}, &ParseError{Line: lineNo, Field: FieldTime, Value: f[1], Err: err}
	}
	ts := date.Add(time.Duration(clock.Hour())*time.Hour + time.Duration(clock.Minute())*time.Minute)

	lat, err := DecodeLatitude(f[4])
	if err != nil {
		return Observation{}, &ParseError{Line: lineNo, Field: FieldLatitude, Value: f[4], Err: err}
	}
	lon, err := DecodeLongitude(f[5])
	if err != nil {
		return Observation{}, &ParseError{Line: lineNo, Field: FieldLongitude, Value: f[5], Err: err}
	}

	var nums [14]float64
	for i, name := range numericFields {
		v, err := parseNumber(f[6+i])
		if err != nil {
			return Observation{}, &ParseError{Line: lineNo, Field: name, Value: f[6+i], Err: err}
		}
		nums[i] = v
	}

	obs := Observation{
		Time:        ts.UTC(),
		RecordType:  f[2],
		Status:      f[3],
		Lat:         lat,
		Lon:         lon,
		MaxWind:     nums[0],
		MinPressure: nums[1],
		WindRadii: WindRadii{
			Kt34: Quadrants{NE: nums[2], SE: nums[3], SW: nums[4], NW: nums[5]},
			Kt50: Quadrants{NE: nums[6], SE: nums[7], SW: nums[8], NW: nums[9]},
			Kt64: Quadrants{NE: nums[10], SE: nums[11], SW: nums[12], NW: nums[13]},
		},
	}

	if len(f) > observationFields && f[observationFields] != "" {
		rmw, err := parseNumber(f[observationFields])
		if err != nil {
			return Observation{}, &ParseError{Line: lineNo, Field: FieldRadiusMaxWind, Value: f[observationFields], Err: err}
		}
		if rmw > 0 {
			obs.RadiusMaxWind = rmw
		}
	}

	return obs, nil
}

// DecodeLatitude decodes a token such as "26.5N" into signed degrees.
func DecodeLatitude(token string) (float64, error) {
	return DecodeCoordinate(token, 'N', 'S', 90)
}

// DecodeLongitude decodes a token such as "80.04W" into signed degrees.
func DecodeLongitude(token string) (float64, error) {
	return DecodeCoordinate(token, 'E', 'W', 180)
}

// DecodeCoordinate converts a hemisphere-suffixed token such as "26.5N" or
// "80.04W" into signed degrees. pos and neg are the accepted suffixes; the
// magnitude must not exceed limit.
func DecodeCoordinate(token string, pos, neg byte, limit float64) (float64, error) {
	if len(token) < 2 {
		return 0, errHemisphere
	}
	suffix := token[len(token)-1]
	if suffix != pos && suffix != neg {
		return 0, errHemisphere
	}
	v, err := parseNumber(strings.TrimSpace(token[:len(token)-1]))
	if err != nil {
		return 0, errNotNumeric
	}
	if v < 0 || v > limit {
		return 0, errOutOfRange
	}
	if suffix == neg {
		v = -v
	}
	return v, nil
}

func parseNumber(s string) (float64, error) {
	v, err := strconv.ParseFloat(s, 64)
	if err != nil || math.IsNaN(v) || math.IsInf(v, 0) {
		return 0, errNotNumeric
	}
	return v, nil
}
