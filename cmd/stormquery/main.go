// Command stormquery loads a HURDAT2 file and prints the ranked storm overlay
// for one point as JSON.
//
// Usage:
//
//	go run ./cmd/stormquery \
//	  -source data/hurdat2.txt \
//	  -lat 27.95 -lon -82.45 \
//	  -now 2024-10-01
package main

import (
	"context"
	"encoding/json"
	"errors"
	"flag"
	"fmt"
	"io"
	"log/slog"
	"os"
	"time"

	"github.com/couchcryptid/storm-track-service/internal/domain"
	"github.com/couchcryptid/storm-track-service/internal/engine"
	"github.com/couchcryptid/storm-track-service/internal/observability"
	"github.com/couchcryptid/storm-track-service/internal/source"
	"github.com/jonboulle/clockwork"
)

func main() {
	os.Exit(run(os.Args[1:], os.Stdout, os.Stderr))
}

func run(args []string, stdout, stderr io.Writer) int {
	fs := flag.NewFlagSet("stormquery", flag.ContinueOnError)
	fs.SetOutput(stderr)

	location := fs.String("source", "data/hurdat2.txt", "track file path, http(s):// URL or s3://bucket/key")
	lat := fs.Float64("lat", 0, "query latitude in degrees")
	lon := fs.Float64("lon", 0, "query longitude in degrees")
	years := fs.Int("years", domain.DefaultRecencyYears, "recency window in 365-day years")
	policyName := fs.String("policy", string(domain.RankByDistance), "ranking policy: distance or wind")
	nowFlag := fs.String("now", "", "reference time, RFC 3339 or YYYY-MM-DD (default: current time)")
	keyed := fs.Bool("keyed", false, "print storms keyed by ID instead of in rank order")
	timeout := fs.Duration("timeout", 30*time.Second, "fetch timeout for remote sources")
	if err := fs.Parse(args); err != nil {
		return 2
	}

	if !isSet(fs, "lat") || !isSet(fs, "lon") {
		fmt.Fprintln(stderr, "stormquery: -lat and -lon are required")
		fs.Usage()
		return 2
	}
	if !(domain.Geo{Lat: *lat, Lon: *lon}).Valid() {
		fmt.Fprintln(stderr, "stormquery: -lat must be within [-90, 90] and -lon within [-180, 180]")
		return 2
	}
	if *years < 1 {
		fmt.Fprintln(stderr, "stormquery: -years must be positive")
		return 2
	}
	policy, err := domain.ParseRankPolicy(*policyName)
	if err != nil {
		fmt.Fprintf(stderr, "stormquery: %v\n", err)
		return 2
	}
	now, err := parseNow(*nowFlag)
	if err != nil {
		fmt.Fprintf(stderr, "stormquery: %v\n", err)
		return 2
	}

	logger := slog.New(slog.NewTextHandler(stderr, &slog.HandlerOptions{Level: slog.LevelWarn}))
	ctx := context.Background()

	src, err := source.New(ctx, *location, *timeout, logger)
	if err != nil {
		fmt.Fprintf(stderr, "stormquery: %v\n", err)
		return 1
	}

	eng := engine.New(src, logger, observability.NewUnregisteredMetrics(),
		engine.WithClock(clockwork.NewFakeClockAt(now)),
		engine.WithRecencyYears(*years),
		engine.WithPolicy(policy),
	)
	if _, err := eng.Load(ctx); err != nil {
		var perr *domain.ParseError
		if errors.As(err, &perr) {
			fmt.Fprintf(stderr, "stormquery: invalid track data: %v\n", err)
		} else {
			fmt.Fprintf(stderr, "stormquery: %v\n", err)
		}
		return 1
	}

	overlay := domain.BuildOverlay(eng.Query(*lat, *lon))
	var out any = overlay
	if *keyed {
		out = overlay.ByID()
	}

	enc := json.NewEncoder(stdout)
	enc.SetIndent("", "  ")
	if err := enc.Encode(out); err != nil {
		fmt.Fprintf(stderr, "stormquery: write output: %v\n", err)
		return 1
	}
	return 0
}

func parseNow(s string) (time.Time, error) {
	if s == "" {
		return time.Now().UTC(), nil
	}
	if t, err := time.Parse(time.RFC3339, s); err == nil {
		return t, nil
	}
	t, err := time.Parse(time.DateOnly, s)
	if err != nil {
		return time.Time{}, fmt.Errorf("invalid -now %q: want RFC 3339 or YYYY-MM-DD", s)
	}
	return t, nil
}

func isSet(fs *flag.FlagSet, name string) bool {
	found := false
	fs.Visit(func(f *flag.Flag) {
		if f.Name == name {
			found = true
		}
	})
	return found
}
