// Package source opens the HURDAT2 text from local disk, HTTP, or S3.
package source

import (
	"context"
	"fmt"
	"io"
	"log/slog"
	"net/url"
	"strings"
	"time"

	awsconfig "github.com/aws/aws-sdk-go-v2/config"
	"github.com/aws/aws-sdk-go-v2/service/s3"
)

// Source yields a fresh reader over the track file on every Open.
type Source interface {
	Open(ctx context.Context) (io.ReadCloser, error)
	String() string
}

// New selects a Source from a location: a plain path or file:// URL, an
// http(s):// URL, or s3://bucket/key. Remote sources honor timeout.
func New(ctx context.Context, location string, timeout time.Duration, logger *slog.Logger) (Source, error) {
	u, err := url.Parse(location)
	if err != nil {
		return nil, fmt.Errorf("parse track source %q: %w", location, err)
	}

	switch strings.ToLower(u.Scheme) {
	case "", "file":
		path := location
		if u.Scheme != "" {
			path = u.Path
		}
		return NewFileSource(path), nil
	case "http", "https":
		return NewHTTPSource(location, timeout, logger), nil
	case "s3":
		bucket, key := u.Host, strings.TrimPrefix(u.Path, "/")
		if bucket == "" || key == "" {
			return nil, fmt.Errorf("track source %q: s3 location needs bucket and key", location)
		}
		awsCfg, err := awsconfig.LoadDefaultConfig(ctx)
		if err != nil {
			return nil, fmt.Errorf("load aws config: %w", err)
		}
		client := s3.NewFromConfig(awsCfg, func(o *s3.Options) {
			o.HTTPClient = newHTTPClient(timeout)
		})
		return NewS3Source(client, bucket, key), nil
	default:
		return nil, fmt.Errorf("track source %q: unsupported scheme %q", location, u.Scheme)
	}
}
