package source

import (
	"context"
	"fmt"
	"io"
	"log/slog"
	"net/http"
	"time"

	"github.com/cenkalti/backoff/v4"
)

const (
	defaultMaxRetries      = 3
	defaultInitialInterval = 500 * time.Millisecond
)

// HTTPSource downloads the track file, retrying transient failures with
// exponential backoff.
type HTTPSource struct {
	url             string
	httpClient      *http.Client
	logger          *slog.Logger
	maxRetries      uint64
	initialInterval time.Duration
}

// NewHTTPSource creates an HTTPSource. timeout bounds each attempt, body
// included.
func NewHTTPSource(rawURL string, timeout time.Duration, logger *slog.Logger) *HTTPSource {
	return &HTTPSource{
		url:             rawURL,
		httpClient:      newHTTPClient(timeout),
		logger:          logger,
		maxRetries:      defaultMaxRetries,
		initialInterval: defaultInitialInterval,
	}
}

func newHTTPClient(timeout time.Duration) *http.Client {
	return &http.Client{Timeout: timeout}
}

func (s *HTTPSource) Open(ctx context.Context) (io.ReadCloser, error) {
	var body io.ReadCloser

	operation := func() error {
		req, err := http.NewRequestWithContext(ctx, http.MethodGet, s.url, nil)
		if err != nil {
			return backoff.Permanent(fmt.Errorf("create request: %w", err))
		}

		resp, err := s.httpClient.Do(req)
		if err != nil {
			return fmt.Errorf("fetch tracks: %w", err)
		}

		if resp.StatusCode != http.StatusOK {
			msg, _ := io.ReadAll(io.LimitReader(resp.Body, 512))
			resp.Body.Close()
			err := fmt.Errorf("track source error: status %d: %s", resp.StatusCode, msg)
			if resp.StatusCode >= 400 && resp.StatusCode < 500 && resp.StatusCode != http.StatusTooManyRequests {
				return backoff.Permanent(err)
			}
			return err
		}

		body = resp.Body
		return nil
	}

	policy := backoff.NewExponentialBackOff()
	policy.InitialInterval = s.initialInterval
	retry := backoff.WithContext(backoff.WithMaxRetries(policy, s.maxRetries), ctx)

	notify := func(err error, wait time.Duration) {
		s.logger.Warn("track fetch failed, retrying", "url", s.url, "error", err, "backoff", wait)
	}

	if err := backoff.RetryNotify(operation, retry, notify); err != nil {
		return nil, err
	}
	return body, nil
}

func (s *HTTPSource) String() string { return s.url }
