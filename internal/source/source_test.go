package source

import (
	"bytes"
	"context"
	"errors"
	"io"
	"log/slog"
	"net/http"
	"net/http/httptest"
	"os"
	"path/filepath"
	"sync/atomic"
	"testing"
	"time"

	"github.com/aws/aws-sdk-go-v2/service/s3"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

const testPayload = "AL092022,                IAN,      6,\n"

func discardLogger() *slog.Logger {
	return slog.New(slog.NewTextHandler(io.Discard, nil))
}

func readAll(t *testing.T, rc io.ReadCloser) string {
	t.Helper()
	defer rc.Close()
	data, err := io.ReadAll(rc)
	require.NoError(t, err)
	return string(data)
}

func testHTTPSource(url string) *HTTPSource {
	s := NewHTTPSource(url, 5*time.Second, discardLogger())
	s.initialInterval = time.Millisecond
	return s
}

func TestNew_SelectsByScheme(t *testing.T) {
	ctx := context.Background()

	src, err := New(ctx, "data/hurdat2.txt", time.Second, discardLogger())
	require.NoError(t, err)
	assert.IsType(t, &FileSource{}, src)
	assert.Equal(t, "file:data/hurdat2.txt", src.String())

	src, err = New(ctx, "file:///var/lib/hurdat2.txt", time.Second, discardLogger())
	require.NoError(t, err)
	assert.Equal(t, "file:/var/lib/hurdat2.txt", src.String())

	src, err = New(ctx, "https://www.nhc.noaa.gov/data/hurdat/hurdat2.txt", time.Second, discardLogger())
	require.NoError(t, err)
	assert.IsType(t, &HTTPSource{}, src)
}

func TestNew_Errors(t *testing.T) {
	ctx := context.Background()

	_, err := New(ctx, "ftp://example.com/hurdat2.txt", time.Second, discardLogger())
	require.Error(t, err)
	assert.Contains(t, err.Error(), "unsupported scheme")

	_, err = New(ctx, "s3://bucket-only", time.Second, discardLogger())
	require.Error(t, err)
	assert.Contains(t, err.Error(), "bucket and key")
}

func TestFileSource_Open(t *testing.T) {
	path := filepath.Join(t.TempDir(), "hurdat2.txt")
	require.NoError(t, os.WriteFile(path, []byte(testPayload), 0o600))

	rc, err := NewFileSource(path).Open(context.Background())
	require.NoError(t, err)
	assert.Equal(t, testPayload, readAll(t, rc))
}

func TestFileSource_Missing(t *testing.T) {
	_, err := NewFileSource(filepath.Join(t.TempDir(), "missing.txt")).Open(context.Background())
	require.Error(t, err)
	assert.ErrorIs(t, err, os.ErrNotExist)
}

func TestHTTPSource_Success(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		assert.Equal(t, http.MethodGet, r.Method)
		_, _ = w.Write([]byte(testPayload))
	}))
	defer srv.Close()

	rc, err := testHTTPSource(srv.URL).Open(context.Background())
	require.NoError(t, err)
	assert.Equal(t, testPayload, readAll(t, rc))
}

func TestHTTPSource_RetriesServerErrors(t *testing.T) {
	var calls atomic.Int32
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, _ *http.Request) {
		if calls.Add(1) < 3 {
			w.WriteHeader(http.StatusServiceUnavailable)
			return
		}
		_, _ = w.Write([]byte(testPayload))
	}))
	defer srv.Close()

	rc, err := testHTTPSource(srv.URL).Open(context.Background())
	require.NoError(t, err)
	assert.Equal(t, testPayload, readAll(t, rc))
	assert.Equal(t, int32(3), calls.Load())
}

func TestHTTPSource_ClientErrorIsPermanent(t *testing.T) {
	var calls atomic.Int32
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, _ *http.Request) {
		calls.Add(1)
		w.WriteHeader(http.StatusNotFound)
		_, _ = w.Write([]byte("no such file"))
	}))
	defer srv.Close()

	_, err := testHTTPSource(srv.URL).Open(context.Background())
	require.Error(t, err)
	assert.Contains(t, err.Error(), "404")
	assert.Equal(t, int32(1), calls.Load())
}

func TestHTTPSource_GivesUpAfterMaxRetries(t *testing.T) {
	var calls atomic.Int32
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, _ *http.Request) {
		calls.Add(1)
		w.WriteHeader(http.StatusBadGateway)
	}))
	defer srv.Close()

	_, err := testHTTPSource(srv.URL).Open(context.Background())
	require.Error(t, err)
	assert.Contains(t, err.Error(), "502")
	assert.Equal(t, int32(defaultMaxRetries+1), calls.Load())
}

// --- S3 ---

type mockS3Client struct {
	body  string
	err   error
	input *s3.GetObjectInput
}

func (m *mockS3Client) GetObject(_ context.Context, params *s3.GetObjectInput, _ ...func(*s3.Options)) (*s3.GetObjectOutput, error) {
	m.input = params
	if m.err != nil {
		return nil, m.err
	}
	return &s3.GetObjectOutput{Body: io.NopCloser(bytes.NewBufferString(m.body))}, nil
}

func TestS3Source_Open(t *testing.T) {
	client := &mockS3Client{body: testPayload}
	src := NewS3Source(client, "noaa-archive", "hurdat2/atlantic.txt")

	rc, err := src.Open(context.Background())
	require.NoError(t, err)
	assert.Equal(t, testPayload, readAll(t, rc))
	assert.Equal(t, "noaa-archive", *client.input.Bucket)
	assert.Equal(t, "hurdat2/atlantic.txt", *client.input.Key)
	assert.Equal(t, "s3://noaa-archive/hurdat2/atlantic.txt", src.String())
}

func TestS3Source_Error(t *testing.T) {
	client := &mockS3Client{err: errors.New("access denied")}

	_, err := NewS3Source(client, "noaa-archive", "hurdat2.txt").Open(context.Background())
	require.Error(t, err)
	assert.Contains(t, err.Error(), "access denied")
}
