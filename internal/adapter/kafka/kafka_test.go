package kafka

import (
	"context"
	"encoding/json"
	"errors"
	"io"
	"log/slog"
	"testing"
	"time"

	"github.com/couchcryptid/storm-track-service/internal/domain"
	kafkago "github.com/segmentio/kafka-go"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

type mockMessageWriter struct {
	msgs   []kafkago.Message
	err    error
	closed bool
}

func (m *mockMessageWriter) WriteMessages(_ context.Context, msgs ...kafkago.Message) error {
	if m.err != nil {
		return m.err
	}
	m.msgs = append(m.msgs, msgs...)
	return nil
}

func (m *mockMessageWriter) Close() error {
	m.closed = true
	return nil
}

var loadedAt = time.Date(2024, time.October, 1, 0, 0, 0, 0, time.UTC)

func testTrack(id, name string) domain.Track {
	return domain.Track{
		ID:            id,
		Name:          name,
		DeclaredCount: 4,
		Observations: []domain.Observation{{
			StormID:           id,
			StormName:         name,
			Time:              time.Date(2022, time.September, 28, 6, 0, 0, 0, time.UTC),
			Status:            "HU",
			Lat:               25.6,
			Lon:               -82.9,
			MaxWind:           135,
			InfluenceRadiusKm: 240.76,
		}},
	}
}

func testWriter(mw *mockMessageWriter) *Writer {
	return &Writer{writer: mw, logger: slog.New(slog.NewTextHandler(io.Discard, nil))}
}

func TestSerializeToMessage(t *testing.T) {
	msg, err := serializeToMessage(testTrack("AL092022", "IAN"), 7, loadedAt)
	require.NoError(t, err)

	assert.Equal(t, []byte("AL092022"), msg.Key)
	require.Len(t, msg.Headers, 3)
	assert.Equal(t, "storm_id", msg.Headers[0].Key)
	assert.Equal(t, []byte("AL092022"), msg.Headers[0].Value)
	assert.Equal(t, "generation", msg.Headers[1].Key)
	assert.Equal(t, []byte("7"), msg.Headers[1].Value)
	assert.Equal(t, "loaded_at", msg.Headers[2].Key)
	assert.Equal(t, []byte(loadedAt.Format(time.RFC3339)), msg.Headers[2].Value)

	var decoded TrackMessage
	require.NoError(t, json.Unmarshal(msg.Value, &decoded))
	assert.Equal(t, "IAN", decoded.Name)
	assert.Equal(t, uint64(7), decoded.Generation)
	require.Len(t, decoded.Observations, 1)
	assert.InDelta(t, 240.76, decoded.Observations[0].InfluenceRadiusKm, 1e-9)
	assert.Contains(t, string(msg.Value), `"max_wind":135`)
}

func TestWriter_PublishTracks(t *testing.T) {
	mw := &mockMessageWriter{}
	ds := domain.NewDataset([]domain.Track{
		testTrack("AL092022", "IAN"),
		testTrack("EP092023", "HILARY"),
	}, loadedAt, domain.LoadStats{})

	require.NoError(t, testWriter(mw).PublishTracks(context.Background(), 3, ds))

	require.Len(t, mw.msgs, 2)
	assert.Equal(t, []byte("AL092022"), mw.msgs[0].Key)
	assert.Equal(t, []byte("EP092023"), mw.msgs[1].Key)
}

func TestWriter_PublishTracks_Empty(t *testing.T) {
	mw := &mockMessageWriter{}
	w := testWriter(mw)

	require.NoError(t, w.PublishTracks(context.Background(), 1, nil))
	require.NoError(t, w.PublishTracks(context.Background(), 1, domain.NewDataset(nil, loadedAt, domain.LoadStats{})))
	assert.Empty(t, mw.msgs)
}

func TestWriter_PublishTracks_Error(t *testing.T) {
	mw := &mockMessageWriter{err: errors.New("leader not available")}
	ds := domain.NewDataset([]domain.Track{testTrack("AL092022", "IAN")}, loadedAt, domain.LoadStats{})

	err := testWriter(mw).PublishTracks(context.Background(), 1, ds)
	require.Error(t, err)
	assert.Contains(t, err.Error(), "leader not available")
}

func TestWriter_Close(t *testing.T) {
	mw := &mockMessageWriter{}
	require.NoError(t, testWriter(mw).Close())
	assert.True(t, mw.closed)
}
