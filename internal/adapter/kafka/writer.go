package kafka

import (
	"context"
	"encoding/json"
	"fmt"
	"log/slog"
	"strconv"
	"time"

	"github.com/couchcryptid/storm-track-service/internal/config"
	"github.com/couchcryptid/storm-track-service/internal/domain"
	kafkago "github.com/segmentio/kafka-go"
)

type messageWriter interface {
	WriteMessages(ctx context.Context, msgs ...kafkago.Message) error
	Close() error
}

// TrackMessage is the published form of one retained track.
type TrackMessage struct {
	ID           string               `json:"id"`
	Name         string               `json:"name"`
	Generation   uint64               `json:"generation"`
	LoadedAt     time.Time            `json:"loaded_at"`
	Observations []domain.Observation `json:"observations"`
}

// Writer publishes retained tracks to a Kafka topic.
// It implements engine.Publisher.
type Writer struct {
	writer messageWriter
	logger *slog.Logger
}

// NewWriter creates a Kafka producer for the configured track topic.
func NewWriter(cfg *config.Config, logger *slog.Logger) *Writer {
	w := &kafkago.Writer{
		Addr:         kafkago.TCP(cfg.KafkaBrokers...),
		Topic:        cfg.KafkaTopic,
		Balancer:     &kafkago.Hash{},
		RequiredAcks: kafkago.RequireAll,
	}
	return &Writer{writer: w, logger: logger}
}

// PublishTracks writes one message per track, keyed by storm ID, in a single
// WriteMessages call.
func (w *Writer) PublishTracks(ctx context.Context, generation uint64, ds *domain.Dataset) error {
	if ds == nil || len(ds.Tracks) == 0 {
		return nil
	}
	msgs := make([]kafkago.Message, len(ds.Tracks))
	for i := range ds.Tracks {
		msg, err := serializeToMessage(ds.Tracks[i], generation, ds.LoadedAt)
		if err != nil {
			return err
		}
		msgs[i] = msg
	}
	if err := w.writer.WriteMessages(ctx, msgs...); err != nil {
		return fmt.Errorf("publish tracks: %w", err)
	}
	w.logger.Debug("tracks published", "generation", generation, "count", len(msgs))
	return nil
}

func (w *Writer) Close() error {
	return w.writer.Close()
}

// serializeToMessage marshals a track into a Kafka message.
func serializeToMessage(track domain.Track, generation uint64, loadedAt time.Time) (kafkago.Message, error) {
	data, err := json.Marshal(TrackMessage{
		ID:           track.ID,
		Name:         track.Name,
		Generation:   generation,
		LoadedAt:     loadedAt,
		Observations: track.Observations,
	})
	if err != nil {
		return kafkago.Message{}, fmt.Errorf("serialize track %s: %w", track.ID, err)
	}
	return kafkago.Message{
		Key:   []byte(track.ID),
		Value: data,
		Headers: []kafkago.Header{
			{Key: "storm_id", Value: []byte(track.ID)},
			{Key: "generation", Value: []byte(strconv.FormatUint(generation, 10))},
			{Key: "loaded_at", Value: []byte(loadedAt.Format(time.RFC3339))},
		},
	}, nil
}
