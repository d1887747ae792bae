package smoke

import (
	"context"
	"encoding/json"
	"fmt"

	"github.com/MelissaKhoury1/smarthome-core/internal/infrastructure/mqtt"
)

// reading is the JSON payload detectors publish.
type reading struct {
	Level *float64 `json:"level"`
}

// Logger is the minimal logging surface the ingestor needs.
type Logger interface {
	Debug(msg string, args ...any)
	Info(msg string, args ...any)
	Warn(msg string, args ...any)
	Error(msg string, args ...any)
}

type noopLogger struct{}

func (noopLogger) Debug(string, ...any) {}
func (noopLogger) Info(string, ...any)  {}
func (noopLogger) Warn(string, ...any)  {}
func (noopLogger) Error(string, ...any) {}

// Notifier receives events after they are persisted, for fan-out to
// connected panels.
type Notifier interface {
	NotifySmokeEvent(event Event)
}

// Ingestor subscribes to detector reading topics and persists each
// reading as a smoke event. Readings from unknown detectors are dropped
// and logged rather than failing the subscription.
type Ingestor struct {
	repo     Repository
	client   *mqtt.Client
	topics   mqtt.Topics
	qos      byte
	logger   Logger
	notifier Notifier
}

// NewIngestor creates an ingestor over a connected MQTT client.
func NewIngestor(repo Repository, client *mqtt.Client, topics mqtt.Topics, qos byte) *Ingestor {
	return &Ingestor{
		repo:   repo,
		client: client,
		topics: topics,
		qos:    qos,
		logger: noopLogger{},
	}
}

// SetLogger replaces the default no-op logger.
func (i *Ingestor) SetLogger(logger Logger) {
	if logger != nil {
		i.logger = logger
	}
}

// SetNotifier registers a fan-out target for persisted events.
func (i *Ingestor) SetNotifier(n Notifier) {
	i.notifier = n
}

// Start subscribes to the wildcard detector topic.
func (i *Ingestor) Start() error {
	if err := i.client.Subscribe(i.topics.AllDetectorSmoke(), i.qos, i.handleReading); err != nil {
		return fmt.Errorf("subscribing to detector readings: %w", err)
	}
	i.logger.Info("smoke ingestor started", "topic", i.topics.AllDetectorSmoke())
	return nil
}

// Stop unsubscribes from the detector topic.
func (i *Ingestor) Stop() error {
	return i.client.Unsubscribe(i.topics.AllDetectorSmoke())
}

// handleReading runs on paho's goroutines; it must not block for long.
func (i *Ingestor) handleReading(topic string, payload []byte) error {
	detectorID := i.topics.DetectorIDFromTopic(topic)
	if detectorID == "" {
		return fmt.Errorf("%w: unexpected topic %q", ErrInvalidReading, topic)
	}

	var r reading
	if err := json.Unmarshal(payload, &r); err != nil {
		return fmt.Errorf("%w: %w", ErrInvalidReading, err)
	}
	if r.Level == nil {
		return fmt.Errorf("%w: missing level field", ErrInvalidReading)
	}

	ctx := context.Background()
	known, err := i.repo.DetectorExists(ctx, detectorID)
	if err != nil {
		return fmt.Errorf("checking detector %s: %w", detectorID, err)
	}
	if !known {
		i.logger.Warn("reading from unregistered detector dropped", "detector_id", detectorID)
		return nil
	}

	event := Event{DetectorID: detectorID, Level: *r.Level}
	if err := i.repo.RecordEvent(ctx, &event); err != nil {
		return fmt.Errorf("recording smoke event: %w", err)
	}

	i.logger.Debug("smoke event recorded",
		"detector_id", detectorID,
		"level", *r.Level,
	)

	if i.notifier != nil {
		i.notifier.NotifySmokeEvent(event)
	}
	return nil
}
