package smoke

import (
	"context"
	"errors"
	"testing"

	"github.com/MelissaKhoury1/smarthome-core/internal/infrastructure/mqtt"
)

// recordingNotifier captures events handed to the notifier.
type recordingNotifier struct {
	events []Event
}

func (n *recordingNotifier) NotifySmokeEvent(event Event) {
	n.events = append(n.events, event)
}

func newTestIngestor(t *testing.T) (*Ingestor, *SQLiteRepository, *recordingNotifier, string) {
	t.Helper()

	repo := NewSQLiteRepository(setupTestDB(t))
	d := &Detector{RoomID: "room-hall", Name: "Hall Detector"}
	if err := repo.CreateDetector(context.Background(), d); err != nil {
		t.Fatalf("CreateDetector: %v", err)
	}

	ingestor := NewIngestor(repo, nil, mqtt.Topics{Prefix: "smarthome"}, 1)
	notifier := &recordingNotifier{}
	ingestor.SetNotifier(notifier)
	return ingestor, repo, notifier, d.ID
}

func TestHandleReadingPersistsAndNotifies(t *testing.T) {
	ingestor, repo, notifier, detectorID := newTestIngestor(t)

	topic := "smarthome/detector/" + detectorID + "/smoke"
	if err := ingestor.handleReading(topic, []byte(`{"level": 0.42}`)); err != nil {
		t.Fatalf("handleReading: %v", err)
	}

	events, err := repo.ListEvents(context.Background(), 0)
	if err != nil {
		t.Fatalf("ListEvents: %v", err)
	}
	if len(events) != 1 {
		t.Fatalf("got %d events, want 1", len(events))
	}
	if events[0].Level != 0.42 {
		t.Errorf("level = %v, want 0.42", events[0].Level)
	}

	if len(notifier.events) != 1 {
		t.Fatalf("notifier received %d events, want 1", len(notifier.events))
	}
}

func TestHandleReadingBadPayload(t *testing.T) {
	ingestor, repo, _, detectorID := newTestIngestor(t)
	topic := "smarthome/detector/" + detectorID + "/smoke"

	tests := []struct {
		name    string
		payload string
	}{
		{"invalid json", `{`},
		{"missing level", `{"reading": 1}`},
		{"wrong type", `{"level": "high"}`},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			err := ingestor.handleReading(topic, []byte(tt.payload))
			if !errors.Is(err, ErrInvalidReading) {
				t.Errorf("error = %v, want ErrInvalidReading", err)
			}
		})
	}

	events, err := repo.ListEvents(context.Background(), 0)
	if err != nil {
		t.Fatalf("ListEvents: %v", err)
	}
	if len(events) != 0 {
		t.Errorf("%d events recorded from bad payloads", len(events))
	}
}

func TestHandleReadingUnknownDetectorDropped(t *testing.T) {
	ingestor, repo, notifier, _ := newTestIngestor(t)

	// Unregistered detectors are dropped without error so one rogue
	// publisher cannot spam the handler error path.
	if err := ingestor.handleReading("smarthome/detector/ghost/smoke", []byte(`{"level": 0.9}`)); err != nil {
		t.Fatalf("handleReading: %v", err)
	}

	events, err := repo.ListEvents(context.Background(), 0)
	if err != nil {
		t.Fatalf("ListEvents: %v", err)
	}
	if len(events) != 0 {
		t.Errorf("%d events recorded for unknown detector", len(events))
	}
	if len(notifier.events) != 0 {
		t.Errorf("notifier invoked for unknown detector")
	}
}

func TestHandleReadingBadTopic(t *testing.T) {
	ingestor, _, _, _ := newTestIngestor(t)

	if err := ingestor.handleReading("other/topic", []byte(`{"level": 0.1}`)); !errors.Is(err, ErrInvalidReading) {
		t.Errorf("error = %v, want ErrInvalidReading", err)
	}
}
