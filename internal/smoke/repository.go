package smoke

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/google/uuid"
)

// Repository defines persistence operations for detectors and events.
type Repository interface {
	// CreateDetector inserts a new detector, generating its ID if empty.
	// Returns ErrInvalidReference when the room does not exist.
	CreateDetector(ctx context.Context, detector *Detector) error

	// ListDetectors returns all detectors with room names joined.
	ListDetectors(ctx context.Context) ([]Detector, error)

	// DetectorExists reports whether a detector with the given ID exists.
	DetectorExists(ctx context.Context, id string) (bool, error)

	// RecordEvent inserts a smoke-level reading, generating its ID if empty.
	// Returns ErrDetectorNotFound when the detector is unknown.
	RecordEvent(ctx context.Context, event *Event) error

	// ListEvents returns events newest first, with the detector's room
	// name joined, capped at limit rows (<= 0 uses the default cap).
	ListEvents(ctx context.Context, limit int) ([]Event, error)
}

// defaultEventLimit caps unbounded event listings.
const defaultEventLimit = 200

// SQLiteRepository implements Repository using SQLite.
type SQLiteRepository struct {
	db *sql.DB
}

// NewSQLiteRepository creates a new SQLite-backed smoke repository.
func NewSQLiteRepository(db *sql.DB) *SQLiteRepository {
	return &SQLiteRepository{db: db}
}

// CreateDetector inserts a new detector.
func (r *SQLiteRepository) CreateDetector(ctx context.Context, detector *Detector) error {
	if strings.TrimSpace(detector.Name) == "" {
		return fmt.Errorf("%w: name cannot be empty", ErrInvalidName)
	}
	if detector.ID == "" {
		detector.ID = "detector-" + uuid.NewString()
	}
	detector.CreatedAt = time.Now().UTC()

	_, err := r.db.ExecContext(ctx, `
		INSERT INTO smoke_detectors (id, room_id, name, created_at)
		VALUES (?, ?, ?, ?)`,
		detector.ID, detector.RoomID, detector.Name,
		detector.CreatedAt.Format(time.RFC3339),
	)
	if err != nil {
		if strings.Contains(err.Error(), "FOREIGN KEY constraint failed") {
			return ErrInvalidReference
		}
		return fmt.Errorf("inserting detector: %w", err)
	}
	return nil
}

// ListDetectors returns all detectors with room names joined.
func (r *SQLiteRepository) ListDetectors(ctx context.Context) ([]Detector, error) {
	rows, err := r.db.QueryContext(ctx, `
		SELECT d.id, d.room_id, d.name, r.name, d.created_at
		FROM smoke_detectors d
		JOIN rooms r ON d.room_id = r.id
		ORDER BY r.name, d.name`)
	if err != nil {
		return nil, fmt.Errorf("querying detectors: %w", err)
	}
	defer rows.Close()

	detectors := []Detector{}
	for rows.Next() {
		var d Detector
		var createdAt string
		if err := rows.Scan(&d.ID, &d.RoomID, &d.Name, &d.RoomName, &createdAt); err != nil {
			return nil, fmt.Errorf("scanning detector row: %w", err)
		}
		d.CreatedAt, _ = time.Parse(time.RFC3339, createdAt) //nolint:errcheck // format is controlled
		detectors = append(detectors, d)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("iterating detectors: %w", err)
	}
	return detectors, nil
}

// DetectorExists reports whether a detector with the given ID exists.
func (r *SQLiteRepository) DetectorExists(ctx context.Context, id string) (bool, error) {
	var one int
	err := r.db.QueryRowContext(ctx,
		"SELECT 1 FROM smoke_detectors WHERE id = ?", id).Scan(&one)
	if errors.Is(err, sql.ErrNoRows) {
		return false, nil
	}
	if err != nil {
		return false, fmt.Errorf("checking detector: %w", err)
	}
	return true, nil
}

// RecordEvent inserts a smoke-level reading.
func (r *SQLiteRepository) RecordEvent(ctx context.Context, event *Event) error {
	if event.ID == "" {
		event.ID = "smoke-" + uuid.NewString()
	}
	if event.DetectedAt.IsZero() {
		event.DetectedAt = time.Now().UTC()
	}

	_, err := r.db.ExecContext(ctx, `
		INSERT INTO smoke_events (id, detector_id, smoke_level, detected_at)
		VALUES (?, ?, ?, ?)`,
		event.ID, event.DetectorID, event.Level,
		event.DetectedAt.UTC().Format(time.RFC3339),
	)
	if err != nil {
		if strings.Contains(err.Error(), "FOREIGN KEY constraint failed") {
			return ErrDetectorNotFound
		}
		return fmt.Errorf("inserting smoke event: %w", err)
	}
	return nil
}

// ListEvents returns events newest first with room names joined.
func (r *SQLiteRepository) ListEvents(ctx context.Context, limit int) ([]Event, error) {
	if limit <= 0 {
		limit = defaultEventLimit
	}

	rows, err := r.db.QueryContext(ctx, `
		SELECT e.id, e.detector_id, e.smoke_level, r.name, e.detected_at
		FROM smoke_events e
		JOIN smoke_detectors d ON e.detector_id = d.id
		JOIN rooms r ON d.room_id = r.id
		ORDER BY e.detected_at DESC
		LIMIT ?`, limit)
	if err != nil {
		return nil, fmt.Errorf("querying smoke events: %w", err)
	}
	defer rows.Close()

	events := []Event{}
	for rows.Next() {
		var e Event
		var detectedAt string
		if err := rows.Scan(&e.ID, &e.DetectorID, &e.Level, &e.RoomName, &detectedAt); err != nil {
			return nil, fmt.Errorf("scanning smoke event row: %w", err)
		}
		e.DetectedAt, _ = time.Parse(time.RFC3339, detectedAt) //nolint:errcheck // format is controlled
		events = append(events, e)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("iterating smoke events: %w", err)
	}
	return events, nil
}
