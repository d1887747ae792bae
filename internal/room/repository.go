package room

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/google/uuid"
)

// Repository defines the interface for room persistence operations.
type Repository interface {
	// Create inserts a new room, generating its ID and slug if empty.
	// Returns ErrRoomExists when the name is already in use.
	Create(ctx context.Context, room *Room) error

	// List returns all rooms ordered by name.
	List(ctx context.Context) ([]Room, error)

	// GetByID returns a single room, or ErrRoomNotFound.
	GetByID(ctx context.Context, id string) (*Room, error)

	// Delete removes a room and everything inside it (devices, smoke
	// detectors and their events) in one transaction. The deletes
	// commit together or not at all.
	// Returns ErrRoomNotFound if the room does not exist.
	Delete(ctx context.Context, id string) error
}

// SQLiteRepository implements Repository using SQLite.
type SQLiteRepository struct {
	db *sql.DB
}

// NewSQLiteRepository creates a new SQLite-backed room repository.
func NewSQLiteRepository(db *sql.DB) *SQLiteRepository {
	return &SQLiteRepository{db: db}
}

// Create inserts a new room into the database.
func (r *SQLiteRepository) Create(ctx context.Context, room *Room) error {
	if err := ValidateName(room.Name); err != nil {
		return err
	}
	if room.ID == "" {
		room.ID = "room-" + uuid.NewString()
	}
	if room.Slug == "" {
		room.Slug = GenerateSlug(room.Name)
	}

	now := time.Now().UTC()
	room.CreatedAt = now
	room.UpdatedAt = now

	_, err := r.db.ExecContext(ctx, `
		INSERT INTO rooms (id, name, slug, created_at, updated_at)
		VALUES (?, ?, ?, ?, ?)`,
		room.ID, room.Name, room.Slug,
		now.Format(time.RFC3339), now.Format(time.RFC3339),
	)
	if err != nil {
		if strings.Contains(err.Error(), "UNIQUE constraint failed") {
			return ErrRoomExists
		}
		return fmt.Errorf("inserting room: %w", err)
	}
	return nil
}

// List returns all rooms ordered by name.
func (r *SQLiteRepository) List(ctx context.Context) ([]Room, error) {
	rows, err := r.db.QueryContext(ctx, `
		SELECT id, name, slug, created_at, updated_at
		FROM rooms ORDER BY name`)
	if err != nil {
		return nil, fmt.Errorf("querying rooms: %w", err)
	}
	defer rows.Close()

	rooms := []Room{}
	for rows.Next() {
		rm, err := scanRoom(rows)
		if err != nil {
			return nil, fmt.Errorf("scanning room row: %w", err)
		}
		rooms = append(rooms, *rm)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("iterating room rows: %w", err)
	}
	return rooms, nil
}

// GetByID returns a single room by ID.
func (r *SQLiteRepository) GetByID(ctx context.Context, id string) (*Room, error) {
	row := r.db.QueryRowContext(ctx, `
		SELECT id, name, slug, created_at, updated_at
		FROM rooms WHERE id = ?`, id)

	rm, err := scanRoom(row)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, ErrRoomNotFound
		}
		return nil, fmt.Errorf("querying room by id: %w", err)
	}
	return rm, nil
}

// Delete removes a room and its contents atomically.
// Child rows go first to satisfy the FKs, leaves before branches:
// smoke events, then detectors, then devices, then the room itself.
// All deletes share one transaction so a failure leaves none applied.
func (r *SQLiteRepository) Delete(ctx context.Context, id string) error {
	tx, err := r.db.BeginTx(ctx, nil)
	if err != nil {
		return fmt.Errorf("beginning cascade delete: %w", err)
	}
	defer tx.Rollback() //nolint:errcheck // no-op after commit

	if _, err := tx.ExecContext(ctx, `
		DELETE FROM smoke_events WHERE detector_id IN
			(SELECT id FROM smoke_detectors WHERE room_id = ?)`, id); err != nil {
		return fmt.Errorf("deleting room smoke events: %w", err)
	}

	if _, err := tx.ExecContext(ctx, "DELETE FROM smoke_detectors WHERE room_id = ?", id); err != nil {
		return fmt.Errorf("deleting room smoke detectors: %w", err)
	}

	if _, err := tx.ExecContext(ctx, "DELETE FROM devices WHERE room_id = ?", id); err != nil {
		return fmt.Errorf("deleting room devices: %w", err)
	}

	result, err := tx.ExecContext(ctx, "DELETE FROM rooms WHERE id = ?", id)
	if err != nil {
		return fmt.Errorf("deleting room: %w", err)
	}
	n, _ := result.RowsAffected() //nolint:errcheck // always succeeds on SQLite
	if n == 0 {
		return ErrRoomNotFound
	}

	if err := tx.Commit(); err != nil {
		return fmt.Errorf("committing cascade delete: %w", err)
	}
	return nil
}

// rowScanner abstracts *sql.Row and *sql.Rows for shared scanning.
type rowScanner interface {
	Scan(dest ...any) error
}

func scanRoom(scanner rowScanner) (*Room, error) {
	var rm Room
	var createdAt, updatedAt string

	if err := scanner.Scan(&rm.ID, &rm.Name, &rm.Slug, &createdAt, &updatedAt); err != nil {
		return nil, err
	}
	rm.CreatedAt, _ = time.Parse(time.RFC3339, createdAt) //nolint:errcheck // format is controlled
	rm.UpdatedAt, _ = time.Parse(time.RFC3339, updatedAt) //nolint:errcheck // format is controlled
	return &rm, nil
}
