package device

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/google/uuid"
)

// Repository defines the persistence operations the engine depends on.
// The abstraction keeps the engine testable without a database and confines
// SQL to one place. All queries are parameterized; no caller input is ever
// interpolated into statements.
type Repository interface {
	// GetByID retrieves a device with its status value joined.
	// Returns ErrDeviceNotFound if the device does not exist.
	GetByID(ctx context.Context, id string) (*Device, error)

	// TypeOf resolves just the device's type, the first step of a value
	// change. Returns ErrDeviceNotFound if the device does not exist.
	TypeOf(ctx context.Context, id string) (DeviceType, error)

	// List retrieves all devices with room name and status value joined.
	List(ctx context.Context) ([]Device, error)

	// ListByRoom retrieves all devices in a specific room.
	ListByRoom(ctx context.Context, roomID string) ([]Device, error)

	// Create inserts a new device, generating its ID if empty.
	// Returns ErrDeviceExists on a room-scoped name collision and
	// ErrInvalidReference when room or status does not exist.
	Create(ctx context.Context, device *Device) error

	// UpdateValue writes a validated canonical value.
	// Returns ErrDeviceNotFound if the write affects zero rows.
	UpdateValue(ctx context.Context, id, value string) error

	// UpdateStatus writes a resolved status id.
	// Returns ErrDeviceNotFound if the write affects zero rows.
	UpdateStatus(ctx context.Context, id, statusID string) error

	// Delete removes a device by ID.
	// Returns ErrDeviceNotFound if the device does not exist.
	Delete(ctx context.Context, id string) error

	// NameExistsInRoom reports whether the room already contains a device
	// with the given name.
	NameExistsInRoom(ctx context.Context, roomID, name string) (bool, error)

	// ResolveStatusID maps a status value (ON/OFF) to its row ID.
	// Returns ErrStatusNotFound if no row matches.
	ResolveStatusID(ctx context.Context, value string) (string, error)

	// ListStatuses returns the status reference data.
	ListStatuses(ctx context.Context) ([]Status, error)
}

// SQLiteRepository implements Repository using SQLite.
type SQLiteRepository struct {
	db *sql.DB
}

// NewSQLiteRepository creates a new SQLite-backed device repository.
func NewSQLiteRepository(db *sql.DB) *SQLiteRepository {
	return &SQLiteRepository{db: db}
}

// deviceColumns is the shared select list for device reads.
const deviceColumns = `d.id, d.room_id, d.name, d.type, d.status_id, s.value,
		d.value, r.name, d.created_at, d.updated_at`

// GetByID retrieves a device by its unique identifier.
func (r *SQLiteRepository) GetByID(ctx context.Context, id string) (*Device, error) {
	query := `
		SELECT ` + deviceColumns + `
		FROM devices d
		JOIN statuses s ON d.status_id = s.id
		JOIN rooms r ON d.room_id = r.id
		WHERE d.id = ?`

	dev, err := scanDevice(r.db.QueryRowContext(ctx, query, id))
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, ErrDeviceNotFound
		}
		return nil, fmt.Errorf("querying device by id: %w", err)
	}
	return dev, nil
}

// TypeOf resolves a device's type without loading the full row.
func (r *SQLiteRepository) TypeOf(ctx context.Context, id string) (DeviceType, error) {
	var t string
	err := r.db.QueryRowContext(ctx,
		"SELECT type FROM devices WHERE id = ?", id).Scan(&t)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return "", ErrDeviceNotFound
		}
		return "", fmt.Errorf("querying device type: %w", err)
	}
	return DeviceType(t), nil
}

// List retrieves all devices ordered by room then name.
func (r *SQLiteRepository) List(ctx context.Context) ([]Device, error) {
	query := `
		SELECT ` + deviceColumns + `
		FROM devices d
		JOIN statuses s ON d.status_id = s.id
		JOIN rooms r ON d.room_id = r.id
		ORDER BY r.name, d.name`

	return r.queryDevices(ctx, query)
}

// ListByRoom retrieves all devices in a specific room, ordered by name.
func (r *SQLiteRepository) ListByRoom(ctx context.Context, roomID string) ([]Device, error) {
	query := `
		SELECT ` + deviceColumns + `
		FROM devices d
		JOIN statuses s ON d.status_id = s.id
		JOIN rooms r ON d.room_id = r.id
		WHERE d.room_id = ?
		ORDER BY d.name`

	return r.queryDevices(ctx, query, roomID)
}

// Create inserts a new device.
func (r *SQLiteRepository) Create(ctx context.Context, device *Device) error {
	if device.ID == "" {
		device.ID = "dev-" + uuid.NewString()
	}

	now := time.Now().UTC()
	device.CreatedAt = now
	device.UpdatedAt = now

	_, err := r.db.ExecContext(ctx, `
		INSERT INTO devices (id, room_id, name, type, status_id, value, created_at, updated_at)
		VALUES (?, ?, ?, ?, ?, ?, ?, ?)`,
		device.ID,
		device.RoomID,
		device.Name,
		string(device.Type),
		device.StatusID,
		nullableString(device.Value),
		now.Format(time.RFC3339),
		now.Format(time.RFC3339),
	)
	if err != nil {
		if isUniqueConstraintError(err) {
			return ErrDeviceExists
		}
		if isForeignKeyError(err) {
			return ErrInvalidReference
		}
		return fmt.Errorf("inserting device: %w", err)
	}

	return nil
}

// UpdateValue writes a canonical value with a single conditional UPDATE.
// Atomicity is the statement's; there is no surrounding transaction.
func (r *SQLiteRepository) UpdateValue(ctx context.Context, id, value string) error {
	result, err := r.db.ExecContext(ctx,
		"UPDATE devices SET value = ?, updated_at = ? WHERE id = ?",
		value, time.Now().UTC().Format(time.RFC3339), id,
	)
	if err != nil {
		return fmt.Errorf("updating device value: %w", err)
	}
	return requireRowAffected(result)
}

// UpdateStatus writes a resolved status id with a single conditional UPDATE.
func (r *SQLiteRepository) UpdateStatus(ctx context.Context, id, statusID string) error {
	result, err := r.db.ExecContext(ctx,
		"UPDATE devices SET status_id = ?, updated_at = ? WHERE id = ?",
		statusID, time.Now().UTC().Format(time.RFC3339), id,
	)
	if err != nil {
		return fmt.Errorf("updating device status: %w", err)
	}
	return requireRowAffected(result)
}

// Delete removes a device by ID.
func (r *SQLiteRepository) Delete(ctx context.Context, id string) error {
	result, err := r.db.ExecContext(ctx, "DELETE FROM devices WHERE id = ?", id)
	if err != nil {
		return fmt.Errorf("deleting device: %w", err)
	}
	return requireRowAffected(result)
}

// NameExistsInRoom reports whether a device with the given name exists in
// the room.
func (r *SQLiteRepository) NameExistsInRoom(ctx context.Context, roomID, name string) (bool, error) {
	var one int
	err := r.db.QueryRowContext(ctx,
		"SELECT 1 FROM devices WHERE room_id = ? AND name = ?", roomID, name).Scan(&one)
	if errors.Is(err, sql.ErrNoRows) {
		return false, nil
	}
	if err != nil {
		return false, fmt.Errorf("checking device name: %w", err)
	}
	return true, nil
}

// ResolveStatusID maps a status value to its row ID.
func (r *SQLiteRepository) ResolveStatusID(ctx context.Context, value string) (string, error) {
	var id string
	err := r.db.QueryRowContext(ctx,
		"SELECT id FROM statuses WHERE value = ?", value).Scan(&id)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return "", fmt.Errorf("%w: %q", ErrStatusNotFound, value)
		}
		return "", fmt.Errorf("resolving status: %w", err)
	}
	return id, nil
}

// ListStatuses returns all status rows.
func (r *SQLiteRepository) ListStatuses(ctx context.Context) ([]Status, error) {
	rows, err := r.db.QueryContext(ctx, "SELECT id, value FROM statuses ORDER BY value")
	if err != nil {
		return nil, fmt.Errorf("listing statuses: %w", err)
	}
	defer rows.Close()

	var statuses []Status
	for rows.Next() {
		var s Status
		if err := rows.Scan(&s.ID, &s.Value); err != nil {
			return nil, fmt.Errorf("scanning status row: %w", err)
		}
		statuses = append(statuses, s)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("iterating statuses: %w", err)
	}
	return statuses, nil
}

// queryDevices runs a multi-row device query and scans the results.
func (r *SQLiteRepository) queryDevices(ctx context.Context, query string, args ...any) ([]Device, error) {
	rows, err := r.db.QueryContext(ctx, query, args...)
	if err != nil {
		return nil, fmt.Errorf("querying devices: %w", err)
	}
	defer rows.Close()

	var devices []Device
	for rows.Next() {
		dev, err := scanDevice(rows)
		if err != nil {
			return nil, fmt.Errorf("scanning device row: %w", err)
		}
		devices = append(devices, *dev)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("iterating devices: %w", err)
	}

	if devices == nil {
		devices = []Device{}
	}
	return devices, nil
}

// rowScanner abstracts *sql.Row and *sql.Rows for shared scanning.
type rowScanner interface {
	Scan(dest ...any) error
}

// scanDevice scans a device row including joined status and room name.
func scanDevice(scanner rowScanner) (*Device, error) {
	var d Device
	var value sql.NullString
	var createdAt, updatedAt string
	var deviceType string

	err := scanner.Scan(
		&d.ID,
		&d.RoomID,
		&d.Name,
		&deviceType,
		&d.StatusID,
		&d.Status,
		&value,
		&d.RoomName,
		&createdAt,
		&updatedAt,
	)
	if err != nil {
		return nil, err
	}

	d.Type = DeviceType(deviceType)
	if value.Valid {
		d.Value = &value.String
	}
	d.CreatedAt, _ = time.Parse(time.RFC3339, createdAt) //nolint:errcheck // format is controlled
	d.UpdatedAt, _ = time.Parse(time.RFC3339, updatedAt) //nolint:errcheck // format is controlled

	return &d, nil
}

// requireRowAffected converts a zero-row write into ErrDeviceNotFound.
func requireRowAffected(result sql.Result) error {
	rows, _ := result.RowsAffected() //nolint:errcheck // always succeeds on SQLite
	if rows == 0 {
		return ErrDeviceNotFound
	}
	return nil
}

// nullableString returns a sql.NullString for optional string pointers.
func nullableString(s *string) sql.NullString {
	if s == nil {
		return sql.NullString{}
	}
	return sql.NullString{String: *s, Valid: true}
}

// isUniqueConstraintError detects SQLite unique constraint violations.
func isUniqueConstraintError(err error) bool {
	return err != nil && strings.Contains(err.Error(), "UNIQUE constraint failed")
}

// isForeignKeyError detects SQLite foreign key violations.
func isForeignKeyError(err error) bool {
	return err != nil && strings.Contains(err.Error(), "FOREIGN KEY constraint failed")
}
