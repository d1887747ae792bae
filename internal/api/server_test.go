package api

import (
	"bytes"
	"context"
	"database/sql"
	"encoding/json"
	"fmt"
	"net/http"
	"net/http/httptest"
	"testing"

	_ "github.com/mattn/go-sqlite3"

	"github.com/MelissaKhoury1/smarthome-core/internal/auth"
	"github.com/MelissaKhoury1/smarthome-core/internal/device"
	"github.com/MelissaKhoury1/smarthome-core/internal/infrastructure/config"
	"github.com/MelissaKhoury1/smarthome-core/internal/infrastructure/logging"
	"github.com/MelissaKhoury1/smarthome-core/internal/room"
	"github.com/MelissaKhoury1/smarthome-core/internal/smoke"
)

const testSecret = "test-secret-at-least-32-characters-long"

// testServer bundles the router with handles the tests need to seed data.
type testServer struct {
	handler http.Handler
	token   string
	rooms   room.Repository
	smoke   smoke.Repository
}

func setupTestDB(t *testing.T) *sql.DB {
	t.Helper()

	db, err := sql.Open("sqlite3", ":memory:?_foreign_keys=on")
	if err != nil {
		t.Fatalf("opening test database: %v", err)
	}
	// One connection: every pooled connection gets its own :memory: database.
	db.SetMaxOpenConns(1)
	t.Cleanup(func() { db.Close() })

	schema := `
		CREATE TABLE rooms (
			id TEXT PRIMARY KEY,
			name TEXT NOT NULL UNIQUE,
			slug TEXT NOT NULL,
			created_at TEXT NOT NULL DEFAULT (strftime('%Y-%m-%dT%H:%M:%SZ', 'now')),
			updated_at TEXT NOT NULL DEFAULT (strftime('%Y-%m-%dT%H:%M:%SZ', 'now'))
		) STRICT;

		CREATE TABLE statuses (
			id TEXT PRIMARY KEY,
			value TEXT NOT NULL UNIQUE
		) STRICT;

		INSERT INTO statuses (id, value) VALUES
			('status-on', 'ON'),
			('status-off', 'OFF');

		CREATE TABLE devices (
			id TEXT PRIMARY KEY,
			room_id TEXT NOT NULL REFERENCES rooms(id),
			name TEXT NOT NULL,
			type TEXT NOT NULL,
			status_id TEXT NOT NULL REFERENCES statuses(id),
			value TEXT,
			created_at TEXT NOT NULL DEFAULT (strftime('%Y-%m-%dT%H:%M:%SZ', 'now')),
			updated_at TEXT NOT NULL DEFAULT (strftime('%Y-%m-%dT%H:%M:%SZ', 'now')),
			UNIQUE (room_id, name)
		) STRICT;

		CREATE TABLE users (
			id TEXT PRIMARY KEY,
			email TEXT NOT NULL UNIQUE,
			display_name TEXT NOT NULL,
			password_hash TEXT NOT NULL,
			created_at TEXT NOT NULL,
			updated_at TEXT NOT NULL
		) STRICT;

		CREATE TABLE smoke_detectors (
			id TEXT PRIMARY KEY,
			room_id TEXT NOT NULL REFERENCES rooms(id),
			name TEXT NOT NULL,
			created_at TEXT NOT NULL
		) STRICT;

		CREATE TABLE smoke_events (
			id TEXT PRIMARY KEY,
			detector_id TEXT NOT NULL REFERENCES smoke_detectors(id),
			smoke_level REAL NOT NULL,
			detected_at TEXT NOT NULL
		) STRICT;
	`
	if _, err := db.Exec(schema); err != nil {
		t.Fatalf("creating test schema: %v", err)
	}
	return db
}

// newTestServer builds a router over in-memory storage and returns a
// token for an already-registered account.
func newTestServer(t *testing.T) *testServer {
	t.Helper()

	db := setupTestDB(t)
	deviceRepo := device.NewSQLiteRepository(db)
	roomRepo := room.NewSQLiteRepository(db)
	smokeRepo := smoke.NewSQLiteRepository(db)
	authSvc := auth.NewService(auth.NewSQLiteUserRepository(db), testSecret, 60)

	srv, err := New(Deps{
		Security: config.SecurityConfig{
			JWT: config.JWTConfig{Secret: testSecret, AccessTokenTTL: 60},
		},
		Logger:     logging.Default(),
		Engine:     device.NewEngine(deviceRepo),
		DeviceRepo: deviceRepo,
		RoomRepo:   roomRepo,
		SmokeRepo:  smokeRepo,
		Auth:       authSvc,
	})
	if err != nil {
		t.Fatalf("New: %v", err)
	}

	ctx := context.Background()
	if _, err := authSvc.Register(ctx, "panel@example.com", "Panel", "a decent password"); err != nil {
		t.Fatalf("registering test account: %v", err)
	}
	_, token, err := authSvc.Login(ctx, "panel@example.com", "a decent password")
	if err != nil {
		t.Fatalf("logging in test account: %v", err)
	}

	return &testServer{
		handler: srv.buildRouter(),
		token:   token,
		rooms:   roomRepo,
		smoke:   smokeRepo,
	}
}

// do performs an authenticated request against the test router.
func (ts *testServer) do(t *testing.T, method, path string, body any) *httptest.ResponseRecorder {
	t.Helper()

	var buf bytes.Buffer
	if body != nil {
		if err := json.NewEncoder(&buf).Encode(body); err != nil {
			t.Fatalf("encoding request body: %v", err)
		}
	}

	req := httptest.NewRequest(method, path, &buf)
	req.Header.Set("Authorization", "Bearer "+ts.token)
	rec := httptest.NewRecorder()
	ts.handler.ServeHTTP(rec, req)
	return rec
}

func decodeBody[T any](t *testing.T, rec *httptest.ResponseRecorder) T {
	t.Helper()
	var v T
	if err := json.Unmarshal(rec.Body.Bytes(), &v); err != nil {
		t.Fatalf("decoding response %q: %v", rec.Body.String(), err)
	}
	return v
}

func (ts *testServer) seedRoom(t *testing.T, name string) *room.Room {
	t.Helper()
	rm := &room.Room{Name: name}
	if err := ts.rooms.Create(context.Background(), rm); err != nil {
		t.Fatalf("seeding room %q: %v", name, err)
	}
	return rm
}

func TestHealthIsPublic(t *testing.T) {
	ts := newTestServer(t)

	req := httptest.NewRequest(http.MethodGet, "/api/v1/health", nil)
	rec := httptest.NewRecorder()
	ts.handler.ServeHTTP(rec, req)

	if rec.Code != http.StatusOK {
		t.Fatalf("status = %d, want 200", rec.Code)
	}
}

func TestProtectedRoutesRequireToken(t *testing.T) {
	ts := newTestServer(t)

	paths := []string{"/api/v1/rooms", "/api/v1/devices", "/api/v1/types", "/api/v1/smoke-events"}
	for _, path := range paths {
		req := httptest.NewRequest(http.MethodGet, path, nil)
		rec := httptest.NewRecorder()
		ts.handler.ServeHTTP(rec, req)

		if rec.Code != http.StatusUnauthorized {
			t.Errorf("GET %s without token: status = %d, want 401", path, rec.Code)
		}
	}
}

func TestAuthAcceptsTokenQueryParam(t *testing.T) {
	ts := newTestServer(t)

	// Browsers cannot set headers on WebSocket upgrades, so the token
	// may ride in the query string.
	req := httptest.NewRequest(http.MethodGet, "/api/v1/rooms?token="+ts.token, nil)
	rec := httptest.NewRecorder()
	ts.handler.ServeHTTP(rec, req)

	if rec.Code != http.StatusOK {
		t.Errorf("status = %d, want 200", rec.Code)
	}
}

func TestRegisterAndLoginFlow(t *testing.T) {
	ts := newTestServer(t)

	rec := httptest.NewRecorder()
	body := bytes.NewBufferString(`{"email": "new@example.com", "password": "a decent password"}`)
	req := httptest.NewRequest(http.MethodPost, "/api/v1/auth/register", body)
	ts.handler.ServeHTTP(rec, req)
	if rec.Code != http.StatusCreated {
		t.Fatalf("register status = %d, want 201: %s", rec.Code, rec.Body.String())
	}

	rec = httptest.NewRecorder()
	body = bytes.NewBufferString(`{"email": "new@example.com", "password": "a decent password"}`)
	req = httptest.NewRequest(http.MethodPost, "/api/v1/auth/login", body)
	ts.handler.ServeHTTP(rec, req)
	if rec.Code != http.StatusOK {
		t.Fatalf("login status = %d, want 200: %s", rec.Code, rec.Body.String())
	}

	resp := decodeBody[map[string]any](t, rec)
	token, _ := resp["token"].(string)
	if token == "" {
		t.Fatal("login response missing token")
	}

	// Wrong password is a uniform 401.
	rec = httptest.NewRecorder()
	body = bytes.NewBufferString(`{"email": "new@example.com", "password": "wrong"}`)
	req = httptest.NewRequest(http.MethodPost, "/api/v1/auth/login", body)
	ts.handler.ServeHTTP(rec, req)
	if rec.Code != http.StatusUnauthorized {
		t.Errorf("bad login status = %d, want 401", rec.Code)
	}
}

func TestRoomLifecycle(t *testing.T) {
	ts := newTestServer(t)

	rec := ts.do(t, http.MethodPost, "/api/v1/rooms", map[string]string{"name": "Living Room"})
	if rec.Code != http.StatusCreated {
		t.Fatalf("create status = %d: %s", rec.Code, rec.Body.String())
	}
	created := decodeBody[room.Room](t, rec)
	if created.Slug != "living-room" {
		t.Errorf("slug = %q, want living-room", created.Slug)
	}

	// Duplicate name conflicts.
	rec = ts.do(t, http.MethodPost, "/api/v1/rooms", map[string]string{"name": "Living Room"})
	if rec.Code != http.StatusConflict {
		t.Errorf("duplicate status = %d, want 409", rec.Code)
	}

	rec = ts.do(t, http.MethodGet, "/api/v1/rooms", nil)
	if rec.Code != http.StatusOK {
		t.Fatalf("list status = %d", rec.Code)
	}
	if rooms := decodeBody[[]room.Room](t, rec); len(rooms) != 1 {
		t.Errorf("got %d rooms, want 1", len(rooms))
	}

	rec = ts.do(t, http.MethodGet, "/api/v1/rooms/"+created.ID, nil)
	if rec.Code != http.StatusOK {
		t.Errorf("get status = %d", rec.Code)
	}

	rec = ts.do(t, http.MethodDelete, "/api/v1/rooms/"+created.ID, nil)
	if rec.Code != http.StatusNoContent {
		t.Errorf("delete status = %d, want 204", rec.Code)
	}

	rec = ts.do(t, http.MethodGet, "/api/v1/rooms/"+created.ID, nil)
	if rec.Code != http.StatusNotFound {
		t.Errorf("get deleted status = %d, want 404", rec.Code)
	}
}

func TestRoomDeleteCascadesToDevices(t *testing.T) {
	ts := newTestServer(t)
	rm := ts.seedRoom(t, "Office")

	rec := ts.do(t, http.MethodPost, "/api/v1/devices", map[string]string{
		"name": "Desk Lamp", "type": "light", "room_id": rm.ID,
	})
	if rec.Code != http.StatusCreated {
		t.Fatalf("create device status = %d: %s", rec.Code, rec.Body.String())
	}
	dev := decodeBody[device.Device](t, rec)

	rec = ts.do(t, http.MethodDelete, "/api/v1/rooms/"+rm.ID, nil)
	if rec.Code != http.StatusNoContent {
		t.Fatalf("delete room status = %d", rec.Code)
	}

	rec = ts.do(t, http.MethodGet, "/api/v1/devices/"+dev.ID, nil)
	if rec.Code != http.StatusNotFound {
		t.Errorf("device survived room delete: status = %d", rec.Code)
	}
}

func TestRoomDeleteCascadesToDetectors(t *testing.T) {
	ts := newTestServer(t)
	rm := ts.seedRoom(t, "Hallway")

	rec := ts.do(t, http.MethodPost, "/api/v1/smoke-detectors", map[string]string{
		"name": "Hall Detector", "room_id": rm.ID,
	})
	if rec.Code != http.StatusCreated {
		t.Fatalf("create detector status = %d: %s", rec.Code, rec.Body.String())
	}
	detector := decodeBody[smoke.Detector](t, rec)

	event := &smoke.Event{DetectorID: detector.ID, Level: 0.5}
	if err := ts.smoke.RecordEvent(context.Background(), event); err != nil {
		t.Fatalf("recording event: %v", err)
	}

	rec = ts.do(t, http.MethodDelete, "/api/v1/rooms/"+rm.ID, nil)
	if rec.Code != http.StatusNoContent {
		t.Fatalf("delete room status = %d, want 204: %s", rec.Code, rec.Body.String())
	}

	rec = ts.do(t, http.MethodGet, "/api/v1/smoke-detectors", nil)
	if rec.Code != http.StatusOK {
		t.Fatalf("list detectors status = %d", rec.Code)
	}
	if detectors := decodeBody[[]smoke.Detector](t, rec); len(detectors) != 0 {
		t.Errorf("%d detectors survived room delete", len(detectors))
	}

	rec = ts.do(t, http.MethodGet, "/api/v1/smoke-events", nil)
	if rec.Code != http.StatusOK {
		t.Fatalf("list events status = %d", rec.Code)
	}
	if events := decodeBody[[]smoke.Event](t, rec); len(events) != 0 {
		t.Errorf("%d events survived room delete", len(events))
	}
}

func TestDeviceCreateSeedsDefaultValue(t *testing.T) {
	ts := newTestServer(t)
	rm := ts.seedRoom(t, "Bedroom")

	tests := []struct {
		devType string
		want    string // empty means no value
	}{
		{"light", ""},
		{"ac", "20"},
		{"heater", "24"},
		{"fan", "low"},
		{"blinds", "open"},
	}

	for _, tt := range tests {
		rec := ts.do(t, http.MethodPost, "/api/v1/devices", map[string]string{
			"name": "Test " + tt.devType, "type": tt.devType, "room_id": rm.ID,
		})
		if rec.Code != http.StatusCreated {
			t.Fatalf("create %s status = %d: %s", tt.devType, rec.Code, rec.Body.String())
		}
		dev := decodeBody[device.Device](t, rec)

		if tt.want == "" {
			if dev.Value != nil {
				t.Errorf("%s: value = %q, want none", tt.devType, *dev.Value)
			}
			continue
		}
		if dev.Value == nil || *dev.Value != tt.want {
			t.Errorf("%s: value = %v, want %q", tt.devType, dev.Value, tt.want)
		}
		if dev.Status != device.StatusOff {
			t.Errorf("%s: status = %q, want OFF default", tt.devType, dev.Status)
		}
	}
}

func TestDeviceCreateValidation(t *testing.T) {
	ts := newTestServer(t)
	rm := ts.seedRoom(t, "Bedroom")

	tests := []struct {
		name string
		body map[string]string
		want int
	}{
		{"missing fields", map[string]string{"name": "Lamp"}, http.StatusBadRequest},
		{"unknown type", map[string]string{"name": "X", "type": "toaster", "room_id": rm.ID}, http.StatusBadRequest},
		{"missing room", map[string]string{"name": "X", "type": "light", "room_id": "room-missing"}, http.StatusBadRequest},
		{"bad status", map[string]string{"name": "X", "type": "light", "room_id": rm.ID, "status": "STANDBY"}, http.StatusBadRequest},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			rec := ts.do(t, http.MethodPost, "/api/v1/devices", tt.body)
			if rec.Code != tt.want {
				t.Errorf("status = %d, want %d: %s", rec.Code, tt.want, rec.Body.String())
			}
		})
	}

	// Duplicate name in the same room conflicts.
	body := map[string]string{"name": "Lamp", "type": "light", "room_id": rm.ID}
	if rec := ts.do(t, http.MethodPost, "/api/v1/devices", body); rec.Code != http.StatusCreated {
		t.Fatalf("first create status = %d", rec.Code)
	}
	if rec := ts.do(t, http.MethodPost, "/api/v1/devices", body); rec.Code != http.StatusConflict {
		t.Errorf("duplicate status = %d, want 409", rec.Code)
	}
}

func TestSetDeviceValue(t *testing.T) {
	ts := newTestServer(t)
	rm := ts.seedRoom(t, "Bedroom")

	rec := ts.do(t, http.MethodPost, "/api/v1/devices", map[string]string{
		"name": "AC", "type": "ac", "room_id": rm.ID,
	})
	if rec.Code != http.StatusCreated {
		t.Fatalf("create status = %d", rec.Code)
	}
	dev := decodeBody[device.Device](t, rec)
	valuePath := fmt.Sprintf("/api/v1/devices/%s/value", dev.ID)

	// Accepted values come back in canonical form.
	rec = ts.do(t, http.MethodPut, valuePath, map[string]string{"value": " 018 "})
	if rec.Code != http.StatusOK {
		t.Fatalf("set value status = %d: %s", rec.Code, rec.Body.String())
	}
	if resp := decodeBody[map[string]string](t, rec); resp["value"] != "18" {
		t.Errorf("canonical value = %q, want 18", resp["value"])
	}

	// Rejected values are validation errors and leave state untouched.
	for _, bad := range []string{"16", "31", "warm", "21.5"} {
		rec = ts.do(t, http.MethodPut, valuePath, map[string]string{"value": bad})
		if rec.Code != http.StatusBadRequest {
			t.Errorf("value %q: status = %d, want 400", bad, rec.Code)
			continue
		}
		if resp := decodeBody[Error](t, rec); resp.Code != ErrCodeValidation {
			t.Errorf("value %q: code = %q, want validation_error", bad, resp.Code)
		}
	}

	rec = ts.do(t, http.MethodGet, "/api/v1/devices/"+dev.ID, nil)
	got := decodeBody[device.Device](t, rec)
	if got.Value == nil || *got.Value != "18" {
		t.Errorf("stored value = %v, want 18 after rejected attempts", got.Value)
	}
}

func TestSetValueOnStatusOnlyDevice(t *testing.T) {
	ts := newTestServer(t)
	rm := ts.seedRoom(t, "Bedroom")

	rec := ts.do(t, http.MethodPost, "/api/v1/devices", map[string]string{
		"name": "Lamp", "type": "light", "room_id": rm.ID,
	})
	dev := decodeBody[device.Device](t, rec)

	rec = ts.do(t, http.MethodPut, "/api/v1/devices/"+dev.ID+"/value", map[string]string{"value": "on"})
	if rec.Code != http.StatusBadRequest {
		t.Errorf("status = %d, want 400", rec.Code)
	}
}

func TestSetDeviceStatus(t *testing.T) {
	ts := newTestServer(t)
	rm := ts.seedRoom(t, "Bedroom")

	rec := ts.do(t, http.MethodPost, "/api/v1/devices", map[string]string{
		"name": "Lamp", "type": "light", "room_id": rm.ID,
	})
	dev := decodeBody[device.Device](t, rec)
	statusPath := "/api/v1/devices/" + dev.ID + "/status"

	rec = ts.do(t, http.MethodPut, statusPath, map[string]string{"status": "on"})
	if rec.Code != http.StatusOK {
		t.Fatalf("set status = %d: %s", rec.Code, rec.Body.String())
	}
	if got := decodeBody[device.Device](t, rec); got.Status != device.StatusOn {
		t.Errorf("status = %q, want ON", got.Status)
	}

	rec = ts.do(t, http.MethodPut, statusPath, map[string]string{"status": "STANDBY"})
	if rec.Code != http.StatusBadRequest {
		t.Errorf("unknown status = %d, want 400", rec.Code)
	}

	rec = ts.do(t, http.MethodPut, "/api/v1/devices/dev-missing/status", map[string]string{"status": "on"})
	if rec.Code != http.StatusNotFound {
		t.Errorf("missing device status = %d, want 404", rec.Code)
	}
}

func TestListRoomDevices(t *testing.T) {
	ts := newTestServer(t)
	rm := ts.seedRoom(t, "Bedroom")
	empty := ts.seedRoom(t, "Attic")

	rec := ts.do(t, http.MethodPost, "/api/v1/devices", map[string]string{
		"name": "Lamp", "type": "light", "room_id": rm.ID,
	})
	if rec.Code != http.StatusCreated {
		t.Fatalf("create status = %d", rec.Code)
	}

	rec = ts.do(t, http.MethodGet, "/api/v1/rooms/"+rm.ID+"/devices", nil)
	if rec.Code != http.StatusOK {
		t.Fatalf("status = %d", rec.Code)
	}
	if devices := decodeBody[[]device.Device](t, rec); len(devices) != 1 {
		t.Errorf("got %d devices, want 1", len(devices))
	}

	// An existing room with no devices is an empty list, not a 404.
	rec = ts.do(t, http.MethodGet, "/api/v1/rooms/"+empty.ID+"/devices", nil)
	if rec.Code != http.StatusOK {
		t.Errorf("empty room status = %d, want 200", rec.Code)
	}

	rec = ts.do(t, http.MethodGet, "/api/v1/rooms/room-missing/devices", nil)
	if rec.Code != http.StatusNotFound {
		t.Errorf("missing room status = %d, want 404", rec.Code)
	}
}

func TestListTypes(t *testing.T) {
	ts := newTestServer(t)

	rec := ts.do(t, http.MethodGet, "/api/v1/types", nil)
	if rec.Code != http.StatusOK {
		t.Fatalf("status = %d", rec.Code)
	}
	types := decodeBody[[]device.TypeInfo](t, rec)
	if len(types) != 5 {
		t.Fatalf("got %d types, want 5", len(types))
	}
	if types[0].Name != device.TypeLight {
		t.Errorf("first type = %q, want light", types[0].Name)
	}
}

func TestSmokeEndpoints(t *testing.T) {
	ts := newTestServer(t)
	rm := ts.seedRoom(t, "Hallway")

	rec := ts.do(t, http.MethodPost, "/api/v1/smoke-detectors", map[string]string{
		"name": "Hall Detector", "room_id": rm.ID,
	})
	if rec.Code != http.StatusCreated {
		t.Fatalf("create detector status = %d: %s", rec.Code, rec.Body.String())
	}
	detector := decodeBody[smoke.Detector](t, rec)

	// Unknown room is a bad reference.
	rec = ts.do(t, http.MethodPost, "/api/v1/smoke-detectors", map[string]string{
		"name": "Ghost", "room_id": "room-missing",
	})
	if rec.Code != http.StatusBadRequest {
		t.Errorf("bad room status = %d, want 400", rec.Code)
	}

	event := &smoke.Event{DetectorID: detector.ID, Level: 0.7}
	if err := ts.smoke.RecordEvent(context.Background(), event); err != nil {
		t.Fatalf("recording event: %v", err)
	}

	rec = ts.do(t, http.MethodGet, "/api/v1/smoke-events", nil)
	if rec.Code != http.StatusOK {
		t.Fatalf("list events status = %d", rec.Code)
	}
	events := decodeBody[[]smoke.Event](t, rec)
	if len(events) != 1 {
		t.Fatalf("got %d events, want 1", len(events))
	}
	if events[0].RoomName != "Hallway" {
		t.Errorf("room name = %q, want Hallway", events[0].RoomName)
	}

	rec = ts.do(t, http.MethodGet, "/api/v1/smoke-events?limit=abc", nil)
	if rec.Code != http.StatusBadRequest {
		t.Errorf("bad limit status = %d, want 400", rec.Code)
	}
}
