// Package smoke manages smoke detectors and the readings they report.
//
// Detectors publish JSON readings over MQTT on per-detector topics; the
// Ingestor persists each reading as an event and hands it to an optional
// Notifier for WebSocket fan-out. Events are append-only and served
// newest first with the detector's room name joined.
package smoke
