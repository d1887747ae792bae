package influxdb

import (
	"time"

	"github.com/influxdata/influxdb-client-go/v2/api/write"
)

// WriteDeviceState records a device transition as a device_state point.
// Exactly one of value/status should be non-empty depending on which
// kind of transition occurred. The write is non-blocking.
func (c *Client) WriteDeviceState(deviceID, roomID, deviceType, value, status string) {
	if !c.IsConnected() {
		return
	}

	fields := map[string]interface{}{}
	if value != "" {
		fields["value"] = value
	}
	if status != "" {
		fields["status"] = status
	}
	if len(fields) == 0 {
		return
	}

	point := write.NewPoint(
		"device_state",
		map[string]string{
			"device_id": deviceID,
			"room_id":   roomID,
			"type":      deviceType,
		},
		fields,
		time.Now(),
	)

	c.writeAPI.WritePoint(point)
}

// WriteSmokeLevel records a detector reading as a smoke_level point.
func (c *Client) WriteSmokeLevel(detectorID string, level float64, detectedAt time.Time) {
	if !c.IsConnected() {
		return
	}

	point := write.NewPoint(
		"smoke_level",
		map[string]string{
			"detector_id": detectorID,
		},
		map[string]interface{}{
			"level": level,
		},
		detectedAt,
	)

	c.writeAPI.WritePoint(point)
}
