package mqtt

import "strings"

// Topics builds the service's MQTT topic strings from the configured
// prefix. Detector readings arrive on per-detector topics:
//
//	<prefix>/detector/<detector-id>/smoke   {"level": 0.42}
//	<prefix>/system/status                  service online/offline
type Topics struct {
	// Prefix is the first topic segment, "smarthome" by default.
	Prefix string
}

func (t Topics) prefix() string {
	if t.Prefix == "" {
		return "smarthome"
	}
	return t.Prefix
}

// SystemStatus is the retained service status topic.
func (t Topics) SystemStatus() string {
	return t.prefix() + "/system/status"
}

// DetectorSmoke is the reading topic for one detector.
func (t Topics) DetectorSmoke(detectorID string) string {
	return t.prefix() + "/detector/" + detectorID + "/smoke"
}

// AllDetectorSmoke is the wildcard subscription covering every detector.
func (t Topics) AllDetectorSmoke() string {
	return t.prefix() + "/detector/+/smoke"
}

// DetectorIDFromTopic extracts the detector ID from a reading topic.
// Returns "" when the topic does not match the expected shape.
func (t Topics) DetectorIDFromTopic(topic string) string {
	parts := strings.Split(topic, "/")
	if len(parts) != 4 || parts[0] != t.prefix() || parts[1] != "detector" || parts[3] != "smoke" {
		return ""
	}
	return parts[2]
}
