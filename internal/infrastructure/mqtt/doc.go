// Package mqtt wraps paho.mqtt.golang for the smoke-detector transport.
//
// The service subscribes to per-detector reading topics and announces its
// own availability on a retained status topic. Connection loss is handled
// by paho's auto-reconnect; tracked subscriptions are re-established on
// every reconnect.
package mqtt
