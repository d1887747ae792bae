// Package influxdb records optional time-series history: device state
// transitions and smoke-detector readings.
//
// The integration is opt-in via configuration. Writes are batched and
// asynchronous so a slow or absent InfluxDB never stalls a request.
package influxdb
