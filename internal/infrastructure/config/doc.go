// Package config loads and validates the YAML configuration for the
// smart-home backend. Secrets (JWT signing key, broker credentials,
// InfluxDB token) can be supplied via SMARTHOME_* environment variables
// so they never need to live in the config file.
package config
