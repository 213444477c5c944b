// Package config loads service configuration from environment variables.
// All variables use the MERIDIAN_ prefix.
package config
