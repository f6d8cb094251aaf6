// Package config loads, normalizes, and validates ytscribe configuration
// from TOML. Defaults come from Default(); Load layers a config file over
// them and expands all paths.
package config
