// Package logging builds slog loggers for the CLI and pipeline components.
// Loggers are constructed once from configuration and injected; no package
// configures logging as an import side effect.
package logging
