// Package logging assembles structured slog loggers used by the speakertag
// CLI and the resolution engine.
//
// It owns the console and JSON handlers, parses level names, routes output to
// stdout or log files, and defines the field keys shared across packages so
// resolution decisions carry the same shape wherever they are logged. NewNop
// is available for tests and for callers that pass no logger.
package logging
