// Package logging assembles the slog loggers used by shotsync.
//
// Console output is rendered by tint with colour only on terminals; JSON
// output uses ts/level/msg keys so log files can be shipped as-is. Both can
// be written at once through the fanout handler. Context helpers tag lines
// with the run and shot being processed.
package logging
