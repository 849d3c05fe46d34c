// Package logging configures structured slog output for docsyn.
//
// Interactive commands log to stderr. The serve command logs to a rotating
// JSON file under ~/.docsyn/logs/ only, since stdout carries the MCP
// protocol. The logs command reads that file back.
package logging
