// Package dictionaries bundles the synonym dictionaries shipped with docsyn.
package dictionaries

import "embed"

// FS holds every bundled dictionary as <name>.json.
//
//go:embed *.json
var FS embed.FS
