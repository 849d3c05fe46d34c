// Package configs provides embedded configuration templates for docsyn.
//
// Templates are embedded at build time so every distribution carries them.
// They are written by:
//   - `docsyn config init` → .docsyn.yaml in the project root
//   - `docsyn config init --user` → ~/.config/docsyn/config.yaml
//
// Configuration hierarchy (see internal/config Load):
//  1. Hardcoded defaults
//  2. User config (~/.config/docsyn/config.yaml)
//  3. Project config (.docsyn.yaml)
//  4. Environment variables (DOCSYN_*)
package configs

import _ "embed"

// UserConfigTemplate is the template for machine-level configuration.
//
//go:embed user-config.example.yaml
var UserConfigTemplate string

// ProjectConfigTemplate is the template for project-level configuration.
//
//go:embed project-config.example.yaml
var ProjectConfigTemplate string
