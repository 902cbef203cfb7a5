// Package configs provides embedded configuration templates for notemcp.
//
// Templates are embedded at build time, so 'notemcp config init' works the
// same for source builds and binary releases.
//
// Configuration hierarchy (see internal/config Load):
//  1. Hardcoded defaults (config.NewConfig)
//  2. User config (~/.config/notemcp/config.yaml)
//  3. Project config (.notemcp.yaml)
//  4. Environment variables (NOTEMCP_*)
package configs

import _ "embed"

// UserConfigTemplate is the commented user configuration written by
// 'notemcp config init'. Its values equal the built-in defaults.
//
//go:embed user-config.example.yaml
var UserConfigTemplate string
