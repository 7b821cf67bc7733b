// Package configs provides the embedded configuration template for scout.
//
// The template is embedded at build time so `scout config init` can write
// it from any distribution (source builds, go install, binary releases).
//
// Configuration hierarchy (see internal/config/config.go Load()):
//  1. Hardcoded defaults (internal/config/config.go NewConfig())
//  2. User config (~/.config/scout/config.yaml)
//  3. File given with --config
//  4. Environment variables (SCOUT_*)
//  5. Command-line flags
//
// To modify the template, edit user-config.example.yaml and rebuild.
package configs

import _ "embed"

// UserConfigTemplate is the commented user configuration.
// Created by: `scout config init` at ~/.config/scout/config.yaml
// Every value it sets is the built-in default.
//
//go:embed user-config.example.yaml
var UserConfigTemplate string
