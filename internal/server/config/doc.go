// Package config provides the analysis server configuration.
//
//   - spec.go: ServerConfig struct definition
//   - default.go: default values
//   - verify.go: validation of addresses, engine options and paths
//   - loader.go: loading from file, EVALBOARD_SERVER_* variables and overrides
//
// Configuration is loaded via internal/infra/confloader.
package config
