// Package config provides CLI configuration for evalboard.
//
//   - spec.go: CLIConfig struct (~/.evalboard/cli.yaml)
//   - loader.go: layered loading (file, EVALBOARD_* env, flags) and saving
package config
