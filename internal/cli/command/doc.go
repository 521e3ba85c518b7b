// Package command provides the evalboard CLI commands.
//
// Commands are defined with urfave/cli/v2:
//
//   - root.go: application, global flags, configuration loading
//   - analyze.go: one-shot analysis of a single position
//   - interactive.go: review and play sessions hosted in the REPL
//   - health.go: service health check
//   - config.go: CLI configuration management
//
// Global flags override the configuration file and EVALBOARD_*
// environment variables.
package command
