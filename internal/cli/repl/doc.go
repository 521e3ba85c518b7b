// Package repl provides the interactive review mode of the evalboard CLI.
//
//   - repl.go: read loop and command dispatch over an analysis session
//   - completer.go: command-name completion
//   - history.go: command history persistence
//
// Analysis results arrive asynchronously and are printed through Notify,
// which shares the output lock with command output.
package repl
