// Package confloader loads layered configuration with koanf.
//
// Sources, later overriding earlier:
//
//  1. Defaults (the target struct as passed in)
//  2. YAML configuration file
//  3. Environment variables
//  4. Explicit values (command-line flags)
//
// Environment variables map to keys by stripping the prefix, lowercasing,
// and reading a double underscore as a nesting separator:
// EVALBOARD_RECONNECT__MAX_ATTEMPTS sets reconnect.max_attempts.
//
// Watcher reports changes to configuration files via fsnotify.
package confloader
