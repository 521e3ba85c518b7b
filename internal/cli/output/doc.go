// Package output renders analysis results, game state and move lists for
// the evalboard CLI as text, JSON or YAML.
package output
