// Package tlsroots loads TLS material for both ends of the analysis link.
//
//   - roots.go: the CLI's client config, system roots plus an optional CA
//     file for self-signed analysis servers
//   - watcher.go: the server certificate, reloaded when its files change
package tlsroots
