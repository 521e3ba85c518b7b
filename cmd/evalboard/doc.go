// Package main provides the entry point for evalboard.
//
// evalboard is the terminal host for live chess analysis. It keeps a
// duplex channel open to an analysis service and falls back to single
// requests when the channel is unavailable.
//
// Usage:
//
//	evalboard analyze "r1bqkbnr/pppp1ppp/2n5/4p3/4P3/5N2/PPPP1PPP/RNBQKB1R w KQkq - 2 3"
//	evalboard review game.pgn
//	evalboard play --server http://127.0.0.1:8000
//	evalboard health
package main
