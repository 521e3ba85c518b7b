// Command evalboard-server runs the remote analysis service.
//
// It drives a UCI engine (Stockfish by default) and serves analyses over
// POST /analyze and the GET /ws duplex channel. Results are cached in
// Badger and scores are reported from White's point of view.
//
// Usage:
//
//	evalboard-server [-config FILE] [-version]
//
// Every setting can also be given as an environment variable, e.g.
// EVALBOARD_SERVER_ENGINE__PATH=/usr/bin/stockfish.
package main
