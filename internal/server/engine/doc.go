// Package engine drives a UCI chess engine subprocess.
//
// One Engine owns one engine process. Searches are serialized; a search
// that finds the process dead restarts it first. Scores are reported from
// White's point of view regardless of the side to move.
package engine
