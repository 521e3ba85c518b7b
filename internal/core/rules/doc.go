// Package rules adapts the notnil/chess rules engine to evalboard's domain.
//
// The rules engine is used as a black box: parse a transcript into moves,
// apply a move to a position, and report the game status of a position.
// All operations are pure functions over domain.Position values.
package rules
