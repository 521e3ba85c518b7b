// Package domain defines the core domain models for evalboard.
//
// Domain models are pure values without IO dependencies:
//
//   - Position: serialized board state (FEN)
//   - Move / MoveList: parsed moves of a loaded game
//   - AnalysisResult: evaluation returned by the analysis service
//   - ConnectionState: lifecycle of the analysis channel
//   - Errors: domain error taxonomy with stable codes
package domain
