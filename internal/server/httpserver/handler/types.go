package handler

import (
	"encoding/json"

	"github.com/yndnr/evalboard/internal/core/domain"
)

// AnalyzeRequest is the body of POST /analyze and of each inbound
// duplex channel message. FEN is the legacy name of Position.
type AnalyzeRequest struct {
	Position string `json:"position"`
	FEN      string `json:"fen,omitempty"`
	Depth    int    `json:"depth,omitempty"`
}

// ErrorResponse is the error body.
type ErrorResponse struct {
	Code    string `json:"code"`
	Message string `json:"message"`
}

// HealthResponse is the body of GET /health.
type HealthResponse struct {
	Status        string `json:"status"`
	EngineRunning bool   `json:"engine_running"`
	Time          string `json:"time"`
}

// decodeAnalyzeRequest parses a request body into a domain request.
func decodeAnalyzeRequest(data []byte) (domain.AnalysisRequest, error) {
	var req AnalyzeRequest
	if err := json.Unmarshal(data, &req); err != nil {
		return domain.AnalysisRequest{}, domain.ErrInvalidArgument.WithDetails("request body must be a JSON object")
	}
	pos := req.Position
	if pos == "" {
		pos = req.FEN
	}
	return domain.AnalysisRequest{Position: domain.Position(pos), Depth: req.Depth}, nil
}
