package handler

import (
	"io"
	"net/http"

	"github.com/yndnr/evalboard/internal/core/domain"
	"github.com/yndnr/evalboard/internal/telemetry/logger"
)

// handleAnalyze handles POST /analyze.
func (h *Handler) handleAnalyze(w http.ResponseWriter, r *http.Request) {
	data, err := io.ReadAll(http.MaxBytesReader(w, r.Body, maxBodyBytes))
	if err != nil {
		h.writeError(w, r, domain.ErrInvalidArgument.WithDetails("request body too large"))
		return
	}
	req, err := decodeAnalyzeRequest(data)
	if err != nil {
		h.writeError(w, r, err)
		return
	}

	res, err := h.svc.Analyze(r.Context(), req)
	if err != nil {
		h.writeError(w, r, err)
		return
	}
	logger.L(r.Context()).Debug("analysis served", "position", req.Position.String(), "best_move", res.BestMove)
	h.writeJSON(w, http.StatusOK, res)
}
