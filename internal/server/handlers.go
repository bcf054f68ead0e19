package server

import (
	"context"
	"encoding/json"
	"errors"
	"io"
	"net/http"

	"github.com/go-playground/validator/v10"

	"github.com/refaudit/citation-verification-service/internal/verify"
)

// verifyRequest is the JSON request body for verifying a reference list.
type verifyRequest struct {
	// References is the free-text reference list, one citation per line.
	References string `json:"references" validate:"required"`
	// Style names the citation style to check against; empty means the
	// configured default.
	Style string `json:"style,omitempty" validate:"omitempty,oneof=apa"`
}

// verifyCitations handles POST /api/v1/verifications.
// It runs the full verification pipeline over the submitted reference
// list and returns per-citation results plus the batch summary.
func (s *Server) verifyCitations(w http.ResponseWriter, r *http.Request) {
	ctx := r.Context()

	defer r.Body.Close()
	body, err := io.ReadAll(io.LimitReader(r.Body, s.maxBatchBytes+1))
	if err != nil {
		writeError(w, http.StatusBadRequest, "failed to read request body")
		return
	}
	if int64(len(body)) > s.maxBatchBytes {
		writeError(w, http.StatusRequestEntityTooLarge, "request body too large")
		return
	}

	var req verifyRequest
	if err := json.Unmarshal(body, &req); err != nil {
		writeError(w, http.StatusBadRequest, "invalid JSON request body")
		return
	}

	if err := s.validate.Struct(&req); err != nil {
		var verrs validator.ValidationErrors
		if errors.As(err, &verrs) && len(verrs) > 0 {
			switch verrs[0].Field() {
			case "References":
				writeError(w, http.StatusBadRequest, "references is required")
			case "Style":
				writeError(w, http.StatusBadRequest, "unsupported style: "+req.Style)
			default:
				writeError(w, http.StatusBadRequest, "invalid request")
			}
			return
		}
		writeError(w, http.StatusBadRequest, "invalid request")
		return
	}

	style := verify.Style(req.Style)
	if style == "" {
		style = s.defaultStyle
	}

	batch, err := s.verifier.Verify(ctx, req.References, style)
	if err != nil {
		if errors.Is(err, context.Canceled) && ctx.Err() != nil {
			// Client went away; nothing left to write to.
			return
		}
		s.logger.Error().Err(err).Msg("verification batch failed")
		writeError(w, http.StatusServiceUnavailable, "verification interrupted")
		return
	}

	writeJSON(w, http.StatusOK, batchToResponse(batch))
}
