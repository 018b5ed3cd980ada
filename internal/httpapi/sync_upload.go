package httpapi

import (
	"encoding/json"
	"net/http"

	"github.com/rotalog/rotalog-api/internal/auth"
	"github.com/rotalog/rotalog-api/internal/syncx"
	"github.com/rs/zerolog/log"
)

type uploadResp struct {
	Success   bool          `json:"success"`
	Message   string        `json:"message"`
	Processed syncx.Outcome `json:"processed"`
	Timestamp int64         `json:"timestamp"`
}

// UploadBatch handles POST /v1/sync/upload: merges a batch of records
// collected offline. Per-record conflicts and failures are reported in
// the merge outcome; only a whole-transaction failure becomes a 500.
func (s *Server) UploadBatch(w http.ResponseWriter, r *http.Request) {
	userID := auth.UserID(r.Context())
	if userID == "" {
		writeError(w, r, http.StatusUnauthorized, "user not authenticated")
		return
	}

	var env syncx.Envelope
	if err := json.NewDecoder(r.Body).Decode(&env); err != nil {
		log.Warn().Err(err).Msg("invalid upload request body")
		writeError(w, r, http.StatusBadRequest, "invalid json")
		return
	}

	if env.Data == nil || env.Metadata == nil {
		writeError(w, r, http.StatusBadRequest, "data and metadata are required")
		return
	}

	outcome, err := s.Engine.Merge(r.Context(), userID, env)
	if err != nil {
		log.Error().Err(err).Str("userId", userID).Msg("batch merge failed")
		writeError(w, r, http.StatusInternalServerError, "internal server error")
		return
	}

	writeJSON(w, http.StatusOK, uploadResp{
		Success:   true,
		Message:   "offline data synchronized",
		Processed: outcome,
		Timestamp: syncx.NowMs(),
	})
}
