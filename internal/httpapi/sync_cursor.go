package httpapi

import (
	"net/http"

	"github.com/rotalog/rotalog-api/internal/auth"
	"github.com/rotalog/rotalog-api/internal/syncx"
	"github.com/rs/zerolog/log"
)

type lastSyncResp struct {
	Success           bool   `json:"success"`
	LastSyncTimestamp int64  `json:"lastSyncTimestamp"`
	LastSyncDate      string `json:"lastSyncDate"`
}

// LastSyncTimestamp handles GET /v1/sync/last-sync-timestamp: the
// cursor a client should use for its next incremental download.
func (s *Server) LastSyncTimestamp(w http.ResponseWriter, r *http.Request) {
	userID := auth.UserID(r.Context())
	if userID == "" {
		writeError(w, r, http.StatusUnauthorized, "user not authenticated")
		return
	}

	ms, err := s.Cursor.LastSync(r.Context(), userID)
	if err != nil {
		log.Error().Err(err).Str("userId", userID).Msg("cursor computation failed")
		writeError(w, r, http.StatusInternalServerError, "internal server error")
		return
	}

	writeJSON(w, http.StatusOK, lastSyncResp{
		Success:           true,
		LastSyncTimestamp: ms,
		LastSyncDate:      syncx.RFC3339(ms),
	})
}
