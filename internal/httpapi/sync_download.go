package httpapi

import (
	"net/http"

	"github.com/rotalog/rotalog-api/internal/auth"
	"github.com/rotalog/rotalog-api/internal/syncx"
	"github.com/rs/zerolog/log"
)

type downloadResp struct {
	Success bool           `json:"success"`
	Data    syncx.SyncData `json:"data"`
}

// DownloadInitial handles GET /v1/sync/download/initial: the full
// snapshot a fresh device starts from. Soft-deleted records are not
// included.
func (s *Server) DownloadInitial(w http.ResponseWriter, r *http.Request) {
	userID := auth.UserID(r.Context())
	if userID == "" {
		writeError(w, r, http.StatusUnauthorized, "user not authenticated")
		return
	}

	data, err := s.Download.Initial(r.Context(), userID)
	if err != nil {
		log.Error().Err(err).Str("userId", userID).Msg("initial download failed")
		writeError(w, r, http.StatusInternalServerError, "internal server error")
		return
	}

	log.Info().
		Str("userId", userID).
		Int("totalRecords", data.Metadata.TotalRecords).
		Msg("initial sync served")
	writeJSON(w, http.StatusOK, downloadResp{Success: true, Data: data})
}

// DownloadIncremental handles GET /v1/sync/download/incremental?lastSync=<epoch-ms>:
// everything changed strictly after the client's cursor, tombstones
// included so deletions propagate.
func (s *Server) DownloadIncremental(w http.ResponseWriter, r *http.Request) {
	userID := auth.UserID(r.Context())
	if userID == "" {
		writeError(w, r, http.StatusUnauthorized, "user not authenticated")
		return
	}

	raw := r.URL.Query().Get("lastSync")
	if raw == "" {
		writeError(w, r, http.StatusBadRequest, "lastSync query parameter is required")
		return
	}
	sinceMs, ok := syncx.ParseTimeToMs(raw)
	if !ok {
		writeError(w, r, http.StatusBadRequest, "lastSync is not a valid timestamp")
		return
	}

	data, err := s.Download.Incremental(r.Context(), userID, sinceMs)
	if err != nil {
		log.Error().Err(err).Str("userId", userID).Msg("incremental download failed")
		writeError(w, r, http.StatusInternalServerError, "internal server error")
		return
	}

	log.Info().
		Str("userId", userID).
		Int64("lastSyncMs", sinceMs).
		Int("totalRecords", data.Metadata.TotalRecords).
		Msg("incremental sync served")
	writeJSON(w, http.StatusOK, downloadResp{Success: true, Data: data})
}
