package httpapi

import (
	"net/http"
	"time"
)

// ServerInfo describes the sync server's capabilities.
type ServerInfo struct {
	APIVersion string                      `json:"apiVersion"`
	ServerTime string                      `json:"serverTime"`
	Entities   map[string]EntityCapability `json:"entities"`
	RateLimit  *RateLimitInfo              `json:"rateLimit,omitempty"`
	Hints      *SyncHints                  `json:"hints,omitempty"`
}

// EntityCapability describes what the server supports per entity kind.
type EntityCapability struct {
	Upload   bool `json:"upload"`
	Download bool `json:"download"`
}

// SyncHints provides recommendations for client behavior
type SyncHints struct {
	RecommendedBatch int `json:"recommendedBatch"`
	BackoffMsOn429   int `json:"backoffMsOn429"`
}

// Info handles GET /v1/sync/info
// Callable without authentication to allow capability discovery.
func (s *Server) Info(w http.ResponseWriter, r *http.Request) {
	all := EntityCapability{Upload: true, Download: true}
	info := ServerInfo{
		APIVersion: "1.0",
		ServerTime: time.Now().UTC().Format(time.RFC3339Nano),
		Entities: map[string]EntityCapability{
			"vehicles":      all,
			"journeys":      all,
			"fuelPurchases": all,
			"expenses":      all,
		},
		RateLimit: &s.RateLimit,
		Hints: &SyncHints{
			RecommendedBatch: 500,
			BackoffMsOn429:   1500,
		},
	}

	writeJSON(w, http.StatusOK, info)
}
