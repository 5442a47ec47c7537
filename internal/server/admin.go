package server

import (
	"encoding/json"
	"net/http"

	"github.com/go-chi/chi/v5"
	"github.com/go-chi/chi/v5/middleware"
	"github.com/go-chi/cors"
	"github.com/prometheus/client_golang/prometheus/promhttp"
)

// roomSummary is the JSON shape returned by GET /rooms, deliberately
// exposing only aggregate counts (no player names or IDs) to match the
// teacher's bounded-cardinality observability discipline.
type roomSummary struct {
	ID          uint32 `json:"id"`
	Status      string `json:"status"`
	Members     int    `json:"members"`
	FrameNumber uint64 `json:"frame_number"`
}

func (s status) String() string {
	if s == statusPlaying {
		return "playing"
	}
	return "waiting"
}

// AdminRouter builds the read-only operator HTTP surface: Prometheus
// metrics, a health check, and a room listing. Pure construction, no
// listener opened here, safe to mount under httptest in tests.
func (reg *Registry) AdminRouter() http.Handler {
	r := chi.NewRouter()
	r.Use(middleware.Recoverer)
	r.Use(cors.Handler(cors.Options{
		AllowedOrigins: []string{"http://localhost:*", "http://127.0.0.1:*"},
		AllowedMethods: []string{"GET"},
	}))

	r.Get("/health", func(w http.ResponseWriter, _ *http.Request) {
		w.WriteHeader(http.StatusOK)
		_, _ = w.Write([]byte("OK"))
	})
	r.Handle("/metrics", promhttp.Handler())
	r.Get("/rooms", reg.handleListRooms)

	return r
}

func (reg *Registry) handleListRooms(w http.ResponseWriter, _ *http.Request) {
	rooms := reg.snapshotRooms()
	out := make([]roomSummary, 0, len(rooms))
	for _, room := range rooms {
		room.mu.Lock()
		out = append(out, roomSummary{
			ID:          room.id,
			Status:      room.status.String(),
			Members:     len(room.clients),
			FrameNumber: room.frameNumber,
		})
		room.mu.Unlock()
	}

	w.Header().Set("Content-Type", "application/json")
	_ = json.NewEncoder(w).Encode(out)
}
