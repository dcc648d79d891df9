package rest

import (
	"net/http"

	"github.com/SamSnead85/622-sub012/internal/config"
	"github.com/SamSnead85/622-sub012/internal/transport/ws"

	"github.com/gorilla/mux"
)

// NewRouter creates the HTTP surface: the game socket endpoint plus a
// health check. Everything else (feeds, messaging, accounts) lives in
// other services.
func NewRouter(cfg *config.Config, wsHandler *ws.Handler) http.Handler {
	r := mux.NewRouter()
	r.Use(corsMiddleware(cfg.CORSOrigins))

	v1 := r.PathPrefix("/v1").Subrouter()
	v1.HandleFunc("/ws", wsHandler.ServeWS).Methods("GET")

	r.HandleFunc("/health", func(w http.ResponseWriter, r *http.Request) {
		w.Header().Set("Content-Type", "application/json")
		w.WriteHeader(http.StatusOK)
		w.Write([]byte(`{"status":"ok"}`))
	}).Methods("GET")

	return r
}

func corsMiddleware(origins string) mux.MiddlewareFunc {
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			w.Header().Set("Access-Control-Allow-Origin", origins)
			w.Header().Set("Access-Control-Allow-Methods", "GET, OPTIONS")
			w.Header().Set("Access-Control-Allow-Headers", "Content-Type, Authorization")

			if r.Method == "OPTIONS" {
				w.WriteHeader(http.StatusOK)
				return
			}
			next.ServeHTTP(w, r)
		})
	}
}
