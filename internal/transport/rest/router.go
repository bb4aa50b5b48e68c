package rest

import (
	"net/http"
	"strings"

	"github.com/gorilla/mux"

	"murdermystery/internal/service"
	"murdermystery/internal/transport/rest/handler"
	"murdermystery/internal/transport/rest/middleware"
	"murdermystery/internal/transport/ws"
)

// Container holds all dependencies for the router
type Container struct {
	GameService *service.GameService
	VoteService *service.VoteService
	WSHub       *ws.Hub
	CORSOrigins []string
}

// ParseOrigins splits a comma separated origin list
func ParseOrigins(raw string) []string {
	var out []string
	for _, o := range strings.Split(raw, ",") {
		if o = strings.TrimSpace(o); o != "" {
			out = append(out, o)
		}
	}
	if len(out) == 0 {
		return []string{"*"}
	}
	return out
}

// NewRouter creates the API router with all endpoints
func NewRouter(c *Container) http.Handler {
	r := mux.NewRouter()

	// Initialize handlers
	gameHandler := handler.NewGameHandler(c.GameService, c.VoteService)
	playerHandler := handler.NewPlayerHandler(c.GameService, c.VoteService)
	wsHandler := ws.NewHandler(c.WSHub, c.GameService, c.CORSOrigins)

	playerMW := middleware.NewPlayerMiddleware(c.GameService)

	// CORS middleware (apply first)
	r.Use(corsMiddleware(c.CORSOrigins))

	// Health check
	r.HandleFunc("/health", func(w http.ResponseWriter, r *http.Request) {
		w.Header().Set("Content-Type", "application/json")
		w.WriteHeader(http.StatusOK)
		w.Write([]byte(`{"status":"ok"}`))
	}).Methods("GET")

	// API v1 routes
	v1 := r.PathPrefix("/v1").Subrouter()

	// WebSocket routes (player sockets carry the player code in the query)
	v1.HandleFunc("/ws/games/{code}/host", wsHandler.HostWS).Methods("GET")
	v1.HandleFunc("/ws/games/{code}/player", wsHandler.PlayerWS).Methods("GET")

	// Host routes
	v1.HandleFunc("/games", gameHandler.Create).Methods("POST", "OPTIONS")
	v1.HandleFunc("/games", gameHandler.List).Methods("GET", "OPTIONS")
	v1.HandleFunc("/games/start", gameHandler.StartSession).Methods("POST", "OPTIONS")
	v1.HandleFunc("/games/{code}", gameHandler.Get).Methods("GET", "OPTIONS")
	v1.HandleFunc("/games/{code}", gameHandler.Delete).Methods("DELETE", "OPTIONS")
	v1.HandleFunc("/games/{code}/stats", gameHandler.Stats).Methods("GET", "OPTIONS")
	v1.HandleFunc("/games/{code}/join", gameHandler.Join).Methods("POST", "OPTIONS")
	v1.HandleFunc("/games/{code}/start", gameHandler.Start).Methods("POST", "OPTIONS")
	v1.HandleFunc("/games/{code}/end", gameHandler.End).Methods("POST", "OPTIONS")
	v1.HandleFunc("/games/{code}/reset", gameHandler.Reset).Methods("POST", "OPTIONS")
	v1.HandleFunc("/games/{code}/kill", gameHandler.Kill).Methods("POST", "OPTIONS")
	v1.HandleFunc("/games/{code}/votes", gameHandler.Votes).Methods("GET", "OPTIONS")
	v1.HandleFunc("/games/{code}/votes", gameHandler.ResetVotes).Methods("DELETE", "OPTIONS")

	// Player routes (require a player code)
	playerRoutes := v1.PathPrefix("/me").Subrouter()
	playerRoutes.Use(playerMW.RequirePlayer)

	playerRoutes.HandleFunc("", playerHandler.Me).Methods("GET", "OPTIONS")
	playerRoutes.HandleFunc("/abilities/{ability}", playerHandler.CheckAbility).Methods("GET", "OPTIONS")
	playerRoutes.HandleFunc("/abilities/{ability}", playerHandler.UseAbility).Methods("POST", "OPTIONS")
	playerRoutes.HandleFunc("/votes", playerHandler.Vote).Methods("POST", "OPTIONS")

	return r
}

func corsMiddleware(origins []string) mux.MiddlewareFunc {
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			origin := r.Header.Get("Origin")
			switch {
			case len(origins) == 1 && origins[0] == "*":
				w.Header().Set("Access-Control-Allow-Origin", "*")
			case origin != "" && ws.OriginAllowed(origins, origin):
				w.Header().Set("Access-Control-Allow-Origin", origin)
				w.Header().Add("Vary", "Origin")
			}
			w.Header().Set("Access-Control-Allow-Methods", "GET, POST, PUT, DELETE, OPTIONS")
			w.Header().Set("Access-Control-Allow-Headers", "Content-Type, Authorization, X-Player-Code")

			if r.Method == "OPTIONS" {
				w.WriteHeader(http.StatusOK)
				return
			}

			next.ServeHTTP(w, r)
		})
	}
}
