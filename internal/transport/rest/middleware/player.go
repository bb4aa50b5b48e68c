package middleware

import (
	"context"
	"errors"
	"net/http"
	"strings"

	"github.com/rs/zerolog/log"

	"murdermystery/internal/game"
	"murdermystery/internal/model"
	"murdermystery/internal/service"
)

type contextKey string

const (
	PlayerIDKey contextKey = "playerId"
	GameCodeKey contextKey = "gameCode"
)

// PlayerAuthenticator resolves a player code to its game and player
type PlayerAuthenticator interface {
	Authenticate(ctx context.Context, playerCode string) (*model.Game, *model.Player, error)
}

// PlayerMiddleware identifies the calling player from their player code
type PlayerMiddleware struct {
	auth PlayerAuthenticator
}

// NewPlayerMiddleware creates a new player middleware
func NewPlayerMiddleware(auth PlayerAuthenticator) *PlayerMiddleware {
	return &PlayerMiddleware{auth: auth}
}

// RequirePlayer reads the player code from the Authorization header, the
// X-Player-Code header or the code query param
func (m *PlayerMiddleware) RequirePlayer(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		code := extractPlayerCode(r)
		if code == "" {
			http.Error(w, `{"error":"missing player code"}`, http.StatusUnauthorized)
			return
		}

		g, p, err := m.auth.Authenticate(r.Context(), code)
		if err != nil {
			switch {
			case errors.Is(err, service.ErrInvalidCode), errors.Is(err, game.ErrPlayerNotFound):
				http.Error(w, `{"error":"unknown or expired player code"}`, http.StatusUnauthorized)
			default:
				log.Error().Err(err).Msg("player lookup failed")
				http.Error(w, `{"error":"internal error"}`, http.StatusInternalServerError)
			}
			return
		}

		ctx := r.Context()
		ctx = context.WithValue(ctx, PlayerIDKey, p.ID)
		ctx = context.WithValue(ctx, GameCodeKey, g.Code)
		next.ServeHTTP(w, r.WithContext(ctx))
	})
}

// GetPlayerID extracts player ID from context
func GetPlayerID(ctx context.Context) string {
	if v := ctx.Value(PlayerIDKey); v != nil {
		return v.(string)
	}
	return ""
}

// GetGameCode extracts game code from context
func GetGameCode(ctx context.Context) string {
	if v := ctx.Value(GameCodeKey); v != nil {
		return v.(string)
	}
	return ""
}

func extractPlayerCode(r *http.Request) string {
	if code := extractBearerToken(r); code != "" {
		return code
	}
	if code := r.Header.Get("X-Player-Code"); code != "" {
		return code
	}
	return r.URL.Query().Get("code")
}

func extractBearerToken(r *http.Request) string {
	auth := r.Header.Get("Authorization")
	if auth == "" {
		return ""
	}
	parts := strings.SplitN(auth, " ", 2)
	if len(parts) != 2 || !strings.EqualFold(parts[0], "bearer") {
		return ""
	}
	return parts[1]
}
