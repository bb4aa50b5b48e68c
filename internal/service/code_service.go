package service

import (
	"errors"
	"time"

	"github.com/golang-jwt/jwt/v5"

	"murdermystery/internal/model"
)

var ErrInvalidCode = errors.New("invalid or expired player code")

// CodeService issues and verifies player codes. A code is an HS256 token naming the
// game and player, so a request can be routed to its game before any lookup.
type CodeService struct {
	secret []byte
	ttl    time.Duration
	now    func() time.Time
}

// NewCodeService creates a code service signing with secret
func NewCodeService(secret string) *CodeService {
	return &CodeService{
		secret: []byte(secret),
		ttl:    24 * time.Hour,
		now:    time.Now,
	}
}

// Issue creates a game-scoped code for a player
func (s *CodeService) Issue(gameCode, playerID string) (string, error) {
	now := s.now()
	claims := &model.PlayerClaims{
		GameCode: gameCode,
		PlayerID: playerID,
		RegisteredClaims: jwt.RegisteredClaims{
			ID:        playerID,
			IssuedAt:  jwt.NewNumericDate(now),
			ExpiresAt: jwt.NewNumericDate(now.Add(s.ttl)),
		},
	}

	token := jwt.NewWithClaims(jwt.SigningMethodHS256, claims)
	return token.SignedString(s.secret)
}

// Verify checks a player code and returns its claims
func (s *CodeService) Verify(code string) (*model.PlayerClaims, error) {
	token, err := jwt.ParseWithClaims(code, &model.PlayerClaims{}, func(token *jwt.Token) (interface{}, error) {
		return s.secret, nil
	}, jwt.WithValidMethods([]string{jwt.SigningMethodHS256.Alg()}), jwt.WithTimeFunc(s.now))
	if err != nil {
		return nil, ErrInvalidCode
	}

	claims, ok := token.Claims.(*model.PlayerClaims)
	if !ok || !token.Valid {
		return nil, ErrInvalidCode
	}

	return claims, nil
}
