package model

import "github.com/golang-jwt/jwt/v5"

// PlayerClaims are carried by a player code and name the game and player it was issued for
type PlayerClaims struct {
	GameCode string `json:"gameCode"`
	PlayerID string `json:"playerId"`
	jwt.RegisteredClaims
}
