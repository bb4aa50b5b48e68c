// Package game holds the rules of the murder mystery: role assignment, ability
// resolution, voting thresholds and win detection. Everything here is pure and works on
// an in-memory model.Game; loading, locking and persisting belong to the service layer.
package game

import (
	"fmt"
	"math"
	"math/rand/v2"

	"murdermystery/internal/model"
)

// AutoMurdererCount derives an aggressor count from the roster size when the host
// left it unset: a quarter of the players, clamped to [1, n/3].
func AutoMurdererCount(n int) int {
	k := int(math.Round(float64(n) / 4))
	return max(1, min(k, n/3))
}

// ResolveMurdererCount validates the configured count for n players. A host-specified
// count outside [1, n/3] is rejected rather than silently changed.
func ResolveMurdererCount(configured, n int) (int, error) {
	if n < model.MinPlayers {
		return 0, fmt.Errorf("%w: need at least %d players, got %d", ErrInvalidPlayerCount, model.MinPlayers, n)
	}
	if configured == 0 {
		return AutoMurdererCount(n), nil
	}
	if configured < 1 || configured > n/3 {
		return 0, fmt.Errorf("%w: %d murderers for %d players (allowed 1..%d)", ErrInvalidPlayerCount, configured, n, n/3)
	}
	return configured, nil
}

// AssignRoles shuffles players uniformly and hands out roles: the first k become
// murderers, the next ones take support roles in supportOrder (one each), the rest are
// civilians. Nothing is modified when k is out of range.
func AssignRoles(players []*model.Player, k int, supportOrder []model.Role, rng *rand.Rand) error {
	n := len(players)
	if k < 1 || k > n {
		return fmt.Errorf("%w: %d murderers for %d players", ErrInvalidPlayerCount, k, n)
	}

	order := make([]int, n)
	for i := range order {
		order[i] = i
	}
	// Fisher-Yates
	for i := n - 1; i > 0; i-- {
		j := rng.IntN(i + 1)
		order[i], order[j] = order[j], order[i]
	}

	for pos, idx := range order {
		p := players[idx]
		switch {
		case pos < k:
			p.Role = model.RoleMurderer
		case pos-k < len(supportOrder):
			p.Role = supportOrder[pos-k]
		default:
			p.Role = model.RoleCivilian
		}
	}
	return nil
}
