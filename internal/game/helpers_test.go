package game

import (
	"fmt"
	"time"

	"murdermystery/internal/model"
)

var t0 = time.Date(2026, 12, 24, 20, 0, 0, 0, time.UTC)

func seqID() func() string {
	n := 0
	return func() string {
		n++
		return fmt.Sprintf("ev-%d", n)
	}
}

// activeGame builds a running game with one player per role, named p1..pn
func activeGame(roles ...model.Role) *model.Game {
	g := &model.Game{
		ID:        "g1",
		Code:      "ABCDEF",
		Status:    model.GameActive,
		Settings:  model.GameSettings{}.WithDefaults(),
		StartedAt: &t0,
	}
	for i, r := range roles {
		id := fmt.Sprintf("p%d", i+1)
		p := model.NewPlayer(id, "code-"+id, id, t0)
		p.Role = r
		g.Players = append(g.Players, p)
	}
	return g
}
