package game

import (
	"fmt"
	"math/rand/v2"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"murdermystery/internal/model"
)

func roster(names ...string) []*model.Player {
	out := make([]*model.Player, len(names))
	for i, n := range names {
		out[i] = model.NewPlayer(n, "code-"+n, n, t0)
	}
	return out
}

func countRoles(players []*model.Player) map[model.Role]int {
	m := make(map[model.Role]int)
	for _, p := range players {
		m[p.Role]++
	}
	return m
}

func TestAssignRoles_Counts(t *testing.T) {
	for n := 3; n <= 20; n++ {
		for k := 1; k <= n/3; k++ {
			t.Run(fmt.Sprintf("n=%d/k=%d", n, k), func(t *testing.T) {
				names := make([]string, n)
				for i := range names {
					names[i] = fmt.Sprintf("P%d", i)
				}
				players := roster(names...)
				rng := rand.New(rand.NewPCG(uint64(n), uint64(k)))

				require.NoError(t, AssignRoles(players, k, model.DefaultSupportOrder, rng))

				counts := countRoles(players)
				assert.Equal(t, k, counts[model.RoleMurderer])

				supportSlots := min(n-k, len(model.DefaultSupportOrder))
				for i, r := range model.DefaultSupportOrder {
					if i < supportSlots {
						assert.Equal(t, 1, counts[r], "support role %s", r)
					} else {
						assert.Zero(t, counts[r], "support role %s", r)
					}
				}
				assert.Equal(t, n-k-supportSlots, counts[model.RoleCivilian])
			})
		}
	}
}

func TestAssignRoles_SixPlayersTwoMurderers(t *testing.T) {
	players := roster("A", "B", "C", "D", "E", "F")
	rng := rand.New(rand.NewPCG(42, 7))

	require.NoError(t, AssignRoles(players, 2, model.DefaultSupportOrder, rng))

	counts := countRoles(players)
	assert.Equal(t, 2, counts[model.RoleMurderer])
	assert.Equal(t, 1, counts[model.RoleReviver])
	assert.Equal(t, 1, counts[model.RoleDetective])
	assert.Equal(t, 1, counts[model.RoleBodyguard])
	assert.Equal(t, 1, counts[model.RoleVigilante])
	assert.Zero(t, counts[model.RoleTroll])
	assert.Zero(t, counts[model.RoleCivilian])
}

func TestAssignRoles_DeterministicWithSeed(t *testing.T) {
	run := func() []model.Role {
		players := roster("A", "B", "C", "D", "E", "F")
		require.NoError(t, AssignRoles(players, 2, model.DefaultSupportOrder, rand.New(rand.NewPCG(1, 2))))
		out := make([]model.Role, len(players))
		for i, p := range players {
			out[i] = p.Role
		}
		return out
	}
	assert.Equal(t, run(), run())
}

func TestAssignRoles_RejectsWithoutMutating(t *testing.T) {
	players := roster("A", "B", "C")
	players[0].Role = model.RoleTroll

	err := AssignRoles(players, 4, model.DefaultSupportOrder, rand.New(rand.NewPCG(1, 1)))
	assert.ErrorIs(t, err, ErrInvalidPlayerCount)
	assert.Equal(t, model.RoleTroll, players[0].Role)
	assert.Equal(t, model.RoleCivilian, players[1].Role)

	assert.ErrorIs(t, AssignRoles(players, 0, model.DefaultSupportOrder, rand.New(rand.NewPCG(1, 1))), ErrInvalidPlayerCount)
}

func TestAssignRoles_ShuffleCoversEveryPosition(t *testing.T) {
	rng := rand.New(rand.NewPCG(9, 9))
	seen := map[string]bool{}
	for i := 0; i < 300; i++ {
		players := roster("A", "B", "C")
		require.NoError(t, AssignRoles(players, 1, nil, rng))
		for _, p := range players {
			if p.Role == model.RoleMurderer {
				seen[p.Name] = true
			}
		}
	}
	assert.Len(t, seen, 3)
}

func TestResolveMurdererCount(t *testing.T) {
	tests := []struct {
		name       string
		configured int
		players    int
		want       int
		wantErr    bool
	}{
		{"explicit in range", 2, 6, 2, false},
		{"explicit above n/3", 3, 6, 0, true},
		{"negative", -1, 6, 0, true},
		{"auto small", 0, 3, 1, false},
		{"auto eight", 0, 8, 2, false},
		{"auto twenty", 0, 20, 5, false},
		{"too few players", 1, 2, 0, true},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got, err := ResolveMurdererCount(tt.configured, tt.players)
			if tt.wantErr {
				assert.ErrorIs(t, err, ErrInvalidPlayerCount)
				return
			}
			require.NoError(t, err)
			assert.Equal(t, tt.want, got)
		})
	}
}
