package rest

import (
	"bytes"
	"encoding/json"
	"fmt"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/alicebob/miniredis/v2"
	"github.com/redis/go-redis/v9"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"murdermystery/internal/cache"
	"murdermystery/internal/model"
	"murdermystery/internal/repository"
	"murdermystery/internal/service"
	"murdermystery/internal/transport/ws"
)

func newTestRouter(t *testing.T) http.Handler {
	t.Helper()
	mr := miniredis.RunT(t)
	client := redis.NewClient(&redis.Options{Addr: mr.Addr()})
	t.Cleanup(func() { client.Close() })

	votes := cache.NewVoteCache(client)
	games := service.NewGameService(
		repository.NewMemoryGameRepo(),
		votes,
		cache.NewSnapshotCache(client, time.Minute),
		service.NewCodeService("router-test"),
	)
	voteSvc := service.NewVoteService(games, votes)

	hub := ws.NewHub()
	games.SetBroadcaster(hub)
	voteSvc.SetBroadcaster(hub)

	return NewRouter(&Container{
		GameService: games,
		VoteService: voteSvc,
		WSHub:       hub,
		CORSOrigins: []string{"http://party.local"},
	})
}

func do(t *testing.T, h http.Handler, method, path string, body interface{}, playerCode string) *httptest.ResponseRecorder {
	t.Helper()
	var buf bytes.Buffer
	if body != nil {
		require.NoError(t, json.NewEncoder(&buf).Encode(body))
	}
	req := httptest.NewRequest(method, path, &buf)
	req.Header.Set("Content-Type", "application/json")
	if playerCode != "" {
		req.Header.Set("Authorization", "Bearer "+playerCode)
	}
	rec := httptest.NewRecorder()
	h.ServeHTTP(rec, req)
	return rec
}

func decode(t *testing.T, rec *httptest.ResponseRecorder, v interface{}) {
	t.Helper()
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), v), rec.Body.String())
}

func TestHealth(t *testing.T) {
	h := newTestRouter(t)
	rec := do(t, h, http.MethodGet, "/health", nil, "")
	assert.Equal(t, http.StatusOK, rec.Code)
	assert.JSONEq(t, `{"status":"ok"}`, rec.Body.String())
}

func TestLobbyLifecycle(t *testing.T) {
	h := newTestRouter(t)

	rec := do(t, h, http.MethodPost, "/v1/games", nil, "")
	require.Equal(t, http.StatusCreated, rec.Code, rec.Body.String())
	var created map[string]string
	decode(t, rec, &created)
	code := created["gameCode"]
	require.Len(t, code, 6)

	var joined []model.PlayerJoinResponse
	for _, name := range []string{"Ada", "Grace", "Linus"} {
		rec = do(t, h, http.MethodPost, "/v1/games/"+code+"/join", model.JoinRequest{Name: name}, "")
		require.Equal(t, http.StatusOK, rec.Code, rec.Body.String())
		var resp model.PlayerJoinResponse
		decode(t, rec, &resp)
		joined = append(joined, resp)
	}

	rec = do(t, h, http.MethodPost, "/v1/games/"+code+"/join", model.JoinRequest{Name: "ada"}, "")
	assert.Equal(t, http.StatusBadRequest, rec.Code)

	rec = do(t, h, http.MethodPost, "/v1/games/"+code+"/start", nil, "")
	require.Equal(t, http.StatusOK, rec.Code, rec.Body.String())

	rec = do(t, h, http.MethodPost, "/v1/games/"+code+"/join", model.JoinRequest{Name: "Late"}, "")
	assert.Equal(t, http.StatusConflict, rec.Code)

	rec = do(t, h, http.MethodGet, "/v1/games/"+code, nil, "")
	require.Equal(t, http.StatusOK, rec.Code)
	var view model.SessionView
	decode(t, rec, &view)
	assert.Equal(t, model.GameActive, view.Status)
	assert.Len(t, view.Players, 3)

	rec = do(t, h, http.MethodGet, "/v1/me", nil, joined[0].Code)
	require.Equal(t, http.StatusOK, rec.Code, rec.Body.String())
	var self model.SelfView
	decode(t, rec, &self)
	assert.Equal(t, joined[0].PlayerID, self.Player.ID)
	assert.NotEmpty(t, self.RoleLabel)

	rec = do(t, h, http.MethodGet, "/v1/games/"+code+"/stats", nil, "")
	require.Equal(t, http.StatusOK, rec.Code)
	var stats model.GameStats
	decode(t, rec, &stats)
	assert.Equal(t, 3, stats.AlivePlayers)
	assert.True(t, stats.GameStarted)

	rec = do(t, h, http.MethodPost, "/v1/games/"+code+"/end", nil, "")
	require.Equal(t, http.StatusOK, rec.Code)
	rec = do(t, h, http.MethodPost, "/v1/games/"+code+"/end", nil, "")
	assert.Equal(t, http.StatusConflict, rec.Code)

	rec = do(t, h, http.MethodPost, "/v1/games/"+code+"/reset", nil, "")
	require.Equal(t, http.StatusOK, rec.Code)
	var reset map[string]string
	decode(t, rec, &reset)
	assert.Equal(t, string(model.GameLobby), reset["status"])
	assert.NotEqual(t, created["gameId"], reset["gameId"])

	rec = do(t, h, http.MethodDelete, "/v1/games/"+code, nil, "")
	assert.Equal(t, http.StatusNoContent, rec.Code)
	rec = do(t, h, http.MethodGet, "/v1/games/"+code, nil, "")
	assert.Equal(t, http.StatusNotFound, rec.Code)
}

func startSession(t *testing.T, h http.Handler, n int) model.SessionStart {
	t.Helper()
	names := make([]string, n)
	for i := range names {
		names[i] = fmt.Sprintf("Guest %d", i+1)
	}
	rec := do(t, h, http.MethodPost, "/v1/games/start", map[string]interface{}{"players": names}, "")
	require.Equal(t, http.StatusCreated, rec.Code, rec.Body.String())
	var start model.SessionStart
	decode(t, rec, &start)
	return start
}

func TestStartSession_Validation(t *testing.T) {
	h := newTestRouter(t)

	rec := do(t, h, http.MethodPost, "/v1/games/start", map[string]interface{}{"players": []string{"A", "B"}}, "")
	assert.Equal(t, http.StatusBadRequest, rec.Code)

	rec = do(t, h, http.MethodPost, "/v1/games/start", map[string]interface{}{"players": []string{"A", "B", "a"}}, "")
	assert.Equal(t, http.StatusBadRequest, rec.Code)

	start := startSession(t, h, 4)
	assert.Len(t, start.Players, 4)
	assert.True(t, start.Game.IsActive)
}

func TestPlayerRoutes_RequireCode(t *testing.T) {
	h := newTestRouter(t)

	rec := do(t, h, http.MethodGet, "/v1/me", nil, "")
	assert.Equal(t, http.StatusUnauthorized, rec.Code)

	rec = do(t, h, http.MethodGet, "/v1/me", nil, "not-a-code")
	assert.Equal(t, http.StatusUnauthorized, rec.Code)
}

func TestVotesThroughHTTP(t *testing.T) {
	h := newTestRouter(t)
	start := startSession(t, h, 5)
	code := start.Game.Code

	voter := start.Players[0]
	target := start.Players[1]

	rec := do(t, h, http.MethodPost, "/v1/me/votes", map[string]string{"targetId": target.PlayerID}, voter.Code)
	require.Equal(t, http.StatusOK, rec.Code, rec.Body.String())
	var out model.VoteOutcome
	decode(t, rec, &out)
	assert.True(t, out.Accepted)
	assert.False(t, out.Eliminated)

	rec = do(t, h, http.MethodPost, "/v1/me/votes", map[string]string{"targetId": target.PlayerID}, voter.Code)
	require.Equal(t, http.StatusOK, rec.Code)
	decode(t, rec, &out)
	assert.False(t, out.Accepted)
	assert.Equal(t, "you have already voted", out.Message)

	rec = do(t, h, http.MethodPost, "/v1/me/votes", map[string]string{}, voter.Code)
	assert.Equal(t, http.StatusBadRequest, rec.Code)

	rec = do(t, h, http.MethodGet, "/v1/games/"+code+"/votes", nil, "")
	require.Equal(t, http.StatusOK, rec.Code)
	var results struct {
		Results []model.VoteTally `json:"results"`
	}
	decode(t, rec, &results)
	require.Len(t, results.Results, 1)
	assert.Equal(t, target.PlayerID, results.Results[0].TargetID)
	assert.Equal(t, 1, results.Results[0].Count)

	rec = do(t, h, http.MethodDelete, "/v1/games/"+code+"/votes", nil, "")
	assert.Equal(t, http.StatusNoContent, rec.Code)
	rec = do(t, h, http.MethodGet, "/v1/games/"+code+"/votes", nil, "")
	decode(t, rec, &results)
	assert.Empty(t, results.Results)
}

func TestAbilityRoutes(t *testing.T) {
	h := newTestRouter(t)
	start := startSession(t, h, 4)

	p := start.Players[0]
	rec := do(t, h, http.MethodGet, "/v1/me/abilities/revive", nil, p.Code)
	require.Equal(t, http.StatusOK, rec.Code, rec.Body.String())
	var check model.UseCheck
	decode(t, rec, &check)

	rec = do(t, h, http.MethodPost, "/v1/me/abilities/revive", map[string]string{"targetId": start.Players[1].PlayerID}, p.Code)
	require.Equal(t, http.StatusOK, rec.Code, rec.Body.String())
	var res model.AbilityResult
	decode(t, rec, &res)
	// Nobody is dead yet, so reviving always fails whatever the role.
	assert.False(t, res.Success)
}

func TestAbilityRoutes_UnknownAbility(t *testing.T) {
	h := newTestRouter(t)
	start := startSession(t, h, 4)

	p := start.Players[0]
	rec := do(t, h, http.MethodGet, "/v1/me/abilities/fireball", nil, p.Code)
	assert.Equal(t, http.StatusBadRequest, rec.Code)
	rec = do(t, h, http.MethodPost, "/v1/me/abilities/fireball", map[string]string{"targetId": start.Players[1].PlayerID}, p.Code)
	assert.Equal(t, http.StatusBadRequest, rec.Code)
}

func TestMe_DoesNotRevealBodyguard(t *testing.T) {
	h := newTestRouter(t)
	rec := do(t, h, http.MethodPost, "/v1/games/start", map[string]interface{}{
		"players":  []string{"Ada", "Bo", "Cy", "Di"},
		"settings": map[string]interface{}{"murdererCount": 1, "supportRoles": []string{"bodyguard"}},
	}, "")
	require.Equal(t, http.StatusCreated, rec.Code, rec.Body.String())
	var start model.SessionStart
	decode(t, rec, &start)

	codes := make(map[string]string)
	for _, p := range start.Players {
		codes[p.PlayerID] = p.Code
	}
	var guard, ward string
	for _, p := range start.Game.Players {
		switch {
		case p.Role == model.RoleBodyguard:
			guard = p.ID
		case p.Role == model.RoleCivilian && ward == "":
			ward = p.ID
		}
	}
	require.NotEmpty(t, guard)
	require.NotEmpty(t, ward)

	rec = do(t, h, http.MethodPost, "/v1/me/abilities/protect", map[string]string{"targetId": ward}, codes[guard])
	require.Equal(t, http.StatusOK, rec.Code, rec.Body.String())
	var res model.AbilityResult
	decode(t, rec, &res)
	require.True(t, res.Success, res.Message)

	rec = do(t, h, http.MethodGet, "/v1/me", nil, codes[ward])
	require.Equal(t, http.StatusOK, rec.Code, rec.Body.String())
	assert.NotContains(t, rec.Body.String(), "protectedBy")
	assert.NotContains(t, rec.Body.String(), "protectionExpiresAt")
}

func TestKill_RequiresBothIDs(t *testing.T) {
	h := newTestRouter(t)
	start := startSession(t, h, 4)

	rec := do(t, h, http.MethodPost, "/v1/games/"+start.Game.Code+"/kill", map[string]string{"victimId": start.Players[0].PlayerID}, "")
	assert.Equal(t, http.StatusBadRequest, rec.Code)
}

func TestCORS(t *testing.T) {
	h := newTestRouter(t)

	req := httptest.NewRequest(http.MethodOptions, "/v1/games", nil)
	req.Header.Set("Origin", "http://party.local")
	rec := httptest.NewRecorder()
	h.ServeHTTP(rec, req)
	assert.Equal(t, http.StatusOK, rec.Code)
	assert.Equal(t, "http://party.local", rec.Header().Get("Access-Control-Allow-Origin"))

	req = httptest.NewRequest(http.MethodOptions, "/v1/me", nil)
	req.Header.Set("Origin", "http://elsewhere.local")
	rec = httptest.NewRecorder()
	h.ServeHTTP(rec, req)
	assert.Equal(t, http.StatusOK, rec.Code)
	assert.Empty(t, rec.Header().Get("Access-Control-Allow-Origin"))
}

func TestParseOrigins(t *testing.T) {
	assert.Equal(t, []string{"*"}, ParseOrigins(""))
	assert.Equal(t, []string{"http://a", "http://b"}, ParseOrigins(" http://a, http://b ,"))
}
