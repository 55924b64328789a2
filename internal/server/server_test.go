package server_test

import (
	"bytes"
	"encoding/json"
	"fmt"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/dmarve/statekeeper/internal/game/tx"
	"github.com/dmarve/statekeeper/internal/model"
	"github.com/dmarve/statekeeper/internal/server"
	"github.com/dmarve/statekeeper/internal/snapshot"
	"github.com/dmarve/statekeeper/internal/testutil"
	"github.com/dmarve/statekeeper/internal/world"
)

type testAPI struct {
	srv *httptest.Server
}

func newTestAPI(t *testing.T) *testAPI {
	t.Helper()
	cfg := testutil.Config()
	store, err := snapshot.NewStore(t.TempDir())
	require.NoError(t, err)
	require.NoError(t, store.Save(testutil.State(cfg)))

	w := world.New(cfg, tx.New(cfg, testutil.AdminKey), store, model.DefaultTxCacheLimit)
	require.NoError(t, w.Restore())

	srv := httptest.NewServer(server.New(w, false, nil).Routes())
	t.Cleanup(srv.Close)
	return &testAPI{srv: srv}
}

func (a *testAPI) get(t *testing.T, path, token string) (*http.Response, []byte) {
	t.Helper()
	req, err := http.NewRequest(http.MethodGet, a.srv.URL+path, nil)
	require.NoError(t, err)
	if token != "" {
		req.Header.Set("Authorization", "Bearer "+token)
	}
	return a.do(t, req)
}

func (a *testAPI) postTx(t *testing.T, instanceID, token string, body map[string]any) (*http.Response, []byte) {
	t.Helper()
	if _, ok := body["gameInstanceId"]; !ok {
		body["gameInstanceId"] = instanceID
	}
	raw, err := json.Marshal(body)
	require.NoError(t, err)
	req, err := http.NewRequest(http.MethodPost, fmt.Sprintf("%s/%s/tx", a.srv.URL, instanceID), bytes.NewReader(raw))
	require.NoError(t, err)
	if token != "" {
		req.Header.Set("Authorization", "Bearer "+token)
	}
	return a.do(t, req)
}

func (a *testAPI) do(t *testing.T, req *http.Request) (*http.Response, []byte) {
	t.Helper()
	resp, err := a.srv.Client().Do(req)
	require.NoError(t, err)
	defer resp.Body.Close()
	var buf bytes.Buffer
	_, err = buf.ReadFrom(resp.Body)
	require.NoError(t, err)
	assert.Equal(t, "application/json", resp.Header.Get("Content-Type"))
	return resp, buf.Bytes()
}

func decode[T any](t *testing.T, body []byte) T {
	t.Helper()
	var v T
	require.NoError(t, json.Unmarshal(body, &v), "body: %s", body)
	return v
}

func TestHealth(t *testing.T) {
	api := newTestAPI(t)
	resp, body := api.get(t, "/health", "")
	assert.Equal(t, http.StatusOK, resp.StatusCode)

	payload := decode[map[string]any](t, body)
	assert.Equal(t, "ok", payload["status"])
	assert.Equal(t, float64(1), payload["instances"])
	assert.Contains(t, payload, "uptimeSeconds")
}

func TestStateVersionIsPublic(t *testing.T) {
	api := newTestAPI(t)
	resp, body := api.get(t, "/instance_001/stateVersion", "")
	assert.Equal(t, http.StatusOK, resp.StatusCode)

	payload := decode[map[string]any](t, body)
	assert.Equal(t, "instance_001", payload["gameInstanceId"])
	assert.Equal(t, float64(0), payload["stateVersion"])
}

func TestConfigAndAlgorithmsArePublic(t *testing.T) {
	api := newTestAPI(t)

	resp, body := api.get(t, "/instance_001/config", "")
	assert.Equal(t, http.StatusOK, resp.StatusCode)
	cfg := decode[map[string]any](t, body)
	assert.Equal(t, "test_v1", cfg["configId"])

	resp, body = api.get(t, "/instance_001/algorithms", "")
	assert.Equal(t, http.StatusOK, resp.StatusCode)
	catalog := decode[map[string]map[string]any](t, body)
	assert.Contains(t, catalog["growth"], "linear")
	assert.Contains(t, catalog["levelCost"], "linear_cost")
}

func TestUnknownInstanceIs404(t *testing.T) {
	api := newTestAPI(t)
	for _, path := range []string{
		"/instance_x/config",
		"/instance_x/stateVersion",
		"/instance_x/algorithms",
		"/instance_x/state/player/player_1",
		"/instance_x/character/char_1/stats",
	} {
		resp, body := api.get(t, path, testutil.ActorKey)
		assert.Equal(t, http.StatusNotFound, resp.StatusCode, path)
		assert.Equal(t, tx.CodeInstanceNotFound, decode[tx.ErrorBody](t, body).ErrorCode, path)
	}

	resp, body := api.postTx(t, "instance_x", testutil.ActorKey, map[string]any{
		"txId": "tx_1", "type": "CreatePlayer", "playerId": "p_2",
	})
	assert.Equal(t, http.StatusNotFound, resp.StatusCode)
	assert.Equal(t, tx.CodeInstanceNotFound, decode[tx.ErrorBody](t, body).ErrorCode)
}

func TestPlayerStateRequiresToken(t *testing.T) {
	api := newTestAPI(t)

	resp, body := api.get(t, "/instance_001/state/player/player_1", "")
	assert.Equal(t, http.StatusUnauthorized, resp.StatusCode)
	assert.Equal(t, tx.CodeUnauthorized, decode[tx.ErrorBody](t, body).ErrorCode)

	resp, body = api.get(t, "/instance_001/state/player/player_1", testutil.ActorKey)
	assert.Equal(t, http.StatusOK, resp.StatusCode)
	payload := decode[map[string]json.RawMessage](t, body)
	assert.Contains(t, payload, "characters")
	assert.Contains(t, payload, "gear")
	assert.Contains(t, payload, "resources")

	resp, body = api.get(t, "/instance_001/state/player/ghost", testutil.ActorKey)
	assert.Equal(t, http.StatusNotFound, resp.StatusCode)
	assert.Equal(t, tx.CodePlayerNotFound, decode[tx.ErrorBody](t, body).ErrorCode)
}

func TestCharacterStats(t *testing.T) {
	api := newTestAPI(t)

	resp, body := api.get(t, "/instance_001/character/char_1/stats", testutil.ActorKey)
	assert.Equal(t, http.StatusOK, resp.StatusCode)

	sheet := decode[map[string]any](t, body)
	assert.Equal(t, "char_1", sheet["characterId"])
	assert.Equal(t, "warrior", sheet["classId"])
	finalStats := sheet["finalStats"].(map[string]any)
	assert.Equal(t, float64(5), finalStats["strength"])
	assert.Equal(t, float64(20), finalStats["hp"])

	resp, body = api.get(t, "/instance_001/character/ghost/stats", testutil.ActorKey)
	assert.Equal(t, http.StatusNotFound, resp.StatusCode)
	assert.Equal(t, tx.CodeCharacterNotFound, decode[tx.ErrorBody](t, body).ErrorCode)
}

func TestTxEndToEnd(t *testing.T) {
	api := newTestAPI(t)

	// Admin grants, player spends a transaction, reads confirm the effect.
	resp, body := api.postTx(t, "instance_001", testutil.AdminKey, map[string]any{
		"txId": "tx_grant", "type": "GrantResources", "playerId": "player_1",
		"resources": map[string]int64{"gold": 25},
	})
	assert.Equal(t, http.StatusOK, resp.StatusCode)
	env := decode[tx.Envelope](t, body)
	assert.True(t, env.Accepted)
	assert.Equal(t, uint64(1), env.StateVersion)

	resp, body = api.postTx(t, "instance_001", testutil.ActorKey, map[string]any{
		"txId": "tx_char", "type": "CreateCharacter", "playerId": "player_1",
		"characterId": "c_2", "classId": "mage",
	})
	assert.Equal(t, http.StatusOK, resp.StatusCode)
	env = decode[tx.Envelope](t, body)
	assert.True(t, env.Accepted)
	assert.Equal(t, uint64(2), env.StateVersion)

	_, body = api.get(t, "/instance_001/state/player/player_1", testutil.ActorKey)
	state := decode[struct {
		Characters map[string]json.RawMessage `json:"characters"`
		Resources  map[string]int64           `json:"resources"`
	}](t, body)
	assert.Contains(t, state.Characters, "c_2")
	assert.Equal(t, int64(25), state.Resources["gold"])

	_, body = api.get(t, "/instance_001/stateVersion", "")
	assert.Equal(t, float64(2), decode[map[string]any](t, body)["stateVersion"])
}

func TestTxReplayOverHTTP(t *testing.T) {
	api := newTestAPI(t)

	body := map[string]any{
		"txId": "tx_once", "type": "CreateCharacter", "playerId": "player_1",
		"characterId": "c_2", "classId": "warrior",
	}
	resp1, first := api.postTx(t, "instance_001", testutil.ActorKey, body)
	resp2, second := api.postTx(t, "instance_001", testutil.ActorKey, map[string]any{
		"txId": "tx_once", "type": "CreateCharacter", "playerId": "player_1",
		"characterId": "c_2", "classId": "warrior",
	})

	assert.Equal(t, resp1.StatusCode, resp2.StatusCode)
	assert.Equal(t, first, second, "replays are byte-for-byte")

	_, body2 := api.get(t, "/instance_001/stateVersion", "")
	assert.Equal(t, float64(1), decode[map[string]any](t, body2)["stateVersion"])
}

func TestTxUnauthorizedOverHTTP(t *testing.T) {
	api := newTestAPI(t)
	resp, body := api.postTx(t, "instance_001", "bogus-key", map[string]any{
		"txId": "tx_1", "type": "CreatePlayer", "playerId": "p_2",
	})
	assert.Equal(t, http.StatusUnauthorized, resp.StatusCode)
	assert.Equal(t, tx.CodeUnauthorized, decode[tx.ErrorBody](t, body).ErrorCode)
}

func TestShutdownEndpointOnlyWhenEnabled(t *testing.T) {
	cfg := testutil.Config()
	store, err := snapshot.NewStore(t.TempDir())
	require.NoError(t, err)
	w := world.New(cfg, tx.New(cfg, testutil.AdminKey), store, model.DefaultTxCacheLimit)
	require.NoError(t, w.Restore())

	called := false
	enabled := httptest.NewServer(server.New(w, true, func() { called = true }).Routes())
	defer enabled.Close()
	resp, err := http.Post(enabled.URL+"/__shutdown", "application/json", nil)
	require.NoError(t, err)
	resp.Body.Close()
	assert.Equal(t, http.StatusOK, resp.StatusCode)
	assert.True(t, called)

	disabled := httptest.NewServer(server.New(w, false, nil).Routes())
	defer disabled.Close()
	resp, err = http.Post(disabled.URL+"/__shutdown", "application/json", nil)
	require.NoError(t, err)
	resp.Body.Close()
	assert.Equal(t, http.StatusNotFound, resp.StatusCode)
}
