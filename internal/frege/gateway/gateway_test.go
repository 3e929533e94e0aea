package gateway

import (
	"bytes"
	"encoding/json"
	"io"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"

	"github.com/gorilla/websocket"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	mdwlog "github.com/msto63/frege/foundation/core/log"
	"github.com/msto63/frege/internal/frege/server"
	"github.com/msto63/frege/internal/frege/service"
	"github.com/msto63/frege/internal/frege/store"
	"github.com/msto63/frege/pkg/core/logging"
	"github.com/msto63/frege/pkg/core/metrics"
)

func init() {
	logging.SetOutput(io.Discard)
}

func newTestGateway(t *testing.T, cfg Config, opts ...service.Option) *httptest.Server {
	t.Helper()

	opts = append([]service.Option{
		service.WithStore(store.NewMemoryHistoryStore()),
		service.WithLogger(logging.Wrap(mdwlog.Discard())),
	}, opts...)
	svc, err := service.NewService(service.DefaultConfig(), opts...)
	require.NoError(t, err)

	gw := New(cfg, svc, server.NewHealthRegistry(svc))
	ts := httptest.NewServer(gw.Handler())
	t.Cleanup(func() {
		ts.Close()
		svc.Close()
	})
	return ts
}

func postJSON(t *testing.T, url string, body interface{}) (*http.Response, map[string]interface{}) {
	t.Helper()

	data, err := json.Marshal(body)
	require.NoError(t, err)
	resp, err := http.Post(url, "application/json", bytes.NewReader(data))
	require.NoError(t, err)
	defer resp.Body.Close()

	var out map[string]interface{}
	require.NoError(t, json.NewDecoder(resp.Body).Decode(&out))
	return resp, out
}

func TestGateway_Parse(t *testing.T) {
	ts := newTestGateway(t, DefaultConfig())

	resp, out := postJSON(t, ts.URL+"/api/v1/parse", service.Request{Source: "1 + 2 + 3"})
	assert.Equal(t, http.StatusOK, resp.StatusCode)
	assert.NotEmpty(t, resp.Header.Get(RequestIDHeader))
	assert.Equal(t, true, out["success"])
	assert.Equal(t, "(1 + (2 + 3))", out["printed"])
	assert.Equal(t, resp.Header.Get(RequestIDHeader), out["request_id"])

	tree := out["ast"].(map[string]interface{})
	assert.Equal(t, "plus", tree["type"])
	assert.Equal(t, "plus", tree["right"].(map[string]interface{})["type"])
}

func TestGateway_ParseFailure(t *testing.T) {
	ts := newTestGateway(t, DefaultConfig())

	resp, out := postJSON(t, ts.URL+"/api/v1/parse", service.Request{Source: ""})
	assert.Equal(t, http.StatusOK, resp.StatusCode)
	assert.Equal(t, false, out["success"])
	assert.Equal(t, "out of tokens", out["message"])
	assert.Equal(t, "exhausted", out["reason"])
	assert.NotContains(t, out, "ast")
}

func TestGateway_Evaluate(t *testing.T) {
	ts := newTestGateway(t, DefaultConfig())

	resp, out := postJSON(t, ts.URL+"/api/v1/evaluate", service.Request{Source: "40 + 2", Assoc: "left"})
	assert.Equal(t, http.StatusOK, resp.StatusCode)
	assert.Equal(t, float64(42), out["value"])
	assert.Equal(t, "left", out["assoc"])
}

func TestGateway_Errors(t *testing.T) {
	ts := newTestGateway(t, DefaultConfig())

	tests := []struct {
		name   string
		path   string
		body   interface{}
		status int
		code   string
	}{
		{"lexical", "/api/v1/parse", service.Request{Source: "1 - 2"}, http.StatusBadRequest, "lexical"},
		{"overflow", "/api/v1/evaluate", service.Request{Source: "9223372036854775807 + 1"}, http.StatusUnprocessableEntity, "evaluation"},
		{"bad assoc", "/api/v1/parse", service.Request{Source: "1", Assoc: "up"}, http.StatusBadRequest, "invalid_input"},
		{"bad body", "/api/v1/parse", "not an object", http.StatusBadRequest, "invalid_input"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			resp, out := postJSON(t, ts.URL+tt.path, tt.body)
			assert.Equal(t, tt.status, resp.StatusCode)
			assert.Equal(t, tt.code, out["code"])
			assert.NotEmpty(t, out["error"])
		})
	}
}

func TestGateway_History(t *testing.T) {
	ts := newTestGateway(t, DefaultConfig())

	for _, src := range []string{"1", "2 + 3"} {
		resp, _ := postJSON(t, ts.URL+"/api/v1/evaluate", service.Request{Source: src})
		require.Equal(t, http.StatusOK, resp.StatusCode)
	}

	resp, err := http.Get(ts.URL + "/api/v1/history?limit=1")
	require.NoError(t, err)
	defer resp.Body.Close()
	require.Equal(t, http.StatusOK, resp.StatusCode)

	var history HistoryResponse
	require.NoError(t, json.NewDecoder(resp.Body).Decode(&history))
	assert.Equal(t, 1, history.Total)
	require.Len(t, history.Entries, 1)

	bad, err := http.Get(ts.URL + "/api/v1/history?limit=zero")
	require.NoError(t, err)
	bad.Body.Close()
	assert.Equal(t, http.StatusBadRequest, bad.StatusCode)
}

func TestGateway_HealthVersionMetrics(t *testing.T) {
	ts := newTestGateway(t, DefaultConfig(), service.WithMetrics(metrics.New("frege")))

	resp, err := http.Get(ts.URL + "/health")
	require.NoError(t, err)
	var report map[string]interface{}
	require.NoError(t, json.NewDecoder(resp.Body).Decode(&report))
	resp.Body.Close()
	assert.Equal(t, http.StatusOK, resp.StatusCode)
	assert.Equal(t, "healthy", report["status"])

	resp, err = http.Get(ts.URL + "/version")
	require.NoError(t, err)
	var info map[string]interface{}
	require.NoError(t, json.NewDecoder(resp.Body).Decode(&info))
	resp.Body.Close()
	assert.Contains(t, info, "go_version")

	postJSON(t, ts.URL+"/api/v1/parse", service.Request{Source: "1"})
	resp, err = http.Get(ts.URL + "/metrics")
	require.NoError(t, err)
	body, err := io.ReadAll(resp.Body)
	resp.Body.Close()
	require.NoError(t, err)
	assert.Contains(t, string(body), `frege_requests_total{assoc="right",operation="parse",outcome="success"} 1`)
}

func TestGateway_CORS(t *testing.T) {
	cfg := DefaultConfig()
	cfg.CORS = CORSConfig{Enabled: true, AllowedOrigins: []string{"http://localhost:3000"}}
	ts := newTestGateway(t, cfg)

	req, err := http.NewRequest(http.MethodOptions, ts.URL+"/api/v1/parse", nil)
	require.NoError(t, err)
	req.Header.Set("Origin", "http://localhost:3000")
	resp, err := http.DefaultClient.Do(req)
	require.NoError(t, err)
	resp.Body.Close()
	assert.Equal(t, http.StatusNoContent, resp.StatusCode)
	assert.Equal(t, "http://localhost:3000", resp.Header.Get("Access-Control-Allow-Origin"))

	req.Header.Set("Origin", "http://evil.example")
	resp, err = http.DefaultClient.Do(req)
	require.NoError(t, err)
	resp.Body.Close()
	assert.Empty(t, resp.Header.Get("Access-Control-Allow-Origin"))
}

func TestGateway_WebSocket(t *testing.T) {
	ts := newTestGateway(t, DefaultConfig())

	url := "ws" + strings.TrimPrefix(ts.URL, "http") + "/api/v1/parse/ws"
	conn, _, err := websocket.DefaultDialer.Dial(url, nil)
	require.NoError(t, err)
	defer conn.Close()

	exchange := func(msg WSMessage) map[string]interface{} {
		require.NoError(t, conn.WriteJSON(msg))
		var out map[string]interface{}
		require.NoError(t, conn.ReadJSON(&out))
		return out
	}
	payload := func(req service.Request) json.RawMessage {
		data, err := json.Marshal(req)
		require.NoError(t, err)
		return data
	}

	out := exchange(WSMessage{Type: "ping", ID: "p1"})
	assert.Equal(t, "pong", out["type"])
	assert.Equal(t, "p1", out["id"])

	out = exchange(WSMessage{Type: "parse", ID: "m1", Payload: payload(service.Request{Source: "1 +"})})
	assert.Equal(t, "result", out["type"])
	result := out["payload"].(map[string]interface{})
	assert.Equal(t, true, result["success"])
	assert.Equal(t, []interface{}{"+"}, result["remaining"])

	out = exchange(WSMessage{Type: "evaluate", ID: "m2", Payload: payload(service.Request{Source: "2 + 2"})})
	assert.Equal(t, float64(4), out["payload"].(map[string]interface{})["value"])

	out = exchange(WSMessage{Type: "evaluate", ID: "m3", Payload: payload(service.Request{Source: "2 $ 2"})})
	assert.Equal(t, "error", out["type"])
	assert.Equal(t, "lexical", out["payload"].(map[string]interface{})["code"])

	out = exchange(WSMessage{Type: "shout"})
	assert.Equal(t, "error", out["type"])
	assert.Equal(t, "invalid_input", out["payload"].(map[string]interface{})["code"])
}

func TestGateway_NoMetricsWithoutRegistry(t *testing.T) {
	ts := newTestGateway(t, DefaultConfig())

	resp, err := http.Get(ts.URL + "/metrics")
	require.NoError(t, err)
	resp.Body.Close()
	assert.Equal(t, http.StatusNotFound, resp.StatusCode)
}
