package httpapi

import (
	"bytes"
	"context"
	"encoding/json"
	"image/png"
	"io"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"
	"time"

	"github.com/coder/websocket"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/DoyleJ11/team-builder/internal/engine"
	"github.com/DoyleJ11/team-builder/internal/hub"
	"github.com/DoyleJ11/team-builder/internal/lobby"
	"github.com/DoyleJ11/team-builder/internal/metrics"
	"github.com/DoyleJ11/team-builder/internal/types"
)

func newTestServer(t *testing.T) *httptest.Server {
	t.Helper()
	m := metrics.New()
	h := hub.NewHub(context.Background(), lobby.Deps{Metrics: m})
	srv := httptest.NewServer(SetupRoutes(Deps{Hub: h, Metrics: m}))
	t.Cleanup(func() {
		srv.Close()
		h.Inbox() <- hub.ShutdownHub{}
		<-h.Done()
	})
	return srv
}

func createRoom(t *testing.T, srv *httptest.Server) string {
	t.Helper()
	resp, err := http.Post(srv.URL+"/rooms", "application/json", nil)
	require.NoError(t, err)
	defer resp.Body.Close()
	require.Equal(t, http.StatusCreated, resp.StatusCode)

	var body struct {
		Code string `json:"code"`
	}
	require.NoError(t, json.NewDecoder(resp.Body).Decode(&body))
	require.Len(t, body.Code, codeLength)
	return body.Code
}

func postCommand(t *testing.T, srv *httptest.Server, code string, body string) (int, types.ServerMessage) {
	t.Helper()
	resp, err := http.Post(srv.URL+"/rooms/"+code+"/commands", "application/json", strings.NewReader(body))
	require.NoError(t, err)
	defer resp.Body.Close()

	var msg types.ServerMessage
	require.NoError(t, json.NewDecoder(resp.Body).Decode(&msg))
	return resp.StatusCode, msg
}

func TestGenerateCode(t *testing.T) {
	code, err := GenerateCode()
	require.NoError(t, err)
	assert.Regexp(t, `^[A-Z0-9]{6}$`, code)
}

func TestRoomLifecycle(t *testing.T) {
	srv := newTestServer(t)
	code := createRoom(t, srv)

	resp, err := http.Get(srv.URL + "/rooms/" + code)
	require.NoError(t, err)
	var initial types.ServerMessage
	require.NoError(t, json.NewDecoder(resp.Body).Decode(&initial))
	resp.Body.Close()
	assert.Equal(t, http.StatusOK, resp.StatusCode)
	require.NotNil(t, initial.State)
	assert.Equal(t, 0, initial.State.Version)
	assert.Len(t, initial.State.Lanes, 5)

	status, msg := postCommand(t, srv, code, `{"type":"SubmitNames","text":"Alice Bob Alice"}`)
	require.Equal(t, http.StatusOK, status)
	assert.Equal(t, "StateSnapshot", msg.Type)
	assert.Equal(t, 1, msg.Version)
	assert.Len(t, msg.State.Players, 2)

	payload, err := engine.EncodePayload(engine.PoolPayload("Alice"))
	require.NoError(t, err)
	drop, err := json.Marshal(map[string]any{
		"type":    "Drop",
		"payload": payload,
		"target":  map[string]string{"type": "slot", "position": "Support", "slot": "b"},
	})
	require.NoError(t, err)

	status, msg = postCommand(t, srv, code, string(drop))
	require.Equal(t, http.StatusOK, status)
	assert.Equal(t, 2, msg.Version)
	assert.Equal(t, "Alice", msg.State.Lanes[4].SlotB)
	assert.Equal(t, "Bob", msg.State.Pool["mid"][0].Name)
}

func TestPostCommand_Errors(t *testing.T) {
	srv := newTestServer(t)
	code := createRoom(t, srv)

	cases := []struct {
		name   string
		body   string
		status int
		errMsg string
	}{
		{"bad json", `{"type":`, http.StatusBadRequest, "bad json"},
		{"unknown type", `{"type":"Teleport"}`, http.StatusBadRequest, "unknown message type"},
		{"bad payload", `{"type":"Drop","payload":"nope"}`, http.StatusBadRequest, "malformed drag payload"},
		{"engine validation", `{"type":"SwapSlots","position":"Bench"}`, http.StatusBadRequest, "unknown lane position"},
	}
	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			status, msg := postCommand(t, srv, code, tc.body)
			assert.Equal(t, tc.status, status)
			assert.Equal(t, "Error", msg.Type)
			assert.Contains(t, msg.Error, tc.errMsg)
		})
	}

	status, _ := postCommand(t, srv, "NOPE00", `{"type":"ResetLanes"}`)
	assert.Equal(t, http.StatusNotFound, status)
}

func TestGetRoom_NotFound(t *testing.T) {
	srv := newTestServer(t)

	resp, err := http.Get(srv.URL + "/rooms/NOPE00")
	require.NoError(t, err)
	resp.Body.Close()
	assert.Equal(t, http.StatusNotFound, resp.StatusCode)
}

func TestExportPNG(t *testing.T) {
	srv := newTestServer(t)
	code := createRoom(t, srv)
	postCommand(t, srv, code, `{"type":"SubmitNames","text":"Alice"}`)

	resp, err := http.Get(srv.URL + "/rooms/" + code + "/export.png")
	require.NoError(t, err)
	defer resp.Body.Close()
	require.Equal(t, http.StatusOK, resp.StatusCode)
	assert.Equal(t, "image/png", resp.Header.Get("Content-Type"))

	data, err := io.ReadAll(resp.Body)
	require.NoError(t, err)
	_, err = png.Decode(bytes.NewReader(data))
	require.NoError(t, err)
}

func TestHealthzAndMetrics(t *testing.T) {
	srv := newTestServer(t)
	code := createRoom(t, srv)
	postCommand(t, srv, code, `{"type":"SubmitNames","text":"Alice"}`)

	resp, err := http.Get(srv.URL + "/healthz")
	require.NoError(t, err)
	resp.Body.Close()
	assert.Equal(t, http.StatusOK, resp.StatusCode)

	resp, err = http.Get(srv.URL + "/metrics")
	require.NoError(t, err)
	body, err := io.ReadAll(resp.Body)
	resp.Body.Close()
	require.NoError(t, err)
	assert.Contains(t, string(body), `teambuilder_commands_applied_total{type="SubmitNames"} 1`)
	assert.Contains(t, string(body), "teambuilder_rooms 1")
}

func readMessage(t *testing.T, conn *websocket.Conn) types.ServerMessage {
	t.Helper()
	ctx, cancel := context.WithTimeout(context.Background(), 2*time.Second)
	defer cancel()
	_, data, err := conn.Read(ctx)
	require.NoError(t, err)
	var msg types.ServerMessage
	require.NoError(t, json.Unmarshal(data, &msg))
	return msg
}

func writeMessage(t *testing.T, conn *websocket.Conn, text string) {
	t.Helper()
	ctx, cancel := context.WithTimeout(context.Background(), 2*time.Second)
	defer cancel()
	require.NoError(t, conn.Write(ctx, websocket.MessageText, []byte(text)))
}

func TestWebSocket_JoinCommandAndErrors(t *testing.T) {
	srv := newTestServer(t)
	code := createRoom(t, srv)

	ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()
	url := "ws" + strings.TrimPrefix(srv.URL, "http") + "/ws?code=" + code
	conn, _, err := websocket.Dial(ctx, url, nil)
	require.NoError(t, err)
	defer conn.Close(websocket.StatusNormalClosure, "")

	first := readMessage(t, conn)
	assert.Equal(t, "StateSnapshot", first.Type)
	assert.Equal(t, 0, first.Version)

	writeMessage(t, conn, `{"type":"SubmitNames","text":"Alice Bob"}`)
	next := readMessage(t, conn)
	assert.Equal(t, "StateSnapshot", next.Type)
	assert.Equal(t, 1, next.Version)
	require.NotNil(t, next.State)
	assert.Len(t, next.State.Pool["mid"], 2)

	writeMessage(t, conn, `not json`)
	assert.Equal(t, types.ServerMessage{Type: "Error", Error: "bad json"}, readMessage(t, conn))

	writeMessage(t, conn, `{"type":"CycleOperator","position":"Top","direction":"sideways"}`)
	bad := readMessage(t, conn)
	assert.Equal(t, "Error", bad.Type)
	assert.Contains(t, bad.Error, "unknown direction")

	// Commands from other clients reach this socket too.
	postCommand(t, srv, code, `{"type":"ToggleTheme"}`)
	themed := readMessage(t, conn)
	assert.Equal(t, 2, themed.Version)
	assert.Equal(t, "light", themed.State.Theme)
}

func TestWebSocket_RejectsUnknownRoom(t *testing.T) {
	srv := newTestServer(t)

	resp, err := http.Get(srv.URL + "/ws")
	require.NoError(t, err)
	resp.Body.Close()
	assert.Equal(t, http.StatusBadRequest, resp.StatusCode)

	resp, err = http.Get(srv.URL + "/ws?code=NOPE00")
	require.NoError(t, err)
	resp.Body.Close()
	assert.Equal(t, http.StatusNotFound, resp.StatusCode)
}
