package ws

import (
	"context"
	"encoding/json"
	"io"
	"net/http"
	"net/http/httptest"
	"strings"
	"sync"
	"testing"
	"time"

	"github.com/gorilla/websocket"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/goleak"
	"go.uber.org/zap"

	"github.com/aliskhannn/quiz-bridge/internal/domain/entities"
	"github.com/aliskhannn/quiz-bridge/internal/interop"
	"github.com/aliskhannn/quiz-bridge/internal/ports"
	"github.com/aliskhannn/quiz-bridge/internal/repository"
	"github.com/aliskhannn/quiz-bridge/internal/samples"
)

func newShim(t *testing.T, variant int) *interop.Shim {
	t.Helper()
	repo, err := repository.NewStaticRepository(variant)
	require.NoError(t, err)
	return interop.NewShim(repo, zap.NewNop())
}

func startServer(t *testing.T, cfg Config, in Interop) *httptest.Server {
	t.Helper()
	srv := httptest.NewServer(NewServer(cfg, in, entities.Env{Name: "test"}, zap.NewNop()).Routes())
	t.Cleanup(srv.Close)
	return srv
}

func dial(t *testing.T, srv *httptest.Server, query string, header http.Header) (*websocket.Conn, *http.Response, error) {
	t.Helper()
	url := "ws" + strings.TrimPrefix(srv.URL, "http") + "/ports" + query
	return websocket.DefaultDialer.Dial(url, header)
}

func request(t *testing.T, conn *websocket.Conn, id string) {
	t.Helper()
	payload, err := json.Marshal(id)
	require.NoError(t, err)
	require.NoError(t, conn.WriteJSON(ports.Envelope{Port: ports.GetQuizFromLocalStorage, Payload: payload}))
}

func readEnvelope(t *testing.T, conn *websocket.Conn) ports.Envelope {
	t.Helper()
	require.NoError(t, conn.SetReadDeadline(time.Now().Add(5*time.Second)))
	var env ports.Envelope
	require.NoError(t, conn.ReadJSON(&env))
	return env
}

func TestServer_Flags(t *testing.T) {
	srv := startServer(t, Config{}, newShim(t, samples.VariantOptions))

	resp, err := http.Get(srv.URL + "/flags?anything=1")
	require.NoError(t, err)
	defer resp.Body.Close()

	body, err := io.ReadAll(resp.Body)
	require.NoError(t, err)
	assert.Equal(t, http.StatusOK, resp.StatusCode)
	assert.Equal(t, "application/json", resp.Header.Get("Content-Type"))
	assert.JSONEq(t, `{}`, string(body))
}

func TestServer_Healthz(t *testing.T) {
	srv := startServer(t, Config{}, newShim(t, samples.VariantOptions))

	resp, err := http.Get(srv.URL + "/healthz")
	require.NoError(t, err)
	defer resp.Body.Close()
	assert.Equal(t, http.StatusOK, resp.StatusCode)
}

func TestServer_QuizExchange(t *testing.T) {
	defer goleak.VerifyNone(t, goleak.IgnoreCurrent())

	srv := httptest.NewServer(NewServer(Config{}, newShim(t, samples.VariantOptions), entities.Env{}, zap.NewNop()).Routes())
	defer srv.Close()

	conn, _, err := dial(t, srv, "", nil)
	require.NoError(t, err)
	defer conn.Close()

	request(t, conn, "abc")
	env := readEnvelope(t, conn)
	assert.Equal(t, ports.SendQuiz, env.Port)
	assert.JSONEq(t, `{"options":["1️⃣","2️⃣","3️⃣","4️⃣","5️⃣"],"preferences":{}}`, string(env.Payload))

	// Malformed frames and unknown ports are dropped without ending the session.
	require.NoError(t, conn.WriteMessage(websocket.TextMessage, []byte(`not json`)))
	require.NoError(t, conn.WriteJSON(ports.Envelope{Port: "somethingElse", Payload: json.RawMessage(`1`)}))

	request(t, conn, "xyz")
	env = readEnvelope(t, conn)
	assert.Equal(t, ports.SendQuiz, env.Port)

	require.NoError(t, conn.WriteMessage(websocket.CloseMessage,
		websocket.FormatCloseMessage(websocket.CloseNormalClosure, "")))
}

func TestServer_OneResponsePerRequest(t *testing.T) {
	srv := startServer(t, Config{}, newShim(t, samples.VariantStacked))

	conn, _, err := dial(t, srv, "", nil)
	require.NoError(t, err)
	defer conn.Close()

	const n = 10
	for i := 0; i < n; i++ {
		request(t, conn, "abc")
	}

	want, err := json.Marshal(samples.Stacked())
	require.NoError(t, err)
	for i := 0; i < n; i++ {
		env := readEnvelope(t, conn)
		assert.Equal(t, ports.SendQuiz, env.Port)
		assert.JSONEq(t, string(want), string(env.Payload))
	}

	// Nothing else is pending.
	require.NoError(t, conn.SetReadDeadline(time.Now().Add(100*time.Millisecond)))
	_, _, err = conn.ReadMessage()
	assert.Error(t, err)
}

type recordingInterop struct {
	mu   sync.Mutex
	envs []entities.Env
}

func (r *recordingInterop) Flags(context.Context, entities.Env) entities.Flags { return entities.Flags{} }

func (r *recordingInterop) OnReady(host ports.Host, env entities.Env) {
	r.mu.Lock()
	r.envs = append(r.envs, env)
	r.mu.Unlock()

	host.Subscribe("echo", func(ctx context.Context, payload json.RawMessage) {
		_ = host.Send(ctx, "echoed", payload)
	})
}

func TestServer_SessionEnv(t *testing.T) {
	in := &recordingInterop{}
	srv := startServer(t, Config{}, in)

	conn, _, err := dial(t, srv, "?theme=dark", nil)
	require.NoError(t, err)
	defer conn.Close()

	require.NoError(t, conn.WriteJSON(ports.Envelope{Port: "echo", Payload: json.RawMessage(`"hi"`)}))
	env := readEnvelope(t, conn)
	assert.Equal(t, "echoed", env.Port)
	assert.Equal(t, `"hi"`, string(env.Payload))

	in.mu.Lock()
	defer in.mu.Unlock()
	require.Len(t, in.envs, 1)
	assert.Equal(t, "test", in.envs[0].Name)
	assert.Equal(t, "dark", in.envs[0].Values["theme"])
}

func TestServer_RejectsForeignOrigin(t *testing.T) {
	srv := startServer(t, Config{AllowedOrigins: []string{"https://app.example"}}, newShim(t, samples.VariantOptions))

	_, resp, err := dial(t, srv, "", http.Header{"Origin": []string{"https://evil.example"}})
	require.ErrorIs(t, err, websocket.ErrBadHandshake)
	assert.Equal(t, http.StatusForbidden, resp.StatusCode)

	conn, _, err := dial(t, srv, "", http.Header{"Origin": []string{"https://app.example"}})
	require.NoError(t, err)
	_ = conn.Close()
}

func TestServer_RateLimitsUpgrades(t *testing.T) {
	srv := startServer(t, Config{RateLimit: 1}, newShim(t, samples.VariantOptions))

	conn, _, err := dial(t, srv, "", nil)
	require.NoError(t, err)
	defer conn.Close()

	_, resp, err := dial(t, srv, "", nil)
	require.ErrorIs(t, err, websocket.ErrBadHandshake)
	assert.Equal(t, http.StatusTooManyRequests, resp.StatusCode)
}

func TestServer_RunStopsOnCancel(t *testing.T) {
	defer goleak.VerifyNone(t, goleak.IgnoreCurrent())

	s := NewServer(Config{Addr: "127.0.0.1:0", ShutdownTimeout: time.Second}, newShim(t, samples.VariantOptions), entities.Env{}, zap.NewNop())

	ctx, cancel := context.WithCancel(context.Background())
	done := make(chan error, 1)
	go func() { done <- s.Run(ctx) }()

	time.Sleep(50 * time.Millisecond)
	cancel()

	select {
	case err := <-done:
		assert.NoError(t, err)
	case <-time.After(5 * time.Second):
		t.Fatal("server did not stop")
	}
}
