package httpserver

import (
	"bytes"
	"context"
	"encoding/json"
	"io"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"
	"time"

	"github.com/gorilla/websocket"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"golang.org/x/crypto/bcrypt"

	"github.com/robalobadob/riddler/internal/riddles"
	"github.com/robalobadob/riddler/internal/store"
)

// snap mirrors roundRes for decoding responses.
type snap struct {
	Prompt    string   `json:"prompt"`
	Revealed  string   `json:"revealed"`
	Wrong     []string `json:"wrong"`
	Remaining int      `json:"remaining"`
	Status    string   `json:"status"`
	Answer    string   `json:"answer"`
	Last      string   `json:"last"`
	Token     string   `json:"token"`
	Error     string   `json:"error"`
}

func newTestServer(t *testing.T, debugHash string) (*Server, store.Store) {
	t.Helper()
	bank, err := riddles.New([]riddles.Entry{{Prompt: "Worth one cent?", Answer: "Penny"}})
	require.NoError(t, err)
	st := store.NewMemoryStore()
	s := New(st, bank, Options{
		ClientOrigin:      "http://localhost:5173",
		RequestTimeout:    time.Second,
		TokenSecret:       "test-secret",
		TokenTTL:          time.Hour,
		CookieName:        "riddler_round",
		DebugUser:         "admin",
		DebugPasswordHash: debugHash,
	})
	return s, st
}

func do(t *testing.T, h http.Handler, method, path, body, token string) *httptest.ResponseRecorder {
	t.Helper()
	var rd io.Reader
	if body != "" {
		rd = strings.NewReader(body)
	}
	req := httptest.NewRequest(method, path, rd)
	if token != "" {
		req.Header.Set("Authorization", "Bearer "+token)
	}
	rec := httptest.NewRecorder()
	h.ServeHTTP(rec, req)
	return rec
}

func decode(t *testing.T, rec *httptest.ResponseRecorder) snap {
	t.Helper()
	var out snap
	require.NoError(t, json.NewDecoder(bytes.NewReader(rec.Body.Bytes())).Decode(&out))
	return out
}

func newRound(t *testing.T, h http.Handler) snap {
	t.Helper()
	rec := do(t, h, http.MethodPost, "/round/new", "", "")
	require.Equal(t, http.StatusOK, rec.Code)
	out := decode(t, rec)
	require.NotEmpty(t, out.Token)
	return out
}

func TestHealthAndIndex(t *testing.T) {
	s, _ := newTestServer(t, "")

	rec := do(t, s.Handler(), http.MethodGet, "/health", "", "")
	assert.Equal(t, http.StatusOK, rec.Code)
	assert.JSONEq(t, `{"ok":true}`, rec.Body.String())

	rec = do(t, s.Handler(), http.MethodGet, "/", "", "")
	assert.Equal(t, http.StatusOK, rec.Code)
	assert.Contains(t, rec.Header().Get("Content-Type"), "text/html")
	assert.Contains(t, rec.Body.String(), "/round/ws")

	rec = do(t, s.Handler(), http.MethodGet, "/nope", "", "")
	assert.Equal(t, http.StatusNotFound, rec.Code)
}

func TestNewRoundSnapshot(t *testing.T) {
	s, st := newTestServer(t, "")
	out := newRound(t, s.Handler())

	assert.Equal(t, "Worth one cent?", out.Prompt)
	assert.Equal(t, "_____", out.Revealed)
	assert.Empty(t, out.Wrong)
	assert.Equal(t, 8, out.Remaining)
	assert.Equal(t, "in_progress", out.Status)
	assert.Empty(t, out.Answer, "answer stays hidden while in progress")
	assert.Equal(t, 1, st.Len())
}

func TestNewRoundSetsCookie(t *testing.T) {
	s, _ := newTestServer(t, "")
	rec := do(t, s.Handler(), http.MethodPost, "/round/new", "", "")
	require.Equal(t, http.StatusOK, rec.Code)

	var cookie *http.Cookie
	for _, c := range rec.Result().Cookies() {
		if c.Name == "riddler_round" {
			cookie = c
		}
	}
	require.NotNil(t, cookie)
	assert.True(t, cookie.HttpOnly)

	req := httptest.NewRequest(http.MethodGet, "/round", nil)
	req.AddCookie(cookie)
	got := httptest.NewRecorder()
	s.Handler().ServeHTTP(got, req)
	assert.Equal(t, http.StatusOK, got.Code)
	assert.Equal(t, "_____", decode(t, got).Revealed)
}

func TestNewRoundReplacesPreviousSession(t *testing.T) {
	s, st := newTestServer(t, "")
	first := newRound(t, s.Handler())

	rec := do(t, s.Handler(), http.MethodPost, "/round/new", "", first.Token)
	require.Equal(t, http.StatusOK, rec.Code)
	assert.Equal(t, 1, st.Len())

	rec = do(t, s.Handler(), http.MethodGet, "/round", "", first.Token)
	assert.Equal(t, http.StatusNotFound, rec.Code)
}

func TestGuessFlowWin(t *testing.T) {
	s, _ := newTestServer(t, "")
	tok := newRound(t, s.Handler()).Token

	steps := []struct {
		key, last, revealed, status string
		remaining                   int
	}{
		{"p", "hit", "P____", "in_progress", 8},
		{"x", "miss", "P____", "in_progress", 7},
		{"p", "repeat", "P____", "in_progress", 7},
		{"1", "ignored", "P____", "in_progress", 7},
		{"N", "hit", "P_NN_", "in_progress", 7},
		{"e", "hit", "PENN_", "in_progress", 7},
		{"y", "hit", "PENNY", "won", 7},
		{"z", "closed", "PENNY", "won", 7},
	}
	for _, st := range steps {
		rec := do(t, s.Handler(), http.MethodPost, "/round/guess", `{"key":"`+st.key+`"}`, tok)
		require.Equal(t, http.StatusOK, rec.Code, st.key)
		out := decode(t, rec)
		assert.Equal(t, st.last, out.Last, st.key)
		assert.Equal(t, st.revealed, out.Revealed, st.key)
		assert.Equal(t, st.status, out.Status, st.key)
		assert.Equal(t, st.remaining, out.Remaining, st.key)
	}

	out := decode(t, do(t, s.Handler(), http.MethodGet, "/round", "", tok))
	assert.Equal(t, "won", out.Status)
	assert.Equal(t, "PENNY", out.Answer)
	assert.Equal(t, []string{"X"}, out.Wrong)
}

func TestGuessFlowLoss(t *testing.T) {
	s, _ := newTestServer(t, "")
	tok := newRound(t, s.Handler()).Token

	var out snap
	for _, k := range []string{"a", "b", "c", "d", "f", "g", "h", "i"} {
		out = decode(t, do(t, s.Handler(), http.MethodPost, "/round/guess", `{"key":"`+k+`"}`, tok))
	}
	assert.Equal(t, "lost", out.Status)
	assert.Equal(t, 0, out.Remaining)
	assert.Equal(t, "PENNY", out.Answer)
	assert.Len(t, out.Wrong, 8)
}

func TestGuessBadJSON(t *testing.T) {
	s, _ := newTestServer(t, "")
	tok := newRound(t, s.Handler()).Token

	rec := do(t, s.Handler(), http.MethodPost, "/round/guess", `{`, tok)
	assert.Equal(t, http.StatusBadRequest, rec.Code)
	assert.Equal(t, "bad_json", decode(t, rec).Error)
}

func TestResetStartsFreshRound(t *testing.T) {
	s, _ := newTestServer(t, "")
	tok := newRound(t, s.Handler()).Token
	do(t, s.Handler(), http.MethodPost, "/round/guess", `{"key":"x"}`, tok)

	rec := do(t, s.Handler(), http.MethodPost, "/round/reset", "", tok)
	require.Equal(t, http.StatusOK, rec.Code)
	out := decode(t, rec)
	assert.Equal(t, "_____", out.Revealed)
	assert.Equal(t, 8, out.Remaining)
	assert.Empty(t, out.Wrong)
}

func TestRoundTokenErrors(t *testing.T) {
	s, st := newTestServer(t, "")

	rec := do(t, s.Handler(), http.MethodGet, "/round", "", "")
	assert.Equal(t, http.StatusUnauthorized, rec.Code)
	assert.Equal(t, "missing_round_token", decode(t, rec).Error)

	rec = do(t, s.Handler(), http.MethodGet, "/round", "", "not-a-jwt")
	assert.Equal(t, http.StatusUnauthorized, rec.Code)
	assert.Equal(t, "invalid_round_token", decode(t, rec).Error)

	forged := tokens{secret: []byte("other"), ttl: time.Hour, now: time.Now}
	tok, _, err := forged.sign("whatever")
	require.NoError(t, err)
	rec = do(t, s.Handler(), http.MethodGet, "/round", "", tok)
	assert.Equal(t, http.StatusUnauthorized, rec.Code)

	stale := s.tokens
	stale.now = func() time.Time { return time.Now().Add(-2 * time.Hour) }
	tok, _, err = stale.sign("whatever")
	require.NoError(t, err)
	rec = do(t, s.Handler(), http.MethodGet, "/round", "", tok)
	assert.Equal(t, http.StatusUnauthorized, rec.Code)

	tok = newRound(t, s.Handler()).Token
	id, err := s.tokens.parse(tok)
	require.NoError(t, err)
	require.NoError(t, st.Delete(context.Background(), id))
	rec = do(t, s.Handler(), http.MethodGet, "/round", "", tok)
	assert.Equal(t, http.StatusNotFound, rec.Code)
	assert.Equal(t, "round_not_found", decode(t, rec).Error)
}

func TestCORSPreflight(t *testing.T) {
	s, _ := newTestServer(t, "")
	rec := do(t, s.Handler(), http.MethodOptions, "/round/guess", "", "")
	assert.Equal(t, http.StatusNoContent, rec.Code)
	assert.Equal(t, "http://localhost:5173", rec.Header().Get("Access-Control-Allow-Origin"))
}

func TestDebugRiddles(t *testing.T) {
	hash, err := bcrypt.GenerateFromPassword([]byte("hunter2"), bcrypt.MinCost)
	require.NoError(t, err)
	s, _ := newTestServer(t, string(hash))
	newRound(t, s.Handler())

	rec := do(t, s.Handler(), http.MethodGet, "/debug/riddles", "", "")
	assert.Equal(t, http.StatusUnauthorized, rec.Code)
	assert.NotEmpty(t, rec.Header().Get("WWW-Authenticate"))

	req := httptest.NewRequest(http.MethodGet, "/debug/riddles", nil)
	req.SetBasicAuth("admin", "wrong")
	rec = httptest.NewRecorder()
	s.Handler().ServeHTTP(rec, req)
	assert.Equal(t, http.StatusUnauthorized, rec.Code)

	req = httptest.NewRequest(http.MethodGet, "/debug/riddles", nil)
	req.SetBasicAuth("admin", "hunter2")
	rec = httptest.NewRecorder()
	s.Handler().ServeHTTP(rec, req)
	require.Equal(t, http.StatusOK, rec.Code)
	assert.JSONEq(t, `{"entries":1,"unique":1,"duplicates":0,"liveSessions":1}`, rec.Body.String())
}

func TestDebugRoutesDisabledWithoutHash(t *testing.T) {
	s, _ := newTestServer(t, "")
	req := httptest.NewRequest(http.MethodGet, "/debug/riddles", nil)
	req.SetBasicAuth("admin", "")
	rec := httptest.NewRecorder()
	s.Handler().ServeHTTP(rec, req)
	assert.Equal(t, http.StatusNotFound, rec.Code)
}

func TestWebSocketKeystrokes(t *testing.T) {
	s, _ := newTestServer(t, "")
	srv := httptest.NewServer(s.Handler())
	defer srv.Close()
	tok := newRound(t, s.Handler()).Token

	hdr := http.Header{}
	hdr.Set("Authorization", "Bearer "+tok)
	conn, resp, err := websocket.DefaultDialer.Dial("ws"+strings.TrimPrefix(srv.URL, "http")+"/round/ws", hdr)
	require.NoError(t, err)
	defer resp.Body.Close()
	defer conn.Close()

	var out snap
	require.NoError(t, conn.ReadJSON(&out))
	assert.Equal(t, "_____", out.Revealed)

	for _, k := range []string{"p", "Shift", "n"} {
		require.NoError(t, conn.WriteJSON(wsMsg{Type: "key", Key: k}))
		out = snap{}
		require.NoError(t, conn.ReadJSON(&out))
	}
	assert.Equal(t, "P_NN_", out.Revealed)
	assert.Equal(t, "hit", out.Last)

	require.NoError(t, conn.WriteJSON(wsMsg{Type: "reset"}))
	out = snap{}
	require.NoError(t, conn.ReadJSON(&out))
	assert.Equal(t, "_____", out.Revealed)
	assert.Equal(t, "in_progress", out.Status)
}

func TestWebSocketRequiresToken(t *testing.T) {
	s, _ := newTestServer(t, "")
	srv := httptest.NewServer(s.Handler())
	defer srv.Close()

	_, resp, err := websocket.DefaultDialer.Dial("ws"+strings.TrimPrefix(srv.URL, "http")+"/round/ws", nil)
	require.Error(t, err)
	require.NotNil(t, resp)
	assert.Equal(t, http.StatusUnauthorized, resp.StatusCode)
}
