// internal/httpserver/server.go
//
// HTTP server wiring for the Riddler backend.
// Responsibilities:
//   - Router + middleware (request IDs, real IP, logging, panic recovery, CORS, timeouts).
//   - Public endpoints: "/" (browser page), "/health", "/metrics".
//   - Round endpoints: POST /round/new, GET /round, POST /round/guess, POST /round/reset.
//   - Keystroke WebSocket: GET /round/ws.
//   - Debug endpoint (basic auth, bcrypt): GET /debug/riddles.
//
// Notes:
//   - A round token (JWT) names the caller's session; it travels as a cookie
//     for the browser page and as a bearer token for other clients.
//   - Guess input is never an error: noise, repeats and late keys come back
//     as an unchanged snapshot with "last" describing what happened.

package httpserver

import (
	"context"
	"encoding/json"
	"errors"
	"net/http"
	"time"

	"github.com/go-chi/chi/v5"
	chimw "github.com/go-chi/chi/v5/middleware"
	"github.com/google/uuid"
	"github.com/prometheus/client_golang/prometheus/promhttp"
	"github.com/rs/zerolog/log"

	"github.com/robalobadob/riddler/assets"
	"github.com/robalobadob/riddler/internal/game"
	"github.com/robalobadob/riddler/internal/riddles"
	"github.com/robalobadob/riddler/internal/session"
	"github.com/robalobadob/riddler/internal/store"
)

// Options configures a Server.
type Options struct {
	ClientOrigin   string
	RequestTimeout time.Duration

	TokenSecret   string
	TokenTTL      time.Duration
	CookieName    string
	SecureCookies bool

	// Debug routes are mounted only when DebugPasswordHash is set.
	DebugUser         string
	DebugPasswordHash string
}

// Server bundles the router, the live session store and the riddle bank.
type Server struct {
	r      *chi.Mux
	store  store.Store
	bank   *riddles.Bank
	tokens tokens
	opts   Options
}

// New constructs a Server, installs middleware, and registers routes.
func New(st store.Store, bank *riddles.Bank, opts Options) *Server {
	if opts.RequestTimeout <= 0 {
		opts.RequestTimeout = 10 * time.Second
	}
	s := &Server{
		r:     chi.NewRouter(),
		store: st,
		bank:  bank,
		tokens: tokens{
			secret: []byte(opts.TokenSecret),
			ttl:    opts.TokenTTL,
			cookie: opts.CookieName,
			secure: opts.SecureCookies,
			now:    time.Now,
		},
		opts: opts,
	}

	// --- middleware ---
	s.r.Use(chimw.RequestID)
	s.r.Use(chimw.RealIP)
	s.r.Use(requestLogger)
	s.r.Use(chimw.Recoverer)
	s.r.Use(s.cors)

	s.r.Get("/", func(w http.ResponseWriter, r *http.Request) {
		w.Header().Set("Content-Type", "text/html; charset=utf-8")
		_, _ = w.Write(assets.IndexHTML)
	})
	s.r.Handle("/metrics", promhttp.Handler())

	// The WebSocket lives outside the timeout group: its handler runs for
	// the lifetime of the connection.
	s.r.With(s.withRound).Get("/round/ws", s.handleWS)

	s.r.Group(func(r chi.Router) {
		r.Use(chimw.Timeout(opts.RequestTimeout))
		r.Use(jsonContentType)

		r.Get("/health", func(w http.ResponseWriter, r *http.Request) {
			_, _ = w.Write([]byte(`{"ok":true}`))
		})

		r.Post("/round/new", s.handleNew)
		r.With(s.withRound).Get("/round", s.handleGet)
		r.With(s.withRound).Post("/round/guess", s.handleGuess)
		r.With(s.withRound).Post("/round/reset", s.handleReset)

		if opts.DebugPasswordHash != "" {
			r.With(s.requireDebug).Get("/debug/riddles", s.handleDebugRiddles)
		}
	})

	s.r.NotFound(func(w http.ResponseWriter, r *http.Request) {
		writeError(w, http.StatusNotFound, "not_found")
	})

	return s
}

// Handler exposes the router (used by main and tests).
func (s *Server) Handler() http.Handler { return s.r }

// ----------------------------- middleware ----------------------------------

// jsonContentType sets a default JSON Content-Type header on all responses.
func jsonContentType(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.Header().Set("Content-Type", "application/json; charset=utf-8")
		next.ServeHTTP(w, r)
	})
}

// cors enables credentialed CORS for the configured client origin.
func (s *Server) cors(next http.Handler) http.Handler {
	origin := s.opts.ClientOrigin
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if origin != "" {
			w.Header().Set("Vary", "Origin")
			w.Header().Set("Access-Control-Allow-Origin", origin)
			w.Header().Set("Access-Control-Allow-Credentials", "true")
			w.Header().Set("Access-Control-Allow-Methods", "GET,POST,OPTIONS")
			w.Header().Set("Access-Control-Allow-Headers", "Content-Type, Authorization")
		}
		if r.Method == http.MethodOptions {
			w.WriteHeader(http.StatusNoContent)
			return
		}
		next.ServeHTTP(w, r)
	})
}

// requestLogger logs method, path, status, bytes and duration of every request.
func requestLogger(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		start := time.Now()
		ww := chimw.NewWrapResponseWriter(w, r.ProtoMajor)
		next.ServeHTTP(ww, r)
		log.Info().
			Str("reqId", chimw.GetReqID(r.Context())).
			Str("method", r.Method).
			Str("path", r.URL.Path).
			Int("status", ww.Status()).
			Int("bytes", ww.BytesWritten()).
			Dur("dur", time.Since(start)).
			Msg("http")
	})
}

type ctxSessionKey struct{}

// withRound resolves the round token to a live session and stores it in the context.
func (s *Server) withRound(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		tok := s.tokens.fromRequest(r)
		if tok == "" {
			writeError(w, http.StatusUnauthorized, "missing_round_token")
			return
		}
		id, err := s.tokens.parse(tok)
		if err != nil {
			writeError(w, http.StatusUnauthorized, "invalid_round_token")
			return
		}
		sess, err := s.store.Get(r.Context(), id)
		if err != nil {
			writeError(w, http.StatusNotFound, "round_not_found")
			return
		}
		ctx := context.WithValue(r.Context(), ctxSessionKey{}, sess)
		next.ServeHTTP(w, r.WithContext(ctx))
	})
}

func sessionFrom(ctx context.Context) *session.Session {
	s, _ := ctx.Value(ctxSessionKey{}).(*session.Session)
	return s
}

// ------------------------------ ROUND --------------------------------------

// roundRes is the snapshot of a round sent to clients.
type roundRes struct {
	Prompt    string      `json:"prompt"`
	Revealed  string      `json:"revealed"`
	Wrong     []string    `json:"wrong"`
	Remaining int         `json:"remaining"`
	Status    game.Status `json:"status"`
	Answer    string      `json:"answer,omitempty"` // only once finished
	Last      string      `json:"last,omitempty"`   // kind of the keystroke that produced this snapshot
	Token     string      `json:"token,omitempty"`  // only from /round/new
}

func snapshot(r game.Round) roundRes {
	res := roundRes{
		Prompt:    r.Prompt(),
		Revealed:  r.Revealed(),
		Wrong:     r.WrongLetters(),
		Remaining: r.Remaining(),
		Status:    r.Status(),
	}
	if r.Finished() {
		res.Answer = r.Answer()
	}
	return res
}

// handleNew starts a session with a fresh round and issues its token.
// A session named by a previous token is discarded.
func (s *Server) handleNew(w http.ResponseWriter, r *http.Request) {
	if tok := s.tokens.fromRequest(r); tok != "" {
		if old, err := s.tokens.parse(tok); err == nil {
			_ = s.store.Delete(r.Context(), old)
		}
	}

	sess, err := session.New(uuid.NewString(), s.bank)
	if err != nil {
		log.Error().Err(err).Msg("start round")
		writeError(w, http.StatusInternalServerError, "start_failed")
		return
	}
	if err := s.store.Save(r.Context(), sess); err != nil {
		log.Error().Err(err).Msg("save session")
		writeError(w, http.StatusInternalServerError, "save_failed")
		return
	}
	roundsStarted.Inc()

	tok, exp, err := s.tokens.sign(sess.ID())
	if err != nil {
		log.Error().Err(err).Msg("sign round token")
		writeError(w, http.StatusInternalServerError, "sign_failed")
		return
	}
	s.tokens.setCookie(w, tok, exp)

	res := snapshot(sess.Round())
	res.Token = tok
	_ = json.NewEncoder(w).Encode(res)
}

// handleGet returns the current round without changing it.
func (s *Server) handleGet(w http.ResponseWriter, r *http.Request) {
	_ = json.NewEncoder(w).Encode(snapshot(sessionFrom(r.Context()).Round()))
}

// guessReq is the payload for POST /round/guess.
type guessReq struct {
	Key string `json:"key"`
}

// handleGuess applies one keystroke.
func (s *Server) handleGuess(w http.ResponseWriter, r *http.Request) {
	var req guessReq
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		writeError(w, http.StatusBadRequest, "bad_json")
		return
	}
	round, res := s.submit(sessionFrom(r.Context()), req.Key)
	out := snapshot(round)
	out.Last = res.Kind.String()
	_ = json.NewEncoder(w).Encode(out)
}

// handleReset replaces the round with a new one in the same session.
func (s *Server) handleReset(w http.ResponseWriter, r *http.Request) {
	round, err := s.reset(sessionFrom(r.Context()))
	if err != nil {
		writeError(w, http.StatusInternalServerError, "start_failed")
		return
	}
	_ = json.NewEncoder(w).Encode(snapshot(round))
}

// submit applies a keystroke and records metrics. Shared by HTTP and WebSocket.
func (s *Server) submit(sess *session.Session, key string) (game.Round, game.Result) {
	round, res := sess.Submit(key)
	guessesTotal.WithLabelValues(res.Kind.String()).Inc()
	if res.Kind.Changed() && round.Finished() {
		roundsFinished.WithLabelValues(round.Status().String()).Inc()
		log.Debug().
			Str("session", sess.ID()).
			Str("status", round.Status().String()).
			Int("remaining", round.Remaining()).
			Msg("round finished")
	}
	return round, res
}

// reset starts a new round in sess and records metrics.
func (s *Server) reset(sess *session.Session) (game.Round, error) {
	round, err := sess.Reset()
	if err != nil {
		log.Error().Err(err).Str("session", sess.ID()).Msg("reset round")
		return game.Round{}, err
	}
	roundsStarted.Inc()
	return round, nil
}

// ------------------------------- util --------------------------------------

// errorRes is the body of every error response.
type errorRes struct {
	Error string `json:"error"`
}

func writeError(w http.ResponseWriter, status int, msg string) {
	w.Header().Set("Content-Type", "application/json; charset=utf-8")
	w.WriteHeader(status)
	_ = json.NewEncoder(w).Encode(errorRes{Error: msg})
}

// ListenAndServe serves on addr until ctx is cancelled, then shuts down gracefully.
// It returns nil after a clean shutdown.
func (s *Server) ListenAndServe(ctx context.Context, addr string) error {
	srv := &http.Server{
		Addr:              addr,
		Handler:           s.r,
		ReadHeaderTimeout: 5 * time.Second,
	}
	errc := make(chan error, 1)
	go func() { errc <- srv.ListenAndServe() }()

	select {
	case err := <-errc:
		if errors.Is(err, http.ErrServerClosed) {
			return nil
		}
		return err
	case <-ctx.Done():
		shutdownCtx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
		defer cancel()
		return srv.Shutdown(shutdownCtx)
	}
}
