package httpserver

import (
	"crypto/subtle"
	"encoding/json"
	"net/http"

	"golang.org/x/crypto/bcrypt"

	"github.com/robalobadob/riddler/internal/riddles"
)

// requireDebug enforces HTTP basic auth against DebugUser and the bcrypt DebugPasswordHash.
func (s *Server) requireDebug(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		user, pass, ok := r.BasicAuth()
		if !ok ||
			subtle.ConstantTimeCompare([]byte(user), []byte(s.opts.DebugUser)) != 1 ||
			bcrypt.CompareHashAndPassword([]byte(s.opts.DebugPasswordHash), []byte(pass)) != nil {
			w.Header().Set("WWW-Authenticate", `Basic realm="riddler-debug"`)
			writeError(w, http.StatusUnauthorized, "Unauthorized")
			return
		}
		next.ServeHTTP(w, r)
	})
}

// debugRes is returned by GET /debug/riddles.
type debugRes struct {
	riddles.Stats
	LiveSessions int `json:"liveSessions"`
}

func (s *Server) handleDebugRiddles(w http.ResponseWriter, r *http.Request) {
	_ = json.NewEncoder(w).Encode(debugRes{Stats: s.bank.Stats(), LiveSessions: s.store.Len()})
}
