package httpserver

import (
	"net/http"
	"net/url"
	"time"

	"github.com/gorilla/websocket"
	"github.com/rs/zerolog/log"
)

const (
	wsWriteWait  = 5 * time.Second
	wsMaxMessage = 512
)

// wsMsg is what clients send over /round/ws.
type wsMsg struct {
	Type string `json:"type"` // "key" or "reset"
	Key  string `json:"key,omitempty"`
}

func (s *Server) upgrader() websocket.Upgrader {
	return websocket.Upgrader{
		CheckOrigin: func(r *http.Request) bool {
			origin := r.Header.Get("Origin")
			if origin == "" || origin == s.opts.ClientOrigin {
				return true
			}
			u, err := url.Parse(origin)
			return err == nil && u.Host == r.Host
		},
	}
}

// handleWS streams keystrokes for the caller's session. Each inbound message
// produces exactly one outbound snapshot, in order.
func (s *Server) handleWS(w http.ResponseWriter, r *http.Request) {
	sess := sessionFrom(r.Context())
	up := s.upgrader()
	conn, err := up.Upgrade(w, r, nil)
	if err != nil {
		log.Warn().Err(err).Msg("ws upgrade")
		return
	}
	defer conn.Close()
	conn.SetReadLimit(wsMaxMessage)

	send := func(v any) error {
		_ = conn.SetWriteDeadline(time.Now().Add(wsWriteWait))
		return conn.WriteJSON(v)
	}

	if err := send(snapshot(sess.Round())); err != nil {
		return
	}

	for {
		var in wsMsg
		if err := conn.ReadJSON(&in); err != nil {
			if websocket.IsUnexpectedCloseError(err, websocket.CloseGoingAway, websocket.CloseNormalClosure) {
				log.Warn().Err(err).Str("session", sess.ID()).Msg("ws read")
			}
			return
		}

		var out any
		switch in.Type {
		case "key":
			round, res := s.submit(sess, in.Key)
			snap := snapshot(round)
			snap.Last = res.Kind.String()
			out = snap
		case "reset":
			round, err := s.reset(sess)
			if err != nil {
				out = errorRes{Error: "start_failed"}
				break
			}
			out = snapshot(round)
		default:
			out = snapshot(sess.Round())
		}
		if err := send(out); err != nil {
			log.Debug().Err(err).Str("session", sess.ID()).Msg("ws write")
			return
		}
	}
}
