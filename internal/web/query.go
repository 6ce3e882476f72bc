// pattern: Imperative Shell

package web

import (
	"context"
	"encoding/json"
	"net/http"

	"github.com/coder/websocket"
	"github.com/coder/websocket/wsjson"

	"codeprojects/internal/matcher"
)

// QueryMessage is an optional JSON form of a query frame. Plain text frames
// are treated as the query text.
type QueryMessage struct {
	Q      string `json:"q"`
	Single bool   `json:"single"`
}

// HandleQuery upgrades to websocket and answers every text frame with the
// ranked matches for it, so a launcher can search as the user types.
func (s *Server) HandleQuery(w http.ResponseWriter, r *http.Request) {
	// Restrict to localhost origins to prevent cross-origin WebSocket attacks.
	conn, err := websocket.Accept(w, r, &websocket.AcceptOptions{
		OriginPatterns: []string{"127.0.0.1:*", "localhost:*"},
	})
	if err != nil {
		s.logger.Error("websocket accept failed", "error", err)
		return
	}
	defer func() { _ = conn.CloseNow() }()
	conn.SetReadLimit(64 << 10)

	s.logger.Debug("query stream connected", "remote", r.RemoteAddr)

	// Do not use r.Context() after the upgrade.
	ctx := context.Background()
	for {
		msgType, data, err := conn.Read(ctx)
		if err != nil {
			break
		}
		if msgType != websocket.MessageText {
			continue
		}
		if err := wsjson.Write(ctx, conn, s.rankedMatches(decodeQuery(data))); err != nil {
			break
		}
	}

	s.logger.Debug("query stream disconnected", "remote", r.RemoteAddr)
	_ = conn.Close(websocket.StatusNormalClosure, "")
}

func decodeQuery(data []byte) matcher.Query {
	var msg QueryMessage
	if len(data) > 0 && data[0] == '{' && json.Unmarshal(data, &msg) == nil {
		return matcher.Query{Text: msg.Q, SingleRunner: msg.Single}
	}
	return matcher.Query{Text: string(data)}
}
