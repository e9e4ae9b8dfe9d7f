// Package tablesim is an in-repo table server: /session, /handrank and the
// game websocket with a scripted dealer. It exists to exercise the client
// contracts in local play and integration tests, not to be a real engine.
package tablesim

import (
	"encoding/json"
	"log/slog"
	"net/http"
	"strings"
	"sync"
	"time"

	"github.com/go-chi/chi/v5"
	chimw "github.com/go-chi/chi/v5/middleware"
	"github.com/go-chi/httplog/v3"
	"github.com/gorilla/websocket"
	"github.com/rs/zerolog/log"

	"holdem-client/internal/config"
	"holdem-client/internal/game"
	"holdem-client/internal/logging"
	"holdem-client/internal/router"
	"holdem-client/internal/session"
)

const tokenTTL = 15 * time.Minute

type client struct {
	conn      *websocket.Conn
	send      chan []byte
	sessionID string
	playerID  string
	handle    string
	private   bool
	table     bool
}

type Server struct {
	cfg      config.SimConfig
	tbl      *table
	upgrader websocket.Upgrader

	mu      sync.Mutex
	clients map[*client]bool
}

func NewServer(cfg config.SimConfig) *Server {
	return &Server{
		cfg:      cfg,
		tbl:      newTable(cfg.GameID, game.Pence(cfg.AntePence), game.Pence(cfg.BigBlindPence)),
		upgrader: websocket.Upgrader{CheckOrigin: func(r *http.Request) bool { return true }},
		clients:  map[*client]bool{},
	}
}

func (s *Server) Router() *chi.Mux {
	r := chi.NewRouter()
	r.Use(chimw.RequestID)
	r.Use(chimw.Recoverer)
	r.Use(chimw.RealIP)

	r.With(apiLogMiddleware()).Get("/session", s.sessionHandler)
	r.With(apiLogMiddleware()).Get("/handrank", s.handrankHandler)
	r.Get("/ws", s.handleWS)
	return r
}

func apiLogMiddleware() func(http.Handler) http.Handler {
	return httplog.RequestLogger(
		slog.New(slog.NewJSONHandler(logging.Writer(), &slog.HandlerOptions{})),
		&httplog.Options{
			Level:  slog.LevelInfo,
			Schema: httplog.Schema{ResponseStatus: "status", ResponseDuration: "duration_ms"},
			LogExtraAttrs: func(req *http.Request, _ string, _ int) []slog.Attr {
				return []slog.Attr{
					slog.String("request_id", chimw.GetReqID(req.Context())),
					slog.String("path", req.URL.Path),
				}
			},
		},
	)
}

// sessionHandler mints a guest identity plus a short-lived access token; a
// real deployment issues these from the gateway.
func (s *Server) sessionHandler(w http.ResponseWriter, r *http.Request) {
	id := session.NewSessionID()
	resp := map[string]any{
		"playerId":     "guest-" + id[len(id)-6:],
		"playerHandle": "Guest",
		"email":        "guest@example.test",
		"accLevel":     "PLAYER",
		"picture":      "guest.png",
		"roles":        []string{"PLAYER"},
		"tokens": map[string]any{
			"accessToken": map[string]any{
				"token":     "sim-" + id,
				"expiresAt": time.Now().Add(tokenTTL).UnixMilli(),
			},
		},
	}
	writeJSON(w, resp)
}

func (s *Server) handrankHandler(w http.ResponseWriter, r *http.Request) {
	tableCards, err := parseCards(r.URL.Query().Get("tableCards"))
	if err != nil {
		writeJSON(w, map[string]string{"message": err.Error()})
		return
	}
	playerCards, err := parseCards(r.URL.Query().Get("playerCards"))
	if err != nil || len(playerCards) == 0 {
		writeJSON(w, map[string]string{"message": "Player cards are required"})
		return
	}
	value, name, ranked := evaluate(tableCards, playerCards)
	writeJSON(w, map[string]any{"handRank": map[string]any{
		"rankValue":   value,
		"rankName":    name,
		"rankedCards": ranked,
	}})
}

func parseCards(raw string) ([]game.Card, error) {
	fields := strings.Fields(raw)
	out := make([]game.Card, 0, len(fields))
	for _, f := range fields {
		c, err := game.ParseCard(f)
		if err != nil {
			return nil, err
		}
		out = append(out, c)
	}
	return out, nil
}

func writeJSON(w http.ResponseWriter, v any) {
	w.Header().Set("Content-Type", "application/json")
	_ = json.NewEncoder(w).Encode(v)
}

// --- websocket ------------------------------------------------------------

func (s *Server) handleWS(w http.ResponseWriter, r *http.Request) {
	conn, err := s.upgrader.Upgrade(w, r, nil)
	if err != nil {
		return
	}
	c := &client{conn: conn, send: make(chan []byte, 16), sessionID: session.NewSessionID()}
	s.mu.Lock()
	s.clients[c] = true
	s.mu.Unlock()

	go s.writeLoop(c)
	s.readLoop(c)
}

func (s *Server) writeLoop(c *client) {
	for msg := range c.send {
		if err := c.conn.WriteMessage(websocket.TextMessage, msg); err != nil {
			return
		}
	}
}

func (s *Server) readLoop(c *client) {
	defer func() {
		s.mu.Lock()
		delete(s.clients, c)
		s.mu.Unlock()
		close(c.send)
		_ = c.conn.Close()
	}()

	for {
		_, msg, err := c.conn.ReadMessage()
		if err != nil {
			return
		}
		var frame struct {
			Subscribe   string            `json:"subscribe"`
			Destination string            `json:"destination"`
			Headers     map[string]string `json:"headers"`
			Body        json.RawMessage   `json:"body"`
		}
		if err := json.Unmarshal(msg, &frame); err != nil {
			continue
		}
		switch {
		case frame.Subscribe == router.ChannelPrivate:
			s.onSubscribePrivate(c, frame.Headers)
		case frame.Subscribe == router.ChannelTable:
			s.onSubscribeTable(c)
		case frame.Destination != "":
			s.onAppFrame(c, frame.Destination, frame.Body)
		}
	}
}

func (s *Server) onSubscribePrivate(c *client, headers map[string]string) {
	c.private = true
	c.playerID = headers["playerId"]
	c.handle = headers["playerHandle"]
	if c.playerID == "" {
		c.playerID = "guest-" + c.sessionID[len(c.sessionID)-6:]
	}
	if c.handle == "" {
		c.handle = "Guest"
	}
	s.sendTo(c, router.Envelope{
		Channel:      router.ChannelPrivate,
		MessageType:  router.KindSubscribe,
		PlayerID:     c.playerID,
		PlayerHandle: c.handle,
	})
}

func (s *Server) onSubscribeTable(c *client) {
	c.table = true
	// Prime the joiner with the current state straight away.
	s.sendTo(c, router.Envelope{
		Channel:     router.ChannelTable,
		MessageType: router.KindGameUpdate,
		CurrentGame: s.tbl.snapshot(),
	})
}

func (s *Server) onAppFrame(c *client, destination string, body json.RawMessage) {
	idx := strings.LastIndex(destination, s.cfg.GameID)
	if idx < 0 {
		return
	}
	switch path := destination[idx+len(s.cfg.GameID):]; path {
	case "/addplayer":
		s.onAddPlayer(c, body)
	case "/player/action":
		s.onPlayerAction(c, body)
	case "/chat", "/privatechat":
		s.onChat(c, body, path == "/privatechat")
	case "/player/eject":
		s.onEject(body)
	case "/changeSetting":
		s.broadcast(router.Envelope{
			Channel:     router.ChannelTable,
			MessageType: router.KindSettingsUpdate,
			Settings:    s.tbl.snapshot().Settings,
		})
	default:
		log.Debug().Str("destination", destination).Msg("unhandled app frame")
	}
}

func (s *Server) onAddPlayer(c *client, body json.RawMessage) {
	var join router.JoinRequest
	if err := json.Unmarshal(body, &join); err != nil {
		return
	}
	seated := s.tbl.seat(join.PlayerID, c.sessionID, join.PlayerHandle, join.Picture, join.SeatingPos, join.CurrentStack.Stack)
	c.playerID = seated.PlayerID
	c.handle = seated.PlayerHandle

	s.sendTo(c, router.Envelope{
		Channel:     router.ChannelPrivate,
		MessageType: router.KindJoinerPrivate,
		Successful:  true,
		Player:      &seated,
		CurrentGame: s.tbl.snapshot(),
		Message:     seated.PlayerHandle + " took a seat",
	})
	s.broadcast(router.Envelope{
		Channel:     router.ChannelTable,
		MessageType: router.KindJoiner,
		Player:      &seated,
		Message:     seated.PlayerHandle + " joined the table",
	})
}

func (s *Server) onPlayerAction(c *client, body json.RawMessage) {
	var action router.PlayerAction
	if err := json.Unmarshal(body, &action); err != nil {
		return
	}

	phase := s.tbl.phaseNow()
	if phase == game.PhasePreDeal || phase == game.PhaseComplete {
		hands := s.tbl.deal()
		s.mu.Lock()
		for cl := range s.clients {
			if hand, ok := hands[cl.playerID]; ok && cl.private {
				s.sendLocked(cl, router.Envelope{
					Channel:     router.ChannelPrivate,
					MessageType: router.KindReceiveCards,
					Hand:        hand,
				})
			}
		}
		s.mu.Unlock()
		s.broadcast(router.Envelope{
			Channel:     router.ChannelTable,
			MessageType: router.KindGameUpdate,
			CurrentGame: s.tbl.snapshot(),
			NewGame:     true,
			Message:     "New round dealt",
		})
		return
	}

	s.tbl.apply(action.PlayerID, action.Action, action.BetValue)
	s.sendTo(c, router.Envelope{
		Channel:     router.ChannelPrivate,
		MessageType: router.KindPlayerAction,
		Successful:  true,
		Action:      string(action.Action),
	})
	s.broadcast(router.Envelope{
		Channel:      router.ChannelTable,
		MessageType:  router.KindGameUpdate,
		CurrentGame:  s.tbl.snapshot(),
		Message:      c.handle + " " + strings.ToLower(string(action.Action)),
		PlayerAction: &action,
	})
}

func (s *Server) onChat(c *client, body json.RawMessage, private bool) {
	var chat router.ChatMessage
	if err := json.Unmarshal(body, &chat); err != nil {
		return
	}
	env := router.Envelope{
		Channel:      router.ChannelTable,
		MessageType:  router.KindChat,
		Message:      chat.Message,
		SessionID:    c.sessionID,
		PlayerHandle: chat.PlayerHandle,
		Picture:      chat.Picture,
	}
	if !private {
		s.broadcast(env)
		return
	}
	s.mu.Lock()
	defer s.mu.Unlock()
	for cl := range s.clients {
		if cl.sessionID == chat.SessionID {
			env.Channel = router.ChannelPrivate
			s.sendLocked(cl, env)
		}
	}
}

func (s *Server) onEject(body json.RawMessage) {
	var ev router.Eviction
	if err := json.Unmarshal(body, &ev); err != nil {
		return
	}
	if ev.IsReject {
		s.broadcast(router.Envelope{
			Channel:     router.ChannelTable,
			MessageType: router.KindChat,
			SessionID:   "SYSTEM",
			Message:     "The eviction was rejected",
		})
		return
	}
	s.mu.Lock()
	defer s.mu.Unlock()
	for cl := range s.clients {
		if cl.sessionID == ev.ToEvictID {
			s.sendLocked(cl, router.Envelope{
				Channel:     router.ChannelPrivate,
				MessageType: router.KindEvictPlayer,
				ToEvictID:   ev.ToEvictID,
			})
		}
	}
}

func (s *Server) sendTo(c *client, env router.Envelope) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.sendLocked(c, env)
}

func (s *Server) sendLocked(c *client, env router.Envelope) {
	if !s.clients[c] {
		return
	}
	data, err := json.Marshal(env)
	if err != nil {
		return
	}
	select {
	case c.send <- data:
	default:
		log.Warn().Str("session", c.sessionID).Msg("slow consumer, frame dropped")
	}
}

// broadcast delivers to every table-subscribed client.
func (s *Server) broadcast(env router.Envelope) {
	s.mu.Lock()
	defer s.mu.Unlock()
	for cl := range s.clients {
		if cl.table {
			s.sendLocked(cl, env)
		}
	}
}
