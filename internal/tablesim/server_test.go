package tablesim

import (
	"context"
	"encoding/json"
	"net/http/httptest"
	"strings"
	"testing"
	"time"

	"github.com/gorilla/websocket"

	"holdem-client/internal/config"
	"holdem-client/internal/game"
	"holdem-client/internal/handrank"
	"holdem-client/internal/router"
	"holdem-client/internal/session"
)

func simConfig() config.SimConfig {
	return config.SimConfig{GameID: "local-table", AntePence: 50, BigBlindPence: 200}
}

func dialWS(t *testing.T, srv *httptest.Server) *websocket.Conn {
	t.Helper()
	url := "ws" + strings.TrimPrefix(srv.URL, "http") + "/ws"
	conn, resp, err := websocket.DefaultDialer.Dial(url, nil)
	if resp != nil && resp.Body != nil {
		resp.Body.Close()
	}
	if err != nil {
		t.Fatalf("dial: %+v", err)
	}
	return conn
}

func readEnvelope(t *testing.T, conn *websocket.Conn) router.Envelope {
	t.Helper()
	_ = conn.SetReadDeadline(time.Now().Add(2 * time.Second))
	_, data, err := conn.ReadMessage()
	if err != nil {
		t.Fatalf("read: %+v", err)
	}
	var env router.Envelope
	if err := json.Unmarshal(data, &env); err != nil {
		t.Fatalf("decode %s: %+v", data, err)
	}
	return env
}

func writeJSONFrame(t *testing.T, conn *websocket.Conn, v any) {
	t.Helper()
	if err := conn.WriteJSON(v); err != nil {
		t.Fatalf("write: %+v", err)
	}
}

func TestSessionBootstrap(t *testing.T) {
	srv := httptest.NewServer(NewServer(simConfig()).Router())
	defer srv.Close()

	boot, err := session.NewClient(srv.URL, time.Second).Fetch(context.Background(), true)
	if err != nil {
		t.Fatalf("fetch: %+v", err)
	}
	if boot.Identity.PlayerID == "" || boot.Credential.Empty() {
		t.Fatalf("bootstrap = %+v", boot)
	}
	if boot.Credential.Stale(time.Now()) {
		t.Fatal("fresh token must not be stale")
	}
}

func TestHandrankEndpoint(t *testing.T) {
	srv := httptest.NewServer(NewServer(simConfig()).Router())
	defer srv.Close()

	c := handrank.NewClient(srv.URL, time.Second)
	rank, err := c.Evaluate(context.Background(),
		[]game.Card{{Code: "As"}, {Code: "Kd"}, {Code: "7c"}},
		[]game.Card{{Code: "Ah"}, {Code: "Ac"}})
	if err != nil {
		t.Fatalf("evaluate: %+v", err)
	}
	if rank.RankName != "Three of a Kind" {
		t.Fatalf("rank = %+v", rank)
	}

	if _, err := c.Evaluate(context.Background(), nil, nil); err == nil {
		t.Fatal("expected a message for missing player cards")
	}
}

func TestSubscribeAndJoinFlow(t *testing.T) {
	srv := httptest.NewServer(NewServer(simConfig()).Router())
	defer srv.Close()

	conn := dialWS(t, srv)
	defer conn.Close()

	writeJSONFrame(t, conn, router.SubscribeFrame{
		Subscribe: router.ChannelPrivate,
		GameID:    "local-table",
		Headers:   map[string]string{"playerId": "p1", "playerHandle": "Ted"},
	})
	env := readEnvelope(t, conn)
	if env.MessageType != router.KindSubscribe || env.PlayerID != "p1" {
		t.Fatalf("env = %+v, want the SUBSCRIBE confirmation", env)
	}

	writeJSONFrame(t, conn, router.SubscribeFrame{Subscribe: router.ChannelTable, GameID: "local-table"})
	env = readEnvelope(t, conn)
	if env.MessageType != router.KindGameUpdate || env.CurrentGame == nil {
		t.Fatalf("env = %+v, want the priming snapshot", env)
	}

	writeJSONFrame(t, conn, router.Frame{
		Destination: "/app/texas/local-table/addplayer",
		Body: router.JoinRequest{
			PlayerID:     "p1",
			PlayerHandle: "Ted",
			SeatingPos:   1,
			CurrentStack: game.StackInfo{Stack: 10000},
		},
	})

	sawPrivateJoin, sawTableJoin := false, false
	for i := 0; i < 2; i++ {
		env = readEnvelope(t, conn)
		switch env.MessageType {
		case router.KindJoinerPrivate:
			sawPrivateJoin = true
			if !env.Successful || env.CurrentGame == nil || env.Player == nil {
				t.Fatalf("joiner private = %+v", env)
			}
		case router.KindJoiner:
			sawTableJoin = true
		}
	}
	if !sawPrivateJoin || !sawTableJoin {
		t.Fatalf("join flow incomplete: private=%v table=%v", sawPrivateJoin, sawTableJoin)
	}
}

func TestScriptedDealProgression(t *testing.T) {
	tbl := newTable("local-table", 50, 200)
	tbl.seat("p1", "s1", "Ted", "", 1, 10000)
	tbl.seat("p2", "s2", "Ann", "", 2, 10000)

	hands := tbl.deal()
	if len(hands) != 2 || len(hands["p1"]) != 2 {
		t.Fatalf("hands = %+v", hands)
	}
	if tbl.phaseNow() != game.PhasePostDeal {
		t.Fatalf("phase = %s", tbl.phaseNow())
	}

	tbl.apply("p1", game.ActionBet, 200)
	snap := tbl.snapshot()
	if snap.GameState != game.PhaseFlop || len(snap.CardsOnTable) != 3 {
		t.Fatalf("after first action: %s board=%d", snap.GameState, len(snap.CardsOnTable))
	}
	if snap.CurrentPot != 200 {
		t.Fatalf("pot = %v", snap.CurrentPot)
	}
	if err := snap.Validate(); err != nil {
		t.Fatalf("snapshot invalid: %+v", err)
	}

	tbl.apply("p2", game.ActionCall, 200)
	tbl.apply("p1", game.ActionCheck, 0)
	tbl.apply("p2", game.ActionCheck, 0)
	if got := tbl.phaseNow(); got != game.PhaseComplete {
		t.Fatalf("phase = %s, want COMPLETE", got)
	}
}

func TestEvaluateCategories(t *testing.T) {
	cases := []struct {
		name  string
		table []string
		hole  []string
		want  string
	}{
		{"pair", []string{"As", "Kd", "7c"}, []string{"Ah", "2c"}, "Pair"},
		{"two pair", []string{"As", "Kd", "7c"}, []string{"Ah", "Kc"}, "Two Pair"},
		{"trips", []string{"As", "Kd", "7c"}, []string{"Ah", "Ac"}, "Three of a Kind"},
		{"full house", []string{"As", "Ad", "Kc"}, []string{"Ah", "Kd"}, "Full House"},
		{"quads", []string{"As", "Ad", "Ac"}, []string{"Ah", "Kd"}, "Four of a Kind"},
		{"high card", []string{"2s", "5d", "7c"}, []string{"9h", "Kd"}, "High Card"},
	}
	for _, tc := range cases {
		var table, hole []game.Card
		for _, c := range tc.table {
			table = append(table, game.Card{Code: c})
		}
		for _, c := range tc.hole {
			hole = append(hole, game.Card{Code: c})
		}
		_, name, _ := evaluate(table, hole)
		if name != tc.want {
			t.Fatalf("%s: name = %q, want %q", tc.name, name, tc.want)
		}
	}
}
