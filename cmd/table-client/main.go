package main

import (
	"context"
	"errors"
	"net/http"
	"os/signal"
	"syscall"
	"time"

	"github.com/joho/godotenv"
	"github.com/rs/zerolog/log"

	"holdem-client/internal/config"
	"holdem-client/internal/connection"
	"holdem-client/internal/controls"
	"holdem-client/internal/game"
	"holdem-client/internal/handrank"
	"holdem-client/internal/logging"
	"holdem-client/internal/reveal"
	"holdem-client/internal/router"
	"holdem-client/internal/runloop"
	"holdem-client/internal/session"
	"holdem-client/internal/sink"
	"holdem-client/internal/statestore"
	"holdem-client/internal/transport"
)

func main() {
	_ = godotenv.Load()

	logCfg, err := config.LoadLog()
	if err != nil {
		panic(err)
	}
	logging.Init(logCfg)

	cfg, err := config.LoadClient()
	if err != nil {
		log.Fatal().Err(err).Msg("load client config failed")
	}

	store, err := statestore.Open(cfg.StatePath)
	if err != nil {
		log.Fatal().Err(err).Msg("state store open failed")
	}

	httpTimeout := time.Duration(cfg.HTTPTimeoutSecs) * time.Second
	sess := session.NewClient(cfg.ServerURL, httpTimeout)

	ctx, stop := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer stop()

	boot, err := sess.Fetch(ctx, true)
	if errors.Is(err, session.ErrSignInRequired) {
		// Preserve the table address for the post-login return.
		_ = store.Set("table-signin", cfg.ServerURL+"/table/"+cfg.GameID, statestore.TableTTL)
		log.Fatal().Str("gameId", cfg.GameID).Msg("not authenticated for this table, sign in first")
	}
	if err != nil {
		log.Fatal().Err(err).Msg("session bootstrap failed")
	}

	identity := boot.Identity
	identity.GameID = cfg.GameID
	// A persisted identity for this table wins over the bootstrap one, so a
	// restart keeps the same seat.
	var savedID session.Identity
	if err := store.Get(statestore.IdentityKey(cfg.GameID), &savedID); err == nil {
		identity = savedID
	}
	if cfg.PlayerHandle != "" {
		identity.PlayerHandle = cfg.PlayerHandle
	}

	loop := runloop.New(0)
	sinks := sink.NewLogSinks()

	// rtr, controller and mgr refer to each other; the hook and dial closures
	// only run after Connect, by which time all three are assigned.
	var (
		rtr        *router.Router
		controller *controls.Controller
		mgr        *connection.Manager
	)

	mgr = connection.New(loop, identity, func(dialCtx context.Context) (connection.Transport, error) {
		cred, err := sess.Refresh(dialCtx)
		if err != nil {
			return nil, err
		}
		header := http.Header{}
		header.Set("X-Authorization", "Bearer "+cred.Token)
		return transport.Dial(dialCtx, cfg.WSURL, header, loop, transport.Handlers{
			OnMessage: func(data []byte) { rtr.HandleMessage(data) },
			OnClose:   func(err error) { mgr.TransportClosed(err) },
		})
	}, connection.Hooks{
		OnConnected: func() { rtr.SubscribeChannels() },
		OnStateChange: func(st connection.State) {
			if st.Reconnecting {
				controller.DisableAll()
				sinks.Status.Status("Disconnected - attempting to reconnect", true)
			}
		},
		OnExhausted: func() {
			sinks.Prompt.Show(sink.Prompt{
				Kind:   "reconnectFailed",
				Title:  "Connection lost",
				Body:   "Reconnection attempts exhausted; reload to rejoin the table.",
				Accept: "Reload",
			})
			loop.Stop()
		},
	}, func(started bool) {
		_ = store.Set(statestore.EveningStartedKey(cfg.GameID), started, statestore.TableTTL)
	})

	persisted := controls.DefaultPersisted()
	_ = store.Get(statestore.ControlStateKey(cfg.GameID), &persisted)
	savePersisted := func(p controls.Persisted) {
		_ = store.Set(statestore.ControlStateKey(cfg.GameID), p, statestore.TableTTL)
	}

	controller = controls.NewController(loop, posterFunc(func(a game.Action, bet game.Pence) error {
		return rtr.PostAction(a, bet)
	}), identity.PlayerID, mgr, persisted, savePersisted)

	display := &logDisplay{}
	seq := reveal.New(loop, display)
	ranker := handrank.NewClient(cfg.ServerURL, httpTimeout)

	var holeCards []game.Card
	rtr = router.New(mgr, sinks, router.Callbacks{
		OnSubscribed: func() {
			controller.SetPlayerID(mgr.Identity().PlayerID)
			_ = store.Set(statestore.IdentityKey(cfg.GameID), mgr.Identity(), statestore.IdentityTTL)
			if !rtr.Seated() {
				if err := rtr.JoinTable(cfg.SeatingPos, mgr.Identity().PlayerHandle, game.Pence(cfg.Wallet)); err != nil {
					log.Warn().Err(err).Msg("take seat failed")
				}
			}
		},
		OnSnapshot: func(snap *game.Snapshot, newGame, reconnect bool) {
			if newGame {
				seq.Reset()
				holeCards = nil
			}
			seq.Apply(snap.CardsOnTable, reconnect)
			controller.Refresh(snap, newGame)
			showRank(ctx, loop, ranker, snap.CardsOnTable, holeCards)
		},
		OnSeated: func(p game.PlayerInfo) {
			log.Info().Int("seat", p.SeatingPos).Str("handle", p.PlayerHandle).Msg("seated")
		},
		OnHoleCards: func(cards []game.Card) {
			holeCards = cards
			log.Info().Strs("cards", game.CardCodes(cards)).Msg("hole cards dealt")
		},
		OnShowCards: func(seatingPos int, cards []game.Card) {
			log.Info().Int("seat", seatingPos).Strs("cards", game.CardCodes(cards)).Msg("cards shown")
		},
		OnLeaver: func(seatingPos int) {
			log.Info().Int("seat", seatingPos).Msg("player left")
		},
		OnCompleteGame: func() { seq.Reset() },
		OnCashOut:      controller.Shutdown,
		OnHostTransfer: func(isHost bool) {
			log.Info().Bool("host", isHost).Msg("host role changed")
		},
	}, sess.Refresh, func() bool { return controller.PersistedState().AutoPostBlind })
	rtr.SetCredential(boot.Credential)

	// Restore the evening flag for this table; absence reads as false.
	var evening bool
	if err := store.Get(statestore.EveningStartedKey(cfg.GameID), &evening); err == nil && evening {
		mgr.SetEveningStarted(true)
	}

	controller.OnChange(func(p controls.Plan) {
		log.Debug().Str("state", string(p.State)).Str("callLabel", p.CallLabel).Msg("controls refreshed")
	})

	loop.Post(mgr.Connect)
	log.Info().Str("gameId", cfg.GameID).Str("ws", cfg.WSURL).Msg("table client starting")
	loop.Run(ctx)
}

type posterFunc func(game.Action, game.Pence) error

func (f posterFunc) PostAction(a game.Action, bet game.Pence) error { return f(a, bet) }

// logDisplay renders the community cards into the log.
type logDisplay struct{}

func (d *logDisplay) ShowCommunityCard(index int, card game.Card) {
	log.Info().Int("position", index+1).Str("card", card.Code).Msg("community card")
}

func (d *logDisplay) ClearCommunityCards() {
	log.Info().Msg("table cleared")
}

// showRank asks the rank service for the current best hand once a flop is
// down; the round-trip runs off-loop and logs on return.
func showRank(ctx context.Context, loop *runloop.Loop, ranker *handrank.Client, tableCards, holeCards []game.Card) {
	if len(tableCards) < 3 || len(holeCards) != 2 {
		return
	}
	go func() {
		rank, err := ranker.Evaluate(ctx, tableCards, holeCards)
		if err != nil {
			log.Debug().Err(err).Msg("rank unavailable")
			return
		}
		loop.Post(func() {
			log.Info().Str("rank", rank.RankName).Int("value", rank.RankValue).Msg("current hand")
		})
	}()
}
