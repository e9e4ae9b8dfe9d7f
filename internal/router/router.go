// Package router multiplexes the two logical channels over one transport
// session: the per-player private channel and the shared table channel. It
// stamps outgoing messages with identity and auth metadata and dispatches
// inbound messages to handlers by message kind.
package router

import (
	"context"
	"encoding/json"
	"errors"
	"time"

	"github.com/rs/zerolog/log"

	"holdem-client/internal/connection"
	"holdem-client/internal/game"
	"holdem-client/internal/session"
	"holdem-client/internal/sink"
)

const (
	sendPrefix     = "/app/texas/"
	refreshTimeout = 10 * time.Second
	evictionWindow = 30 * time.Second

	disconnectNotice = "You are currently disconnected from the server - Attempting to reconnect..."
)

var (
	ErrDisconnected = errors.New("not_connected")
	ErrNoCredential = errors.New("credential_unavailable")
	ErrMissingBet   = errors.New("missing_bet_value")
)

// Connection is the slice of the lifecycle manager the router drives.
type Connection interface {
	Identity() session.Identity
	ConfirmIdentity(playerID, handle string)
	Transport() connection.Transport
	SetEveningStarted(bool)
}

// Callbacks are the router's outbound edges into the rest of the client.
// All fire on the run loop.
type Callbacks struct {
	// OnSubscribed fires once both channels are up after a (re)connect.
	OnSubscribed func()
	// OnSnapshot delivers every accepted whole-snapshot replacement.
	OnSnapshot func(snap *game.Snapshot, newGame, reconnect bool)
	// OnSeated fires when the server confirms this player's seat.
	OnSeated func(p game.PlayerInfo)
	// OnHoleCards delivers this player's own two cards.
	OnHoleCards func(cards []game.Card)
	// OnShowCards reveals another seat's cards.
	OnShowCards func(seatingPos int, cards []game.Card)
	// OnLeaver marks a seat removed; its history stays on display.
	OnLeaver func(seatingPos int)
	// OnCompleteGame fires on the end-of-evening stats push.
	OnCompleteGame func()
	// OnHostTransfer toggles host controls when the host role moves.
	OnHostTransfer func(isHost bool)
	// OnCashOut is terminal for this sitting: all controls go down.
	OnCashOut func()
	// OnSettings applies a live settings change.
	OnSettings func(s game.Settings)
}

type Router struct {
	conn    Connection
	sinks   sink.Sinks
	calls   Callbacks
	refresh func(ctx context.Context) (session.Credential, error)
	now     func() time.Time

	// autoBlind suppresses the blind-request notice when the local
	// auto-post preference handles it.
	autoBlind func() bool

	cred            session.Credential
	snapshot        *game.Snapshot
	tableSubscribed bool
	seated          bool

	private map[string]func(*Envelope)
	table   map[string]func(*Envelope)
}

func New(conn Connection, sinks sink.Sinks, calls Callbacks, refresh func(ctx context.Context) (session.Credential, error), autoBlind func() bool) *Router {
	if autoBlind == nil {
		autoBlind = func() bool { return false }
	}
	r := &Router{
		conn:      conn,
		sinks:     sinks,
		calls:     calls,
		refresh:   refresh,
		autoBlind: autoBlind,
		now:       time.Now,
	}
	r.private = map[string]func(*Envelope){
		KindSubscribe:     r.onSubscribeConfirmed,
		KindEvictPlayer:   r.onEvictRequest,
		KindStatusMsg:     r.onStatusMsg,
		KindCashOut:       r.onCashOut,
		KindAnte:          r.onAnte,
		KindPlayerAction:  r.onActionResult,
		KindStats:         r.onStats,
		KindChat:          r.onPrivateChat,
		KindGameUpdate:    r.onPrivateGameUpdate,
		KindJoinerPrivate: r.onJoinerPrivate,
		KindReceiveCards:  r.onReceiveCards,
	}
	r.table = map[string]func(*Envelope){
		KindJoiner:         r.onJoiner,
		KindLeaver:         r.onLeaver,
		KindChat:           r.onTableChat,
		KindShowCards:      r.onShowCards,
		KindCompleteGame:   r.onCompleteGame,
		KindSettingsUpdate: r.onSettingsUpdate,
		KindGameUpdate:     r.onTableGameUpdate,
	}
	return r
}

// SetCredential seeds the access credential from the session bootstrap.
func (r *Router) SetCredential(c session.Credential) { r.cred = c }

// Snapshot is the last accepted whole-snapshot replacement; retained across a
// disconnect for display continuity until the first post-reconnect one.
func (r *Router) Snapshot() *game.Snapshot { return r.snapshot }

func (r *Router) Seated() bool { return r.seated }

// SubscribeChannels starts the two-step subscription: private channel first;
// the table channel only once the private SUBSCRIBE message confirms our
// identity claims. Wired to the lifecycle manager's OnConnected hook, so it
// also runs on every reconnect.
func (r *Router) SubscribeChannels() {
	r.tableSubscribed = false
	r.subscribe(ChannelPrivate)
}

func (r *Router) subscribe(channel string) {
	h, err := r.headers()
	if err != nil {
		r.notifyDisconnected()
		return
	}
	if channel == ChannelPrivate {
		// On the private subscription the session id is assigned by the
		// server, not claimed by us.
		delete(h, "sessionId")
	}
	frame := SubscribeFrame{Subscribe: channel, GameID: r.conn.Identity().GameID, Headers: h}
	if err := r.sendFrame(frame); err != nil {
		log.Warn().Err(err).Str("channel", channel).Msg("subscribe failed")
		return
	}
	log.Info().Str("channel", channel).Msg("subscribed")
}

// HandleMessage is the transport's inbound edge: decode, pick the channel,
// dispatch by kind. Unknown kinds are ignored, not errors.
func (r *Router) HandleMessage(data []byte) {
	var env Envelope
	if err := json.Unmarshal(data, &env); err != nil {
		log.Warn().Err(err).Msg("undecodable inbound message")
		return
	}
	switch env.Channel {
	case ChannelPrivate:
		if h, ok := r.private[env.MessageType]; ok {
			h(&env)
			return
		}
		log.Debug().Str("messageType", env.MessageType).Msg("unhandled private kind")
	case ChannelTable:
		if !r.tableSubscribed {
			// Identity is not confirmed yet; table events are meaningless.
			log.Warn().Str("messageType", env.MessageType).Msg("table message before subscription")
			return
		}
		if h, ok := r.table[env.MessageType]; ok {
			h(&env)
		} else {
			log.Debug().Str("messageType", env.MessageType).Msg("unhandled table kind")
		}
		r.statusLine(&env)
	default:
		log.Debug().Str("channel", env.Channel).Msg("unknown channel")
	}
}

// --- outbound -------------------------------------------------------------

// Send stamps identity/auth headers onto body and writes it to the table
// destination. Fails fast while disconnected: at-most-once, no buffering.
func (r *Router) Send(action string, body any) error {
	if r.conn.Transport() == nil {
		r.notifyDisconnected()
		return ErrDisconnected
	}
	path := sendPrefix + r.conn.Identity().GameID
	if len(action) > 0 && action[0] != '/' {
		path += "/"
	}
	path += action

	h, err := r.headers()
	if err != nil {
		r.notifyDisconnected()
		return err
	}
	return r.sendFrame(Frame{Destination: path, Headers: h, Body: body})
}

// PostAction sends this player's action. Satisfies the control surface's
// poster contract.
func (r *Router) PostAction(action game.Action, betValue game.Pence) error {
	if action == "" {
		return nil
	}
	if (action == game.ActionRaise || action == game.ActionBet) && betValue < 0 {
		r.sinks.Chat.Chat("", "", "No bet has been provided!", true)
		return ErrMissingBet
	}
	id := r.conn.Identity()
	return r.Send("/player/action", PlayerAction{
		PlayerID:     id.PlayerID,
		SessionID:    id.SessionID,
		GameID:       id.GameID,
		PlayerHandle: id.PlayerHandle,
		Picture:      id.Picture,
		Action:       action,
		BetValue:     betValue,
	})
}

// SendChat sends table chat, or private chat when toSessionID is set.
func (r *Router) SendChat(message, toSessionID string) error {
	if message == "" {
		return nil
	}
	id := r.conn.Identity()
	dest := "/chat"
	target := id.SessionID
	if toSessionID != "" {
		dest = "/privatechat"
		target = toSessionID
	}
	return r.Send(dest, ChatMessage{
		PlayerID:     id.PlayerID,
		SessionID:    target,
		PlayerHandle: id.PlayerHandle,
		Picture:      id.Picture,
		Message:      message,
	})
}

// TransferStack moves funds between stacks (host operation).
func (r *Router) TransferStack(fromID, toID string, amount game.Pence) error {
	if fromID == "" || toID == "" || amount == 0 {
		return nil
	}
	id := r.conn.Identity()
	return r.Send("/player/stackTransfer", StackTransfer{
		FromID:       fromID,
		ToID:         toID,
		Amount:       amount,
		GameID:       id.GameID,
		PlayerID:     id.PlayerID,
		PlayerHandle: id.PlayerHandle,
		SessionID:    id.SessionID,
		Picture:      id.Picture,
		Action:       game.ActionTransfer,
	})
}

// ChangeSetting requests one settings field update (host operation).
func (r *Router) ChangeSetting(name string, value any) error {
	if name == "" || value == nil {
		return nil
	}
	id := r.conn.Identity()
	return r.Send("/changeSetting", SettingChange{
		RequestorID:  id.SessionID,
		SettingName:  name,
		SettingValue: value,
		Picture:      id.Picture,
	})
}

// Evict removes a player from the game; isReject answers an eviction aimed
// at us.
func (r *Router) Evict(toEvictSessionID string, isReject bool) error {
	if toEvictSessionID == "" {
		return nil
	}
	id := r.conn.Identity()
	return r.Send("/player/eject", Eviction{
		ToEvictID: toEvictSessionID,
		GameID:    id.GameID,
		Action:    game.ActionEvict,
		Picture:   id.Picture,
		IsReject:  isReject,
	})
}

// JoinTable takes a seat.
func (r *Router) JoinTable(seatingPos int, handle string, wallet game.Pence) error {
	r.conn.ConfirmIdentity("", handle)
	id := r.conn.Identity()
	return r.Send("/addplayer", JoinRequest{
		PlayerID:     id.PlayerID,
		SessionID:    id.SessionID,
		SeatingPos:   seatingPos,
		Picture:      id.Picture,
		Email:        id.PlayerEmail,
		PlayerHandle: handle,
		CurrentStack: game.StackInfo{Stack: wallet},
	})
}

func (r *Router) sendFrame(frame any) error {
	tr := r.conn.Transport()
	if tr == nil {
		r.notifyDisconnected()
		return ErrDisconnected
	}
	return tr.Send(frame)
}

// headers builds the identity/auth header set. A credential inside its expiry
// lookahead forces a refresh round-trip first: sends are never stamped with an
// expired credential. A failed refresh empties the credential and blocks the
// send locally.
func (r *Router) headers() (map[string]string, error) {
	if r.cred.Stale(r.now()) {
		ctx, cancel := context.WithTimeout(context.Background(), refreshTimeout)
		cred, err := r.refresh(ctx)
		cancel()
		if err != nil || cred.Empty() {
			r.cred = session.Credential{}
			log.Warn().Err(err).Msg("credential refresh failed")
			return nil, ErrNoCredential
		}
		r.cred = cred
	}
	id := r.conn.Identity()
	return map[string]string{
		"playerId":        id.PlayerID,
		"sessionId":       id.SessionID,
		"gameId":          id.GameID,
		"playerHandle":    id.PlayerHandle,
		"X-Authorization": "Bearer " + r.cred.Token,
	}, nil
}

func (r *Router) notifyDisconnected() {
	r.sinks.Chat.Chat("", "", disconnectNotice, true)
}

// --- private channel ------------------------------------------------------

// onSubscribeConfirmed: the server has confirmed our identity claims; this is
// the trigger to subscribe the shared table channel, never before.
func (r *Router) onSubscribeConfirmed(env *Envelope) {
	r.conn.ConfirmIdentity(env.PlayerID, env.PlayerHandle)
	r.subscribe(ChannelTable)
	r.tableSubscribed = true
	if r.calls.OnSubscribed != nil {
		r.calls.OnSubscribed()
	}
}

func (r *Router) onEvictRequest(env *Envelope) {
	if env.ToEvictID != r.conn.Identity().SessionID {
		return
	}
	mySession := env.ToEvictID
	r.sinks.Prompt.Show(sink.Prompt{
		Kind:    "evictReceived",
		Title:   "You are being evicted",
		Body:    "The host is attempting to evict you from the game! You have 30 seconds to reject this action.",
		Accept:  "Stay in game",
		Expires: evictionWindow,
		OnAccept: func() {
			if err := r.Evict(mySession, true); err != nil {
				log.Warn().Err(err).Msg("eviction reject failed")
			}
		},
	})
}

func (r *Router) onStatusMsg(env *Envelope) {
	if r.calls.OnHostTransfer != nil {
		r.calls.OnHostTransfer(env.HostTransfer)
	}
	r.privateChatLine(env.Message, true, env.Picture)
}

// onCashOut is terminal for this sitting.
func (r *Router) onCashOut(env *Envelope) {
	r.sinks.Prompt.Show(sink.Prompt{
		Kind:   "cashout",
		Title:  "Cashed Out",
		Body:   env.Message,
		Accept: "OK",
	})
	if r.calls.OnCashOut != nil {
		r.calls.OnCashOut()
	}
}

func (r *Router) onAnte(env *Envelope) {
	if r.autoBlind() {
		// The auto-post preference handles it; no notice.
		return
	}
	message := env.Message
	switch env.AnteType {
	case string(game.BlindBig):
		message = "Please post the Big blind"
	case string(game.BlindSmall):
		message = "Please post the Small blind"
	}
	r.privateChatLine(message, false, env.Picture)
}

// onActionResult reports a server-side action verdict; a rejection is a
// transient status entry, never fatal.
func (r *Router) onActionResult(env *Envelope) {
	if env.Successful {
		return
	}
	message := env.Message
	if env.Action == string(game.ActionBet) {
		message = "Invalid bet value"
	}
	r.privateChatLine(message, true, env.Picture)
}

func (r *Router) onStats(env *Envelope) {
	if len(env.Stats) > 0 {
		r.sinks.Stats.Stats(env.Stats)
	}
}

func (r *Router) onPrivateChat(env *Envelope) {
	r.privateChatLine(env.Message, false, env.Picture)
}

func (r *Router) onPrivateGameUpdate(env *Envelope) {
	if env.CurrentGame != nil {
		r.applySnapshot(env.CurrentGame, false, false)
	}
	r.privateChatLine(env.Message, true, env.Picture)
}

func (r *Router) onJoinerPrivate(env *Envelope) {
	if env.CurrentGame == nil || !env.Successful {
		r.privateChatLine(env.Message, true, env.Picture)
		return
	}
	r.seated = true
	if env.Player != nil && r.calls.OnSeated != nil {
		r.calls.OnSeated(*env.Player)
	}
	r.applySnapshot(env.CurrentGame, false, env.Reconnect)
	r.privateChatLine(env.Message, true, env.Picture)
}

func (r *Router) onReceiveCards(env *Envelope) {
	if len(env.Hand) == 2 && r.calls.OnHoleCards != nil {
		r.calls.OnHoleCards(env.Hand)
	}
}

func (r *Router) privateChatLine(message string, system bool, picture string) {
	if message == "" {
		return
	}
	r.sinks.Chat.Chat("", picture, message, system)
}

// --- table channel --------------------------------------------------------

// onJoiner appends the new player to the roster, deduplicated by player id.
func (r *Router) onJoiner(env *Envelope) {
	if env.Player == nil || env.Player.PlayerID == r.conn.Identity().PlayerID {
		return
	}
	if r.snapshot == nil || r.snapshot.HasPlayer(env.Player.PlayerID) {
		return
	}
	r.snapshot.Players = append(r.snapshot.Players, *env.Player)
	if r.calls.OnSnapshot != nil {
		r.calls.OnSnapshot(r.snapshot, false, false)
	}
}

// onLeaver transitions the seat to a removed display state; nothing is
// deleted, the next snapshot is authoritative anyway.
func (r *Router) onLeaver(env *Envelope) {
	if r.calls.OnLeaver != nil {
		r.calls.OnLeaver(env.SeatingPos)
	}
}

func (r *Router) onTableChat(env *Envelope) {
	if env.SessionID == r.conn.Identity().SessionID {
		return
	}
	r.sinks.Chat.Chat(env.PlayerHandle, env.Picture, env.Message, env.SessionID == "SYSTEM")
}

func (r *Router) onShowCards(env *Envelope) {
	if len(env.Cards) == 2 && r.calls.OnShowCards != nil {
		r.calls.OnShowCards(env.SeatingPos, env.Cards)
	}
}

func (r *Router) onCompleteGame(env *Envelope) {
	if len(env.Stats) > 0 {
		r.sinks.Stats.Stats(env.Stats)
	}
	if r.calls.OnCompleteGame != nil {
		r.calls.OnCompleteGame()
	}
}

func (r *Router) onSettingsUpdate(env *Envelope) {
	if env.Settings == nil {
		return
	}
	if r.snapshot != nil {
		r.snapshot.Settings = env.Settings
	}
	if r.calls.OnSettings != nil {
		r.calls.OnSettings(*env.Settings)
	}
}

// onTableGameUpdate is the primary snapshot path.
func (r *Router) onTableGameUpdate(env *Envelope) {
	if env.CurrentGame == nil {
		log.Warn().Str("message", env.Message).Msg("game detail missing, update skipped")
		return
	}
	if env.NewGame {
		r.conn.SetEveningStarted(true)
	}
	r.applySnapshot(env.CurrentGame, env.NewGame, false)
	if env.CurrentGame.GameState == game.PhaseComplete {
		// A late joiner reaching a completed round has, by definition,
		// seen one.
		r.conn.SetEveningStarted(true)
	}
}

// applySnapshot enforces the whole-snapshot-replace invariant: an update that
// fails validation is skipped entirely, never partially applied.
func (r *Router) applySnapshot(snap *game.Snapshot, newGame, reconnect bool) {
	if err := snap.Validate(); err != nil {
		log.Warn().Err(err).Msg("snapshot rejected")
		return
	}
	r.snapshot = snap
	if r.calls.OnSnapshot != nil {
		r.calls.OnSnapshot(snap, newGame, reconnect)
	}
}

// statusLine appends table events to the status display. Chat stays in chat.
func (r *Router) statusLine(env *Envelope) {
	if env.Message == "" || env.MessageType == KindChat {
		return
	}
	message := env.Message
	if env.PlayerAction != nil && env.PlayerAction.BetValue != 0 {
		message += " (" + env.PlayerAction.BetValue.String() + ")"
	}
	r.sinks.Status.Status(message, env.Result == "GENERIC_ERROR")
}
