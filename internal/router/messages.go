package router

import (
	"encoding/json"

	"holdem-client/internal/game"
)

// Logical channels multiplexed over the one websocket. Every inbound frame
// declares which one it belongs to.
const (
	ChannelPrivate = "private"
	ChannelTable   = "table"
)

// Private-channel message kinds.
const (
	KindSubscribe     = "SUBSCRIBE"
	KindEvictPlayer   = "EVICT_PLAYER"
	KindStatusMsg     = "STATUS_MSG"
	KindCashOut       = "CASH_OUT"
	KindAnte          = "ANTE"
	KindPlayerAction  = "PLAYER_ACTION"
	KindStats         = "STATS"
	KindChat          = "CHAT"
	KindGameUpdate    = "GAME_UPDATE"
	KindJoinerPrivate = "JOINER_PRIVATE"
	KindReceiveCards  = "RECEIVE_CARDS"
)

// Table-channel message kinds. CHAT and GAME_UPDATE appear on both channels.
const (
	KindJoiner         = "JOINER"
	KindLeaver         = "LEAVER"
	KindShowCards      = "SHOW_CARDS"
	KindCompleteGame   = "COMPLETE_GAME"
	KindSettingsUpdate = "SETTINGS_UPDATE"
)

// Envelope is the inbound message shape for both channels; fields beyond
// messageType are populated per kind.
type Envelope struct {
	Channel     string `json:"channel"`
	MessageType string `json:"messageType"`
	Message     string `json:"message,omitempty"`
	Successful  bool   `json:"successful,omitempty"`
	Reconnect   bool   `json:"reconnect,omitempty"`
	NewGame     bool   `json:"newGame,omitempty"`
	Result      string `json:"result,omitempty"`

	PlayerID     string `json:"playerId,omitempty"`
	SessionID    string `json:"sessionId,omitempty"`
	PlayerHandle string `json:"playerHandle,omitempty"`
	Picture      string `json:"picture,omitempty"`
	SeatingPos   int    `json:"seatingPos,omitempty"`

	CurrentGame  *game.Snapshot   `json:"currentGame,omitempty"`
	Player       *game.PlayerInfo `json:"player,omitempty"`
	Settings     *game.Settings   `json:"settings,omitempty"`
	Cards        []game.Card      `json:"cards,omitempty"`
	Hand         []game.Card      `json:"hand,omitempty"`
	Stats        json.RawMessage  `json:"stats,omitempty"`
	PlayerAction *PlayerAction    `json:"playerAction,omitempty"`

	ToEvictID    string `json:"toEvictId,omitempty"`
	HostTransfer bool   `json:"hostTransfer,omitempty"`
	AnteType     string `json:"anteType,omitempty"`
	Action       string `json:"action,omitempty"`
	ActionSound  string `json:"actionSound,omitempty"`
}

// Frame is an outbound application message: a destination path plus the
// identity/auth headers stamped on every send.
type Frame struct {
	Destination string            `json:"destination"`
	Headers     map[string]string `json:"headers"`
	Body        any               `json:"body,omitempty"`
}

// SubscribeFrame attaches this connection to one logical channel.
type SubscribeFrame struct {
	Subscribe string            `json:"subscribe"`
	GameID    string            `json:"gameId"`
	Headers   map[string]string `json:"headers"`
}

// PlayerAction is the outbound action shape.
type PlayerAction struct {
	PlayerID     string      `json:"playerId"`
	SessionID    string      `json:"sessionId"`
	GameID       string      `json:"gameId"`
	PlayerHandle string      `json:"playerHandle"`
	Picture      string      `json:"picture"`
	Action       game.Action `json:"action"`
	BetValue     game.Pence  `json:"betValue"`
}

// ChatMessage is the outbound chat shape; SessionID is the target session for
// private chat, our own for table chat.
type ChatMessage struct {
	PlayerID     string `json:"playerId"`
	SessionID    string `json:"sessionId"`
	PlayerHandle string `json:"playerHandle"`
	Picture      string `json:"picture"`
	Message      string `json:"message"`
}

// StackTransfer moves funds between two players' stacks (host operation).
type StackTransfer struct {
	FromID       string      `json:"fromId"`
	ToID         string      `json:"toId"`
	Amount       game.Pence  `json:"amount"`
	GameID       string      `json:"gameId"`
	PlayerID     string      `json:"playerId"`
	PlayerHandle string      `json:"playerHandle"`
	SessionID    string      `json:"sessionId"`
	Picture      string      `json:"picture"`
	Action       game.Action `json:"action"`
}

// SettingChange requests one settings field update (host operation).
type SettingChange struct {
	RequestorID  string `json:"requestorId"`
	SettingName  string `json:"settingName"`
	SettingValue any    `json:"settingValue"`
	Picture      string `json:"picture"`
}

// Eviction forcibly removes a player, or rejects a removal in progress.
type Eviction struct {
	ToEvictID string      `json:"toEvictId"`
	GameID    string      `json:"gameId"`
	Action    game.Action `json:"action"`
	Picture   string      `json:"picture"`
	IsReject  bool        `json:"isReject"`
}

// JoinRequest takes a seat at the table.
type JoinRequest struct {
	PlayerID     string         `json:"playerId"`
	SessionID    string         `json:"sessionId"`
	SeatingPos   int            `json:"seatingPos"`
	Picture      string         `json:"picture"`
	Email        string         `json:"email"`
	PlayerHandle string         `json:"playerHandle"`
	CurrentStack game.StackInfo `json:"currentStack"`
}
