package game

// Action is a player action name as the server expects it on the wire.
type Action string

const (
	ActionCheck     Action = "CHECK"
	ActionCall      Action = "CALL"
	ActionBet       Action = "BET"
	ActionRaise     Action = "RAISE"
	ActionAllIn     Action = "ALL_IN"
	ActionFold      Action = "FOLD"
	ActionReveal    Action = "REVEAL"
	ActionPostBlind Action = "POST_BLIND"
	ActionSitOut    Action = "SIT_OUT"
	ActionCashOut   Action = "CASH_OUT"
	ActionReBuy     Action = "RE_BUY"
	ActionTransfer  Action = "TRANSFER_FUNDS"
	ActionEvict     Action = "EVICT_PLAYER"
)
