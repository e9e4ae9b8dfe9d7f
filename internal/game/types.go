package game

// Money values are integer pence throughout; the server sends decimal pounds
// and the transport layer converts at the JSON boundary (see Pence).

type Phase string

const (
	PhasePreDeal  Phase = "PRE_DEAL"
	PhasePostDeal Phase = "POST_DEAL"
	PhaseFlop     Phase = "FLOP"
	PhaseTurn     Phase = "TURN"
	PhaseRiver    Phase = "RIVER"
	PhaseComplete Phase = "COMPLETE"
)

type BlindType string

const (
	BlindNone  BlindType = "NONE"
	BlindSmall BlindType = "SMALL"
	BlindBig   BlindType = "BIG"
)

// LimitMode is the table's wager-limit rule set.
type LimitMode string

const (
	NoLimit  LimitMode = "NO_LIMIT"
	PotLimit LimitMode = "POT_LIMIT"
	Limit    LimitMode = "LIMIT"
)

type GameFormat string

const (
	FormatCash       GameFormat = "CASH"
	FormatTournament GameFormat = "TOURNAMENT"
)

type PlayerState struct {
	Folded     bool      `json:"folded"`
	AllIn      bool      `json:"allIn"`
	SittingOut bool      `json:"sittingOut"`
	Dealer     bool      `json:"dealer"`
	ActionOnMe bool      `json:"actionOnMe"`
	Host       bool      `json:"host"`
	BlindsDue  BlindType `json:"blindsDue"`
	LastAction string    `json:"lastAction"`
}

type StackInfo struct {
	Stack   Pence `json:"stack"`
	OnTable Pence `json:"onTable"`
}

type PlayerInfo struct {
	PlayerID     string      `json:"playerId"`
	SessionID    string      `json:"sessionId"`
	PlayerHandle string      `json:"playerHandle"`
	Picture      string      `json:"picture,omitempty"`
	SeatingPos   int         `json:"seatingPos"`
	State        PlayerState `json:"state"`
	CurrentStack StackInfo   `json:"currentStack"`
	Hand         []Card      `json:"hand,omitempty"`
	WinRank      string      `json:"winRank,omitempty"`
	RankedCards  string      `json:"rankedCards,omitempty"`
}

type Settings struct {
	GameID        string     `json:"gameId"`
	Format        GameFormat `json:"format"`
	LimitMode     LimitMode  `json:"potLimit"`
	Ante          Pence      `json:"ante"`
	BigBlind      Pence      `json:"bigBlind"`
	NudgeTime     int        `json:"nudgeTime"`
	ActionTimeout int        `json:"actionTimeout"`
	BuyInDuring   bool       `json:"buyInDuringGameAllowed"`
	HostWallet    bool       `json:"hostControlledWallet"`
}

type Pot struct {
	Name     string       `json:"name"`
	PotTotal Pence        `json:"potTotal"`
	Winners  []PlayerInfo `json:"winners"`
}

type FinalPots struct {
	Pots []Pot `json:"pots"`
}

// Snapshot is the authoritative full-replacement view of the table delivered
// on every table-relevant event. The client never patches one incrementally.
type Snapshot struct {
	GameID       string       `json:"gameId"`
	GameState    Phase        `json:"gameState"`
	Players      []PlayerInfo `json:"players"`
	CardsOnTable []Card       `json:"cardsOnTable"`
	CurrentPot   Pence        `json:"currentPot"`
	RequiredBet  Pence        `json:"requiredBet"`
	MinRaise     Pence        `json:"minRaise"`
	Settings     *Settings    `json:"settings"`
	FinalPots    *FinalPots   `json:"finalPots,omitempty"`
}
