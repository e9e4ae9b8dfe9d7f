package session

import (
	"math/rand"
	"sync"
	"time"

	"github.com/oklog/ulid/v2"
)

// Identity is the durable key every other component joins on. The connection
// lifecycle manager is its only writer; SessionID is ephemeral and replaced
// on every reconnect, the rest persists for the sitting.
type Identity struct {
	GameID       string `json:"gameId"`
	SessionID    string `json:"sessionId"`
	PlayerID     string `json:"playerId"`
	PlayerHandle string `json:"playerHandle"`
	PlayerEmail  string `json:"playerEmail,omitempty"`
	FullName     string `json:"fullName,omitempty"`
	AccLevel     string `json:"accLevel,omitempty"`
	Picture      string `json:"picture,omitempty"`
}

var (
	ulidEntropy   = ulid.Monotonic(rand.New(rand.NewSource(time.Now().UnixNano())), 0)
	ulidEntropyMu sync.Mutex
)

// NewSessionID mints a fresh ephemeral connection-session id.
func NewSessionID() string {
	ulidEntropyMu.Lock()
	defer ulidEntropyMu.Unlock()
	return ulid.MustNew(ulid.Timestamp(time.Now()), ulidEntropy).String()
}
