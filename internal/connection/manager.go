// Package connection supervises the transport session: it establishes it,
// detects its failure and drives the bounded reconnect loop. It is the sole
// owner of the Identity and of the connection state triple.
package connection

import (
	"context"
	"time"

	"github.com/rs/zerolog/log"

	"holdem-client/internal/runloop"
	"holdem-client/internal/session"
)

const (
	// maxRetry at retryDelay spacing gives the ~50 second reconnect budget.
	maxRetry   = 25
	retryDelay = 2 * time.Second
)

type Status string

const (
	StatusIdle       Status = "IDLE"
	StatusConnecting Status = "CONNECTING"
	StatusConnected  Status = "CONNECTED"
	StatusExhausted  Status = "EXHAUSTED"
)

// State is the connection state triple. EveningStarted survives a reconnect
// (restored from the per-table store) but not a move to a different table.
type State struct {
	Connected      bool
	Reconnecting   bool
	EveningStarted bool
}

// Transport is the slice of the websocket session the manager drives.
type Transport interface {
	Send(v any) error
	Close() error
}

// Hooks are the manager's outbound edges. All fire on the run loop.
type Hooks struct {
	// OnConnected fires after every successful handshake; the router uses it
	// to (re-)subscribe its channels.
	OnConnected func()
	// OnStateChange fires whenever the state triple changes; the control
	// surface disables itself while reconnecting.
	OnStateChange func(State)
	// OnExhausted fires once the retry ceiling is reached: the terminal
	// prompt offering a full reload. The only fatal outcome here.
	OnExhausted func()
}

type Manager struct {
	loop  runloop.Scheduler
	dial  func(ctx context.Context) (Transport, error)
	hooks Hooks

	identity  session.Identity
	state     State
	status    Status
	attempts  int
	transport Transport

	saveEvening func(bool)
}

// New builds a manager around a dial function; dial blocks, so the manager
// always runs it off-loop and posts the outcome back.
func New(loop runloop.Scheduler, identity session.Identity, dial func(ctx context.Context) (Transport, error), hooks Hooks, saveEvening func(bool)) *Manager {
	if saveEvening == nil {
		saveEvening = func(bool) {}
	}
	return &Manager{
		loop:        loop,
		dial:        dial,
		hooks:       hooks,
		identity:    identity,
		status:      StatusIdle,
		saveEvening: saveEvening,
	}
}

// Identity is read-only to every other component.
func (m *Manager) Identity() session.Identity { return m.identity }

// ConfirmIdentity applies the server-confirmed claims from the private
// SUBSCRIBE message. Runs on the loop via the router.
func (m *Manager) ConfirmIdentity(playerID, handle string) {
	if playerID != "" {
		m.identity.PlayerID = playerID
	}
	if handle != "" {
		m.identity.PlayerHandle = handle
	}
}

func (m *Manager) State() State   { return m.state }
func (m *Manager) Status() Status { return m.status }

func (m *Manager) Transport() Transport {
	if !m.state.Connected {
		return nil
	}
	return m.transport
}

func (m *Manager) EveningStarted() bool { return m.state.EveningStarted }

func (m *Manager) SetEveningStarted(v bool) {
	if m.state.EveningStarted == v {
		return
	}
	m.state.EveningStarted = v
	m.saveEvening(v)
	m.emitState()
}

// Connect runs on the loop and starts a single connection attempt.
func (m *Manager) Connect() {
	if m.status == StatusConnecting || m.status == StatusConnected {
		return
	}
	m.startAttempt()
}

// Reconnect is idempotent: a loop already in flight makes further calls
// no-ops. Safe to call from any goroutine.
func (m *Manager) Reconnect() {
	m.loop.Post(m.reconnect)
}

func (m *Manager) reconnect() {
	if m.state.Reconnecting {
		return
	}
	if m.status == StatusExhausted {
		return
	}
	m.state.Reconnecting = true
	m.state.Connected = false
	m.attempts = 0
	m.emitState()
	m.startAttempt()
}

func (m *Manager) startAttempt() {
	if m.state.Connected || m.status == StatusConnecting {
		return
	}
	if m.attempts >= maxRetry {
		m.exhaust()
		return
	}
	m.attempts++
	m.status = StatusConnecting
	attempt := m.attempts
	log.Info().Int("attempt", attempt).Msg("connecting")

	go func() {
		tr, err := m.dial(context.Background())
		m.loop.Post(func() {
			if err != nil {
				m.attemptFailed(attempt, err)
				return
			}
			m.attemptSucceeded(tr)
		})
	}()
}

func (m *Manager) attemptFailed(attempt int, err error) {
	if m.state.Connected {
		return
	}
	log.Warn().Err(err).Int("attempt", attempt).Msg("connect failed")
	if !m.state.Reconnecting {
		// The very first connect failing rolls straight into the retry loop.
		m.state.Reconnecting = true
		m.emitState()
	}
	m.status = StatusIdle
	m.loop.PostDelayed(m.startAttempt, retryDelay)
}

func (m *Manager) attemptSucceeded(tr Transport) {
	if m.state.Connected {
		// A straggler attempt from an already-recovered loop.
		_ = tr.Close()
		return
	}
	m.transport = tr
	m.identity.SessionID = session.NewSessionID()
	m.status = StatusConnected
	m.attempts = 0
	m.state.Connected = true
	m.state.Reconnecting = false
	m.emitState()
	log.Info().Str("sessionId", m.identity.SessionID).Msg("connected")
	if m.hooks.OnConnected != nil {
		m.hooks.OnConnected()
	}
}

func (m *Manager) exhaust() {
	m.status = StatusExhausted
	m.state.Reconnecting = false
	m.emitState()
	log.Error().Int("attempts", maxRetry).Msg("reconnect budget exhausted")
	if m.hooks.OnExhausted != nil {
		m.hooks.OnExhausted()
	}
}

// TransportClosed is the close signal from the transport session; any close
// while we believe we are connected starts the reconnect loop.
func (m *Manager) TransportClosed(err error) {
	if err != nil {
		log.Warn().Err(err).Msg("transport closed")
	}
	if !m.state.Connected {
		return
	}
	m.state.Connected = false
	m.transport = nil
	m.status = StatusIdle
	m.emitState()
	m.reconnect()
}

// Offline force-closes the transport; the resulting close signal is the only
// side effect. Online starts the reconnect loop if one is not running.
func (m *Manager) Offline() {
	if m.transport != nil {
		_ = m.transport.Close()
	}
}

func (m *Manager) Online() {
	if m.state.Reconnecting {
		return
	}
	if m.transport != nil {
		_ = m.transport.Close()
	}
	m.reconnect()
}

func (m *Manager) emitState() {
	if m.hooks.OnStateChange != nil {
		m.hooks.OnStateChange(m.state)
	}
}
