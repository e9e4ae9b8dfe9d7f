// Package sink declares the outward-facing surfaces the core reports into:
// chat, the status line, stat displays and modal prompts. Rendering is out of
// scope; the CLI binary wires the zerolog-backed implementation below.
package sink

import (
	"encoding/json"
	"time"

	"github.com/rs/zerolog/log"
)

// ChatSink receives chat traffic. System entries carry no sender.
type ChatSink interface {
	Chat(handle, picture, message string, system bool)
}

// StatusSink receives the status-line entries derived from table messages.
type StatusSink interface {
	Status(message string, isErr bool)
}

// StatsSink receives raw per-player stat payloads.
type StatsSink interface {
	Stats(raw json.RawMessage)
}

// Prompt is a modal confirmation. OnAccept runs on the run loop if the user
// takes the accept action before Expires (zero means no deadline).
type Prompt struct {
	Kind     string
	Title    string
	Body     string
	Accept   string
	Expires  time.Duration
	OnAccept func()
}

type PromptSink interface {
	Show(p Prompt)
}

// Sinks bundles the four surfaces for wiring.
type Sinks struct {
	Chat   ChatSink
	Status StatusSink
	Stats  StatsSink
	Prompt PromptSink
}

// LogSinks writes every surface to the structured log. Default for the CLI
// binary, where there is no page to render into.
type LogSinks struct{}

func NewLogSinks() Sinks {
	l := &LogSinks{}
	return Sinks{Chat: l, Status: l, Stats: l, Prompt: l}
}

func (l *LogSinks) Chat(handle, picture, message string, system bool) {
	if system {
		log.Info().Str("surface", "chat").Msg(message)
		return
	}
	log.Info().Str("surface", "chat").Str("from", handle).Msg(message)
}

func (l *LogSinks) Status(message string, isErr bool) {
	ev := log.Info()
	if isErr {
		ev = log.Warn()
	}
	ev.Str("surface", "status").Msg(message)
}

func (l *LogSinks) Stats(raw json.RawMessage) {
	log.Info().Str("surface", "stats").RawJSON("stats", raw).Msg("player stats")
}

func (l *LogSinks) Show(p Prompt) {
	log.Warn().Str("surface", "prompt").Str("kind", p.Kind).Str("title", p.Title).Msg(p.Body)
}
