package handrank

import (
	"context"
	"errors"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"holdem-client/internal/game"
)

func cards(codes ...string) []game.Card {
	out := make([]game.Card, 0, len(codes))
	for _, c := range codes {
		out = append(out, game.Card{Code: c})
	}
	return out
}

func TestEvaluate(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if r.URL.Path != "/handrank" {
			t.Fatalf("path = %q", r.URL.Path)
		}
		if got := r.URL.Query().Get("tableCards"); got != "As Kd 7c" {
			t.Fatalf("tableCards = %q", got)
		}
		if got := r.URL.Query().Get("playerCards"); got != "Ah Ac" {
			t.Fatalf("playerCards = %q", got)
		}
		w.Header().Set("Content-Type", "application/json")
		w.Write([]byte(`{"handRank":{"rankValue":2467,"rankName":"Three of a Kind","rankedCards":[{"code":"As"},{"code":"Ah"},{"code":"Ac"}]}}`))
	}))
	defer srv.Close()

	c := NewClient(srv.URL, time.Second)
	rank, err := c.Evaluate(context.Background(), cards("As", "Kd", "7c"), cards("Ah", "Ac"))
	if err != nil {
		t.Fatalf("evaluate: %+v", err)
	}
	if rank.RankValue != 2467 || rank.RankName != "Three of a Kind" || len(rank.RankedCards) != 3 {
		t.Fatalf("rank = %+v", rank)
	}
}

func TestEvaluateServerMessage(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.Header().Set("Content-Type", "application/json")
		w.Write([]byte(`{"message":"Not enough cards provided"}`))
	}))
	defer srv.Close()

	c := NewClient(srv.URL, time.Second)
	_, err := c.Evaluate(context.Background(), nil, cards("Ah"))
	if !errors.Is(err, ErrNoRank) {
		t.Fatalf("err = %+v, want ErrNoRank", err)
	}
}

func TestEvaluateServerError(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusInternalServerError)
	}))
	defer srv.Close()

	c := NewClient(srv.URL, time.Second)
	if _, err := c.Evaluate(context.Background(), cards("As"), cards("Ah", "Ac")); err == nil {
		t.Fatal("expected an error on a 500")
	}
}
