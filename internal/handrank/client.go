// Package handrank is the client for the remote hand-rank evaluation; the
// ranking algorithm itself lives server-side.
package handrank

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"net/http"
	"net/url"
	"strings"
	"time"

	"holdem-client/internal/game"
)

var ErrNoRank = errors.New("rank_unavailable")

// Rank is one evaluated hand.
type Rank struct {
	RankValue   int         `json:"rankValue"`
	RankName    string      `json:"rankName"`
	RankedCards []game.Card `json:"rankedCards"`
}

type response struct {
	HandRank *Rank  `json:"handRank"`
	Message  string `json:"message"`
}

type Client struct {
	baseURL string
	inner   *http.Client
}

func NewClient(baseURL string, timeout time.Duration) *Client {
	if timeout <= 0 {
		timeout = 5 * time.Second
	}
	return &Client{baseURL: strings.TrimRight(baseURL, "/"), inner: &http.Client{Timeout: timeout}}
}

// Evaluate ranks playerCards against tableCards. A server-side message (bad
// card codes, not enough cards) comes back wrapped in ErrNoRank.
func (c *Client) Evaluate(ctx context.Context, tableCards, playerCards []game.Card) (Rank, error) {
	q := url.Values{}
	q.Set("tableCards", strings.Join(game.CardCodes(tableCards), " "))
	q.Set("playerCards", strings.Join(game.CardCodes(playerCards), " "))

	req, err := http.NewRequestWithContext(ctx, http.MethodGet, c.baseURL+"/handrank?"+q.Encode(), nil)
	if err != nil {
		return Rank{}, err
	}
	resp, err := c.inner.Do(req)
	if err != nil {
		return Rank{}, err
	}
	defer resp.Body.Close()
	raw, err := io.ReadAll(resp.Body)
	if err != nil {
		return Rank{}, err
	}
	if resp.StatusCode != http.StatusOK {
		return Rank{}, fmt.Errorf("handrank failed with status %d", resp.StatusCode)
	}

	var body response
	if err := json.Unmarshal(raw, &body); err != nil {
		return Rank{}, err
	}
	if body.Message != "" {
		return Rank{}, fmt.Errorf("%w: %s", ErrNoRank, body.Message)
	}
	if body.HandRank == nil {
		return Rank{}, ErrNoRank
	}
	return *body.HandRank, nil
}
