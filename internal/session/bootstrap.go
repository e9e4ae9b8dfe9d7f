package session

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"net/http"
	"time"
)

// ErrSignInRequired means the server returned no access credential while we
// are viewing a table; the caller redirects to sign-in, preserving the table
// address for the post-login return.
var ErrSignInRequired = errors.New("sign_in_required")

type tokenInfo struct {
	Token     string `json:"token"`
	ExpiresAt int64  `json:"expiresAt"`
}

type bootstrapResponse struct {
	PlayerID     string   `json:"playerId"`
	PlayerHandle string   `json:"playerHandle"`
	Email        string   `json:"email"`
	FullName     string   `json:"fullName"`
	AccLevel     string   `json:"accLevel"`
	Picture      string   `json:"picture"`
	Roles        []string `json:"roles"`
	Tokens       *struct {
		AccessToken tokenInfo `json:"accessToken"`
	} `json:"tokens"`
}

// Bootstrap is the result of one /session round-trip.
type Bootstrap struct {
	Identity   Identity
	Credential Credential
	Roles      []string
}

// Client fetches session/identity information from the gateway.
type Client struct {
	baseURL string
	inner   *http.Client
}

func NewClient(baseURL string, timeout time.Duration) *Client {
	if timeout <= 0 {
		timeout = 5 * time.Second
	}
	return &Client{baseURL: baseURL, inner: &http.Client{Timeout: timeout}}
}

// Fetch performs the session bootstrap. onTable enforces the credential
// requirement: a table page without tokens is ErrSignInRequired.
func (c *Client) Fetch(ctx context.Context, onTable bool) (Bootstrap, error) {
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, c.baseURL+"/session", nil)
	if err != nil {
		return Bootstrap{}, err
	}
	resp, err := c.inner.Do(req)
	if err != nil {
		return Bootstrap{}, fmt.Errorf("session fetch: %w", err)
	}
	defer resp.Body.Close()
	if resp.StatusCode != http.StatusOK {
		return Bootstrap{}, fmt.Errorf("session fetch: status %d", resp.StatusCode)
	}
	raw, err := io.ReadAll(resp.Body)
	if err != nil {
		return Bootstrap{}, err
	}
	var body bootstrapResponse
	if err := json.Unmarshal(raw, &body); err != nil {
		return Bootstrap{}, fmt.Errorf("session decode: %w", err)
	}

	out := Bootstrap{
		Identity: Identity{
			PlayerID:     body.PlayerID,
			PlayerHandle: body.PlayerHandle,
			PlayerEmail:  body.Email,
			FullName:     body.FullName,
			AccLevel:     body.AccLevel,
			Picture:      body.Picture,
		},
		Roles: body.Roles,
	}
	if body.Tokens == nil {
		if onTable {
			return out, ErrSignInRequired
		}
		return out, nil
	}
	out.Credential = NewCredential(body.Tokens.AccessToken.Token, body.Tokens.AccessToken.ExpiresAt)
	return out, nil
}

// Refresh re-runs the bootstrap purely to obtain a fresh access credential.
// On failure the returned credential is empty and the caller blocks sends
// locally rather than attempting them.
func (c *Client) Refresh(ctx context.Context) (Credential, error) {
	boot, err := c.Fetch(ctx, true)
	if err != nil {
		return Credential{}, err
	}
	return boot.Credential, nil
}
