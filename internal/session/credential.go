package session

import (
	"time"

	"github.com/golang-jwt/jwt/v5"
)

// RefreshLookahead is how close to expiry a credential may get before a send
// forces a refresh first. A send is never stamped with an expired token.
const RefreshLookahead = 30 * time.Second

// Credential is the bearer token stamped onto outgoing messages. Held in
// process memory only; the message channel router is its only mutator.
type Credential struct {
	Token     string
	ExpiresAt time.Time
}

func (c Credential) Empty() bool { return c.Token == "" }

// Stale reports whether the credential is missing, expired, or inside the
// refresh lookahead window.
func (c Credential) Stale(now time.Time) bool {
	if c.Empty() {
		return true
	}
	return !now.Before(c.ExpiresAt.Add(-RefreshLookahead))
}

// NewCredential builds a credential from the bootstrap token fields.
// expiresAtMS is the server's epoch-millisecond expiry; when the server omits
// it the exp claim is read from the token itself without signature
// verification, since only the timestamp is needed.
func NewCredential(token string, expiresAtMS int64) Credential {
	cred := Credential{Token: token}
	if expiresAtMS > 0 {
		cred.ExpiresAt = time.UnixMilli(expiresAtMS)
		return cred
	}
	parsed, _, err := jwt.NewParser().ParseUnverified(token, jwt.MapClaims{})
	if err != nil {
		return cred
	}
	if exp, err := parsed.Claims.GetExpirationTime(); err == nil && exp != nil {
		cred.ExpiresAt = exp.Time
	}
	return cred
}
