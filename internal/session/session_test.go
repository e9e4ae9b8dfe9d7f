package session

import (
	"context"
	"encoding/base64"
	"encoding/json"
	"fmt"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"
)

func TestCredentialStale(t *testing.T) {
	now := time.Now()
	cases := []struct {
		name string
		cred Credential
		want bool
	}{
		{"empty", Credential{}, true},
		{"expired", Credential{Token: "t", ExpiresAt: now.Add(-time.Minute)}, true},
		{"inside lookahead", Credential{Token: "t", ExpiresAt: now.Add(10 * time.Second)}, true},
		{"fresh", Credential{Token: "t", ExpiresAt: now.Add(5 * time.Minute)}, false},
	}
	for _, tc := range cases {
		if got := tc.cred.Stale(now); got != tc.want {
			t.Fatalf("%s: Stale() = %v, want %v", tc.name, got, tc.want)
		}
	}
}

// unsignedJWT builds a token whose exp claim can be read without a key.
func unsignedJWT(t *testing.T, exp time.Time) string {
	t.Helper()
	enc := func(v any) string {
		raw, err := json.Marshal(v)
		if err != nil {
			t.Fatalf("marshal claim: %v", err)
		}
		return base64.RawURLEncoding.EncodeToString(raw)
	}
	header := enc(map[string]string{"alg": "HS256", "typ": "JWT"})
	claims := enc(map[string]any{"exp": exp.Unix(), "sub": "p1"})
	return fmt.Sprintf("%s.%s.%s", header, claims, base64.RawURLEncoding.EncodeToString([]byte("sig")))
}

func TestNewCredentialExplicitExpiry(t *testing.T) {
	cred := NewCredential("opaque-token", time.Date(2026, 1, 2, 3, 4, 5, 0, time.UTC).UnixMilli())
	if cred.ExpiresAt.UTC() != time.Date(2026, 1, 2, 3, 4, 5, 0, time.UTC) {
		t.Fatalf("ExpiresAt = %v", cred.ExpiresAt)
	}
}

func TestNewCredentialReadsJWTExp(t *testing.T) {
	exp := time.Now().Add(time.Hour).Truncate(time.Second)
	cred := NewCredential(unsignedJWT(t, exp), 0)
	if !cred.ExpiresAt.Equal(exp) {
		t.Fatalf("ExpiresAt = %v, want %v", cred.ExpiresAt, exp)
	}
}

func TestNewCredentialOpaqueTokenNoExpiry(t *testing.T) {
	cred := NewCredential("not-a-jwt", 0)
	if cred.Empty() {
		t.Fatal("token should be kept even without an expiry")
	}
	if !cred.Stale(time.Now()) {
		t.Fatal("credential with unknown expiry must count as stale")
	}
}

func sessionServer(t *testing.T, withTokens bool) *httptest.Server {
	t.Helper()
	return httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if r.URL.Path != "/session" {
			http.NotFound(w, r)
			return
		}
		body := map[string]any{
			"playerId":     "p1",
			"playerHandle": "Dealer Dan",
			"email":        "dan@example.com",
			"accLevel":     "STANDARD",
			"roles":        []string{"PLAYER"},
		}
		if withTokens {
			body["tokens"] = map[string]any{
				"accessToken": map[string]any{
					"token":     "tok-1",
					"expiresAt": time.Now().Add(time.Hour).UnixMilli(),
				},
			}
		}
		w.Header().Set("Content-Type", "application/json")
		_ = json.NewEncoder(w).Encode(body)
	}))
}

func TestFetchWithTokens(t *testing.T) {
	srv := sessionServer(t, true)
	defer srv.Close()

	boot, err := NewClient(srv.URL, 0).Fetch(context.Background(), true)
	if err != nil {
		t.Fatalf("Fetch() error = %v", err)
	}
	if boot.Identity.PlayerID != "p1" || boot.Identity.PlayerHandle != "Dealer Dan" {
		t.Fatalf("identity = %+v", boot.Identity)
	}
	if boot.Credential.Stale(time.Now()) {
		t.Fatalf("credential stale: %+v", boot.Credential)
	}
}

func TestFetchOnTableWithoutTokens(t *testing.T) {
	srv := sessionServer(t, false)
	defer srv.Close()

	_, err := NewClient(srv.URL, 0).Fetch(context.Background(), true)
	if err != ErrSignInRequired {
		t.Fatalf("Fetch() error = %v, want ErrSignInRequired", err)
	}

	// Off the table the same response is fine, just credential-less.
	boot, err := NewClient(srv.URL, 0).Fetch(context.Background(), false)
	if err != nil {
		t.Fatalf("Fetch() error = %v", err)
	}
	if !boot.Credential.Empty() {
		t.Fatalf("credential = %+v, want empty", boot.Credential)
	}
}

func TestNewSessionIDUnique(t *testing.T) {
	a, b := NewSessionID(), NewSessionID()
	if a == "" || a == b {
		t.Fatalf("ids not unique: %q %q", a, b)
	}
}
