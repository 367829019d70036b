package oauth

import (
	"context"
	"net/http"
	"net/http/httptest"
	"net/url"
	"strings"
	"testing"
	"time"

	"github.com/hearthlog/go-warcraftlogs/credentials"
)

// capturedRequest records what the token endpoint received.
type capturedRequest struct {
	form          url.Values
	authUser      string
	authPass      string
	hasBasicAuth  bool
	contentType   string
	acceptHeader  string
	authorization string
}

// newTokenServer starts a token endpoint that captures each request and
// answers with body.
func newTokenServer(t *testing.T, status int, body string) (*httptest.Server, *[]capturedRequest) {
	t.Helper()

	var captured []capturedRequest
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if err := r.ParseForm(); err != nil {
			t.Errorf("parsing form: %v", err)
		}
		user, pass, ok := r.BasicAuth()
		captured = append(captured, capturedRequest{
			form:          r.PostForm,
			authUser:      user,
			authPass:      pass,
			hasBasicAuth:  ok,
			contentType:   r.Header.Get("Content-Type"),
			acceptHeader:  r.Header.Get("Accept"),
			authorization: r.Header.Get("Authorization"),
		})
		w.Header().Set("Content-Type", "application/json")
		w.WriteHeader(status)
		_, _ = w.Write([]byte(body))
	}))
	t.Cleanup(server.Close)

	return server, &captured
}

func testCredentials(tokenURL string) *credentials.Credentials {
	creds := &credentials.Credentials{
		ClientID:     "client-id",
		ClientSecret: "client-secret",
		TokenURL:     tokenURL,
	}
	creds.ApplyDefaults()
	return creds
}

func TestClientCredentialsToken(t *testing.T) {
	server, captured := newTokenServer(t, http.StatusOK,
		`{"access_token":"at","token_type":"Bearer","expires_in":3600}`)

	now := time.Date(2025, 6, 1, 12, 0, 0, 0, time.UTC)
	client := NewClient(testCredentials(server.URL), WithNowFunc(func() time.Time { return now }))

	token, err := client.ClientCredentialsToken(context.Background())
	if err != nil {
		t.Fatalf("ClientCredentialsToken failed: %v", err)
	}

	if token.AccessToken != "at" {
		t.Errorf("AccessToken = %q, want %q", token.AccessToken, "at")
	}
	if want := now.Add(3600 * time.Second); !token.ExpiresAt.Equal(want) {
		t.Errorf("ExpiresAt = %v, want %v", token.ExpiresAt, want)
	}

	req := (*captured)[0]
	if !req.hasBasicAuth || req.authUser != "client-id" || req.authPass != "client-secret" {
		t.Errorf("basic auth = (%q, %q, %v), want client credentials", req.authUser, req.authPass, req.hasBasicAuth)
	}
	if got := req.form.Get("grant_type"); got != "client_credentials" {
		t.Errorf("grant_type = %q, want client_credentials", got)
	}
	if !strings.HasPrefix(req.contentType, "application/x-www-form-urlencoded") {
		t.Errorf("Content-Type = %q, want form encoding", req.contentType)
	}
	if req.acceptHeader != "application/json" {
		t.Errorf("Accept = %q, want application/json", req.acceptHeader)
	}
}

func TestExchangeCode(t *testing.T) {
	tests := []struct {
		name         string
		codeVerifier string
	}{
		{name: "pkce flow", codeVerifier: "the-code-verifier"},
		{name: "standard flow", codeVerifier: ""},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			server, captured := newTokenServer(t, http.StatusOK,
				`{"access_token":"at","token_type":"Bearer","expires_in":3600,"refresh_token":"rt"}`)
			client := NewClient(testCredentials(server.URL))

			token, err := client.ExchangeCode(context.Background(), "the-code", "https://cb", tt.codeVerifier)
			if err != nil {
				t.Fatalf("ExchangeCode failed: %v", err)
			}
			if token.RefreshToken != "rt" {
				t.Errorf("RefreshToken = %q, want %q", token.RefreshToken, "rt")
			}

			req := (*captured)[0]
			if got := req.form.Get("grant_type"); got != "authorization_code" {
				t.Errorf("grant_type = %q, want authorization_code", got)
			}
			if got := req.form.Get("code"); got != "the-code" {
				t.Errorf("code = %q, want the-code", got)
			}
			if got := req.form.Get("redirect_uri"); got != "https://cb" {
				t.Errorf("redirect_uri = %q, want https://cb", got)
			}

			if tt.codeVerifier != "" {
				// Public-client PKCE: no basic auth, client_id and verifier
				// in the body.
				if req.hasBasicAuth || req.authorization != "" {
					t.Error("PKCE exchange must not send an Authorization header")
				}
				if got := req.form.Get("client_id"); got != "client-id" {
					t.Errorf("client_id = %q, want client-id", got)
				}
				if got := req.form.Get("code_verifier"); got != tt.codeVerifier {
					t.Errorf("code_verifier = %q, want %q", got, tt.codeVerifier)
				}
			} else {
				if !req.hasBasicAuth {
					t.Error("standard exchange must authenticate with basic auth")
				}
				if req.form.Get("code_verifier") != "" {
					t.Error("standard exchange must not send code_verifier")
				}
			}
		})
	}
}

func TestRefreshAccessToken(t *testing.T) {
	tests := []struct {
		name             string
		body             string
		wantRefreshToken string
	}{
		{
			name:             "server rotates the refresh token",
			body:             `{"access_token":"at2","token_type":"Bearer","expires_in":3600,"refresh_token":"rt2"}`,
			wantRefreshToken: "rt2",
		},
		{
			name:             "server omits the refresh token",
			body:             `{"access_token":"at2","token_type":"Bearer","expires_in":3600}`,
			wantRefreshToken: "rt1",
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			server, captured := newTokenServer(t, http.StatusOK, tt.body)
			client := NewClient(testCredentials(server.URL))

			token, err := client.RefreshAccessToken(context.Background(), "rt1")
			if err != nil {
				t.Fatalf("RefreshAccessToken failed: %v", err)
			}

			if token.RefreshToken != tt.wantRefreshToken {
				t.Errorf("RefreshToken = %q, want %q", token.RefreshToken, tt.wantRefreshToken)
			}

			req := (*captured)[0]
			if !req.hasBasicAuth {
				t.Error("refresh flow must authenticate with basic auth")
			}
			if got := req.form.Get("grant_type"); got != "refresh_token" {
				t.Errorf("grant_type = %q, want refresh_token", got)
			}
			if got := req.form.Get("refresh_token"); got != "rt1" {
				t.Errorf("refresh_token = %q, want rt1", got)
			}
		})
	}
}

func TestTokenRequestRejected(t *testing.T) {
	server, _ := newTokenServer(t, http.StatusUnauthorized, `{"error":"invalid_client"}`)
	client := NewClient(testCredentials(server.URL))

	if _, err := client.ClientCredentialsToken(context.Background()); err == nil {
		t.Fatal("expected error for 401 response, got none")
	}
}

func TestAuthorizationURL(t *testing.T) {
	creds := testCredentials("https://example.com/token")
	creds.AuthorizeURL = "https://example.com/authorize"
	client := NewClient(creds)

	t.Run("standard flow", func(t *testing.T) {
		authURL, state, err := client.AuthorizationURL("https://cb", "my-state", false)
		if err != nil {
			t.Fatalf("AuthorizationURL failed: %v", err)
		}

		parsed, err := url.Parse(authURL)
		if err != nil {
			t.Fatalf("invalid URL %q: %v", authURL, err)
		}
		query := parsed.Query()

		if got := query.Get("response_type"); got != "code" {
			t.Errorf("response_type = %q, want code", got)
		}
		if got := query.Get("client_id"); got != "client-id" {
			t.Errorf("client_id = %q, want client-id", got)
		}
		if got := query.Get("redirect_uri"); got != "https://cb" {
			t.Errorf("redirect_uri = %q, want https://cb", got)
		}
		if got := query.Get("state"); got != "my-state" {
			t.Errorf("state = %q, want my-state", got)
		}
		if query.Has("code_challenge") || query.Has("code_challenge_method") {
			t.Error("standard flow must not carry PKCE parameters")
		}

		if state.State != "my-state" {
			t.Errorf("StateData.State = %q, want my-state", state.State)
		}
		if state.CodeVerifier != "" {
			t.Errorf("StateData.CodeVerifier = %q, want empty", state.CodeVerifier)
		}
	})

	t.Run("pkce flow", func(t *testing.T) {
		authURL, state, err := client.AuthorizationURL("https://cb", "", true)
		if err != nil {
			t.Fatalf("AuthorizationURL failed: %v", err)
		}

		query, err := url.Parse(authURL)
		if err != nil {
			t.Fatalf("invalid URL %q: %v", authURL, err)
		}
		params := query.Query()

		if got := params.Get("code_challenge_method"); got != "S256" {
			t.Errorf("code_challenge_method = %q, want S256", got)
		}
		if state.State == "" || params.Get("state") != state.State {
			t.Errorf("state %q not generated or not carried in URL", state.State)
		}
		if state.CodeVerifier == "" {
			t.Fatal("StateData.CodeVerifier missing for PKCE flow")
		}

		// The challenge in the URL must be derived from the returned
		// verifier.
		if got := params.Get("code_challenge"); got != ChallengeS256(state.CodeVerifier) {
			t.Errorf("code_challenge = %q, want %q", got, ChallengeS256(state.CodeVerifier))
		}
	})
}
