// Package warcraftlogs is a client library for the Warcraft Logs GraphQL
// API. It wires OAuth 2.0 authentication, token lifecycle management, and
// query execution behind a single Client.
//
// # Public API
//
// Queries against the public endpoint authenticate with the
// client-credentials flow; tokens are obtained and refreshed automatically:
//
//	client, err := warcraftlogs.New()
//	resp, err := client.QueryPublicAPI(ctx, `query { worldData { expansions { id name } } }`, nil)
//
// Credentials default to the WARCRAFTLOGS_CLIENT_ID and
// WARCRAFTLOGS_CLIENT_SECRET environment variables; pass WithCredentials to
// supply them explicitly.
//
// # User API
//
// User-scoped queries need a token from the authorization-code flow. Build
// the consent URL, hold the returned state across the redirect, then
// exchange the callback code:
//
//	authURL, state, err := client.AuthorizeUser("https://example.com/callback", true)
//	// ... user visits authURL, authorization server redirects back with a code ...
//	token, err := client.HandleCallback(ctx, code, "https://example.com/callback", state.CodeVerifier, "u1")
//	resp, err := client.QueryUserAPI(ctx, query, nil, warcraftlogs.UserAuth{
//		RefreshToken: token.RefreshToken,
//		UserID:       "u1",
//	})
//
// # Persistence
//
// With WithTokenDir or WithTokenStore, token records survive restarts and
// are reloaded on first use. ClearTokens removes everything.
//
// GraphQL-level errors in a 2xx response are returned inside QueryResponse
// untranslated; only transport failures and non-2xx statuses become Go
// errors.
package warcraftlogs
