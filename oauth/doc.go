// Package oauth implements the OAuth 2.0 flows of the Warcraft Logs
// authorization server: client credentials, authorization code, and PKCE.
//
// All flows produce a Token record parsed in a single step at the HTTP
// boundary, with the expiration timestamp derived from expires_in at parse
// time.
//
// # Flows
//
// Use ClientCredentialsToken for public API access:
//
//	flows := oauth.NewClient(creds)
//	token, err := flows.ClientCredentialsToken(ctx)
//
// For user access, build an authorization URL, send the user through the
// redirect, then exchange the returned code:
//
//	authURL, state, err := flows.AuthorizationURL("https://example.com/callback", "", true)
//	// redirect the user to authURL, receive code on the callback
//	token, err := flows.ExchangeCode(ctx, code, "https://example.com/callback", state.CodeVerifier)
//
// The caller must hold StateData across the redirect round-trip; this
// package does not persist it.
package oauth
