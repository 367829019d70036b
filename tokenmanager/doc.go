// Package tokenmanager tracks one client-credentials token and any number
// of user tokens, refreshing each before it expires.
//
// A Manager caches records in memory and, when configured with a store,
// writes them through to durable storage and reloads them on first use.
// Records are keyed by ClientKey or UserKey(userID). A record is considered
// stale once the clock reaches its expiry minus the refresh buffer, at
// which point the next caller triggers exactly one acquisition; concurrent
// callers on the same key share it.
//
// # oauth2 interop
//
// ClientTokenSource and UserTokenSource adapt a Manager to
// oauth2.TokenSource so it plugs into oauth2.Transport:
//
//	client := &http.Client{Transport: &oauth2.Transport{
//		Source: manager.ClientTokenSource(ctx),
//	}}
package tokenmanager
