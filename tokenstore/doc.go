// Package tokenstore provides persistent storage for token records, keyed
// by the token manager's record keys.
//
// Two backends with different security and deployment tradeoffs:
//   - File: one JSON file per key with atomic writes and secure permissions
//   - Keyring: OS-native credential storage (macOS Keychain, Windows
//     Credential Manager, Linux Secret Service)
package tokenstore
