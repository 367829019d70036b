package credentials

// Secret wraps a sensitive configuration value to prevent accidental
// logging. Formatting and serialization all yield "[REDACTED]"; only Value
// returns the actual content.
type Secret string

// Value returns the actual secret. Use it only where the secret must be
// sent, such as a basic auth header. Never log the result.
func (s Secret) Value() string {
	return string(s)
}

// String implements fmt.Stringer, returning "[REDACTED]" to prevent
// accidental logging of the secret.
func (s Secret) String() string {
	return "[REDACTED]"
}

// GoString implements fmt.GoStringer for %#v formatting, also returning
// "[REDACTED]".
func (s Secret) GoString() string {
	return `credentials.Secret("[REDACTED]")`
}

// MarshalText implements encoding.TextMarshaler, returning "[REDACTED]"
// to prevent accidental serialization of the secret.
func (s Secret) MarshalText() ([]byte, error) {
	return []byte("[REDACTED]"), nil
}

// MarshalJSON implements json.Marshaler, returning "[REDACTED]" to prevent
// accidental JSON serialization of the secret.
func (s Secret) MarshalJSON() ([]byte, error) {
	return []byte(`"[REDACTED]"`), nil
}
