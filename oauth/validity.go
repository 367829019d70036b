package oauth

// Validity is the outcome of probing a token against the API. Transport
// failures are reported as ValidityUnknown rather than swallowed, so callers
// decide whether to treat them as invalid or escalate.
type Validity int

const (
	// ValidityUnknown means the probe could not complete, typically a
	// transport failure. The token may still be valid.
	ValidityUnknown Validity = iota

	// ValidityValid means the API accepted the token.
	ValidityValid

	// ValidityInvalid means the API rejected the token.
	ValidityInvalid
)

// String returns the validity as a short lowercase word.
func (v Validity) String() string {
	switch v {
	case ValidityValid:
		return "valid"
	case ValidityInvalid:
		return "invalid"
	default:
		return "unknown"
	}
}

// ValidationQuery is the minimal query used to probe whether a token is
// accepted by the API.
const ValidationQuery = `query { worldData { expansions { id name } } }`
