package auth

import "errors"

var (
	ErrMissingCredentials = errors.New("missing credentials")
	ErrInvalidCredentials = errors.New("invalid credentials")
)

// Verifier checks a bearer token and returns the identity it was issued to.
// The relay consults it before letting a connection reach the signaling
// protocol; issuing tokens is the authentication service's job, not ours.
type Verifier interface {
	Verify(token string) (string, error)
}
