package auth

import (
	"errors"
	"net/http"
)

// MultiAuthenticator tries each authenticator in order. A missing
// credential moves on to the next one; a rejected credential fails at once.
type MultiAuthenticator struct {
	authenticators []Authenticator
}

// NewMultiAuthenticator creates a multi-method authenticator.
func NewMultiAuthenticator(authenticators ...Authenticator) *MultiAuthenticator {
	return &MultiAuthenticator{authenticators: authenticators}
}

// Authenticate returns the first successful result.
func (a *MultiAuthenticator) Authenticate(r *http.Request) (*AuthInfo, error) {
	for _, authenticator := range a.authenticators {
		info, err := authenticator.Authenticate(r)
		if err == nil {
			return info, nil
		}
		if !errors.Is(err, ErrUnauthenticated) {
			return nil, err
		}
	}

	return nil, ErrUnauthenticated
}

// Method returns the authentication method type.
func (a *MultiAuthenticator) Method() AuthMethod {
	return AuthMethodMulti
}
