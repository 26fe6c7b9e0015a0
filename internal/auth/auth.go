// Package auth guards the endpoints that change the inventory.
package auth

import (
	"context"
	"errors"
	"fmt"
	"net/http"
)

// AuthMethod represents the authentication method used.
type AuthMethod string

const (
	// AuthMethodNone leaves every endpoint open.
	AuthMethodNone AuthMethod = "none"
	// AuthMethodBasic indicates HTTP Basic authentication.
	AuthMethodBasic AuthMethod = "basic"
	// AuthMethodAPIKey indicates API key authentication.
	AuthMethodAPIKey AuthMethod = "apikey"
	// AuthMethodMulti accepts either Basic credentials or an API key.
	AuthMethodMulti AuthMethod = "multi"
)

// AuthInfo holds the identity behind an authenticated request.
type AuthInfo struct {
	Method  AuthMethod
	Subject string
}

// Authenticator validates a request and returns auth info.
type Authenticator interface {
	Authenticate(r *http.Request) (*AuthInfo, error)
	Method() AuthMethod
}

// Sentinel errors for authentication failures.
var (
	ErrUnauthenticated    = errors.New("unauthenticated: no credentials provided")
	ErrInvalidAPIKey      = errors.New("invalid API key")
	ErrInvalidCredentials = errors.New("invalid credentials")
	ErrUnknownMethod      = errors.New("unknown auth method")
)

type contextKey string

const authInfoKey contextKey = "auth_info"

// FromContext retrieves AuthInfo from the context.
func FromContext(ctx context.Context) (*AuthInfo, bool) {
	info, ok := ctx.Value(authInfoKey).(*AuthInfo)
	return info, ok
}

// WithAuthInfo stores AuthInfo in the context.
func WithAuthInfo(ctx context.Context, info *AuthInfo) context.Context {
	return context.WithValue(ctx, authInfoKey, info)
}

// New builds the authenticator for method. usersConfig and keysConfig use
// the "user:hash,..." and "key:name,..." formats. AuthMethodNone returns
// a nil Authenticator.
func New(method AuthMethod, usersConfig, keysConfig string) (Authenticator, error) {
	var (
		authenticator Authenticator
		err           error
	)

	switch method {
	case AuthMethodNone, "":
		return nil, nil
	case AuthMethodBasic:
		authenticator, err = NewBasicAuthenticator(usersConfig)
	case AuthMethodAPIKey:
		authenticator, err = NewAPIKeyAuthenticator(keysConfig)
	case AuthMethodMulti:
		authenticator, err = newMulti(usersConfig, keysConfig)
	default:
		return nil, fmt.Errorf("%w: %q", ErrUnknownMethod, method)
	}

	if err != nil {
		return nil, err
	}
	return authenticator, nil
}

// newMulti wires whichever of Basic and API key auth is configured.
func newMulti(usersConfig, keysConfig string) (*MultiAuthenticator, error) {
	var authenticators []Authenticator

	if usersConfig != "" {
		basic, err := NewBasicAuthenticator(usersConfig)
		if err != nil {
			return nil, err
		}
		authenticators = append(authenticators, basic)
	}

	if keysConfig != "" {
		apiKey, err := NewAPIKeyAuthenticator(keysConfig)
		if err != nil {
			return nil, err
		}
		authenticators = append(authenticators, apiKey)
	}

	if len(authenticators) == 0 {
		return nil, errors.New("multi auth: at least one of basic users or api keys is required")
	}

	return NewMultiAuthenticator(authenticators...), nil
}
