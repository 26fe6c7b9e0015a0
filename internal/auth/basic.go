package auth

import (
	"fmt"
	"net/http"

	"golang.org/x/crypto/bcrypt"
)

// dummyHash is compared against for unknown users so they cost the same
// bcrypt work as a wrong password.
var dummyHash, _ = bcrypt.GenerateFromPassword([]byte("gildedrose"), bcrypt.MinCost)

// BasicAuthenticator authenticates requests using HTTP Basic authentication
// with bcrypt-hashed passwords.
type BasicAuthenticator struct {
	users map[string][]byte // username -> bcrypt hash
}

// NewBasicAuthenticator parses usersConfig in the form "user1:hash1,user2:hash2".
// Hashes must be bcrypt.
func NewBasicAuthenticator(usersConfig string) (*BasicAuthenticator, error) {
	entries, err := parsePairs(usersConfig, "basic auth", "user:hash")
	if err != nil {
		return nil, err
	}

	users := make(map[string][]byte, len(entries))
	for _, entry := range entries {
		if _, err := bcrypt.Cost([]byte(entry.right)); err != nil {
			return nil, fmt.Errorf("basic auth: hash for %q is not bcrypt: %w", entry.left, err)
		}
		users[entry.left] = []byte(entry.right)
	}

	return &BasicAuthenticator{users: users}, nil
}

// Authenticate verifies the Basic credentials of r.
func (a *BasicAuthenticator) Authenticate(r *http.Request) (*AuthInfo, error) {
	username, password, ok := r.BasicAuth()
	if !ok {
		return nil, ErrUnauthenticated
	}

	hash, exists := a.users[username]
	if !exists {
		hash = dummyHash
	}

	if err := bcrypt.CompareHashAndPassword(hash, []byte(password)); err != nil || !exists {
		return nil, ErrInvalidCredentials
	}

	return &AuthInfo{Method: AuthMethodBasic, Subject: username}, nil
}

// Method returns the authentication method type.
func (a *BasicAuthenticator) Method() AuthMethod {
	return AuthMethodBasic
}
