package auth

import (
	"crypto/subtle"
	"fmt"
	"net/http"
	"strings"
)

// APIKeyHeader is the HTTP header name for API key authentication.
const APIKeyHeader = "X-API-Key"

type apiKey struct {
	value []byte
	name  string
}

// APIKeyAuthenticator authenticates requests by the X-API-Key header.
type APIKeyAuthenticator struct {
	keys []apiKey
}

// NewAPIKeyAuthenticator parses keysConfig in the form "key1:name1,key2:name2".
func NewAPIKeyAuthenticator(keysConfig string) (*APIKeyAuthenticator, error) {
	entries, err := parsePairs(keysConfig, "apikey auth", "key:name")
	if err != nil {
		return nil, err
	}

	keys := make([]apiKey, 0, len(entries))
	for _, entry := range entries {
		keys = append(keys, apiKey{value: []byte(entry.left), name: entry.right})
	}

	return &APIKeyAuthenticator{keys: keys}, nil
}

// Authenticate compares the presented key with every configured key so the
// response time does not reveal which key matched.
func (a *APIKeyAuthenticator) Authenticate(r *http.Request) (*AuthInfo, error) {
	presented := r.Header.Get(APIKeyHeader)
	if presented == "" {
		return nil, ErrUnauthenticated
	}

	var subject string
	for _, key := range a.keys {
		if subtle.ConstantTimeCompare([]byte(presented), key.value) == 1 && subject == "" {
			subject = key.name
		}
	}

	if subject == "" {
		return nil, ErrInvalidAPIKey
	}

	return &AuthInfo{Method: AuthMethodAPIKey, Subject: subject}, nil
}

// Method returns the authentication method type.
func (a *APIKeyAuthenticator) Method() AuthMethod {
	return AuthMethodAPIKey
}

type pair struct {
	left, right string
}

// parsePairs splits "a:b,c:d" on commas and on the first colon of each
// entry. Blank entries are skipped.
func parsePairs(config, component, format string) ([]pair, error) {
	trimmed := strings.TrimSpace(config)
	if trimmed == "" {
		return nil, fmt.Errorf("%s: config must not be empty", component)
	}

	var pairs []pair
	for _, entry := range strings.Split(trimmed, ",") {
		entry = strings.TrimSpace(entry)
		if entry == "" {
			continue
		}

		left, right, ok := strings.Cut(entry, ":")
		if !ok {
			return nil, fmt.Errorf("%s: invalid entry format, expected %s", component, format)
		}

		left, right = strings.TrimSpace(left), strings.TrimSpace(right)
		if left == "" || right == "" {
			return nil, fmt.Errorf("%s: both sides of %s must be set", component, format)
		}

		pairs = append(pairs, pair{left: left, right: right})
	}

	if len(pairs) == 0 {
		return nil, fmt.Errorf("%s: no valid entries found", component)
	}

	return pairs, nil
}
