package transport

import (
	"context"
	"crypto/sha256"
	"crypto/subtle"
	"errors"
	"net/http"
	"strings"
)

// ErrUnauthorized indicates invalid or missing credentials.
var ErrUnauthorized = errors.New("unauthorized")

type clientKey struct{}

// ClientResolver resolves a client ID from a bearer token.
type ClientResolver interface {
	ResolveClient(ctx context.Context, token string) (string, error)
}

// ClientFromContext returns the client ID from context, if present.
func ClientFromContext(ctx context.Context) (string, bool) {
	clientID, ok := ctx.Value(clientKey{}).(string)
	return clientID, ok
}

// WithClient returns ctx carrying clientID.
func WithClient(ctx context.Context, clientID string) context.Context {
	return context.WithValue(ctx, clientKey{}, clientID)
}

// AuthMiddleware enforces bearer token authentication.
func AuthMiddleware(resolver ClientResolver) func(http.Handler) http.Handler {
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			auth := r.Header.Get("Authorization")
			token := strings.TrimSpace(strings.TrimPrefix(auth, "Bearer "))
			if token == "" {
				http.Error(w, "missing bearer token", http.StatusUnauthorized)
				return
			}

			clientID, err := resolver.ResolveClient(r.Context(), token)
			if err != nil || clientID == "" {
				http.Error(w, "invalid bearer token", http.StatusUnauthorized)
				return
			}

			next.ServeHTTP(w, r.WithContext(WithClient(r.Context(), clientID)))
		})
	}
}

// StaticClientMiddleware attributes every request to clientID. It stands in
// for AuthMiddleware when auth is disabled.
func StaticClientMiddleware(clientID string) func(http.Handler) http.Handler {
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			next.ServeHTTP(w, r.WithContext(WithClient(r.Context(), clientID)))
		})
	}
}

// TokenResolver resolves clients from a fixed token table. Only token hashes
// are held, and every entry is compared in constant time.
type TokenResolver struct {
	entries []tokenEntry
}

type tokenEntry struct {
	hash     [sha256.Size]byte
	clientID string
}

// NewTokenResolver builds a resolver from a token to client id map.
func NewTokenResolver(tokens map[string]string) *TokenResolver {
	r := &TokenResolver{entries: make([]tokenEntry, 0, len(tokens))}
	for token, clientID := range tokens {
		r.entries = append(r.entries, tokenEntry{hash: sha256.Sum256([]byte(token)), clientID: clientID})
	}
	return r
}

// ResolveClient returns the client the token belongs to.
func (r *TokenResolver) ResolveClient(_ context.Context, token string) (string, error) {
	hash := sha256.Sum256([]byte(token))
	clientID := ""
	for _, e := range r.entries {
		if subtle.ConstantTimeCompare(hash[:], e.hash[:]) == 1 {
			clientID = e.clientID
		}
	}
	if clientID == "" {
		return "", ErrUnauthorized
	}
	return clientID, nil
}
