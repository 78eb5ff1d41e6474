package api

import (
	"crypto/subtle"
	"errors"
	"net/http"
	"strings"
)

// HeaderAPIKey is accepted in place of an Authorization header, for clients
// such as curl one-liners that find Bearer tokens awkward.
const HeaderAPIKey = "X-API-Key"

var (
	ErrMissingKey   = errors.New("missing API key")
	ErrMalformedKey = errors.New("authorization header must be Bearer <key>")
)

// ValidateAPIKey reports whether provided matches the configured key in
// constant time. An empty configured key matches nothing.
func ValidateAPIKey(provided, configured string) bool {
	if configured == "" || provided == "" {
		return false
	}
	return subtle.ConstantTimeCompare([]byte(provided), []byte(configured)) == 1
}

// ExtractAPIKey reads the key from "Authorization: Bearer <key>", falling back
// to the X-API-Key header.
func ExtractAPIKey(r *http.Request) (string, error) {
	if auth := r.Header.Get("Authorization"); auth != "" {
		key, ok := strings.CutPrefix(auth, "Bearer ")
		if !ok {
			return "", ErrMalformedKey
		}
		if key = strings.TrimSpace(key); key == "" {
			return "", ErrMissingKey
		}
		return key, nil
	}
	if key := strings.TrimSpace(r.Header.Get(HeaderAPIKey)); key != "" {
		return key, nil
	}
	return "", ErrMissingKey
}

func (s *Server) authMiddleware(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		key, err := ExtractAPIKey(r)
		if err == nil && !ValidateAPIKey(key, s.config.APIKey) {
			err = errors.New("invalid API key")
		}
		if err != nil {
			s.logger.Debug("rejected request", "path", r.URL.Path, "remote", r.RemoteAddr, "error", err)
			s.writeError(w, http.StatusUnauthorized, err.Error())
			return
		}
		next.ServeHTTP(w, r)
	})
}
