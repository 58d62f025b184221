// Package middleware provides HTTP middleware for draft access tokens.
package middleware

import (
	"context"
	"fmt"
	"net/http"
	"strings"

	"github.com/google/uuid"
)

// ContextKey is a typed key for context values to avoid collisions.
type ContextKey string

// draftIDKey is the context key for the draft a token grants access to.
const draftIDKey ContextKey = "draftID"

// TokenValidator validates draft access tokens.
type TokenValidator interface {
	ValidateToken(tokenString string) (DraftIDGetter, error)
}

// DraftIDGetter extracts the draft id from token claims.
type DraftIDGetter interface {
	GetDraftID() uuid.UUID
}

// BearerToken returns the token from an "Authorization: Bearer <token>" header. The scheme
// is matched case-insensitively.
func BearerToken(r *http.Request) (string, bool) {
	parts := strings.Fields(r.Header.Get("Authorization"))
	if len(parts) != 2 || !strings.EqualFold(parts[0], "Bearer") {
		return "", false
	}
	return parts[1], true
}

// RequireDraft validates the bearer token and checks that it was issued for the draft
// named by the {id} path value. The draft id is added to the request context.
func RequireDraft(validator TokenValidator) func(http.Handler) http.Handler {
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			token, ok := BearerToken(r)
			if !ok {
				http.Error(w, "Unauthorized", http.StatusUnauthorized)
				return
			}

			claims, err := validator.ValidateToken(token)
			if err != nil {
				http.Error(w, "Unauthorized", http.StatusUnauthorized)
				return
			}

			draftID := claims.GetDraftID()
			if want := r.PathValue("id"); want != "" && want != draftID.String() {
				http.Error(w, "Forbidden", http.StatusForbidden)
				return
			}

			ctx := context.WithValue(r.Context(), draftIDKey, draftID)
			next.ServeHTTP(w, r.WithContext(ctx))
		})
	}
}

// GetDraftID extracts the authorized draft id from the request context.
func GetDraftID(r *http.Request) (uuid.UUID, error) {
	draftID, ok := r.Context().Value(draftIDKey).(uuid.UUID)
	if !ok {
		return uuid.Nil, fmt.Errorf("draft ID not found in request context")
	}
	return draftID, nil
}
