// Copyright (c) 2025-2026 Oleg Ivanchenko
// SPDX-License-Identifier: GPL-3.0-or-later

// Package middleware provides HTTP middleware for authentication,
// authorization, rate limiting and request context handling.
package middleware

import (
	"context"
	"net/http"
	"strings"

	"github.com/relayhq/relay-go/internal/apperr"
	"github.com/relayhq/relay-go/internal/identity"
	"github.com/relayhq/relay-go/internal/model"
)

// ContextKey is the type for request context keys set by this package.
type ContextKey string

// ContextKeyUser is the context key for the authenticated user.
const ContextKeyUser ContextKey = "user"

// Authenticate creates middleware that resolves the Authorization bearer
// principal to a platform user and stores it in the request context.
// Requests without valid credentials are rejected with 401.
func Authenticate(resolver identity.Resolver) func(http.Handler) http.Handler {
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			principalID, ok := bearerToken(r)
			if !ok {
				WriteError(w, apperr.Unauthorized("missing or malformed Authorization header"))
				return
			}

			user, err := resolver.Resolve(r.Context(), principalID)
			if err != nil {
				WriteError(w, err)
				return
			}

			ctx := context.WithValue(r.Context(), ContextKeyUser, user)
			next.ServeHTTP(w, r.WithContext(ctx))
		})
	}
}

// bearerToken extracts the token from an "Authorization: Bearer <token>"
// header.
func bearerToken(r *http.Request) (string, bool) {
	authHeader := r.Header.Get("Authorization")
	if authHeader == "" {
		return "", false
	}
	parts := strings.SplitN(authHeader, " ", 2)
	if len(parts) != 2 || !strings.EqualFold(parts[0], "bearer") || parts[1] == "" {
		return "", false
	}
	return parts[1], true
}

// GetUser retrieves the authenticated user from the request context.
// Returns nil if the request did not pass Authenticate.
func GetUser(r *http.Request) *model.User {
	user, ok := r.Context().Value(ContextKeyUser).(*model.User)
	if !ok {
		return nil
	}
	return user
}

// RequireStaff creates middleware that rejects non-admin users with 403.
// Must run after Authenticate.
func RequireStaff(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		user := GetUser(r)
		if user == nil {
			WriteError(w, apperr.Unauthorized("authentication required"))
			return
		}
		if !user.IsAdmin() {
			WriteError(w, apperr.Forbidden("admin role required"))
			return
		}
		next.ServeHTTP(w, r)
	})
}

// RequirePublisher creates middleware that rejects users without a
// publishing role with 403. Must run after Authenticate.
func RequirePublisher(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		user := GetUser(r)
		if user == nil {
			WriteError(w, apperr.Unauthorized("authentication required"))
			return
		}
		if !user.CanPublish() {
			WriteError(w, apperr.Forbidden("editor or admin role required"))
			return
		}
		next.ServeHTTP(w, r)
	})
}
