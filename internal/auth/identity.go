// Copyright (c) 2024-2025 Jesse Morgan / Morgan Forge
// SPDX-License-Identifier: AGPL-3.0-or-later

package auth

import (
	"github.com/golang-jwt/jwt/v5"
	"go.uber.org/zap"

	"docchat/internal/logging"
)

// =============================================================================
// IDENTITY
// =============================================================================

// Identity is the local view of who is logged in. The zero value is the
// anonymous identity.
type Identity struct {
	Username string
	Email    string
}

// Anonymous reports whether no user is logged in.
func (i Identity) Anonymous() bool {
	return i.Username == ""
}

// DisplayName returns the name shown in the UI.
func (i Identity) DisplayName() string {
	if i.Anonymous() {
		return "Anonymous"
	}
	return i.Username
}

// =============================================================================
// CLAIM DECODING
// =============================================================================

// DeriveIdentity decodes the display identity from an access token's claims.
//
// The signature is never verified: the token is only trusted by the backend,
// and the client merely reads the payload for display, the same way the web
// frontend decodes it in the browser. An absent token yields the anonymous
// identity. An undecodable token also yields anonymous, is logged, and is
// deliberately left in place: logout is the only path that erases tokens.
func DeriveIdentity(access string) Identity {
	if access == "" {
		return Identity{}
	}

	claims := jwt.MapClaims{}
	parser := jwt.NewParser()
	if _, _, err := parser.ParseUnverified(access, claims); err != nil {
		logging.L().Warn("stored access token is not decodable, treating session as anonymous",
			zap.Error(err))
		return Identity{}
	}

	id := Identity{
		Username: firstClaim(claims, "username", "user_name"),
		Email:    firstClaim(claims, "email"),
	}

	// Same fallback chain the claims are displayed with everywhere: a token
	// with only an email still names the user.
	if id.Username == "" && id.Email != "" {
		id.Username = id.Email
	}
	if id.Username == "" {
		id.Username = "User"
	}
	return id
}

// firstClaim returns the first non-empty string claim among keys.
func firstClaim(claims jwt.MapClaims, keys ...string) string {
	for _, key := range keys {
		if v, ok := claims[key].(string); ok && v != "" {
			return v
		}
	}
	return ""
}
