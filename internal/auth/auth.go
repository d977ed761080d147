// Package auth is the contract boundary for the external authentication
// collaborator spec.md §1 names out of scope ("Authentication (JWT
// issuance/verification)"). It specifies only the shape the gateways need
// — an Authenticator turning a bearer token into a player identity — plus
// a minimal stand-in implementation so the gateways are exercisable
// end-to-end without a real identity provider wired up. No JWT library
// appears anywhere in the pack, so the stand-in signs with stdlib
// crypto/hmac rather than introducing one.
package auth

import (
	"crypto/hmac"
	"crypto/sha256"
	"encoding/hex"
	"fmt"
	"strings"

	"poker-platform/internal/apierr"
)

// Claims is the identity recovered from a verified token.
type Claims struct {
	PlayerID string
}

// Authenticator verifies a bearer token and recovers the caller's identity.
type Authenticator interface {
	Authenticate(token string) (Claims, error)
}

// HMACAuthenticator verifies tokens of the form "<playerID>.<signature>",
// signature = hex(HMAC-SHA256(playerID, signingKey)). It is the smallest
// verifiable stand-in for the real JWT issuer/verifier this module never
// owns.
type HMACAuthenticator struct {
	signingKey []byte
}

// NewHMACAuthenticator builds an Authenticator from the configured signing
// key.
func NewHMACAuthenticator(signingKey string) *HMACAuthenticator {
	return &HMACAuthenticator{signingKey: []byte(signingKey)}
}

// Authenticate verifies the token's signature and returns its claims.
func (a *HMACAuthenticator) Authenticate(token string) (Claims, error) {
	parts := strings.SplitN(token, ".", 2)
	if len(parts) != 2 || parts[0] == "" {
		return Claims{}, apierr.New(apierr.KindUnauthenticated, "malformed token")
	}
	playerID, signature := parts[0], parts[1]

	mac := hmac.New(sha256.New, a.signingKey)
	mac.Write([]byte(playerID))
	want := hex.EncodeToString(mac.Sum(nil))

	if !hmac.Equal([]byte(signature), []byte(want)) {
		return Claims{}, apierr.New(apierr.KindUnauthenticated, "invalid token signature")
	}
	return Claims{PlayerID: playerID}, nil
}

// Sign produces a token for playerID, for tests and local tooling — the
// real issuer lives outside this module.
func (a *HMACAuthenticator) Sign(playerID string) string {
	mac := hmac.New(sha256.New, a.signingKey)
	mac.Write([]byte(playerID))
	return fmt.Sprintf("%s.%s", playerID, hex.EncodeToString(mac.Sum(nil)))
}
