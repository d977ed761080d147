package auth

import (
	"testing"

	"github.com/stretchr/testify/require"

	"poker-platform/internal/apierr"
)

func TestSignThenAuthenticateRecoversPlayerID(t *testing.T) {
	a := NewHMACAuthenticator("secret")
	token := a.Sign("p1")

	claims, err := a.Authenticate(token)
	require.NoError(t, err)
	require.Equal(t, "p1", claims.PlayerID)
}

func TestAuthenticateRejectsTamperedToken(t *testing.T) {
	a := NewHMACAuthenticator("secret")
	token := a.Sign("p1")

	_, err := a.Authenticate(token[:len(token)-1] + "0")
	require.True(t, apierr.Is(err, apierr.KindUnauthenticated))
}

func TestAuthenticateRejectsTokenSignedWithDifferentKey(t *testing.T) {
	a1 := NewHMACAuthenticator("secret-one")
	a2 := NewHMACAuthenticator("secret-two")
	token := a1.Sign("p1")

	_, err := a2.Authenticate(token)
	require.True(t, apierr.Is(err, apierr.KindUnauthenticated))
}

func TestAuthenticateRejectsMalformedToken(t *testing.T) {
	a := NewHMACAuthenticator("secret")
	_, err := a.Authenticate("not-a-valid-token")
	require.True(t, apierr.Is(err, apierr.KindUnauthenticated))
}
