package apitest

import (
	"testing"
	"time"

	"github.com/aussiebroadwan/banksync/pkg/jwtx"
	"github.com/golang-jwt/jwt/v5"
	"github.com/stretchr/testify/require"
)

var signingKey = []byte("apitest-signing-key")

// Token mints an HS256 credential. The client never verifies signatures, so
// any key will do.
func Token(t testing.TB, kind jwtx.AccountKind, preauth *string, exp time.Time) string {
	t.Helper()

	claims := jwtx.Claims{
		RegisteredClaims: jwt.RegisteredClaims{
			Subject:   "member-1",
			IssuedAt:  jwt.NewNumericDate(time.Now()),
			ExpiresAt: jwt.NewNumericDate(exp),
		},
		Username: "member",
		Kind:     kind,
		Preauth:  preauth,
	}
	tok, err := jwt.NewWithClaims(jwt.SigningMethodHS256, claims).SignedString(signingKey)
	require.NoError(t, err)
	return tok
}
