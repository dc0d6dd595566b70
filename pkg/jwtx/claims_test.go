package jwtx_test

import (
	"encoding/base64"
	"testing"
	"time"

	"github.com/aussiebroadwan/banksync/pkg/jwtx"
	"github.com/golang-jwt/jwt/v5"
	"github.com/stretchr/testify/require"
)

func ptr(s string) *string { return &s }

func TestDecodeUnverified(t *testing.T) {
	t.Parallel()

	exp := time.Unix(1900000000, 0).UTC()
	in := jwtx.Claims{
		RegisteredClaims: jwt.RegisteredClaims{
			Subject:   "acct-1",
			ExpiresAt: jwt.NewNumericDate(exp),
		},
		Username: "sam",
		Email:    "sam@example.com",
		Kind:     jwtx.KindStudent,
		Preauth:  ptr("Y"),
	}

	// Signed with a throwaway key, the decoder never looks at it
	token, err := jwt.NewWithClaims(jwt.SigningMethodHS256, in).SignedString([]byte("secret"))
	require.NoError(t, err)

	out, err := jwtx.DecodeUnverified(token)
	require.NoError(t, err)
	require.Equal(t, "acct-1", out.Subject)
	require.Equal(t, "sam", out.Username)
	require.True(t, out.IsStudent())
	require.True(t, out.IsPreauthorized())

	got, ok := out.Expiration()
	require.True(t, ok)
	require.True(t, exp.Equal(got))
}

func TestDecodeUnverifiedMalformed(t *testing.T) {
	t.Parallel()

	cases := map[string]string{
		"empty":           "",
		"two segments":    "a.b",
		"bad base64":      "a.!!!.c",
		"not json":        "a." + base64.RawURLEncoding.EncodeToString([]byte("nope")) + ".c",
		"json not object": "a." + base64.RawURLEncoding.EncodeToString([]byte(`[1,2]`)) + ".c",
	}

	for name, token := range cases {
		t.Run(name, func(t *testing.T) {
			_, err := jwtx.DecodeUnverified(token)
			require.ErrorIs(t, err, jwtx.ErrMalformed)
		})
	}
}

func TestDecodeUnverifiedPadded(t *testing.T) {
	t.Parallel()

	payload := base64.URLEncoding.EncodeToString([]byte(`{"type":"user","ab":1}`))
	claims, err := jwtx.DecodeUnverified("h." + payload + ".s")
	require.NoError(t, err)
	require.False(t, claims.IsStudent())
	require.False(t, claims.IsPreauthorized())
}

func TestIsPreauthorized(t *testing.T) {
	t.Parallel()

	require.False(t, (&jwtx.Claims{}).IsPreauthorized())
	require.False(t, (&jwtx.Claims{Preauth: ptr("N")}).IsPreauthorized())
	require.True(t, (&jwtx.Claims{Preauth: ptr("Y")}).IsPreauthorized())
	require.True(t, (&jwtx.Claims{Preauth: ptr("")}).IsPreauthorized())
}

func TestValidateExpiry(t *testing.T) {
	now := time.Now().UTC()

	t.Run("valid token", func(t *testing.T) {
		claims := &jwtx.Claims{
			RegisteredClaims: jwt.RegisteredClaims{
				ExpiresAt: jwt.NewNumericDate(now.Add(1 * time.Minute)),
			},
		}
		require.NoError(t, claims.ValidateExpiry())
	})

	t.Run("expired token", func(t *testing.T) {
		claims := &jwtx.Claims{
			RegisteredClaims: jwt.RegisteredClaims{
				ExpiresAt: jwt.NewNumericDate(now.Add(-1 * time.Minute)),
			},
		}
		require.ErrorIs(t, claims.ValidateExpiry(), jwtx.ErrExpired)
	})

	t.Run("not yet valid", func(t *testing.T) {
		claims := &jwtx.Claims{
			RegisteredClaims: jwt.RegisteredClaims{
				NotBefore: jwt.NewNumericDate(now.Add(1 * time.Minute)),
			},
		}
		require.ErrorIs(t, claims.ValidateExpiry(), jwtx.ErrNotYetValid)
	})

	t.Run("no exp or nbf", func(t *testing.T) {
		claims := &jwtx.Claims{}
		require.NoError(t, claims.ValidateExpiry())
		require.False(t, claims.ExpiresWithin(time.Hour))
	})
}

func TestValidateExpiryWithLeeway(t *testing.T) {
	now := time.Now().UTC()

	t.Run("valid with leeway", func(t *testing.T) {
		claims := &jwtx.Claims{
			RegisteredClaims: jwt.RegisteredClaims{
				ExpiresAt: jwt.NewNumericDate(now.Add(-10 * time.Second)),
			},
		}
		require.NoError(t, claims.ValidateExpiryWithLeeway(30*time.Second))
	})

	t.Run("expired beyond leeway", func(t *testing.T) {
		claims := &jwtx.Claims{
			RegisteredClaims: jwt.RegisteredClaims{
				ExpiresAt: jwt.NewNumericDate(now.Add(-2 * time.Minute)),
			},
		}
		require.ErrorIs(t, claims.ValidateExpiryWithLeeway(30*time.Second), jwtx.ErrExpired)
	})
}

func TestExpiresWithin(t *testing.T) {
	claims := &jwtx.Claims{
		RegisteredClaims: jwt.RegisteredClaims{
			ExpiresAt: jwt.NewNumericDate(time.Now().Add(10 * time.Second)),
		},
	}
	require.True(t, claims.ExpiresWithin(30*time.Second))
	require.False(t, claims.ExpiresWithin(time.Second))
}
