package utils

import (
	"testing"
	"time"

	"github.com/stretchr/testify/require"
)

func TestAccessToken_RoundTrip(t *testing.T) {
	now := time.Now()
	tok, err := NewAccessToken("s3cret", 7, "admin@example.com", "admin", 24*time.Hour, now)
	require.NoError(t, err)
	require.WithinDuration(t, now.Add(24*time.Hour), tok.Exp, time.Second)

	claims, err := ParseAccessToken("s3cret", tok.Token)
	require.NoError(t, err)
	require.Equal(t, float64(7), claims["sub"])
	require.Equal(t, "admin@example.com", claims["email"])
	require.Equal(t, "admin", claims["role"])
}

func TestAccessToken_Rejected(t *testing.T) {
	tok, err := NewAccessToken("s3cret", 1, "a@b.c", "staff", time.Hour, time.Now())
	require.NoError(t, err)

	_, err = ParseAccessToken("other", tok.Token)
	require.Error(t, err)

	expired, err := NewAccessToken("s3cret", 1, "a@b.c", "staff", time.Hour, time.Now().Add(-2*time.Hour))
	require.NoError(t, err)
	_, err = ParseAccessToken("s3cret", expired.Token)
	require.Error(t, err)
}

func TestPassword(t *testing.T) {
	hash, err := HashPassword("admin123", 4)
	require.NoError(t, err)
	require.True(t, VerifyPassword(hash, "admin123"))
	require.False(t, VerifyPassword(hash, "admin124"))
}
