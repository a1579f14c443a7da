package security

import (
	"testing"
	"time"

	"github.com/stretchr/testify/require"
)

func TestTokenRoundTrip(t *testing.T) {
	ti, err := NewTokenIssuer("secret")
	require.NoError(t, err)

	token, err := ti.Issue("user-1", "session-1", time.Now().Add(time.Hour))
	require.NoError(t, err)

	claims, err := ti.Parse(token)
	require.NoError(t, err)
	require.Equal(t, "user-1", claims.Subject)
	require.Equal(t, "session-1", claims.SessionID)
}

func TestTokenRejections(t *testing.T) {
	ti, err := NewTokenIssuer("secret")
	require.NoError(t, err)
	other, err := NewTokenIssuer("other-secret")
	require.NoError(t, err)

	expired, err := ti.Issue("user-1", "session-1", time.Now().Add(-time.Minute))
	require.NoError(t, err)
	_, err = ti.Parse(expired)
	require.ErrorIs(t, err, ErrInvalidToken)

	forged, err := other.Issue("user-1", "session-1", time.Now().Add(time.Hour))
	require.NoError(t, err)
	_, err = ti.Parse(forged)
	require.ErrorIs(t, err, ErrInvalidToken)

	_, err = ti.Parse("garbage")
	require.ErrorIs(t, err, ErrInvalidToken)

	_, err = NewTokenIssuer("")
	require.Error(t, err)
}

func TestPasswordHashing(t *testing.T) {
	hash, err := HashPassword("correct horse")
	require.NoError(t, err)
	require.NotEqual(t, "correct horse", hash)
	require.True(t, CheckPassword(hash, "correct horse"))
	require.False(t, CheckPassword(hash, "battery staple"))
	require.False(t, CheckPassword("", "anything"))
}

func TestGenerateCode(t *testing.T) {
	code, err := GenerateCode(8)
	require.NoError(t, err)
	require.Len(t, code, 8)
	for _, c := range code {
		require.True(t, c >= '0' && c <= '9')
	}

	hash := HashCode("a@example.com", code)
	require.True(t, CodeMatches(hash, "a@example.com", code))
	require.False(t, CodeMatches(hash, "b@example.com", code))
}
