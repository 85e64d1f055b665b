package utils

import (
	"errors"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestTokenRoundTrip(t *testing.T) {
	m, err := NewTokenManager("test-secret")
	require.NoError(t, err)

	token, exp, err := m.GenerateToken(7, "barista", RoleAdmin, time.Hour)
	require.NoError(t, err)
	assert.WithinDuration(t, time.Now().Add(time.Hour), exp, time.Minute)

	claims, err := m.ParseToken(token)
	require.NoError(t, err)
	assert.Equal(t, int64(7), claims.UserId)
	assert.Equal(t, RoleAdmin, claims.Role)
}

func TestParseTokenRejectsForeignAndExpiredTokens(t *testing.T) {
	m, err := NewTokenManager("test-secret")
	require.NoError(t, err)
	other, err := NewTokenManager("other-secret")
	require.NoError(t, err)

	foreign, _, err := other.GenerateToken(1, "x", RoleAdmin, time.Hour)
	require.NoError(t, err)
	_, err = m.ParseToken(foreign)
	assert.True(t, errors.Is(err, ErrInvalidToken))

	expired, _, err := m.GenerateToken(1, "x", RoleAdmin, -time.Minute)
	require.NoError(t, err)
	_, err = m.ParseToken(expired)
	assert.True(t, errors.Is(err, ErrInvalidToken))

	_, err = NewTokenManager("")
	assert.Error(t, err)
}
