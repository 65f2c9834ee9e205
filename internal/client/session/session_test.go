package session

import (
	"testing"
	"time"

	"github.com/dmitrijs2005/premiumkeeper/internal/common"
	"github.com/dmitrijs2005/premiumkeeper/internal/server/auth"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func token(t *testing.T, email string, roles ...string) string {
	t.Helper()
	tok, err := auth.GenerateToken(email, roles, []byte("any-secret"), time.Hour)
	require.NoError(t, err)
	return tok
}

func TestLogin_Broker(t *testing.T) {
	var s Session
	tok := token(t, "b@example.com", "broker")

	require.NoError(t, s.Login("Bearer "+tok))
	assert.True(t, s.Authenticated())
	assert.Equal(t, tok, s.Token())
	assert.Equal(t, "b@example.com", s.Email())
	assert.True(t, s.CanSubmit())
	assert.False(t, s.IsAdmin())
}

func TestLogin_Admin(t *testing.T) {
	var s Session
	require.NoError(t, s.Login(token(t, "a@example.com", "admin")))
	assert.True(t, s.IsAdmin())
	assert.True(t, s.CanSubmit())
}

func TestLogin_NoRoleIsRefused(t *testing.T) {
	var s Session
	require.NoError(t, s.Login(token(t, "b@example.com", "broker")))

	err := s.Login(token(t, "x@example.com", "viewer"))
	require.ErrorIs(t, err, common.ErrorForbidden)
	assert.False(t, s.Authenticated())
	assert.Empty(t, s.Email())
}

func TestLogin_Garbage(t *testing.T) {
	var s Session
	require.ErrorIs(t, s.Login(""), common.ErrInvalidToken)
	require.ErrorIs(t, s.Login("not.a.jwt"), common.ErrInvalidToken)
	assert.False(t, s.Authenticated())
}

func TestLogout(t *testing.T) {
	var s Session
	require.NoError(t, s.Login(token(t, "b@example.com", "broker")))
	s.Logout()
	assert.False(t, s.Authenticated())
	assert.False(t, s.CanSubmit())
}
