// Package session keeps the signed-in identity of the CLI user.
//
// The token is decoded without verification: the server is the security
// boundary, the client only uses the claims to decide what to offer.
package session

import (
	"fmt"
	"strings"
	"sync"

	"github.com/dmitrijs2005/premiumkeeper/internal/common"
	"github.com/golang-jwt/jwt/v5"
)

type claims struct {
	Email       string `json:"email"`
	AppMetadata struct {
		Roles []string `json:"roles"`
	} `json:"app_metadata"`
	jwt.RegisteredClaims
}

// Session is safe for concurrent use. The zero value is signed out.
type Session struct {
	mu    sync.RWMutex
	token string
	email string
	roles []string
}

// Login decodes token and stores it. A token without a broker or admin role
// is refused with common.ErrorForbidden and leaves the session signed out.
func (s *Session) Login(token string) error {
	token = strings.TrimSpace(strings.TrimPrefix(strings.TrimSpace(token), "Bearer "))
	if token == "" {
		return fmt.Errorf("%w: empty token", common.ErrInvalidToken)
	}

	var c claims
	if _, _, err := jwt.NewParser().ParseUnverified(token, &c); err != nil {
		return fmt.Errorf("%w: %v", common.ErrInvalidToken, err)
	}
	if c.Email == "" {
		return fmt.Errorf("%w: token has no email", common.ErrInvalidToken)
	}
	if !common.HasRole(c.AppMetadata.Roles, common.RoleBroker, common.RoleAdmin) {
		s.Logout()
		return fmt.Errorf("%w: %s has neither broker nor admin role", common.ErrorForbidden, c.Email)
	}

	s.mu.Lock()
	defer s.mu.Unlock()
	s.token = token
	s.email = c.Email
	s.roles = append([]string(nil), c.AppMetadata.Roles...)
	return nil
}

func (s *Session) Logout() {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.token, s.email, s.roles = "", "", nil
}

func (s *Session) Authenticated() bool {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return s.token != ""
}

func (s *Session) Token() string {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return s.token
}

func (s *Session) Email() string {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return s.email
}

func (s *Session) IsAdmin() bool {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return common.HasRole(s.roles, common.RoleAdmin)
}

// CanSubmit reports whether the user may submit premiums.
func (s *Session) CanSubmit() bool {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return common.HasRole(s.roles, common.RoleBroker, common.RoleAdmin)
}
