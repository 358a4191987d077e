package services

import (
	"errors"
	"fmt"

	"github.com/google/uuid"
	"golang.org/x/crypto/bcrypt"

	"dealersite/internal/domain"
	"dealersite/internal/repos"
)

var ErrBadCreds = errors.New("invalid email or password")

type AuthService struct {
	Users *repos.UserRepo
}

func (s *AuthService) Login(sid, email, password string) (*domain.User, error) {
	u, err := s.Users.ByEmail(email)
	if err != nil {
		return nil, ErrBadCreds
	}
	if bcrypt.CompareHashAndPassword([]byte(u.Hash), []byte(password)) != nil {
		return nil, ErrBadCreds
	}
	if !u.IsAdmin() {
		return nil, ErrBadCreds
	}
	if err := s.Users.BindSession(sid, u.ID); err != nil {
		return nil, err
	}
	return u, nil
}

func (s *AuthService) Logout(sid string) error {
	return s.Users.UnbindSession(sid)
}

func (s *AuthService) CurrentUser(sid string) (*domain.User, error) {
	return s.Users.SessionUser(sid)
}

// EnsureAdmin sets the password of the configured admin account, creating
// it when missing. An empty password leaves the seeded account alone; any
// other value retires the seeded account unless it is the one configured.
func (s *AuthService) EnsureAdmin(email, password string) error {
	if password == "" {
		return nil
	}
	hash, err := bcrypt.GenerateFromPassword([]byte(password), bcrypt.DefaultCost)
	if err != nil {
		return fmt.Errorf("hash admin password: %w", err)
	}
	if err := s.Users.UpsertAdmin(uuid.NewString(), email, "Admin", string(hash)); err != nil {
		return err
	}
	u, err := s.Users.ByEmail(email)
	if err != nil {
		return fmt.Errorf("load admin: %w", err)
	}
	if u.ID == repos.SeedAdminID {
		return nil
	}
	if err := s.Users.Delete(repos.SeedAdminID); err != nil {
		return fmt.Errorf("retire seeded admin: %w", err)
	}
	return nil
}
