package service

import (
	"context"
	"errors"
	"strings"

	"github.com/sirupsen/logrus"

	"github.com/i-reserve/room-reservation/internal/auth"
	"github.com/i-reserve/room-reservation/internal/model"
	"github.com/i-reserve/room-reservation/internal/repository"
)

// RegistrationForm is the raw input of the new-account form.
type RegistrationForm struct {
	INumber         string
	FirstName       string
	LastName        string
	Email           string
	Password        string
	PasswordConfirm string
}

// AccountService registers users, logs them in and out, and resolves
// session cookies back into identities.
type AccountService struct {
	users      UserStore
	sessions   *auth.Sessions
	revoked    SessionRevoker
	bcryptCost int
}

func NewAccountService(users UserStore, sessions *auth.Sessions, revoked SessionRevoker, bcryptCost int) *AccountService {
	return &AccountService{users: users, sessions: sessions, revoked: revoked, bcryptCost: bcryptCost}
}

// userFields validates the fields shared by registration and the
// administrator's user form.
func userFields(p *problems, iNumber, first, last, email, password string) model.User {
	var u model.User
	n, ok := parseINumber(iNumber)
	p.check(ok, "I-Number must be a 9-digit number.")
	u.INumber = n

	u.FirstName = strings.TrimSpace(first)
	p.check(u.FirstName != "" && length(u.FirstName) <= 45, "First name is required and must be ≤ 45 characters.")
	u.LastName = strings.TrimSpace(last)
	p.check(u.LastName != "" && length(u.LastName) <= 45, "Last name is required and must be ≤ 45 characters.")

	u.Email = strings.ToLower(strings.TrimSpace(email))
	p.check(validEmail(u.Email), "A valid email is required and must be ≤ 45 characters.")

	p.check(length(password) >= minPasswordLength, "Password must be at least 6 characters long.")
	return u
}

// Register creates a self-service account at the User level and starts a
// session for it.
func (s *AccountService) Register(ctx context.Context, form RegistrationForm) (*model.User, auth.Token, error) {
	var p problems
	u := userFields(&p, form.INumber, form.FirstName, form.LastName, form.Email, form.Password)
	p.check(form.Password == form.PasswordConfirm, "Passwords Must Match")
	if err := p.err(); err != nil {
		return nil, auth.Token{}, err
	}
	logCtx := logrus.WithFields(logrus.Fields{"i_number": u.INumber, "email": u.Email})

	if _, err := s.users.GetByEmail(ctx, u.Email); err == nil {
		return nil, auth.Token{}, ErrEmailExists
	} else if !errors.Is(err, repository.ErrNotFound) {
		return nil, auth.Token{}, err
	}
	if _, err := s.users.GetByINumber(ctx, u.INumber); err == nil {
		return nil, auth.Token{}, ErrINumberExists
	} else if !errors.Is(err, repository.ErrNotFound) {
		return nil, auth.Token{}, err
	}

	hash, err := auth.HashPassword(form.Password, s.bcryptCost)
	if err != nil {
		logCtx.WithError(err).Error("failed to hash password during registration")
		return nil, auth.Token{}, err
	}
	u.PasswordHash = hash
	u.Permission = model.PermissionUser

	if err := s.users.Create(ctx, u); err != nil {
		if errors.Is(err, repository.ErrDuplicate) {
			logCtx.Warn("registration raced with an existing account")
			return nil, auth.Token{}, s.duplicateOf(ctx, u.Email)
		}
		return nil, auth.Token{}, err
	}
	tok, err := s.sessions.Issue(u)
	if err != nil {
		return nil, auth.Token{}, err
	}
	logCtx.Info("user registered")
	u.PasswordHash = ""
	return &u, tok, nil
}

// duplicateOf tells which unique key a failed insert collided with.  When
// the email is free the collision was on the I-Number primary key.
func (s *AccountService) duplicateOf(ctx context.Context, email string) error {
	if _, err := s.users.GetByEmail(ctx, email); err == nil {
		return ErrEmailExists
	}
	return ErrINumberExists
}

// Login checks the credentials and issues a session token.
func (s *AccountService) Login(ctx context.Context, email, password string) (*model.User, auth.Token, error) {
	u, err := s.users.GetByEmail(ctx, email)
	if err != nil {
		if errors.Is(err, repository.ErrNotFound) {
			return nil, auth.Token{}, ErrInvalidCredentials
		}
		return nil, auth.Token{}, err
	}
	if !auth.VerifyPassword(u.PasswordHash, password) {
		logrus.WithField("i_number", u.INumber).Warn("login with wrong password")
		return nil, auth.Token{}, ErrInvalidCredentials
	}
	tok, err := s.sessions.Issue(*u)
	if err != nil {
		return nil, auth.Token{}, err
	}
	u.PasswordHash = ""
	return u, tok, nil
}

// Logout revokes the session so a copied cookie stops working.
func (s *AccountService) Logout(ctx context.Context, id auth.Identity) error {
	if s.revoked == nil || !id.Authenticated() {
		return nil
	}
	return s.revoked.Revoke(ctx, id.SessionID, id.ExpiresAt)
}

// Authenticate turns a raw session token into an identity.  Invalid,
// expired and revoked tokens yield auth.ErrInvalidSession.
func (s *AccountService) Authenticate(ctx context.Context, raw string) (auth.Identity, error) {
	id, err := s.sessions.Parse(raw)
	if err != nil {
		return auth.Identity{}, err
	}
	if s.revoked != nil {
		revoked, err := s.revoked.IsRevoked(ctx, id.SessionID)
		if err != nil {
			// Redis outage: fall back to the token's own expiry.
			logrus.WithError(err).Warn("session revocation check failed")
		} else if revoked {
			return auth.Identity{}, auth.ErrInvalidSession
		}
	}
	return id, nil
}
