package auth

import (
	"errors"
	"strconv"
	"time"

	"github.com/golang-jwt/jwt/v5"
	"github.com/google/uuid"

	"github.com/i-reserve/room-reservation/internal/model"
)

// CookieName is the name of the session cookie.
const CookieName = "ireserve_session"

// ErrInvalidSession is returned for tokens that fail signature, expiry or
// claim checks.
var ErrInvalidSession = errors.New("invalid session")

// Claims is the payload of a session token.  Subject holds the i_number
// and ID a random token id.
type Claims struct {
	Name       string `json:"name"`
	Permission int    `json:"perm"`
	jwt.RegisteredClaims
}

// Token is a signed session token with its id and expiry.
type Token struct {
	Value string
	ID    string
	Exp   time.Time
}

// Sessions signs and parses HS256 session tokens.
type Sessions struct {
	secret []byte
	ttl    time.Duration
	now    func() time.Time
}

// NewSessions builds a signer with the given secret and lifetime.
func NewSessions(secret string, ttl time.Duration) *Sessions {
	return &Sessions{secret: []byte(secret), ttl: ttl, now: time.Now}
}

// Issue creates a session token for u.
func (s *Sessions) Issue(u model.User) (Token, error) {
	now := s.now().UTC()
	exp := now.Add(s.ttl)
	id := uuid.NewString()
	claims := Claims{
		Name:       u.DisplayName(),
		Permission: int(u.Permission),
		RegisteredClaims: jwt.RegisteredClaims{
			Subject:   strconv.FormatInt(u.INumber, 10),
			ID:        id,
			ExpiresAt: jwt.NewNumericDate(exp),
			IssuedAt:  jwt.NewNumericDate(now),
		},
	}
	signed, err := jwt.NewWithClaims(jwt.SigningMethodHS256, claims).SignedString(s.secret)
	if err != nil {
		return Token{}, err
	}
	return Token{Value: signed, ID: id, Exp: exp}, nil
}

// Parse verifies raw and returns the identity it carries.
func (s *Sessions) Parse(raw string) (Identity, error) {
	var claims Claims
	tok, err := jwt.ParseWithClaims(raw, &claims, func(t *jwt.Token) (interface{}, error) {
		return s.secret, nil
	},
		jwt.WithValidMethods([]string{jwt.SigningMethodHS256.Alg()}),
		jwt.WithExpirationRequired(),
		jwt.WithTimeFunc(s.now),
	)
	if err != nil || !tok.Valid {
		return Identity{}, ErrInvalidSession
	}
	iNumber, err := strconv.ParseInt(claims.Subject, 10, 64)
	if err != nil || iNumber <= 0 {
		return Identity{}, ErrInvalidSession
	}
	perm := model.Permission(claims.Permission)
	if !perm.Valid() {
		return Identity{}, ErrInvalidSession
	}
	return Identity{
		INumber:    iNumber,
		Name:       claims.Name,
		Permission: perm,
		SessionID:  claims.ID,
		ExpiresAt:  claims.ExpiresAt.Time,
	}, nil
}
