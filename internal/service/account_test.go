package service

import (
	"context"
	"errors"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/mock"
	"github.com/stretchr/testify/require"
	"golang.org/x/crypto/bcrypt"

	"github.com/i-reserve/room-reservation/internal/auth"
	"github.com/i-reserve/room-reservation/internal/model"
	"github.com/i-reserve/room-reservation/internal/repository"
)

const testCost = bcrypt.MinCost

func registration() RegistrationForm {
	return RegistrationForm{
		INumber:         "123456789",
		FirstName:       "Ada",
		LastName:        "Lovelace",
		Email:           " Ada@Example.com ",
		Password:        "secret1",
		PasswordConfirm: "secret1",
	}
}

func TestRegister_ShortPasswordNeverReachesStore(t *testing.T) {
	users := new(mockUsers)
	svc := NewAccountService(users, auth.NewSessions("k", time.Hour), nil, testCost)

	f := registration()
	f.Password, f.PasswordConfirm = "abcde", "abcde"
	_, _, err := svc.Register(context.Background(), f)

	var ve *ValidationError
	require.ErrorAs(t, err, &ve)
	assert.Equal(t, []string{"Password must be at least 6 characters long."}, ve.Problems)
	users.AssertNotCalled(t, "Create", mock.Anything, mock.Anything)
	users.AssertNotCalled(t, "GetByEmail", mock.Anything, mock.Anything)
}

func TestRegister_PasswordsMustMatch(t *testing.T) {
	svc := NewAccountService(new(mockUsers), auth.NewSessions("k", time.Hour), nil, testCost)
	f := registration()
	f.PasswordConfirm = "other12"

	_, _, err := svc.Register(context.Background(), f)
	assert.EqualError(t, err, "Passwords Must Match")
}

func TestRegister_RejectsBadINumber(t *testing.T) {
	svc := NewAccountService(new(mockUsers), auth.NewSessions("k", time.Hour), nil, testCost)
	for _, in := range []string{"12345678", "1234567890", "12345678x", ""} {
		f := registration()
		f.INumber = in
		_, _, err := svc.Register(context.Background(), f)
		assert.ErrorIs(t, err, ErrValidation, in)
	}
}

func TestRegister_DuplicateEmail(t *testing.T) {
	users := new(mockUsers)
	users.On("GetByEmail", mock.Anything, "ada@example.com").Return(&model.User{INumber: 1}, nil)
	svc := NewAccountService(users, auth.NewSessions("k", time.Hour), nil, testCost)

	_, _, err := svc.Register(context.Background(), registration())
	assert.ErrorIs(t, err, ErrEmailExists)
	users.AssertNotCalled(t, "Create", mock.Anything, mock.Anything)
}

func TestRegister_DuplicateINumber(t *testing.T) {
	users := new(mockUsers)
	users.On("GetByEmail", mock.Anything, "ada@example.com").Return(nil, repository.ErrNotFound)
	users.On("GetByINumber", mock.Anything, int64(123456789)).Return(&model.User{INumber: 123456789}, nil)
	svc := NewAccountService(users, auth.NewSessions("k", time.Hour), nil, testCost)

	_, _, err := svc.Register(context.Background(), registration())
	assert.ErrorIs(t, err, ErrINumberExists)
	assert.NotErrorIs(t, err, ErrEmailExists)
	users.AssertNotCalled(t, "Create", mock.Anything, mock.Anything)
}

func TestRegister_RaceOnInsertNamesTheCollidingKey(t *testing.T) {
	tests := []struct {
		name       string
		emailTaken bool
		want       error
	}{
		{"email", true, ErrEmailExists},
		{"i_number", false, ErrINumberExists},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			users := new(mockUsers)
			users.On("GetByEmail", mock.Anything, "ada@example.com").Return(nil, repository.ErrNotFound).Once()
			if tt.emailTaken {
				users.On("GetByEmail", mock.Anything, "ada@example.com").Return(&model.User{INumber: 1}, nil).Once()
			} else {
				users.On("GetByEmail", mock.Anything, "ada@example.com").Return(nil, repository.ErrNotFound).Once()
			}
			users.On("GetByINumber", mock.Anything, int64(123456789)).Return(nil, repository.ErrNotFound)
			users.On("Create", mock.Anything, mock.Anything).Return(repository.ErrDuplicate)
			svc := NewAccountService(users, auth.NewSessions("k", time.Hour), nil, testCost)

			_, _, err := svc.Register(context.Background(), registration())
			assert.ErrorIs(t, err, tt.want)
		})
	}
}

func TestRegister_CreatesUserLevelAccount(t *testing.T) {
	users := new(mockUsers)
	users.On("GetByEmail", mock.Anything, "ada@example.com").Return(nil, repository.ErrNotFound)
	users.On("GetByINumber", mock.Anything, int64(123456789)).Return(nil, repository.ErrNotFound)
	var stored model.User
	users.On("Create", mock.Anything, mock.Anything).Run(func(args mock.Arguments) {
		stored = args.Get(1).(model.User)
	}).Return(nil)
	sessions := auth.NewSessions("k", time.Hour)
	svc := NewAccountService(users, sessions, nil, testCost)

	u, tok, err := svc.Register(context.Background(), registration())
	require.NoError(t, err)

	assert.Equal(t, model.PermissionUser, stored.Permission)
	assert.Equal(t, "ada@example.com", stored.Email)
	assert.True(t, auth.VerifyPassword(stored.PasswordHash, "secret1"))
	assert.Empty(t, u.PasswordHash)

	id, err := sessions.Parse(tok.Value)
	require.NoError(t, err)
	assert.EqualValues(t, 123456789, id.INumber)
	assert.Equal(t, model.PermissionUser, id.Permission)
}

func TestLogin(t *testing.T) {
	hash, err := auth.HashPassword("secret1", testCost)
	require.NoError(t, err)
	users := new(mockUsers)
	users.On("GetByEmail", mock.Anything, "ada@example.com").Return(&model.User{INumber: 123456789, PasswordHash: hash}, nil)
	users.On("GetByEmail", mock.Anything, "nobody@example.com").Return(nil, repository.ErrNotFound)
	svc := NewAccountService(users, auth.NewSessions("k", time.Hour), nil, testCost)

	_, _, err = svc.Login(context.Background(), "ada@example.com", "wrong!!")
	assert.ErrorIs(t, err, ErrInvalidCredentials)
	_, _, err = svc.Login(context.Background(), "nobody@example.com", "secret1")
	assert.ErrorIs(t, err, ErrInvalidCredentials)

	u, tok, err := svc.Login(context.Background(), "ada@example.com", "secret1")
	require.NoError(t, err)
	assert.Empty(t, u.PasswordHash)
	assert.NotEmpty(t, tok.Value)
}

func TestAuthenticate_Revocation(t *testing.T) {
	sessions := auth.NewSessions("k", time.Hour)
	tok, err := sessions.Issue(model.User{INumber: 123456789, Permission: model.PermissionStudent})
	require.NoError(t, err)

	revoker := new(mockRevoker)
	revoker.On("IsRevoked", mock.Anything, tok.ID).Return(true, nil).Once()
	svc := NewAccountService(new(mockUsers), sessions, revoker, testCost)

	_, err = svc.Authenticate(context.Background(), tok.Value)
	assert.ErrorIs(t, err, auth.ErrInvalidSession)

	revoker.On("IsRevoked", mock.Anything, tok.ID).Return(false, errors.New("redis down")).Once()
	id, err := svc.Authenticate(context.Background(), tok.Value)
	require.NoError(t, err, "a revocation outage falls back to the token expiry")
	assert.EqualValues(t, 123456789, id.INumber)
}

func TestLogout_RevokesUntilExpiry(t *testing.T) {
	exp := time.Now().Add(time.Hour)
	revoker := new(mockRevoker)
	revoker.On("Revoke", mock.Anything, "jti-1", exp).Return(nil)
	svc := NewAccountService(new(mockUsers), auth.NewSessions("k", time.Hour), revoker, testCost)

	require.NoError(t, svc.Logout(context.Background(), auth.Identity{INumber: 1, SessionID: "jti-1", ExpiresAt: exp}))
	require.NoError(t, svc.Logout(context.Background(), auth.Identity{}))
	revoker.AssertNumberOfCalls(t, "Revoke", 1)
}
