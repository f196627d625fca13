// Package auth issues and verifies session tokens, hashes passwords and
// holds the authorization gate that route groups run before handlers.
package auth

import (
	"time"

	"github.com/i-reserve/room-reservation/internal/model"
)

// Identity is the session information attached to a request.  The zero
// value is an anonymous visitor.
type Identity struct {
	INumber    int64
	Name       string
	Permission model.Permission
	SessionID  string    // token id, used for revocation
	ExpiresAt  time.Time // token expiry
}

// Authenticated reports whether a user id is present.
func (id Identity) Authenticated() bool { return id.INumber != 0 }
