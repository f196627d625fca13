package auth

// Notices shown when the gate turns a request away.
const (
	NoticeLoginRequired = "You must be logged in to access this page."
	NoticeAdminOnly     = "Only administrators may view this page."
)

// Decision is the outcome of a gate check.  A denied request is never an
// error: it is sent to Redirect with Notice flashed.
type Decision struct {
	Admit    bool
	Redirect string
	Notice   string
}

var admit = Decision{Admit: true}

// Check is a gate predicate over a session identity.
type Check func(Identity) Decision

// RequireAuthentication admits any logged-in user.
func RequireAuthentication(id Identity) Decision {
	if id.Authenticated() {
		return admit
	}
	return Decision{Redirect: "/login", Notice: NoticeLoginRequired}
}

// RequireAdministrator admits only the administrator level.  It does not
// check authentication; routes chain it after RequireAuthentication.
func RequireAdministrator(id Identity) Decision {
	if id.Permission.IsAdmin() && id.Authenticated() {
		return admit
	}
	return Decision{Redirect: "/profile", Notice: NoticeAdminOnly}
}

// Chain evaluates checks in order and returns the first denial.
func Chain(checks ...Check) Check {
	return func(id Identity) Decision {
		for _, c := range checks {
			if d := c(id); !d.Admit {
				return d
			}
		}
		return admit
	}
}
