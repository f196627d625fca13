package model

// Permission is the integer-coded role of a user.  Lower values carry more
// privilege; rooms name the highest value still allowed to book them.
type Permission int

const (
	PermissionAdmin     Permission = 0
	PermissionFaculty   Permission = 1
	PermissionLeader    Permission = 2
	PermissionAssistant Permission = 3
	PermissionStudent   Permission = 4
	PermissionUser      Permission = 5
)

var permissionNames = map[Permission]string{
	PermissionAdmin:     "Admin",
	PermissionFaculty:   "Faculty",
	PermissionLeader:    "Leader",
	PermissionAssistant: "Assistant",
	PermissionStudent:   "Student",
	PermissionUser:      "User",
}

// Permissions lists every level in ascending order; used to seed the
// permissions table and to render select boxes.
func Permissions() []Permission {
	return []Permission{PermissionAdmin, PermissionFaculty, PermissionLeader, PermissionAssistant, PermissionStudent, PermissionUser}
}

// Valid reports whether p is one of the seeded levels.
func (p Permission) Valid() bool {
	_, ok := permissionNames[p]
	return ok
}

// Name returns the display name of the level.
func (p Permission) Name() string {
	if n, ok := permissionNames[p]; ok {
		return n
	}
	return "Unknown"
}

// IsAdmin reports whether the level is the administrator level.
func (p Permission) IsAdmin() bool { return p == PermissionAdmin }

// CanBook reports whether a user at level p may book a room that requires
// level required.
func (p Permission) CanBook(required Permission) bool { return p <= required }
