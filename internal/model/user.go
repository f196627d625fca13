package model

// User represents an application user record as stored in the `users`
// table.  The I-Number is the institution-issued nine digit id and acts as
// the primary key.
//
// Fields:
//  INumber      – nine digit primary key.
//  FirstName    – given name.
//  LastName     – family name.
//  Email        – lower-cased unique email address.
//  PasswordHash – bcrypt hash of the password.
//  Permission   – permission level (0 Admin .. 5 User).
type User struct {
	INumber      int64      // users.i_number
	FirstName    string     // users.fname
	LastName     string     // users.lname
	Email        string     // users.email
	PasswordHash string     // users.password
	Permission   Permission // users.permission_id
}

// DisplayName joins first and last name the way pages greet the user.
func (u User) DisplayName() string {
	return u.FirstName + " " + u.LastName
}
