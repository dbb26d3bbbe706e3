package types

type User struct {
	ID    string `json:"id"`
	Name  string `json:"name"`
	Email string `json:"email"`
	Role  string `json:"role,omitempty"`
}

// AuthSession is what the commerce backend returns on login or signup.
type AuthSession struct {
	Token string `json:"token"`
	User  User   `json:"user"`
}
