package entity

// User is an account record. PasswordHash is write-only: it is never
// serialised and never selected on read paths.
type User struct {
	ID           int    `json:"id"`
	FirstName    string `json:"first_name"`
	LastName     string `json:"last_name"`
	PasswordHash string `json:"-"`
}
