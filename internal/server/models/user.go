package models

// User is an operator account. Passwords are stored as bcrypt hashes.
type User struct {
	ID           string
	Username     string
	PasswordHash string
}
