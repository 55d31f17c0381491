package model

// DefaultRole is assigned to seeded users that do not name a role.
const DefaultRole = "owner"

// User is an operator account. Users are created only by the startup seed
// and are never updated or deleted at runtime.
type User struct {
	ID           string `db:"id"`
	Name         string `db:"name"`
	Email        string `db:"email"`
	PasswordHash string `db:"password_hash"`
	Role         string `db:"role"`
}
