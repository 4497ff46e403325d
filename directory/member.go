package directory

import (
	"time"

	"github.com/google/uuid"
)

// Role distinguishes librarians from regular members.
type Role string

const (
	RoleAdmin Role = "Admin"
	RoleUser  Role = "User"
)

// Member is a library member as known to the member directory.
// The loan ledger reads members, it never writes them.
type Member struct {
	ID        uuid.UUID
	Name      string
	Email     string
	Role      Role
	Phone     string
	Address   string
	CreatedAt time.Time
}

// BuildMember creates a Member with the given identity and contact data.
func BuildMember(id uuid.UUID, name string, email string, role Role, createdAt time.Time) Member {
	return Member{
		ID:        id,
		Name:      name,
		Email:     email,
		Role:      role,
		CreatedAt: createdAt,
	}
}
