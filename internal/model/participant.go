package model

// Role mirrors the roles assigned by the upstream auth service. The board
// service never authenticates; it trusts the identity handed to it.
type Role string

const (
	RoleAdmin       Role = "admin"
	RoleCoordinator Role = "coordinator"
	RoleProfessor   Role = "professor"
	RoleModerator   Role = "moderator"
	RoleStudent     Role = "student"
)

// Valid reports whether the role is one the upstream service issues.
func (r Role) Valid() bool {
	switch r {
	case RoleAdmin, RoleCoordinator, RoleProfessor, RoleModerator, RoleStudent:
		return true
	}
	return false
}

type Participant struct {
	ID   string `json:"id"`
	Name string `json:"name"`
	Role Role   `json:"role"`
}
