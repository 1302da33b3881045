package models

// Role names stored on a user record. Every account gets RoleUser at
// creation; the role set is never empty.
const (
	RoleUser      = "USER"
	RoleModerator = "MODERATOR"
	RoleAdmin     = "ADMIN"
)

// DefaultRoles returns the role set assigned to freshly registered accounts.
func DefaultRoles() []string {
	return []string{RoleUser}
}
