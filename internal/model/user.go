package model

// User is the account record returned by the backend.
type User struct {
	ID          int64  `json:"userId,omitempty"`
	Name        string `json:"name"`
	Email       string `json:"email"`
	PhoneNumber string `json:"phoneNumber,omitempty"`
	Role        string `json:"role"`
}

// Roles.
const (
	RoleAdmin   = "ADMIN"
	RoleManager = "MANAGER"
)

// ValidRole reports whether role is one the backend issues.
func ValidRole(role string) bool {
	return role == RoleAdmin || role == RoleManager
}

// RoleName returns a display name for a role.
func RoleName(role string) string {
	switch role {
	case RoleAdmin:
		return "Administrator"
	case RoleManager:
		return "Manager"
	case "":
		return "Unknown"
	default:
		return role
	}
}
