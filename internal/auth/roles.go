package auth

import "strings"

// FrontendRoleAdmin is the display role that routes a login to the admin console.
const FrontendRoleAdmin = "admin"

// RoleNormalizer maps stored roles to the value the login frontends switch on.
// Admin-type roles become "admin"; everything else becomes the user dashboard URL.
type RoleNormalizer struct {
	userDashboardURL string
}

// NewRoleNormalizer builds a normalizer for the given user dashboard URL.
func NewRoleNormalizer(userDashboardURL string) RoleNormalizer {
	return RoleNormalizer{userDashboardURL: userDashboardURL}
}

// GetFrontendRole normalizes role.
func (n RoleNormalizer) GetFrontendRole(role string) string {
	switch strings.ToLower(strings.TrimSpace(role)) {
	case "admin", "administrator", "superadmin":
		return FrontendRoleAdmin
	default:
		return n.userDashboardURL
	}
}
