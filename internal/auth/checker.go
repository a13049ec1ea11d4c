package auth

import "errors"

// AdminChecker decides whether a user is allowed to act on moderation prompts.
type AdminChecker struct {
	adminID int64
}

// NewAdminChecker creates a checker for the given administrator user ID.
func NewAdminChecker(adminID int64) (*AdminChecker, error) {
	if adminID == 0 {
		return nil, errors.New("admin ID is not configured")
	}
	return &AdminChecker{adminID: adminID}, nil
}

// IsAdmin reports whether userID is the configured administrator.
func (c *AdminChecker) IsAdmin(userID int64) bool {
	return userID == c.adminID
}
