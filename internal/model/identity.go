package model

// Identity is the authenticated caller of a request.  It is derived from
// the access token on every request and passed explicitly to services;
// nothing stores it globally.
type Identity struct {
	UserID uint64
	Role   string
}

// IsAdmin reports whether the caller holds the admin role.
func (i Identity) IsAdmin() bool { return i.Role == RoleAdmin }

// Owns reports whether the caller is the owner of a record belonging to userID.
func (i Identity) Owns(userID uint64) bool { return i.UserID != 0 && i.UserID == userID }
