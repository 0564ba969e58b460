package domain

import "time"

const (
	RoleUser      = "user"
	RoleModerator = "moderator"
	RoleAdmin     = "admin"
)

// ValidRole reports whether role is one of the known roles.
func ValidRole(role string) bool {
	switch role {
	case RoleUser, RoleModerator, RoleAdmin:
		return true
	}
	return false
}

// User models an identity record held by the Directory.
type User struct {
	ID          int64      `json:"-"`
	Username    string     `json:"username"`
	Email       string     `json:"email"`
	FirstName   string     `json:"first_name"`
	LastName    string     `json:"last_name"`
	Bio         string     `json:"bio"`
	Role        string     `json:"role"`
	IsSuperuser bool       `json:"-"`
	IsStaff     bool       `json:"-"`
	LastLogin   *time.Time `json:"-"`
	DateJoined  time.Time  `json:"-"`
}

// IsAdmin reports whether the user may administer the platform.
func (u *User) IsAdmin() bool {
	if u == nil {
		return false
	}
	return u.Role == RoleAdmin || u.IsSuperuser || u.IsStaff
}

// IsModerator reports whether the user moderates reviews and comments.
func (u *User) IsModerator() bool {
	if u == nil {
		return false
	}
	return u.Role == RoleModerator
}

// LoginMarker returns the last login as unix milliseconds, or 0 when the
// user has never exchanged a confirmation code.
func (u *User) LoginMarker() int64 {
	if u == nil || u.LastLogin == nil {
		return 0
	}
	return u.LastLogin.UnixMilli()
}

// UserUpdate carries a partial update. Nil fields are left untouched.
type UserUpdate struct {
	Username  *string
	Email     *string
	FirstName *string
	LastName  *string
	Bio       *string
	Role      *string
}

// Empty reports whether the update changes nothing.
func (u UserUpdate) Empty() bool {
	return u.Username == nil && u.Email == nil && u.FirstName == nil &&
		u.LastName == nil && u.Bio == nil && u.Role == nil
}
