package domain

import "time"

// UserRole distinguishes students from teachers.
type UserRole string

const (
	RoleStudent UserRole = "student"
	RoleTeacher UserRole = "teacher"
)

// IsValid reports whether the role is one of the known roles.
func (r UserRole) IsValid() bool {
	return r == RoleStudent || r == RoleTeacher
}

// User represents an account in the system. Usernames are unique
// case-insensitively.
type User struct {
	ID        string    `json:"id"`
	Username  string    `json:"username"`
	Password  string    `json:"-"`
	Role      UserRole  `json:"role"`
	Avatar    string    `json:"avatar"`
	School    string    `json:"school,omitempty"`
	Class     string    `json:"class,omitempty"`
	CreatedAt time.Time `json:"created_at"`
	UpdatedAt time.Time `json:"updated_at"`
}

// IsTeacher reports whether the user may read the escalation feed.
func (u *User) IsTeacher() bool {
	return u.Role == RoleTeacher
}
