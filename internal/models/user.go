package models

// UserRole represents the available roles for the RBAC system.
type UserRole string

const (
	RoleStudent UserRole = "student"
	RoleTeacher UserRole = "teacher"
	RoleAdmin   UserRole = "admin"
)

// Valid reports whether r is a known role.
func (r UserRole) Valid() bool {
	switch r {
	case RoleStudent, RoleTeacher, RoleAdmin:
		return true
	}
	return false
}

// User is an entry of the account directory. Faculty and Group are only set for students.
type User struct {
	ID           string   `json:"id"`
	Name         string   `json:"name"`
	Surname      string   `json:"surname"`
	Email        string   `json:"email"`
	PasswordHash string   `json:"password_hash"`
	Role         UserRole `json:"role"`
	Faculty      string   `json:"faculty,omitempty"`
	Group        string   `json:"group,omitempty"`
	Active       bool     `json:"active"`
}

// Info strips credentials for responses.
func (u *User) Info() UserInfo {
	return UserInfo{
		ID:      u.ID,
		Name:    u.Name,
		Surname: u.Surname,
		Email:   u.Email,
		Role:    u.Role,
		Faculty: u.Faculty,
		Group:   u.Group,
	}
}

// Audience returns the targeting triple of the user.
func (u *User) Audience() Audience {
	return Audience{Role: u.Role, Faculty: u.Faculty, Group: u.Group}
}

// Pagination contains pagination metadata returned in list responses.
type Pagination struct {
	Page       int `json:"page"`
	PageSize   int `json:"page_size"`
	TotalCount int `json:"total_count"`
}
