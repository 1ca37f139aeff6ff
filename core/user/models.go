package user

import (
	"strings"
	"time"

	"golang.org/x/crypto/bcrypt"

	"github.com/trezcool/scola/core"
)

// Roles
const (
	RoleStudent = "student"
	RoleTeacher = "teacher"
	RoleParent  = "parent"
	RoleTutor   = "tutor"
	RoleAdmin   = "admin"
)

var (
	AllRoles = []string{RoleStudent, RoleTeacher, RoleParent, RoleTutor, RoleAdmin}
	// SelfServiceRoles may be picked on the public registration form.
	SelfServiceRoles = []string{RoleStudent, RoleTeacher, RoleParent, RoleTutor}

	Roles = []Role{
		{Name: "Student", Value: RoleStudent},
		{Name: "Teacher", Value: RoleTeacher},
		{Name: "Parent", Value: RoleParent},
		{Name: "Tutor", Value: RoleTutor},
		{Name: "Admin", Value: RoleAdmin},
	}
)

func IsValidRole(role string, among ...string) bool {
	if len(among) == 0 {
		among = AllRoles
	}
	for _, r := range among {
		if r == role {
			return true
		}
	}
	return false
}

type Role struct {
	Name  string `json:"name"`
	Value string `json:"value"`
}

type User struct {
	ID           string    `json:"id"`
	Name         string    `json:"name"`
	Email        string    `json:"email"`
	Role         string    `json:"role"`
	IsActive     bool      `json:"is_active"`
	PasswordHash []byte    `json:"-"`
	CreatedAt    time.Time `json:"created_at"` // UTC
	UpdatedAt    time.Time `json:"updated_at"` // UTC
	LastLogin    time.Time `json:"last_login"` // UTC

	// student profile
	StudentNumber string `json:"student_number,omitempty"`
	Grade         string `json:"grade,omitempty"`
	// teacher profile
	GradesTaught   []string `json:"grades_taught,omitempty"`
	SubjectsTaught []string `json:"subjects_taught,omitempty"`
	// parent profile: student user IDs
	Children []string `json:"children,omitempty"`
}

func (u *User) SetPassword(pwd string) error {
	hash, err := bcrypt.GenerateFromPassword([]byte(pwd), bcrypt.DefaultCost)
	if err != nil {
		return err
	}
	u.PasswordHash = hash
	return nil
}

func (u *User) CheckPassword(pwd string) error {
	return bcrypt.CompareHashAndPassword(u.PasswordHash, []byte(pwd))
}

func (u *User) IsAdmin() bool   { return u.Role == RoleAdmin }
func (u *User) IsTeacher() bool { return u.Role == RoleTeacher }
func (u *User) IsStudent() bool { return u.Role == RoleStudent }
func (u *User) IsParent() bool  { return u.Role == RoleParent }
func (u *User) IsTutor() bool   { return u.Role == RoleTutor }

// FirstName returns the first word of the user's name.
func (u *User) FirstName() string {
	if f := strings.Fields(u.Name); len(f) > 0 {
		return f[0]
	}
	return ""
}

func (u *User) HasChild(id string) bool {
	for _, c := range u.Children {
		if c == id {
			return true
		}
	}
	return false
}

// NewUser contains information needed to create a new User.
type NewUser struct {
	Name            string `json:"name" validate:"required"`
	Email           string `json:"email" validate:"required,email"`
	Password        string `json:"password" validate:"required"`
	PasswordConfirm string `json:"password_confirm" validate:"required,eqfield=Password"`
	Role            string `json:"role" validate:"required,role"`
	StudentNumber   string `json:"student_number"`
	Grade           string `json:"grade" validate:"omitempty,grade"`
}

func (nu *NewUser) Clean() {
	nu.Name = core.CleanString(nu.Name)
	nu.Email = core.CleanString(nu.Email, true /* lower */)
	nu.Role = core.CleanString(nu.Role, true /* lower */)
	nu.StudentNumber = core.CleanString(nu.StudentNumber)
}

// UpdateUser defines what information may be provided to modify an existing User.
// Empty or nil fields are left unchanged.
type UpdateUser struct {
	Name            string   `json:"name"`
	Email           string   `json:"email" validate:"omitempty,email"`
	IsActive        *bool    `json:"is_active"`
	Role            string   `json:"role" validate:"omitempty,role"`
	Password        string   `json:"password" validate:"omitempty"`
	PasswordConfirm string   `json:"password_confirm" validate:"required_with=Password,eqfield=Password"`
	StudentNumber   *string  `json:"student_number"`
	Grade           *string  `json:"grade" validate:"omitempty,grade"`
	GradesTaught    []string `json:"grades_taught" validate:"omitempty,dive,grade"`
	SubjectsTaught  []string `json:"subjects_taught" validate:"omitempty,dive,notblank"`
	Children        []string `json:"children"`
}

// IsAdminOnly reports whether uu touches fields only admins may change.
func (uu *UpdateUser) IsAdminOnly() bool {
	return uu.IsActive != nil || uu.Role != "" || uu.Email != "" || uu.StudentNumber != nil ||
		uu.Grade != nil || uu.Children != nil
}

func (uu *UpdateUser) Clean() {
	uu.Name = core.CleanString(uu.Name)
	uu.Email = core.CleanString(uu.Email, true /* lower */)
	uu.Role = core.CleanString(uu.Role, true /* lower */)
}

type QueryFilter struct {
	Search   string   `query:"search"`
	Roles    []string `query:"role"`
	IsActive *bool    `query:"is_active"`
	Grade    string   `query:"grade"`
}

func (qf *QueryFilter) IsEmpty() bool {
	return qf.Search == "" && qf.Roles == nil && qf.IsActive == nil && core.IsAllGrades(qf.Grade)
}

func (qf *QueryFilter) Clean() {
	qf.Search = core.CleanString(qf.Search)
}

// GetFilter selects a single User. The first non-empty field is used.
type GetFilter struct {
	ID    string
	Email string
}
