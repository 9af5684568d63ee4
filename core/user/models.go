package user

import (
	"time"

	"github.com/go-playground/validator/v10"

	"github.com/trezcool/edumaster/core"
)

// Roles
const (
	RoleStudent    = "student"
	RoleAdmin      = "admin"
	RoleSuperAdmin = "super-admin"
)

var (
	AllRoles = []string{RoleStudent, RoleAdmin, RoleSuperAdmin}

	rolePriorities = map[string]int{
		RoleSuperAdmin: 30,
		RoleAdmin:      20,
		RoleStudent:    10,
	}
)

// IsKnownRole reports whether role is one of AllRoles.
func IsKnownRole(role string) bool {
	_, ok := rolePriorities[role]
	return ok
}

func RolePriority(role string) int {
	return rolePriorities[role]
}

// Profile is a platform user as returned by the profile and admin endpoints.
type Profile struct {
	ID          string    `json:"_id"`
	FullName    string    `json:"fullName"`
	Email       string    `json:"email"`
	PhoneNumber string    `json:"phoneNumber,omitempty"`
	ClassLevel  string    `json:"classLevel,omitempty"`
	Role        string    `json:"role"`
	IsVerified  bool      `json:"isVerified"`
	CreatedAt   time.Time `json:"createdAt,omitempty"`
}

func (p Profile) IsAdmin() bool {
	return RolePriority(p.Role) >= RolePriority(RoleAdmin)
}

type Credentials struct {
	Email    string `json:"email" validate:"required,email"`
	Password string `json:"password" validate:"required"`
}

func (c *Credentials) Validate(validate *validator.Validate) error {
	c.Email = core.CleanString(c.Email, true /* lower */)
	return validate.Struct(c)
}

// NewStudent contains the information needed to sign up as a student.
type NewStudent struct {
	FullName        string `json:"fullName" validate:"required,notblank_"`
	Email           string `json:"email" validate:"required,email"`
	PhoneNumber     string `json:"phoneNumber" validate:"required,phone"`
	Password        string `json:"password" validate:"required"`
	PasswordConfirm string `json:"cpassword" validate:"required,eqfield=Password"`
	ClassLevel      string `json:"classLevel" validate:"required"`
}

func (ns *NewStudent) Validate(validate *validator.Validate) error {
	ns.FullName = core.CleanString(ns.FullName)
	ns.Email = core.CleanString(ns.Email, true /* lower */)
	ns.PhoneNumber = core.CleanString(ns.PhoneNumber)
	ns.ClassLevel = core.CleanString(ns.ClassLevel)
	return validate.Struct(ns)
}

// NewAdmin contains the information a super-admin provides to create an admin.
type NewAdmin struct {
	FullName        string `json:"fullName" validate:"required,notblank_"`
	Email           string `json:"email" validate:"required,email"`
	PhoneNumber     string `json:"phoneNumber" validate:"required,phone"`
	Password        string `json:"password" validate:"required"`
	PasswordConfirm string `json:"cpassword" validate:"required,eqfield=Password"`
}

func (na *NewAdmin) Validate(validate *validator.Validate) error {
	na.FullName = core.CleanString(na.FullName)
	na.Email = core.CleanString(na.Email, true /* lower */)
	na.PhoneNumber = core.CleanString(na.PhoneNumber)
	return validate.Struct(na)
}

// UpdateProfile defines what a user may change on their own profile.
// Empty fields keep their current value.
type UpdateProfile struct {
	FullName    string `json:"fullName,omitempty"`
	Email       string `json:"email,omitempty" validate:"omitempty,email"`
	PhoneNumber string `json:"phoneNumber,omitempty" validate:"omitempty,phone"`
	ClassLevel  string `json:"classLevel,omitempty"`
}

func (up *UpdateProfile) Validate(validate *validator.Validate) error {
	up.FullName = core.CleanString(up.FullName)
	up.Email = core.CleanString(up.Email, true /* lower */)
	up.PhoneNumber = core.CleanString(up.PhoneNumber)
	up.ClassLevel = core.CleanString(up.ClassLevel)
	return validate.Struct(up)
}

// Apply copies the non empty fields onto p.
func (up UpdateProfile) Apply(p *Profile) {
	if up.FullName != "" {
		p.FullName = up.FullName
	}
	if up.Email != "" {
		p.Email = up.Email
	}
	if up.PhoneNumber != "" {
		p.PhoneNumber = up.PhoneNumber
	}
	if up.ClassLevel != "" {
		p.ClassLevel = up.ClassLevel
	}
}

// Stats summarizes a user's progress on the platform.
type Stats struct {
	CompletedExams int     `json:"completedExams"`
	StudyHours     float64 `json:"studyHours"`
}
