package user

import (
	"context"
	"time"

	"github.com/go-playground/validator/v10"
	"golang.org/x/crypto/bcrypt"

	"github.com/QinlinChen/StuHub/core"
)

// Permission is a bit in a role's permission mask.
type Permission int

const (
	PermFollow Permission = 1 << iota
	PermComment
	PermWrite
	PermModerate
	PermAdmin
)

// Roles
const (
	RoleUser          = "user"
	RoleModerator     = "moderator"
	RoleAdministrator = "administrator"

	DefaultRole = RoleUser
)

var (
	AllRoles = []string{RoleUser, RoleModerator, RoleAdministrator}

	rolePermissions = map[string]Permission{
		RoleUser:          PermFollow | PermComment | PermWrite,
		RoleModerator:     PermFollow | PermComment | PermWrite | PermModerate,
		RoleAdministrator: PermFollow | PermComment | PermWrite | PermModerate | PermAdmin,
	}

	rolePriorities = map[string]int{
		RoleAdministrator: 30,
		RoleModerator:     20,
		RoleUser:          10,
	}

	Roles = []Role{
		{Name: "User", Value: RoleUser, Permissions: rolePermissions[RoleUser]},
		{Name: "Moderator", Value: RoleModerator, Permissions: rolePermissions[RoleModerator]},
		{Name: "Administrator", Value: RoleAdministrator, Permissions: rolePermissions[RoleAdministrator]},
	}
)

func RolePriority(role string) int {
	return rolePriorities[role]
}

func RolePermissions(role string) Permission {
	return rolePermissions[role]
}

type Role struct {
	Name        string     `json:"name"`
	Value       string     `json:"value"`
	Permissions Permission `json:"permissions"`
}

type User struct {
	ID           string    `json:"id"`
	Username     string    `json:"username"`
	Email        string    `json:"email"`
	Role         string    `json:"role"`
	IsActive     bool      `json:"is_active"`
	PasswordHash []byte    `json:"-"`
	CreatedAt    time.Time `json:"created_at"` // UTC
	UpdatedAt    time.Time `json:"updated_at"` // UTC
	LastLogin    time.Time `json:"last_login"` // UTC
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

func (u User) Permissions() Permission {
	return rolePermissions[u.Role]
}

// Can reports whether the user's role grants all of perms.
func (u User) Can(perms Permission) bool {
	return u.IsActive && u.Permissions()&perms == perms
}

func (u User) IsAdministrator() bool {
	return u.Can(PermAdmin)
}

// NewUser contains information needed to register a new User.
type NewUser struct {
	Username        string `json:"username" validate:"required,min=1,max=64,username"`
	Email           string `json:"email" validate:"required,max=64,email"`
	Password        string `json:"password" validate:"required"`
	PasswordConfirm string `json:"password_confirm" validate:"required,eqfield=Password"`
	Role            string `json:"role" validate:"omitempty,role"`
}

func (nu *NewUser) Validate(ctx context.Context, validate *validator.Validate, svc Service) error {
	nu.Username = core.CleanString(nu.Username, true /* lower */)
	nu.Email = core.CleanString(nu.Email, true /* lower */)

	if err := validate.Struct(nu); err != nil {
		return err
	}
	return svc.CheckUniqueness(ctx, nu.Username, nu.Email)
}

// UpdateUser defines what information may be provided to modify an existing User.
type UpdateUser struct {
	Username        string `json:"username" validate:"omitempty,max=64,username"`
	Email           string `json:"email" validate:"omitempty,max=64,email"`
	IsActive        *bool  `json:"is_active"`
	Role            string `json:"role" validate:"omitempty,role"`
	Password        string `json:"password" validate:"omitempty"`
	PasswordConfirm string `json:"password_confirm" validate:"required_with=Password,eqfield=Password"`
}

func (uu *UpdateUser) Validate(ctx context.Context, origUsr User, validate *validator.Validate, svc Service) error {
	if uname := core.CleanString(uu.Username, true /* lower */); uname != "" {
		uu.Username = uname
	} else {
		uu.Username = origUsr.Username
	}
	if email := core.CleanString(uu.Email, true /* lower */); email != "" {
		uu.Email = email
	} else {
		uu.Email = origUsr.Email
	}
	if uu.Role == "" {
		uu.Role = origUsr.Role
	}

	if err := validate.Struct(uu); err != nil {
		return err
	}
	return svc.CheckUniqueness(ctx, uu.Username, uu.Email, origUsr)
}

type ResetUserPassword struct {
	Token           string `json:"token,omitempty" validate:"required"`
	UID             string `json:"uid,omitempty" validate:"required"`
	Password        string `json:"password,omitempty" validate:"required"`
	PasswordConfirm string `json:"password_confirm,omitempty" validate:"required,eqfield=Password"`
}

func (rp *ResetUserPassword) Validate(validate *validator.Validate) error { return validate.Struct(rp) }

type QueryFilter struct {
	Search      string    `query:"search"`
	Roles       []string  `query:"role"`
	IsActive    *bool     `query:"is_active"`
	CreatedFrom time.Time `query:"created_from"`
	CreatedTo   time.Time `query:"created_to"`
}

func (qf *QueryFilter) IsEmpty() bool {
	return qf.Search == "" && qf.Roles == nil && qf.IsActive == nil && qf.CreatedFrom.IsZero() && qf.CreatedTo.IsZero()
}

func (qf *QueryFilter) Clean() {
	qf.Search = core.CleanString(qf.Search)
}

// GetFilter selects a single user by ID, Username, Email or UsernameOrEmail (first non-empty wins).
type GetFilter struct {
	ID              string
	Username        string
	Email           string
	UsernameOrEmail string
}
