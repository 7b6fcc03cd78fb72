package user

import (
	"testing"

	"github.com/go-playground/validator/v10"
	"github.com/pkg/errors"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/QinlinChen/StuHub/core"
)

type nopLogger struct{}

func (nopLogger) Debug(string, ...interface{}) {}
func (nopLogger) Info(string, ...interface{})  {}
func (nopLogger) Warn(string, ...interface{})  {}
func (nopLogger) Error(string, ...interface{}) {}
func (nopLogger) Fatal(string, ...interface{}) {}

func TestNewUserValidation(t *testing.T) {
	validate := validator.New()
	translator := core.NewTranslator()
	core.InitValidators(validate, translator)
	InitValidators(validate, translator)
	LoadCommonPasswords(nopLogger{})

	fieldErrs := func(err error) map[string]string {
		var vErrs validator.ValidationErrors
		if !errors.As(err, &vErrs) {
			return nil
		}
		return core.TranslateValidationErrors(vErrs, translator)
	}
	valid := func() NewUser {
		return NewUser{Username: "qinlin", Email: "qinlin@test.cn", Password: "S3cure*Pwd", PasswordConfirm: "S3cure*Pwd"}
	}

	require.NoError(t, validate.Struct(valid()))

	tests := []struct {
		name      string
		edit      func(nu *NewUser)
		wantField string
		wantMsg   string
	}{
		{name: "username required", edit: func(nu *NewUser) { nu.Username = "" }, wantField: "username", wantMsg: "this field is required"},
		{name: "username starts with digit", edit: func(nu *NewUser) { nu.Username = "1abc" }, wantField: "username", wantMsg: usernameText},
		{name: "username with dash", edit: func(nu *NewUser) { nu.Username = "ab-c" }, wantField: "username", wantMsg: usernameText},
		{name: "invalid email", edit: func(nu *NewUser) { nu.Email = "lol" }, wantField: "email"},
		{name: "unknown role", edit: func(nu *NewUser) { nu.Role = "god" }, wantField: "role", wantMsg: roleText},
		{
			name: "passwords mismatch", edit: func(nu *NewUser) { nu.PasswordConfirm = "S3cure*Pwd!" },
			wantField: "password_confirm",
		},
		{
			name: "password too short", edit: func(nu *NewUser) { nu.Password, nu.PasswordConfirm = "S3*p", "S3*p" },
			wantField: "password", wantMsg: pwdMinLenText,
		},
		{
			name: "password with space", edit: func(nu *NewUser) { nu.Password, nu.PasswordConfirm = "S3cure *Pwd", "S3cure *Pwd" },
			wantField: "password", wantMsg: pwdNoSpaceText,
		},
		{
			name: "password all numeric", edit: func(nu *NewUser) { nu.Password, nu.PasswordConfirm = "1234567890", "1234567890" },
			wantField: "password", wantMsg: pwdNotAllNumText,
		},
		{
			name: "password too simple", edit: func(nu *NewUser) { nu.Password, nu.PasswordConfirm = "securepwd1", "securepwd1" },
			wantField: "password", wantMsg: pwdComplexityText,
		},
		{
			name: "password similar to username", edit: func(nu *NewUser) { nu.Password, nu.PasswordConfirm = "Qinlin*1", "Qinlin*1" },
			wantField: "password", wantMsg: pwdAttrSimText,
		},
		{
			name: "common password", edit: func(nu *NewUser) { nu.Password, nu.PasswordConfirm = "P@ssw0rd1", "P@ssw0rd1" },
			wantField: "password", wantMsg: pwdNoCommonText,
		},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			nu := valid()
			tt.edit(&nu)
			errs := fieldErrs(validate.Struct(nu))
			require.Contains(t, errs, tt.wantField)
			if tt.wantMsg != "" {
				assert.Equal(t, tt.wantMsg, errs[tt.wantField])
			}
		})
	}
}

func TestPermissions(t *testing.T) {
	usr := User{Role: RoleUser, IsActive: true}
	assert.True(t, usr.Can(PermFollow|PermComment|PermWrite))
	assert.False(t, usr.Can(PermModerate))
	assert.False(t, usr.IsAdministrator())

	mod := User{Role: RoleModerator, IsActive: true}
	assert.True(t, mod.Can(PermModerate))
	assert.False(t, mod.Can(PermAdmin))

	admin := User{Role: RoleAdministrator, IsActive: true}
	assert.True(t, admin.IsAdministrator())
	assert.Equal(t, Permission(31), admin.Permissions())

	admin.IsActive = false
	assert.False(t, admin.IsAdministrator())

	assert.Greater(t, RolePriority(RoleAdministrator), RolePriority(RoleModerator))
	assert.Greater(t, RolePriority(RoleModerator), RolePriority(RoleUser))
	assert.Zero(t, RolePriority("god"))
}
