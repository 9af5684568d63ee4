package user

import (
	"testing"

	"github.com/go-playground/validator/v10"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/trezcool/edumaster/core"
)

func newValidator(t *testing.T) *validator.Validate {
	t.Helper()
	validate, translator := core.NewValidator()
	InitValidators(validate, translator)
	return validate
}

func TestNewStudent_Validate_passwordPolicy(t *testing.T) {
	validate := newValidator(t)

	newStudent := func(pwd string) NewStudent {
		return NewStudent{
			FullName:        "Jane Student",
			Email:           "Jane@Test.cd ",
			PhoneNumber:     "+243 810 000 001",
			Password:        pwd,
			PasswordConfirm: pwd,
			ClassLevel:      "Grade 1 Secondary",
		}
	}

	tests := []struct {
		name    string
		pwd     string
		wantTag string
	}{
		{name: "valid", pwd: "Tr1cky#Lemur"},
		{name: "too short", pwd: "Ab1#", wantTag: pwdMinLenTag},
		{name: "whitespace", pwd: "Tr1cky #Lemur", wantTag: pwdNoSpaceTag},
		{name: "all numeric", pwd: "1234567890", wantTag: pwdNotAllNumTag},
		{name: "no special", pwd: "Tr1ckyLemur", wantTag: pwdComplexityTag},
		{name: "no upper", pwd: "tr1cky#lemur", wantTag: pwdComplexityTag},
		{name: "similar to name", pwd: "Jane$tudent1", wantTag: pwdAttrSimTag},
		{name: "common", pwd: "P@ssw0rd", wantTag: pwdNoCommonTag},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			ns := newStudent(tt.pwd)
			err := ns.Validate(validate)
			if tt.wantTag == "" {
				require.NoError(t, err)
				assert.Equal(t, "jane@test.cd", ns.Email)
				return
			}

			require.Error(t, err)
			vErrs, ok := err.(validator.ValidationErrors)
			require.True(t, ok, "want validator.ValidationErrors, got %T", err)
			require.Len(t, vErrs, 1)
			assert.Equal(t, "password", vErrs[0].Field())
			assert.Equal(t, tt.wantTag, vErrs[0].Tag())
		})
	}
}

func TestNewAdmin_Validate(t *testing.T) {
	validate := newValidator(t)

	na := NewAdmin{
		FullName:        "Admin",
		Email:           "not-an-email",
		PhoneNumber:     "abc",
		Password:        "Tr1cky#Lemur",
		PasswordConfirm: "Tr1cky#Lemu",
	}
	err := na.Validate(validate)
	require.Error(t, err)

	var fields []string
	for _, fe := range err.(validator.ValidationErrors) {
		fields = append(fields, fe.Field())
	}
	assert.ElementsMatch(t, []string{"email", "phoneNumber", "cpassword"}, fields)
}

func TestCredentials_Validate(t *testing.T) {
	validate := newValidator(t)

	c := Credentials{Email: " USER@test.cd", Password: "x"}
	require.NoError(t, c.Validate(validate))
	assert.Equal(t, "user@test.cd", c.Email)

	c = Credentials{Email: "user@test.cd"}
	assert.Error(t, c.Validate(validate))
}

func TestRoles(t *testing.T) {
	assert.True(t, IsKnownRole(RoleSuperAdmin))
	assert.False(t, IsKnownRole("parent"))
	assert.Greater(t, RolePriority(RoleSuperAdmin), RolePriority(RoleAdmin))
	assert.Greater(t, RolePriority(RoleAdmin), RolePriority(RoleStudent))
	assert.True(t, Profile{Role: RoleSuperAdmin}.IsAdmin())
	assert.False(t, Profile{Role: RoleStudent}.IsAdmin())
}
