package echoapi_test

import (
	"encoding/json"
	"net/http"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/trezcool/edumaster/core/auth"
	"github.com/trezcool/edumaster/core/user"
	"github.com/trezcool/edumaster/tests"
)

func Test_userApi_signup(t *testing.T) {
	api := testutil.StartDevAPI(t)
	testutil.CreateUser(t, api.DB, "Taken", "taken@test.cd", user.RoleStudent)

	body := func(name, email, pwd, cpwd string) []byte {
		return marshallObj(t, user.NewStudent{
			FullName:        name,
			Email:           email,
			PhoneNumber:     "+243 990 000 111",
			Password:        pwd,
			PasswordConfirm: cpwd,
			ClassLevel:      "3",
		})
	}
	validationErr := func(field, msg string) []byte {
		return marshallObj(t, httpErr{Message: "validation failed", Errors: map[string]string{field: msg}})
	}

	tests := []httpTest{
		{
			name: "empty body", method: http.MethodPost, path: "/auth/signup", body: []byte(`{}`),
			wantCode: http.StatusBadRequest,
		},
		{
			name: "passwords mismatch", method: http.MethodPost, path: "/auth/signup",
			body:     body("Jane Doe", "jane@test.cd", testutil.DefaultPassword, "nope"),
			wantCode: http.StatusBadRequest, wantData: validationErr("cpassword", "cpassword does not match"),
		},
		{
			name: "weak password", method: http.MethodPost, path: "/auth/signup",
			body:     body("Jane Doe", "jane@test.cd", "password", "password"),
			wantCode: http.StatusBadRequest,
			wantData: validationErr("password", "password must contain at least 1 uppercase character, 1 lowercase character, 1 digit and 1 special character"),
		},
		{
			name: "email taken", method: http.MethodPost, path: "/auth/signup",
			body:     body("Jane Doe", "TAKEN@test.cd", testutil.DefaultPassword, testutil.DefaultPassword),
			wantCode: http.StatusBadRequest, wantData: validationErr("email", "email already registered"),
		},
	}
	runHTTPTests(t, api.App, tests)

	t.Run("success", func(t *testing.T) {
		req, rec := newAuthRequest(
			http.MethodPost, "/auth/signup", "",
			body(" Jane Doe ", "Jane@Test.cd", testutil.DefaultPassword, testutil.DefaultPassword),
		)
		api.App.ServeHTTP(rec, req)
		require.Equal(t, http.StatusCreated, rec.Code, rec.Body.String())

		var resp struct {
			Data user.Profile `json:"data"`
		}
		require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &resp))
		assert.NotEmpty(t, resp.Data.ID)
		assert.Equal(t, "Jane Doe", resp.Data.FullName)
		assert.Equal(t, "jane@test.cd", resp.Data.Email)
		assert.Equal(t, "Grade 3 Secondary", resp.Data.ClassLevel)
		assert.Equal(t, user.RoleStudent, resp.Data.Role)

		stored, err := api.DB.UserByEmail("jane@test.cd")
		require.NoError(t, err)
		assert.NoError(t, stored.CheckPassword(testutil.DefaultPassword))
	})
}

func Test_userApi_login(t *testing.T) {
	api := testutil.StartDevAPI(t)
	usr := testutil.CreateUser(t, api.DB, "Jane Doe", "jane@test.cd", user.RoleStudent)

	body := func(email, pwd string) []byte {
		return marshallObj(t, user.Credentials{Email: email, Password: pwd})
	}
	errLogin := marshallObj(t, httpErr{Message: "invalid email or password"})

	tests := []httpTest{
		{
			name: "unknown email", method: http.MethodPost, path: "/auth/login", body: body("who@test.cd", testutil.DefaultPassword),
			wantCode: http.StatusBadRequest, wantData: errLogin,
		},
		{
			name: "wrong password", method: http.MethodPost, path: "/auth/login", body: body("jane@test.cd", "nope"),
			wantCode: http.StatusBadRequest, wantData: errLogin,
		},
		{
			name: "invalid email", method: http.MethodPost, path: "/auth/login", body: body("jane", "nope"),
			wantCode: http.StatusBadRequest,
			wantData: marshallObj(t, httpErr{Message: "validation failed", Errors: map[string]string{"email": "email must be a valid email address"}}),
		},
	}
	runHTTPTests(t, api.App, tests)

	t.Run("success", func(t *testing.T) {
		req, rec := newAuthRequest(http.MethodPost, "/auth/login", "", body(" JANE@test.cd", testutil.DefaultPassword))
		api.App.ServeHTTP(rec, req)
		require.Equal(t, http.StatusOK, rec.Code, rec.Body.String())

		var resp struct {
			Token string `json:"token"`
		}
		require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &resp))

		claims, err := auth.DecodeToken(resp.Token)
		require.NoError(t, err)
		assert.Equal(t, usr.ID, claims.UserID)
		assert.Equal(t, usr.Email, claims.Email)
		assert.Empty(t, claims.Role)
	})
}

func Test_userApi_profile(t *testing.T) {
	api := testutil.StartDevAPI(t)
	usr := testutil.CreateUser(t, api.DB, "Jane Doe", "jane@test.cd", user.RoleStudent)
	testutil.CreateUser(t, api.DB, "John Doe", "john@test.cd", user.RoleStudent)
	token := api.Token(t, usr)

	updated := usr.Profile
	updated.FullName = "Jane D."
	updated.ClassLevel = "Grade 2 Secondary"

	tests := []httpTest{
		{name: "Auth required", path: "/user/profile", wantCode: http.StatusUnauthorized, wantData: marshallObj(t, errMissingToken)},
		{
			name: "Invalid token", path: "/user/profile", token: "not.a.token",
			wantCode: http.StatusUnauthorized, wantData: marshallObj(t, errInvalidToken),
		},
		{
			name: "Get profile", path: "/user/profile", token: token,
			wantCode: http.StatusOK, wantData: marshallObj(t, dataResp{Data: usr.Profile}),
		},
		{
			name: "Email taken", method: http.MethodPut, path: "/user/profile", token: token,
			body:     marshallObj(t, user.UpdateProfile{Email: "john@test.cd"}),
			wantCode: http.StatusBadRequest,
			wantData: marshallObj(t, httpErr{Message: "validation failed", Errors: map[string]string{"email": "email already registered"}}),
		},
		{
			name: "Update profile", method: http.MethodPut, path: "/user/profile", token: token,
			body:     marshallObj(t, user.UpdateProfile{FullName: "Jane D.", ClassLevel: "2"}),
			wantCode: http.StatusOK, wantData: marshallObj(t, dataResp{Message: "profile updated", Data: updated}),
		},
		{name: "Stats auth required", path: "/user/stats", wantCode: http.StatusUnauthorized, wantData: marshallObj(t, errMissingToken)},
		{
			name: "Get stats", path: "/user/stats", token: token,
			wantCode: http.StatusOK, wantData: marshallObj(t, dataResp{Data: user.Stats{}}),
		},
	}
	runHTTPTests(t, api.App, tests)
}

func Test_userApi_admin(t *testing.T) {
	api := testutil.StartDevAPI(t)
	superAdmin := api.SuperAdmin(t)
	admin := testutil.CreateUser(t, api.DB, "Ada Admin", "ada@test.cd", user.RoleAdmin)
	student := testutil.CreateUser(t, api.DB, "Jane Doe", "jane@test.cd", user.RoleStudent)

	newAdmin := marshallObj(t, user.NewAdmin{
		FullName:        "Bob Admin",
		Email:           "bob@test.cd",
		PhoneNumber:     "+243 990 000 222",
		Password:        testutil.DefaultPassword,
		PasswordConfirm: testutil.DefaultPassword,
	})

	tests := []httpTest{
		{
			name: "all-user: student forbidden", path: "/admin/all-user", token: api.Token(t, student),
			wantCode: http.StatusForbidden, wantData: marshallObj(t, errForbidden),
		},
		{
			name: "all-user: admin", path: "/admin/all-user", token: api.Token(t, admin),
			wantCode: http.StatusOK, wantData: marshallObj(t, dataResp{Data: []user.Profile{superAdmin.Profile, admin.Profile, student.Profile}}),
		},
		{
			name: "all-admin: admin forbidden", path: "/admin/all-admin", token: api.Token(t, admin),
			wantCode: http.StatusForbidden, wantData: marshallObj(t, errForbidden),
		},
		{
			name: "all-admin: super-admin", path: "/admin/all-admin", token: api.Token(t, superAdmin),
			wantCode: http.StatusOK, wantData: marshallObj(t, dataResp{Data: []user.Profile{superAdmin.Profile, admin.Profile}}),
		},
		{
			name: "create-admin: admin forbidden", method: http.MethodPost, path: "/admin/create-admin", body: newAdmin,
			token: api.Token(t, admin), wantCode: http.StatusForbidden, wantData: marshallObj(t, errForbidden),
		},
		{
			name: "create-admin: super-admin", method: http.MethodPost, path: "/admin/create-admin", body: newAdmin,
			token: api.Token(t, superAdmin), wantCode: http.StatusCreated,
		},
	}
	runHTTPTests(t, api.App, tests)

	created, err := api.DB.UserByEmail("bob@test.cd")
	require.NoError(t, err)
	assert.Equal(t, user.RoleAdmin, created.Role)
	assert.True(t, created.IsVerified)
}
