package tests

import (
	"context"
	"net/http"
	"net/url"
	"testing"
	"time"

	"github.com/dgrijalva/jwt-go"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	. "github.com/trezcool/scola/apps/api/echo"
	"github.com/trezcool/scola/core"
	"github.com/trezcool/scola/core/user"
	"github.com/trezcool/scola/tests"
)

func Test_home(t *testing.T) {
	app := setup(t)
	rec := app.do(http.MethodGet, "/", "")
	assert.Equal(t, http.StatusOK, rec.Code)
	assert.Equal(t, "Welcome to SCOLA API!", rec.Body.String())
}

func Test_userApi_login(t *testing.T) {
	app := setup(t)
	usr := testutil.CreateUser(t, app.usrRepo, "Alice Johnson", "alice@test.cd", "Sup3rS3cret", user.RoleStudent, true)
	testutil.CreateUser(t, app.usrRepo, "N Dog", "ndog@test.cd", "Sup3rS3cret", user.RoleStudent, false)

	creds := func(email, pwd string) []byte {
		return marshallObj(t, LoginRequest{Email: email, Password: pwd})
	}
	invalidCreds := marshallObj(t, httpErr{Error: "invalid credentials"})

	tests := []httpTest{
		{
			name: "missing fields", method: http.MethodPost, path: "/v1/users/login", body: creds(" ", ""),
			wantCode: http.StatusBadRequest, wantData: marshallObj(t, httpErr{Error: "Please enter both email and password"}),
		},
		{
			name: "unknown email", method: http.MethodPost, path: "/v1/users/login", body: creds("lol@test.cd", "Sup3rS3cret"),
			wantCode: http.StatusBadRequest, wantData: invalidCreds,
		},
		{
			name: "wrong password", method: http.MethodPost, path: "/v1/users/login", body: creds("alice@test.cd", "lol"),
			wantCode: http.StatusBadRequest, wantData: invalidCreds,
		},
		{
			name: "deactivated", method: http.MethodPost, path: "/v1/users/login", body: creds("ndog@test.cd", "Sup3rS3cret"),
			wantCode: http.StatusForbidden, wantData: marshallObj(t, httpErr{Error: "account deactivated"}),
		},
	}
	app.run(t, tests)

	t.Run("success", func(t *testing.T) {
		rec := app.do(http.MethodPost, "/v1/users/login", "", creds(" ALICE@test.cd ", "Sup3rS3cret"))
		require.Equal(t, http.StatusOK, rec.Code)

		var resp LoginResponse
		unmarshall(t, rec, &resp)
		assert.Equal(t, usr.ID, resp.User.ID)
		assert.False(t, resp.User.LastLogin.IsZero())
		assert.Empty(t, resp.User.PasswordHash)

		claims := new(Claims)
		_, err := jwt.ParseWithClaims(resp.Token, claims, func(*jwt.Token) (interface{}, error) {
			return []byte(app.conf.SecretKey), nil
		})
		require.NoError(t, err)
		assert.Equal(t, usr.ID, claims.Subject)
		assert.Equal(t, user.RoleStudent, claims.Role)
		assert.Equal(t, "SCOLA", claims.Issuer)
	})
}

func Test_userApi_register(t *testing.T) {
	app := setup(t)
	testutil.CreateUser(t, app.usrRepo, "Taken", "taken@test.cd", "", user.RoleStudent, true)

	newUser := func(name, email, pwd, role string) []byte {
		return marshallObj(t, user.NewUser{Name: name, Email: email, Password: pwd, PasswordConfirm: pwd, Role: role})
	}

	tests := []httpTest{
		{
			name: "admin role refused", method: http.MethodPost, path: "/v1/users/register",
			body:     newUser("Eve", "eve@test.cd", "Sup3rS3cret", user.RoleAdmin),
			wantCode: http.StatusBadRequest, wantData: marshallObj(t, map[string]string{"role": "invalid role"}),
		},
		{
			name: "email taken", method: http.MethodPost, path: "/v1/users/register",
			body:     newUser("Eve", "Taken@test.cd", "Sup3rS3cret", user.RoleStudent),
			wantCode: http.StatusBadRequest, wantData: marshallObj(t, map[string]string{"email": user.ErrEmailExists.Error()}),
		},
		{
			name: "weak password", method: http.MethodPost, path: "/v1/users/register",
			body: newUser("Eve", "eve@test.cd", "12345678", user.RoleStudent), wantCode: http.StatusBadRequest,
		},
	}
	app.run(t, tests)

	t.Run("success", func(t *testing.T) {
		rec := app.do(http.MethodPost, "/v1/users/register", "", newUser(" Eve Brown ", "Eve@Test.cd", "Sup3rS3cret", user.RoleParent))
		require.Equal(t, http.StatusCreated, rec.Code)

		var resp LoginResponse
		unmarshall(t, rec, &resp)
		assert.NotEmpty(t, resp.Token)
		assert.Equal(t, "Eve Brown", resp.User.Name)
		assert.Equal(t, "eve@test.cd", resp.User.Email)
		assert.Equal(t, user.RoleParent, resp.User.Role)
		assert.True(t, resp.User.IsActive)

		// the new token works right away
		rec = app.do(http.MethodGet, "/v1/users/me", resp.Token)
		assert.Equal(t, http.StatusOK, rec.Code)
	})
}

func Test_userApi_me(t *testing.T) {
	app := setup(t)
	usr := testutil.CreateUser(t, app.usrRepo, "Alice Johnson", "alice@test.cd", "", user.RoleStudent, true)
	gone := user.User{ID: "gone", Name: "Gone", Role: user.RoleStudent}

	tests := []httpTest{
		{name: "auth required", path: "/v1/users/me", wantCode: http.StatusUnauthorized, wantData: marshallObj(t, errMissingToken)},
		{
			name: "invalid token", path: "/v1/users/me", token: "lol",
			wantCode: http.StatusUnauthorized, wantData: marshallObj(t, httpErr{Error: "invalid or expired jwt"}),
		},
		{
			name: "deleted user", path: "/v1/users/me", token: app.token(t, gone),
			wantCode: http.StatusUnauthorized, wantData: marshallObj(t, httpErr{Error: "user not authenticated"}),
		},
		{name: "me", path: "/v1/users/me", token: app.token(t, usr), wantData: marshallObj(t, usr)},
	}
	app.run(t, tests)
}

func Test_userApi_queryRoles(t *testing.T) {
	app := setup(t)
	app.run(t, []httpTest{{name: "roles", path: "/v1/users/roles", wantData: marshallObj(t, user.Roles)}})
}

func Test_userApi_query(t *testing.T) {
	app := setup(t)

	path := func(search, ordering, grade string, roles ...string) string {
		v := make(url.Values)
		if search != "" {
			v.Add("search", search)
		}
		if ordering != "" {
			v.Add("ordering", ordering)
		}
		if grade != "" {
			v.Add("grade", grade)
		}
		for _, r := range roles {
			v.Add("role", r)
		}
		return "/v1/users?" + v.Encode()
	}

	admin := testutil.CreateUser(t, app.usrRepo, "Admin", "admin@test.cd", "", user.RoleAdmin, true)
	teacher := testutil.CreateUser(t, app.usrRepo, "Mr. Smith", "teacher@test.cd", "", user.RoleTeacher, true)
	alice := testutil.CreateStudent(t, app.usrRepo, "Alice Johnson", "alice@test.cd", "STU001", "Grade 10")
	bob := testutil.CreateStudent(t, app.usrRepo, "Bob Smith", "bob@test.cd", "STU002", "Grade 9")
	adminToken := app.token(t, admin)
	empty := marshallList(t)

	tests := []httpTest{
		{name: "auth required", path: "/v1/users", wantCode: http.StatusUnauthorized, wantData: marshallObj(t, errMissingToken)},
		{
			name: "admin required", path: "/v1/users", token: app.token(t, teacher),
			wantCode: http.StatusForbidden, wantData: marshallObj(t, httpErr{Error: "permission denied"}),
		},
		{name: "all by name", path: path("", "name", ""), token: adminToken, wantData: marshallList(t, admin, alice, bob, teacher)},
		{name: "all by -email", path: path("", "-email", ""), token: adminToken, wantData: marshallList(t, teacher, bob, alice, admin)},
		{name: "search (unknown)", path: path("lol", "", ""), token: adminToken, wantData: empty},
		{name: "search=SMITH", path: path("SMITH", "name", ""), token: adminToken, wantData: marshallList(t, bob, teacher)},
		{name: "role (unknown)", path: path("", "", "", "lol"), token: adminToken, wantData: empty},
		{
			name: "role=student,teacher", path: path("", "name", "", user.RoleStudent, user.RoleTeacher),
			token: adminToken, wantData: marshallList(t, alice, bob, teacher),
		},
		{name: "grade", path: path("", "", "Grade 9"), token: adminToken, wantData: marshallList(t, bob)},
	}
	app.run(t, tests)
}

func Test_userApi_queryRecipients(t *testing.T) {
	app := setup(t)
	alice := testutil.CreateStudent(t, app.usrRepo, "Alice Johnson", "alice@test.cd", "STU001", "Grade 10")
	teacher := testutil.CreateUser(t, app.usrRepo, "Mr. Smith", "teacher@test.cd", "", user.RoleTeacher, true)
	testutil.CreateUser(t, app.usrRepo, "N Dog", "ndog@test.cd", "", user.RoleStudent, false)
	parent := testutil.CreateUser(t, app.usrRepo, "Mrs. Johnson", "parent@test.cd", "", user.RoleParent, true)

	app.run(t, []httpTest{
		{name: "others only", path: "/v1/users/recipients", token: app.token(t, alice), wantData: marshallList(t, teacher, parent)},
	})
}

func Test_userApi_retrieveAndUpdate(t *testing.T) {
	app := setup(t)
	admin := testutil.CreateUser(t, app.usrRepo, "Admin", "admin@test.cd", "", user.RoleAdmin, true)
	alice := testutil.CreateStudent(t, app.usrRepo, "Alice Johnson", "alice@test.cd", "STU001", "Grade 10")
	bob := testutil.CreateStudent(t, app.usrRepo, "Bob Smith", "bob@test.cd", "STU002", "Grade 10")
	parent := testutil.CreateUser(t, app.usrRepo, "Mrs. Johnson", "parent@test.cd", "", user.RoleParent, true)
	aliceToken := app.token(t, alice)
	adminToken := app.token(t, admin)
	notFound := marshallObj(t, httpErr{Error: "not found"})

	tests := []httpTest{
		{name: "self", path: "/v1/users/" + alice.ID, token: aliceToken, wantData: marshallObj(t, alice)},
		{name: "other user", path: "/v1/users/" + bob.ID, token: aliceToken, wantCode: http.StatusNotFound, wantData: notFound},
		{name: "admin: other user", path: "/v1/users/" + bob.ID, token: adminToken, wantData: marshallObj(t, bob)},
		{name: "admin: unknown user", path: "/v1/users/lol", token: adminToken, wantCode: http.StatusNotFound, wantData: notFound},
		{
			name: "self: admin-only field", method: http.MethodPut, path: "/v1/users/" + alice.ID, token: aliceToken,
			body:     marshallObj(t, map[string]interface{}{"role": user.RoleAdmin}),
			wantCode: http.StatusForbidden, wantData: marshallObj(t, httpErr{Error: "permission denied"}),
		},
		{
			name: "password mismatch", method: http.MethodPut, path: "/v1/users/" + alice.ID, token: aliceToken,
			body: marshallObj(t, map[string]interface{}{"password": "Sup3rS3cret", "password_confirm": "lol"}), wantCode: http.StatusBadRequest,
		},
		{
			name: "admin: children must be students", method: http.MethodPut, path: "/v1/users/" + parent.ID, token: adminToken,
			body:     marshallObj(t, map[string]interface{}{"children": []string{admin.ID}}),
			wantCode: http.StatusBadRequest, wantData: marshallObj(t, map[string]string{"children": "children must be existing students"}),
		},
	}
	app.run(t, tests)

	t.Run("self: name & password", func(t *testing.T) {
		rec := app.do(http.MethodPut, "/v1/users/"+alice.ID, aliceToken, marshallObj(t, map[string]interface{}{
			"name": " Alice J. ", "password": "N3wS3cretPwd", "password_confirm": "N3wS3cretPwd",
		}))
		require.Equal(t, http.StatusOK, rec.Code, rec.Body.String())

		usr, err := app.usrRepo.GetUser(context.Background(), user.GetFilter{ID: alice.ID})
		require.NoError(t, err)
		assert.Equal(t, "Alice J.", usr.Name)
		assert.NoError(t, usr.CheckPassword("N3wS3cretPwd"))
	})

	t.Run("admin: link children", func(t *testing.T) {
		rec := app.do(http.MethodPut, "/v1/users/"+parent.ID, adminToken, marshallObj(t, map[string]interface{}{
			"children": []string{alice.ID, bob.ID},
		}))
		require.Equal(t, http.StatusOK, rec.Code, rec.Body.String())

		var usr user.User
		unmarshall(t, rec, &usr)
		assert.Equal(t, []string{alice.ID, bob.ID}, usr.Children)
	})
}

func Test_userApi_destroy(t *testing.T) {
	app := setup(t)
	admin := testutil.CreateUser(t, app.usrRepo, "Admin", "admin@test.cd", "", user.RoleAdmin, true)
	alice := testutil.CreateStudent(t, app.usrRepo, "Alice Johnson", "alice@test.cd", "STU001", "Grade 10")
	bob := testutil.CreateStudent(t, app.usrRepo, "Bob Smith", "bob@test.cd", "STU002", "Grade 10")
	carol := testutil.CreateStudent(t, app.usrRepo, "Carol Davis", "carol@test.cd", "STU003", "Grade 10")
	adminToken := app.token(t, admin)
	forbidden := marshallObj(t, httpErr{Error: "permission denied"})

	tests := []httpTest{
		{
			name: "admin required", method: http.MethodDelete, path: "/v1/users/" + alice.ID, token: app.token(t, alice),
			wantCode: http.StatusForbidden, wantData: forbidden,
		},
		{
			name: "not self", method: http.MethodDelete, path: "/v1/users/" + admin.ID, token: adminToken,
			wantCode: http.StatusForbidden, wantData: forbidden,
		},
		{
			name: "multiple: not self", method: http.MethodDelete, path: "/v1/users?id=" + bob.ID + "&id=" + admin.ID, token: adminToken,
			wantCode: http.StatusForbidden, wantData: forbidden,
		},
	}
	app.run(t, tests)

	rec := app.do(http.MethodDelete, "/v1/users/"+alice.ID, adminToken)
	assert.Equal(t, http.StatusNoContent, rec.Code)
	rec = app.do(http.MethodDelete, "/v1/users?id="+bob.ID+"&id="+carol.ID, adminToken)
	assert.Equal(t, http.StatusNoContent, rec.Code)

	users, err := app.usrRepo.QueryUsers(context.Background(), nil, nil)
	require.NoError(t, err)
	require.Len(t, users, 1)
	assert.Equal(t, admin.ID, users[0].ID)
}

func Test_userApi_refreshToken(t *testing.T) {
	app := setup(t)
	usr := testutil.CreateUser(t, app.usrRepo, "Alice Johnson", "alice@test.cd", "", user.RoleStudent, true)

	tests := []httpTest{
		{
			name: "auth required", method: http.MethodPost, path: "/v1/users/token-refresh",
			wantCode: http.StatusUnauthorized, wantData: marshallObj(t, errMissingToken),
		},
		{
			name: "refresh expired", method: http.MethodPost, path: "/v1/users/token-refresh",
			token:    tokenWithOrigIat(t, app, usr, core.Now().Add(-48*time.Hour).Unix()),
			wantCode: http.StatusForbidden, wantData: marshallObj(t, httpErr{Error: "refresh has expired"}),
		},
	}
	app.run(t, tests)

	t.Run("success", func(t *testing.T) {
		origIat := core.Now().Add(-time.Hour).Unix()
		rec := app.do(http.MethodPost, "/v1/users/token-refresh", tokenWithOrigIat(t, app, usr, origIat))
		require.Equal(t, http.StatusOK, rec.Code)

		var resp TokenResponse
		unmarshall(t, rec, &resp)
		claims := new(Claims)
		_, err := jwt.ParseWithClaims(resp.Token, claims, func(*jwt.Token) (interface{}, error) {
			return []byte(app.conf.SecretKey), nil
		})
		require.NoError(t, err)
		assert.Equal(t, origIat, claims.OrigIssuedAt)
	})
}

func tokenWithOrigIat(t *testing.T, app *testApp, usr user.User, origIat int64) string {
	token, err := GenerateToken(GetUserClaims(usr, app.conf, origIat), app.conf)
	require.NoError(t, err)
	return token
}
