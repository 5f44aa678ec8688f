package auth_test

import (
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"
	"time"

	"github.com/golang-jwt/jwt/v5"
	"github.com/stretchr/testify/require"
	"golang.org/x/crypto/bcrypt"

	auth "github.com/mind-engage/mindengage-fuzzyeval/internal/auth/middleware"
	"github.com/mind-engage/mindengage-fuzzyeval/internal/rbac"
)

func TestIssueAndParse(t *testing.T) {
	a := auth.NewAuthService("k1")
	tok, err := a.IssueJWT("t-1", "teacher")
	require.NoError(t, err)

	c, err := a.Parse(tok)
	require.NoError(t, err)
	require.Equal(t, "t-1", c.Sub)
	require.Equal(t, "teacher", c.Role)

	_, err = auth.NewAuthService("other").Parse(tok)
	require.Error(t, err)
}

func TestParse_RejectsExpiredAndForeign(t *testing.T) {
	secret := []byte("k1")
	a := auth.NewAuthService(string(secret))

	expired := jwt.NewWithClaims(jwt.SigningMethodHS256, &auth.Claims{
		Sub: "s-1", Role: "student",
		RegisteredClaims: jwt.RegisteredClaims{
			Issuer:    auth.Issuer,
			ExpiresAt: jwt.NewNumericDate(time.Now().Add(-time.Minute)),
		},
	})
	s, err := expired.SignedString(secret)
	require.NoError(t, err)
	_, err = a.Parse(s)
	require.ErrorIs(t, err, jwt.ErrTokenExpired)

	foreign := jwt.NewWithClaims(jwt.SigningMethodHS256, &auth.Claims{
		Sub: "s-1", Role: "student",
		RegisteredClaims: jwt.RegisteredClaims{Issuer: "someone-else"},
	})
	s, err = foreign.SignedString(secret)
	require.NoError(t, err)
	_, err = a.Parse(s)
	require.Error(t, err)
}

func TestCredentials(t *testing.T) {
	hash, err := bcrypt.GenerateFromPassword([]byte("s3cret"), bcrypt.MinCost)
	require.NoError(t, err)
	creds := auth.Credentials{AdminUser: "admin", AdminPassHash: string(hash), AllowDevLogins: true}

	role, err := creds.Check("admin", "s3cret", "")
	require.NoError(t, err)
	require.Equal(t, "admin", role)

	_, err = creds.Check("admin", "admin", "teacher")
	require.ErrorIs(t, err, auth.ErrBadCredentials, "admin name cannot use a dev login")

	role, err = creds.Check("ana", "ana", "student")
	require.NoError(t, err)
	require.Equal(t, "student", role)

	_, err = creds.Check("ana", "ana", "admin")
	require.ErrorIs(t, err, auth.ErrBadCredentials)

	creds.AllowDevLogins = false
	_, err = creds.Check("ana", "ana", "student")
	require.ErrorIs(t, err, auth.ErrBadCredentials)
}

func TestLoginThenMiddleware(t *testing.T) {
	a := auth.NewAuthService("k1")
	login := auth.LoginHandler(a, auth.Credentials{AllowDevLogins: true})

	rec := httptest.NewRecorder()
	login(rec, httptest.NewRequest(http.MethodPost, "/auth/login",
		strings.NewReader(`{"username":"t-1","password":"t-1","role":"teacher"}`)))
	require.Equal(t, http.StatusOK, rec.Code)
	require.Contains(t, rec.Body.String(), "access_token")

	rec = httptest.NewRecorder()
	login(rec, httptest.NewRequest(http.MethodPost, "/auth/login",
		strings.NewReader(`{"username":"t-1","password":"nope","role":"teacher"}`)))
	require.Equal(t, http.StatusUnauthorized, rec.Code)

	tok, err := a.IssueJWT("t-1", "teacher")
	require.NoError(t, err)
	var role, sub string
	h := auth.JWTMiddleware(a)(http.HandlerFunc(func(_ http.ResponseWriter, r *http.Request) {
		role = rbac.RoleFromContext(r.Context())
		sub = rbac.SubjectFromContext(r.Context())
	}))

	req := httptest.NewRequest(http.MethodGet, "/", nil)
	req.Header.Set("Authorization", "Bearer "+tok)
	h.ServeHTTP(httptest.NewRecorder(), req)
	require.Equal(t, "teacher", role)
	require.Equal(t, "t-1", sub)

	rec = httptest.NewRecorder()
	h.ServeHTTP(rec, httptest.NewRequest(http.MethodGet, "/", nil))
	require.Equal(t, http.StatusUnauthorized, rec.Code)
}
