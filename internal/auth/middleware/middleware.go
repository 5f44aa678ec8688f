package auth

import (
	"encoding/json"
	"net/http"
	"strings"
	"time"

	"github.com/cockroachdb/errors"
	"github.com/golang-jwt/jwt/v5"
	"go.uber.org/zap"
	"golang.org/x/crypto/bcrypt"

	"github.com/mind-engage/mindengage-fuzzyeval/internal/logging"
	"github.com/mind-engage/mindengage-fuzzyeval/internal/rbac"
)

const (
	Issuer   = "mindengage-fuzzyeval"
	TokenTTL = 8 * time.Hour
)

var ErrBadCredentials = errors.New("invalid credentials")

type AuthService struct{ hmac []byte }

func NewAuthService(secret string) *AuthService { return &AuthService{hmac: []byte(secret)} }

type Claims struct {
	Sub  string `json:"sub"`
	Role string `json:"role"` // "admin", "teacher" or "student"
	jwt.RegisteredClaims
}

func (a *AuthService) IssueJWT(sub, role string) (string, error) {
	now := time.Now()
	claims := &Claims{
		Sub:  sub,
		Role: role,
		RegisteredClaims: jwt.RegisteredClaims{
			Issuer:    Issuer,
			IssuedAt:  jwt.NewNumericDate(now),
			ExpiresAt: jwt.NewNumericDate(now.Add(TokenTTL)),
		},
	}
	t := jwt.NewWithClaims(jwt.SigningMethodHS256, claims)
	return t.SignedString(a.hmac)
}

func (a *AuthService) Parse(tokenStr string) (*Claims, error) {
	token, err := jwt.ParseWithClaims(tokenStr, &Claims{}, func(*jwt.Token) (any, error) {
		return a.hmac, nil
	}, jwt.WithValidMethods([]string{jwt.SigningMethodHS256.Alg()}), jwt.WithIssuer(Issuer))
	if err != nil {
		return nil, err
	}
	c, ok := token.Claims.(*Claims)
	if !ok || !token.Valid || c.Sub == "" || c.Role == "" {
		return nil, errors.New("auth: incomplete claims")
	}
	return c, nil
}

// Credentials checks login requests: the bcrypt-hashed admin account and,
// when AllowDevLogins is set, username==password logins for teachers and
// students.
type Credentials struct {
	AdminUser      string
	AdminPassHash  string
	AllowDevLogins bool
}

// Check returns the role granted to username.
func (c Credentials) Check(username, password, role string) (string, error) {
	if username == "" || password == "" {
		return "", ErrBadCredentials
	}
	if username == c.AdminUser && c.AdminPassHash != "" {
		if bcrypt.CompareHashAndPassword([]byte(c.AdminPassHash), []byte(password)) != nil {
			return "", ErrBadCredentials
		}
		return "admin", nil
	}
	if c.AllowDevLogins && username == password && (role == "teacher" || role == "student") {
		return role, nil
	}
	return "", ErrBadCredentials
}

// POST /auth/login  { "username": "...", "password": "...", "role": "teacher|student" }
func LoginHandler(a *AuthService, creds Credentials) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		var req struct {
			Username string `json:"username"`
			Password string `json:"password"`
			Role     string `json:"role"`
		}
		if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
			http.Error(w, "bad json", http.StatusBadRequest)
			return
		}
		role, err := creds.Check(req.Username, req.Password, req.Role)
		if err != nil {
			logging.Logger().Info("login rejected", zap.String(logging.FieldSubject, req.Username))
			http.Error(w, err.Error(), http.StatusUnauthorized)
			return
		}
		tok, err := a.IssueJWT(req.Username, role)
		if err != nil {
			http.Error(w, "issue token", http.StatusInternalServerError)
			return
		}
		w.Header().Set("Content-Type", "application/json")
		_ = json.NewEncoder(w).Encode(map[string]string{"access_token": tok, "role": role})
	}
}

// JWTMiddleware puts the token's subject and role into the request context.
func JWTMiddleware(a *AuthService) func(http.Handler) http.Handler {
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			h := r.Header.Get("Authorization")
			if !strings.HasPrefix(h, "Bearer ") {
				http.Error(w, "missing bearer", http.StatusUnauthorized)
				return
			}
			c, err := a.Parse(strings.TrimPrefix(h, "Bearer "))
			if err != nil {
				http.Error(w, "bad token", http.StatusUnauthorized)
				return
			}
			ctx := rbac.WithSubject(rbac.WithRole(r.Context(), c.Role), c.Sub)
			next.ServeHTTP(w, r.WithContext(ctx))
		})
	}
}
