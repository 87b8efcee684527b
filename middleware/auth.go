package middleware

import (
	"context"
	"errors"
	"net/http"
	"net/url"
	"strings"
	"time"

	"overtime-tracker/logging"
	"overtime-tracker/models"
	"overtime-tracker/services"

	"github.com/golang-jwt/jwt/v5"
	"github.com/google/uuid"
	"github.com/sirupsen/logrus"
)

type contextKey string

const (
	UserContextKey contextKey = "user"

	sessionCookie      = "token"
	changePasswordPath = "/change_password"
)

type Claims struct {
	UserID   uint        `json:"user_id"`
	Username string      `json:"username"`
	Role     models.Role `json:"role"`
	jwt.RegisteredClaims
}

// Auth issues and checks signed session tokens and loads the session user.
type Auth struct {
	secret []byte
	ttl    time.Duration
	users  *services.UserService
}

func NewAuth(secret string, ttl time.Duration, users *services.UserService) *Auth {
	return &Auth{
		secret: []byte(secret),
		ttl:    ttl,
		users:  users,
	}
}

func (a *Auth) GenerateToken(user *models.User) (string, error) {
	claims := &Claims{
		UserID:   user.ID,
		Username: user.Username,
		Role:     user.Role,
		RegisteredClaims: jwt.RegisteredClaims{
			ID:        uuid.NewString(),
			ExpiresAt: jwt.NewNumericDate(time.Now().Add(a.ttl)),
			IssuedAt:  jwt.NewNumericDate(time.Now()),
		},
	}

	token := jwt.NewWithClaims(jwt.SigningMethodHS256, claims)
	return token.SignedString(a.secret)
}

func (a *Auth) ValidateToken(tokenString string) (*Claims, error) {
	token, err := jwt.ParseWithClaims(tokenString, &Claims{}, func(token *jwt.Token) (interface{}, error) {
		return a.secret, nil
	}, jwt.WithValidMethods([]string{jwt.SigningMethodHS256.Alg()}))

	if err != nil {
		return nil, err
	}

	if claims, ok := token.Claims.(*Claims); ok && token.Valid {
		return claims, nil
	}

	return nil, jwt.ErrSignatureInvalid
}

// StartSession signs a token for user and stores it in the session cookie.
func (a *Auth) StartSession(w http.ResponseWriter, user *models.User) error {
	token, err := a.GenerateToken(user)
	if err != nil {
		return err
	}

	http.SetCookie(w, &http.Cookie{
		Name:     sessionCookie,
		Value:    token,
		Path:     "/",
		MaxAge:   int(a.ttl.Seconds()),
		HttpOnly: true,
		SameSite: http.SameSiteStrictMode,
	})
	return nil
}

func (a *Auth) EndSession(w http.ResponseWriter) {
	http.SetCookie(w, &http.Cookie{
		Name:     sessionCookie,
		Value:    "",
		Path:     "/",
		MaxAge:   -1,
		HttpOnly: true,
	})
}

// Authenticate resolves the session user from the cookie or a Bearer token
// and redirects to /login when there is none.
func (a *Auth) Authenticate(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		var tokenString string
		cookie, err := r.Cookie(sessionCookie)
		if err == nil {
			tokenString = cookie.Value
		}

		if tokenString == "" {
			authHeader := r.Header.Get("Authorization")
			if authHeader != "" {
				parts := strings.Split(authHeader, " ")
				if len(parts) == 2 && parts[0] == "Bearer" {
					tokenString = parts[1]
				}
			}
		}

		if tokenString == "" {
			http.Redirect(w, r, "/login", http.StatusSeeOther)
			return
		}

		claims, err := a.ValidateToken(tokenString)
		if err != nil {
			a.EndSession(w)
			http.Redirect(w, r, "/login", http.StatusSeeOther)
			return
		}

		user, err := a.users.ByID(r.Context(), claims.UserID)
		if err != nil {
			if !errors.Is(err, services.ErrNotFound) {
				logging.Logger.WithError(err).WithField("reqid", GetRequestID(r)).Error("load session user")
			}
			a.EndSession(w)
			http.Redirect(w, r, "/login", http.StatusSeeOther)
			return
		}

		next.ServeHTTP(w, r.WithContext(WithUser(r.Context(), user)))
	})
}

// RequirePasswordChange keeps users with a pending password rotation on the
// change-password page.
func RequirePasswordChange(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		user := GetUserFromContext(r.Context())
		if user != nil && user.MustChangePassword && r.URL.Path != changePasswordPath {
			http.Redirect(w, r, changePasswordPath+"?error="+url.QueryEscape("Please change your password first"), http.StatusSeeOther)
			return
		}
		next.ServeHTTP(w, r)
	})
}

// RequireCapability redirects to fallback with a notice when the session
// user's role lacks c.
func RequireCapability(c models.Capability, fallback string) func(http.Handler) http.Handler {
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			user := GetUserFromContext(r.Context())
			if user == nil {
				http.Redirect(w, r, "/login", http.StatusSeeOther)
				return
			}

			if !user.Can(c) {
				logging.Logger.WithFields(logrus.Fields{
					"reqid":      GetRequestID(r),
					"user":       user.Username,
					"role":       user.Role,
					"capability": c,
				}).Info("access denied")
				http.Redirect(w, r, fallback+"?error="+url.QueryEscape("Access denied"), http.StatusSeeOther)
				return
			}

			next.ServeHTTP(w, r)
		})
	}
}

func WithUser(ctx context.Context, user *models.User) context.Context {
	return context.WithValue(ctx, UserContextKey, user)
}

func GetUserFromContext(ctx context.Context) *models.User {
	user, ok := ctx.Value(UserContextKey).(*models.User)
	if !ok {
		return nil
	}
	return user
}
