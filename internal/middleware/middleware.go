package middleware

import (
	"net/http"
	"os"
	"strings"
	"time"

	"github.com/jobfinder/jobfinder-api/internal/authoriser"

	jwt "github.com/dgrijalva/jwt-go"
	"github.com/pkg/errors"
	"github.com/rs/zerolog"
)

func HTTPSMiddleware(next http.Handler, env string) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if env != "dev" && r.Header.Get("X-Forwarded-Proto") != "https" {
			target := "https://" + r.Host + r.URL.Path
			http.Redirect(w, r, target, http.StatusMovedPermanently)
			return
		}

		next.ServeHTTP(w, r)
	})
}

func LoggingMiddleware(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		logger := zerolog.New(zerolog.ConsoleWriter{Out: os.Stdout, TimeFormat: time.RFC3339}).
			With().
			Timestamp().
			Logger()
		logger.Info().
			Str("Host", r.Host).
			Str("method", r.Method).
			Stringer("url", r.URL).
			Str("x-forwarded-for", r.Header.Get("x-forwarded-for")).
			Msg("req")
		next.ServeHTTP(w, r)
	})
}

func HeadersMiddleware(next http.Handler, env string) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if env != "dev" {
			w.Header().Set("X-Frame-Options", "deny")
			w.Header().Set("X-XSS-Protection", "1; mode=block")
			w.Header().Set("X-Content-Type-Options", "nosniff")
			w.Header().Set("Strict-Transport-Security", "max-age=31536000; includeSubDomains")
			w.Header().Set("Referrer-Policy", "origin")
		}
		next.ServeHTTP(w, r)
	})
}

// CORSMiddleware answers preflight requests from the SPA. The API is
// bearer-token authenticated so allowing any origin does not expose cookies.
func CORSMiddleware(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.Header().Set("Access-Control-Allow-Origin", "*")
		w.Header().Set("Access-Control-Allow-Methods", "GET, POST, PUT, DELETE, OPTIONS")
		w.Header().Set("Access-Control-Allow-Headers", "Origin, Content-Type, Authorization")
		if r.Method == http.MethodOptions {
			w.WriteHeader(http.StatusNoContent)
			return
		}
		next.ServeHTTP(w, r)
	})
}

type UserJWT struct {
	UserID string `json:"user_id"`
	Email  string `json:"email"`
	Role   string `json:"role"`
	jwt.StandardClaims
}

// GetActorFromRequest verifies the Authorization bearer token and returns the
// caller as an actor for the policy functions.
func GetActorFromRequest(r *http.Request, jwtKey []byte) (authoriser.Actor, error) {
	header := r.Header.Get("Authorization")
	if header == "" {
		return authoriser.Actor{}, errors.New("could not find authorization header")
	}
	tk := strings.TrimPrefix(header, "Bearer ")
	if tk == header {
		return authoriser.Actor{}, errors.New("authorization header is not a bearer token")
	}
	token, err := jwt.ParseWithClaims(tk, &UserJWT{}, func(token *jwt.Token) (interface{}, error) {
		if _, ok := token.Method.(*jwt.SigningMethodHMAC); !ok {
			return nil, errors.Errorf("unexpected signing method %v", token.Header["alg"])
		}
		return jwtKey, nil
	})
	if err != nil {
		return authoriser.Actor{}, errors.Wrap(err, "unable to parse jwt")
	}
	if !token.Valid {
		return authoriser.Actor{}, errors.New("token is expired")
	}
	claims, ok := token.Claims.(*UserJWT)
	if !ok || claims.UserID == "" {
		return authoriser.Actor{}, errors.New("could not convert jwt claims to UserJWT")
	}
	return authoriser.Actor{ID: claims.UserID, Email: claims.Email, Role: claims.Role}, nil
}

func AuthenticatedMiddleware(jwtKey []byte, next http.HandlerFunc) http.HandlerFunc {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if _, err := GetActorFromRequest(r, jwtKey); err != nil {
			w.Header().Set("Content-Type", "application/json")
			w.WriteHeader(http.StatusUnauthorized)
			w.Write([]byte(`{"message": "not authenticated"}`))
			return
		}
		next(w, r)
	})
}

// EmployerAuthenticatedMiddleware gates routes to employers and admins. The
// caller is authenticated but lacks the role, so this is a 403 not a 401.
func EmployerAuthenticatedMiddleware(jwtKey []byte, next http.HandlerFunc) http.HandlerFunc {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		actor, err := GetActorFromRequest(r, jwtKey)
		if err != nil {
			w.Header().Set("Content-Type", "application/json")
			w.WriteHeader(http.StatusUnauthorized)
			w.Write([]byte(`{"message": "not authenticated"}`))
			return
		}
		if !authoriser.CanPostJobs(actor) {
			w.Header().Set("Content-Type", "application/json")
			w.WriteHeader(http.StatusForbidden)
			w.Write([]byte(`{"message": "not authorized"}`))
			return
		}
		next(w, r)
	})
}
