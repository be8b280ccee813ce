package user

import (
	"encoding/json"
	"net/http"
	"strings"
	"time"

	"github.com/jobfinder/jobfinder-api/internal/middleware"
	"github.com/jobfinder/jobfinder-api/internal/server"

	jwt "github.com/dgrijalva/jwt-go"
	"github.com/microcosm-cc/bluemonday"
	"golang.org/x/crypto/bcrypt"
)

const tokenLifetime = 30 * 24 * time.Hour

func RegisterHandler(svr server.Server, userRepo *Repository) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		req := &RegisterRq{}
		if err := json.NewDecoder(r.Body).Decode(req); err != nil {
			svr.JSONError(w, http.StatusBadRequest, "invalid request body")
			return
		}
		if err := req.Validate(); err != nil {
			svr.JSONError(w, http.StatusBadRequest, err.Error())
			return
		}
		passwordHash, err := bcrypt.GenerateFromPassword([]byte(req.Password), bcrypt.DefaultCost)
		if err != nil {
			svr.Log(err, "unable to hash password")
			svr.JSONError(w, http.StatusInternalServerError, "unexpected error")
			return
		}
		u, err := userRepo.SaveUser(req.Email, string(passwordHash), req.Name, req.Role)
		if err == ErrEmailTaken {
			svr.JSONError(w, http.StatusBadRequest, err.Error())
			return
		}
		if err != nil {
			svr.Log(err, "unable to save user")
			svr.JSONError(w, http.StatusInternalServerError, "unexpected error")
			return
		}
		token, err := issueToken(u, svr.GetJWTSigningKey())
		if err != nil {
			svr.Log(err, "unable to sign jwt")
			svr.JSONError(w, http.StatusInternalServerError, "unexpected error")
			return
		}
		svr.JSON(w, http.StatusCreated, AuthRes{Token: token, User: u})
	}
}

func LoginHandler(svr server.Server, userRepo *Repository) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		req := &LoginRq{}
		if err := json.NewDecoder(r.Body).Decode(req); err != nil {
			svr.JSONError(w, http.StatusBadRequest, "invalid request body")
			return
		}
		u, err := userRepo.UserByEmail(strings.ToLower(strings.TrimSpace(req.Email)))
		if err == ErrNotFound {
			svr.JSONError(w, http.StatusUnauthorized, "invalid credentials")
			return
		}
		if err != nil {
			svr.Log(err, "unable to retrieve user by email")
			svr.JSONError(w, http.StatusInternalServerError, "unexpected error")
			return
		}
		if err := bcrypt.CompareHashAndPassword([]byte(u.PasswordHash()), []byte(req.Password)); err != nil {
			svr.JSONError(w, http.StatusUnauthorized, "invalid credentials")
			return
		}
		token, err := issueToken(u, svr.GetJWTSigningKey())
		if err != nil {
			svr.Log(err, "unable to sign jwt")
			svr.JSONError(w, http.StatusInternalServerError, "unexpected error")
			return
		}
		svr.JSON(w, http.StatusOK, AuthRes{Token: token, User: u})
	}
}

func MeHandler(svr server.Server, userRepo *Repository) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		actor, err := middleware.GetActorFromRequest(r, svr.GetJWTSigningKey())
		if err != nil {
			svr.JSONError(w, http.StatusUnauthorized, "not authenticated")
			return
		}
		u, err := userRepo.UserByID(actor.ID)
		if err == ErrNotFound {
			svr.JSONError(w, http.StatusNotFound, "user not found")
			return
		}
		if err != nil {
			svr.Log(err, "unable to retrieve user by id")
			svr.JSONError(w, http.StatusInternalServerError, "unexpected error")
			return
		}
		svr.JSON(w, http.StatusOK, u)
	}
}

func UpdateProfileHandler(svr server.Server, userRepo *Repository) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		actor, err := middleware.GetActorFromRequest(r, svr.GetJWTSigningKey())
		if err != nil {
			svr.JSONError(w, http.StatusUnauthorized, "not authenticated")
			return
		}
		req := &ProfileRqUpdate{}
		if err := json.NewDecoder(r.Body).Decode(req); err != nil {
			svr.JSONError(w, http.StatusBadRequest, "invalid request body")
			return
		}
		req.Bio = bluemonday.StrictPolicy().Sanitize(req.Bio)
		req.Name = bluemonday.StrictPolicy().Sanitize(req.Name)
		req.Location = bluemonday.StrictPolicy().Sanitize(req.Location)
		if err := req.Validate(); err != nil {
			svr.JSONError(w, http.StatusBadRequest, err.Error())
			return
		}
		if err := userRepo.UpdateProfile(actor.ID, req); err != nil {
			if err == ErrNotFound {
				svr.JSONError(w, http.StatusNotFound, "user not found")
				return
			}
			svr.Log(err, "unable to update profile")
			svr.JSONError(w, http.StatusInternalServerError, "unexpected error")
			return
		}
		u, err := userRepo.UserByID(actor.ID)
		if err != nil {
			svr.Log(err, "unable to retrieve user after update")
			svr.JSONError(w, http.StatusInternalServerError, "unexpected error")
			return
		}
		svr.JSON(w, http.StatusOK, u)
	}
}

func issueToken(u *User, signingKey []byte) (string, error) {
	claims := middleware.UserJWT{
		UserID: u.ID,
		Email:  u.Email,
		Role:   u.Role,
		StandardClaims: jwt.StandardClaims{
			IssuedAt:  time.Now().Unix(),
			ExpiresAt: time.Now().Add(tokenLifetime).Unix(),
		},
	}
	token := jwt.NewWithClaims(jwt.SigningMethodHS256, claims)
	return token.SignedString(signingKey)
}
