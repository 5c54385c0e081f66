package routehandlers

import (
	"encoding/json"
	"errors"
	"fmt"
	"net/http"
	"time"

	"github.com/google/uuid"

	"github.com/tdnguyen/novelnest/auth"
	"github.com/tdnguyen/novelnest/datastore"
	"github.com/tdnguyen/novelnest/models"
	"github.com/tdnguyen/novelnest/webutil"
)

const defaultAvatar = "./default-avt.jpg"

type AuthHandler struct {
	Users *datastore.UserRepository
	Auth  *auth.Service
}

func NewAuthHandler(users *datastore.UserRepository, authService *auth.Service) *AuthHandler {
	return &AuthHandler{Users: users, Auth: authService}
}

// HandleSignup registers a new account and returns an access token.
// Duplicate email or username is rejected before the password is hashed.
func (h *AuthHandler) HandleSignup(w http.ResponseWriter, r *http.Request) error {
	var requestData struct {
		Username string `json:"username"`
		Email    string `json:"email"`
		Password string `json:"password"`
	}
	decoder := json.NewDecoder(r.Body)
	decoder.DisallowUnknownFields()

	if err := decoder.Decode(&requestData); err != nil {
		return webutil.ErrBadRequest("Invalid request payload: " + err.Error())
	}
	defer r.Body.Close()

	if requestData.Username == "" || requestData.Email == "" || requestData.Password == "" {
		return webutil.ErrBadRequest("Username, email and password are required")
	}

	if _, err := h.Users.GetUserByEmail(r.Context(), requestData.Email); err == nil {
		return webutil.ErrBadRequest("Email already exists.")
	} else if !errors.Is(err, datastore.ErrNotFound) {
		return fmt.Errorf("failed to check email uniqueness: %w", err)
	}

	if _, err := h.Users.GetUserByUsername(r.Context(), requestData.Username); err == nil {
		return webutil.ErrBadRequest("Username already exists.")
	} else if !errors.Is(err, datastore.ErrNotFound) {
		return fmt.Errorf("failed to check username uniqueness: %w", err)
	}

	hash, err := auth.HashPassword(requestData.Password)
	if err != nil {
		return fmt.Errorf("failed to hash signup password: %w", err)
	}

	newUser := models.User{
		ID:           uuid.NewString(),
		Username:     requestData.Username,
		Email:        requestData.Email,
		PasswordHash: hash,
		Avatar:       defaultAvatar,
		IsActive:     true,
		CreatedAt:    time.Now().UTC(),
	}
	if err := h.Users.CreateUser(r.Context(), &newUser); err != nil {
		return fmt.Errorf("failed to create user %s: %w", newUser.Username, err)
	}

	token, err := h.Auth.IssueToken(newUser.Username)
	if err != nil {
		return fmt.Errorf("failed to issue signup token: %w", err)
	}

	webutil.RespondWithJSON(w, http.StatusCreated, map[string]string{"access_token": token})
	return nil
}

// HandleLogin exchanges a username/password pair for an access token.
// Unknown user and wrong password produce the same 401.
func (h *AuthHandler) HandleLogin(w http.ResponseWriter, r *http.Request) error {
	var requestData struct {
		Username string `json:"username"`
		Password string `json:"password"`
	}
	if err := json.NewDecoder(r.Body).Decode(&requestData); err != nil {
		return webutil.ErrBadRequest("Invalid request payload: " + err.Error())
	}
	defer r.Body.Close()

	if _, err := h.Auth.Authenticate(r.Context(), requestData.Username, requestData.Password); err != nil {
		if errors.Is(err, auth.ErrInvalidCredentials) {
			return webutil.ErrUnauthorized("Invalid credentials")
		}
		return fmt.Errorf("login failed for %s: %w", requestData.Username, err)
	}

	token, err := h.Auth.IssueToken(requestData.Username)
	if err != nil {
		return fmt.Errorf("failed to issue login token: %w", err)
	}

	webutil.RespondWithJSON(w, http.StatusOK, map[string]string{"access_token": token})
	return nil
}

// HandleUserInfo returns the authenticated user's own record.
func (h *AuthHandler) HandleUserInfo(w http.ResponseWriter, r *http.Request) error {
	user, ok := auth.UserFromContext(r.Context())
	if !ok {
		return webutil.ErrUnauthorized("")
	}
	webutil.RespondWithJSON(w, http.StatusOK, user)
	return nil
}

// HandleUpdatePenName sets the authenticated user's display name.
func (h *AuthHandler) HandleUpdatePenName(w http.ResponseWriter, r *http.Request) error {
	user, ok := auth.UserFromContext(r.Context())
	if !ok {
		return webutil.ErrUnauthorized("")
	}

	var requestData struct {
		Name string `json:"name"`
	}
	if err := json.NewDecoder(r.Body).Decode(&requestData); err != nil {
		return webutil.ErrBadRequest("Invalid request payload: " + err.Error())
	}
	defer r.Body.Close()

	if requestData.Name == "" {
		return webutil.ErrBadRequest("Name is required")
	}

	if err := h.Users.UpdateUserName(r.Context(), user.ID, requestData.Name); err != nil {
		if errors.Is(err, datastore.ErrNotFound) {
			return webutil.ErrNotFound("User not found")
		}
		return fmt.Errorf("failed to update pen name for %s: %w", user.ID, err)
	}

	webutil.RespondWithJSON(w, http.StatusOK, map[string]string{"message": "Successfully!!!"})
	return nil
}
