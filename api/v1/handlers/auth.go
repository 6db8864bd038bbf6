package handlers

import (
	"context"
	"encoding/json"
	"errors"
	"net/http"
	"strings"
	"time"
	"unicode/utf8"

	"github.com/mwalden2/inkwell/api/v1/auth"
	"github.com/mwalden2/inkwell/api/v1/database"
	"github.com/mwalden2/inkwell/api/v1/models"
)

// UserStore is the persistence surface the user and auth handlers need.
type UserStore interface {
	CreateUser(ctx context.Context, user *models.User) error
	GetUser(ctx context.Context, userID int64) (*models.User, error)
	GetUserByUsername(ctx context.Context, username string) (*models.User, error)
	ListUsers(ctx context.Context, skip, limit int) ([]models.User, error)
	UpdateUser(ctx context.Context, userID int64, patch *database.UserPatch) (*models.User, error)
	DeleteUser(ctx context.Context, userID int64) error
}

type AuthHandler struct {
	Users     UserStore
	JWTSecret []byte
	TokenTTL  time.Duration
}

func NewAuthHandler(users UserStore, jwtSecret string, tokenTTL time.Duration) *AuthHandler {
	return &AuthHandler{
		Users:     users,
		JWTSecret: []byte(jwtSecret),
		TokenTTL:  tokenTTL,
	}
}

// Signup handles unauthenticated self-registration.
func (h *AuthHandler) Signup(w http.ResponseWriter, r *http.Request) {
	w.Header().Set("Content-Type", "application/json")

	var req models.SignupRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		SendError(w, "Invalid JSON format", http.StatusBadRequest)
		return
	}

	if err := validateSignup(&req); err != nil {
		SendError(w, err.Error(), http.StatusBadRequest)
		return
	}

	hashedPassword, err := auth.HashPassword(req.Password)
	if err != nil {
		SendError(w, "Failed to process password", http.StatusInternalServerError)
		return
	}

	user := &models.User{
		Username:       req.Username,
		Email:          req.Email,
		HashedPassword: hashedPassword,
	}

	err = h.Users.CreateUser(r.Context(), user)
	if err != nil {
		switch {
		case database.IsUsernameExistsError(err):
			SendError(w, "Username already registered", http.StatusBadRequest)
		case database.IsEmailExistsError(err):
			SendError(w, "Email already registered", http.StatusBadRequest)
		default:
			SendError(w, "Unable to process request at this time", http.StatusInternalServerError)
		}
		return
	}

	w.WriteHeader(http.StatusCreated)
	json.NewEncoder(w).Encode(user)
}

// Login exchanges form-encoded credentials for a bearer token.
func (h *AuthHandler) Login(w http.ResponseWriter, r *http.Request) {
	w.Header().Set("Content-Type", "application/json")

	if err := r.ParseForm(); err != nil {
		SendError(w, "Invalid form data", http.StatusBadRequest)
		return
	}

	username := r.PostFormValue("username")
	password := r.PostFormValue("password")
	if strings.TrimSpace(username) == "" || strings.TrimSpace(password) == "" {
		SendError(w, "Username and password are required", http.StatusBadRequest)
		return
	}

	user, err := h.Users.GetUserByUsername(r.Context(), username)
	if err != nil {
		// generic message to prevent username enumeration
		time.Sleep(100 * time.Millisecond)
		h.sendLoginFailure(w)
		return
	}

	if !auth.CheckPassword(password, user.HashedPassword) {
		// small delay to prevent timing attacks
		time.Sleep(100 * time.Millisecond)
		h.sendLoginFailure(w)
		return
	}

	token, err := auth.GenerateToken(user.ID, h.JWTSecret, h.TokenTTL)
	if err != nil {
		SendError(w, "Failed to generate authentication token", http.StatusInternalServerError)
		return
	}

	response := models.TokenResponse{
		AccessToken: token,
		TokenType:   "bearer",
	}

	w.WriteHeader(http.StatusOK)
	json.NewEncoder(w).Encode(response)
}

func (h *AuthHandler) sendLoginFailure(w http.ResponseWriter) {
	w.Header().Set("WWW-Authenticate", "Bearer")
	SendError(w, "Incorrect username or password", http.StatusUnauthorized)
}

func validateSignup(req *models.SignupRequest) error {
	req.Username = strings.TrimSpace(req.Username)
	req.Email = strings.TrimSpace(req.Email)

	if err := validateUsername(req.Username); err != nil {
		return err
	}

	if err := validateEmail(req.Email); err != nil {
		return err
	}

	if err := validatePassword(req.Password); err != nil {
		return err
	}

	return nil
}

func validateUsername(username string) error {
	if username == "" {
		return errors.New("username is required")
	}

	if utf8.RuneCountInString(username) < 3 {
		return errors.New("username must be at least 3 characters long")
	}

	if utf8.RuneCountInString(username) > 50 {
		return errors.New("username must be less than 50 characters")
	}

	for _, r := range username {
		if !((r >= 'a' && r <= 'z') ||
			(r >= 'A' && r <= 'Z') ||
			(r >= '0' && r <= '9') ||
			r == '_' || r == '-') {
			return errors.New("username can only contain letters, numbers, underscores, and hyphens")
		}
	}

	return nil
}

func validateEmail(email string) error {
	if email == "" {
		return errors.New("email is required")
	}

	at := strings.Index(email, "@")
	if at <= 0 || at == len(email)-1 || strings.Count(email, "@") != 1 {
		return errors.New("email is not valid")
	}

	if len(email) > 254 {
		return errors.New("email must be less than 254 characters")
	}

	return nil
}

func validatePassword(password string) error {
	if strings.TrimSpace(password) == "" {
		return errors.New("password is required")
	}

	if len(password) < 8 {
		return errors.New("password must be at least 8 characters long")
	}

	if len(password) > 128 {
		return errors.New("password must be less than 128 characters long")
	}

	return nil
}
