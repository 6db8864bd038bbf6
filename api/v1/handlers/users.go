package handlers

import (
	"encoding/json"
	"errors"
	"net/http"
	"strconv"

	"github.com/go-chi/chi/v5"
	"github.com/mwalden2/inkwell/api/v1/auth"
	"github.com/mwalden2/inkwell/api/v1/database"
	"github.com/mwalden2/inkwell/api/v1/middleware"
	"github.com/mwalden2/inkwell/api/v1/models"
	"github.com/mwalden2/inkwell/api/v1/policy"
)

// UserHandler serves the authenticated user CRUD surface
type UserHandler struct {
	Users    UserStore
	Articles ArticleStore
}

// parsePagination reads skip/limit query parameters with the same defaults
// everywhere (skip=0, limit=100).
func parsePagination(r *http.Request) (int, int) {
	skip := 0
	limit := 100

	if v := r.URL.Query().Get("skip"); v != "" {
		if n, err := strconv.Atoi(v); err == nil && n >= 0 {
			skip = n
		}
	}
	if v := r.URL.Query().Get("limit"); v != "" {
		if n, err := strconv.Atoi(v); err == nil && n > 0 && n <= 100 {
			limit = n
		}
	}

	return skip, limit
}

func parseIDParam(r *http.Request) (int64, error) {
	idStr := chi.URLParam(r, "id")
	id, err := strconv.ParseInt(idStr, 10, 64)
	if err != nil || id <= 0 {
		return 0, errors.New("invalid ID")
	}
	return id, nil
}

// GetUsers lists users with offset/limit
func (h *UserHandler) GetUsers(w http.ResponseWriter, r *http.Request) {
	w.Header().Set("Content-Type", "application/json")

	skip, limit := parsePagination(r)

	users, err := h.Users.ListUsers(r.Context(), skip, limit)
	if err != nil {
		SendError(w, "Unable to process request at this time", http.StatusInternalServerError)
		return
	}

	w.WriteHeader(http.StatusOK)
	json.NewEncoder(w).Encode(users)
}

// GetUser retrieves a single user by ID
func (h *UserHandler) GetUser(w http.ResponseWriter, r *http.Request) {
	w.Header().Set("Content-Type", "application/json")

	userID, err := parseIDParam(r)
	if err != nil {
		SendError(w, "Invalid user ID", http.StatusBadRequest)
		return
	}

	user, err := h.Users.GetUser(r.Context(), userID)
	if err != nil {
		switch {
		case database.IsUserNotFoundError(err):
			SendError(w, "User not found", http.StatusNotFound)
		default:
			SendError(w, "Unable to process request at this time", http.StatusInternalServerError)
		}
		return
	}

	w.WriteHeader(http.StatusOK)
	json.NewEncoder(w).Encode(user)
}

// UpdateUser applies a merge-patch to a user record. Only the account owner
// may update it.
func (h *UserHandler) UpdateUser(w http.ResponseWriter, r *http.Request) {
	w.Header().Set("Content-Type", "application/json")

	actor, ok := middleware.GetUserFromContext(r.Context())
	if !ok {
		SendError(w, "Authentication required", http.StatusUnauthorized)
		return
	}

	userID, err := parseIDParam(r)
	if err != nil {
		SendError(w, "Invalid user ID", http.StatusBadRequest)
		return
	}

	if !policy.Allow(actor.ID, userID, policy.KindUser, policy.ActionUpdate) {
		SendError(w, "Not enough permissions", http.StatusForbidden)
		return
	}

	var req models.UserUpdate
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		SendError(w, "Invalid JSON format", http.StatusBadRequest)
		return
	}

	patch := &database.UserPatch{
		Username: req.Username,
		Email:    req.Email,
		IsActive: req.IsActive,
	}

	if req.Username != nil {
		if err := validateUsername(*req.Username); err != nil {
			SendError(w, err.Error(), http.StatusBadRequest)
			return
		}
	}
	if req.Email != nil {
		if err := validateEmail(*req.Email); err != nil {
			SendError(w, err.Error(), http.StatusBadRequest)
			return
		}
	}
	if req.Password != nil {
		if err := validatePassword(*req.Password); err != nil {
			SendError(w, err.Error(), http.StatusBadRequest)
			return
		}
		hashed, err := auth.HashPassword(*req.Password)
		if err != nil {
			SendError(w, "Failed to process password", http.StatusInternalServerError)
			return
		}
		patch.HashedPassword = &hashed
	}

	user, err := h.Users.UpdateUser(r.Context(), userID, patch)
	if err != nil {
		switch {
		case database.IsUserNotFoundError(err):
			SendError(w, "User not found", http.StatusNotFound)
		case database.IsUsernameExistsError(err):
			SendError(w, "Username already registered", http.StatusConflict)
		case database.IsEmailExistsError(err):
			SendError(w, "Email already registered", http.StatusConflict)
		default:
			SendError(w, "Unable to process request at this time", http.StatusInternalServerError)
		}
		return
	}

	w.WriteHeader(http.StatusOK)
	json.NewEncoder(w).Encode(user)
}

// DeleteUser removes a user account and all articles it owns.
func (h *UserHandler) DeleteUser(w http.ResponseWriter, r *http.Request) {
	w.Header().Set("Content-Type", "application/json")

	actor, ok := middleware.GetUserFromContext(r.Context())
	if !ok {
		SendError(w, "Authentication required", http.StatusUnauthorized)
		return
	}

	userID, err := parseIDParam(r)
	if err != nil {
		SendError(w, "Invalid user ID", http.StatusBadRequest)
		return
	}

	if !policy.Allow(actor.ID, userID, policy.KindUser, policy.ActionDelete) {
		SendError(w, "Not enough permissions", http.StatusForbidden)
		return
	}

	err = h.Users.DeleteUser(r.Context(), userID)
	if err != nil {
		switch {
		case database.IsUserNotFoundError(err):
			SendError(w, "User not found", http.StatusNotFound)
		default:
			SendError(w, "Unable to process request at this time", http.StatusInternalServerError)
		}
		return
	}

	w.WriteHeader(http.StatusNoContent)
}

// GetUserArticles lists all articles owned by a user
func (h *UserHandler) GetUserArticles(w http.ResponseWriter, r *http.Request) {
	w.Header().Set("Content-Type", "application/json")

	userID, err := parseIDParam(r)
	if err != nil {
		SendError(w, "Invalid user ID", http.StatusBadRequest)
		return
	}

	if _, err := h.Users.GetUser(r.Context(), userID); err != nil {
		switch {
		case database.IsUserNotFoundError(err):
			SendError(w, "User not found", http.StatusNotFound)
		default:
			SendError(w, "Unable to process request at this time", http.StatusInternalServerError)
		}
		return
	}

	skip, limit := parsePagination(r)

	articles, err := h.Articles.ListArticlesByAuthor(r.Context(), userID, skip, limit)
	if err != nil {
		SendError(w, "Unable to process request at this time", http.StatusInternalServerError)
		return
	}

	w.WriteHeader(http.StatusOK)
	json.NewEncoder(w).Encode(articles)
}
