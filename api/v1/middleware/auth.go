package middleware

import (
	"context"
	"encoding/json"
	"fmt"
	"net/http"
	"strings"

	"github.com/mwalden2/inkwell/api/v1/auth"
	"github.com/mwalden2/inkwell/api/v1/database"
	"github.com/mwalden2/inkwell/api/v1/models"
)

type contextKey string

const UserContextKey contextKey = "user"

// UserLoader loads the user record referenced by a validated token.
type UserLoader interface {
	GetUser(ctx context.Context, userID int64) (*models.User, error)
}

// AuthMiddleware resolves the authenticated actor from a bearer token
type AuthMiddleware struct {
	Users     UserLoader
	JWTSecret []byte
}

// ErrorResponse represents a JSON error response
type ErrorResponse struct {
	Error   string `json:"error"`
	Message string `json:"message,omitempty"`
}

func NewAuthMiddleware(users UserLoader, jwtSecret string) *AuthMiddleware {
	return &AuthMiddleware{
		Users:     users,
		JWTSecret: []byte(jwtSecret),
	}
}

// RequireAuth validates the bearer token and reloads the referenced user on
// every request, so a deleted account loses access immediately. The token is
// a capability check only; the user record in the context is the actor for
// the rest of request processing.
func (am *AuthMiddleware) RequireAuth(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		authHeader := r.Header.Get("Authorization")
		if authHeader == "" {
			am.sendChallenge(w, "Missing authorization header")
			return
		}

		bearerToken := strings.Fields(authHeader)
		if len(bearerToken) != 2 || !strings.EqualFold(bearerToken[0], "Bearer") {
			am.sendChallenge(w, "Invalid authorization header format. Expected 'Bearer <token>'")
			return
		}

		userID, err := auth.ValidateToken(bearerToken[1], am.JWTSecret)
		if err != nil {
			// expired, malformed and invalid all end the same way
			am.sendChallenge(w, fmt.Sprintf("Invalid token: %s", err.Error()))
			return
		}

		user, err := am.Users.GetUser(r.Context(), userID)
		if err != nil {
			if database.IsUserNotFoundError(err) {
				am.sendChallenge(w, "User not found")
				return
			}
			am.sendError(w, "Unable to verify user", http.StatusInternalServerError)
			return
		}

		ctx := context.WithValue(r.Context(), UserContextKey, user)
		next.ServeHTTP(w, r.WithContext(ctx))
	})
}

// GetUserFromContext retrieves the authenticated user from the request context
func GetUserFromContext(ctx context.Context) (*models.User, bool) {
	user, ok := ctx.Value(UserContextKey).(*models.User)
	return user, ok
}

// sendChallenge sends a 401 with a WWW-Authenticate hint
func (am *AuthMiddleware) sendChallenge(w http.ResponseWriter, message string) {
	w.Header().Set("WWW-Authenticate", "Bearer")
	am.sendError(w, message, http.StatusUnauthorized)
}

func (am *AuthMiddleware) sendError(w http.ResponseWriter, message string, statusCode int) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(statusCode)
	response := ErrorResponse{
		Error:   http.StatusText(statusCode),
		Message: message,
	}
	json.NewEncoder(w).Encode(response)
}
