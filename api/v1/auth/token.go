package auth

import (
	"errors"
	"fmt"
	"time"

	"github.com/golang-jwt/jwt/v5"
)

const issuer = "inkwell-api"

var (
	ErrTokenExpired   = errors.New("token has expired")
	ErrTokenMalformed = errors.New("token is malformed")
	ErrTokenInvalid   = errors.New("token is invalid")
)

// Claims represents JWT token claims
type Claims struct {
	UserID int64 `json:"user_id"`
	jwt.RegisteredClaims
}

// GenerateToken creates a signed JWT for the given user ID, expiring after ttl.
func GenerateToken(userID int64, secret []byte, ttl time.Duration) (string, error) {
	if userID <= 0 {
		return "", errors.New("user ID must be positive")
	}

	now := time.Now()
	claims := &Claims{
		UserID: userID,
		RegisteredClaims: jwt.RegisteredClaims{
			ExpiresAt: jwt.NewNumericDate(now.Add(ttl)),
			IssuedAt:  jwt.NewNumericDate(now),
			Issuer:    issuer,
			Subject:   fmt.Sprintf("%d", userID),
		},
	}

	token := jwt.NewWithClaims(jwt.SigningMethodHS256, claims)
	signedToken, err := token.SignedString(secret)
	if err != nil {
		return "", fmt.Errorf("failed to sign token: %w", err)
	}

	return signedToken, nil
}

// ValidateToken verifies signature and expiry, returning the subject user ID.
// All failures are terminal: ErrTokenMalformed for unparseable input,
// ErrTokenExpired once the expiry has passed, ErrTokenInvalid otherwise.
func ValidateToken(tokenString string, secret []byte) (int64, error) {
	if tokenString == "" {
		return 0, ErrTokenMalformed
	}

	claims := &Claims{}
	token, err := jwt.ParseWithClaims(tokenString, claims, func(token *jwt.Token) (interface{}, error) {
		if _, ok := token.Method.(*jwt.SigningMethodHMAC); !ok {
			return nil, fmt.Errorf("unexpected signing method: %v", token.Header["alg"])
		}
		return secret, nil
	})
	if err != nil {
		switch {
		case errors.Is(err, jwt.ErrTokenMalformed):
			return 0, ErrTokenMalformed
		case errors.Is(err, jwt.ErrTokenExpired):
			return 0, ErrTokenExpired
		default:
			return 0, ErrTokenInvalid
		}
	}

	if !token.Valid || claims.UserID <= 0 {
		return 0, ErrTokenInvalid
	}

	return claims.UserID, nil
}
