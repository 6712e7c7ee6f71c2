// Package security provides JWT token utilities
package security

import (
	"errors"
	"time"

	"github.com/AtRiskMedia/profilestack-go/internal/domain/user"
	"github.com/golang-jwt/jwt/v4"
)

// ValidateJWT validates a JWT token and returns the claims
func ValidateJWT(tokenString, jwtSecret string) (jwt.MapClaims, error) {
	token, err := jwt.Parse(tokenString, func(token *jwt.Token) (any, error) {
		if _, ok := token.Method.(*jwt.SigningMethodHMAC); !ok {
			return nil, errors.New("unexpected signing method")
		}
		return []byte(jwtSecret), nil
	})
	if err != nil {
		return nil, err
	}
	if claims, ok := token.Claims.(jwt.MapClaims); ok && token.Valid {
		return claims, nil
	}
	return nil, errors.New("invalid token")
}

// GenerateSessionToken creates a signed session JWT for an authenticated user.
func GenerateSessionToken(authUser *user.AuthUser, jwtSecret string, ttl time.Duration) (string, error) {
	if jwtSecret == "" {
		return "", errors.New("jwt secret is not configured")
	}

	now := time.Now()
	claims := jwt.MapClaims{
		"sub":         authUser.UID,
		"email":       authUser.Email,
		"displayName": authUser.DisplayName,
		"iat":         now.Unix(),
		"exp":         now.Add(ttl).Unix(),
	}
	if authUser.PhotoURL != nil {
		claims["photoURL"] = *authUser.PhotoURL
	}

	token := jwt.NewWithClaims(jwt.SigningMethodHS256, claims)
	return token.SignedString([]byte(jwtSecret))
}

// GetAuthUserFromClaims extracts the authenticated user from session claims.
func GetAuthUserFromClaims(claims jwt.MapClaims) *user.AuthUser {
	uid, ok := claims["sub"].(string)
	if !ok || uid == "" {
		return nil
	}

	authUser := &user.AuthUser{UID: uid}
	if email, ok := claims["email"].(string); ok {
		authUser.Email = email
	}
	if displayName, ok := claims["displayName"].(string); ok {
		authUser.DisplayName = displayName
	}
	if photoURL, ok := claims["photoURL"].(string); ok {
		authUser.PhotoURL = &photoURL
	}
	return authUser
}
