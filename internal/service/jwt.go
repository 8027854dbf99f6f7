package service

import (
	"errors"
	"time"

	"github.com/golang-jwt/jwt/v5"
)

var (
	ErrInvalidToken = errors.New("invalid token")
	ErrNoJWTSecret  = errors.New("jwt secret not initialized")
)

var jwtSecret []byte

// InitJWT sets the HMAC secret used to sign and verify tokens.
func InitJWT(secret string) {
	jwtSecret = []byte(secret)
}

// GenerateJWT issues a token for userID. The display name is carried as the
// "name" claim when non-empty.
func GenerateJWT(userID int64, name string, ttl time.Duration) (string, error) {
	if len(jwtSecret) == 0 {
		return "", ErrNoJWTSecret
	}
	now := time.Now()
	claims := jwt.MapClaims{
		"user_id": userID,
		"exp":     now.Add(ttl).Unix(),
		"iat":     now.Unix(),
		"nbf":     now.Unix(),
	}
	if name != "" {
		claims["name"] = name
	}

	token := jwt.NewWithClaims(jwt.SigningMethodHS256, claims)
	return token.SignedString(jwtSecret)
}

// Identity is what the transport layer learns from a verified token.
type Identity struct {
	UserID int64
	Name   string
}

// ParseJWT verifies tokenString and extracts the identity.
func ParseJWT(tokenString string) (Identity, error) {
	if len(jwtSecret) == 0 {
		return Identity{}, ErrNoJWTSecret
	}

	token, err := jwt.Parse(tokenString, func(t *jwt.Token) (interface{}, error) {
		if _, ok := t.Method.(*jwt.SigningMethodHMAC); !ok {
			return nil, errors.New("unexpected signing method")
		}
		return jwtSecret, nil
	}, jwt.WithExpirationRequired())
	if err != nil || !token.Valid {
		return Identity{}, ErrInvalidToken
	}

	claims, ok := token.Claims.(jwt.MapClaims)
	if !ok {
		return Identity{}, ErrInvalidToken
	}

	userID, ok := claims["user_id"].(float64)
	if !ok || userID <= 0 {
		return Identity{}, errors.New("user_id not found")
	}

	name, _ := claims["name"].(string)
	return Identity{UserID: int64(userID), Name: name}, nil
}
