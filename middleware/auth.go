package middleware

import (
	"errors"
	"fmt"
	"net/http"
	"os"
	"strings"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/golang-jwt/jwt/v5"
)

func jwtSecret() []byte {
	return []byte(os.Getenv("JWT_SECRET"))
}

// GenerateToken issues a signed JWT carrying the user's stable id.
func GenerateToken(userID string) (string, error) {
	claims := jwt.MapClaims{
		"sub": userID,
		"exp": time.Now().Add(7 * 24 * time.Hour).Unix(),
		"iat": time.Now().Unix(),
	}
	token := jwt.NewWithClaims(jwt.SigningMethodHS256, claims)
	return token.SignedString(jwtSecret())
}

func decodeToken(tokenString string) (string, error) {
	token, err := jwt.Parse(tokenString, func(t *jwt.Token) (interface{}, error) {
		if _, ok := t.Method.(*jwt.SigningMethodHMAC); !ok {
			return nil, fmt.Errorf("unexpected signing method: %v", t.Header["alg"])
		}
		return jwtSecret(), nil
	})
	if err != nil {
		return "", err
	}
	claims, ok := token.Claims.(jwt.MapClaims)
	if !ok || !token.Valid {
		return "", errors.New("invalid token")
	}
	sub, ok := claims["sub"].(string)
	if !ok || sub == "" {
		return "", errors.New("token has no subject")
	}
	return sub, nil
}

// JWT_decoder extracts the authenticated user id from the Authorization
// header of a request. Aborts with 401 on failure.
func JWT_decoder(c *gin.Context) (userID string, err error) {
	header := c.GetHeader("Authorization")
	if header == "" {
		c.AbortWithStatusJSON(http.StatusUnauthorized, gin.H{"error": "missing bearer token"})
		return "", errors.New("missing bearer token")
	}
	userID, err = decodeToken(strings.TrimPrefix(header, "Bearer "))
	if err != nil {
		c.AbortWithStatusJSON(http.StatusUnauthorized, gin.H{"error": "invalid token"})
		return "", err
	}
	return userID, nil
}

// Socketio_JWT_decoder extracts the authenticated user id from a
// socket.io handshake's auth data.
func Socketio_JWT_decoder(authData map[string]interface{}) (userID string, err error) {
	tokenString, ok := authData["authorization"].(string)
	if !ok || tokenString == "" {
		return "", errors.New("missing authorization token")
	}
	return decodeToken(strings.TrimPrefix(tokenString, "Bearer "))
}

// AuthRequired gates a route group on a valid JWT.
func AuthRequired(c *gin.Context) {
	if _, err := JWT_decoder(c); err != nil {
		// JWT_decoder already aborted with the appropriate error code
		return
	}
	c.Next()
}
