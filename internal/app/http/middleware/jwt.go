package middleware

import (
	"fmt"
	"net/http"
	"strings"
	"time"

	"fieldops-app/config"

	"github.com/gin-gonic/gin"
	"github.com/golang-jwt/jwt/v5"
)

const (
	tokenTTL = 24 * time.Hour

	// tokens with less than this left are reissued through X-New-Token
	renewWindow = 2 * time.Hour
)

// Identity is what a token says about its bearer.
type Identity struct {
	UserID     uint
	Email      string
	Role       string
	EmployeeID uint
}

// IssueToken signs a token for id with the configured secret.
func IssueToken(id Identity) (string, error) {
	secret := []byte(config.App.JWTSecret)
	if len(secret) == 0 {
		return "", fmt.Errorf("JWT secret not configured")
	}
	t := jwt.NewWithClaims(jwt.SigningMethodHS256, jwt.MapClaims{
		"user_id":     id.UserID,
		"email":       id.Email,
		"role":        id.Role,
		"employee_id": id.EmployeeID,
		"exp":         time.Now().Add(tokenTTL).Unix(),
	})
	return t.SignedString(secret)
}

func AuthMiddleware() gin.HandlerFunc {
	return func(c *gin.Context) {
		jwtKey := []byte(config.App.JWTSecret)
		if len(jwtKey) == 0 {
			c.AbortWithStatusJSON(http.StatusInternalServerError, gin.H{"error": "JWT secret not configured"})
			return
		}
		authHeader := c.GetHeader("Authorization")
		if authHeader == "" {
			c.AbortWithStatusJSON(http.StatusUnauthorized, gin.H{"error": "Authorization header missing"})
			return
		}

		tokenString := strings.TrimPrefix(authHeader, "Bearer ")
		if tokenString == authHeader {
			c.AbortWithStatusJSON(http.StatusUnauthorized, gin.H{"error": "Bearer token malformed"})
			return
		}

		token, err := jwt.Parse(strings.TrimSpace(tokenString), func(token *jwt.Token) (interface{}, error) {
			if _, ok := token.Method.(*jwt.SigningMethodHMAC); !ok {
				return nil, fmt.Errorf("unexpected signing method: %v", token.Header["alg"])
			}
			return jwtKey, nil
		})
		if err != nil || !token.Valid {
			c.AbortWithStatusJSON(http.StatusUnauthorized, gin.H{"error": "Invalid or expired token"})
			return
		}

		claims, ok := token.Claims.(jwt.MapClaims)
		if !ok {
			c.AbortWithStatusJSON(http.StatusUnauthorized, gin.H{"error": "Invalid token claims"})
			return
		}

		id := Identity{}
		if email, ok := claims["email"].(string); ok {
			id.Email = email
			c.Set("email", email)
		}
		if role, ok := claims["role"].(string); ok {
			id.Role = role
			c.Set("role", role)
		}
		if v, ok := claims["user_id"].(float64); ok {
			id.UserID = uint(v)
			c.Set("user_id", id.UserID)
		}
		if v, ok := claims["employee_id"].(float64); ok && v > 0 {
			id.EmployeeID = uint(v)
			c.Set("employee_id", id.EmployeeID)
		}
		if id.UserID == 0 {
			c.AbortWithStatusJSON(http.StatusUnauthorized, gin.H{"error": "Invalid token claims"})
			return
		}

		if exp, err := claims.GetExpirationTime(); err == nil && exp != nil && time.Until(exp.Time) < renewWindow {
			if renewed, err := IssueToken(id); err == nil {
				c.Header("X-New-Token", renewed)
			}
		}

		c.Next()
	}
}

func RequireRole(role string) gin.HandlerFunc {
	return func(c *gin.Context) {
		value, exists := c.Get("role")
		if !exists {
			c.AbortWithStatusJSON(http.StatusUnauthorized, gin.H{"error": "Role not found in token"})
			return
		}

		if value != role {
			c.AbortWithStatusJSON(http.StatusForbidden, gin.H{"error": "Access denied"})
			return
		}

		c.Next()
	}
}
