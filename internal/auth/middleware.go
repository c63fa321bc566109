package auth

import (
	"errors"
	"net/http"
	"strings"

	"github.com/gin-gonic/gin"
	"github.com/golang-jwt/jwt/v5"
)

const identityKey = "identity"

const (
	RoleSuperadmin = "superadmin"
	RoleAdmin      = "admin"
	RoleCustomer   = "customer"
)

var ErrNoIdentity = errors.New("no identity in request context")

// Identity adalah hasil resolusi token oleh auth collaborator.
// Core ini mempercayai user_id dan role di dalamnya.
type Identity struct {
	UserID string
	Role   string
}

func (i Identity) IsAdmin() bool {
	return i.Role == RoleAdmin || i.Role == RoleSuperadmin
}

// Authenticate memvalidasi bearer token dan menaruh Identity di context.
// Penerbitan token dilakukan oleh layanan auth eksternal dengan secret yang sama.
func Authenticate(secret []byte) gin.HandlerFunc {
	return func(c *gin.Context) {
		header := c.GetHeader("Authorization")
		if !strings.HasPrefix(header, "Bearer ") {
			c.AbortWithStatusJSON(http.StatusUnauthorized, gin.H{"error": "Missing or malformed authorization header"})
			return
		}
		tokenString := strings.TrimPrefix(header, "Bearer ")

		token, err := jwt.Parse(tokenString, func(t *jwt.Token) (interface{}, error) {
			if _, ok := t.Method.(*jwt.SigningMethodHMAC); !ok {
				return nil, errors.New("unexpected signing method")
			}
			return secret, nil
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

		userID, _ := claims["user_id"].(string)
		role, _ := claims["role"].(string)
		if userID == "" || role == "" {
			c.AbortWithStatusJSON(http.StatusUnauthorized, gin.H{"error": "Token missing user_id or role claim"})
			return
		}

		c.Set(identityKey, Identity{UserID: userID, Role: role})
		c.Next()
	}
}

func IdentityFromContext(c *gin.Context) (Identity, error) {
	val, exists := c.Get(identityKey)
	if !exists {
		return Identity{}, ErrNoIdentity
	}
	id, ok := val.(Identity)
	if !ok {
		return Identity{}, ErrNoIdentity
	}
	return id, nil
}
