package utils

import (
	"github.com/gin-gonic/gin"
)

// Principal is the authenticated caller.
type Principal struct {
	UserID   uint   `json:"user_id"`
	Username string `json:"username"`
	Role     string `json:"role"`
	Section  string `json:"section"`
}

func (p *Principal) IsAdmin() bool {
	return p != nil && p.Role == "admin"
}

type contextKey string

const UserContextKey contextKey = "user"

func SetUser(c *gin.Context, p *Principal) {
	c.Set(string(UserContextKey), p)
}

func GetUser(c *gin.Context) *Principal {
	user, exists := c.Get(string(UserContextKey))
	if !exists {
		return nil
	}
	if principal, ok := user.(*Principal); ok {
		return principal
	}
	return nil
}
