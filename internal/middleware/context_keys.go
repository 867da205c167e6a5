package middleware

import "github.com/gin-gonic/gin"

// userIDKey and sessionIDKey hold the authenticated identity in both the Gin
// context and the request context.
const (
	userIDKey    = contextKey("userID")
	sessionIDKey = contextKey("sessionID")
)

// GetUserIDFromContext retrieves the authenticated user ID from the Gin context.
// It returns the user ID and a boolean indicating if it was found.
func GetUserIDFromContext(c *gin.Context) (string, bool) {
	return lookupString(c, userIDKey)
}

// GetSessionIDFromContext retrieves the session (token jti) of the current request.
func GetSessionIDFromContext(c *gin.Context) (string, bool) {
	return lookupString(c, sessionIDKey)
}

func lookupString(c *gin.Context, key contextKey) (string, bool) {
	if val, exists := c.Get(string(key)); exists {
		s, ok := val.(string)
		return s, ok && s != ""
	}
	// check in the request context as well
	if s, ok := c.Request.Context().Value(key).(string); ok && s != "" {
		return s, true
	}
	return "", false
}
