package middlewares

import (
	"crypto/subtle"
	"net/http"

	"github.com/gin-gonic/gin"
	"github.com/senpow/italy-restaurant-booking/utils"
	"golang.org/x/crypto/bcrypt"
)

const APIKeyHeader = "x-api-key"

// APIKeyMiddleware checks the shared secret of the voice agent. A bcrypt hash
// takes precedence over the plain key. With neither configured every call is
// rejected.
func APIKeyMiddleware(plainKey, keyHash string) gin.HandlerFunc {
	return func(c *gin.Context) {
		provided := c.GetHeader(APIKeyHeader)
		if provided == "" || !validAPIKey(provided, plainKey, keyHash) {
			utils.InfoLogger.Printf("Rejected API call from %s: invalid or missing API key", c.ClientIP())
			c.AbortWithStatusJSON(http.StatusUnauthorized, gin.H{
				"error":   "Unauthorized",
				"message": "Invalid or missing API key",
			})
			return
		}
		c.Next()
	}
}

func validAPIKey(provided, plainKey, keyHash string) bool {
	if keyHash != "" {
		return bcrypt.CompareHashAndPassword([]byte(keyHash), []byte(provided)) == nil
	}
	if plainKey == "" {
		return false
	}
	return subtle.ConstantTimeCompare([]byte(provided), []byte(plainKey)) == 1
}
