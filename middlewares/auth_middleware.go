package middlewares

import (
	"errors"
	"net/http"
	"strings"

	"github.com/gin-gonic/gin"
	"github.com/senpow/italy-restaurant-booking/utils"
)

// Context keys set by AuthMiddleware.
const (
	ContextUserID = "user_id"
	ContextName   = "name"
	ContextEmail  = "email"
	ContextAdmin  = "admin"
)

// AuthMiddleware accepts a bearer token in the Authorization header, or in the
// token query parameter for websocket upgrades. isAdminEmail grants the admin
// role to staff accounts whose token carries no admin claim.
func AuthMiddleware(jwtManager *utils.JWTManager, isAdminEmail func(string) bool) gin.HandlerFunc {
	return func(c *gin.Context) {
		tokenString := c.Query("token")
		if authHeader := c.GetHeader("Authorization"); authHeader != "" {
			if !strings.HasPrefix(authHeader, "Bearer ") {
				utils.RespondError(c, http.StatusUnauthorized, errors.New("Invalid authorization header format"))
				c.Abort()
				return
			}
			tokenString = strings.TrimPrefix(authHeader, "Bearer ")
		}
		if tokenString == "" {
			utils.RespondError(c, http.StatusUnauthorized, errors.New("Authorization header missing"))
			c.Abort()
			return
		}

		claims, err := jwtManager.ParseToken(tokenString)
		if err != nil {
			utils.RespondError(c, http.StatusUnauthorized, errors.New("Invalid or expired token"))
			c.Abort()
			return
		}

		admin := claims.Admin || (isAdminEmail != nil && isAdminEmail(claims.Email))

		c.Set(ContextUserID, claims.UserID)
		c.Set(ContextName, claims.Name)
		c.Set(ContextEmail, claims.Email)
		c.Set(ContextAdmin, admin)

		c.Next()
	}
}
