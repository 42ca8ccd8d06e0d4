package middleware

import (
	"net/http"

	"classroom-api/internal/auth"
	"classroom-api/internal/models"
	"classroom-api/pkg/errors"

	"github.com/gin-gonic/gin"
)

type AuthMiddleware struct {
	tokenService *auth.TokenService
}

func NewAuthMiddleware(tokenService *auth.TokenService) *AuthMiddleware {
	return &AuthMiddleware{tokenService: tokenService}
}

func (m *AuthMiddleware) RequireAuth() gin.HandlerFunc {
	return func(c *gin.Context) {
		authHeader := c.GetHeader("Authorization")
		if authHeader == "" {
			c.JSON(http.StatusUnauthorized, errors.ErrorResponse{
				Error:   errors.ErrUnauthorized.Code,
				Message: "Authorization header is required",
			})
			c.Abort()
			return
		}

		tokenString, err := m.tokenService.ExtractTokenFromHeader(authHeader)
		if err != nil {
			c.JSON(http.StatusUnauthorized, errors.ErrorResponse{
				Error:   errors.ErrUnauthorized.Code,
				Message: err.Error(),
			})
			c.Abort()
			return
		}

		claims, err := m.tokenService.ValidateToken(tokenString)
		if err != nil {
			c.JSON(http.StatusUnauthorized, errors.ErrorResponse{
				Error:   errors.ErrUnauthorized.Code,
				Message: "Invalid or expired token",
			})
			c.Abort()
			return
		}

		c.Set("user_id", claims.UserID.String())
		c.Set("email", claims.Email)
		c.Set("role", string(claims.Role))

		c.Next()
	}
}

// RequireTeacher allows only teacher accounts through. Must run after
// RequireAuth.
func (m *AuthMiddleware) RequireTeacher() gin.HandlerFunc {
	return func(c *gin.Context) {
		role, _ := c.Get("role")
		if role != string(models.RoleTeacher) {
			c.JSON(http.StatusForbidden, errors.ErrorResponse{
				Error:   errors.ErrForbidden.Code,
				Message: "Teacher role required",
			})
			c.Abort()
			return
		}
		c.Next()
	}
}
