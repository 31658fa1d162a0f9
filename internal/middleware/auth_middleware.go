package middleware

import (
	"errors"
	"net/http"

	"github.com/gin-gonic/gin"
	"github.com/lsa-mis/student-visit-api/internal/app/models"
	"github.com/lsa-mis/student-visit-api/internal/app/models/dto"
	"github.com/lsa-mis/student-visit-api/internal/app/policy"
	"github.com/lsa-mis/student-visit-api/internal/pkg/auth"
)

// actorKey is the gin context key the authenticated actor is stored under
const actorKey = "actor"

// AuthMiddleware validates bearer tokens and attaches the acting principal
type AuthMiddleware struct {
	jwtService *auth.JWTService
}

// NewAuthMiddleware creates a new AuthMiddleware
func NewAuthMiddleware(jwtService *auth.JWTService) *AuthMiddleware {
	return &AuthMiddleware{jwtService: jwtService}
}

// JWTAuth validates the Authorization header and stores the actor in the
// request context. Requests without a valid token are rejected with 401.
func (m *AuthMiddleware) JWTAuth() gin.HandlerFunc {
	return func(c *gin.Context) {
		tokenString, err := auth.ExtractBearerToken(c.GetHeader("Authorization"))
		if err != nil {
			abortUnauthorized(c, "Authentication required")
			return
		}

		claims, err := m.jwtService.ValidateAndExtractClaims(tokenString)
		if err != nil {
			if errors.Is(err, auth.ErrExpiredToken) {
				abortWithError(c, http.StatusUnauthorized, dto.ErrorCodeExpiredToken, "Token expired")
				return
			}
			abortWithError(c, http.StatusUnauthorized, dto.ErrorCodeInvalidToken, "Invalid token")
			return
		}

		actor := policy.NewActor(claims.UserID, models.RoleType(claims.RoleType), claims.DepartmentID)
		c.Set(actorKey, actor)
		c.Next()
	}
}

// RequireRoles rejects authenticated actors whose role is not in the allowed
// set. Runs after JWTAuth.
func (m *AuthMiddleware) RequireRoles(roles ...models.RoleType) gin.HandlerFunc {
	return func(c *gin.Context) {
		actor := ActorFromContext(c)
		if !actor.Authenticated() {
			abortUnauthorized(c, "Authentication required")
			return
		}

		for _, role := range roles {
			if actor.Role == role {
				c.Next()
				return
			}
		}

		abortWithError(c, http.StatusForbidden, dto.ErrorCodeForbidden, "Permission denied")
	}
}

// ActorFromContext returns the authenticated actor for the request, or the
// anonymous actor if authentication did not run.
func ActorFromContext(c *gin.Context) policy.Actor {
	if v, ok := c.Get(actorKey); ok {
		if actor, ok := v.(policy.Actor); ok {
			return actor
		}
	}
	return policy.Anonymous
}

func abortUnauthorized(c *gin.Context, message string) {
	abortWithError(c, http.StatusUnauthorized, dto.ErrorCodeUnauthorized, message)
}

func abortWithError(c *gin.Context, status int, code dto.ErrorCode, message string) {
	c.AbortWithStatusJSON(status, dto.NewErrorResponse(dto.NewErrorDetail(code, message)))
}
