package middleware

import (
	"net/http"
	"strings"

	"github.com/gin-gonic/gin"
	"github.com/google/uuid"

	"github.com/jwalitptl/clinic-schedule/pkg/auth"
	"github.com/jwalitptl/clinic-schedule/pkg/httputil"
)

const (
	ContextClinicID = "auth_clinic_id"
	ContextSubject  = "auth_subject"
)

type AuthMiddleware struct {
	jwt auth.JWTService
}

func NewAuthMiddleware(jwt auth.JWTService) *AuthMiddleware {
	return &AuthMiddleware{jwt: jwt}
}

// Authenticate verifies the bearer token and stores its clinic in the context
func (m *AuthMiddleware) Authenticate() gin.HandlerFunc {
	return func(c *gin.Context) {
		authHeader := c.GetHeader("Authorization")
		if authHeader == "" {
			c.AbortWithStatusJSON(http.StatusUnauthorized, httputil.NewErrorResponse("missing authorization header"))
			return
		}

		parts := strings.SplitN(authHeader, " ", 2)
		if len(parts) != 2 || !strings.EqualFold(parts[0], "Bearer") {
			c.AbortWithStatusJSON(http.StatusUnauthorized, httputil.NewErrorResponse("invalid authorization format"))
			return
		}

		claims, err := m.jwt.ValidateToken(parts[1])
		if err != nil {
			_ = c.Error(err)
			c.AbortWithStatusJSON(http.StatusUnauthorized, httputil.NewErrorResponse("invalid token"))
			return
		}

		clinicID, _ := claims.Clinic()
		c.Set(ContextClinicID, clinicID)
		c.Set(ContextSubject, claims.Subject)
		c.Next()
	}
}

// RequireClinic rejects requests whose :param clinic differs from the token's
func (m *AuthMiddleware) RequireClinic(param string) gin.HandlerFunc {
	return func(c *gin.Context) {
		pathClinic, err := uuid.Parse(c.Param(param))
		if err != nil {
			c.AbortWithStatusJSON(http.StatusBadRequest, httputil.NewErrorResponse("invalid clinic ID"))
			return
		}
		if tokenClinic, ok := ClinicID(c); !ok || tokenClinic != pathClinic {
			c.AbortWithStatusJSON(http.StatusForbidden, httputil.NewErrorResponse("access to clinic denied"))
			return
		}
		c.Next()
	}
}

// ClinicID returns the clinic the authenticated token is scoped to
func ClinicID(c *gin.Context) (uuid.UUID, bool) {
	v, ok := c.Get(ContextClinicID)
	if !ok {
		return uuid.Nil, false
	}
	id, ok := v.(uuid.UUID)
	return id, ok
}
