// File: internal/middleware/auth.go
package middleware

import (
	"net/http"

	"cv_bank_backend/internal/auth"
	"cv_bank_backend/internal/common"
	"cv_bank_backend/internal/guard"
	"cv_bank_backend/internal/session"

	"github.com/gin-gonic/gin"
	"go.uber.org/zap"
)

// SessionAuth resolves the bearer token into a session state and stores it
// in the request context. Requests without a valid session are rejected with
// 401 carrying the login redirect, mirroring the guard's unauthenticated
// rule.
func SessionAuth(gateway auth.Gateway, logger *zap.Logger) gin.HandlerFunc {
	return func(c *gin.Context) {
		handle := common.GetTokenFromContext(c)
		if handle == "" {
			common.RespondWithError(c, common.ErrUnauthorized.WithDetails(gin.H{
				"message":     "Authorization header with a bearer token is required.",
				"redirect_to": guard.PathLogin,
			}))
			return
		}

		state, err := gateway.CheckSession(c.Request.Context(), handle)
		if err != nil {
			// Gateways degrade outages to (nil, nil); an error here is a
			// genuine fault.
			logger.Error("session check failed", zap.Error(err))
			common.RespondWithError(c, common.ErrInternalServer.WithDetails("Could not verify the session."))
			return
		}
		if state == nil {
			common.RespondWithError(c, common.ErrUnauthorized.WithDetails(gin.H{
				"message":     "The session is invalid or has expired.",
				"redirect_to": guard.PathLogin,
			}))
			return
		}

		c.Set(common.SessionKey, state)
		c.Set(common.UserIDKey, state.UserID)
		c.Set(common.UserRoleKey, state.Role)

		logger.Debug("session resolved",
			zap.String("userID", state.UserID.String()),
			zap.String("role", state.Role),
		)
		c.Next()
	}
}

// NoRoute answers unmatched paths with the wildcard landing rule: admins to
// the admin dashboard, other authenticated sessions to their profile,
// everyone else to login. The session is resolved best effort; a failed
// check lands on login like any signed-out caller.
func NoRoute(gateway auth.Gateway, logger *zap.Logger) gin.HandlerFunc {
	return func(c *gin.Context) {
		var state *session.State
		if handle := common.GetTokenFromContext(c); handle != "" {
			resolved, err := gateway.CheckSession(c.Request.Context(), handle)
			if err != nil {
				logger.Warn("session check failed on unmatched path", zap.Error(err))
			} else {
				state = resolved
			}
		}
		decision := guard.ResolveUnmatched(state)
		common.RespondWithError(c, common.ErrNotFound.WithDetails(gin.H{
			"message":     "The requested endpoint does not exist.",
			"redirect_to": decision.RedirectTo,
		}))
	}
}

// RequireClass enforces an access-guard route class on top of SessionAuth.
// Denials map to 403 with the redirect the guard decided.
func RequireClass(class guard.RouteClass) gin.HandlerFunc {
	return func(c *gin.Context) {
		state := common.GetSessionFromContext(c)
		decision := guard.Resolve(class, state)
		if decision.Allowed {
			c.Next()
			return
		}

		status := http.StatusForbidden
		apiErr := common.ErrForbidden
		if decision.RedirectTo == guard.PathLogin {
			status = http.StatusUnauthorized
			apiErr = common.ErrUnauthorized
		}
		detailed := apiErr.WithDetails(gin.H{
			"message":     "Access to this resource is denied.",
			"redirect_to": decision.RedirectTo,
		})
		c.AbortWithStatusJSON(status, detailed)
	}
}
