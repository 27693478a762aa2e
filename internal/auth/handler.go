// File: internal/auth/handler.go
package auth

import (
	"errors"

	"cv_bank_backend/internal/common"

	"github.com/gin-gonic/gin"
	"github.com/go-playground/validator/v10"
	"go.uber.org/zap"
)

// Handler exposes the authentication routes.
type Handler struct {
	gateway Gateway
	logger  *zap.Logger
}

// NewHandler creates a new auth handler.
func NewHandler(gateway Gateway, logger *zap.Logger) *Handler {
	return &Handler{gateway: gateway, logger: logger}
}

// RegisterRoutes sets up the auth routes. Register and login are public;
// session and logout require a bearer token.
func (h *Handler) RegisterRoutes(router *gin.RouterGroup, authMW gin.HandlerFunc) {
	authGroup := router.Group("/auth")
	{
		authGroup.POST("/register", h.register)
		authGroup.POST("/login", h.login)

		authed := authGroup.Group("")
		authed.Use(authMW)
		{
			authed.GET("/session", h.checkSession)
			authed.POST("/logout", h.logout)
		}
	}
}

func (h *Handler) register(c *gin.Context) {
	var req RegisterRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		var validationErrs validator.ValidationErrors
		if errors.As(err, &validationErrs) {
			common.RespondWithError(c, common.NewValidationAPIError(common.FormatValidationErrors(validationErrs)))
		} else {
			common.RespondWithError(c, common.ErrBadRequest.WithDetails("Invalid request payload: "+err.Error()))
		}
		return
	}

	state, err := h.gateway.Register(c.Request.Context(), req.Name, req.Email, req.Password)
	if err != nil {
		common.RespondWithError(c, err)
		return
	}
	common.RespondCreated(c, "Account created successfully.", ToSessionResponse(state))
}

func (h *Handler) login(c *gin.Context) {
	var req LoginRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		var validationErrs validator.ValidationErrors
		if errors.As(err, &validationErrs) {
			common.RespondWithError(c, common.NewValidationAPIError(common.FormatValidationErrors(validationErrs)))
		} else {
			common.RespondWithError(c, common.ErrBadRequest.WithDetails("Invalid request payload: "+err.Error()))
		}
		return
	}

	state, err := h.gateway.Login(c.Request.Context(), Credentials{
		Email:    req.Email,
		Password: req.Password,
		IDToken:  req.IDToken,
	})
	if err != nil {
		common.RespondWithError(c, err)
		return
	}
	common.RespondOK(c, "Signed in successfully.", ToSessionResponse(state))
}

// checkSession reports the session the middleware already resolved. The
// middleware refreshed it, so this is a pure read.
func (h *Handler) checkSession(c *gin.Context) {
	state := common.GetSessionFromContext(c)
	if state == nil {
		common.RespondWithError(c, common.ErrUnauthorized.WithDetails("No active session."))
		return
	}
	common.RespondOK(c, "Session is active.", ToSessionResponse(state))
}

func (h *Handler) logout(c *gin.Context) {
	handle := common.GetTokenFromContext(c)
	if err := h.gateway.Logout(c.Request.Context(), handle); err != nil {
		common.RespondWithError(c, err)
		return
	}
	common.RespondOK(c, "Signed out successfully.", nil)
}
