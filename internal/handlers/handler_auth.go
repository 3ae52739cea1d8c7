package handlers

import (
	"log/slog"
	"net/http"

	"github.com/gin-gonic/gin"
	"github.com/ulule/limiter/v3"

	"github.com/orcaplan/orcaplan-backend/internal/core/domain"
	portssvc "github.com/orcaplan/orcaplan-backend/internal/core/ports/services"
	"github.com/orcaplan/orcaplan-backend/internal/dto"
	"github.com/orcaplan/orcaplan-backend/internal/middleware"
)

// authHandler handles authentication and the user directory.
type authHandler struct {
	authService portssvc.AuthSvcFacade
	userService portssvc.UserSvcFacade
}

func newAuthHandler(as portssvc.AuthSvcFacade, us portssvc.UserSvcFacade) *authHandler {
	return &authHandler{authService: as, userService: us}
}

// registerPublicAuthRoutes registers the unauthenticated login route with IP
// rate limiting.
func registerPublicAuthRoutes(r *gin.Engine, as portssvc.AuthSvcFacade, loginLimiter *limiter.Limiter) {
	h := newAuthHandler(as, nil)

	auth := r.Group("/api/v1/auth")
	{
		auth.POST("/login", middleware.RateLimit(loginLimiter), h.login)
	}
}

// registerAuthRoutes registers the authenticated identity routes.
func registerAuthRoutes(rg *gin.RouterGroup, as portssvc.AuthSvcFacade, us portssvc.UserSvcFacade) {
	h := newAuthHandler(as, us)

	auth := rg.Group("/auth")
	{
		auth.GET("/me", h.me)
		auth.POST("/change_password", h.changePassword)
	}
	rg.GET("/usuarios", middleware.RequireRoles(domain.RoleAdmin), h.listUsers)
}

// login godoc
// @Summary User login
// @Description Authenticates by email/password and returns a JWT carrying the role claim
// @Tags auth
// @Accept json
// @Produce json
// @Param login body dto.LoginRequest true "Credentials"
// @Success 200 {object} dto.LoginResponse
// @Failure 400 {object} map[string]string "Invalid input"
// @Failure 401 {object} map[string]string "Invalid credentials"
// @Failure 429 {object} map[string]string "Rate limited"
// @Router /auth/login [post]
func (h *authHandler) login(c *gin.Context) {
	var req dto.LoginRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "Invalid request format: " + err.Error()})
		return
	}

	resp, err := h.authService.Login(c.Request.Context(), req)
	if err != nil {
		respondError(c, err)
		return
	}
	c.JSON(http.StatusOK, resp)
}

// me godoc
// @Summary Current user profile
// @Tags auth
// @Produce json
// @Success 200 {object} dto.UserResponse
// @Security BearerAuth
// @Router /auth/me [get]
func (h *authHandler) me(c *gin.Context) {
	actor, ok := mustActor(c)
	if !ok {
		return
	}

	user, err := h.userService.GetByID(c.Request.Context(), actor.UserID)
	if err != nil {
		respondError(c, err)
		return
	}
	c.JSON(http.StatusOK, dto.ToUserResponse(user))
}

// changePassword godoc
// @Summary Change the caller's password
// @Tags auth
// @Accept json
// @Produce json
// @Param senhas body dto.ChangePasswordRequest true "Current and new password"
// @Success 200 {object} map[string]string
// @Failure 403 {object} map[string]string "Current password incorrect"
// @Security BearerAuth
// @Router /auth/change_password [post]
func (h *authHandler) changePassword(c *gin.Context) {
	logger := middleware.GetLoggerFromCtx(c.Request.Context())

	var req dto.ChangePasswordRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "Invalid request format: " + err.Error()})
		return
	}
	actor, ok := mustActor(c)
	if !ok {
		return
	}

	if err := h.authService.ChangePassword(c.Request.Context(), actor.UserID, req); err != nil {
		respondError(c, err)
		return
	}
	logger.Info("Password changed", slog.String("user_id", actor.UserID))
	c.JSON(http.StatusOK, gin.H{"message": "Senha alterada com sucesso"})
}

// listUsers godoc
// @Summary List users
// @Tags usuarios
// @Produce json
// @Success 200 {array} dto.UserResponse
// @Security BearerAuth
// @Router /usuarios [get]
func (h *authHandler) listUsers(c *gin.Context) {
	users, err := h.userService.List(c.Request.Context())
	if err != nil {
		respondError(c, err)
		return
	}
	c.JSON(http.StatusOK, dto.ToUserResponses(users))
}
