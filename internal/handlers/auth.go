package handlers

import (
	"net/http"
	"time"

	"taskmanager/internal/auth"
	"taskmanager/internal/dto"
	"taskmanager/internal/service"

	"github.com/gin-gonic/gin"
)

// AuthHandler handles login, register and logout.
type AuthHandler struct {
	svc *service.AuthService
	dev bool
}

// NewAuthHandler returns a new AuthHandler.
func NewAuthHandler(svc *service.AuthService, dev bool) *AuthHandler {
	return &AuthHandler{svc: svc, dev: dev}
}

// Register godoc
// @Summary      Register
// @Tags         auth
// @Accept       json
// @Produce      json
// @Param        body  body      dto.RegisterRequest  true  "Credentials"
// @Success      201   {object}  dto.RegisterResponse
// @Failure      400   {object}  dto.ErrorResponse
// @Failure      409   {object}  dto.ErrorResponse
// @Failure      500   {object}  dto.ErrorResponse
// @Router       /auth/register [post]
func (h *AuthHandler) Register(c *gin.Context) {
	var req dto.RegisterRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		badRequest(c, h.dev, err)
		return
	}
	user, err := h.svc.Register(c.Request.Context(), req.Email, req.Password)
	if err != nil {
		writeError(c, h.dev, err)
		return
	}
	c.JSON(http.StatusCreated, dto.RegisterResponse{
		Message: "User registered successfully",
		User:    dto.UserResponse{ID: user.ID, Email: user.Email},
	})
}

// Login godoc
// @Summary      Login
// @Tags         auth
// @Accept       json
// @Produce      json
// @Param        body  body      dto.LoginRequest  true  "Credentials"
// @Success      200   {object}  dto.LoginResponse
// @Failure      400   {object}  dto.ErrorResponse
// @Failure      401   {object}  dto.ErrorResponse
// @Failure      500   {object}  dto.ErrorResponse
// @Router       /auth/login [post]
func (h *AuthHandler) Login(c *gin.Context) {
	var req dto.LoginRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		badRequest(c, h.dev, err)
		return
	}
	token, exp, err := h.svc.Login(c.Request.Context(), req.Email, req.Password)
	if err != nil {
		writeError(c, h.dev, err)
		return
	}
	c.JSON(http.StatusOK, dto.LoginResponse{
		Token:     token,
		ExpiresAt: exp.UTC().Format(time.RFC3339),
		Message:   "Login successfully",
	})
}

// Logout godoc
// @Summary      Logout
// @Description  Revokes the bearer token's session. Without a token this is a no-op.
// @Tags         auth
// @Produce      json
// @Security     BearerAuth
// @Success      200  {object}  dto.MessageResponse
// @Failure      401  {object}  dto.ErrorResponse
// @Router       /auth/logout [post]
func (h *AuthHandler) Logout(c *gin.Context) {
	if token := auth.BearerToken(c); token != "" {
		if err := h.svc.Logout(c.Request.Context(), token); err != nil {
			writeError(c, h.dev, err)
			return
		}
	}
	c.JSON(http.StatusOK, dto.MessageResponse{Message: "Logged out successfully"})
}
