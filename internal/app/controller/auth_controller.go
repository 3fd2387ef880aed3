package controller

import (
	stderrors "errors"
	"net/http"

	"github.com/MauroRinelli/Solship/internal/app/service"
	"github.com/MauroRinelli/Solship/internal/errors"
	"github.com/MauroRinelli/Solship/internal/middleware"
	"github.com/gin-gonic/gin"
)

type AuthController struct {
	authService service.AuthService
}

func NewAuthController(authService service.AuthService) *AuthController {
	return &AuthController{
		authService: authService,
	}
}

type RegisterRequest struct {
	Email    string `json:"email" binding:"required,email"`
	Password string `json:"password" binding:"required,min=6"`
	Name     string `json:"name"`
}

type LoginRequest struct {
	Email    string `json:"email" binding:"required,email"`
	Password string `json:"password" binding:"required"`
}

// Register creates a new account and returns a token.
// POST /api/auth/register
func (ctrl *AuthController) Register(c *gin.Context) {
	log := middleware.GetLoggerFromContext(c)

	var req RegisterRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		log.Warn("Invalid registration request", map[string]interface{}{
			"error": err.Error(),
		})
		errors.BadRequest(c, errors.ValidationInvalidInput, "Invalid request data")
		return
	}

	user, token, err := ctrl.authService.Register(req.Email, req.Password, req.Name)
	if err != nil {
		if stderrors.Is(err, service.ErrEmailAlreadyExists) {
			errors.RespondWithError(c, http.StatusConflict, errors.AuthEmailAlreadyExists,
				"Email is already registered")
			return
		}
		var validationErr *service.ValidationError
		if stderrors.As(err, &validationErr) {
			errors.RespondWithValidationError(c, validationErr.Fields)
			return
		}
		log.Error("Registration failed", err, map[string]interface{}{
			"email": req.Email,
		})
		// Catches the unique-email violation when a duplicate register
		// raced the service-level existence check.
		errors.RespondWithDBError(c, err, "user")
		return
	}

	respondCreated(c, gin.H{"user": user, "token": token}, "Registration successful")
}

// Login authenticates an account and returns a token.
// POST /api/auth/login
func (ctrl *AuthController) Login(c *gin.Context) {
	log := middleware.GetLoggerFromContext(c)

	var req LoginRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		log.Warn("Invalid login request", map[string]interface{}{
			"error": err.Error(),
		})
		errors.BadRequest(c, errors.ValidationInvalidInput, "Invalid request data")
		return
	}

	user, token, err := ctrl.authService.Login(req.Email, req.Password)
	if err != nil {
		if stderrors.Is(err, service.ErrInvalidCredentials) {
			errors.RespondWithError(c, http.StatusUnauthorized, errors.AuthInvalidCredentials,
				"Invalid email or password")
			return
		}
		log.Error("Login failed", err, map[string]interface{}{
			"email": req.Email,
		})
		errors.InternalError(c, "Login failed")
		return
	}

	respondOK(c, gin.H{"user": user, "token": token})
}

// Me returns the authenticated account.
// GET /api/auth/me
func (ctrl *AuthController) Me(c *gin.Context) {
	log := middleware.GetLoggerFromContext(c)
	userID, exists := middleware.GetUserID(c)
	if !exists {
		errors.Unauthorized(c, "Authentication required")
		return
	}

	user, err := ctrl.authService.GetUserByID(userID)
	if err != nil {
		if stderrors.Is(err, service.ErrUserNotFound) {
			errors.NotFound(c, errors.ResourceNotFound, "User not found")
			return
		}
		log.Error("Failed to fetch user", err, map[string]interface{}{
			"user_id": userID,
		})
		errors.InternalError(c, "Failed to fetch user")
		return
	}

	respondOK(c, user)
}
