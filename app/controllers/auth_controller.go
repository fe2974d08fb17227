package controllers

import (
	"net/http"

	"socialfeed/app/logger"
	"socialfeed/app/middleware"
	"socialfeed/app/models"
	"socialfeed/app/services"
	"socialfeed/app/validation"
)

// AuthController handles signup, login and user status requests
type AuthController struct {
	authService *services.AuthService
	logger      *logger.Logger
}

// NewAuthController creates a new AuthController
func NewAuthController(authService *services.AuthService, logger *logger.Logger) *AuthController {
	return &AuthController{authService: authService, logger: logger}
}

// Signup handles PUT /auth/signup
func (ac *AuthController) Signup(w http.ResponseWriter, r *http.Request) {
	var in models.SignupInput
	if err := decodeJSON(r, &in); err != nil {
		sendError(w, r, ac.logger, err)
		return
	}

	userID, err := ac.authService.Signup(r.Context(), in)
	if err != nil {
		sendError(w, r, ac.logger, err)
		return
	}

	sendJSON(w, http.StatusCreated, map[string]interface{}{
		"message": "User created",
		"userId":  userID,
	})
}

// Login handles POST /auth/login
func (ac *AuthController) Login(w http.ResponseWriter, r *http.Request) {
	var in models.LoginInput
	if err := decodeJSON(r, &in); err != nil {
		sendError(w, r, ac.logger, err)
		return
	}

	res, err := ac.authService.Login(r.Context(), in)
	if err != nil {
		sendError(w, r, ac.logger, err)
		return
	}

	sendJSON(w, http.StatusOK, res)
}

// GetStatus handles GET /auth/status
func (ac *AuthController) GetStatus(w http.ResponseWriter, r *http.Request) {
	userID, _ := middleware.UserID(r.Context())

	status, err := ac.authService.GetStatus(r.Context(), userID)
	if err != nil {
		sendError(w, r, ac.logger, err)
		return
	}

	sendJSON(w, http.StatusOK, map[string]interface{}{
		"message": "Status retrieved",
		"status":  status,
	})
}

// UpdateStatus handles PATCH /auth/status
func (ac *AuthController) UpdateStatus(w http.ResponseWriter, r *http.Request) {
	userID, _ := middleware.UserID(r.Context())

	var in models.StatusInput
	if err := decodeJSON(r, &in); err != nil {
		sendError(w, r, ac.logger, err)
		return
	}
	if in.Status == nil {
		sendError(w, r, ac.logger, validation.Failed([]validation.FieldError{
			validation.Field("status", nil, "Status is required"),
		}))
		return
	}

	status, err := ac.authService.SetStatus(r.Context(), userID, *in.Status)
	if err != nil {
		sendError(w, r, ac.logger, err)
		return
	}

	sendJSON(w, http.StatusOK, map[string]interface{}{
		"message": "Status Updated",
		"status":  status,
	})
}
