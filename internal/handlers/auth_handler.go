package handlers

import (
	"net/http"

	"github.com/gin-gonic/gin"

	apperrors "budgetplan/internal/errors"
	"budgetplan/internal/middleware"
	"budgetplan/internal/models"
	"budgetplan/internal/services"
)

// AuthHandler handles staff registration, login and profile requests
type AuthHandler struct {
	staffService services.StaffServicer
	auditService services.AuditServicer
}

// NewAuthHandler creates a new AuthHandler
func NewAuthHandler(staffService services.StaffServicer, auditService services.AuditServicer) *AuthHandler {
	return &AuthHandler{staffService: staffService, auditService: auditService}
}

// RegisterRequest represents the registration request payload
type RegisterRequest struct {
	Email     string `json:"email" binding:"required,email,max=255"`
	Password  string `json:"password" binding:"required,min=8,max=128"`
	FirstName string `json:"first_name" binding:"max=100"`
	LastName  string `json:"last_name" binding:"max=100"`
	Position  string `json:"position" binding:"max=100"`
}

// LoginRequest represents the login request payload
type LoginRequest struct {
	Email    string `json:"email" binding:"required,email"`
	Password string `json:"password" binding:"required"`
}

// StaffResponse represents the staff data in the response
type StaffResponse struct {
	ID        string `json:"id"`
	Email     string `json:"email"`
	FirstName string `json:"first_name"`
	LastName  string `json:"last_name"`
	Position  string `json:"position"`
}

// AuthResponse represents the authentication response with token
type AuthResponse struct {
	Token string        `json:"token"`
	Staff StaffResponse `json:"staff"`
}

func newStaffResponse(staff *models.Staff) StaffResponse {
	return StaffResponse{
		ID:        staff.ID,
		Email:     staff.Email,
		FirstName: staff.FirstName,
		LastName:  staff.LastName,
		Position:  staff.Position,
	}
}

// Register handles staff registration
// @Summary     Register a staff member
// @Description Register a new staff member with email and password
// @Tags        auth
// @Accept      json
// @Produce     json
// @Param       request body RegisterRequest true "Staff registration data"
// @Success     201 {object} AuthResponse "Staff registered and token generated"
// @Failure     400 {object} ErrorResponse "Invalid input"
// @Failure     409 {object} ErrorResponse "Email already registered"
// @Failure     500 {object} ErrorResponse "Server error"
// @Router      /auth/register [post]
func (h *AuthHandler) Register(c *gin.Context) {
	var req RegisterRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		respondWithError(c, apperrors.WithMessage(apperrors.ErrInvalidInput, err.Error()))
		return
	}

	staff, err := h.staffService.CreateStaff(req.Email, req.Password, req.FirstName, req.LastName, req.Position)
	if err != nil {
		respondWithError(c, err)
		return
	}

	token, err := middleware.GenerateAccessToken(staff)
	if err != nil {
		respondWithError(c, apperrors.Wrap(apperrors.ErrInternalServer, err))
		return
	}

	h.auditService.Log(services.AuditEntry{StaffID: staff.ID, Action: models.AuditRegister, IPAddress: c.ClientIP()})

	c.JSON(http.StatusCreated, AuthResponse{Token: token, Staff: newStaffResponse(staff)})
}

// Login handles staff login
// @Summary     Login staff member
// @Description Authenticate a staff member and get a token
// @Tags        auth
// @Accept      json
// @Produce     json
// @Param       request body LoginRequest true "Staff login credentials"
// @Success     200 {object} AuthResponse "Staff authenticated and token generated"
// @Failure     400 {object} ErrorResponse "Invalid input"
// @Failure     401 {object} ErrorResponse "Invalid credentials"
// @Failure     500 {object} ErrorResponse "Server error"
// @Router      /auth/login [post]
func (h *AuthHandler) Login(c *gin.Context) {
	var req LoginRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		respondWithError(c, apperrors.WithMessage(apperrors.ErrInvalidInput, err.Error()))
		return
	}

	staff, err := h.staffService.AttemptLogin(req.Email, req.Password)
	if err != nil {
		respondWithError(c, err)
		return
	}

	token, err := middleware.GenerateAccessToken(staff)
	if err != nil {
		respondWithError(c, apperrors.Wrap(apperrors.ErrInternalServer, err))
		return
	}

	c.JSON(http.StatusOK, AuthResponse{Token: token, Staff: newStaffResponse(staff)})
}

// GetProfile returns the staff member's profile
// @Summary     Get staff profile
// @Description Get the authenticated staff member's profile information
// @Tags        staff
// @Produce     json
// @Security    BearerAuth
// @Success     200 {object} StaffResponse "Staff profile"
// @Failure     401 {object} ErrorResponse "Unauthorized"
// @Failure     404 {object} ErrorResponse "Staff not found"
// @Router      /profile [get]
func (h *AuthHandler) GetProfile(c *gin.Context) {
	staffID, err := getStaffID(c)
	if err != nil {
		respondWithError(c, err)
		return
	}

	staff, err := h.staffService.GetStaffByID(staffID)
	if err != nil {
		respondWithError(c, err)
		return
	}

	c.JSON(http.StatusOK, gin.H{"staff": newStaffResponse(staff)})
}

// ErrorDetail represents the inner error object in an error response.
type ErrorDetail struct {
	Code    string `json:"code"`
	Message string `json:"message"`
}

// ErrorResponse represents an error response.
type ErrorResponse struct {
	Error ErrorDetail `json:"error"`
}
