package controllers

import (
	"net/http"

	"github.com/gin-gonic/gin"
	"github.com/rs/zerolog"
	"github.com/yigit/uniportal/internal/app/models/dto"
	"github.com/yigit/uniportal/internal/app/services"
	"github.com/yigit/uniportal/internal/middleware"
)

// AuthController handles eligibility, registration and login
type AuthController struct {
	eligibilityService  *services.EligibilityService
	registrationService *services.RegistrationService
	authService         *services.AuthService
	logger              zerolog.Logger
}

// NewAuthController creates a new AuthController
func NewAuthController(
	eligibilityService *services.EligibilityService,
	registrationService *services.RegistrationService,
	authService *services.AuthService,
	logger zerolog.Logger,
) *AuthController {
	return &AuthController{
		eligibilityService:  eligibilityService,
		registrationService: registrationService,
		authService:         authService,
		logger:              logger,
	}
}

// CheckEligibility reports whether an email is pre-registered for a role
// @Summary Check registration eligibility
// @Description Looks up the administrator pre-registration for an email and role. Has no side effects.
// @Tags auth
// @Accept json
// @Produce json
// @Param request body dto.EligibilityRequest true "Email and role"
// @Success 200 {object} dto.APIResponse{data=dto.EligibilityResponse} "Eligibility result"
// @Failure 400 {object} dto.ErrorResponse "Invalid request format"
// @Failure 429 {object} dto.ErrorResponse "Too many requests"
// @Failure 500 {object} dto.ErrorResponse "Lookup failed"
// @Router /auth/eligibility [post]
func (c *AuthController) CheckEligibility(ctx *gin.Context) {
	var req dto.EligibilityRequest
	if !middleware.BindJSON(ctx, &req) {
		return
	}

	result, err := c.eligibilityService.Check(ctx.Request.Context(), req.Email, req.Role)
	if err != nil {
		middleware.HandleAPIError(ctx, err)
		return
	}

	ctx.JSON(http.StatusOK, dto.NewSuccessResponse(result))
}

// Register handles user registration
// @Summary Register a new user
// @Description Creates the identity account and profile of a pre-registered student or professor. Registering an admin requires an admin session.
// @Tags auth
// @Accept json
// @Produce json
// @Param request body dto.RegisterRequest true "User registration information"
// @Success 201 {object} dto.APIResponse{data=dto.RegisterResponse} "User registered"
// @Failure 400 {object} dto.ErrorResponse "Invalid request format"
// @Failure 403 {object} dto.ErrorResponse "Not eligible or name mismatch"
// @Failure 409 {object} dto.ErrorResponse "Account already exists"
// @Failure 500 {object} dto.ErrorResponse "Internal server error"
// @Router /auth/register [post]
func (c *AuthController) Register(ctx *gin.Context) {
	var req dto.RegisterRequest
	if !middleware.BindJSON(ctx, &req) {
		return
	}

	callerRole, _ := middleware.RoleFromContext(ctx)
	resp, err := c.registrationService.Register(ctx.Request.Context(), &req, callerRole)
	if err != nil {
		middleware.HandleAPIError(ctx, err)
		return
	}

	ctx.JSON(http.StatusCreated, dto.NewSuccessResponse(resp))
}

// RegisterStudent handles student registration including the student record
// @Summary Register a student
// @Description Registers a pre-registered student and creates (or links) the student record with a generated student ID.
// @Tags auth
// @Accept json
// @Produce json
// @Param request body dto.StudentRegisterRequest true "Student registration information"
// @Success 201 {object} dto.APIResponse{data=dto.StudentRegisterResponse} "Student registered"
// @Failure 400 {object} dto.ErrorResponse "Invalid request format"
// @Failure 403 {object} dto.ErrorResponse "Not eligible or name mismatch"
// @Failure 404 {object} dto.ErrorResponse "Department not found"
// @Failure 409 {object} dto.ErrorResponse "Account already exists"
// @Failure 500 {object} dto.ErrorResponse "Internal server error"
// @Router /auth/register/student [post]
func (c *AuthController) RegisterStudent(ctx *gin.Context) {
	var req dto.StudentRegisterRequest
	if !middleware.BindJSON(ctx, &req) {
		return
	}

	resp, err := c.registrationService.RegisterStudent(ctx.Request.Context(), &req)
	if err != nil {
		middleware.HandleAPIError(ctx, err)
		return
	}

	ctx.JSON(http.StatusCreated, dto.NewSuccessResponse(resp))
}

// Login handles user login
// @Summary User login
// @Description Authenticates a user and returns an access token
// @Tags auth
// @Accept json
// @Produce json
// @Param request body dto.LoginRequest true "Login credentials"
// @Success 200 {object} dto.APIResponse{data=dto.TokenResponse} "Login successful"
// @Failure 400 {object} dto.ErrorResponse "Invalid request format or validation error"
// @Failure 401 {object} dto.ErrorResponse "Invalid credentials"
// @Failure 403 {object} dto.ErrorResponse "Account disabled"
// @Failure 500 {object} dto.ErrorResponse "Internal server error"
// @Router /auth/login [post]
func (c *AuthController) Login(ctx *gin.Context) {
	var req dto.LoginRequest
	if !middleware.BindJSON(ctx, &req) {
		return
	}

	token, err := c.authService.Login(ctx.Request.Context(), &req)
	if err != nil {
		middleware.HandleAPIError(ctx, err)
		return
	}

	ctx.JSON(http.StatusOK, dto.NewSuccessResponse(token))
}

// Me returns the profile of the current session
// @Summary Current profile
// @Tags auth
// @Produce json
// @Security BearerAuth
// @Success 200 {object} dto.APIResponse{data=models.Profile} "Profile"
// @Failure 401 {object} dto.ErrorResponse "Unauthorized"
// @Failure 404 {object} dto.ErrorResponse "Profile not found"
// @Router /auth/me [get]
func (c *AuthController) Me(ctx *gin.Context) {
	profileID, ok := middleware.ProfileIDFromContext(ctx)
	if !ok {
		errorDetail := dto.NewErrorDetail(dto.ErrorCodeUnauthorized, "Authentication required")
		ctx.AbortWithStatusJSON(http.StatusUnauthorized, dto.NewErrorResponse(errorDetail))
		return
	}

	profile, err := c.authService.Me(ctx.Request.Context(), profileID)
	if err != nil {
		middleware.HandleAPIError(ctx, err)
		return
	}

	ctx.JSON(http.StatusOK, dto.NewSuccessResponse(profile))
}
