package controllers

import (
	"net/http"

	"github.com/gin-gonic/gin"
	"github.com/rs/zerolog"
	"github.com/yigit/uniportal/internal/app/models/dto"
	"github.com/yigit/uniportal/internal/app/services"
	"github.com/yigit/uniportal/internal/middleware"
)

// AdminController handles administrator-only operations on students, pre-registrations and identities
type AdminController struct {
	adminStudentService    *services.AdminStudentService
	preRegistrationService *services.PreRegistrationService
	authService            *services.AuthService
	logger                 zerolog.Logger
}

// NewAdminController creates a new AdminController
func NewAdminController(
	adminStudentService *services.AdminStudentService,
	preRegistrationService *services.PreRegistrationService,
	authService *services.AuthService,
	logger zerolog.Logger,
) *AdminController {
	return &AdminController{
		adminStudentService:    adminStudentService,
		preRegistrationService: preRegistrationService,
		authService:            authService,
		logger:                 logger,
	}
}

// CreateStudent creates a student record ahead of the student's own registration
// @Summary Create a student
// @Description Reuses or creates the student's pre-registration and inserts a student record keyed by it.
// @Tags admin
// @Accept json
// @Produce json
// @Security BearerAuth
// @Param request body dto.AdminCreateStudentRequest true "Student information"
// @Success 201 {object} dto.APIResponse{data=dto.AdminCreateStudentResponse} "Student created"
// @Failure 400 {object} dto.ErrorResponse "Invalid request data"
// @Failure 403 {object} dto.ErrorResponse "Forbidden"
// @Failure 404 {object} dto.ErrorResponse "Department not found"
// @Failure 409 {object} dto.ErrorResponse "Student already exists"
// @Failure 500 {object} dto.ErrorResponse "Internal server error"
// @Router /admin/students [post]
func (c *AdminController) CreateStudent(ctx *gin.Context) {
	var req dto.AdminCreateStudentRequest
	if !middleware.BindJSON(ctx, &req) {
		return
	}

	resp, err := c.adminStudentService.CreateStudent(ctx.Request.Context(), &req)
	if err != nil {
		middleware.HandleAPIError(ctx, err)
		return
	}

	ctx.JSON(http.StatusCreated, dto.NewSuccessResponse(resp))
}

// ListPreRegistrations lists pre-registrations
// @Summary List pre-registrations
// @Tags admin
// @Produce json
// @Security BearerAuth
// @Param role query string false "student or professor"
// @Param registered query bool false "Filter by registration state"
// @Success 200 {object} dto.APIResponse{data=[]models.PreRegistration} "Pre-registrations"
// @Failure 400 {object} dto.ErrorResponse "Invalid filter"
// @Router /admin/pre-registrations [get]
func (c *AdminController) ListPreRegistrations(ctx *gin.Context) {
	var filter dto.PreRegistrationFilter
	if !middleware.BindQuery(ctx, &filter) {
		return
	}

	list, err := c.preRegistrationService.List(ctx.Request.Context(), &filter)
	if err != nil {
		middleware.HandleAPIError(ctx, err)
		return
	}

	ctx.JSON(http.StatusOK, dto.NewSuccessResponse(list))
}

// CreatePreRegistration pre-approves a person for self-registration
// @Summary Create a pre-registration
// @Tags admin
// @Accept json
// @Produce json
// @Security BearerAuth
// @Param request body dto.CreatePreRegistrationRequest true "Pre-registration"
// @Success 201 {object} dto.APIResponse{data=models.PreRegistration} "Pre-registration created"
// @Failure 400 {object} dto.ErrorResponse "Invalid request data"
// @Failure 409 {object} dto.ErrorResponse "Email already pre-registered"
// @Router /admin/pre-registrations [post]
func (c *AdminController) CreatePreRegistration(ctx *gin.Context) {
	var req dto.CreatePreRegistrationRequest
	if !middleware.BindJSON(ctx, &req) {
		return
	}

	pre, err := c.preRegistrationService.Create(ctx.Request.Context(), &req)
	if err != nil {
		middleware.HandleAPIError(ctx, err)
		return
	}

	ctx.JSON(http.StatusCreated, dto.NewSuccessResponse(pre))
}

// DeletePreRegistration removes an unused pre-registration
// @Summary Delete a pre-registration
// @Tags admin
// @Security BearerAuth
// @Param id path string true "Pre-registration ID"
// @Success 204 "Deleted"
// @Failure 404 {object} dto.ErrorResponse "Not found"
// @Failure 409 {object} dto.ErrorResponse "Already registered"
// @Router /admin/pre-registrations/{id} [delete]
func (c *AdminController) DeletePreRegistration(ctx *gin.Context) {
	id, ok := parseUUIDParam(ctx, "id", "Pre-registration")
	if !ok {
		return
	}

	if err := c.preRegistrationService.Delete(ctx.Request.Context(), id); err != nil {
		middleware.HandleAPIError(ctx, err)
		return
	}

	ctx.Status(http.StatusNoContent)
}

// ConfirmIdentity marks the email of an identity account as confirmed
// @Summary Confirm an identity email
// @Tags admin
// @Security BearerAuth
// @Param id path string true "Identity account ID"
// @Success 204 "Confirmed"
// @Failure 404 {object} dto.ErrorResponse "Identity not found"
// @Router /admin/identities/{id}/confirm [post]
func (c *AdminController) ConfirmIdentity(ctx *gin.Context) {
	id, ok := parseUUIDParam(ctx, "id", "Identity")
	if !ok {
		return
	}

	if err := c.authService.ConfirmIdentity(ctx.Request.Context(), id); err != nil {
		middleware.HandleAPIError(ctx, err)
		return
	}

	c.logger.Info().Str("accountID", id.String()).Msg("Identity confirmed by administrator")
	ctx.Status(http.StatusNoContent)
}
