package middleware

import (
	"errors"
	"net/http"

	"github.com/gin-gonic/gin"
	"github.com/rs/zerolog/log"
	"github.com/yigit/uniportal/internal/app/models/dto"
	"github.com/yigit/uniportal/internal/pkg/apperrors"
)

// errorDetailFor maps an error to its HTTP status and default error detail
func errorDetailFor(err error) (int, *dto.ErrorDetail) {
	switch {
	// 400
	case errors.Is(err, apperrors.ErrValidationFailed):
		return http.StatusBadRequest, dto.NewErrorDetail(dto.ErrorCodeValidationFailed, "Validation failed")

	// 401
	case errors.Is(err, apperrors.ErrInvalidCredentials):
		return http.StatusUnauthorized, dto.NewErrorDetail(dto.ErrorCodeInvalidCredentials, "Invalid credentials")
	case errors.Is(err, apperrors.ErrTokenExpired):
		return http.StatusUnauthorized, dto.NewErrorDetail(dto.ErrorCodeExpiredToken, "Token expired")
	case errors.Is(err, apperrors.ErrTokenInvalid):
		return http.StatusUnauthorized, dto.NewErrorDetail(dto.ErrorCodeInvalidToken, "Invalid token")

	// 403
	case errors.Is(err, apperrors.ErrNotEligible):
		return http.StatusForbidden, dto.NewErrorDetail(dto.ErrorCodeNotEligible, "Not eligible to register")
	case errors.Is(err, apperrors.ErrNameMismatch):
		return http.StatusForbidden, dto.NewErrorDetail(dto.ErrorCodeNameMismatch, "Name does not match the pre-registration")
	case errors.Is(err, apperrors.ErrAccountDisabled):
		return http.StatusForbidden, dto.NewErrorDetail(dto.ErrorCodeAccountDisabled, "Account is disabled")
	case errors.Is(err, apperrors.ErrPermissionDenied):
		return http.StatusForbidden, dto.NewErrorDetail(dto.ErrorCodeForbidden, "Permission denied")

	// 404
	case apperrors.Is(err, apperrors.ErrResourceNotFound,
		apperrors.ErrDepartmentNotFound,
		apperrors.ErrProfessorNotFound,
		apperrors.ErrCourseNotFound,
		apperrors.ErrStudentNotFound,
		apperrors.ErrProfileNotFound,
		apperrors.ErrIdentityNotFound,
		apperrors.ErrPreRegistrationNotFound):
		return http.StatusNotFound, dto.NewErrorDetail(dto.ErrorCodeResourceNotFound, "Resource not found")

	// 409
	case errors.Is(err, apperrors.ErrDuplicateAccount):
		return http.StatusConflict, dto.NewErrorDetail(dto.ErrorCodeDuplicateAccount, "An account with this email already exists")
	case errors.Is(err, apperrors.ErrAlreadyRegistered):
		return http.StatusConflict, dto.NewErrorDetail(dto.ErrorCodeAlreadyRegistered, "Pre-registration has already been used")
	case apperrors.Is(err, apperrors.ErrResourceAlreadyExists,
		apperrors.ErrDuplicateCourse,
		apperrors.ErrDepartmentAlreadyExists,
		apperrors.ErrPreRegistrationExists,
		apperrors.ErrStudentIDTaken):
		return http.StatusConflict, dto.NewErrorDetail(dto.ErrorCodeResourceAlreadyExists, "Resource already exists")
	case apperrors.Is(err, apperrors.ErrConflict, apperrors.ErrDepartmentHasRelations):
		return http.StatusConflict, dto.NewErrorDetail(dto.ErrorCodeConflict, "Conflict")

	// 429
	case errors.Is(err, apperrors.ErrRateLimited):
		return http.StatusTooManyRequests, dto.NewErrorDetail(dto.ErrorCodeRateLimited, "Too many requests")

	// 500
	case errors.Is(err, apperrors.ErrIDGenerationExhausted):
		return http.StatusInternalServerError, dto.NewErrorDetail(dto.ErrorCodeIDGenerationExhausted, "Could not generate a student ID, please retry")
	case apperrors.Is(err, apperrors.ErrBackendUnavailable, apperrors.ErrLookupFailed):
		return http.StatusInternalServerError, dto.NewErrorDetail(dto.ErrorCodeBackendUnavailable, "A backend service is unavailable, please retry")
	default:
		return http.StatusInternalServerError, dto.NewErrorDetail(dto.ErrorCodeInternalServer, "Internal server error")
	}
}

// HandleAPIError handles common API errors and returns appropriate responses
func HandleAPIError(c *gin.Context, err error) {
	status, detail := errorDetailFor(err)

	// Client-facing messages only come from CustomError; internal error text is never echoed
	if msg, details, ok := apperrors.MessageOf(err); ok {
		detail.Message = msg
		if details != nil {
			detail = detail.WithDetails(details)
		}
	}

	if status >= http.StatusInternalServerError {
		log.Error().Err(err).Str("path", c.FullPath()).Msg("Request failed")
	}

	c.AbortWithStatusJSON(status, dto.NewErrorResponse(detail))
}

