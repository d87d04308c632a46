// Package services holds the portal's business logic.
//
// Services defined in this package:
//   - EligibilityService: answers whether an email is pre-registered for a role
//   - RegistrationService: self-registration of students, professors and admins
//   - AdminStudentService: student records created by administrators
//   - AuthService: login, session tokens and identity confirmation
//   - DepartmentService, CourseService, PreRegistrationService: reference data
package services

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/yigit/uniportal/internal/pkg/apperrors"
)

// DefaultBackendTimeout bounds a single call to the store or the identity provider
const DefaultBackendTimeout = 10 * time.Second

// withTimeout derives a context for one backend call
func withTimeout(ctx context.Context, d time.Duration) (context.Context, context.CancelFunc) {
	if d <= 0 {
		d = DefaultBackendTimeout
	}
	return context.WithTimeout(ctx, d)
}

// backendErr turns an expired deadline into ErrBackendUnavailable and leaves every other error alone
func backendErr(op string, err error) error {
	if err == nil {
		return nil
	}
	if errors.Is(err, apperrors.ErrBackendUnavailable) {
		return err
	}
	if errors.Is(err, context.DeadlineExceeded) || errors.Is(err, context.Canceled) {
		return fmt.Errorf("%w: %s: %v", apperrors.ErrBackendUnavailable, op, err)
	}
	return err
}
