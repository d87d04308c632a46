package middleware

import (
	"bytes"
	"context"
	"crypto/sha256"
	"encoding/hex"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"net/http"
	"strconv"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/rs/zerolog"
	"github.com/yigit/uniportal/internal/app/models/dto"
	"github.com/yigit/uniportal/internal/pkg/helpers"
	"github.com/yigit/uniportal/internal/pkg/metrics"
)

// MaxAuthBodyBytes caps the auth request bodies the limiter reads to find the submitted email
const MaxAuthBodyBytes = 8 << 10

// RateLimiter counts hits of a scope inside a fixed window
type RateLimiter interface {
	FixedWindowAllow(ctx context.Context, scope string, limit int64, window time.Duration) (bool, int64, error)
}

// RateLimitPolicy throttles one group of routes per client IP and per submitted email
type RateLimitPolicy struct {
	Name   string
	Limit  int
	Window time.Duration
}

func (p RateLimitPolicy) enabled() bool {
	return p.Limit > 0 && p.Window > 0
}

// RateLimit rejects requests over the policy with 429. Limiter failures let the request through.
func RateLimit(policy RateLimitPolicy, limiter RateLimiter, m *metrics.Metrics, logger zerolog.Logger) gin.HandlerFunc {
	if !policy.enabled() || limiter == nil {
		return func(c *gin.Context) { c.Next() }
	}

	return func(c *gin.Context) {
		ctx := c.Request.Context()
		email, err := peekEmail(c)
		if err != nil {
			var tooLarge *http.MaxBytesError
			if errors.As(err, &tooLarge) {
				errorDetail := dto.NewErrorDetail(dto.ErrorCodeValidationFailed, "Request body too large").
					WithDetails(fmt.Sprintf("Request body must not exceed %d bytes", tooLarge.Limit))
				c.AbortWithStatusJSON(http.StatusRequestEntityTooLarge, dto.NewErrorResponse(errorDetail))
				return
			}
			logger.Debug().Err(err).Str("policy", policy.Name).Msg("Could not read request body for rate limiting")
		}

		scopes := []string{fmt.Sprintf("%s:ip:%s", policy.Name, c.ClientIP())}
		if email != "" {
			scopes = append(scopes, fmt.Sprintf("%s:email:%s", policy.Name, hashValue(email)))
		}

		for _, scope := range scopes {
			allowed, count, err := limiter.FixedWindowAllow(ctx, scope, int64(policy.Limit), policy.Window)
			if err != nil {
				logger.Warn().Err(err).Str("policy", policy.Name).Msg("Rate limiter unavailable, allowing request")
				break
			}
			if !allowed {
				m.IncRateLimited(c.FullPath())
				logger.Warn().
					Str("policy", policy.Name).
					Str("scope", scope).
					Int64("attempts", count).
					Int("limit", policy.Limit).
					Msg("Rate limit exceeded")

				c.Header("Retry-After", strconv.Itoa(int(policy.Window.Seconds())))
				errorDetail := dto.NewErrorDetail(dto.ErrorCodeRateLimited, "Too many requests").
					WithDetails(fmt.Sprintf("Try again in %s", policy.Window))
				c.AbortWithStatusJSON(http.StatusTooManyRequests, dto.NewErrorResponse(errorDetail))
				return
			}
		}
		c.Next()
	}
}

// peekEmail reads the email field of a JSON body of at most MaxAuthBodyBytes and restores
// the body for the handler. Bodies that are not JSON objects yield no email.
func peekEmail(c *gin.Context) (string, error) {
	if c.Request.Body == nil || c.Request.Body == http.NoBody {
		return "", nil
	}
	body, err := io.ReadAll(http.MaxBytesReader(c.Writer, c.Request.Body, MaxAuthBodyBytes))
	c.Request.Body = io.NopCloser(bytes.NewReader(body))
	if err != nil {
		return "", err
	}

	var payload struct {
		Email string `json:"email"`
	}
	if err := json.Unmarshal(body, &payload); err != nil {
		return "", nil
	}
	return helpers.NormalizeEmail(payload.Email), nil
}

func hashValue(value string) string {
	sum := sha256.Sum256([]byte(value))
	return hex.EncodeToString(sum[:])
}
