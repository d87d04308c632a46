package identity

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"net/http"
	"strings"
	"time"

	"github.com/google/uuid"
	"github.com/rs/zerolog"
	"github.com/yigit/uniportal/internal/pkg/apperrors"
	"github.com/yigit/uniportal/internal/pkg/helpers"
)

// GoTrueConfig configures the hosted auth admin API client
type GoTrueConfig struct {
	BaseURL    string
	ServiceKey string
	AnonKey    string
	Timeout    time.Duration
}

// GoTrueProvider manages accounts through a GoTrue (Supabase Auth) server.
// Account management uses the admin API with the service key; SignIn uses the password grant.
type GoTrueProvider struct {
	cfg    GoTrueConfig
	client *http.Client
	logger zerolog.Logger
}

// NewGoTrueProvider creates a GoTrue client
func NewGoTrueProvider(cfg GoTrueConfig, logger zerolog.Logger) *GoTrueProvider {
	cfg.BaseURL = strings.TrimRight(cfg.BaseURL, "/")
	if cfg.AnonKey == "" {
		cfg.AnonKey = cfg.ServiceKey
	}
	if cfg.Timeout <= 0 {
		cfg.Timeout = 10 * time.Second
	}
	return &GoTrueProvider{
		cfg:    cfg,
		client: &http.Client{Timeout: cfg.Timeout},
		logger: logger,
	}
}

type gotrueUser struct {
	ID               uuid.UUID  `json:"id"`
	Email            string     `json:"email"`
	EmailConfirmedAt *time.Time `json:"email_confirmed_at"`
	CreatedAt        time.Time  `json:"created_at"`
}

func (u gotrueUser) account() *Account {
	return &Account{
		ID:             u.ID,
		Email:          u.Email,
		EmailConfirmed: u.EmailConfirmedAt != nil,
		CreatedAt:      u.CreatedAt,
	}
}

type gotrueError struct {
	Code             int    `json:"code"`
	Msg              string `json:"msg"`
	ErrorCode        string `json:"error_code"`
	Error            string `json:"error"`
	ErrorDescription string `json:"error_description"`
}

func (e gotrueError) message() string {
	for _, m := range []string{e.Msg, e.ErrorDescription, e.Error, e.ErrorCode} {
		if m != "" {
			return m
		}
	}
	return "unknown error"
}

type apiError struct {
	status int
	body   gotrueError
}

func (e *apiError) Error() string {
	return fmt.Sprintf("gotrue returned %d: %s", e.status, e.body.message())
}

func (p *GoTrueProvider) do(ctx context.Context, method, path, key string, in, out interface{}) error {
	var body io.Reader
	if in != nil {
		buf, err := json.Marshal(in)
		if err != nil {
			return fmt.Errorf("encode gotrue request: %w", err)
		}
		body = bytes.NewReader(buf)
	}

	req, err := http.NewRequestWithContext(ctx, method, p.cfg.BaseURL+path, body)
	if err != nil {
		return fmt.Errorf("build gotrue request: %w", err)
	}
	req.Header.Set("apikey", key)
	req.Header.Set("Authorization", "Bearer "+key)
	if in != nil {
		req.Header.Set("Content-Type", "application/json")
	}

	resp, err := p.client.Do(req)
	if err != nil {
		return unavailable(strings.ToLower(method)+" "+path, err)
	}
	defer resp.Body.Close()

	if resp.StatusCode >= 500 {
		return unavailable(strings.ToLower(method)+" "+path, fmt.Errorf("status %d", resp.StatusCode))
	}
	if resp.StatusCode >= 400 {
		apiErr := &apiError{status: resp.StatusCode}
		_ = json.NewDecoder(resp.Body).Decode(&apiErr.body)
		return apiErr
	}
	if out == nil {
		return nil
	}
	if err := json.NewDecoder(resp.Body).Decode(out); err != nil {
		return fmt.Errorf("decode gotrue response: %w", err)
	}
	return nil
}

func isDuplicateEmail(e *apiError) bool {
	if e.body.ErrorCode == "email_exists" || e.body.ErrorCode == "user_already_exists" {
		return true
	}
	return (e.status == http.StatusUnprocessableEntity || e.status == http.StatusBadRequest) &&
		strings.Contains(strings.ToLower(e.body.message()), "already")
}

// CreateAccount creates an unconfirmed account through the admin API
func (p *GoTrueProvider) CreateAccount(ctx context.Context, email, password string) (*Account, error) {
	payload := map[string]interface{}{
		"email":         helpers.NormalizeEmail(email),
		"password":      password,
		"email_confirm": false,
	}
	var user gotrueUser
	if err := p.do(ctx, http.MethodPost, "/admin/users", p.cfg.ServiceKey, payload, &user); err != nil {
		var apiErr *apiError
		if errors.As(err, &apiErr) {
			if isDuplicateEmail(apiErr) {
				return nil, apperrors.ErrDuplicateAccount
			}
			if apiErr.status == http.StatusUnprocessableEntity || apiErr.status == http.StatusBadRequest {
				return nil, apperrors.NewValidationError(apiErr.body.message())
			}
		}
		return nil, err
	}
	p.logger.Debug().Str("accountID", user.ID.String()).Msg("GoTrue account created")
	return user.account(), nil
}

// DeleteAccount removes an account through the admin API
func (p *GoTrueProvider) DeleteAccount(ctx context.Context, id uuid.UUID) error {
	err := p.do(ctx, http.MethodDelete, "/admin/users/"+id.String(), p.cfg.ServiceKey, nil, nil)
	return mapNotFound(err)
}

// UpdateAccount changes account attributes through the admin API
func (p *GoTrueProvider) UpdateAccount(ctx context.Context, id uuid.UUID, update AccountUpdate) (*Account, error) {
	payload := map[string]interface{}{}
	if update.EmailConfirmed != nil {
		payload["email_confirm"] = *update.EmailConfirmed
	}
	var user gotrueUser
	if err := p.do(ctx, http.MethodPut, "/admin/users/"+id.String(), p.cfg.ServiceKey, payload, &user); err != nil {
		return nil, mapNotFound(err)
	}
	return user.account(), nil
}

// SignIn exchanges email and password for the account using the password grant
func (p *GoTrueProvider) SignIn(ctx context.Context, email, password string) (*Account, error) {
	payload := map[string]string{
		"email":    helpers.NormalizeEmail(email),
		"password": password,
	}
	var out struct {
		User gotrueUser `json:"user"`
	}
	if err := p.do(ctx, http.MethodPost, "/token?grant_type=password", p.cfg.AnonKey, payload, &out); err != nil {
		var apiErr *apiError
		if errors.As(err, &apiErr) && apiErr.status < 500 {
			return nil, apperrors.ErrInvalidCredentials
		}
		return nil, err
	}
	return out.User.account(), nil
}

func mapNotFound(err error) error {
	var apiErr *apiError
	if errors.As(err, &apiErr) && apiErr.status == http.StatusNotFound {
		return apperrors.ErrIdentityNotFound
	}
	return err
}
