package services

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/google/uuid"
	"github.com/rs/zerolog"
	"github.com/yigit/uniportal/internal/app/models"
	"github.com/yigit/uniportal/internal/app/models/dto"
	"github.com/yigit/uniportal/internal/app/repositories"
	"github.com/yigit/uniportal/internal/identity"
	"github.com/yigit/uniportal/internal/pkg/apperrors"
	"github.com/yigit/uniportal/internal/pkg/auth"
	"github.com/yigit/uniportal/internal/pkg/helpers"
)

// AuthService handles login and session tokens
type AuthService struct {
	store      repositories.Store
	identity   identity.Provider
	jwtService *auth.JWTService
	logger     zerolog.Logger
	timeout    time.Duration
}

// NewAuthService creates a new AuthService
func NewAuthService(
	store repositories.Store,
	provider identity.Provider,
	jwtService *auth.JWTService,
	timeout time.Duration,
	logger zerolog.Logger,
) *AuthService {
	return &AuthService{
		store:      store,
		identity:   provider,
		jwtService: jwtService,
		logger:     logger,
		timeout:    timeout,
	}
}

// Login signs in through the identity provider and issues a session token.
// The token's role comes from the stored profile.
func (s *AuthService) Login(ctx context.Context, req *dto.LoginRequest) (*dto.TokenResponse, error) {
	email := helpers.NormalizeEmail(req.Email)

	idCtx, cancel := withTimeout(ctx, s.timeout)
	account, err := s.identity.SignIn(idCtx, email, req.Password)
	cancel()
	if err != nil {
		if errors.Is(err, apperrors.ErrInvalidCredentials) {
			s.logger.Info().Str("email", email).Msg("Login rejected")
		}
		return nil, backendErr("sign in", err)
	}

	profile, err := s.store.Profiles().GetByID(ctx, account.ID)
	if err != nil {
		if errors.Is(err, apperrors.ErrProfileNotFound) {
			// An account without a profile never finished registering
			s.logger.Warn().Str("accountID", account.ID.String()).Msg("Identity account has no profile")
			return nil, apperrors.ErrInvalidCredentials
		}
		return nil, fmt.Errorf("error loading profile: %w", err)
	}
	if !profile.IsActive {
		return nil, apperrors.ErrAccountDisabled
	}

	token, expiresIn, err := s.jwtService.GenerateAccessToken(auth.Subject{
		ProfileID: profile.ID,
		Email:     profile.Email,
		Role:      profile.Role.String(),
	})
	if err != nil {
		return nil, fmt.Errorf("error generating access token: %w", err)
	}

	s.logger.Info().Str("profileID", profile.ID.String()).Str("role", profile.Role.String()).Msg("User logged in")
	return &dto.TokenResponse{
		AccessToken: token,
		TokenType:   "Bearer",
		ExpiresIn:   expiresIn,
		User:        profile,
	}, nil
}

// Me returns the profile behind a session
func (s *AuthService) Me(ctx context.Context, profileID uuid.UUID) (*models.Profile, error) {
	return s.store.Profiles().GetByID(ctx, profileID)
}

// ConfirmIdentity marks the email of an identity account as confirmed
func (s *AuthService) ConfirmIdentity(ctx context.Context, accountID uuid.UUID) error {
	ctx, cancel := withTimeout(ctx, s.timeout)
	defer cancel()

	confirmed := true
	if _, err := s.identity.UpdateAccount(ctx, accountID, identity.AccountUpdate{EmailConfirmed: &confirmed}); err != nil {
		return backendErr("confirm identity", err)
	}
	s.logger.Info().Str("accountID", accountID.String()).Msg("Identity email confirmed")
	return nil
}
