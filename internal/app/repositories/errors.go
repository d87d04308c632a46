package repositories

import (
	"errors"
	"fmt"

	"github.com/jackc/pgx/v5"
	"github.com/rs/zerolog/log"
	"github.com/yigit/uniportal/internal/pkg/apperrors"
	"github.com/yigit/uniportal/internal/pkg/dberrors"
)

// wrapErr annotates a database error with op. Unreachable-database errors are
// marked with ErrBackendUnavailable so callers can tell them from rejected queries.
func wrapErr(op string, err error) error {
	if dberrors.IsUnavailable(err) {
		log.Warn().Err(err).Str("op", op).Msg("Database unavailable")
		return fmt.Errorf("%w: %s: %v", apperrors.ErrBackendUnavailable, op, err)
	}
	log.Error().Err(err).Str("op", op).Msg("Database query failed")
	return fmt.Errorf("%s: %w", op, err)
}

// notFoundOr maps pgx.ErrNoRows to notFound and wraps everything else
func notFoundOr(op string, err error, notFound error) error {
	if errors.Is(err, pgx.ErrNoRows) {
		return notFound
	}
	return wrapErr(op, err)
}
