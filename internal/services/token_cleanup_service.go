package services

import (
	"context"
	"errors"
	"io"
	"strings"
	"time"

	"github.com/jackc/pgconn"

	"github.com/Maxiflexy/MonieBank/internal/utils"
)

const cleanupRetryDelay = 3 * time.Second

// TokenCleanupService purges expired token rows on a fixed schedule.
// A failed run is logged and left for the next run; rows stay in place
// until a run succeeds.
type TokenCleanupService interface {
	CleanupExpired(ctx context.Context) error
}

type tokenCleanupService struct {
	tokenService TokenService
}

func NewTokenCleanupService(tokenService TokenService) TokenCleanupService {
	return &tokenCleanupService{tokenService: tokenService}
}

// runWithRetry executes op(ctx) and, if it returns a transient network
// error (EOF, pgconn safe-to-retry, or the common closed-connection
// message), waits a moment then retries once.
func (s *tokenCleanupService) runWithRetry(
	ctx context.Context,
	op func(context.Context) error,
) error {
	if err := op(ctx); err != nil {
		if errors.Is(err, io.EOF) || pgconn.SafeToRetry(err) ||
			strings.Contains(err.Error(), "connection was closed") {
			utils.Logger.WithError(err).Warn("token cleanup hit transient DB error; retrying once")
			time.Sleep(cleanupRetryDelay)
			return op(ctx)
		}
		return err
	}
	return nil
}

func (s *tokenCleanupService) CleanupExpired(ctx context.Context) error {
	if err := s.runWithRetry(ctx, s.tokenService.CleanupExpired); err != nil {
		utils.Logger.WithError(err).Error("Failed to cleanup expired tokens")
		return err
	}

	utils.Logger.Info("Expired token cleanup completed successfully.")
	return nil
}
