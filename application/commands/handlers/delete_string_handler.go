package handlers

import (
	"context"

	"string-analyzer/application/commands"
	"string-analyzer/application/ports"
	"string-analyzer/domain/core/valueobjects"
	apperrors "string-analyzer/pkg/errors"
	"string-analyzer/pkg/utils"

	"go.uber.org/zap"
)

// DeleteStringHandler handles string deletion commands
type DeleteStringHandler struct {
	repo      ports.StringRepository
	publisher ports.EventPublisher
	cache     ports.Cache
	logger    *zap.Logger
}

// NewDeleteStringHandler creates a new delete string handler
func NewDeleteStringHandler(
	repo ports.StringRepository,
	publisher ports.EventPublisher,
	cache ports.Cache,
	logger *zap.Logger,
) *DeleteStringHandler {
	return &DeleteStringHandler{
		repo:      repo,
		publisher: publisher,
		cache:     cache,
		logger:    logger,
	}
}

// Handle executes the delete string command
func (h *DeleteStringHandler) Handle(ctx context.Context, cmd commands.DeleteStringCommand) error {
	id := valueobjects.NewStringID(cmd.Value)

	s, err := h.repo.GetByID(ctx, id)
	if err != nil {
		return err
	}

	if err := h.repo.Delete(ctx, id); err != nil {
		return apperrors.Wrap(err, "failed to delete string")
	}

	if h.cache != nil {
		if err := h.cache.Delete(ctx, ports.StringCacheKey(id)); err != nil {
			h.logger.Warn("Failed to invalidate cached string",
				zap.String("stringID", id.String()),
				zap.Error(err),
			)
		}
	}

	s.MarkDeleted(utils.NowUTC())
	if err := h.publisher.PublishBatch(ctx, s.GetUncommittedEvents()); err != nil {
		h.logger.Warn("Failed to publish deletion event", zap.Error(err))
	}
	s.MarkEventsAsCommitted()

	h.logger.Info("String deleted", zap.String("stringID", id.String()))

	return nil
}
