package handlers

import (
	"context"

	"string-analyzer/application/commands"
	"string-analyzer/application/ports"
	"string-analyzer/domain/core/entities"
	"string-analyzer/pkg/utils"

	"go.uber.org/zap"
)

// CreateStringHandler handles the CreateStringCommand
type CreateStringHandler struct {
	repo      ports.StringRepository
	publisher ports.EventPublisher
	logger    *zap.Logger
}

// NewCreateStringHandler creates a new handler instance
func NewCreateStringHandler(
	repo ports.StringRepository,
	publisher ports.EventPublisher,
	logger *zap.Logger,
) *CreateStringHandler {
	return &CreateStringHandler{
		repo:      repo,
		publisher: publisher,
		logger:    logger,
	}
}

// Handle analyzes and stores the value. It returns the stored entity.
func (h *CreateStringHandler) Handle(ctx context.Context, cmd commands.CreateStringCommand) (*entities.AnalyzedString, error) {
	s, err := entities.NewAnalyzedString(cmd.Value, utils.NowUTC())
	if err != nil {
		return nil, err
	}

	if err := h.repo.Create(ctx, s); err != nil {
		return nil, err
	}

	if err := h.publisher.PublishBatch(ctx, s.GetUncommittedEvents()); err != nil {
		// Events are best effort; the record is already stored
		h.logger.Warn("Failed to publish string events",
			zap.String("stringID", s.ID().String()),
			zap.Error(err),
		)
	}
	s.MarkEventsAsCommitted()

	h.logger.Info("String analyzed",
		zap.String("stringID", s.ID().String()),
		zap.Int("length", s.Properties().Length),
	)

	return s, nil
}
