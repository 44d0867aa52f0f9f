package commands

import (
	"context"
	"errors"
	"log/slog"
	"time"

	"parcelshare/internal/core/ports"
)

var ErrOutboxIsEmpty = errors.New("no outbox messages are due")

const (
	outboxBaseDelay = 5 * time.Second
	outboxMaxDelay  = 10 * time.Minute
)

// DispatchOutboxCommandHandler publishes events written by committed
// transitions. A message that fails to publish is retried later with an
// exponentially growing delay. Delivery is at least once.
type DispatchOutboxCommandHandler struct {
	uowFactory OutboxUoWFactory
	publisher  ports.EventPublisher
	logger     *slog.Logger
}

func NewDispatchOutboxCommandHandler(
	uowFactory OutboxUoWFactory,
	publisher ports.EventPublisher,
	logger *slog.Logger,
) DispatchOutboxCommandHandler {
	return DispatchOutboxCommandHandler{
		uowFactory: uowFactory,
		publisher:  publisher,
		logger:     logger.With("component", "outbox_dispatcher"),
	}
}

// Handle returns how many messages were published.
func (h DispatchOutboxCommandHandler) Handle(ctx context.Context, command DispatchOutboxCommand) (int, error) {
	if err := command.Validate(); err != nil {
		return 0, err
	}

	uow := h.uowFactory.Create()
	if err := uow.Begin(ctx); err != nil {
		return 0, err
	}

	defer func() {
		_ = uow.Rollback(ctx)
	}()

	repo := uow.OutboxRepository()
	now := time.Now()

	messages, err := repo.ClaimDue(ctx, now, command.Batch())
	if err != nil {
		return 0, err
	}
	if len(messages) == 0 {
		return 0, ErrOutboxIsEmpty
	}

	published := 0
	for _, msg := range messages {
		if pubErr := h.publisher.Publish(ctx, msg.Event); pubErr != nil {
			h.logger.WarnContext(ctx, "Event publish failed",
				"message_id", msg.ID.String(), "event", string(msg.Event.Name), "attempts", msg.Attempts+1, "error", pubErr)
			if err = repo.MarkFailed(ctx, msg.ID, now.Add(retryDelay(msg.Attempts)), pubErr.Error()); err != nil {
				return published, err
			}
			continue
		}

		if err = repo.MarkPublished(ctx, msg.ID, now); err != nil {
			return published, err
		}
		published++
	}

	if err = uow.Commit(ctx); err != nil {
		return 0, err
	}
	return published, nil
}

// retryDelay doubles the base delay for every failed attempt.
func retryDelay(attempts int) time.Duration {
	delay := outboxBaseDelay
	for range attempts {
		delay *= 2
		if delay >= outboxMaxDelay {
			return outboxMaxDelay
		}
	}
	return delay
}
