package events

import (
	"context"
	"errors"
	"log/slog"

	"github.com/SscSPs/mfg_ledger/internal/core/domain"
	portssvc "github.com/SscSPs/mfg_ledger/internal/core/ports/services"
)

// NoopPublisher drops every event.
type NoopPublisher struct{}

func (NoopPublisher) Publish(context.Context, domain.LedgerEvent) error { return nil }

// LogPublisher writes events to the structured log. It is the default sink
// when no broker is configured.
type LogPublisher struct {
	Logger *slog.Logger
}

func (p LogPublisher) Publish(ctx context.Context, event domain.LedgerEvent) error {
	logger := p.Logger
	if logger == nil {
		logger = slog.Default()
	}
	logger.InfoContext(ctx, "Ledger event",
		"event_id", event.EventID,
		"event_type", event.Type,
		"entity_id", event.EntityID,
		"actor_id", event.ActorID,
	)
	return nil
}

// FanOut delivers every event to all publishers and joins their errors.
type FanOut []portssvc.EventPublisher

func (f FanOut) Publish(ctx context.Context, event domain.LedgerEvent) error {
	var errs []error
	for _, p := range f {
		if p == nil {
			continue
		}
		if err := p.Publish(ctx, event); err != nil {
			errs = append(errs, err)
		}
	}
	return errors.Join(errs...)
}

var (
	_ portssvc.EventPublisher = NoopPublisher{}
	_ portssvc.EventPublisher = LogPublisher{}
	_ portssvc.EventPublisher = FanOut{}
)
