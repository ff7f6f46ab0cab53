package cache

import (
	"context"
	"log/slog"

	"github.com/SscSPs/mfg_ledger/internal/core/domain"
	portssvc "github.com/SscSPs/mfg_ledger/internal/core/ports/services"
)

// InvalidatingPublisher drops cached reports whenever ledger state changes,
// then forwards the event.
type InvalidatingPublisher struct {
	cache  portssvc.ReportCache
	next   portssvc.EventPublisher
	logger *slog.Logger
}

var _ portssvc.EventPublisher = (*InvalidatingPublisher)(nil)

// NewInvalidatingPublisher wraps next. A nil next only invalidates.
func NewInvalidatingPublisher(cache portssvc.ReportCache, next portssvc.EventPublisher, logger *slog.Logger) *InvalidatingPublisher {
	if logger == nil {
		logger = slog.Default()
	}
	return &InvalidatingPublisher{cache: cache, next: next, logger: logger}
}

// Publish never fails because of the cache: a failed invalidation is logged
// and stale entries age out with their TTL.
func (p *InvalidatingPublisher) Publish(ctx context.Context, event domain.LedgerEvent) error {
	if err := p.cache.Invalidate(ctx); err != nil {
		p.logger.WarnContext(ctx, "Failed to invalidate report cache", "event_type", event.Type, "error", err)
	}
	if p.next == nil {
		return nil
	}
	return p.next.Publish(ctx, event)
}
