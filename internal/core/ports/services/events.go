package services

import (
	"context"

	"github.com/SscSPs/mfg_ledger/internal/core/domain"
)

// EventPublisher delivers ledger events after their write has committed.
type EventPublisher interface {
	Publish(ctx context.Context, event domain.LedgerEvent) error
}

// ReportCache stores rendered reports. Invalidate drops every entry.
type ReportCache interface {
	Get(ctx context.Context, key string, dest any) (bool, error)
	Set(ctx context.Context, key string, value any) error
	Invalidate(ctx context.Context) error
}
