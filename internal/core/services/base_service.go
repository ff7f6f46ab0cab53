package services

import (
	"context"
	"log/slog"
	"strings"
	"time"

	"github.com/SscSPs/mfg_ledger/internal/apperrors"
	"github.com/SscSPs/mfg_ledger/internal/core/domain"
	portsrepo "github.com/SscSPs/mfg_ledger/internal/core/ports/repositories"
	portssvc "github.com/SscSPs/mfg_ledger/internal/core/ports/services"
	"github.com/SscSPs/mfg_ledger/internal/middleware"
	"github.com/SscSPs/mfg_ledger/internal/platform/metrics"
	"github.com/google/uuid"
)

// BaseService provides common functionality for all services
type BaseService struct {
	TxManager portsrepo.TransactionManager
	Events    portssvc.EventPublisher
	Metrics   metrics.Recorder
	Retry     RetryPolicy
	Clock     func() time.Time
}

// ServiceOption is a functional option shared by every service constructor.
type ServiceOption func(*BaseService)

// WithEventPublisher sets where committed ledger events are sent.
func WithEventPublisher(p portssvc.EventPublisher) ServiceOption {
	return func(s *BaseService) {
		s.Events = p
	}
}

// WithMetrics sets the metrics recorder.
func WithMetrics(r metrics.Recorder) ServiceOption {
	return func(s *BaseService) {
		s.Metrics = r
	}
}

// WithRetryPolicy sets how units of work are retried on concurrency conflicts.
func WithRetryPolicy(p RetryPolicy) ServiceOption {
	return func(s *BaseService) {
		s.Retry = p
	}
}

// WithClock overrides the time source. Used by tests.
func WithClock(clock func() time.Time) ServiceOption {
	return func(s *BaseService) {
		s.Clock = clock
	}
}

func newBaseService(txManager portsrepo.TransactionManager, options []ServiceOption) BaseService {
	base := BaseService{
		TxManager: txManager,
		Metrics:   metrics.NoOpRecorder{},
		Retry:     DefaultRetryPolicy(),
		Clock:     func() time.Time { return time.Now().UTC() },
	}
	for _, option := range options {
		option(&base)
	}
	return base
}

// GetLogger gets the logger from context or returns a default one
func (s *BaseService) GetLogger(ctx context.Context) *slog.Logger {
	return middleware.GetLoggerFromCtx(ctx)
}

// LogError logs an error with consistent formatting
func (s *BaseService) LogError(ctx context.Context, err error, msg string, keyvals ...any) {
	logger := s.GetLogger(ctx)
	args := make([]any, 0, len(keyvals)+1)
	args = append(args, slog.String("error", err.Error()))
	args = append(args, keyvals...)
	logger.Error(msg, args...)
}

// LogInfo logs an info message with consistent formatting
func (s *BaseService) LogInfo(ctx context.Context, msg string, keyvals ...any) {
	s.GetLogger(ctx).Info(msg, keyvals...)
}

// LogDebug logs a debug message with consistent formatting
func (s *BaseService) LogDebug(ctx context.Context, msg string, keyvals ...any) {
	s.GetLogger(ctx).Debug(msg, keyvals...)
}

func (s *BaseService) now() time.Time {
	return s.Clock()
}

// publish delivers an event for a committed write. Failures are logged and
// never surface to the caller: the write has already happened.
func (s *BaseService) publish(ctx context.Context, eventType domain.LedgerEventType, entityID, actorID string, payload any) {
	if s.Events == nil {
		return
	}
	event := domain.LedgerEvent{
		EventID:    uuid.NewString(),
		Type:       eventType,
		EntityID:   entityID,
		ActorID:    actorID,
		OccurredAt: s.now(),
		Payload:    payload,
	}
	err := s.Events.Publish(context.WithoutCancel(ctx), event)
	s.Metrics.RecordEventPublished(string(eventType), err == nil)
	if err != nil {
		s.LogError(ctx, err, "Failed to publish ledger event",
			slog.String("event_type", string(eventType)),
			slog.String("entity_id", entityID))
	}
}

func requireActor(userID string) error {
	if strings.TrimSpace(userID) == "" {
		return apperrors.Validation("actor id is required")
	}
	return nil
}
