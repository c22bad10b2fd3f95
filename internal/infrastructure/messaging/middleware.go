package messaging

import (
	"fmt"
	"maps"
	"runtime/debug"
	"slices"
	"time"

	"github.com/staffbook/staffbook/internal/domain/shared"
	"github.com/staffbook/staffbook/pkg/logger"
)

// Middleware wraps an event handler.
type Middleware func(shared.EventHandler) shared.EventHandler

// RecoveryMiddleware turns a handler panic into an error.
func RecoveryMiddleware(log *logger.Logger) Middleware {
	return func(next shared.EventHandler) shared.EventHandler {
		return func(event shared.Event) (err error) {
			defer func() {
				if r := recover(); r != nil {
					log.Error("handler panic recovered",
						logger.EventType(string(event.EventType())),
						logger.Any("panic", r),
						logger.String("stack", string(debug.Stack())),
					)
					err = fmt.Errorf("handler panic: %v", r)
				}
			}()
			return next(event)
		}
	}
}

// LoggingMiddleware logs handler execution.
func LoggingMiddleware(log *logger.Logger) Middleware {
	return func(next shared.EventHandler) shared.EventHandler {
		return func(event shared.Event) error {
			start := time.Now()
			err := next(event)

			fields := []logger.Field{
				logger.EventType(string(event.EventType())),
				logger.StaffID(event.AggregateID()),
				logger.Latency(time.Since(start)),
			}
			if err != nil {
				log.Error("handler failed", append(fields, logger.Err(err))...)
			} else {
				log.Debug("handler completed", fields...)
			}
			return err
		}
	}
}

// NewLogHandler returns a handler that records every event at info level
// with its payload flattened into fields.
func NewLogHandler(log *logger.Logger) shared.EventHandler {
	return func(event shared.Event) error {
		fields := []logger.Field{
			logger.EventType(string(event.EventType())),
			logger.StaffID(event.AggregateID()),
			logger.Time("occurred_at", event.OccurredAt()),
		}
		payload := event.Payload()
		for _, k := range slices.Sorted(maps.Keys(payload)) {
			fields = append(fields, logger.Any(k, payload[k]))
		}
		log.Info("domain event", fields...)
		return nil
	}
}
