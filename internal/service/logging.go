package service

import (
	"shareit/internal/domain"

	"github.com/rs/zerolog"
)

// logFailure starts a log event for a failed operation: domain errors are
// expected outcomes and go to debug, anything else to error.
func logFailure(logger *zerolog.Logger, err error) *zerolog.Event {
	kind := domain.Kind(err)
	if kind == domain.KindInternal {
		return logger.Error().Err(err)
	}
	return logger.Debug().Err(err).Str("kind", kind)
}

func publish(logger *zerolog.Logger, publisher domain.EventPublisher, eventType string, payload interface{}) {
	if publisher == nil {
		return
	}
	if err := publisher.PublishJSON(eventType, payload); err != nil {
		logger.Error().Err(err).Str("event", eventType).Msg("failed to publish event")
	}
}
