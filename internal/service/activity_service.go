package service

import (
	"context"

	"notekeeper-be/internal/pkg/logger"
	"notekeeper-be/pkg/events"

	"github.com/ThreeDotsLabs/watermill/message"
)

// MessageSource is satisfied by *events.Bus.
type MessageSource interface {
	Subscribe(ctx context.Context) (<-chan *message.Message, error)
}

type IActivityService interface {
	// Consume subscribes and processes messages in the background until ctx
	// is cancelled or the source is closed. done is closed when it stops.
	Consume(ctx context.Context) (done <-chan struct{}, err error)
}

type activityService struct {
	source      MessageSource
	activityLog logger.ILogger
}

// NewActivityService records one line per note lifecycle event in
// activityLog, which is normally an isolated file logger.
func NewActivityService(source MessageSource, activityLog logger.ILogger) IActivityService {
	return &activityService{
		source:      source,
		activityLog: activityLog,
	}
}

func (s *activityService) Consume(ctx context.Context) (<-chan struct{}, error) {
	messages, err := s.source.Subscribe(ctx)
	if err != nil {
		return nil, err
	}

	done := make(chan struct{})
	go func() {
		defer close(done)
		for msg := range messages {
			s.processMessage(msg)
		}
	}()

	return done, nil
}

func (s *activityService) processMessage(msg *message.Message) {
	// Malformed messages are acked too; redelivery would not fix them.
	defer msg.Ack()

	evt, err := events.Decode(msg.Payload)
	if err != nil {
		s.activityLog.Warn("ACTIVITY", "Dropping malformed event", map[string]interface{}{
			"message_id": msg.UUID,
			"error":      err.Error(),
		})
		return
	}

	details := map[string]interface{}{
		"message_id":  msg.UUID,
		"occurred_at": evt.OccurredAt,
	}
	for k, v := range evt.Data {
		details[k] = v
	}

	s.activityLog.Info("ACTIVITY", evt.Type, details)
}
