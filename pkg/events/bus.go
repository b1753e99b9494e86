package events

import (
	"context"
	"errors"

	"github.com/ThreeDotsLabs/watermill"
	"github.com/ThreeDotsLabs/watermill/message"
	"github.com/ThreeDotsLabs/watermill/pubsub/gochannel"
)

// Bus is an in-process publisher backed by a watermill GoChannel.
type Bus struct {
	pubSub *gochannel.GoChannel
	topic  string
}

func NewBus(topic string, logger watermill.LoggerAdapter) *Bus {
	if logger == nil {
		logger = watermill.NopLogger{}
	}
	return &Bus{
		pubSub: gochannel.NewGoChannel(gochannel.Config{OutputChannelBuffer: 64}, logger),
		topic:  topic,
	}
}

func (b *Bus) Publish(ctx context.Context, event Event) error {
	payload, err := Encode(event)
	if err != nil {
		return err
	}

	msg := message.NewMessage(watermill.NewUUID(), payload)
	msg.SetContext(ctx)
	msg.Metadata.Set("type", event.EventType())

	return b.pubSub.Publish(b.topic, msg)
}

// Subscribe returns the message stream for the bus topic. Messages must be
// acked by the consumer.
func (b *Bus) Subscribe(ctx context.Context) (<-chan *message.Message, error) {
	return b.pubSub.Subscribe(ctx, b.topic)
}

func (b *Bus) Close() error {
	return b.pubSub.Close()
}

// Fanout publishes to every publisher and reports all failures together.
type Fanout []Publisher

func (f Fanout) Publish(ctx context.Context, event Event) error {
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
