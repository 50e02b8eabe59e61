package eventbus

import (
	"fmt"
	"log/slog"
	"time"

	"github.com/ThreeDotsLabs/watermill"
	"github.com/ThreeDotsLabs/watermill-nats/v2/pkg/nats"
	"github.com/ThreeDotsLabs/watermill/message"
	"github.com/ThreeDotsLabs/watermill/pubsub/gochannel"
	nc "github.com/nats-io/nats.go"
)

// EventBus pairs a watermill publisher and subscriber over the same transport.
type EventBus struct {
	message.Publisher
	message.Subscriber

	logger *slog.Logger
}

// New connects to NATS at natsURL. An empty URL keeps events in-process on a
// Go channel pub/sub, which is what tests and single-node setups use.
func New(natsURL string, logger *slog.Logger) (*EventBus, error) {
	if logger == nil {
		logger = slog.Default()
	}
	wmLogger := watermill.NewSlogLogger(logger)

	if natsURL == "" {
		logger.Info("NATS URL not configured, using in-process event bus")
		return NewInMemory(logger), nil
	}

	marshaler := &nats.NATSMarshaler{}
	natsOptions := []nc.Option{
		nc.RetryOnFailedConnect(true),
		nc.Timeout(30 * time.Second),
		nc.ReconnectWait(1 * time.Second),
	}

	publisher, err := nats.NewPublisher(
		nats.PublisherConfig{
			URL:         natsURL,
			Marshaler:   marshaler,
			NatsOptions: natsOptions,
			JetStream:   nats.JetStreamConfig{Disabled: true},
		},
		wmLogger,
	)
	if err != nil {
		logger.Error("Failed to create Watermill publisher", slog.Any("error", err))
		return nil, fmt.Errorf("failed to create Watermill publisher: %w", err)
	}

	subscriber, err := nats.NewSubscriber(
		nats.SubscriberConfig{
			URL:              natsURL,
			Unmarshaler:      marshaler,
			QueueGroupPrefix: "opti-runner",
			SubscribersCount: 4,
			CloseTimeout:     30 * time.Second,
			AckWaitTimeout:   30 * time.Second,
			NatsOptions:      natsOptions,
			JetStream:        nats.JetStreamConfig{Disabled: true},
		},
		wmLogger,
	)
	if err != nil {
		publisher.Close()
		logger.Error("Failed to create Watermill subscriber", slog.Any("error", err))
		return nil, fmt.Errorf("failed to create Watermill subscriber: %w", err)
	}

	logger.Info("Event bus connected to NATS", slog.String("url", natsURL))
	return &EventBus{Publisher: publisher, Subscriber: subscriber, logger: logger}, nil
}

// NewInMemory returns an EventBus backed by a single gochannel pub/sub.
func NewInMemory(logger *slog.Logger) *EventBus {
	if logger == nil {
		logger = slog.Default()
	}
	pubsub := gochannel.NewGoChannel(gochannel.Config{OutputChannelBuffer: 64}, watermill.NewSlogLogger(logger))
	return &EventBus{Publisher: pubsub, Subscriber: pubsub, logger: logger}
}

// Close closes the publisher and subscriber.
func (eb *EventBus) Close() error {
	var firstErr error
	if err := eb.Publisher.Close(); err != nil {
		firstErr = fmt.Errorf("failed to close publisher: %w", err)
	}
	if err := eb.Subscriber.Close(); err != nil && firstErr == nil {
		firstErr = fmt.Errorf("failed to close subscriber: %w", err)
	}
	return firstErr
}
