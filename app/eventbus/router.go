package eventbus

import (
	"context"
	"encoding/json"
	"fmt"
	"log/slog"
	"time"

	"github.com/ThreeDotsLabs/watermill"
	"github.com/ThreeDotsLabs/watermill/components/metrics"
	"github.com/ThreeDotsLabs/watermill/message"
	"github.com/ThreeDotsLabs/watermill/message/router/middleware"
	"github.com/prometheus/client_golang/prometheus"
)

// Router wraps a watermill router bound to one subscriber.
type Router struct {
	*message.Router

	subscriber message.Subscriber
	logger     *slog.Logger
}

// NewRouter builds a router with correlation, recovery and retry middleware.
// A nil registry skips the Prometheus router metrics.
func NewRouter(logger *slog.Logger, subscriber message.Subscriber, registry *prometheus.Registry) (*Router, error) {
	if logger == nil {
		logger = slog.Default()
	}
	wmLogger := watermill.NewSlogLogger(logger)

	router, err := message.NewRouter(message.RouterConfig{CloseTimeout: 30 * time.Second}, wmLogger)
	if err != nil {
		return nil, fmt.Errorf("failed to create watermill router: %w", err)
	}

	if registry != nil {
		builder := metrics.NewPrometheusMetricsBuilder(registry, "", "")
		builder.AddPrometheusRouterMetrics(router)
	}

	router.AddMiddleware(
		middleware.CorrelationID,
		middleware.Recoverer,
		middleware.Retry{
			MaxRetries:      3,
			InitialInterval: 100 * time.Millisecond,
			Logger:          wmLogger,
		}.Middleware,
	)

	return &Router{Router: router, subscriber: subscriber, logger: logger}, nil
}

// Handle registers a consumer for topic that decodes each message as T.
// Undecodable messages are logged and acked so they do not block the topic.
func Handle[T any](r *Router, name, topic string, fn func(ctx context.Context, payload T) error) {
	r.Router.AddNoPublisherHandler(name, topic, r.subscriber, func(msg *message.Message) error {
		ctx := WithCorrelationID(msg.Context(), middleware.MessageCorrelationID(msg))

		var payload T
		if err := json.Unmarshal(msg.Payload, &payload); err != nil {
			r.logger.ErrorContext(ctx, "Dropping undecodable message",
				slog.String("handler", name),
				slog.String("topic", topic),
				slog.String("message_id", msg.UUID),
				slog.Any("error", err),
			)
			return nil
		}

		if err := fn(ctx, payload); err != nil {
			r.logger.ErrorContext(ctx, "Error processing message",
				slog.String("handler", name),
				slog.String("message_id", msg.UUID),
				slog.Any("error", err),
			)
			return err
		}
		return nil
	})
}
