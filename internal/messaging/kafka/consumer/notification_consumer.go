package consumer

import (
	"context"
	"encoding/json"

	"github.com/Corose/dashboard/internal/events"
	"github.com/Corose/dashboard/internal/notification"

	kafkago "github.com/segmentio/kafka-go"
	"go.uber.org/zap"
)

// ConsumeNotifications forwards panel events to the configured sink (the
// Teams channel). Delivery failures are logged and the message is committed
// anyway: a lost ping is cheaper than a blocked partition.
func ConsumeNotifications(
	ctx context.Context,
	reader *kafkago.Reader,
	sink notification.Sink,
	logger *zap.Logger,
) {
	log := logger.Named("kafka.consumer.notifications")
	log.Info("notification consumer started")

	for {
		msg, err := reader.FetchMessage(ctx)
		if err != nil {
			if ctx.Err() != nil {
				log.Info("notification consumer stopped")
				return
			}
			log.Error("fetch notification message failed", zap.Error(err))
			continue
		}

		var event events.NotificationEvent
		if err := json.Unmarshal(msg.Value, &event); err != nil {
			log.Error("decode notification event failed", zap.Error(err))
			_ = reader.CommitMessages(ctx, msg)
			continue
		}

		if err := sink.Send(ctx, event.Text); err != nil {
			log.Error("send notification failed",
				zap.String("event_type", event.EventType),
				zap.String("request_id", event.RequestID),
				zap.Error(err),
			)
		} else {
			log.Info("notification delivered",
				zap.String("event_type", event.EventType),
				zap.String("request_id", event.RequestID),
			)
		}

		if err := reader.CommitMessages(ctx, msg); err != nil {
			log.Error("commit notification message failed", zap.Error(err))
		}
	}
}
