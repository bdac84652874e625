package consumer

import (
	"context"
	"encoding/json"

	kafka_consumer "github.com/RoyceAzure/lab/rj_kafka/kafka/consumer"
	"github.com/RoyceAzure/lab/rj_kafka/kafka/message"
	"github.com/RoyceAzure/lab/telecom_shop/internal/infra/producer"
	"github.com/RoyceAzure/lab/telecom_shop/internal/service"
)

// NotificationConsumer 通知 worker
// 消費 notify topic，套模板寄信；寄失敗只記 log，訊息不重新入列
type NotificationConsumer struct {
	*baseConsumer
}

type notificationHandler struct {
	mailService service.IMailService
}

func NewNotificationConsumer(consumer kafka_consumer.Consumer, mailService service.IMailService) *NotificationConsumer {
	handler := &notificationHandler{mailService: mailService}
	return &NotificationConsumer{baseConsumer: newBaseConsumer(consumer, handler)}
}

func (h *notificationHandler) Handle(ctx context.Context, msg message.Message) error {
	var notification producer.NotificationMessage
	if err := json.Unmarshal(msg.Value, &notification); err != nil {
		return ErrUnknownDataFormat
	}
	if notification.TemplateKey == "" || notification.Recipient == "" {
		return ErrUnknownDataFormat
	}
	return h.mailService.SendNotification(ctx, notification)
}

var _ IBaseConsumer = (*NotificationConsumer)(nil)
