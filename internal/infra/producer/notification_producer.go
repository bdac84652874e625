package producer

import (
	"context"
	"encoding/json"
	"time"

	"github.com/RoyceAzure/lab/rj_kafka/kafka/message"
	"github.com/RoyceAzure/lab/rj_kafka/kafka/producer"
)

// 通知走 Kafka 出去，由 notifier worker 消費後套模板寄信
// 訂單主流程不等寄信結果，寄失敗由 worker 自己重試
type NotificationProducer struct {
	producer producer.Producer
}

type NotificationTemplate string

var (
	TemplateOrderConfirmation NotificationTemplate = "order_confirmation"
	TemplateOrderStatusChange NotificationTemplate = "order_status_change"
	TemplateOrderAlert        NotificationTemplate = "order_alert" // 商務信箱的新單通知
	TemplateSubscriptionAck   NotificationTemplate = "subscription_ack"
	TemplateWifiTicket        NotificationTemplate = "wifi_ticket"
)

// NotificationMessage 通知 payload，data 內容由模板自己解釋
type NotificationMessage struct {
	TemplateKey NotificationTemplate   `json:"template_key"`
	Recipient   string                 `json:"recipient"`
	Data        map[string]interface{} `json:"data"`
	CreatedAt   time.Time              `json:"created_at"`
}

type INotificationProducer interface {
	Notify(ctx context.Context, template NotificationTemplate, recipient string, data map[string]interface{}) error
}

func NewNotificationProducer(producer producer.Producer) *NotificationProducer {
	return &NotificationProducer{producer: producer}
}

func (p *NotificationProducer) Notify(ctx context.Context, template NotificationTemplate, recipient string, data map[string]interface{}) error {
	msg, err := p.convertToMessage(template, recipient, data)
	if err != nil {
		return err
	}

	return p.producer.Produce(ctx, []message.Message{msg})
}

func (p *NotificationProducer) convertToMessage(template NotificationTemplate, recipient string, data map[string]interface{}) (message.Message, error) {
	payload := NotificationMessage{
		TemplateKey: template,
		Recipient:   recipient,
		Data:        data,
		CreatedAt:   time.Now().UTC(),
	}
	value, err := json.Marshal(payload)
	if err != nil {
		return message.Message{}, err
	}

	msg := message.Message{
		Key:   []byte(recipient),
		Value: value,
		Headers: []message.Header{
			{
				Key:   "template_key",
				Value: []byte(template),
			},
		},
	}

	return msg, nil
}

var _ INotificationProducer = (*NotificationProducer)(nil)
