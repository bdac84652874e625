package service

import (
	"bytes"
	"context"
	"fmt"
	"text/template"

	"github.com/RoyceAzure/lab/telecom_shop/internal/infra/producer"
	"github.com/RoyceAzure/rj/infra/mail"
)

type IMailService interface {
	SendNotification(ctx context.Context, msg producer.NotificationMessage) error
}

// 通知信寄送，吃 notifier worker 消費下來的訊息
type MailService struct {
	mail.EmailSender
}

// NewMailService 初始化 mail service
// 參數:
//
//	senderName: 寄件者屬名
//	fromEmailAddress: 寄件者郵件地址
//	fromEmailPassword: 寄件者郵件密碼
func NewMailService(senderName, fromEmailAddress, fromEmailPassword string) IMailService {
	return &MailService{
		mail.NewGmailSender(senderName, fromEmailAddress, fromEmailPassword),
	}
}

func (m *MailService) SendNotification(ctx context.Context, msg producer.NotificationMessage) error {
	subject, ok := templateSubjects[msg.TemplateKey]
	if !ok {
		return fmt.Errorf("unknown notification template: %s", msg.TemplateKey)
	}

	html, err := renderNotificationHTML(msg)
	if err != nil {
		return err
	}

	return m.SendEmail(subject, html, []string{msg.Recipient}, nil, nil, nil)
}

var templateSubjects = map[producer.NotificationTemplate]string{
	producer.TemplateOrderConfirmation: "Confirmation de votre commande",
	producer.TemplateOrderStatusChange: "Mise à jour de votre commande",
	producer.TemplateOrderAlert:        "Nouvelle commande reçue",
	producer.TemplateSubscriptionAck:   "Nouvelle demande d'abonnement",
	producer.TemplateWifiTicket:        "Vos identifiants WiFi",
}

func renderNotificationHTML(msg producer.NotificationMessage) (string, error) {
	tmpl, err := template.New("notificationHTML").Parse(notificationTemplate)
	if err != nil {
		return "", fmt.Errorf("解析 HTML 模板失敗: %w", err)
	}

	var buf bytes.Buffer
	if err := tmpl.Execute(&buf, msg); err != nil {
		return "", fmt.Errorf("執行 HTML 模板失敗: %w", err)
	}

	return buf.String(), nil
}

// HTML 模板，所有通知共用一個骨架，欄位照 Data 列出
const notificationTemplate = `
<!DOCTYPE html>
<html>
<head>
    <meta charset="UTF-8">
    <style>
        body { font-family: Arial, sans-serif; line-height: 1.6; color: #333; }
        .container { max-width: 600px; margin: 0 auto; padding: 20px; }
        .header { background-color: #007bff; color: white; padding: 20px; text-align: center; }
        .content { padding: 30px; background-color: #f9f9f9; }
        .row { padding: 4px 0; border-bottom: 1px solid #eee; }
        .footer { padding: 20px; text-align: center; font-size: 12px; color: #666; }
    </style>
</head>
<body>
    <div class="container">
        <div class="header"><h2>{{.TemplateKey}}</h2></div>
        <div class="content">
            {{range $key, $value := .Data}}
            <div class="row"><strong>{{$key}}</strong>: {{$value}}</div>
            {{end}}
        </div>
        <div class="footer">{{.CreatedAt}}</div>
    </div>
</body>
</html>
`
