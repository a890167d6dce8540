package notify

import (
	"fmt"
	"time"

	"github.com/wneessen/go-mail"
	"woodlinks-backend/internal/logger"
	"woodlinks-backend/internal/models"
)

//go:generate mockgen -destination=../mocks/mock_notifier.go -package=mocks woodlinks-backend/internal/notify Notifier

// Notifier tells the back-office about order events.
type Notifier interface {
	OrderPaid(order *models.Order) error
}

type Config struct {
	SMTPHost     string
	SMTPPort     int
	SMTPUsername string
	SMTPPassword string
	FromEmail    string
	FromName     string
	AdminEmail   string
	BaseURL      string
}

type SMTPMailer struct {
	config *Config
	logger logger.Logger
}

// NewSMTPMailer returns a mailer that only logs when no SMTP host is set.
func NewSMTPMailer(config *Config, log logger.Logger) *SMTPMailer {
	return &SMTPMailer{config: config, logger: log}
}

func (m *SMTPMailer) OrderPaid(order *models.Order) error {
	subject := fmt.Sprintf("[WoodLinks] Order %s paid", order.ID)
	body := fmt.Sprintf(
		"Order %s has been paid.\n\nMaterial: %s\nQuantity: %d\nShip to: %s\n%s %s\n\nManage: %s/admin/orders/%s\n",
		order.ID, order.Material, order.Quantity, order.ShippingName,
		order.ShippingPostalCode, order.ShippingAddress1, m.config.BaseURL, order.ID)

	msg, err := m.newMessage(m.config.AdminEmail, subject, body)
	if err != nil {
		return err
	}

	client, err := m.createSMTPClient()
	if err != nil {
		return err
	}
	if client == nil {
		m.logger.WithFields(map[string]interface{}{
			"to":       m.config.AdminEmail,
			"subject":  subject,
			"order_id": order.ID.String(),
		}).Info("SMTP not configured, notification logged only")
		return nil
	}

	if err := client.DialAndSend(msg); err != nil {
		return fmt.Errorf("failed to send order notification: %w", err)
	}
	return nil
}

func (m *SMTPMailer) newMessage(to, subject, body string) (*mail.Msg, error) {
	msg := mail.NewMsg(mail.WithNoDefaultUserAgent())
	if err := msg.FromFormat(m.config.FromName, m.config.FromEmail); err != nil {
		return nil, fmt.Errorf("failed to set email from address: %w", err)
	}
	if err := msg.To(to); err != nil {
		return nil, fmt.Errorf("failed to set email recipient: %w", err)
	}
	msg.Subject(subject)
	msg.SetBodyString(mail.TypeTextPlain, body)
	return msg, nil
}

func (m *SMTPMailer) createSMTPClient() (*mail.Client, error) {
	if m.config.SMTPHost == "" {
		return nil, nil
	}

	options := []mail.Option{
		mail.WithPort(m.config.SMTPPort),
		mail.WithTLSPolicy(mail.TLSOpportunistic),
		mail.WithTimeout(10 * time.Second),
	}
	if m.config.SMTPUsername != "" && m.config.SMTPPassword != "" {
		options = append(options,
			mail.WithUsername(m.config.SMTPUsername),
			mail.WithPassword(m.config.SMTPPassword),
			mail.WithSMTPAuth(mail.SMTPAuthPlain),
		)
	}

	client, err := mail.NewClient(m.config.SMTPHost, options...)
	if err != nil {
		return nil, fmt.Errorf("failed to create SMTP client: %w", err)
	}
	return client, nil
}
