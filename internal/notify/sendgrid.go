// Package notify delivers committed sale documents to customers.
package notify

import (
	"context"
	"encoding/base64"
	"fmt"

	"github.com/sendgrid/sendgrid-go"
	"github.com/sendgrid/sendgrid-go/helpers/mail"
	"go.uber.org/zap"

	"github.com/nikolayk812/pos-checkout/internal/domain"
	"github.com/nikolayk812/pos-checkout/internal/port"
)

// sendGridSender implements port.NotificationSender over the SendGrid API.
type sendGridSender struct {
	apiKey   string
	from     string
	fromName string
	logger   *zap.Logger
}

func NewSendGridSender(apiKey, from, fromName string, logger *zap.Logger) port.NotificationSender {
	if logger == nil {
		logger = zap.NewNop()
	}
	return &sendGridSender{apiKey: apiKey, from: from, fromName: fromName, logger: logger}
}

func (s *sendGridSender) SendReceipt(ctx context.Context, email string, sale domain.Sale, document []byte) error {
	if s.apiKey == "" {
		return fmt.Errorf("sendgrid api key is empty")
	}
	if email == "" {
		return fmt.Errorf("recipient email is empty")
	}

	number := ""
	if sale.DocumentNumber != nil {
		number = *sale.DocumentNumber
	}

	subject := fmt.Sprintf("Your purchase document %s", number)
	body := fmt.Sprintf("Sale %d, total %s %s. The document is attached.",
		sale.ID, sale.Total.Currency, sale.Total.Amount.StringFixed(2))

	message := mail.NewSingleEmail(
		mail.NewEmail(s.fromName, s.from),
		subject,
		mail.NewEmail("", email),
		body,
		fmt.Sprintf("<pre>%s</pre>", body),
	)

	attachment := mail.NewAttachment()
	attachment.SetContent(base64.StdEncoding.EncodeToString(document))
	attachment.SetType("application/pdf")
	attachment.SetFilename(fmt.Sprintf("%s_%d.pdf", number, sale.ID))
	attachment.SetDisposition("attachment")
	message.AddAttachment(attachment)

	client := sendgrid.NewSendClient(s.apiKey)
	response, err := client.SendWithContext(ctx, message)
	if err != nil {
		return fmt.Errorf("client.SendWithContext: %w", err)
	}

	if response.StatusCode >= 400 {
		return fmt.Errorf("sendgrid send failed: status=%d body=%s", response.StatusCode, response.Body)
	}

	s.logger.Info("receipt mail sent",
		zap.Int64("sale_id", sale.ID),
		zap.String("to", email),
		zap.Int("status", response.StatusCode))

	return nil
}
