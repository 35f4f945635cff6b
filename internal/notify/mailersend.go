package notify

import (
	"context"
	"errors"
	"fmt"
	"io"
	"strings"
	"time"

	"github.com/mailersend/mailersend-go"
)

const sendTimeout = 10 * time.Second

// MailerSendMailer delivers through the MailerSend HTTP API
type MailerSendMailer struct {
	client *mailersend.Mailersend
	from   mailersend.From
}

func NewMailerSendMailer(apiKey, fromName, fromEmail string) (*MailerSendMailer, error) {
	if apiKey == "" {
		return nil, errors.New("no mailersend api key provided")
	}

	if fromEmail == "" {
		return nil, errors.New("no mail sender address provided")
	}

	if fromName == "" {
		fromName = appName
	}

	return &MailerSendMailer{
		client: mailersend.NewMailersend(apiKey),
		from: mailersend.From{
			Name:  fromName,
			Email: fromEmail,
		},
	}, nil
}

func (m *MailerSendMailer) SendVerificationCode(ctx context.Context, to, code string, ttl time.Duration) error {
	return m.send(ctx, to, verificationMessage(code, ttl))
}

func (m *MailerSendMailer) SendPasswordResetCode(ctx context.Context, to, code string, ttl time.Duration) error {
	return m.send(ctx, to, passwordResetMessage(code, ttl))
}

func (m *MailerSendMailer) send(ctx context.Context, to string, msg message) error {
	ctx, cancel := context.WithTimeout(ctx, sendTimeout)
	defer cancel()

	email := m.client.Email.NewMessage()
	email.SetFrom(m.from)
	email.SetRecipients([]mailersend.Recipient{{Email: to}})
	email.SetSubject(msg.Subject)
	email.SetText(msg.Text)
	email.SetHTML(msg.HTML)

	res, err := m.client.Email.Send(ctx, email)
	if err != nil {
		return err
	}
	defer res.Body.Close()

	if res.StatusCode < 200 || res.StatusCode >= 300 {
		body, _ := io.ReadAll(res.Body)
		return fmt.Errorf("mailersend error: status=%d body=%s", res.StatusCode, strings.TrimSpace(string(body)))
	}

	return nil
}
