package notify

import (
	"context"
	"errors"
	"strings"
	"time"

	"gopkg.in/gomail.v2"
)

type SMTPMailer struct {
	dialer   *gomail.Dialer
	sender   string
	fromName string
}

type SMTPOpts struct {
	Host     string
	Port     int
	User     string
	Password string
	Sender   string
	FromName string
}

func NewSMTPMailer(o SMTPOpts) (*SMTPMailer, error) {
	if o.Host == "" {
		return nil, errors.New("no mail host provided")
	}

	if o.Sender == "" {
		return nil, errors.New("no mail sender address provided")
	}

	user := o.User
	if user == "" {
		user = o.Sender
	}

	fromName := o.FromName
	if fromName == "" {
		fromName = appName
	}

	return &SMTPMailer{
		dialer:   gomail.NewDialer(o.Host, o.Port, user, o.Password),
		sender:   o.Sender,
		fromName: fromName,
	}, nil
}

func (s *SMTPMailer) SendVerificationCode(ctx context.Context, to, code string, ttl time.Duration) error {
	return s.send(ctx, to, verificationMessage(code, ttl))
}

func (s *SMTPMailer) SendPasswordResetCode(ctx context.Context, to, code string, ttl time.Duration) error {
	return s.send(ctx, to, passwordResetMessage(code, ttl))
}

func (s *SMTPMailer) send(ctx context.Context, to string, msg message) error {
	if strings.EqualFold(to, s.sender) {
		return errors.New("invalid email address")
	}

	if err := ctx.Err(); err != nil {
		return err
	}

	m := gomail.NewMessage()
	m.SetAddressHeader("From", s.sender, s.fromName)
	m.SetHeader("To", to)
	m.SetHeader("Subject", msg.Subject)
	m.SetBody("text/plain", msg.Text)
	m.AddAlternative("text/html", msg.HTML)

	return s.dialer.DialAndSend(m)
}
