package notification

import (
	"context"
	"fmt"
	"mime"
	"net/http"
	"net/smtp"
	"strings"

	"institute/logger"

	"github.com/sendgrid/sendgrid-go"
	sgmail "github.com/sendgrid/sendgrid-go/helpers/mail"
	"go.uber.org/zap"
)

// Sender delivers one rendered message to one recipient.
type Sender interface {
	Send(ctx context.Context, to string, msg Message) error
}

type SendgridSender struct {
	client *sendgrid.Client
	from   *sgmail.Email
}

var _ Sender = (*SendgridSender)(nil)

func NewSendgridSender(apiKey, fromName, fromEmail string) *SendgridSender {
	return &SendgridSender{
		client: sendgrid.NewSendClient(apiKey),
		from:   sgmail.NewEmail(fromName, fromEmail),
	}
}

func (s *SendgridSender) Send(ctx context.Context, to string, msg Message) error {
	m := sgmail.NewSingleEmail(s.from, msg.Subject, sgmail.NewEmail("", to), msg.Text, msg.HTML)
	res, err := s.client.SendWithContext(ctx, m)
	if err != nil {
		return fmt.Errorf("sendgrid: %w", err)
	}
	if res.StatusCode >= http.StatusBadRequest {
		return fmt.Errorf("sendgrid: status %d: %s", res.StatusCode, res.Body)
	}
	return nil
}

type SMTPSender struct {
	host     string
	port     string
	from     string
	fromName string
	password string
}

var _ Sender = (*SMTPSender)(nil)

func NewSMTPSender(host, port, from, fromName, password string) *SMTPSender {
	return &SMTPSender{host: host, port: port, from: from, fromName: fromName, password: password}
}

func (s *SMTPSender) Send(ctx context.Context, to string, msg Message) error {
	auth := smtp.PlainAuth("", s.from, s.password, s.host)
	body := buildMIME(s.fromName, s.from, to, msg)

	// net/smtp has no context support; the send keeps running in the background
	// after ctx expires and its result is dropped.
	done := make(chan error, 1)
	go func() {
		done <- smtp.SendMail(s.host+":"+s.port, auth, s.from, []string{to}, body)
	}()

	select {
	case err := <-done:
		if err != nil {
			return fmt.Errorf("smtp: %w", err)
		}
		return nil
	case <-ctx.Done():
		return fmt.Errorf("smtp: %w", ctx.Err())
	}
}

func buildMIME(fromName, from, to string, msg Message) []byte {
	var b strings.Builder
	b.WriteString("MIME-version: 1.0;\r\nContent-Type: text/html; charset=\"UTF-8\";\r\n")
	fmt.Fprintf(&b, "From: %s <%s>\r\n", mime.QEncoding.Encode("utf-8", headerLine(fromName)), headerLine(from))
	fmt.Fprintf(&b, "To: %s\r\n", headerLine(to))
	fmt.Fprintf(&b, "Subject: %s\r\n\r\n", mime.QEncoding.Encode("utf-8", headerLine(msg.Subject)))
	b.WriteString(msg.HTML)
	return []byte(b.String())
}

// headerLine folds any line breaks so a value cannot start a new header.
func headerLine(s string) string {
	return strings.Join(strings.Fields(strings.NewReplacer("\r", " ", "\n", " ").Replace(s)), " ")
}

// ConsoleSender logs messages instead of sending them; for local development.
type ConsoleSender struct {
	log *logger.Logger
}

var _ Sender = (*ConsoleSender)(nil)

func NewConsoleSender(log *logger.Logger) *ConsoleSender {
	return &ConsoleSender{log: log}
}

func (s *ConsoleSender) Send(_ context.Context, to string, msg Message) error {
	s.log.Info("email",
		zap.String("to", to),
		zap.String("subject", msg.Subject),
		zap.String("text", msg.Text),
	)
	return nil
}

// NewSender picks an implementation by backend name.
func NewSender(backend string, cfg SenderConfig, log *logger.Logger) (Sender, error) {
	switch backend {
	case "sendgrid":
		if cfg.SendgridAPIKey == "" {
			return nil, fmt.Errorf("SENDGRID_API_KEY is required for the sendgrid backend")
		}
		return NewSendgridSender(cfg.SendgridAPIKey, cfg.FromName, cfg.From), nil
	case "smtp":
		return NewSMTPSender(cfg.SMTPHost, cfg.SMTPPort, cfg.From, cfg.FromName, cfg.Password), nil
	case "console", "":
		return NewConsoleSender(log), nil
	default:
		return nil, fmt.Errorf("unsupported EMAIL_BACKEND %q", backend)
	}
}

type SenderConfig struct {
	SendgridAPIKey string
	From           string
	FromName       string
	Password       string
	SMTPHost       string
	SMTPPort       string
}
