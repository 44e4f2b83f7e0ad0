package emailsend

import (
	"context"
	"crypto/tls"
	"fmt"
	"net"
	"net/smtp"
	"strconv"

	apperrors "news-intel/internal/common/errors"
	"news-intel/internal/models"
)

// SMTPSender submits each message in its own session: connect, STARTTLS,
// PLAIN auth, one message, quit.
type SMTPSender struct {
	config    *Config
	tlsConfig *tls.Config
}

func NewSMTPSender(config *Config) *SMTPSender {
	return &SMTPSender{
		config: config,
		tlsConfig: &tls.Config{
			ServerName: config.SMTPHost,
			MinVersion: tls.VersionTLS12,
		},
	}
}

func (s *SMTPSender) Name() string { return "smtp" }

func (s *SMTPSender) Send(ctx context.Context, msg *models.EmailMessage) (string, error) {
	if err := ctx.Err(); err != nil {
		return "", apperrors.NewTransportError("smtp", fmt.Errorf("context cancelled before sending email: %w", err))
	}

	raw, err := buildMIME(msg)
	if err != nil {
		return "", apperrors.NewParseError("smtp message", err)
	}

	if err := s.deliver(ctx, msg.From, msg.To, raw); err != nil {
		return "", err
	}
	return messageID(msg), nil
}

func (s *SMTPSender) deliver(ctx context.Context, from, to string, raw []byte) error {
	addr := net.JoinHostPort(s.config.SMTPHost, strconv.Itoa(s.config.SMTPPort))

	dialer := &net.Dialer{Timeout: s.config.Timeout}
	conn, err := dialer.DialContext(ctx, "tcp", addr)
	if err != nil {
		return apperrors.NewTransportError("smtp connect", err)
	}
	if deadline, ok := ctx.Deadline(); ok {
		_ = conn.SetDeadline(deadline)
	}

	client, err := smtp.NewClient(conn, s.config.SMTPHost)
	if err != nil {
		_ = conn.Close()
		return apperrors.NewTransportError("smtp handshake", err)
	}
	defer client.Close()

	if s.config.UseTLS {
		if err = client.StartTLS(s.tlsConfig); err != nil {
			return apperrors.NewTransportError("smtp starttls", err)
		}
	}

	if s.config.SMTPUsername != "" && s.config.SMTPPassword != "" {
		auth := smtp.PlainAuth("", s.config.SMTPUsername, s.config.SMTPPassword, s.config.SMTPHost)
		if err = client.Auth(auth); err != nil {
			return apperrors.NewAuthError("smtp", err)
		}
	}

	if err = client.Mail(from); err != nil {
		return apperrors.NewTransportError("smtp sender", err)
	}
	if err = client.Rcpt(to); err != nil {
		return apperrors.NewTransportError("smtp recipient", err).WithMetadata("recipient", to)
	}

	w, err := client.Data()
	if err != nil {
		return apperrors.NewTransportError("smtp data", err)
	}
	if _, err = w.Write(raw); err != nil {
		return apperrors.NewTransportError("smtp data", err)
	}
	if err = w.Close(); err != nil {
		return apperrors.NewTransportError("smtp data", err)
	}

	if err = client.Quit(); err != nil {
		return apperrors.NewTransportError("smtp quit", err)
	}
	return nil
}
