package emailsend

import (
	"context"
	"fmt"
	"strings"
	"time"

	apperrors "news-intel/internal/common/errors"
	"news-intel/internal/common/logger"
	"news-intel/internal/common/metrics"
	"news-intel/internal/common/validation"
	"news-intel/internal/models"

	"github.com/google/uuid"
)

type Service struct {
	config *Config
	logger logger.Logger
	sender Sender
}

func NewService(deps ServiceDependencies, config *Config) *Service {
	return &Service{
		config: config,
		logger: deps.Logger.With(map[string]interface{}{"stage": metrics.StageSend}),
		sender: deps.Sender,
	}
}

// Subject returns "<prefix>: <name>", or "<prefix> (Raw): <name>" for fallback digests.
func (s *Service) Subject(customerName string, fallback bool) string {
	if fallback {
		return fmt.Sprintf("%s (Raw): %s", s.config.SubjectPrefix, customerName)
	}
	return fmt.Sprintf("%s: %s", s.config.SubjectPrefix, customerName)
}

// Send delivers a plain text message to one recipient. Failures are logged
// and reported in the Output; they are never returned.
func (s *Service) Send(ctx context.Context, to, subject, body string) *Output {
	provider := s.sender.Name()

	if res := validation.ValidateStruct(recipient{Address: strings.TrimSpace(to)}); !res.Valid {
		err := apperrors.NewValidationError(fmt.Sprintf("invalid recipient address %q", to))
		return s.fail(provider, to, err)
	}

	msg := &models.EmailMessage{
		ID:      uuid.New().String(),
		From:    s.config.DefaultFrom,
		To:      strings.TrimSpace(to),
		Subject: subject,
		Body:    body,
		Created: time.Now().UTC(),
	}

	ctx, cancel := context.WithTimeout(ctx, s.config.Timeout)
	defer cancel()

	start := time.Now()
	messageID, err := s.sender.Send(ctx, msg)
	metrics.StageDuration.WithLabelValues(metrics.StageSend).Observe(time.Since(start).Seconds())
	if err != nil {
		return s.fail(provider, to, err)
	}

	metrics.EmailsSent.WithLabelValues(provider, "sent").Inc()
	s.logger.Info("Email sent successfully", map[string]interface{}{
		"to":        msg.To,
		"subject":   subject,
		"messageId": messageID,
		"provider":  provider,
	})

	return &Output{
		Success:   true,
		Message:   "Email sent successfully",
		MessageID: messageID,
		Provider:  provider,
		SentAt:    time.Now().UTC(),
	}
}

func (s *Service) fail(provider, to string, err error) *Output {
	code := apperrors.CodeOf(err)
	metrics.EmailsSent.WithLabelValues(provider, "failed").Inc()
	metrics.StageFailures.WithLabelValues(metrics.StageSend, string(code)).Inc()
	s.logger.Error("Failed to send email", map[string]interface{}{
		"to":        to,
		"provider":  provider,
		"error":     err.Error(),
		"errorCode": code,
	})
	return &Output{
		Success:  false,
		Message:  err.Error(),
		Provider: provider,
	}
}
