package emailsend

import (
	"context"

	"news-intel/internal/common/logger"
	"news-intel/internal/models"
)

// LogSender writes messages to the log instead of delivering them.
type LogSender struct {
	logger logger.Logger
}

func NewLogSender(log logger.Logger) *LogSender {
	return &LogSender{logger: log}
}

func (s *LogSender) Name() string { return "log" }

func (s *LogSender) Send(_ context.Context, msg *models.EmailMessage) (string, error) {
	id := messageID(msg)
	s.logger.Info("dry run: email not sent", map[string]interface{}{
		"messageId": id,
		"from":      msg.From,
		"to":        msg.To,
		"subject":   msg.Subject,
		"body":      msg.Body,
	})
	return id, nil
}
