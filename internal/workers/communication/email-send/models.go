package emailsend

import (
	"context"
	"time"

	"news-intel/internal/common/logger"
	"news-intel/internal/models"
)

// Sender delivers one message and returns the provider's message ID.
type Sender interface {
	Send(ctx context.Context, msg *models.EmailMessage) (string, error)
	Name() string
}

type Output struct {
	Success   bool      `json:"success"`
	Message   string    `json:"message"`
	MessageID string    `json:"messageId,omitempty"`
	Provider  string    `json:"provider,omitempty"`
	SentAt    time.Time `json:"sentAt,omitempty"`
}

type ServiceDependencies struct {
	Logger logger.Logger
	Sender Sender
}

type recipient struct {
	Address string `validate:"required,email"`
}
