package pipeline

import (
	"context"
	"time"

	"news-intel/internal/common/logger"
	"news-intel/internal/common/observability"
	"news-intel/internal/models"
	emailsend "news-intel/internal/workers/communication/email-send"
)

// Per-customer states, in the order a customer moves through them.
const (
	StateSearching = "searching"
	StateFiltering = "filtering"
	StateComposing = "composing"
	StateSkipped   = "skipped"
	StateSending   = "sending"
	StateDone      = "done"
	StateFailed    = "failed"
)

// Results recorded as metric labels and in the run report.
const (
	ResultSent           = "sent"
	ResultDeliveryFailed = "delivery_failed"
	ResultNoNews         = "no_news"
	ResultNoBody         = "no_body"
	ResultComposeFailed  = "compose_failed"
	ResultCancelled      = "cancelled"
	ResultPanic          = "panic"
)

type Searcher interface {
	Search(ctx context.Context, topic string, limit int) []models.SearchResult
}

type Filter interface {
	Filter(ctx context.Context, results []models.SearchResult, profile string) []models.SearchResult
}

type Composer interface {
	Compose(ctx context.Context, results []models.SearchResult, profile string, crm *models.CRMBook, isFallback bool) (string, error)
}

type Notifier interface {
	Subject(customerName string, fallback bool) string
	Send(ctx context.Context, to, subject, body string) *emailsend.Output
}

type Dependencies struct {
	Logger        logger.Logger
	Searcher      Searcher
	Filter        Filter
	Composer      Composer
	Notifier      Notifier
	CRM           *models.CRMBook
	Observability *observability.Observability
}

// Outcome is the result of one customer iteration.
type Outcome struct {
	Customer  string        `json:"customer"`
	Email     string        `json:"email"`
	State     string        `json:"state"`
	Stage     string        `json:"stage"`
	Result    string        `json:"result"`
	RawCount  int           `json:"rawCount"`
	Selected  int           `json:"selected"`
	Fallback  bool          `json:"fallback"`
	Subject   string        `json:"subject,omitempty"`
	MessageID string        `json:"messageId,omitempty"`
	Error     string        `json:"error,omitempty"`
	Duration  time.Duration `json:"duration"`
}

type Report struct {
	RunID    string        `json:"runId"`
	Started  time.Time     `json:"started"`
	Duration time.Duration `json:"duration"`
	Outcomes []Outcome     `json:"outcomes"`
}

// Count returns how many outcomes carry result.
func (r *Report) Count(result string) int {
	n := 0
	for _, o := range r.Outcomes {
		if o.Result == result {
			n++
		}
	}
	return n
}
