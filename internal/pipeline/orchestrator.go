// Package pipeline drives each customer through search, relevance filtering,
// composition and delivery.
package pipeline

import (
	"context"
	"fmt"
	"runtime/debug"
	"time"

	apperrors "news-intel/internal/common/errors"
	"news-intel/internal/common/logger"
	"news-intel/internal/common/metrics"
	"news-intel/internal/common/observability"
	"news-intel/internal/models"

	"github.com/google/uuid"
	"golang.org/x/sync/errgroup"
)

type Orchestrator struct {
	config   *Config
	logger   logger.Logger
	searcher Searcher
	filter   Filter
	composer Composer
	notifier Notifier
	crm      *models.CRMBook
	obs      *observability.Observability
}

func NewOrchestrator(deps Dependencies, config *Config) *Orchestrator {
	return &Orchestrator{
		config:   config,
		logger:   deps.Logger,
		searcher: deps.Searcher,
		filter:   deps.Filter,
		composer: deps.Composer,
		notifier: deps.Notifier,
		crm:      deps.CRM,
		obs:      deps.Observability,
	}
}

// Run processes every customer and returns one outcome per customer in input
// order. At most config.Concurrency customers are in flight; each customer's
// stages run in sequence and a failure never stops the batch.
func (o *Orchestrator) Run(ctx context.Context, customers []models.Customer) *Report {
	report := &Report{
		RunID:    uuid.New().String(),
		Started:  time.Now().UTC(),
		Outcomes: make([]Outcome, len(customers)),
	}
	log := o.logger.With(map[string]interface{}{"runId": report.RunID})

	log.Info("starting batch", map[string]interface{}{
		"customers":    len(customers),
		"concurrency":  o.config.Concurrency,
		"crmCompanies": o.crm.Len(),
	})

	var g errgroup.Group
	g.SetLimit(o.config.Concurrency)
	for i, customer := range customers {
		g.Go(func() error {
			report.Outcomes[i] = o.process(ctx, log, customer)
			return nil
		})
	}
	_ = g.Wait()

	report.Duration = time.Since(report.Started)
	o.obs.RecordBatch(ctx, len(customers), report.Duration)

	log.Info("batch finished", map[string]interface{}{
		"customers":      len(customers),
		"sent":           report.Count(ResultSent),
		"deliveryFailed": report.Count(ResultDeliveryFailed),
		"skipped":        report.Count(ResultNoNews) + report.Count(ResultNoBody),
		"failed":         report.Count(ResultComposeFailed) + report.Count(ResultPanic) + report.Count(ResultCancelled),
		"durationMs":     report.Duration.Milliseconds(),
	})
	return report
}

func (o *Orchestrator) process(ctx context.Context, runLog logger.Logger, customer models.Customer) (out Outcome) {
	start := time.Now()
	out = Outcome{Customer: customer.Name, Email: customer.Email}
	log := runLog.With(map[string]interface{}{"customer": customer.Name})

	metrics.CustomersActive.Inc()
	defer func() {
		if r := recover(); r != nil {
			out.State = StateFailed
			out.Result = ResultPanic
			out.Error = fmt.Sprintf("panic: %v", r)
			log.Error("customer iteration panicked", map[string]interface{}{
				"stage": out.Stage,
				"panic": fmt.Sprint(r),
				"stack": string(debug.Stack()),
			})
		}
		out.Duration = time.Since(start)
		metrics.CustomersActive.Dec()
		metrics.CustomersProcessed.WithLabelValues(out.Result).Inc()
		o.obs.RecordCustomer(ctx, out.Result, out.Duration)
	}()

	if err := ctx.Err(); err != nil {
		out.State, out.Result, out.Error = StateFailed, ResultCancelled, err.Error()
		log.Warn("run cancelled before customer started", map[string]interface{}{"error": err.Error()})
		return out
	}

	log.Info("processing customer", map[string]interface{}{"topic": customer.TopicQuery})

	out.Stage = StateSearching
	raw := o.searcher.Search(ctx, customer.TopicQuery, o.config.SearchLimit)
	out.RawCount = len(raw)
	if len(raw) == 0 {
		out.State, out.Result = StateSkipped, ResultNoNews
		log.Info("no news found", map[string]interface{}{"stage": out.Stage})
		return out
	}

	out.Stage = StateFiltering
	selected := o.filter.Filter(ctx, raw, customer.Interests)

	out.Stage = StateComposing
	if len(selected) == 0 {
		n := min(o.config.FallbackCount, len(raw))
		selected = raw[:n]
		out.Fallback = true
		log.Warn("falling back to raw results", map[string]interface{}{
			"stage":   out.Stage,
			"raw":     len(raw),
			"showing": n,
		})
	} else {
		log.Info("found curated articles", map[string]interface{}{
			"stage":    out.Stage,
			"raw":      len(raw),
			"selected": len(selected),
		})
	}
	out.Selected = len(selected)

	body, err := o.composer.Compose(ctx, selected, customer.Interests, o.crm, out.Fallback)
	if err != nil {
		out.State, out.Result, out.Error = StateFailed, ResultComposeFailed, err.Error()
		log.Error("composition failed, skipping customer", map[string]interface{}{
			"stage":     out.Stage,
			"error":     err.Error(),
			"errorCode": apperrors.CodeOf(err),
		})
		return out
	}
	if body == "" {
		out.State, out.Result = StateSkipped, ResultNoBody
		log.Warn("composition produced no body, nothing to send", map[string]interface{}{"stage": out.Stage})
		return out
	}

	out.Stage = StateSending
	out.Subject = o.notifier.Subject(customer.Name, out.Fallback)
	delivery := o.notifier.Send(ctx, customer.Email, out.Subject, body)

	out.State = StateDone
	if delivery != nil && delivery.Success {
		out.Result = ResultSent
		out.MessageID = delivery.MessageID
	} else {
		out.Result = ResultDeliveryFailed
		if delivery != nil {
			out.Error = delivery.Message
		}
	}

	log.Info("customer processed", map[string]interface{}{
		"result":     out.Result,
		"fallback":   out.Fallback,
		"durationMs": time.Since(start).Milliseconds(),
	})
	return out
}
