package summarycompose

import (
	"context"
	"fmt"
	"strings"
	"time"

	apperrors "news-intel/internal/common/errors"
	"news-intel/internal/common/llm"
	"news-intel/internal/common/logger"
	"news-intel/internal/common/metrics"
	"news-intel/internal/models"
	crmmatch "news-intel/internal/workers/crm/crm-match"
)

// FallbackNotice is prepended to summaries built from unfiltered results.
const FallbackNotice = "NOTE: AI found no high-confidence matches. Showing raw results:\n\n"

const crmInstruction = "IMPORTANT: The data below contains 'ACTION' notes where the news matches the user's personal CRM network.\n" +
	"You MUST highlight these opportunities prominently in the summary.\n"

type Service struct {
	config *Config
	logger logger.Logger
	llm    llm.Client
}

func NewService(deps ServiceDependencies, config *Config) *Service {
	return &Service{
		config: config,
		logger: deps.Logger.With(map[string]interface{}{"stage": metrics.StageCompose}),
		llm:    deps.LLM,
	}
}

// Compose drafts an executive summary of results for profile, annotating
// results that mention a company in crm. Empty results produce an empty body
// and no error. Any failure is a ComposeFailed error.
func (s *Service) Compose(ctx context.Context, results []models.SearchResult, profile string, crm *models.CRMBook, isFallback bool) (string, error) {
	if len(results) == 0 {
		return "", nil
	}

	block, annotated := ContentBlock(results, crm)

	start := time.Now()
	prose, err := s.llm.GenerateText(ctx, llm.Request{
		Model:     s.config.Model,
		Prompt:    buildPrompt(profile, block, annotated > 0),
		MaxTokens: s.config.MaxTokens,
	})
	metrics.StageDuration.WithLabelValues(metrics.StageCompose).Observe(time.Since(start).Seconds())

	if err == nil && strings.TrimSpace(prose) == "" {
		err = apperrors.NewParseError("summary", fmt.Errorf("model returned no text"))
	}
	if err != nil {
		metrics.StageFailures.WithLabelValues(metrics.StageCompose, string(apperrors.ErrCodeComposeFailed)).Inc()
		return "", apperrors.NewComposeFailedError(err).
			WithMetadata("results", len(results)).
			WithMetadata("fallback", isFallback)
	}

	s.logger.Info("summary composed", map[string]interface{}{
		"results":    len(results),
		"crmMatches": annotated,
		"fallback":   isFallback,
	})

	if isFallback {
		return FallbackNotice + prose, nil
	}
	return prose, nil
}

// ContentBlock renders one "- title: link" line per result with any CRM
// annotation appended, and reports how many lines were annotated.
func ContentBlock(results []models.SearchResult, crm *models.CRMBook) (string, int) {
	lines := make([]string, len(results))
	annotated := 0
	for i, r := range results {
		note, ok := crmmatch.Match(r, crm)
		if ok {
			annotated++
		}
		lines[i] = fmt.Sprintf("- %s: %s%s", r.Title, r.Link, note)
	}
	return strings.Join(lines, "\n"), annotated
}

func buildPrompt(profile, block string, hasCRM bool) string {
	var b strings.Builder
	b.WriteString(fmt.Sprintf("Write an executive summary for: %s.\n\n", profile))
	if hasCRM {
		b.WriteString(crmInstruction)
		b.WriteString("\n")
	}
	b.WriteString("Data:\n")
	b.WriteString(block)
	return b.String()
}
