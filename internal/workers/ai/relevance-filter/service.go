package relevancefilter

import (
	"context"
	"encoding/json"
	"fmt"
	"strings"
	"time"

	apperrors "news-intel/internal/common/errors"
	"news-intel/internal/common/llm"
	"news-intel/internal/common/logger"
	"news-intel/internal/common/metrics"
	"news-intel/internal/models"
)

const systemPrompt = "You are a helpful curator. Output valid JSON."

type selection struct {
	SelectedIDs *[]int `json:"selected_ids"`
}

type Service struct {
	config *Config
	logger logger.Logger
	llm    llm.Client
}

func NewService(deps ServiceDependencies, config *Config) *Service {
	return &Service{
		config: config,
		logger: deps.Logger.With(map[string]interface{}{"stage": metrics.StageFilter}),
		llm:    deps.LLM,
	}
}

// Filter returns the subset of results the model judged relevant to profile,
// in the order the model listed them. Duplicate ids are collapsed and invalid
// ones dropped, so the result can be shorter than the model's list. An empty
// slice means no confident matches, including when the model call or its
// response failed.
func (s *Service) Filter(ctx context.Context, results []models.SearchResult, profile string) []models.SearchResult {
	if len(results) == 0 {
		return []models.SearchResult{}
	}

	start := time.Now()
	ids, err := s.selectIDs(ctx, results, profile)
	metrics.StageDuration.WithLabelValues(metrics.StageFilter).Observe(time.Since(start).Seconds())
	metrics.ResultsSelected.WithLabelValues("raw").Observe(float64(len(results)))

	if err != nil {
		metrics.StageFailures.WithLabelValues(metrics.StageFilter, string(apperrors.CodeOf(err))).Inc()
		s.logger.Warn("relevance filtering failed, treating as no matches", map[string]interface{}{
			"candidates": len(results),
			"error":      err.Error(),
			"errorCode":  apperrors.CodeOf(err),
		})
		return []models.SearchResult{}
	}

	selected := make([]models.SearchResult, 0, len(ids))
	for _, id := range ids {
		selected = append(selected, results[id])
	}
	metrics.ResultsSelected.WithLabelValues("selected").Observe(float64(len(selected)))

	s.logger.Info("relevance filtering completed", map[string]interface{}{
		"candidates": len(results),
		"selected":   len(selected),
	})
	return selected
}

func (s *Service) selectIDs(ctx context.Context, results []models.SearchResult, profile string) ([]int, error) {
	content, err := s.llm.GenerateJSON(ctx, llm.Request{
		Model:     s.config.Model,
		System:    systemPrompt,
		Prompt:    buildPrompt(results, profile),
		MaxTokens: s.config.MaxTokens,
	})
	if err != nil {
		return nil, err
	}
	return parseSelection(content, len(results))
}

func buildPrompt(results []models.SearchResult, profile string) string {
	var b strings.Builder
	b.WriteString(fmt.Sprintf("I have a list of articles. The user is interested in: %q.\n", profile))
	b.WriteString(`Return a JSON object with a list of "selected_ids" for ANY article that is even slightly relevant.` + "\n")
	b.WriteString("If unsure, INCLUDE IT.\n")
	b.WriteString("Articles:\n")
	b.WriteString(articlesContext(results))
	return b.String()
}

// articlesContext enumerates results one per line; the ID is the slice index.
func articlesContext(results []models.SearchResult) string {
	lines := make([]string, len(results))
	for i, r := range results {
		lines[i] = fmt.Sprintf("ID: %d | Title: %s | Snippet: %s", i, r.Title, r.Snippet)
	}
	return strings.Join(lines, "\n")
}

// parseSelection decodes {"selected_ids": [...]} and keeps indices in [0, n)
// in the order given, dropping duplicates.
func parseSelection(content string, n int) ([]int, error) {
	var sel selection
	if err := json.Unmarshal([]byte(content), &sel); err != nil {
		return nil, apperrors.NewParseError("relevance selection", err)
	}
	if sel.SelectedIDs == nil {
		return nil, apperrors.NewParseError("relevance selection", fmt.Errorf("missing selected_ids"))
	}

	seen := make(map[int]bool, len(*sel.SelectedIDs))
	ids := make([]int, 0, len(*sel.SelectedIDs))
	for _, id := range *sel.SelectedIDs {
		if id < 0 || id >= n || seen[id] {
			continue
		}
		seen[id] = true
		ids = append(ids, id)
	}
	return ids, nil
}
