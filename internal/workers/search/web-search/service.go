package websearch

import (
	"context"
	"strings"
	"time"

	apperrors "news-intel/internal/common/errors"
	commonhttp "news-intel/internal/common/http"
	"news-intel/internal/common/logger"
	"news-intel/internal/common/metrics"
	"news-intel/internal/models"
)

type Service struct {
	config *Config
	logger logger.Logger
	client *commonhttp.Client
}

func NewService(deps ServiceDependencies, config *Config) *Service {
	return &Service{
		config: config,
		logger: deps.Logger.With(map[string]interface{}{"stage": metrics.StageSearch}),
		client: commonhttp.NewClient(config.Timeout),
	}
}

// Search returns up to limit results for topic from the past recency window,
// in provider order. Failures are logged and yield an empty slice.
func (s *Service) Search(ctx context.Context, topic string, limit int) []models.SearchResult {
	if limit <= 0 {
		limit = s.config.MaxResults
	}

	start := time.Now()
	results, err := s.execute(ctx, topic, limit)
	metrics.StageDuration.WithLabelValues(metrics.StageSearch).Observe(time.Since(start).Seconds())

	if err != nil {
		metrics.StageFailures.WithLabelValues(metrics.StageSearch, string(apperrors.CodeOf(err))).Inc()
		s.logger.Warn("web search failed, returning empty results", map[string]interface{}{
			"topic":     topic,
			"error":     err.Error(),
			"errorCode": apperrors.CodeOf(err),
		})
		return []models.SearchResult{}
	}

	s.logger.Info("web search completed", map[string]interface{}{
		"topic":       topic,
		"resultCount": len(results),
	})
	return results
}

func (s *Service) execute(ctx context.Context, topic string, limit int) ([]models.SearchResult, error) {
	headers := map[string]string{"X-API-KEY": s.config.APIKey}
	body := searchRequest{Query: topic, Num: limit, Recent: s.config.Recency}

	var resp searchResponse
	if err := s.client.PostJSON(ctx, "web search", s.config.BaseURL, headers, body, &resp); err != nil {
		return nil, err
	}
	return processResults(resp.Organic, limit), nil
}

func processResults(items []organicResult, limit int) []models.SearchResult {
	results := make([]models.SearchResult, 0, len(items))
	for _, item := range items {
		title := strings.TrimSpace(item.Title)
		link := strings.TrimSpace(item.Link)
		if title == "" || link == "" {
			continue
		}
		results = append(results, models.SearchResult{
			Title:   title,
			Link:    link,
			Snippet: strings.TrimSpace(item.Snippet),
		})
		if len(results) == limit {
			break
		}
	}
	return results
}
