package loadcustomers

import (
	"os"
	"path/filepath"
	"testing"

	apperrors "news-intel/internal/common/errors"
	"news-intel/internal/common/logger"
	"news-intel/internal/models"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func writeCustomers(t *testing.T, content string) string {
	path := filepath.Join(t.TempDir(), "customers.json")
	require.NoError(t, os.WriteFile(path, []byte(content), 0o600))
	return path
}

func TestLoad(t *testing.T) {
	path := writeCustomers(t, `[
		{"name": "Ana", "email": "ana@example.com", "topic_query": "fintech funding", "interests": "Series A rounds"},
		{"name": " Ben ", "email": "ben@example.com ", "topic_query": "climate tech", "interests": "grid storage"}
	]`)

	customers, err := NewLoader(logger.NewTestLogger(t)).Load(path)
	require.NoError(t, err)
	assert.Equal(t, []models.Customer{
		{Name: "Ana", Email: "ana@example.com", TopicQuery: "fintech funding", Interests: "Series A rounds"},
		{Name: "Ben", Email: "ben@example.com", TopicQuery: "climate tech", Interests: "grid storage"},
	}, customers)
}

func TestLoad_EmptyList(t *testing.T) {
	customers, err := NewLoader(logger.NewTestLogger(t)).Load(writeCustomers(t, `[]`))
	require.NoError(t, err)
	assert.Empty(t, customers)
}

func TestLoad_MissingFileIsFatal(t *testing.T) {
	_, err := NewLoader(logger.NewTestLogger(t)).Load(filepath.Join(t.TempDir(), "customers.json"))
	require.Error(t, err)
	assert.True(t, apperrors.IsCode(err, apperrors.ErrCodeConfig))
}

func TestLoad_InvalidFile(t *testing.T) {
	tests := []struct {
		name    string
		content string
	}{
		{"not json", `[{"name": "Ana"`},
		{"object instead of list", `{"name": "Ana"}`},
		{"missing topic", `[{"name": "Ana", "email": "ana@example.com", "interests": "x"}]`},
		{"empty name", `[{"name": "", "email": "ana@example.com", "topic_query": "t", "interests": "x"}]`},
		{"bad email", `[{"name": "Ana", "email": "ana-at-example", "topic_query": "t", "interests": "x"}]`},
		{"blank topic", `[{"name": "Ana", "email": "ana@example.com", "topic_query": "   ", "interests": "x"}]`},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			_, err := NewLoader(logger.NewTestLogger(t)).Load(writeCustomers(t, tt.content))
			require.Error(t, err)
			assert.Equal(t, apperrors.ErrCodeConfig, apperrors.CodeOf(err))
		})
	}
}
