package summarycompose

import (
	"context"
	"strings"
	"testing"

	apperrors "news-intel/internal/common/errors"
	"news-intel/internal/common/llm"
	"news-intel/internal/common/logger"
	"news-intel/internal/models"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/mock"
	"github.com/stretchr/testify/require"
)

type MockLLM struct {
	mock.Mock
}

func (m *MockLLM) GenerateJSON(ctx context.Context, req llm.Request) (string, error) {
	args := m.Called(ctx, req)
	return args.String(0), args.Error(1)
}

func (m *MockLLM) GenerateText(ctx context.Context, req llm.Request) (string, error) {
	args := m.Called(ctx, req)
	return args.String(0), args.Error(1)
}

func newTestService(t *testing.T, client llm.Client) *Service {
	return NewService(ServiceDependencies{Logger: logger.NewTestLogger(t), LLM: client}, DefaultConfig())
}

func crmBook() *models.CRMBook {
	book := models.NewCRMBook()
	book.Add("Acme", models.CRMRecord{
		RelationshipStrength: 3,
		KeyContacts:          []models.Contact{{Name: "Jo", Role: "VP"}},
	})
	return book
}

var results = []models.SearchResult{
	{Title: "Acme raises Series B", Link: "https://news.example/acme", Snippet: "big acme deal"},
	{Title: "Markets rally", Link: "https://news.example/markets", Snippet: "stocks up"},
}

func TestContentBlock(t *testing.T) {
	block, annotated := ContentBlock(results, crmBook())

	assert.Equal(t, 1, annotated)
	assert.Equal(t,
		"- Acme raises Series B: https://news.example/acme [ACTION: You have 3 contacts at Acme. Reach out to Jo (VP)]\n"+
			"- Markets rally: https://news.example/markets",
		block)
}

func TestCompose_EmptyResults(t *testing.T) {
	m := new(MockLLM)

	body, err := newTestService(t, m).Compose(context.Background(), nil, "fintech", crmBook(), false)
	require.NoError(t, err)
	assert.Empty(t, body)
	m.AssertNotCalled(t, "GenerateText", mock.Anything, mock.Anything)
}

func TestCompose_WithCRMHighlights(t *testing.T) {
	var captured llm.Request
	m := new(MockLLM)
	m.On("GenerateText", mock.Anything, mock.Anything).
		Run(func(args mock.Arguments) { captured = args.Get(1).(llm.Request) }).
		Return("Acme closed a round; reach out to Jo.", nil).Once()

	body, err := newTestService(t, m).Compose(context.Background(), results, "fintech funding", crmBook(), false)
	require.NoError(t, err)

	assert.Equal(t, "Acme closed a round; reach out to Jo.", body)
	assert.Equal(t, "gpt-4o", captured.Model)
	assert.Contains(t, captured.Prompt, "Write an executive summary for: fintech funding.")
	assert.Contains(t, captured.Prompt, "You MUST highlight these opportunities")
	assert.Contains(t, captured.Prompt, "Reach out to Jo (VP)")
	m.AssertExpectations(t)
}

func TestCompose_NoCRMMatchOmitsHighlightInstruction(t *testing.T) {
	var captured llm.Request
	m := new(MockLLM)
	m.On("GenerateText", mock.Anything, mock.Anything).
		Run(func(args mock.Arguments) { captured = args.Get(1).(llm.Request) }).
		Return("Quiet week.", nil)

	_, err := newTestService(t, m).Compose(context.Background(), results[1:], "markets", crmBook(), false)
	require.NoError(t, err)
	assert.NotContains(t, captured.Prompt, "ACTION")
	assert.True(t, strings.HasSuffix(captured.Prompt, "Data:\n- Markets rally: https://news.example/markets"))
}

func TestCompose_FallbackPrependsNotice(t *testing.T) {
	m := new(MockLLM)
	m.On("GenerateText", mock.Anything, mock.Anything).Return("Summary.", nil)

	body, err := newTestService(t, m).Compose(context.Background(), results, "p", nil, true)
	require.NoError(t, err)
	assert.Equal(t, FallbackNotice+"Summary.", body)
}

func TestCompose_FailureIsComposeFailed(t *testing.T) {
	tests := []struct {
		name  string
		prose string
		err   error
	}{
		{"transport", "", apperrors.NewTransportError("openai", assert.AnError)},
		{"blank text", "   ", nil},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			m := new(MockLLM)
			m.On("GenerateText", mock.Anything, mock.Anything).Return(tt.prose, tt.err)

			body, err := newTestService(t, m).Compose(context.Background(), results, "p", nil, false)
			require.Error(t, err)
			assert.Empty(t, body)
			assert.Equal(t, apperrors.ErrCodeComposeFailed, apperrors.CodeOf(err))
		})
	}
}
