package marking

import (
	"context"
	"errors"
	"os"
	"testing"
	"time"
	"unicode/utf8"

	"quiz-sitting/internal/config"
	"quiz-sitting/internal/domain"
	"quiz-sitting/internal/logger"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/mock"
	"github.com/stretchr/testify/require"
	"github.com/tmc/langchaingo/llms"
)

func TestMain(m *testing.M) {
	if err := logger.Initialize(config.LoggerConfig{Level: "debug", Env: "test"}); err != nil {
		panic("Failed to initialize logger for tests: " + err.Error())
	}
	exitVal := m.Run()
	_ = logger.Sync()
	os.Exit(exitVal)
}

type mockCompleter struct {
	mock.Mock
}

func (m *mockCompleter) Call(ctx context.Context, prompt string, options ...llms.CallOption) (string, error) {
	args := m.Called(ctx, prompt)
	return args.String(0), args.Error(1)
}

func TestNewOllamaMarker_Validation(t *testing.T) {
	t.Run("empty server URL", func(t *testing.T) {
		_, err := NewOllamaMarker("", "qwen3:0.6b", time.Second)
		assert.ErrorContains(t, err, "server URL cannot be empty")
	})
	t.Run("empty model name", func(t *testing.T) {
		_, err := NewOllamaMarker("http://localhost:11434", "", time.Second)
		assert.ErrorContains(t, err, "model name cannot be empty")
	})
}

func TestParseSuggestion(t *testing.T) {
	tests := []struct {
		name    string
		raw     string
		want    *domain.MarkingSuggestion
		wantErr bool
	}{
		{
			name: "plain json",
			raw:  `{"correct": true, "confidence": 0.7, "rationale": "mentions the economy"}`,
			want: &domain.MarkingSuggestion{Correct: true, Confidence: 0.7, Rationale: "mentions the economy"},
		},
		{
			name: "think block and prose around json",
			raw:  "<think>the answer {looks} fine</think>\nHere you go: {\"correct\": false, \"confidence\": 0.4, \"rationale\": \" off topic \"} done",
			want: &domain.MarkingSuggestion{Correct: false, Confidence: 0.4, Rationale: "off topic"},
		},
		{
			name: "confidence clamped",
			raw:  `{"correct": true, "confidence": 3, "rationale": "sure"}`,
			want: &domain.MarkingSuggestion{Correct: true, Confidence: 1, Rationale: "sure"},
		},
		{name: "no json", raw: "I cannot mark this", wantErr: true},
		{name: "broken json", raw: `{"correct": maybe}`, wantErr: true},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got, err := parseSuggestion(tt.raw)
			if tt.wantErr {
				assert.Error(t, err)
				return
			}
			require.NoError(t, err)
			assert.Equal(t, tt.want, got)
		})
	}
}

func TestSuggestMark(t *testing.T) {
	llm := new(mockCompleter)
	marker := newLLMMarker(llm, time.Second)
	llm.On("Call", mock.Anything, mock.MatchedBy(func(prompt string) bool {
		return assert.Contains(t, prompt, "Student's answer: inflation")
	})).Return(`{"correct": true, "confidence": 0.9, "rationale": "names inflation"}`, nil)

	suggestion, err := marker.SuggestMark(context.Background(), "Why did Rome fall?", "economy", "inflation")
	require.NoError(t, err)
	assert.True(t, suggestion.Correct)
	assert.Equal(t, "names inflation", suggestion.Rationale)
}

func TestSuggestMark_Failures(t *testing.T) {
	t.Run("call fails", func(t *testing.T) {
		llm := new(mockCompleter)
		llm.On("Call", mock.Anything, mock.Anything).Return("", errors.New("connection refused"))

		_, err := newLLMMarker(llm, time.Second).SuggestMark(context.Background(), "q", "", "a")
		assert.True(t, domain.HasCode(err, domain.CodeLLMServiceError))
	})
	t.Run("timeout", func(t *testing.T) {
		llm := new(mockCompleter)
		llm.On("Call", mock.Anything, mock.Anything).Return("", context.DeadlineExceeded)

		_, err := newLLMMarker(llm, 0).SuggestMark(context.Background(), "q", "", "a")
		assert.True(t, domain.HasCode(err, domain.CodeLLMServiceError))
		assert.ErrorIs(t, err, context.DeadlineExceeded)
	})
	t.Run("unreadable reply", func(t *testing.T) {
		llm := new(mockCompleter)
		llm.On("Call", mock.Anything, mock.Anything).Return("no idea", nil)

		_, err := newLLMMarker(llm, time.Second).SuggestMark(context.Background(), "q", "", "a")
		assert.True(t, domain.HasCode(err, domain.CodeLLMServiceError))
	})
}

func TestTruncate(t *testing.T) {
	tests := []struct {
		name string
		in   string
		n    int
		want string
	}{
		{"short ascii", "essay", 10, "essay"},
		{"ascii cut", "explain the causes", 7, "explain"},
		{"hangul stays whole", "한국어 에세이", 2, "한국"},
		{"accent at boundary", "café au lait", 4, "café"},
		{"exact length", "über", 4, "über"},
		{"zero", "abc", 0, ""},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got := truncate(tt.in, tt.n)
			assert.Equal(t, tt.want, got)
			assert.True(t, utf8.ValidString(got))
		})
	}
}
