package marking

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"strings"
	"time"
	"unicode/utf8"

	"quiz-sitting/internal/domain"
	"quiz-sitting/internal/logger"

	"github.com/tmc/langchaingo/llms"
	"github.com/tmc/langchaingo/llms/ollama"
	"go.uber.org/zap"
)

const defaultTimeout = 20 * time.Second

// completer is the part of a langchaingo model the marker uses.
type completer interface {
	Call(ctx context.Context, prompt string, options ...llms.CallOption) (string, error)
}

// llmMarker implements domain.EssayMarkingAssistant
type llmMarker struct {
	llm     completer
	timeout time.Duration
}

// NewOllamaMarker connects to an Ollama server for essay marking suggestions.
func NewOllamaMarker(serverURL, model string, timeout time.Duration) (domain.EssayMarkingAssistant, error) {
	if serverURL == "" {
		return nil, errors.New("ollama server URL cannot be empty")
	}
	if model == "" {
		return nil, errors.New("ollama model name cannot be empty")
	}
	llm, err := ollama.New(ollama.WithServerURL(serverURL), ollama.WithModel(model))
	if err != nil {
		return nil, fmt.Errorf("failed to create ollama client: %w", err)
	}
	return newLLMMarker(llm, timeout), nil
}

func newLLMMarker(llm completer, timeout time.Duration) *llmMarker {
	if timeout <= 0 {
		timeout = defaultTimeout
	}
	return &llmMarker{llm: llm, timeout: timeout}
}

// SuggestMark implements domain.EssayMarkingAssistant
func (m *llmMarker) SuggestMark(ctx context.Context, question, explanation, answer string) (*domain.MarkingSuggestion, error) {
	l := logger.Named("marking")
	l.Info("Requesting essay marking suggestion", zap.String("question", truncate(question, 100)))

	prompt := fmt.Sprintf(`You are helping an examiner mark an essay question. Respond with ONLY a JSON object in the following format:
{
    "correct": true,
    "confidence": 0.0,
    "rationale": "brief rationale here"
}

Question: %s
Marking notes: %s
Student's answer: %s

Rules:
1. "correct" is your verdict on whether the answer deserves the mark
2. "confidence" is between 0 and 1
3. The rationale must be under 80 words and refer to the marking notes when they are given`, question, explanation, answer)

	callCtx, cancel := context.WithTimeout(ctx, m.timeout)
	defer cancel()

	raw, err := m.llm.Call(callCtx, prompt, llms.WithTemperature(0.1))
	if err != nil {
		if errors.Is(err, context.DeadlineExceeded) {
			l.Error("LLM request timed out", zap.Duration("timeout", m.timeout), zap.Error(err))
			return nil, domain.NewLLMServiceError(fmt.Errorf("LLM request timed out: %w", err))
		}
		l.Error("Failed to get response from LLM", zap.Error(err))
		return nil, domain.NewLLMServiceError(fmt.Errorf("LLM call failed: %w", err))
	}
	l.Debug("Raw LLM response received", zap.String("raw_response", raw))

	suggestion, err := parseSuggestion(raw)
	if err != nil {
		l.Error("Could not read marking suggestion from LLM response", zap.Error(err), zap.String("raw_response", raw))
		return nil, domain.NewLLMServiceError(err)
	}
	return suggestion, nil
}

// parseSuggestion drops any <think> block and decodes the first JSON object
// of the reply. Confidence is clamped to [0, 1].
func parseSuggestion(raw string) (*domain.MarkingSuggestion, error) {
	cleaned := strings.TrimSpace(raw)
	if thinkStart := strings.Index(cleaned, "<think>"); thinkStart != -1 {
		if thinkEnd := strings.Index(cleaned, "</think>"); thinkEnd > thinkStart {
			cleaned = strings.TrimSpace(cleaned[:thinkStart] + cleaned[thinkEnd+len("</think>"):])
		}
	}

	jsonStart := strings.Index(cleaned, "{")
	jsonEnd := strings.LastIndex(cleaned, "}")
	if jsonStart == -1 || jsonEnd <= jsonStart {
		return nil, fmt.Errorf("no JSON object found in LLM response: %s", truncate(cleaned, 200))
	}

	var suggestion domain.MarkingSuggestion
	if err := json.Unmarshal([]byte(cleaned[jsonStart:jsonEnd+1]), &suggestion); err != nil {
		return nil, fmt.Errorf("failed to unmarshal JSON from LLM: %w", err)
	}
	suggestion.Confidence = min(max(suggestion.Confidence, 0), 1)
	suggestion.Rationale = strings.TrimSpace(suggestion.Rationale)
	return &suggestion, nil
}

// truncate keeps at most n runes of s.
func truncate(s string, n int) string {
	if utf8.RuneCountInString(s) <= n {
		return s
	}
	i := 0
	for pos := range s {
		if i == n {
			return s[:pos]
		}
		i++
	}
	return s
}
