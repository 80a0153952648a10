package seedmodels

import (
	"encoding/json"
	"os"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestSampleSeedFileParses(t *testing.T) {
	data, err := os.ReadFile("../../../../config/seed_data/sample_quizzes.json")
	require.NoError(t, err)

	var seed SeedFile
	require.NoError(t, json.Unmarshal(data, &seed))

	require.NotEmpty(t, seed.Categories)
	require.NotEmpty(t, seed.Quizzes)
	for _, q := range seed.Quizzes {
		assert.NotEmpty(t, q.Title)
		assert.NotEmpty(t, q.Questions, q.Title)
	}
}

func TestSeedQuestion_QuestionRequest(t *testing.T) {
	q := SeedQuestion{Kind: "true_false", Category: "history", Content: "Rome fell in 476", Correct: true}
	req := q.QuestionRequest()
	assert.Equal(t, "true_false", req.Kind)
	assert.Equal(t, "history", req.Category)
	assert.True(t, req.Correct)
}
