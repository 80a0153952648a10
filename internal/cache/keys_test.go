package cache

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestGenerateCacheKey(t *testing.T) {
	tests := []struct {
		name        string
		service     string
		objectType  string
		identifier  string
		params      []string
		expectedKey string
	}{
		{
			name:        "plain",
			service:     ServiceQuiz,
			objectType:  "categories",
			identifier:  "all",
			expectedKey: "quizsitting:quiz:categories:all",
		},
		{
			name:        "with params",
			service:     ServiceQuiz,
			objectType:  "list",
			identifier:  "history",
			params:      []string{"published", "page1"},
			expectedKey: "quizsitting:quiz:list:history:published_page1",
		},
	}

	for _, tc := range tests {
		t.Run(tc.name, func(t *testing.T) {
			assert.Equal(t, tc.expectedKey, GenerateCacheKey(tc.service, tc.objectType, tc.identifier, tc.params...))
		})
	}
}

func TestDomainKeys(t *testing.T) {
	assert.Equal(t, "quizsitting:quiz:categories:all", CategoriesKey())
	assert.Equal(t, "quizsitting:anon:session:01HXSESSION", AnonymousSessionKey("01HXSESSION"))
}
