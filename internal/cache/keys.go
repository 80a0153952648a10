package cache

import "strings"

const (
	GlobalKeyPrefix = "quizsitting"

	ServiceQuiz      = "quiz"
	ServiceAnonymous = "anon"
)

// GenerateCacheKey generates a cache key for a given service, object type, and identifier.
// If paramsKey are provided, they are joined by "_" and appended to the cache key.
func GenerateCacheKey(serviceName, objectType, identifier string, paramsKey ...string) string {
	baseKey := strings.Join([]string{GlobalKeyPrefix, serviceName, objectType, identifier}, ":")
	if len(paramsKey) > 0 {
		return strings.Join([]string{baseKey, strings.Join(paramsKey, "_")}, ":")
	}
	return baseKey
}

// CategoriesKey is the cached category listing.
func CategoriesKey() string {
	return GenerateCacheKey(ServiceQuiz, "categories", "all")
}

// AnonymousSessionKey is the hash holding one anonymous taker's quiz state.
func AnonymousSessionKey(sessionID string) string {
	return GenerateCacheKey(ServiceAnonymous, "session", sessionID)
}
