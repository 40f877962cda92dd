package assistant

import "strconv"

// FromCache returns the cached value for key, or invokes loader and caches
// its result. Within one RunContext the loader runs at most once per key;
// failed loads are not cached so a later call may retry. A nil RunContext
// or nil Cache disables memoization entirely.
func FromCache[T any](rc *RunContext, key string, loader func() (T, error)) (T, error) {
	if rc == nil || rc.Cache == nil {
		return loader()
	}
	if v, ok := rc.Cache[key]; ok {
		if typed, ok := v.(T); ok {
			return typed, nil
		}
	}
	v, err := loader()
	if err != nil {
		return v, err
	}
	rc.Cache[key] = v
	return v, nil
}

// KeyBuilder derives cache keys. All tools agree on these so a goodie
// loaded by one tool is visible to the next.
type KeyBuilder struct{}

// CacheKey is the shared key builder.
var CacheKey KeyBuilder

func (KeyBuilder) Event(id string) string  { return "event:" + id }
func (KeyBuilder) Goodie(id string) string { return "goodie:" + id }

func (KeyBuilder) EventParticipants(id string, limit int) string {
	return "event-participants:" + id + ":" + strconv.Itoa(limit)
}

func (KeyBuilder) Stats() string { return "stats" }
