package classifier

import (
	"fmt"
	"time"

	"github.com/google/uuid"
	cache "github.com/patrickmn/go-cache"
)

// scoreKey uniquely identifies a cached score
type scoreKey struct {
	BoutID       uuid.UUID
	ModelVersion string
}

func (k scoreKey) String() string {
	return fmt.Sprintf("%s:%s", k.BoutID, k.ModelVersion)
}

// scoreCache provides in-memory caching for classifier scores. Scores for
// a bout+version pair are stable between model refreshes, so short TTLs
// save most round trips.
type scoreCache struct {
	cache   *cache.Cache
	ttl     time.Duration
	maxSize int
}

func newScoreCache(ttl time.Duration, maxSize int) *scoreCache {
	return &scoreCache{
		cache:   cache.New(ttl, ttl*2),
		ttl:     ttl,
		maxSize: maxSize,
	}
}

func (sc *scoreCache) Get(key scoreKey) *Score {
	if v, found := sc.cache.Get(key.String()); found {
		if score, ok := v.(*Score); ok {
			return score
		}
	}
	return nil
}

func (sc *scoreCache) Set(key scoreKey, score *Score) {
	if sc.cache.ItemCount() >= sc.maxSize {
		sc.cache.DeleteExpired()
	}
	sc.cache.Set(key.String(), score, sc.ttl)
}

func (sc *scoreCache) Clear() {
	sc.cache.Flush()
}

func (sc *scoreCache) ItemCount() int {
	return sc.cache.ItemCount()
}
