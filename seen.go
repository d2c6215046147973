package pingrab

import (
	"sync"
	"time"

	"github.com/patrickmn/go-cache"
)

const (
	// seenTTL bounds how long a user's delivery history is kept. The ledger
	// is process-wide and intentionally not persisted; a restart clears it.
	seenTTL     = 24 * time.Hour
	seenCleanup = time.Hour
)

// SeenSet is the per-user, per-category ledger of already-delivered image
// URLs. Membership tests and insertions are idempotent and safe for
// concurrent use.
type SeenSet struct {
	mu sync.Mutex
	c  *cache.Cache
}

// NewSeenSet returns an empty ledger.
func NewSeenSet() *SeenSet {
	return &SeenSet{c: cache.New(seenTTL, seenCleanup)}
}

func seenKey(userID string, category Category) string {
	return userID + "|" + string(category)
}

// Seen reports whether url was already delivered to the user in this
// category.
func (s *SeenSet) Seen(userID string, category Category, url string) bool {
	s.mu.Lock()
	defer s.mu.Unlock()

	v, ok := s.c.Get(seenKey(userID, category))
	if !ok {
		return false
	}
	set := v.(map[string]struct{})
	_, found := set[url]
	return found
}

// Mark records url as delivered. Marking an already-marked URL is a no-op.
func (s *SeenSet) Mark(userID string, category Category, url string) {
	s.mu.Lock()
	defer s.mu.Unlock()

	key := seenKey(userID, category)
	var set map[string]struct{}
	if v, ok := s.c.Get(key); ok {
		set = v.(map[string]struct{})
	} else {
		set = make(map[string]struct{})
	}
	set[url] = struct{}{}
	s.c.SetDefault(key, set)
}

// Count returns how many URLs have been delivered to the user in this
// category.
func (s *SeenSet) Count(userID string, category Category) int {
	s.mu.Lock()
	defer s.mu.Unlock()

	v, ok := s.c.Get(seenKey(userID, category))
	if !ok {
		return 0
	}
	return len(v.(map[string]struct{}))
}
