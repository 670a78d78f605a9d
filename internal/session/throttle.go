package session

import "sync"

// ThrottleEvery is how many calls share one allowed prompt
const ThrottleEvery = 5

// Throttle lets a repeated prompt through once every ThrottleEvery calls per user and key
type Throttle struct {
	mu     sync.Mutex
	counts map[throttleKey]int
}

type throttleKey struct {
	user string
	key  string
}

func NewThrottle() *Throttle {
	return &Throttle{counts: make(map[throttleKey]int)}
}

// Allow reports whether the prompt should be shown. The first call is
// allowed, then every ThrottleEvery-th after it.
func (t *Throttle) Allow(user, key string) bool {
	t.mu.Lock()
	defer t.mu.Unlock()
	k := throttleKey{user: user, key: key}
	n := t.counts[k]
	t.counts[k] = n + 1
	return n%ThrottleEvery == 0
}

// Reset forgets every counter of a user
func (t *Throttle) Reset(user string) {
	t.mu.Lock()
	defer t.mu.Unlock()
	for k := range t.counts {
		if k.user == user {
			delete(t.counts, k)
		}
	}
}
