package publisher

import (
	"maps"
	"sync"
)

// Ledger records the assets claimed during one run. It is owned by the run
// and shared by reference between the environments publishing in parallel.
type Ledger struct {
	mu     sync.Mutex
	claims map[string]string
}

// NewLedger creates an empty Ledger.
func NewLedger() *Ledger {
	return &Ledger{claims: make(map[string]string)}
}

// Claim reserves key for owner. It returns the previous owner and false when
// the key is already claimed.
func (l *Ledger) Claim(key, owner string) (string, bool) {
	l.mu.Lock()
	defer l.mu.Unlock()

	if prev, ok := l.claims[key]; ok {
		return prev, false
	}
	l.claims[key] = owner
	return "", true
}

// Release gives up claims on keys held by owner.
func (l *Ledger) Release(owner string, keys ...string) {
	l.mu.Lock()
	defer l.mu.Unlock()

	for _, key := range keys {
		if l.claims[key] == owner {
			delete(l.claims, key)
		}
	}
}

// Claims returns a snapshot of the claimed keys and their owners.
func (l *Ledger) Claims() map[string]string {
	l.mu.Lock()
	defer l.mu.Unlock()
	return maps.Clone(l.claims)
}
