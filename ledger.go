package plugkit

import (
	"slices"
	"sync"
)

// Ledger kinds, one per registration helper.
const (
	KindEditorSuggest      = "registerEditorSuggest"
	KindEvent              = "registerEvent"
	KindCodeBlockProcessor = "registerMarkdownCodeBlockProcessor"
	KindCommand            = "addCommand"
	KindEditorCommand      = "addEditorCommand"
	KindCheckCommand       = "addCheckCommand"
	KindFileMenu           = "fileMenu"
	KindFilesMenu          = "filesMenu"
	KindInterval           = "registerInterval"
)

// LedgerKey builds the idempotency key for one registration request.
func LedgerKey(kind, id string) string {
	return kind + "-" + id
}

// RegistrationLedger remembers which named hooks were already registered
// with the host so repeated calls register each of them once.
type RegistrationLedger struct {
	mu   sync.RWMutex
	keys map[string]struct{}
}

// NewRegistrationLedger creates an empty ledger.
func NewRegistrationLedger() *RegistrationLedger {
	return &RegistrationLedger{keys: make(map[string]struct{})}
}

// Register calls fn only if (kind, id) has not been recorded yet, and
// records it when fn succeeds. It reports whether fn was called.
func (l *RegistrationLedger) Register(kind, id string, fn func() error) (bool, error) {
	key := LedgerKey(kind, id)
	l.mu.Lock()
	defer l.mu.Unlock()
	if _, ok := l.keys[key]; ok {
		return false, nil
	}
	if err := fn(); err != nil {
		return true, err
	}
	l.keys[key] = struct{}{}
	return true, nil
}

// Has reports whether (kind, id) is recorded.
func (l *RegistrationLedger) Has(kind, id string) bool {
	l.mu.RLock()
	defer l.mu.RUnlock()
	_, ok := l.keys[LedgerKey(kind, id)]
	return ok
}

// Forget removes a key so the registration can happen again.
func (l *RegistrationLedger) Forget(kind, id string) {
	l.mu.Lock()
	defer l.mu.Unlock()
	delete(l.keys, LedgerKey(kind, id))
}

// Keys returns the recorded keys in sorted order.
func (l *RegistrationLedger) Keys() []string {
	l.mu.RLock()
	defer l.mu.RUnlock()
	keys := make([]string, 0, len(l.keys))
	for key := range l.keys {
		keys = append(keys, key)
	}
	slices.Sort(keys)
	return keys
}

// Len returns the number of recorded keys.
func (l *RegistrationLedger) Len() int {
	l.mu.RLock()
	defer l.mu.RUnlock()
	return len(l.keys)
}
