package plugkit

import (
	"errors"
	"sync"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestLedgerRegistersOnce(t *testing.T) {
	l := NewRegistrationLedger()
	calls := 0
	register := func() error { calls++; return nil }

	called, err := l.Register(KindCodeBlockProcessor, "mermaid", register)
	require.NoError(t, err)
	assert.True(t, called)

	called, err = l.Register(KindCodeBlockProcessor, "mermaid", register)
	require.NoError(t, err)
	assert.False(t, called)

	assert.Equal(t, 1, calls)
	assert.True(t, l.Has(KindCodeBlockProcessor, "mermaid"))
	assert.Equal(t, []string{"registerMarkdownCodeBlockProcessor-mermaid"}, l.Keys())
}

func TestLedgerKeysAreScopedByKind(t *testing.T) {
	l := NewRegistrationLedger()
	_, _ = l.Register(KindEvent, "x", func() error { return nil })
	_, _ = l.Register(KindEditorSuggest, "x", func() error { return nil })

	assert.Equal(t, 2, l.Len())
	assert.Equal(t, []string{"registerEditorSuggest-x", "registerEvent-x"}, l.Keys())
}

func TestLedgerFailedRegistrationIsNotRecorded(t *testing.T) {
	l := NewRegistrationLedger()
	failure := errors.New("host refused")

	called, err := l.Register(KindCommand, "c", func() error { return failure })
	assert.True(t, called)
	assert.Same(t, failure, err)
	assert.False(t, l.Has(KindCommand, "c"))

	called, err = l.Register(KindCommand, "c", func() error { return nil })
	require.NoError(t, err)
	assert.True(t, called)
}

func TestLedgerForget(t *testing.T) {
	l := NewRegistrationLedger()
	_, _ = l.Register(KindFileMenu, "Rename", func() error { return nil })
	l.Forget(KindFileMenu, "Rename")
	assert.False(t, l.Has(KindFileMenu, "Rename"))
	assert.Zero(t, l.Len())
}

func TestLedgerConcurrentRegistration(t *testing.T) {
	l := NewRegistrationLedger()
	var mu sync.Mutex
	calls := 0

	var wg sync.WaitGroup
	for i := 0; i < 50; i++ {
		wg.Add(1)
		go func() {
			defer wg.Done()
			_, _ = l.Register(KindEvent, "shared", func() error {
				mu.Lock()
				calls++
				mu.Unlock()
				return nil
			})
		}()
	}
	wg.Wait()
	assert.Equal(t, 1, calls)
}

func TestLedgerKey(t *testing.T) {
	assert.Equal(t, "addCommand-open", LedgerKey(KindCommand, "open"))
}
