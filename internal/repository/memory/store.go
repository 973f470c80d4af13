// Package memory holds map-backed test doubles for the domain repositories.
// Only tests import it; the API and payrollctl run on postgresql. The doubles
// follow the postgresql implementations' error contracts.
package memory

import (
	"sync"
)

// FailFunc lets tests inject a failure for an operation on a key. A nil
// return lets the operation proceed.
type FailFunc func(op, key string) error

type faults struct {
	mu sync.Mutex
	fn FailFunc
}

// FailWith installs fn. Pass nil to clear it.
func (f *faults) FailWith(fn FailFunc) {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.fn = fn
}

func (f *faults) check(op, key string) error {
	f.mu.Lock()
	fn := f.fn
	f.mu.Unlock()
	if fn == nil {
		return nil
	}
	return fn(op, key)
}
