// Package hooks is the pre-execution middleware surface a document store
// exposes to plugins. Hooks are registered per operation and run in
// registration order; each receives the mutable query conditions and a
// continuation it must call exactly once for the operation to proceed.
package hooks

import (
	"context"
	"errors"
	"sync"

	"github.com/Aman-CERP/docsyn/pkg/query"
)

// Op names a hookable store operation.
type Op string

// Operations hooked by the synonyms plugin.
const (
	OpFind    Op = "find"
	OpFindOne Op = "findOne"
	OpCount   Op = "count"
)

// QueryOps are the read operations whose conditions may be rewritten.
var QueryOps = []Op{OpFind, OpFindOne, OpCount}

// ErrNextCalledTwice is returned by a continuation invoked more than once.
var ErrNextCalledTwice = errors.New("hooks: next called more than once")

// Next continues to the following hook, or to the operation itself.
type Next func() error

// Hook runs before an operation. It may mutate conds and must call next
// exactly once to let the operation run; returning without calling next
// short-circuits the operation.
type Hook func(ctx context.Context, conds query.Conditions, next Next) error

// Registry holds the ordered hooks of each operation.
type Registry struct {
	mu  sync.RWMutex
	pre map[Op][]Hook
}

// NewRegistry creates an empty hook registry.
func NewRegistry() *Registry {
	return &Registry{pre: make(map[Op][]Hook)}
}

// Pre appends a hook to run before op.
func (r *Registry) Pre(op Op, h Hook) {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.pre[op] = append(r.pre[op], h)
}

// Len returns the number of hooks registered for op.
func (r *Registry) Len(op Op) int {
	r.mu.RLock()
	defer r.mu.RUnlock()
	return len(r.pre[op])
}

// Run executes the hooks registered for op, then exec.
// exec runs only if every hook calls its continuation.
func (r *Registry) Run(ctx context.Context, op Op, conds query.Conditions, exec func() error) error {
	r.mu.RLock()
	chain := append([]Hook(nil), r.pre[op]...)
	r.mu.RUnlock()

	return dispatch(ctx, chain, conds, exec)
}

func dispatch(ctx context.Context, chain []Hook, conds query.Conditions, exec func() error) error {
	if len(chain) == 0 {
		return exec()
	}
	called := false
	next := func() error {
		if called {
			return ErrNextCalledTwice
		}
		called = true
		return dispatch(ctx, chain[1:], conds, exec)
	}
	return chain[0](ctx, conds, next)
}
