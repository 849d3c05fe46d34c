package hooks

import (
	"context"
	"errors"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/Aman-CERP/docsyn/pkg/query"
)

func TestRegistry_RunsHooksInOrderThenExec(t *testing.T) {
	r := NewRegistry()
	var trace []string

	r.Pre(OpFind, func(_ context.Context, conds query.Conditions, next Next) error {
		trace = append(trace, "first")
		conds["seen"] = true
		return next()
	})
	r.Pre(OpFind, func(_ context.Context, _ query.Conditions, next Next) error {
		trace = append(trace, "second")
		return next()
	})

	conds := query.Conditions{}
	err := r.Run(context.Background(), OpFind, conds, func() error {
		trace = append(trace, "exec")
		return nil
	})

	require.NoError(t, err)
	assert.Equal(t, []string{"first", "second", "exec"}, trace)
	assert.Equal(t, true, conds["seen"])
	assert.Equal(t, 2, r.Len(OpFind))
}

func TestRegistry_HooksArePerOperation(t *testing.T) {
	r := NewRegistry()
	ran := false
	r.Pre(OpCount, func(_ context.Context, _ query.Conditions, next Next) error {
		ran = true
		return next()
	})

	require.NoError(t, r.Run(context.Background(), OpFind, nil, func() error { return nil }))
	assert.False(t, ran)
	assert.Zero(t, r.Len(OpFindOne))
}

func TestRegistry_NoHooksRunsExec(t *testing.T) {
	r := NewRegistry()
	execErr := errors.New("exec failed")

	err := r.Run(context.Background(), OpFindOne, nil, func() error { return execErr })
	assert.Equal(t, execErr, err)
}

func TestRegistry_ShortCircuit(t *testing.T) {
	r := NewRegistry()
	denied := errors.New("denied")
	r.Pre(OpFind, func(context.Context, query.Conditions, Next) error { return denied })

	executed := false
	err := r.Run(context.Background(), OpFind, nil, func() error {
		executed = true
		return nil
	})

	assert.Equal(t, denied, err)
	assert.False(t, executed)
}

func TestRegistry_NextCalledTwice(t *testing.T) {
	r := NewRegistry()
	var second error
	r.Pre(OpFind, func(_ context.Context, _ query.Conditions, next Next) error {
		if err := next(); err != nil {
			return err
		}
		second = next()
		return nil
	})

	execs := 0
	err := r.Run(context.Background(), OpFind, nil, func() error {
		execs++
		return nil
	})

	require.NoError(t, err)
	assert.Equal(t, 1, execs)
	assert.ErrorIs(t, second, ErrNextCalledTwice)
}
