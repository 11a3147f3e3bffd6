package promise

import (
	"errors"
	"testing"

	"github.com/nspcc-dev/neo-go/pkg/util"
	"github.com/stretchr/testify/require"
)

type testScheduler struct {
	issued []*Promise
}

func (s *testScheduler) Issue(p *Promise) { s.issued = append(s.issued, p) }

func leaf(stage Stage, target byte) *Promise {
	return New(Call{Stage: stage, Target: util.Uint160{target}})
}

func TestThen(t *testing.T) {
	var (
		s     testScheduler
		calls int
	)

	p := leaf(StageExistenceCheck, 1).Then(func(r Result) Next {
		calls++
		require.Equal(t, 42, r.Value)
		return Chain(leaf(StageAllocationRequest, 1))
	})
	p.Start(&s)
	p.Start(&s) // no-op

	require.Len(t, s.issued, 1)
	require.False(t, p.IsResolved())

	require.NoError(t, s.issued[0].Resolve(Result{Value: 42}))
	require.Equal(t, 1, calls)
	require.Len(t, s.issued, 2)
	require.False(t, p.IsResolved())

	c, ok := s.issued[1].Call()
	require.True(t, ok)
	require.Equal(t, StageAllocationRequest, c.Stage)

	require.NoError(t, s.issued[1].Resolve(Result{Value: "done"}))
	res, ok := p.Result()
	require.True(t, ok)
	require.Equal(t, "done", res.Value)
	require.NoError(t, res.Err)
}

func TestResolveTwice(t *testing.T) {
	var s testScheduler

	p := leaf(StageQuery, 1)
	p.Start(&s)

	require.NoError(t, p.Resolve(Result{}))
	require.ErrorIs(t, p.Resolve(Result{}), ErrAlreadyResolved)

	chain := p.Then(func(Result) Next { return Done(nil) })
	require.ErrorIs(t, chain.Resolve(Result{}), ErrNotCall)
}

func TestJoin(t *testing.T) {
	for _, order := range [][2]int{{0, 1}, {1, 0}} {
		var (
			s     testScheduler
			fired int
		)

		a := leaf(StageExistenceCheck, 1)
		b := leaf(StageExistenceCheck, 2)
		p := Join(a, b).Then(func(r Result) Next {
			fired++
			pair := r.Value.(Pair)
			require.Equal(t, "a", pair[0].Value)
			require.Equal(t, "b", pair[1].Value)
			return Done(true)
		})
		p.Start(&s)
		require.Len(t, s.issued, 2)

		values := []string{"a", "b"}
		require.NoError(t, s.issued[order[0]].Resolve(Result{Value: values[order[0]]}))
		require.Zero(t, fired, "barrier must wait for both sides")

		require.NoError(t, s.issued[order[1]].Resolve(Result{Value: values[order[1]]}))
		require.Equal(t, 1, fired)

		res, ok := p.Result()
		require.True(t, ok)
		require.Equal(t, true, res.Value)
	}
}

func TestJoinOneSideTwice(t *testing.T) {
	var s testScheduler

	a := leaf(StageExistenceCheck, 1)
	b := leaf(StageExistenceCheck, 2)
	j := Join(a, b)
	j.Start(&s)

	require.NoError(t, a.Resolve(Result{}))
	require.ErrorIs(t, a.Resolve(Result{}), ErrAlreadyResolved)
	require.False(t, j.IsResolved())

	require.NoError(t, b.Resolve(Result{}))
	require.True(t, j.IsResolved())
}

func TestJoinErrors(t *testing.T) {
	var s testScheduler

	errA := errors.New("a failed")
	a := leaf(StageExistenceCheck, 1)
	b := leaf(StageExistenceCheck, 2)

	var skipped bool
	p := Join(a, b).Then(func(r Result) Next {
		if r.Err != nil {
			skipped = true
			return Fail(r.Err)
		}
		return Chain(leaf(StageTransfer, 1))
	})
	p.Start(&s)

	require.NoError(t, b.Resolve(Result{}))
	require.NoError(t, a.Resolve(Result{Err: errA}))

	require.True(t, skipped)
	require.Len(t, s.issued, 2)

	res, ok := p.Result()
	require.True(t, ok)
	require.ErrorIs(t, res.Err, errA)
}

func TestResolvedParent(t *testing.T) {
	var s testScheduler

	p := Resolved(Result{Value: 1}).Then(func(r Result) Next {
		return Done(r.Value.(int) + 1)
	})
	p.Start(&s)

	require.Empty(t, s.issued)
	res, ok := p.Result()
	require.True(t, ok)
	require.Equal(t, 2, res.Value)

	var seen []any
	p.OnResolve(func(r Result) { seen = append(seen, r.Value) })
	require.Equal(t, []any{2}, seen)
}
