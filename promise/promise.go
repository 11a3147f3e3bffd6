package promise

import (
	"errors"

	"github.com/google/uuid"
)

var (
	// ErrAlreadyResolved is returned on repeated resolution of the same leaf.
	ErrAlreadyResolved = errors.New("promise is already resolved")
	// ErrNotCall is returned on attempt to resolve a non-leaf promise.
	ErrNotCall = errors.New("promise is not a remote call")
)

// Scheduler accepts leaf calls ready to be sent to their remote parties.
type Scheduler interface {
	Issue(*Promise)
}

// Next is a decision made by a Continuation: either a follow-up promise or
// the final result of the chain.
type Next struct {
	promise *Promise
	result  Result
}

// Chain continues with p.
func Chain(p *Promise) Next { return Next{promise: p} }

// Done finishes the chain with v.
func Done(v any) Next { return Next{result: Result{Value: v}} }

// Fail finishes the chain with err.
func Fail(err error) Next { return Next{result: Result{Err: err}} }

// Continuation is a callback executed when the preceding promise resolves.
type Continuation func(Result) Next

type nodeKind uint8

const (
	nodeCall nodeKind = iota
	nodeThen
	nodeJoin
	nodeResolved
)

// Promise is a pending result of a remote call chain. Promise is not safe for
// concurrent use, its owner (the host) serializes all operations.
type Promise struct {
	id   uuid.UUID
	node nodeKind

	call Call

	parent *Promise
	cont   Continuation

	left, right         *Promise
	leftDone, rightDone bool

	sched   Scheduler
	started bool

	resolved  bool
	result    Result
	observers []func(Result)
}

// New returns a leaf promise of the remote call.
func New(c Call) *Promise {
	return &Promise{id: uuid.New(), node: nodeCall, call: c}
}

// Resolved returns already resolved promise, it's used by chains having
// nothing to do.
func Resolved(r Result) *Promise {
	return &Promise{id: uuid.New(), node: nodeResolved, resolved: true, result: r}
}

// Then returns a promise which runs cont after p resolves and resolves with
// the outcome of cont.
func (p *Promise) Then(cont Continuation) *Promise {
	return &Promise{id: uuid.New(), node: nodeThen, parent: p, cont: cont}
}

// Join returns a promise resolved after both a and b are resolved. Its value
// is a Pair, its error joins errors of both sides.
func Join(a, b *Promise) *Promise {
	return &Promise{id: uuid.New(), node: nodeJoin, left: a, right: b}
}

// ID returns unique promise identifier.
func (p *Promise) ID() uuid.UUID { return p.id }

// Call returns the remote call of the leaf promise.
func (p *Promise) Call() (Call, bool) {
	return p.call, p.node == nodeCall
}

// IsResolved checks whether promise has been resolved.
func (p *Promise) IsResolved() bool { return p.resolved }

// Result returns promise result if it is resolved.
func (p *Promise) Result() (Result, bool) {
	return p.result, p.resolved
}

// OnResolve registers f to be called with the result. If promise is
// already resolved, f is called immediately.
func (p *Promise) OnResolve(f func(Result)) {
	if p.resolved {
		f(p.result)
		return
	}
	p.observers = append(p.observers, f)
}

// Start issues all leaves that can be executed now to s. Repeated calls are
// no-op.
func (p *Promise) Start(s Scheduler) {
	if p.started {
		return
	}
	p.started = true
	p.sched = s

	switch p.node {
	case nodeCall:
		s.Issue(p)
	case nodeThen:
		p.parent.OnResolve(p.continueWith)
		p.parent.Start(s)
	case nodeJoin:
		p.left.OnResolve(func(Result) { p.joinSide(&p.leftDone) })
		p.right.OnResolve(func(Result) { p.joinSide(&p.rightDone) })
		p.left.Start(s)
		p.right.Start(s)
	case nodeResolved:
	}
}

// Resolve delivers remote result to the leaf promise and runs all dependent
// continuations.
func (p *Promise) Resolve(r Result) error {
	if p.node != nodeCall {
		return ErrNotCall
	}
	if p.resolved {
		return ErrAlreadyResolved
	}
	p.settle(r)
	return nil
}

func (p *Promise) continueWith(r Result) {
	next := p.cont(r)
	if next.promise == nil {
		p.settle(next.result)
		return
	}
	next.promise.OnResolve(p.settle)
	next.promise.Start(p.sched)
}

func (p *Promise) joinSide(done *bool) {
	if *done {
		return
	}
	*done = true
	if !p.leftDone || !p.rightDone {
		return
	}

	l, r := p.left.result, p.right.result
	p.settle(Result{
		Value: Pair{l, r},
		Err:   errors.Join(l.Err, r.Err),
	})
}

func (p *Promise) settle(r Result) {
	if p.resolved {
		return
	}
	p.resolved = true
	p.result = r

	observers := p.observers
	p.observers = nil
	for _, f := range observers {
		f(r)
	}
}
