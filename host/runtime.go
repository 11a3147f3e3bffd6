package host

import (
	"context"
	"fmt"
	"time"

	"github.com/nspcc-dev/ftrelay/metrics"
	"github.com/nspcc-dev/ftrelay/promise"
	"github.com/nspcc-dev/neo-go/pkg/encoding/address"
	"go.opentelemetry.io/otel"
	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/codes"
	"go.opentelemetry.io/otel/trace"
	"go.uber.org/zap"
)

// TracerName is the name of the runtime tracer.
const TracerName = "ftrelay/host"

// RuntimePrm groups Runtime parameters.
type RuntimePrm struct {
	// Optional, nop logger is used if nil.
	Logger  *zap.Logger
	Invoker Invoker
	// Optional, deposits and payments are not accounted if nil.
	Wallet *Wallet
	// Optional.
	Metrics *metrics.Collector
	// Optional, global tracer provider is used if nil.
	Tracer trace.Tracer
}

type task struct {
	p *promise.Promise
	// Set if the call can't be performed at all.
	err     error
	debited bool
}

// Runtime is a single-goroutine promise scheduler. It's not safe for
// concurrent use.
type Runtime struct {
	log     *zap.Logger
	inv     Invoker
	wallet  *Wallet
	metrics *metrics.Collector
	tracer  trace.Tracer

	queue []task
}

// NewRuntime returns Runtime with empty queue.
func NewRuntime(prm RuntimePrm) *Runtime {
	rt := &Runtime{
		log:     prm.Logger,
		inv:     prm.Invoker,
		wallet:  prm.Wallet,
		metrics: prm.Metrics,
		tracer:  prm.Tracer,
	}
	if rt.log == nil {
		rt.log = zap.NewNop()
	}
	if rt.tracer == nil {
		rt.tracer = otel.Tracer(TracerName)
	}
	return rt
}

// Issue implements promise.Scheduler. Attached deposit is taken from the
// wallet immediately, the call fails on execution if it can't be covered.
func (rt *Runtime) Issue(p *promise.Promise) {
	t := task{p: p}

	c, _ := p.Call()
	if rt.wallet != nil && !c.Deposit.IsZero() {
		t.err = rt.wallet.Debit(c.Deposit)
		t.debited = t.err == nil
	}

	rt.queue = append(rt.queue, t)
	rt.metrics.SetPending(len(rt.queue))
}

// Pending returns queued calls in issue order.
func (rt *Runtime) Pending() []promise.Call {
	res := make([]promise.Call, 0, len(rt.queue))
	for _, t := range rt.queue {
		c, _ := t.p.Call()
		res = append(res, c)
	}
	return res
}

// Step performs the first queued call and runs its continuations. It returns
// false if the queue is empty.
func (rt *Runtime) Step(ctx context.Context) bool {
	if len(rt.queue) == 0 {
		return false
	}
	if err := rt.Execute(ctx, 0); err != nil {
		rt.log.Error("can't deliver call result", zap.Error(err))
	}
	return true
}

// Run performs queued calls until the queue is drained or ctx is done.
func (rt *Runtime) Run(ctx context.Context) error {
	for {
		if err := ctx.Err(); err != nil {
			return err
		}
		if !rt.Step(ctx) {
			return nil
		}
	}
}

// Execute performs i-th queued call out of order.
func (rt *Runtime) Execute(ctx context.Context, i int) error {
	t, err := rt.take(i)
	if err != nil {
		return err
	}

	res := promise.Result{Err: t.err}
	if t.err == nil {
		res = rt.invoke(ctx, t.p)
	}
	return rt.deliver(t, res)
}

// ResolveNext removes i-th queued call without performing it and resolves it
// with res.
func (rt *Runtime) ResolveNext(i int, res promise.Result) error {
	t, err := rt.take(i)
	if err != nil {
		return err
	}
	return rt.deliver(t, res)
}

func (rt *Runtime) take(i int) (task, error) {
	if i < 0 || i >= len(rt.queue) {
		return task{}, fmt.Errorf("no pending call #%d, %d queued", i, len(rt.queue))
	}
	t := rt.queue[i]
	rt.queue = append(rt.queue[:i], rt.queue[i+1:]...)
	rt.metrics.SetPending(len(rt.queue))
	return t, nil
}

func (rt *Runtime) invoke(ctx context.Context, p *promise.Promise) promise.Result {
	c, _ := p.Call()

	ctx, span := rt.tracer.Start(ctx, string(c.Stage), trace.WithAttributes(
		attribute.String("kind", c.Kind.String()),
		attribute.String("target", address.Uint160ToString(c.Target)),
		attribute.String("method", c.Method),
		attribute.String("deposit", c.Deposit.Dec()),
		attribute.Int64("gas", int64(c.Gas)),
	))
	defer span.End()

	start := time.Now()
	res := rt.inv.Invoke(ctx, c)
	rt.metrics.RecordCall(string(c.Stage), c.Method, res.Err == nil, time.Since(start))

	if res.Err != nil {
		span.RecordError(res.Err)
		span.SetStatus(codes.Error, res.Err.Error())
	}

	rt.log.Debug("remote call performed",
		zap.String("stage", string(c.Stage)),
		zap.Stringer("kind", c.Kind),
		zap.String("target", address.Uint160ToString(c.Target)),
		zap.String("method", c.Method),
		zap.Error(res.Err))

	return res
}

func (rt *Runtime) deliver(t task, res promise.Result) error {
	if res.Err != nil && t.debited {
		// Remote party hasn't accepted the deposit.
		c, _ := t.p.Call()
		rt.wallet.Credit(c.Deposit)
	}
	return t.p.Resolve(res)
}
