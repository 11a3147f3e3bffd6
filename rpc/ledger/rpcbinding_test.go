package ledger

import (
	"context"
	"errors"
	"math/big"
	"testing"

	"github.com/holiman/uint256"
	"github.com/nspcc-dev/neo-go/pkg/core/state"
	"github.com/nspcc-dev/neo-go/pkg/neorpc/result"
	"github.com/nspcc-dev/neo-go/pkg/util"
	"github.com/nspcc-dev/neo-go/pkg/vm/stackitem"
	"github.com/nspcc-dev/neo-go/pkg/vm/vmstate"
	"github.com/stretchr/testify/require"
)

type testInvoker struct {
	items map[string]stackitem.Item
	err   error
}

func (i *testInvoker) Call(_ util.Uint160, operation string, _ ...any) (*result.Invoke, error) {
	if i.err != nil {
		return nil, i.err
	}
	return &result.Invoke{
		State: vmstate.Halt.String(),
		Stack: []stackitem.Item{i.items[operation]},
	}, nil
}

func TestContractReader(t *testing.T) {
	inv := &testInvoker{items: map[string]stackitem.Item{
		"balanceOf": stackitem.Make(42),
		methodStorageBalanceOf: stackitem.NewStruct([]stackitem.Item{
			stackitem.Make(100), stackitem.Make(30),
		}),
		methodStorageBalanceBounds: stackitem.NewStruct([]stackitem.Item{
			stackitem.Make(10), stackitem.Null{},
		}),
	}}
	r := NewReader(inv, util.Uint160{1})

	bal, err := r.BalanceOf(util.Uint160{2})
	require.NoError(t, err)
	require.Equal(t, int64(42), bal.Int64())

	sb, err := r.StorageBalanceOf(util.Uint160{2})
	require.NoError(t, err)
	require.Equal(t, &StorageBalance{Total: big.NewInt(100), Available: big.NewInt(30)}, sb)

	b, err := r.StorageBalanceBounds()
	require.NoError(t, err)
	require.Equal(t, int64(10), b.Min.Int64())
	require.Zero(t, b.Max.Sign())

	inv.items[methodStorageBalanceOf] = stackitem.Null{}
	sb, err = r.StorageBalanceOf(util.Uint160{2})
	require.NoError(t, err)
	require.Nil(t, sb)

	inv.items[methodStorageBalanceOf] = stackitem.NewStruct([]stackitem.Item{stackitem.Make(1)})
	_, err = r.StorageBalanceOf(util.Uint160{2})
	require.Error(t, err)

	inv.err = errors.New("connection refused")
	_, err = r.StorageBalanceBounds()
	require.Error(t, err)
}

func TestConversions(t *testing.T) {
	v, err := toAmount(big.NewInt(5))
	require.NoError(t, err)
	require.Equal(t, uint64(5), v.Uint64())

	v, err = toAmount(nil)
	require.NoError(t, err)
	require.True(t, v.IsZero())

	_, err = toAmount(big.NewInt(-1))
	require.ErrorIs(t, err, ErrOutOfRange)

	_, err = toAmount(new(big.Int).Lsh(big.NewInt(1), 256))
	require.ErrorIs(t, err, ErrOutOfRange)

	sb := StorageBalance{Total: big.NewInt(10), Available: big.NewInt(20)}
	_, err = sb.toRelay()
	require.Error(t, err)

	sb.Available = big.NewInt(4)
	res, err := sb.toRelay()
	require.NoError(t, err)
	require.Equal(t, uint64(4), res.Available.Uint64())
	require.Equal(t, 0, res.Total.Cmp(uint256.NewInt(10)))
}

func TestCheckHalt(t *testing.T) {
	require.NoError(t, checkHalt(&state.AppExecResult{Execution: state.Execution{VMState: vmstate.Halt}}))

	err := checkHalt(&state.AppExecResult{Execution: state.Execution{
		VMState:        vmstate.Fault,
		FaultException: "at instruction 5 (THROW): not enough funds",
	}})
	require.ErrorIs(t, err, ErrFault)
}

// testActor sends nothing, every transaction is accepted with the configured
// VM state. Methods not overridden here panic.
type testActor struct {
	Actor

	inv     testInvoker
	sendErr error
	vmState vmstate.State

	sent   []string
	waited []util.Uint256
}

func newTestActor() *testActor {
	return &testActor{
		inv:     testInvoker{items: make(map[string]stackitem.Item)},
		vmState: vmstate.Halt,
	}
}

func (a *testActor) Call(contract util.Uint160, operation string, params ...any) (*result.Invoke, error) {
	return a.inv.Call(contract, operation, params...)
}

func (a *testActor) Sender() util.Uint160 { return util.Uint160{0xaa} }

func (a *testActor) send(kind string) (util.Uint256, uint32, error) {
	if a.sendErr != nil {
		return util.Uint256{}, 0, a.sendErr
	}
	a.sent = append(a.sent, kind)
	return util.Uint256{byte(len(a.sent))}, 100, nil
}

func (a *testActor) SendRun([]byte) (util.Uint256, uint32, error) {
	return a.send("run")
}

func (a *testActor) SendCall(_ util.Uint160, method string, _ ...any) (util.Uint256, uint32, error) {
	return a.send(method)
}

func (a *testActor) WaitAny(ctx context.Context, _ uint32, hashes ...util.Uint256) (*state.AppExecResult, error) {
	if err := ctx.Err(); err != nil {
		return nil, err
	}
	a.waited = append(a.waited, hashes...)
	return &state.AppExecResult{
		Container: hashes[0],
		Execution: state.Execution{VMState: a.vmState},
	}, nil
}

func TestPayer(t *testing.T) {
	ctx := context.Background()
	a := newTestActor()
	p := NewPayer(a)

	require.NoError(t, p.Pay(ctx, util.Uint160{1}, uint256.NewInt(10), []byte{1}))
	require.Equal(t, []string{"run"}, a.sent)
	require.Equal(t, []util.Uint256{{1}}, a.waited)

	a.vmState = vmstate.Fault
	require.ErrorIs(t, p.Pay(ctx, util.Uint160{1}, uint256.NewInt(10), nil), ErrFault)

	a.sendErr = errors.New("insufficient GAS")
	require.ErrorIs(t, p.Pay(ctx, util.Uint160{1}, uint256.NewInt(10), nil), a.sendErr)
	require.Len(t, a.waited, 2)
}

func TestRelayer(t *testing.T) {
	ctx := context.Background()
	a := newTestActor()
	r := NewRelayer(a, util.Uint160{7})

	require.NoError(t, r.Relay(ctx, "relay_meta_transaction", util.Uint160{1}, []byte("payload"), new(uint256.Int)))
	require.NoError(t, r.Relay(ctx, "relay_meta_transaction", util.Uint160{1}, []byte("payload"), uint256.NewInt(5)))
	require.Equal(t, []string{"relay_meta_transaction", "run"}, a.sent)
}

func TestServiceContext(t *testing.T) {
	a := newTestActor()
	a.inv.items[methodStorageBalanceOf] = stackitem.NewStruct([]stackitem.Item{
		stackitem.Make(50), stackitem.Make(0),
	})
	svc := NewService(a, util.Uint160{1})

	ctx, cancel := context.WithCancel(context.Background())
	sb, err := svc.StorageDeposit(ctx, util.Uint160{2}, true, uint256.NewInt(50))
	require.NoError(t, err)
	require.Equal(t, uint64(50), sb.Total.Uint64())
	require.True(t, sb.Available.IsZero())
	require.Len(t, a.waited, 1)

	cancel()
	require.ErrorIs(t, svc.Transfer(ctx, util.Uint160{2}, uint256.NewInt(1), "memo"), context.Canceled)
	_, err = svc.StorageDeposit(ctx, util.Uint160{2}, false, uint256.NewInt(50))
	require.ErrorIs(t, err, context.Canceled)
	_, err = svc.BalanceOf(ctx, util.Uint160{2})
	require.ErrorIs(t, err, context.Canceled)
	_, err = svc.StorageBalanceOf(ctx, util.Uint160{2})
	require.ErrorIs(t, err, context.Canceled)
	_, err = svc.StorageBalanceBounds(ctx)
	require.ErrorIs(t, err, context.Canceled)
	require.Len(t, a.waited, 1)
}
