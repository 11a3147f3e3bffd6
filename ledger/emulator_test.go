package ledger

import (
	"context"
	"errors"
	"testing"

	"github.com/holiman/uint256"
	"github.com/nspcc-dev/neo-go/pkg/io"
	"github.com/nspcc-dev/neo-go/pkg/util"
	"github.com/stretchr/testify/require"
)

var (
	ctx = context.Background()

	owner = util.Uint160{0xff}
	alice = util.Uint160{1}
	bob   = util.Uint160{2}
)

func TestStorageDeposit(t *testing.T) {
	e := NewEmulator(owner, 10)

	_, err := e.StorageDeposit(ctx, alice, false, uint256.NewInt(5))
	require.ErrorIs(t, err, ErrDepositTooLow)
	require.False(t, e.Registered(alice))

	sb, err := e.StorageDeposit(ctx, alice, true, uint256.NewInt(15))
	require.NoError(t, err)
	require.Equal(t, NewStorageBalance(10, 0), sb)

	sb, err = e.StorageDeposit(ctx, alice, true, uint256.NewInt(15))
	require.NoError(t, err)
	require.Equal(t, NewStorageBalance(10, 0), sb)

	sb, err = e.StorageDeposit(ctx, alice, false, uint256.NewInt(5))
	require.NoError(t, err)
	require.Equal(t, NewStorageBalance(15, 5), sb)

	sb, err = e.StorageDeposit(ctx, bob, false, uint256.NewInt(25))
	require.NoError(t, err)
	require.Equal(t, NewStorageBalance(25, 15), sb)

	got, err := e.StorageBalanceOf(ctx, bob)
	require.NoError(t, err)
	require.Equal(t, sb, *got)

	got, err = e.StorageBalanceOf(ctx, util.Uint160{9})
	require.NoError(t, err)
	require.Nil(t, got)

	b, err := e.StorageBalanceBounds(ctx)
	require.NoError(t, err)
	require.Equal(t, uint64(10), b.Min.Uint64())
	require.True(t, b.Max.IsZero())

	require.Equal(t, 5, e.Calls(MethodStorageDeposit))
}

func TestTransfer(t *testing.T) {
	e := NewEmulator(owner, 10)
	e.Mint(owner, 100)

	require.ErrorIs(t, e.Transfer(ctx, alice, uint256.NewInt(1), ""), ErrNotRegistered)

	e.Register(alice)
	require.ErrorIs(t, e.Transfer(ctx, alice, uint256.NewInt(0), ""), ErrZeroAmount)
	require.ErrorIs(t, e.Transfer(ctx, alice, uint256.NewInt(101), ""), ErrInsufficientBalance)
	require.NoError(t, e.Transfer(ctx, alice, uint256.NewInt(60), "memo"))

	bal, err := e.BalanceOf(ctx, alice)
	require.NoError(t, err)
	require.Equal(t, uint64(60), bal.Uint64())

	bal, err = e.BalanceOf(ctx, owner)
	require.NoError(t, err)
	require.Equal(t, uint64(40), bal.Uint64())
}

func TestFailNext(t *testing.T) {
	e := NewEmulator(owner, 10)
	boom := errors.New("boom")

	e.FailNext(MethodBalanceOf, boom)
	_, err := e.BalanceOf(ctx, alice)
	require.ErrorIs(t, err, boom)

	_, err = e.BalanceOf(ctx, alice)
	require.NoError(t, err)
	require.Equal(t, 2, e.Calls(MethodBalanceOf))
}

func TestStorageBalanceCodec(t *testing.T) {
	w := io.NewBufBinWriter()
	bad := NewStorageBalance(1, 2)
	bad.EncodeBinary(w.BinWriter)
	require.NoError(t, w.Err)

	var sb StorageBalance
	r := io.NewBinReaderFromBuf(w.Bytes())
	sb.DecodeBinary(r)
	require.ErrorIs(t, r.Err, ErrInvalidStorageBalance)

	require.NoError(t, NewStorageBalance(2, 2).Validate())
}
