package ledger

import (
	"context"
	"errors"
	"fmt"
	"math/big"

	"github.com/holiman/uint256"
	relayledger "github.com/nspcc-dev/ftrelay/ledger"
	"github.com/nspcc-dev/neo-go/pkg/util"
)

// ErrOutOfRange is returned for amounts not fitting 256-bit unsigned integer.
var ErrOutOfRange = errors.New("amount out of range")

// Service adapts Contract to the relay ledger interface. Read-only calls
// check ctx before the request only, transactions are awaited within ctx.
type Service struct {
	c *Contract
}

// NewService returns Service working with the ledger via actor.
func NewService(actor Actor, hash util.Uint160) *Service {
	return &Service{c: New(actor, hash)}
}

// Transfer implements [relayledger.Service].
func (s *Service) Transfer(ctx context.Context, receiver util.Uint160, amount *uint256.Int, memo string) error {
	return s.c.TransferFromSender(ctx, receiver, amount.ToBig(), memo)
}

// BalanceOf implements [relayledger.Service].
func (s *Service) BalanceOf(ctx context.Context, account util.Uint160) (*uint256.Int, error) {
	if err := ctx.Err(); err != nil {
		return nil, err
	}
	b, err := s.c.BalanceOf(account)
	if err != nil {
		return nil, err
	}
	return toAmount(b)
}

// StorageBalanceOf implements [relayledger.Service].
func (s *Service) StorageBalanceOf(ctx context.Context, account util.Uint160) (*relayledger.StorageBalance, error) {
	if err := ctx.Err(); err != nil {
		return nil, err
	}
	sb, err := s.c.StorageBalanceOf(account)
	if err != nil || sb == nil {
		return nil, err
	}
	res, err := sb.toRelay()
	if err != nil {
		return nil, err
	}
	return &res, nil
}

// StorageBalanceBounds implements [relayledger.Service].
func (s *Service) StorageBalanceBounds(ctx context.Context) (relayledger.Bounds, error) {
	if err := ctx.Err(); err != nil {
		return relayledger.Bounds{}, err
	}
	b, err := s.c.StorageBalanceBounds()
	if err != nil {
		return relayledger.Bounds{}, err
	}

	var res relayledger.Bounds
	lo, err := toAmount(b.Min)
	if err != nil {
		return res, fmt.Errorf("min: %w", err)
	}
	hi, err := toAmount(b.Max)
	if err != nil {
		return res, fmt.Errorf("max: %w", err)
	}
	res.Min, res.Max = *lo, *hi
	return res, nil
}

// StorageDeposit implements [relayledger.Service]. The resulting allocation is
// read after the deposit transaction is accepted.
func (s *Service) StorageDeposit(ctx context.Context, account util.Uint160, registrationOnly bool, deposit *uint256.Int) (relayledger.StorageBalance, error) {
	if err := s.c.StorageDeposit(ctx, account, registrationOnly, deposit.ToBig()); err != nil {
		return relayledger.StorageBalance{}, fmt.Errorf("deposit: %w", err)
	}

	sb, err := s.StorageBalanceOf(ctx, account)
	if err != nil {
		return relayledger.StorageBalance{}, fmt.Errorf("read allocation: %w", err)
	}
	if sb == nil {
		return relayledger.StorageBalance{}, errors.New("allocation is missing after deposit")
	}
	return *sb, nil
}

func (sb *StorageBalance) toRelay() (relayledger.StorageBalance, error) {
	var res relayledger.StorageBalance

	total, err := toAmount(sb.Total)
	if err != nil {
		return res, fmt.Errorf("total: %w", err)
	}
	available, err := toAmount(sb.Available)
	if err != nil {
		return res, fmt.Errorf("available: %w", err)
	}
	res.Total, res.Available = *total, *available
	return res, res.Validate()
}

func toAmount(b *big.Int) (*uint256.Int, error) {
	if b == nil {
		return new(uint256.Int), nil
	}
	if b.Sign() < 0 {
		return nil, fmt.Errorf("%w: %s", ErrOutOfRange, b)
	}
	v, overflow := uint256.FromBig(b)
	if overflow {
		return nil, fmt.Errorf("%w: %s", ErrOutOfRange, b)
	}
	return v, nil
}
