package ledger

import (
	"context"
	"errors"
	"fmt"
	"sync"

	"github.com/holiman/uint256"
	"github.com/nspcc-dev/neo-go/pkg/encoding/address"
	"github.com/nspcc-dev/neo-go/pkg/util"
)

// Emulator errors.
var (
	ErrNotRegistered       = errors.New("account is not registered")
	ErrDepositTooLow       = errors.New("deposit is below the minimum storage balance")
	ErrInsufficientBalance = errors.New("insufficient token balance")
	ErrZeroAmount          = errors.New("zero amount")
)

// Emulator is an in-memory external ledger. Relay-owned tokens are kept on the
// owner account, Transfer moves them to registered receivers. Emulator is safe
// for concurrent use.
type Emulator struct {
	mu sync.Mutex

	owner    util.Uint160
	bounds   Bounds
	balances map[util.Uint160]uint256.Int
	storage  map[util.Uint160]StorageBalance
	calls    map[string]int

	failures map[string]error
}

// NewEmulator returns Emulator with owner account registered and the given
// minimal allocation.
func NewEmulator(owner util.Uint160, minStorage uint64) *Emulator {
	e := &Emulator{
		owner:    owner,
		balances: make(map[util.Uint160]uint256.Int),
		storage:  make(map[util.Uint160]StorageBalance),
		calls:    make(map[string]int),
		failures: make(map[string]error),
	}
	e.bounds.Min.SetUint64(minStorage)
	e.storage[owner] = StorageBalance{Total: e.bounds.Min}
	return e
}

// Mint credits the account with the given amount of tokens.
func (e *Emulator) Mint(account util.Uint160, amount uint64) {
	e.mu.Lock()
	defer e.mu.Unlock()

	bal := e.balances[account]
	bal.Add(&bal, uint256.NewInt(amount))
	e.balances[account] = bal
}

// Register allocates minimal storage for the account without a call record.
func (e *Emulator) Register(account util.Uint160) {
	e.mu.Lock()
	defer e.mu.Unlock()

	if _, ok := e.storage[account]; !ok {
		e.storage[account] = StorageBalance{Total: e.bounds.Min}
	}
}

// FailNext makes the next call of the method fail with err.
func (e *Emulator) FailNext(method string, err error) {
	e.mu.Lock()
	defer e.mu.Unlock()
	e.failures[method] = err
}

// Calls returns number of the method calls made so far.
func (e *Emulator) Calls(method string) int {
	e.mu.Lock()
	defer e.mu.Unlock()
	return e.calls[method]
}

// Registered checks whether the account holds a storage allocation.
func (e *Emulator) Registered(account util.Uint160) bool {
	e.mu.Lock()
	defer e.mu.Unlock()
	_, ok := e.storage[account]
	return ok
}

// called must be invoked with the lock held.
func (e *Emulator) called(method string) error {
	e.calls[method]++
	if err, ok := e.failures[method]; ok {
		delete(e.failures, method)
		return err
	}
	return nil
}

// Transfer implements [Service].
func (e *Emulator) Transfer(_ context.Context, receiver util.Uint160, amount *uint256.Int, _ string) error {
	e.mu.Lock()
	defer e.mu.Unlock()

	if err := e.called(MethodTransfer); err != nil {
		return err
	}
	if amount.IsZero() {
		return ErrZeroAmount
	}
	if _, ok := e.storage[receiver]; !ok {
		return fmt.Errorf("%w: %s", ErrNotRegistered, address.Uint160ToString(receiver))
	}

	from := e.balances[e.owner]
	if from.Lt(amount) {
		return ErrInsufficientBalance
	}
	from.Sub(&from, amount)
	e.balances[e.owner] = from

	to := e.balances[receiver]
	to.Add(&to, amount)
	e.balances[receiver] = to

	return nil
}

// BalanceOf implements [Service].
func (e *Emulator) BalanceOf(_ context.Context, account util.Uint160) (*uint256.Int, error) {
	e.mu.Lock()
	defer e.mu.Unlock()

	if err := e.called(MethodBalanceOf); err != nil {
		return nil, err
	}
	bal := e.balances[account]
	return &bal, nil
}

// StorageBalanceOf implements [Service].
func (e *Emulator) StorageBalanceOf(_ context.Context, account util.Uint160) (*StorageBalance, error) {
	e.mu.Lock()
	defer e.mu.Unlock()

	if err := e.called(MethodStorageBalanceOf); err != nil {
		return nil, err
	}
	sb, ok := e.storage[account]
	if !ok {
		return nil, nil
	}
	return &sb, nil
}

// StorageBalanceBounds implements [Service].
func (e *Emulator) StorageBalanceBounds(context.Context) (Bounds, error) {
	e.mu.Lock()
	defer e.mu.Unlock()

	if err := e.called(MethodStorageBalanceBounds); err != nil {
		return Bounds{}, err
	}
	return e.bounds, nil
}

// StorageDeposit implements [Service].
func (e *Emulator) StorageDeposit(_ context.Context, account util.Uint160, registrationOnly bool, deposit *uint256.Int) (StorageBalance, error) {
	e.mu.Lock()
	defer e.mu.Unlock()

	if err := e.called(MethodStorageDeposit); err != nil {
		return StorageBalance{}, err
	}

	sb, ok := e.storage[account]
	if ok {
		if registrationOnly {
			return sb, nil
		}
		sb.Total.Add(&sb.Total, deposit)
		sb.Available.Add(&sb.Available, deposit)
		e.storage[account] = sb
		return sb, nil
	}

	if deposit.Lt(&e.bounds.Min) {
		return StorageBalance{}, ErrDepositTooLow
	}

	sb.Total = e.bounds.Min
	if !registrationOnly {
		sb.Total.Set(deposit)
		sb.Available.Sub(deposit, &e.bounds.Min)
	}
	e.storage[account] = sb

	return sb, nil
}
