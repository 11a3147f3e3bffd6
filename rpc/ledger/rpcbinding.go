// Package ledger contains RPC wrappers for external ledger contracts.
//
// An external ledger is a NEP-17 token contract extended with storage
// allocation methods. Storage is paid with GAS transferred to the ledger with
// [account, registrationOnly] as transfer data.
package ledger

import (
	"context"
	"errors"
	"fmt"
	"math/big"

	"github.com/nspcc-dev/neo-go/pkg/core/state"
	"github.com/nspcc-dev/neo-go/pkg/core/transaction"
	"github.com/nspcc-dev/neo-go/pkg/rpcclient/actor"
	"github.com/nspcc-dev/neo-go/pkg/rpcclient/gas"
	"github.com/nspcc-dev/neo-go/pkg/rpcclient/nep17"
	"github.com/nspcc-dev/neo-go/pkg/rpcclient/unwrap"
	"github.com/nspcc-dev/neo-go/pkg/util"
	"github.com/nspcc-dev/neo-go/pkg/vm/stackitem"
	"github.com/nspcc-dev/neo-go/pkg/vm/vmstate"
)

// Contract methods.
const (
	methodStorageBalanceOf     = "storageBalanceOf"
	methodStorageBalanceBounds = "storageBalanceBounds"
)

// ErrFault is returned for transactions not ended in HALT state.
var ErrFault = errors.New("transaction failed")

// StorageBalance is a contract-specific storage balance type.
type StorageBalance struct {
	Total     *big.Int
	Available *big.Int
}

// Bounds is a contract-specific storage bounds type.
type Bounds struct {
	Min *big.Int
	Max *big.Int
}

// Invoker is used by ContractReader to call various safe methods.
type Invoker interface {
	nep17.Invoker
}

// Actor is used by Contract to call state-changing methods.
type Actor interface {
	Invoker

	nep17.Actor

	Sender() util.Uint160
	MakeCall(contract util.Uint160, method string, params ...any) (*transaction.Transaction, error)
	SendCall(contract util.Uint160, method string, params ...any) (util.Uint256, uint32, error)
	WaitAny(ctx context.Context, vub uint32, hashes ...util.Uint256) (*state.AppExecResult, error)
}

var _ Actor = (*actor.Actor)(nil)

// ContractReader implements safe contract methods.
type ContractReader struct {
	nep17.TokenReader
	invoker Invoker
	hash    util.Uint160
}

// Contract implements all contract methods.
type Contract struct {
	ContractReader
	nep17.TokenWriter
	actor Actor
	hash  util.Uint160
	gas   *nep17.Token
}

// NewReader creates an instance of ContractReader using provided contract hash and the given Invoker.
func NewReader(invoker Invoker, hash util.Uint160) *ContractReader {
	return &ContractReader{*nep17.NewReader(invoker, hash), invoker, hash}
}

// New creates an instance of Contract using provided contract hash and the given Actor.
func New(actor Actor, hash util.Uint160) *Contract {
	var nep17t = nep17.New(actor, hash)
	return &Contract{ContractReader{nep17t.TokenReader, actor, hash}, nep17t.TokenWriter, actor, hash, gas.New(actor)}
}

// Hash returns contract hash.
func (c *ContractReader) Hash() util.Uint160 { return c.hash }

// StorageBalanceOf invokes `storageBalanceOf` method of contract. Nil is
// returned for unregistered accounts.
func (c *ContractReader) StorageBalanceOf(account util.Uint160) (*StorageBalance, error) {
	item, err := unwrap.Item(c.invoker.Call(c.hash, methodStorageBalanceOf, account))
	if err != nil {
		return nil, err
	}
	if _, ok := item.(stackitem.Null); ok {
		return nil, nil
	}

	var res = new(StorageBalance)
	return res, res.FromStackItem(item)
}

// StorageBalanceBounds invokes `storageBalanceBounds` method of contract.
func (c *ContractReader) StorageBalanceBounds() (*Bounds, error) {
	item, err := unwrap.Item(c.invoker.Call(c.hash, methodStorageBalanceBounds))
	if err != nil {
		return nil, err
	}

	var res = new(Bounds)
	return res, res.FromStackItem(item)
}

// StorageDeposit creates a transaction transferring deposit GAS to the
// contract for the account allocation and waits for it to be accepted.
func (c *Contract) StorageDeposit(ctx context.Context, account util.Uint160, registrationOnly bool, deposit *big.Int) error {
	h, vub, err := c.gas.Transfer(c.actor.Sender(), c.hash, deposit, []any{account, registrationOnly})
	return wait(ctx, c.actor, h, vub, err)
}

// TransferFromSender transfers tokens owned by the actor and waits for the
// transaction to be accepted. Memo is passed as transfer data.
func (c *Contract) TransferFromSender(ctx context.Context, to util.Uint160, amount *big.Int, memo string) error {
	var data any
	if memo != "" {
		data = memo
	}
	h, vub, err := c.Transfer(c.actor.Sender(), to, amount, data)
	return wait(ctx, c.actor, h, vub, err)
}

// wait awaits the transaction sent with the given result and checks that it
// has been executed successfully.
func wait(ctx context.Context, a Actor, h util.Uint256, vub uint32, err error) error {
	if err != nil {
		return err
	}
	res, err := a.WaitAny(ctx, vub, h)
	if err != nil {
		return err
	}
	return checkHalt(res)
}

func checkHalt(res *state.AppExecResult) error {
	if res.VMState != vmstate.Halt {
		return fmt.Errorf("%w: %s, %s", ErrFault, res.VMState, res.FaultException)
	}
	return nil
}

// FromStackItem retrieves fields of StorageBalance from the given
// [stackitem.Item] or returns an error if it's not possible to do to.
func (res *StorageBalance) FromStackItem(item stackitem.Item) error {
	arr, ok := item.Value().([]stackitem.Item)
	if !ok {
		return errors.New("not an array")
	}
	if len(arr) != 2 {
		return errors.New("wrong number of structure elements")
	}

	var err error
	res.Total, err = arr[0].TryInteger()
	if err != nil {
		return fmt.Errorf("field Total: %w", err)
	}

	res.Available, err = arr[1].TryInteger()
	if err != nil {
		return fmt.Errorf("field Available: %w", err)
	}

	return nil
}

// FromStackItem retrieves fields of Bounds from the given
// [stackitem.Item] or returns an error if it's not possible to do to.
func (res *Bounds) FromStackItem(item stackitem.Item) error {
	arr, ok := item.Value().([]stackitem.Item)
	if !ok {
		return errors.New("not an array")
	}
	if len(arr) != 2 {
		return errors.New("wrong number of structure elements")
	}

	var err error
	res.Min, err = arr[0].TryInteger()
	if err != nil {
		return fmt.Errorf("field Min: %w", err)
	}

	if _, ok := arr[1].(stackitem.Null); ok {
		res.Max = new(big.Int)
		return nil
	}
	res.Max, err = arr[1].TryInteger()
	if err != nil {
		return fmt.Errorf("field Max: %w", err)
	}

	return nil
}
