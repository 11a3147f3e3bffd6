package relay

import (
	"fmt"

	"github.com/holiman/uint256"
	"github.com/mr-tron/base58"
	"github.com/nspcc-dev/ftrelay/common"
	"github.com/nspcc-dev/ftrelay/ledger"
	"github.com/nspcc-dev/ftrelay/promise"
	"github.com/nspcc-dev/neo-go/pkg/encoding/address"
	"github.com/nspcc-dev/neo-go/pkg/util"
	"go.uber.org/zap"
)

// Deposit is a result of StorageDeposit.
type Deposit struct {
	// Balance is returned before the ledger confirms allocation. For accounts
	// already registered with no payment attached it's the mirror record.
	Balance ledger.StorageBalance
	// Promise resolves with confirmed mirror record.
	Promise *promise.Promise
}

// StorageDeposit requests storage allocation for the account on the ledger.
// Nil account means the caller. Deposit amount is the configured default for
// registration-only requests and the greater of the attached payment and the
// default otherwise, attached excess is refunded to the caller.
func (r *Relay) StorageDeposit(inv Invocation, token util.Uint160, account *util.Uint160, registrationOnly bool) (Deposit, error) {
	if err := r.checkActive(token); err != nil {
		return Deposit{}, err
	}

	acc := inv.Caller
	if account != nil {
		acc = *account
	}

	sb, err := r.mirror.Get(token, acc)
	if err != nil {
		return Deposit{}, err
	}
	if sb != nil && inv.Attached.IsZero() {
		return Deposit{
			Balance: *sb,
			Promise: promise.Resolved(promise.Result{Value: *sb}),
		}, nil
	}
	r.credit(inv)

	amount := r.cfg.StorageDeposit
	if !registrationOnly && inv.Attached.Gt(&amount) {
		amount = inv.Attached
	}

	p := r.call(promise.StageAllocationRequest, token, ledger.MethodStorageDeposit, &amount, acc, registrationOnly).
		Then(func(res promise.Result) promise.Next {
			if res.Err != nil {
				return promise.Fail(fmt.Errorf("deposit storage for %s: %w", address.Uint160ToString(acc), res.Err))
			}
			sb, err := r.confirmDeposit(token, acc, &amount)
			if err != nil {
				return promise.Fail(err)
			}
			return promise.Done(sb)
		})
	p.Start(r.sched)

	if inv.Attached.Gt(&amount) {
		var excess uint256.Int
		excess.Sub(&inv.Attached, &amount)
		r.pay(inv.Caller, &excess, common.RefundTransferDetails(token))
	}

	return Deposit{
		Balance: ledger.StorageBalance{Total: amount},
		Promise: p,
	}, nil
}

// confirmDeposit records confirmed allocation: new record gets the whole
// amount as total, existing one is extended by amount.
func (r *Relay) confirmDeposit(token, account util.Uint160, amount *uint256.Int) (ledger.StorageBalance, error) {
	cur, err := r.mirror.Get(token, account)
	if err != nil {
		return ledger.StorageBalance{}, err
	}

	sb := ledger.StorageBalance{Total: *amount}
	if cur != nil {
		sb = *cur
		if _, overflow := sb.Total.AddOverflow(&sb.Total, amount); overflow {
			return ledger.StorageBalance{}, fmt.Errorf("storage total overflow for %s", address.Uint160ToString(account))
		}
		sb.Available.Add(&sb.Available, amount)
	}

	if err := r.mirror.Put(token, account, sb); err != nil {
		return ledger.StorageBalance{}, err
	}
	r.emitStorage(EventStorageDeposited, token, account, amount)
	return sb, nil
}

// StorageWithdraw returns available storage balance of the caller. Nil amount
// withdraws everything available. Exactly ProofOfIntent must be attached.
func (r *Relay) StorageWithdraw(inv Invocation, token util.Uint160, amount *uint256.Int) (ledger.StorageBalance, error) {
	if err := r.checkActive(token); err != nil {
		return ledger.StorageBalance{}, err
	}
	if err := checkProofOfIntent(inv); err != nil {
		return ledger.StorageBalance{}, err
	}

	account := inv.Caller
	sb, err := r.mirror.Get(token, account)
	if err != nil {
		return ledger.StorageBalance{}, err
	}
	if sb == nil {
		return ledger.StorageBalance{}, fmt.Errorf("%w: %s", ErrAccountNotRegistered, address.Uint160ToString(account))
	}

	withdraw := sb.Available
	if amount != nil {
		withdraw = *amount
	}
	if withdraw.Gt(&sb.Available) {
		return ledger.StorageBalance{}, fmt.Errorf("%w: %s requested, %s available",
			ErrInsufficientStorageBalance, withdraw.Dec(), sb.Available.Dec())
	}

	updated := *sb
	updated.Available.Sub(&updated.Available, &withdraw)
	if err := r.mirror.Put(token, account, updated); err != nil {
		return ledger.StorageBalance{}, err
	}
	r.credit(inv)

	if !withdraw.IsZero() {
		r.pay(account, &withdraw, common.WithdrawTransferDetails(token))
	}
	r.emitStorage(EventStorageWithdrawn, token, account, &withdraw)

	return updated, nil
}

// UnregisterStatus is an immediate outcome of StorageUnregister.
type UnregisterStatus uint8

const (
	// NotRegistered means there was no mirror record, nothing has been done.
	NotRegistered UnregisterStatus = iota
	// Unregistered means the record has been removed and its total refunded.
	Unregistered
	// Pending means the outcome depends on the remote balance check.
	Pending
)

// String implements fmt.Stringer.
func (s UnregisterStatus) String() string {
	switch s {
	case NotRegistered:
		return "not registered"
	case Unregistered:
		return "unregistered"
	case Pending:
		return "pending"
	default:
		return "unknown"
	}
}

// Unregistration is a result of StorageUnregister.
type Unregistration struct {
	Status UnregisterStatus
	// Handle of the pending unregistration, empty for other statuses.
	Handle string
	// Promise resolves with true if the record has been removed. It fails
	// with ErrNonZeroBalance if the caller still holds tokens.
	Promise *promise.Promise
}

// StorageUnregister removes caller's mirror record and refunds its total.
// Without force the removal happens only after the ledger reports zero token
// balance of the caller. Exactly ProofOfIntent must be attached.
func (r *Relay) StorageUnregister(inv Invocation, token util.Uint160, force bool) (Unregistration, error) {
	if err := r.checkActive(token); err != nil {
		return Unregistration{}, err
	}
	if err := checkProofOfIntent(inv); err != nil {
		return Unregistration{}, err
	}

	account := inv.Caller
	sb, err := r.mirror.Get(token, account)
	if err != nil {
		return Unregistration{}, err
	}
	r.credit(inv)

	if sb == nil {
		return Unregistration{
			Status:  NotRegistered,
			Promise: promise.Resolved(promise.Result{Value: false}),
		}, nil
	}

	if force {
		r.unregister(token, account, sb)
		return Unregistration{
			Status:  Unregistered,
			Promise: promise.Resolved(promise.Result{Value: true}),
		}, nil
	}

	p := r.call(promise.StageBalanceCheck, token, ledger.MethodBalanceOf, nil, account).
		Then(func(res promise.Result) promise.Next {
			if res.Err != nil {
				return promise.Fail(fmt.Errorf("check balance of %s: %w", address.Uint160ToString(account), res.Err))
			}
			bal, ok := res.Value.(*uint256.Int)
			if !ok || bal == nil {
				return promise.Fail(fmt.Errorf("%w: %T", ErrUnexpectedResult, res.Value))
			}
			done, err := r.handleBalanceCheck(token, account, bal)
			if err != nil {
				return promise.Fail(err)
			}
			return promise.Done(done)
		})

	id := p.ID()
	handle := base58.Encode(id[:])
	r.pending[handle] = p
	p.OnResolve(func(promise.Result) { delete(r.pending, handle) })
	p.Start(r.sched)

	return Unregistration{
		Status:  Pending,
		Handle:  handle,
		Promise: p,
	}, nil
}

// PendingUnregistration returns unfinished unregistration by its handle.
func (r *Relay) PendingUnregistration(handle string) (*promise.Promise, bool) {
	p, ok := r.pending[handle]
	return p, ok
}

// handleBalanceCheck completes unregistration of the account after its token
// balance is known. Non-zero balance aborts it with ErrNonZeroBalance and no
// changes. Zero balance removes the record returning true, missing record
// makes it a no-op returning false.
func (r *Relay) handleBalanceCheck(token, account util.Uint160, balance *uint256.Int) (bool, error) {
	if !balance.IsZero() {
		r.log.Info("non-zero balance detected, unregistration aborted",
			zap.Stringer("token", stringer(token)),
			zap.Stringer("account", stringer(account)),
			zap.Stringer("balance", balance))
		return false, fmt.Errorf("%w: %s", ErrNonZeroBalance, balance.Dec())
	}

	sb, err := r.mirror.Get(token, account)
	if err != nil {
		return false, err
	}
	if sb == nil {
		return false, nil
	}

	r.unregister(token, account, sb)
	return true, nil
}

func (r *Relay) unregister(token, account util.Uint160, sb *ledger.StorageBalance) {
	if !sb.Total.IsZero() {
		total := sb.Total
		r.pay(account, &total, common.UnregisterTransferDetails(token))
	}
	r.mirror.Delete(token, account)
	r.emitStorage(EventStorageUnregistered, token, account, nil)
}

// MirrorBalanceOf returns mirror record of the account, nil if there is none.
func (r *Relay) MirrorBalanceOf(token, account util.Uint160) (*ledger.StorageBalance, error) {
	return r.mirror.Get(token, account)
}

// BalanceOf queries token balance of the account. The promise resolves with
// *uint256.Int.
func (r *Relay) BalanceOf(token, account util.Uint160) (*promise.Promise, error) {
	return r.query(token, ledger.MethodBalanceOf, account)
}

// StorageBalanceOf queries storage allocation of the account on the ledger.
// The promise resolves with *ledger.StorageBalance, nil for unregistered
// accounts.
func (r *Relay) StorageBalanceOf(token, account util.Uint160) (*promise.Promise, error) {
	return r.query(token, ledger.MethodStorageBalanceOf, account)
}

// StorageBalanceBounds queries allocation limits of the ledger. The promise
// resolves with ledger.Bounds.
func (r *Relay) StorageBalanceBounds(token util.Uint160) (*promise.Promise, error) {
	return r.query(token, ledger.MethodStorageBalanceBounds)
}

func (r *Relay) query(token util.Uint160, method string, args ...any) (*promise.Promise, error) {
	if err := r.checkSupported(token); err != nil {
		return nil, err
	}
	p := r.call(promise.StageQuery, token, method, nil, args...)
	p.Start(r.sched)
	return p, nil
}
