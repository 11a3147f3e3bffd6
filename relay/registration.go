package relay

import (
	"fmt"

	"github.com/nspcc-dev/ftrelay/ledger"
	"github.com/nspcc-dev/ftrelay/promise"
	"github.com/nspcc-dev/neo-go/pkg/encoding/address"
	"github.com/nspcc-dev/neo-go/pkg/util"
	"go.uber.org/zap"
)

// EnsureRegistered makes sure the account holds storage allocation on the
// ledger. The returned promise resolves with true if the relay has paid for
// a new allocation and false if the account was already registered.
func (r *Relay) EnsureRegistered(token, account util.Uint160) (*promise.Promise, error) {
	if err := r.checkSupported(token); err != nil {
		return nil, err
	}

	p := r.ensureRegistered(token, account)
	p.Start(r.sched)
	return p, nil
}

// ensureRegistered builds existence check → allocation request chain, the
// allocation is skipped for registered accounts.
func (r *Relay) ensureRegistered(token, account util.Uint160) *promise.Promise {
	return r.call(promise.StageExistenceCheck, token, ledger.MethodStorageBalanceOf, nil, account).
		Then(func(res promise.Result) promise.Next {
			if res.Err != nil {
				return promise.Fail(fmt.Errorf("check registration of %s: %w", address.Uint160ToString(account), res.Err))
			}
			sb, err := storageBalanceResult(res)
			if err != nil {
				return promise.Fail(err)
			}
			if sb != nil {
				return promise.Done(false)
			}
			return promise.Chain(r.allocate(token, account))
		})
}

// allocate requests default storage allocation for account and records it
// after confirmation.
func (r *Relay) allocate(token, account util.Uint160) *promise.Promise {
	amount := r.cfg.StorageDeposit

	return r.call(promise.StageAllocationRequest, token, ledger.MethodStorageDeposit, &amount, account, true).
		Then(func(res promise.Result) promise.Next {
			if res.Err != nil {
				return promise.Fail(fmt.Errorf("allocate storage for %s: %w", address.Uint160ToString(account), res.Err))
			}

			if err := r.mirror.Put(token, account, ledger.StorageBalance{Total: amount}); err != nil {
				return promise.Fail(err)
			}

			r.log.Debug("account registered",
				zap.Stringer("token", stringer(token)),
				zap.Stringer("account", stringer(account)),
				zap.Stringer("amount", &amount))
			r.emitStorage(EventStorageDeposited, token, account, &amount)
			return promise.Done(true)
		})
}
