package relay

import (
	"fmt"

	"github.com/holiman/uint256"
	"github.com/nspcc-dev/ftrelay/ledger"
	"github.com/nspcc-dev/ftrelay/promise"
	"github.com/nspcc-dev/neo-go/pkg/encoding/address"
	"github.com/nspcc-dev/neo-go/pkg/util"
)

// Transfer sends amount of ledger tokens to the receiver on behalf of the
// caller. Both parties are registered on the ledger first, the transfer is
// issued only after both registrations complete. Transfer event is emitted
// immediately, it's not a proof of settlement.
func (r *Relay) Transfer(inv Invocation, token, receiver util.Uint160, amount *uint256.Int, memo string) (*promise.Promise, error) {
	if err := r.checkActive(token); err != nil {
		return nil, err
	}
	if amount.IsZero() {
		return nil, ErrAmountTooLow
	}
	if err := r.checkResources(); err != nil {
		return nil, err
	}
	r.credit(inv)

	var (
		sender = inv.Caller
		amt    = *amount
	)

	// Self-transfer needs a single registration.
	registered := r.ensureRegistered(token, sender)
	if !receiver.Equals(sender) {
		registered = promise.Join(registered, r.ensureRegistered(token, receiver))
	}

	p := registered.Then(func(res promise.Result) promise.Next {
		if res.Err != nil {
			return promise.Fail(fmt.Errorf("register transfer parties: %w", res.Err))
		}
		return promise.Chain(r.call(promise.StageTransfer, token, ledger.MethodTransfer, nil, receiver, &amt, memo))
	})

	r.emit(EventTransfer, TransferEvent{
		Token:    address.Uint160ToString(token),
		Sender:   address.Uint160ToString(sender),
		Receiver: address.Uint160ToString(receiver),
		Amount:   amt.Dec(),
		Memo:     memo,
	})

	p.Start(r.sched)
	return p, nil
}

// RequestChainSignature forwards opaque request to the relayer after the
// caller is registered on the ledger.
func (r *Relay) RequestChainSignature(inv Invocation, token util.Uint160, payload []byte) (*promise.Promise, error) {
	if err := r.checkActive(token); err != nil {
		return nil, err
	}
	if err := r.checkResources(); err != nil {
		return nil, err
	}
	r.credit(inv)

	p := r.forward(token, inv.Caller, payload, new(uint256.Int))
	p.Start(r.sched)
	return p, nil
}

// BridgeTransfer forwards bridge request with the attached payment to the
// relayer after the caller is registered on the ledger.
func (r *Relay) BridgeTransfer(inv Invocation, token util.Uint160, amount *uint256.Int, payload []byte) (*promise.Promise, error) {
	if err := r.checkActive(token); err != nil {
		return nil, err
	}
	if amount.IsZero() {
		return nil, ErrAmountTooLow
	}
	if err := r.checkResources(); err != nil {
		return nil, err
	}
	r.credit(inv)

	attached := inv.Attached
	p := r.forward(token, inv.Caller, payload, &attached)
	p.Start(r.sched)
	return p, nil
}

func (r *Relay) forward(token, sender util.Uint160, payload []byte, deposit *uint256.Int) *promise.Promise {
	relayer := r.cfg.Relayer

	return r.ensureRegistered(token, sender).Then(func(res promise.Result) promise.Next {
		if res.Err != nil {
			return promise.Fail(fmt.Errorf("register sender: %w", res.Err))
		}
		return promise.Chain(r.call(promise.StageRelay, relayer, MethodRelayMetaTransaction, deposit, sender, payload))
	})
}
