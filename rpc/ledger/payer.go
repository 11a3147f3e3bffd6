package ledger

import (
	"context"

	"github.com/holiman/uint256"
	"github.com/nspcc-dev/neo-go/pkg/rpcclient/gas"
	"github.com/nspcc-dev/neo-go/pkg/rpcclient/nep17"
	"github.com/nspcc-dev/neo-go/pkg/util"
)

// Payer sends native relay payments as GAS transfers with payment details as
// transfer data.
type Payer struct {
	actor Actor
	gas   *nep17.Token
}

// NewPayer returns Payer sending GAS from the actor's account.
func NewPayer(actor Actor) *Payer {
	return &Payer{actor: actor, gas: gas.New(actor)}
}

// Pay sends amount of GAS to the account and waits for the transaction.
func (p *Payer) Pay(ctx context.Context, to util.Uint160, amount *uint256.Int, details []byte) error {
	h, vub, err := p.gas.Transfer(p.actor.Sender(), to, amount.ToBig(), details)
	return wait(ctx, p.actor, h, vub, err)
}

// Relayer forwards relay requests to a downstream relayer contract.
type Relayer struct {
	actor Actor
	hash  util.Uint160
	gas   *nep17.Token
}

// NewRelayer returns Relayer calling the contract with the given hash.
func NewRelayer(actor Actor, hash util.Uint160) *Relayer {
	return &Relayer{actor: actor, hash: hash, gas: gas.New(actor)}
}

// Relay invokes the relayer method. Requests with attached deposit are sent as
// GAS transfers to the relayer with [method, sender, payload] data.
func (r *Relayer) Relay(ctx context.Context, method string, sender util.Uint160, payload []byte, deposit *uint256.Int) error {
	var (
		h   util.Uint256
		vub uint32
		err error
	)
	if deposit != nil && !deposit.IsZero() {
		h, vub, err = r.gas.Transfer(r.actor.Sender(), r.hash, deposit.ToBig(), []any{method, sender, payload})
	} else {
		h, vub, err = r.actor.SendCall(r.hash, method, sender, payload)
	}

	return wait(ctx, r.actor, h, vub, err)
}
