package host

import (
	"context"
	"errors"
	"fmt"
	"sync"

	"github.com/holiman/uint256"
	"github.com/nspcc-dev/ftrelay/ledger"
	"github.com/nspcc-dev/ftrelay/promise"
	"github.com/nspcc-dev/neo-go/pkg/encoding/address"
	"github.com/nspcc-dev/neo-go/pkg/util"
)

var (
	// ErrUnknownTarget is returned for calls to unregistered parties.
	ErrUnknownTarget = errors.New("unknown call target")
	// ErrUnknownMethod is returned for ledger methods the relay doesn't use.
	ErrUnknownMethod = errors.New("unknown method")
	// ErrInvalidArgs is returned when call arguments don't match the method.
	ErrInvalidArgs = errors.New("invalid call arguments")
)

// Invoker performs remote calls.
type Invoker interface {
	Invoke(ctx context.Context, c promise.Call) promise.Result
}

// Relayer is a downstream relayer accepting forwarded requests.
type Relayer interface {
	Relay(ctx context.Context, method string, sender util.Uint160, payload []byte, deposit *uint256.Int) error
}

// Payer sends native payments.
type Payer interface {
	Pay(ctx context.Context, to util.Uint160, amount *uint256.Int, details []byte) error
}

// Directory routes function calls to ledgers and relayers by target hash and
// payments to the payer.
type Directory struct {
	ledgers  map[util.Uint160]ledger.Service
	relayers map[util.Uint160]Relayer
	payer    Payer
}

// NewDirectory returns empty Directory. Payments fail if payer is nil.
func NewDirectory(payer Payer) *Directory {
	return &Directory{
		ledgers:  make(map[util.Uint160]ledger.Service),
		relayers: make(map[util.Uint160]Relayer),
		payer:    payer,
	}
}

// AddLedger routes calls to h to the ledger service.
func (d *Directory) AddLedger(h util.Uint160, svc ledger.Service) {
	d.ledgers[h] = svc
}

// AddRelayer routes calls to h to the relayer.
func (d *Directory) AddRelayer(h util.Uint160, r Relayer) {
	d.relayers[h] = r
}

// Invoke implements Invoker.
func (d *Directory) Invoke(ctx context.Context, c promise.Call) promise.Result {
	if c.Kind == promise.Payment {
		return promise.Result{Err: d.pay(ctx, c)}
	}

	if svc, ok := d.ledgers[c.Target]; ok {
		v, err := invokeLedger(ctx, svc, c)
		return promise.Result{Value: v, Err: err}
	}
	if r, ok := d.relayers[c.Target]; ok {
		sender, err := arg[util.Uint160](c.Args, 0)
		if err != nil {
			return promise.Result{Err: err}
		}
		payload, err := arg[[]byte](c.Args, 1)
		if err != nil {
			return promise.Result{Err: err}
		}
		return promise.Result{Err: r.Relay(ctx, c.Method, sender, payload, &c.Deposit)}
	}

	return promise.Result{Err: fmt.Errorf("%w: %s", ErrUnknownTarget, address.Uint160ToString(c.Target))}
}

func (d *Directory) pay(ctx context.Context, c promise.Call) error {
	if d.payer == nil {
		return errors.New("payer is not configured")
	}
	var details []byte
	if len(c.Args) > 0 {
		var err error
		if details, err = arg[[]byte](c.Args, 0); err != nil {
			return err
		}
	}
	return d.payer.Pay(ctx, c.Target, &c.Deposit, details)
}

func invokeLedger(ctx context.Context, svc ledger.Service, c promise.Call) (any, error) {
	switch c.Method {
	case ledger.MethodStorageBalanceOf:
		account, err := arg[util.Uint160](c.Args, 0)
		if err != nil {
			return nil, err
		}
		return svc.StorageBalanceOf(ctx, account)
	case ledger.MethodBalanceOf:
		account, err := arg[util.Uint160](c.Args, 0)
		if err != nil {
			return nil, err
		}
		return svc.BalanceOf(ctx, account)
	case ledger.MethodStorageBalanceBounds:
		return svc.StorageBalanceBounds(ctx)
	case ledger.MethodStorageDeposit:
		account, err := arg[util.Uint160](c.Args, 0)
		if err != nil {
			return nil, err
		}
		registrationOnly, err := arg[bool](c.Args, 1)
		if err != nil {
			return nil, err
		}
		return svc.StorageDeposit(ctx, account, registrationOnly, &c.Deposit)
	case ledger.MethodTransfer:
		receiver, err := arg[util.Uint160](c.Args, 0)
		if err != nil {
			return nil, err
		}
		amount, err := arg[*uint256.Int](c.Args, 1)
		if err != nil {
			return nil, err
		}
		memo, err := arg[string](c.Args, 2)
		if err != nil {
			return nil, err
		}
		return nil, svc.Transfer(ctx, receiver, amount, memo)
	default:
		return nil, fmt.Errorf("%w: %s", ErrUnknownMethod, c.Method)
	}
}

func arg[T any](args []any, i int) (T, error) {
	var zero T
	if i >= len(args) {
		return zero, fmt.Errorf("%w: missing argument #%d", ErrInvalidArgs, i)
	}
	v, ok := args[i].(T)
	if !ok {
		return zero, fmt.Errorf("%w: argument #%d is %T, expected %T", ErrInvalidArgs, i, args[i], zero)
	}
	return v, nil
}

// Payment is a native payment recorded by Payments.
type Payment struct {
	To      util.Uint160
	Amount  uint256.Int
	Details []byte
}

// Payments is a Payer recording all payments without sending them anywhere.
type Payments struct {
	mu   sync.Mutex
	list []Payment
}

// Pay implements Payer.
func (p *Payments) Pay(_ context.Context, to util.Uint160, amount *uint256.Int, details []byte) error {
	p.mu.Lock()
	p.list = append(p.list, Payment{To: to, Amount: *amount, Details: details})
	p.mu.Unlock()
	return nil
}

// List returns recorded payments.
func (p *Payments) List() []Payment {
	p.mu.Lock()
	defer p.mu.Unlock()
	return append([]Payment(nil), p.list...)
}
