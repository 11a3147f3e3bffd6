package relay

import (
	"bytes"
	"errors"
	"fmt"
	"slices"

	"github.com/holiman/uint256"
	"github.com/nspcc-dev/ftrelay/common"
	"github.com/nspcc-dev/ftrelay/ledger"
	"github.com/nspcc-dev/ftrelay/mirror"
	"github.com/nspcc-dev/ftrelay/notify"
	"github.com/nspcc-dev/ftrelay/promise"
	"github.com/nspcc-dev/neo-go/pkg/encoding/address"
	"github.com/nspcc-dev/neo-go/pkg/util"
	"go.uber.org/zap"
)

const (
	// ProofOfIntent is the payment required by withdrawal and unregistration.
	ProofOfIntent = 1

	// DefaultCrossContractGas is the default gas budget of remote calls.
	DefaultCrossContractGas = 100 * common.TGas

	// MethodRelayMetaTransaction is the relayer method receiving forwarded
	// requests.
	MethodRelayMetaTransaction = "relay_meta_transaction"
)

// DefaultMinBalance returns default treasury balance threshold, 10·10^24.
func DefaultMinBalance() *uint256.Int {
	return new(uint256.Int).Mul(uint256.NewInt(10), new(uint256.Int).Exp(uint256.NewInt(10), uint256.NewInt(24)))
}

// Treasury is the relay's own native balance. Attached payments are credited
// to it, the host debits it for issued deposits and payments.
type Treasury interface {
	Balance() uint256.Int
	Credit(uint256.Int)
}

// Invocation describes the caller of an operation.
type Invocation struct {
	Caller util.Uint160
	// Native payment attached to the call.
	Attached uint256.Int
}

// Prm groups relay parameters.
type Prm struct {
	// Optional, nop logger is used if nil.
	Logger *zap.Logger
	// Initialized relay state, see Init.
	Store     common.Store
	Scheduler promise.Scheduler
	// Optional, events are dropped if nil.
	Sink     notify.Sink
	Treasury Treasury
}

// Relay is the relay core. It's not safe for concurrent use: all operations
// and remote call callbacks are serialized by the host.
type Relay struct {
	log      *zap.Logger
	st       common.Store
	mirror   *mirror.Mirror
	sched    promise.Scheduler
	sink     notify.Sink
	treasury Treasury

	cfg Config

	// Unregistrations waiting for the balance check, by handle.
	pending map[string]*promise.Promise
}

// New opens relay state stored in prm.Store.
func New(prm Prm) (*Relay, error) {
	switch {
	case prm.Store == nil:
		return nil, errors.New("missing store")
	case prm.Scheduler == nil:
		return nil, errors.New("missing scheduler")
	case prm.Treasury == nil:
		return nil, errors.New("missing treasury")
	}

	if err := checkState(prm.Store); err != nil {
		return nil, err
	}

	r := &Relay{
		log:      prm.Logger,
		st:       prm.Store,
		mirror:   mirror.New(prm.Store),
		sched:    prm.Scheduler,
		sink:     prm.Sink,
		treasury: prm.Treasury,
		pending:  make(map[string]*promise.Promise),
	}
	if r.log == nil {
		r.log = zap.NewNop()
	}
	if r.sink == nil {
		r.sink = notify.SinkFunc(func(notify.Event) {})
	}

	ok, err := common.GetSerialized(r.st, configKey, &r.cfg)
	if err != nil {
		return nil, fmt.Errorf("read config: %w", err)
	}
	if !ok {
		return nil, ErrNotInitialized
	}

	return r, nil
}

// Config returns current relay parameters.
func (r *Relay) Config() Config { return r.cfg }

// Mirror returns the mirror of storage allocations.
func (r *Relay) Mirror() *mirror.Mirror { return r.mirror }

// IsAdmin checks whether account is a relay admin.
func (r *Relay) IsAdmin(account util.Uint160) bool {
	return has(r.st, common.HashKey(adminPrefix, account))
}

// IsSupported checks whether the ledger is allow-listed.
func (r *Relay) IsSupported(token util.Uint160) bool {
	return has(r.st, common.HashKey(tokenPrefix, token))
}

// SupportedTokens returns sorted allow-list.
func (r *Relay) SupportedTokens() []util.Uint160 {
	res := common.GetList(r.st, tokenPrefix)
	slices.SortFunc(res, compareHashes)
	return res
}

// Admins returns sorted admin set.
func (r *Relay) Admins() []util.Uint160 {
	res := common.GetList(r.st, adminPrefix)
	slices.SortFunc(res, compareHashes)
	return res
}

func (r *Relay) checkAdmin(inv Invocation) error {
	if !r.IsAdmin(inv.Caller) {
		return fmt.Errorf("%w: %s", ErrUnauthorized, address.Uint160ToString(inv.Caller))
	}
	return nil
}

func (r *Relay) checkNotPaused() error {
	if r.cfg.Paused {
		return ErrContractPaused
	}
	return nil
}

func (r *Relay) checkSupported(token util.Uint160) error {
	if !r.IsSupported(token) {
		return fmt.Errorf("%w: %s", ErrTokenNotSupported, address.Uint160ToString(token))
	}
	return nil
}

// checkActive is a common guard of mutating operations.
func (r *Relay) checkActive(token util.Uint160) error {
	if err := r.checkNotPaused(); err != nil {
		return err
	}
	return r.checkSupported(token)
}

func checkProofOfIntent(inv Invocation) error {
	if !inv.Attached.Eq(uint256.NewInt(ProofOfIntent)) {
		return fmt.Errorf("%w: %s attached, %d expected", ErrInvalidDeposit, inv.Attached.Dec(), ProofOfIntent)
	}
	return nil
}

// checkResources rejects operations funded by the relay when its treasury is
// below the minimum balance.
func (r *Relay) checkResources() error {
	bal := r.treasury.Balance()
	if bal.Lt(&r.cfg.MinBalance) {
		r.log.Warn("relay balance is below the minimum",
			zap.Stringer("balance", &bal),
			zap.Stringer("min", &r.cfg.MinBalance))
		r.emit(EventLowBalance, BalanceEvent{Balance: bal.Dec()})
		return ErrLowResource
	}
	return nil
}

func (r *Relay) credit(inv Invocation) {
	if !inv.Attached.IsZero() {
		r.treasury.Credit(inv.Attached)
	}
}

// call returns a function call promise with configured gas budget.
func (r *Relay) call(stage promise.Stage, target util.Uint160, method string, deposit *uint256.Int, args ...any) *promise.Promise {
	c := promise.Call{
		Stage:  stage,
		Kind:   promise.FunctionCall,
		Target: target,
		Method: method,
		Args:   args,
		Gas:    r.cfg.CrossContractGas,
	}
	if deposit != nil {
		c.Deposit = *deposit
	}
	return promise.New(c)
}

// pay issues a native payment to the account.
func (r *Relay) pay(account util.Uint160, amount *uint256.Int, details []byte) *promise.Promise {
	p := promise.New(promise.Call{
		Stage:   promise.StageRefund,
		Kind:    promise.Payment,
		Target:  account,
		Args:    []any{details},
		Deposit: *amount,
	})
	p.OnResolve(func(res promise.Result) {
		if res.Err != nil {
			r.log.Error("payment failed",
				zap.Stringer("account", stringer(account)),
				zap.Stringer("amount", amount),
				zap.Error(res.Err))
		}
	})
	p.Start(r.sched)
	return p
}

func compareHashes(a, b util.Uint160) int {
	return bytes.Compare(a.BytesBE(), b.BytesBE())
}

type stringer util.Uint160

func (s stringer) String() string { return address.Uint160ToString(util.Uint160(s)) }

func storageBalanceResult(res promise.Result) (*ledger.StorageBalance, error) {
	sb, ok := res.Value.(*ledger.StorageBalance)
	if !ok && res.Value != nil {
		return nil, fmt.Errorf("%w: %T", ErrUnexpectedResult, res.Value)
	}
	return sb, nil
}
