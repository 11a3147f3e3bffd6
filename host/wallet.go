package host

import (
	"errors"
	"fmt"
	"sync"

	"github.com/holiman/uint256"
)

// ErrInsufficientFunds is returned when wallet can't cover a payment.
var ErrInsufficientFunds = errors.New("insufficient relay funds")

// Wallet is the relay's spendable native balance. It's safe for concurrent
// use.
type Wallet struct {
	mu      sync.Mutex
	balance uint256.Int
}

// NewWallet returns Wallet holding initial amount.
func NewWallet(initial *uint256.Int) *Wallet {
	w := new(Wallet)
	if initial != nil {
		w.balance.Set(initial)
	}
	return w
}

// Balance returns current balance.
func (w *Wallet) Balance() uint256.Int {
	w.mu.Lock()
	defer w.mu.Unlock()
	return w.balance
}

// Credit adds amount to the balance.
func (w *Wallet) Credit(amount uint256.Int) {
	w.mu.Lock()
	w.balance.Add(&w.balance, &amount)
	w.mu.Unlock()
}

// Debit takes amount from the balance.
func (w *Wallet) Debit(amount uint256.Int) error {
	w.mu.Lock()
	defer w.mu.Unlock()

	if w.balance.Lt(&amount) {
		return fmt.Errorf("%w: %s needed, %s available", ErrInsufficientFunds, amount.Dec(), w.balance.Dec())
	}
	w.balance.Sub(&w.balance, &amount)
	return nil
}
