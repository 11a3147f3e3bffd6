package relay

import (
	"github.com/holiman/uint256"
	"github.com/nspcc-dev/ftrelay/notify"
	"github.com/nspcc-dev/neo-go/pkg/encoding/address"
	"github.com/nspcc-dev/neo-go/pkg/util"
)

// Relay event names.
const (
	EventTokenAdded            = "token_added"
	EventTokenRemoved          = "token_removed"
	EventTransfer              = "ft_transfer"
	EventStorageDeposited      = "storage_deposited"
	EventStorageWithdrawn      = "storage_withdrawn"
	EventStorageUnregistered   = "storage_unregistered"
	EventGasUpdated            = "gas_updated"
	EventLowBalance            = "low_balance"
	EventStorageDepositUpdated = "storage_deposit_updated"
	EventPaused                = "paused"
	EventUnpaused              = "unpaused"
)

// TokenEvent is a payload of allow-list events.
type TokenEvent struct {
	Token string `json:"token"`
}

// TransferEvent is a payload of the transfer intent event.
type TransferEvent struct {
	Token    string `json:"token"`
	Sender   string `json:"sender"`
	Receiver string `json:"receiver"`
	Amount   string `json:"amount"`
	Memo     string `json:"memo,omitempty"`
}

// StorageEvent is a payload of storage deposit, withdrawal and
// unregistration events. Amount is empty for unregistration.
type StorageEvent struct {
	Token   string `json:"token"`
	Account string `json:"account_id"`
	Amount  string `json:"amount,omitempty"`
}

// GasEvent is a payload of gas_updated event.
type GasEvent struct {
	GasTGas uint64 `json:"gas_tgas"`
}

// BalanceEvent is a payload of low_balance event.
type BalanceEvent struct {
	Balance string `json:"balance"`
}

// StorageDepositEvent is a payload of storage_deposit_updated event.
type StorageDepositEvent struct {
	StorageDeposit string `json:"storage_deposit"`
}

// AdminEvent is a payload of pause events.
type AdminEvent struct {
	Admin string `json:"admin"`
}

func (r *Relay) emit(name string, data any) {
	r.sink.Emit(notify.New(name, data))
}

func (r *Relay) emitStorage(name string, token, account util.Uint160, amount *uint256.Int) {
	ev := StorageEvent{
		Token:   address.Uint160ToString(token),
		Account: address.Uint160ToString(account),
	}
	if amount != nil {
		ev.Amount = amount.Dec()
	}
	r.emit(name, ev)
}
