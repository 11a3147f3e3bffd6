package ledger

import (
	"errors"

	"github.com/holiman/uint256"
	"github.com/nspcc-dev/ftrelay/common"
	"github.com/nspcc-dev/neo-go/pkg/io"
)

// Methods of the external ledger used by the relay.
const (
	MethodTransfer             = "ft_transfer"
	MethodBalanceOf            = "ft_balance_of"
	MethodStorageBalanceOf     = "storage_balance_of"
	MethodStorageBalanceBounds = "storage_balance_bounds"
	MethodStorageDeposit       = "storage_deposit"
)

// ErrInvalidStorageBalance is returned for records with available part
// exceeding the total.
var ErrInvalidStorageBalance = errors.New("available storage balance exceeds total")

// StorageBalance is a storage allocation of an account on the external ledger.
type StorageBalance struct {
	// Prepaid amount.
	Total uint256.Int
	// Part of Total that can be withdrawn.
	Available uint256.Int
}

// NewStorageBalance returns StorageBalance with given parts.
func NewStorageBalance(total, available uint64) StorageBalance {
	var b StorageBalance
	b.Total.SetUint64(total)
	b.Available.SetUint64(available)
	return b
}

// Validate checks that available part does not exceed the total.
func (b StorageBalance) Validate() error {
	if b.Available.Gt(&b.Total) {
		return ErrInvalidStorageBalance
	}
	return nil
}

// EncodeBinary implements [io.Serializable].
func (b *StorageBalance) EncodeBinary(w *io.BinWriter) {
	common.WriteAmount(w, &b.Total)
	common.WriteAmount(w, &b.Available)
}

// DecodeBinary implements [io.Serializable].
func (b *StorageBalance) DecodeBinary(r *io.BinReader) {
	common.ReadAmount(r, &b.Total)
	common.ReadAmount(r, &b.Available)
	if r.Err == nil {
		r.Err = b.Validate()
	}
}

// Bounds are storage allocation limits of the external ledger.
type Bounds struct {
	Min uint256.Int
	// Zero means no upper limit.
	Max uint256.Int
}
