/*
Package mirror keeps the relay's local view of storage allocations it has
prepaid on external ledgers.

The mirror is the relay's belief, it is not synchronized with the live state of
the ledgers. Records are created by confirmed allocations, changed by deposits
and withdrawals, and removed on unregistration.

# Storage model

Records are kept in the shared relay store under the key

	's' + ledger hash (BE) + account hash (BE)

with the value being a binary-serialized [ledger.StorageBalance].
*/
package mirror

import (
	"fmt"

	"github.com/nspcc-dev/ftrelay/common"
	"github.com/nspcc-dev/ftrelay/ledger"
	"github.com/nspcc-dev/neo-go/pkg/core/storage"
	"github.com/nspcc-dev/neo-go/pkg/encoding/address"
	"github.com/nspcc-dev/neo-go/pkg/io"
	"github.com/nspcc-dev/neo-go/pkg/util"
)

// Prefix is a storage key prefix of mirror records.
const Prefix = 's'

// Record is a single mirror entry.
type Record struct {
	Ledger  util.Uint160
	Account util.Uint160
	Balance ledger.StorageBalance
}

// Mirror is a (ledger, account) → storage balance map. It's not safe for
// concurrent use, the relay host serializes all accesses.
type Mirror struct {
	st common.Store
}

// New returns Mirror working over st.
func New(st common.Store) *Mirror {
	return &Mirror{st: st}
}

func key(token, account util.Uint160) []byte {
	return common.HashKey(Prefix, token, account)
}

// Get returns the record of account on the ledger. Nil is returned if there
// is none.
func (m *Mirror) Get(token, account util.Uint160) (*ledger.StorageBalance, error) {
	var sb ledger.StorageBalance

	ok, err := common.GetSerialized(m.st, key(token, account), &sb)
	if err != nil {
		return nil, fmt.Errorf("read storage balance of %s: %w", address.Uint160ToString(account), err)
	}
	if !ok {
		return nil, nil
	}
	return &sb, nil
}

// Put saves the record. Balances with available part exceeding the total are
// rejected.
func (m *Mirror) Put(token, account util.Uint160, sb ledger.StorageBalance) error {
	if err := sb.Validate(); err != nil {
		return err
	}
	return common.SetSerialized(m.st, key(token, account), &sb)
}

// Delete removes the record, it's a no-op for missing ones.
func (m *Mirror) Delete(token, account util.Uint160) {
	m.st.Delete(key(token, account))
}

// Iterate calls f for every record, limited to the given ledger if it's not
// nil. Iteration stops when f returns false. Records are visited in key order.
func (m *Mirror) Iterate(token *util.Uint160, f func(Record) bool) error {
	var (
		prefix  = []byte{Prefix}
		iterErr error
	)
	if token != nil {
		prefix = append(prefix, token.BytesBE()...)
	}

	m.st.Seek(storage.SeekRange{Prefix: prefix}, func(k, v []byte) bool {
		body, ok := common.KeyBody(k, []byte{Prefix}, 2*util.Uint160Size)
		if !ok {
			return true
		}

		var rec Record
		rec.Ledger, _ = util.Uint160DecodeBytesBE(body[:util.Uint160Size])
		rec.Account, _ = util.Uint160DecodeBytesBE(body[util.Uint160Size:])

		r := io.NewBinReaderFromBuf(v)
		rec.Balance.DecodeBinary(r)
		if r.Err != nil {
			iterErr = fmt.Errorf("decode record %x: %w", k, r.Err)
			return false
		}
		return f(rec)
	})

	return iterErr
}
