package mirror

import (
	"testing"

	"github.com/nspcc-dev/ftrelay/ledger"
	"github.com/nspcc-dev/neo-go/pkg/core/storage"
	"github.com/nspcc-dev/neo-go/pkg/util"
	"github.com/stretchr/testify/require"
)

func newMirror(t *testing.T) (*Mirror, *storage.MemCachedStore) {
	st := storage.NewMemCachedStore(storage.NewMemoryStore())
	return New(st), st
}

func TestMirror(t *testing.T) {
	m, _ := newMirror(t)

	var (
		tokenA = util.Uint160{0xa}
		tokenB = util.Uint160{0xb}
		alice  = util.Uint160{1}
		bob    = util.Uint160{2}
	)

	sb, err := m.Get(tokenA, alice)
	require.NoError(t, err)
	require.Nil(t, sb)

	require.NoError(t, m.Put(tokenA, alice, ledger.NewStorageBalance(100, 30)))
	require.NoError(t, m.Put(tokenA, bob, ledger.NewStorageBalance(50, 0)))
	require.NoError(t, m.Put(tokenB, alice, ledger.NewStorageBalance(10, 10)))

	sb, err = m.Get(tokenA, alice)
	require.NoError(t, err)
	require.Equal(t, ledger.NewStorageBalance(100, 30), *sb)

	t.Run("invalid balance", func(t *testing.T) {
		require.ErrorIs(t, m.Put(tokenA, alice, ledger.NewStorageBalance(1, 2)), ledger.ErrInvalidStorageBalance)

		sb, err := m.Get(tokenA, alice)
		require.NoError(t, err)
		require.Equal(t, ledger.NewStorageBalance(100, 30), *sb)
	})

	t.Run("iterate", func(t *testing.T) {
		var all []Record
		require.NoError(t, m.Iterate(nil, func(r Record) bool {
			all = append(all, r)
			return true
		}))
		require.Len(t, all, 3)

		var onA []util.Uint160
		require.NoError(t, m.Iterate(&tokenA, func(r Record) bool {
			require.Equal(t, tokenA, r.Ledger)
			onA = append(onA, r.Account)
			return true
		}))
		require.ElementsMatch(t, []util.Uint160{alice, bob}, onA)

		var n int
		require.NoError(t, m.Iterate(nil, func(Record) bool {
			n++
			return false
		}))
		require.Equal(t, 1, n)
	})

	m.Delete(tokenA, alice)
	m.Delete(tokenA, alice)
	sb, err = m.Get(tokenA, alice)
	require.NoError(t, err)
	require.Nil(t, sb)

	sb, err = m.Get(tokenB, alice)
	require.NoError(t, err)
	require.NotNil(t, sb)
}

func TestCorruptedRecord(t *testing.T) {
	m, st := newMirror(t)
	token, account := util.Uint160{1}, util.Uint160{2}

	st.Put(key(token, account), []byte{1, 2, 3})

	_, err := m.Get(token, account)
	require.Error(t, err)
	require.Error(t, m.Iterate(nil, func(Record) bool { return true }))
}
