package common

import (
	"testing"

	"github.com/holiman/uint256"
	"github.com/nspcc-dev/neo-go/pkg/core/storage"
	"github.com/nspcc-dev/neo-go/pkg/io"
	"github.com/nspcc-dev/neo-go/pkg/util"
	"github.com/stretchr/testify/require"
)

type testValue struct {
	a uint32
	s string
}

func (v *testValue) EncodeBinary(w *io.BinWriter) {
	w.WriteU32LE(v.a)
	w.WriteString(v.s)
}

func (v *testValue) DecodeBinary(r *io.BinReader) {
	v.a = r.ReadU32LE()
	v.s = r.ReadString()
}

func newStore() *storage.MemCachedStore {
	return storage.NewMemCachedStore(storage.NewMemoryStore())
}

func TestSerialized(t *testing.T) {
	st := newStore()

	var v testValue
	ok, err := GetSerialized(st, []byte{1}, &v)
	require.NoError(t, err)
	require.False(t, ok)

	require.NoError(t, SetSerialized(st, []byte{1}, &testValue{a: 42, s: "relay"}))

	ok, err = GetSerialized(st, []byte{1}, &v)
	require.NoError(t, err)
	require.True(t, ok)
	require.Equal(t, testValue{a: 42, s: "relay"}, v)

	st.Put([]byte{2}, []byte{1, 2})
	_, err = GetSerialized(st, []byte{2}, &v)
	require.Error(t, err)
}

func TestGetList(t *testing.T) {
	st := newStore()
	hashes := []util.Uint160{{1}, {2}, {3}}
	for _, h := range hashes {
		st.Put(HashKey('t', h), []byte{1})
	}
	st.Put(HashKey('a', util.Uint160{9}), []byte{1})
	st.Put([]byte{'t', 1, 2}, []byte{1})

	require.ElementsMatch(t, hashes, GetList(st, 't'))
	require.Equal(t, []util.Uint160{{9}}, GetList(st, 'a'))
	require.Empty(t, GetList(st, 'x'))
}

func TestCheckVersion(t *testing.T) {
	require.ErrorIs(t, CheckVersion(PrevVersion-1), ErrVersionMismatch)
	require.ErrorIs(t, CheckVersion(Version), ErrAlreadyUpdated)
	require.ErrorIs(t, CheckVersion(Version+1), ErrVersionMismatch)
	require.NoError(t, CheckVersion(PrevVersion))

	v, err := DecodeVersion(EncodeVersion(Version))
	require.NoError(t, err)
	require.Equal(t, Version, v)
	require.Equal(t, "0.2.0", VersionString(Version))

	_, err = DecodeVersion([]byte{1})
	require.Error(t, err)
}

func TestTransferDetails(t *testing.T) {
	token := util.Uint160{1, 2, 3}
	for _, tc := range []struct {
		details []byte
		kind    DetailsKind
	}{
		{RefundTransferDetails(token), RefundDetails},
		{WithdrawTransferDetails(token), WithdrawDetails},
		{UnregisterTransferDetails(token), UnregisterDetails},
	} {
		t.Run(tc.kind.String(), func(t *testing.T) {
			kind, h, err := ParseTransferDetails(tc.details)
			require.NoError(t, err)
			require.Equal(t, tc.kind, kind)
			require.Equal(t, token, h)
		})
	}

	_, _, err := ParseTransferDetails([]byte{0x01})
	require.ErrorIs(t, err, ErrInvalidDetails)

	_, _, err = ParseTransferDetails(append([]byte{0x7f}, token.BytesBE()...))
	require.ErrorIs(t, err, ErrInvalidDetails)
}

func TestAmount(t *testing.T) {
	a, err := ParseAmount("10000000000000000000000000")
	require.NoError(t, err)
	require.Equal(t, "10000000000000000000000000", a.Dec())
	require.True(t, a.Gt(uint256.NewInt(^uint64(0))))

	_, err = ParseAmount("-1")
	require.Error(t, err)

	g, err := TGasToGas(100)
	require.NoError(t, err)
	require.EqualValues(t, 100*TGas, g)

	_, err = TGasToGas(^uint64(0))
	require.Error(t, err)
}
