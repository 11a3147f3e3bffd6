package common

import (
	"bytes"
	"errors"
	"fmt"

	"github.com/nspcc-dev/neo-go/pkg/core/storage"
	"github.com/nspcc-dev/neo-go/pkg/io"
	"github.com/nspcc-dev/neo-go/pkg/util"
)

// Store is a key-value storage of the relay state. It is satisfied by
// storage.MemCachedStore, persisting cached changes into the backing DB is
// up to the store owner.
type Store interface {
	Get(key []byte) ([]byte, error)
	Put(key, value []byte)
	Delete(key []byte)
	Seek(rng storage.SeekRange, f func(k, v []byte) bool)
}

// GetSerialized reads value stored by key. It returns false if there is no
// such key.
func GetSerialized(st Store, key []byte, value io.Serializable) (bool, error) {
	data, err := st.Get(key)
	if err != nil {
		if errors.Is(err, storage.ErrKeyNotFound) {
			return false, nil
		}
		return false, fmt.Errorf("get %x: %w", key, err)
	}

	r := io.NewBinReaderFromBuf(data)
	value.DecodeBinary(r)
	if r.Err != nil {
		return false, fmt.Errorf("deserialize %x: %w", key, r.Err)
	}

	return true, nil
}

// SetSerialized serializes value and puts it into the store.
func SetSerialized(st Store, key []byte, value io.Serializable) error {
	w := io.NewBufBinWriter()
	value.EncodeBinary(w.BinWriter)
	if w.Err != nil {
		return fmt.Errorf("serialize %x: %w", key, w.Err)
	}

	st.Put(key, w.Bytes())
	return nil
}

// GetList returns all hashes stored as keys under the given prefix.
func GetList(st Store, prefix byte) []util.Uint160 {
	var (
		res []util.Uint160
		p   = []byte{prefix}
	)

	st.Seek(storage.SeekRange{Prefix: p}, func(k, _ []byte) bool {
		body, ok := KeyBody(k, p, util.Uint160Size)
		if !ok {
			return true
		}
		h, err := util.Uint160DecodeBytesBE(body)
		if err == nil {
			res = append(res, h)
		}
		return true
	})

	return res
}

// KeyBody cuts prefix off the key found by Seek and checks the length of
// the rest. Keys without prefix are accepted as is.
func KeyBody(k, prefix []byte, size int) ([]byte, bool) {
	if len(k) == len(prefix)+size && bytes.HasPrefix(k, prefix) {
		return k[len(prefix):], true
	}
	return k, len(k) == size
}

// HashKey returns storage key made of the prefix and given hashes.
func HashKey(prefix byte, hashes ...util.Uint160) []byte {
	key := make([]byte, 0, 1+len(hashes)*util.Uint160Size)
	key = append(key, prefix)
	for i := range hashes {
		key = append(key, hashes[i].BytesBE()...)
	}
	return key
}
