package common

import (
	"fmt"

	"github.com/holiman/uint256"
	"github.com/nspcc-dev/neo-go/pkg/io"
)

// TGas is the number of gas units in one teragas.
const TGas = 1_000_000_000_000

// ParseAmount parses decimal representation of the native or token amount.
func ParseAmount(s string) (uint256.Int, error) {
	v, err := uint256.FromDecimal(s)
	if err != nil {
		return uint256.Int{}, fmt.Errorf("parse amount %q: %w", s, err)
	}
	return *v, nil
}

// TGasToGas converts teragas to gas units, it fails on overflow.
func TGasToGas(tgas uint64) (uint64, error) {
	if tgas > ^uint64(0)/TGas {
		return 0, fmt.Errorf("gas overflow: %d TGas", tgas)
	}
	return tgas * TGas, nil
}

// WriteAmount writes amount as a fixed 32-byte big-endian word.
func WriteAmount(w *io.BinWriter, a *uint256.Int) {
	b := a.Bytes32()
	w.WriteBytes(b[:])
}

// ReadAmount reads amount written by WriteAmount.
func ReadAmount(r *io.BinReader, a *uint256.Int) {
	var b [32]byte
	r.ReadBytes(b[:])
	a.SetBytes32(b[:])
}
