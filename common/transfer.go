package common

import (
	"errors"
	"fmt"

	"github.com/nspcc-dev/neo-go/pkg/util"
)

// DetailsKind is a reason of the native payment made by the relay.
type DetailsKind byte

const (
	// RefundDetails marks returned attached payment.
	RefundDetails DetailsKind = 0x01
	// WithdrawDetails marks withdrawn available storage balance.
	WithdrawDetails DetailsKind = 0x02
	// UnregisterDetails marks storage total returned after unregistration.
	UnregisterDetails DetailsKind = 0x03
)

// ErrInvalidDetails is returned when payment details can't be parsed.
var ErrInvalidDetails = errors.New("invalid transfer details")

func (k DetailsKind) String() string {
	switch k {
	case RefundDetails:
		return "refund"
	case WithdrawDetails:
		return "withdraw"
	case UnregisterDetails:
		return "unregister"
	default:
		return fmt.Sprintf("unknown(%d)", byte(k))
	}
}

func transferDetails(kind DetailsKind, token util.Uint160) []byte {
	return append([]byte{byte(kind)}, token.BytesBE()...)
}

// RefundTransferDetails returns details of the attached payment refund.
func RefundTransferDetails(token util.Uint160) []byte {
	return transferDetails(RefundDetails, token)
}

// WithdrawTransferDetails returns details of the storage withdrawal on token.
func WithdrawTransferDetails(token util.Uint160) []byte {
	return transferDetails(WithdrawDetails, token)
}

// UnregisterTransferDetails returns details of the storage refund after
// unregistration from token.
func UnregisterTransferDetails(token util.Uint160) []byte {
	return transferDetails(UnregisterDetails, token)
}

// ParseTransferDetails splits details made by one of *TransferDetails functions.
func ParseTransferDetails(details []byte) (DetailsKind, util.Uint160, error) {
	if len(details) != 1+util.Uint160Size {
		return 0, util.Uint160{}, fmt.Errorf("%w: length %d", ErrInvalidDetails, len(details))
	}

	kind := DetailsKind(details[0])
	switch kind {
	case RefundDetails, WithdrawDetails, UnregisterDetails:
	default:
		return 0, util.Uint160{}, fmt.Errorf("%w: kind %d", ErrInvalidDetails, details[0])
	}

	token, err := util.Uint160DecodeBytesBE(details[1:])
	if err != nil {
		return 0, util.Uint160{}, fmt.Errorf("%w: %w", ErrInvalidDetails, err)
	}
	return kind, token, nil
}
