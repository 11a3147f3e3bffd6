package ledger

import (
	"context"

	"github.com/holiman/uint256"
	"github.com/nspcc-dev/neo-go/pkg/util"
)

// Service is a client of one external ledger. All methods block until the
// ledger answers or ctx is done, so the relay never calls them directly:
// remote calls are performed by the host runtime and delivered back as
// promise results.
type Service interface {
	// Transfer sends amount of relay-owned tokens to the receiver.
	Transfer(ctx context.Context, receiver util.Uint160, amount *uint256.Int, memo string) error

	// BalanceOf returns token balance of the account.
	BalanceOf(ctx context.Context, account util.Uint160) (*uint256.Int, error)

	// StorageBalanceOf returns storage allocation of the account or nil if
	// the account is not registered.
	StorageBalanceOf(ctx context.Context, account util.Uint160) (*StorageBalance, error)

	// StorageBalanceBounds returns allocation limits of the ledger.
	StorageBalanceBounds(ctx context.Context) (Bounds, error)

	// StorageDeposit allocates storage for the account paying deposit from
	// the relay funds. When registrationOnly is set, only the minimal
	// allocation is made.
	StorageDeposit(ctx context.Context, account util.Uint160, registrationOnly bool, deposit *uint256.Int) (StorageBalance, error)
}
