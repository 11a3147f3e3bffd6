package relay

import (
	"testing"

	"github.com/holiman/uint256"
	"github.com/nspcc-dev/ftrelay/ledger"
	"github.com/nspcc-dev/ftrelay/notify"
	"github.com/nspcc-dev/neo-go/pkg/encoding/address"
	"github.com/nspcc-dev/neo-go/pkg/util"
	"github.com/stretchr/testify/require"
)

func TestAdmin(t *testing.T) {
	e := newTestEnv(t)
	stranger := invocation(bob, 0)
	owner := invocation(admin, 0)

	t.Run("unauthorized", func(t *testing.T) {
		require.ErrorIs(t, e.relay.AddSupportedToken(stranger, tokenM), ErrUnauthorized)
		require.ErrorIs(t, e.relay.RemoveSupportedToken(stranger, tokenL), ErrUnauthorized)
		require.ErrorIs(t, e.relay.SetCrossContractGas(stranger, 1), ErrUnauthorized)
		require.ErrorIs(t, e.relay.SetStorageDeposit(stranger, uint256.NewInt(1)), ErrUnauthorized)
		require.ErrorIs(t, e.relay.Pause(stranger), ErrUnauthorized)
		require.ErrorIs(t, e.relay.Unpause(stranger), ErrUnauthorized)

		require.Equal(t, []util.Uint160{tokenL}, e.relay.SupportedTokens())
		require.EqualValues(t, DefaultCrossContractGas, e.relay.Config().CrossContractGas)
		require.False(t, e.relay.Config().Paused)
		require.Empty(t, e.events.Events())
	})
	t.Run("allow-list", func(t *testing.T) {
		require.NoError(t, e.relay.AddSupportedToken(owner, tokenM))
		require.True(t, e.relay.IsSupported(tokenM))
		require.Equal(t, []util.Uint160{tokenL, tokenM}, e.relay.SupportedTokens())

		require.NoError(t, e.relay.RemoveSupportedToken(owner, tokenM))
		require.False(t, e.relay.IsSupported(tokenM))
		require.ErrorIs(t, e.relay.RemoveSupportedToken(owner, tokenM), ErrTokenNotSupported)

		token := address.Uint160ToString(tokenM)
		require.Equal(t, []notify.Event{
			notify.New(EventTokenAdded, TokenEvent{Token: token}),
			notify.New(EventTokenRemoved, TokenEvent{Token: token}),
		}, e.events.Events())
		e.events.Reset()
	})
	t.Run("gas", func(t *testing.T) {
		require.NoError(t, e.relay.SetCrossContractGas(owner, 50))
		require.EqualValues(t, 50*1_000_000_000_000, e.relay.Config().CrossContractGas)
		require.Equal(t, GasEvent{GasTGas: 50}, e.events.Named(EventGasUpdated)[0].Data)

		require.Error(t, e.relay.SetCrossContractGas(owner, ^uint64(0)))
		require.EqualValues(t, 50*1_000_000_000_000, e.relay.Config().CrossContractGas)
	})
	t.Run("storage deposit", func(t *testing.T) {
		require.NoError(t, e.relay.SetStorageDeposit(owner, uint256.NewInt(80)))
		cfg := e.relay.Config()
		require.Equal(t, uint64(80), cfg.StorageDeposit.Uint64())
		require.Equal(t, StorageDepositEvent{StorageDeposit: "80"},
			e.events.Named(EventStorageDepositUpdated)[0].Data)

		p, err := e.relay.EnsureRegistered(tokenL, carol)
		require.NoError(t, err)
		e.run()
		require.NoError(t, result(t, p).Err)
		require.Equal(t, ledger.NewStorageBalance(80, 0), *e.mirrorOf(carol))
	})
	t.Run("pause", func(t *testing.T) {
		e.events.Reset()

		require.NoError(t, e.relay.Pause(owner))
		require.NoError(t, e.relay.Pause(owner))
		require.True(t, e.relay.Config().Paused)
		require.NoError(t, e.relay.Unpause(owner))
		require.False(t, e.relay.Config().Paused)

		require.Equal(t, []notify.Event{
			notify.New(EventPaused, AdminEvent{Admin: address.Uint160ToString(admin)}),
			notify.New(EventUnpaused, AdminEvent{Admin: address.Uint160ToString(admin)}),
		}, e.events.Events())
	})
}

func TestViews(t *testing.T) {
	e := newTestEnv(t)
	e.register(alice, 50, 0)
	e.ledger.Mint(alice, 42)

	_, err := e.relay.BalanceOf(tokenM, alice)
	require.ErrorIs(t, err, ErrTokenNotSupported)
	_, err = e.relay.StorageBalanceOf(tokenM, alice)
	require.ErrorIs(t, err, ErrTokenNotSupported)
	_, err = e.relay.StorageBalanceBounds(tokenM)
	require.ErrorIs(t, err, ErrTokenNotSupported)

	balance, err := e.relay.BalanceOf(tokenL, alice)
	require.NoError(t, err)
	registered, err := e.relay.StorageBalanceOf(tokenL, alice)
	require.NoError(t, err)
	unregistered, err := e.relay.StorageBalanceOf(tokenL, bob)
	require.NoError(t, err)
	bounds, err := e.relay.StorageBalanceBounds(tokenL)
	require.NoError(t, err)
	e.run()

	require.Equal(t, uint64(42), result(t, balance).Value.(*uint256.Int).Uint64())
	require.Equal(t, ledger.NewStorageBalance(testDeposit, 0), *result(t, registered).Value.(*ledger.StorageBalance))
	require.Nil(t, result(t, unregistered).Value.(*ledger.StorageBalance))

	b := result(t, bounds).Value.(ledger.Bounds)
	require.Equal(t, uint64(testDeposit), b.Min.Uint64())
}
