package relay

import (
	"fmt"

	"github.com/holiman/uint256"
	"github.com/nspcc-dev/ftrelay/common"
	"github.com/nspcc-dev/neo-go/pkg/encoding/address"
	"github.com/nspcc-dev/neo-go/pkg/util"
	"go.uber.org/zap"
)

// AddSupportedToken adds the ledger to the allow-list.
func (r *Relay) AddSupportedToken(inv Invocation, token util.Uint160) error {
	if err := r.checkAdmin(inv); err != nil {
		return err
	}

	r.st.Put(common.HashKey(tokenPrefix, token), []byte{1})
	r.log.Info("token added", zap.Stringer("token", stringer(token)))
	r.emit(EventTokenAdded, TokenEvent{Token: address.Uint160ToString(token)})
	return nil
}

// RemoveSupportedToken removes the ledger from the allow-list. Mirror records
// of the ledger are kept.
func (r *Relay) RemoveSupportedToken(inv Invocation, token util.Uint160) error {
	if err := r.checkAdmin(inv); err != nil {
		return err
	}
	if err := r.checkSupported(token); err != nil {
		return err
	}

	r.st.Delete(common.HashKey(tokenPrefix, token))
	r.log.Info("token removed", zap.Stringer("token", stringer(token)))
	r.emit(EventTokenRemoved, TokenEvent{Token: address.Uint160ToString(token)})
	return nil
}

// SetCrossContractGas sets gas budget of remote calls in TGas.
func (r *Relay) SetCrossContractGas(inv Invocation, tgas uint64) error {
	if err := r.checkAdmin(inv); err != nil {
		return err
	}
	gas, err := common.TGasToGas(tgas)
	if err != nil {
		return err
	}

	prev := r.cfg.CrossContractGas
	r.cfg.CrossContractGas = gas
	if err := r.saveConfig(); err != nil {
		r.cfg.CrossContractGas = prev
		return fmt.Errorf("save config: %w", err)
	}

	r.emit(EventGasUpdated, GasEvent{GasTGas: tgas})
	return nil
}

// SetStorageDeposit sets the amount paid for a single storage allocation.
func (r *Relay) SetStorageDeposit(inv Invocation, amount *uint256.Int) error {
	if err := r.checkAdmin(inv); err != nil {
		return err
	}

	prev := r.cfg.StorageDeposit
	r.cfg.StorageDeposit = *amount
	if err := r.saveConfig(); err != nil {
		r.cfg.StorageDeposit = prev
		return fmt.Errorf("save config: %w", err)
	}

	r.emit(EventStorageDepositUpdated, StorageDepositEvent{StorageDeposit: amount.Dec()})
	return nil
}

// Pause stops all mutating operations until Unpause.
func (r *Relay) Pause(inv Invocation) error {
	return r.setPaused(inv, true)
}

// Unpause resumes paused relay.
func (r *Relay) Unpause(inv Invocation) error {
	return r.setPaused(inv, false)
}

func (r *Relay) setPaused(inv Invocation, paused bool) error {
	if err := r.checkAdmin(inv); err != nil {
		return err
	}
	if r.cfg.Paused == paused {
		return nil
	}

	r.cfg.Paused = paused
	if err := r.saveConfig(); err != nil {
		r.cfg.Paused = !paused
		return fmt.Errorf("save config: %w", err)
	}

	ev := EventUnpaused
	if paused {
		ev = EventPaused
	}
	r.log.Info("relay state changed", zap.Bool("paused", paused), zap.Stringer("admin", stringer(inv.Caller)))
	r.emit(ev, AdminEvent{Admin: address.Uint160ToString(inv.Caller)})
	return nil
}
