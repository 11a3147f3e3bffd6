package relay

import (
	"errors"
	"fmt"

	"github.com/holiman/uint256"
	"github.com/nspcc-dev/ftrelay/common"
	"github.com/nspcc-dev/neo-go/pkg/core/storage"
	"github.com/nspcc-dev/neo-go/pkg/io"
	"github.com/nspcc-dev/neo-go/pkg/util"
)

const (
	adminPrefix = 'a'
	tokenPrefix = 't'
)

var (
	configKey  = []byte{'c'}
	versionKey = []byte{'v'}
)

// Config is a set of relay parameters mutable by admins.
type Config struct {
	// Downstream relayer receiving forwarded requests.
	Relayer util.Uint160
	// Amount paid for a single storage allocation.
	StorageDeposit uint256.Int
	// Gas budget of each remote call.
	CrossContractGas uint64
	// Treasury balance required for operations funded by the relay.
	MinBalance uint256.Int
	Paused     bool
}

// EncodeBinary implements [io.Serializable].
func (c *Config) EncodeBinary(w *io.BinWriter) {
	w.WriteBytes(c.Relayer[:])
	common.WriteAmount(w, &c.StorageDeposit)
	w.WriteU64LE(c.CrossContractGas)
	common.WriteAmount(w, &c.MinBalance)
	w.WriteBool(c.Paused)
}

// DecodeBinary implements [io.Serializable].
func (c *Config) DecodeBinary(r *io.BinReader) {
	r.ReadBytes(c.Relayer[:])
	common.ReadAmount(r, &c.StorageDeposit)
	c.CrossContractGas = r.ReadU64LE()
	common.ReadAmount(r, &c.MinBalance)
	c.Paused = r.ReadBool()
}

// InitPrm groups Init parameters.
type InitPrm struct {
	Admins         []util.Uint160
	Relayer        util.Uint160
	StorageDeposit uint256.Int

	// Optional, DefaultCrossContractGas is used if zero.
	CrossContractGas uint64
	// Optional, DefaultMinBalance is used if nil.
	MinBalance *uint256.Int
	// Optional initial allow-list.
	Tokens []util.Uint160
}

// Init writes initial relay state into the empty store.
func Init(st common.Store, prm InitPrm) error {
	_, err := st.Get(versionKey)
	if err == nil {
		return ErrAlreadyInitialized
	}
	if !errors.Is(err, storage.ErrKeyNotFound) {
		return fmt.Errorf("read state version: %w", err)
	}
	if len(prm.Admins) == 0 {
		return errors.New("at least one admin is required")
	}

	cfg := Config{
		Relayer:          prm.Relayer,
		StorageDeposit:   prm.StorageDeposit,
		CrossContractGas: prm.CrossContractGas,
	}
	if cfg.CrossContractGas == 0 {
		cfg.CrossContractGas = DefaultCrossContractGas
	}
	if prm.MinBalance != nil {
		cfg.MinBalance = *prm.MinBalance
	} else {
		cfg.MinBalance = *DefaultMinBalance()
	}

	for _, a := range prm.Admins {
		st.Put(common.HashKey(adminPrefix, a), []byte{1})
	}
	for _, t := range prm.Tokens {
		st.Put(common.HashKey(tokenPrefix, t), []byte{1})
	}
	if err := common.SetSerialized(st, configKey, &cfg); err != nil {
		return err
	}
	st.Put(versionKey, common.EncodeVersion(common.Version))

	return nil
}

// checkState reads stored schema version and upgrades it if it's supported.
func checkState(st common.Store) error {
	data, err := st.Get(versionKey)
	if err != nil {
		if errors.Is(err, storage.ErrKeyNotFound) {
			return ErrNotInitialized
		}
		return fmt.Errorf("read state version: %w", err)
	}

	v, err := common.DecodeVersion(data)
	if err != nil {
		return err
	}
	if v == common.Version {
		return nil
	}
	if err := common.CheckVersion(v); err != nil {
		return err
	}
	st.Put(versionKey, common.EncodeVersion(common.Version))
	return nil
}

func has(st common.Store, key []byte) bool {
	_, err := st.Get(key)
	return err == nil
}

func (r *Relay) saveConfig() error {
	return common.SetSerialized(r.st, configKey, &r.cfg)
}
