// Package config contains relay configuration.
//
// Configuration is read from a YAML file, then overridden by environment
// variables prefixed with FTRELAY_, for example FTRELAY_RELAY_ADMINS or
// FTRELAY_RPC_ENDPOINT.
package config

import (
	"bytes"
	"errors"
	"fmt"
	"io"
	"os"
	"time"

	"github.com/caarlos0/env/v11"
	"github.com/holiman/uint256"
	"github.com/nspcc-dev/ftrelay/common"
	"github.com/nspcc-dev/ftrelay/relay"
	"github.com/nspcc-dev/neo-go/pkg/core/storage/dbconfig"
	"github.com/nspcc-dev/neo-go/pkg/encoding/address"
	"github.com/nspcc-dev/neo-go/pkg/util"
	"go.uber.org/zap"
	"gopkg.in/yaml.v3"
)

// EnvPrefix is a common prefix of environment variables.
const EnvPrefix = "FTRELAY_"

// Default values.
const (
	DefaultCrossContractGasTGas = 100
	DefaultDialTimeout          = 10 * time.Second
	DefaultRequestTimeout       = 10 * time.Second
	DefaultLogLevel             = "info"
	DefaultLogEncoding          = "console"
)

// Config is the relay configuration.
type Config struct {
	Relay   Relay   `yaml:"Relay" envPrefix:"RELAY_"`
	Storage Storage `yaml:"Storage" envPrefix:"STORAGE_"`
	RPC     RPC     `yaml:"RPC" envPrefix:"RPC_"`
	Logger  Logger  `yaml:"Logger" envPrefix:"LOGGER_"`
	Journal Journal `yaml:"Journal" envPrefix:"JOURNAL_"`
	Metrics Metrics `yaml:"Metrics" envPrefix:"METRICS_"`
	Tracing Tracing `yaml:"Tracing" envPrefix:"TRACING_"`
}

// Relay contains initial relay parameters.
type Relay struct {
	// Neo addresses of admins.
	Admins []string `yaml:"Admins" env:"ADMINS"`
	// Neo address of the downstream relayer.
	Relayer string `yaml:"Relayer" env:"RELAYER"`
	// Initially supported ledger addresses.
	Tokens []string `yaml:"Tokens" env:"TOKENS"`
	// Decimal amount paid for a single allocation.
	StorageDeposit       string `yaml:"StorageDeposit" env:"STORAGE_DEPOSIT"`
	CrossContractGasTGas uint64 `yaml:"CrossContractGasTGas" env:"CROSS_CONTRACT_GAS_TGAS"`
	// Optional decimal treasury threshold.
	MinBalance string `yaml:"MinBalance" env:"MIN_BALANCE"`
}

// Storage is a relay state storage.
type Storage struct {
	// One of inmemory, boltdb or leveldb.
	Type string `yaml:"Type" env:"TYPE"`
	// File (boltdb) or directory (leveldb) path.
	Path string `yaml:"Path" env:"PATH"`
}

// RPC is a connection to the N3 node serving external ledgers.
type RPC struct {
	Endpoint       string        `yaml:"Endpoint" env:"ENDPOINT"`
	DialTimeout    time.Duration `yaml:"DialTimeout" env:"DIAL_TIMEOUT"`
	RequestTimeout time.Duration `yaml:"RequestTimeout" env:"REQUEST_TIMEOUT"`
	// WIF of the relay account key.
	WIF string `yaml:"WIF" env:"WIF"`
}

// Logger configures zap logger.
type Logger struct {
	Level    string `yaml:"Level" env:"LEVEL"`
	Encoding string `yaml:"Encoding" env:"ENCODING"`
}

// Journal configures SQLite event journal, it's disabled if Path is empty.
type Journal struct {
	Path string `yaml:"Path" env:"PATH"`
}

// Metrics configures prometheus textfile output, it's disabled if Path is
// empty.
type Metrics struct {
	Path string `yaml:"Path" env:"PATH"`
}

// Tracing configures OTLP HTTP exporter, it's disabled if Endpoint is empty.
type Tracing struct {
	Endpoint string `yaml:"Endpoint" env:"ENDPOINT"`
	Service  string `yaml:"Service" env:"SERVICE"`
}

// Default returns configuration with default values.
func Default() Config {
	return Config{
		Relay: Relay{
			CrossContractGasTGas: DefaultCrossContractGasTGas,
		},
		Storage: Storage{
			Type: dbconfig.InMemoryDB,
		},
		RPC: RPC{
			DialTimeout:    DefaultDialTimeout,
			RequestTimeout: DefaultRequestTimeout,
		},
		Logger: Logger{
			Level:    DefaultLogLevel,
			Encoding: DefaultLogEncoding,
		},
		Tracing: Tracing{
			Service: "ftrelay",
		},
	}
}

// Load reads configuration from the file at path (skipped if path is empty)
// and environment, then validates it.
func Load(path string) (Config, error) {
	cfg := Default()

	if path != "" {
		data, err := os.ReadFile(path)
		if err != nil {
			return Config{}, fmt.Errorf("read config: %w", err)
		}
		if err := decodeYAML(data, &cfg); err != nil {
			return Config{}, err
		}
	}

	if err := env.ParseWithOptions(&cfg, env.Options{Prefix: EnvPrefix}); err != nil {
		return Config{}, fmt.Errorf("parse env: %w", err)
	}

	if err := cfg.Validate(); err != nil {
		return Config{}, err
	}
	return cfg, nil
}

func decodeYAML(data []byte, cfg *Config) error {
	dec := yaml.NewDecoder(bytes.NewReader(data))
	dec.KnownFields(true)
	if err := dec.Decode(cfg); err != nil && !errors.Is(err, io.EOF) {
		return fmt.Errorf("decode config: %w", err)
	}
	return nil
}

// Validate checks that all values can be used.
func (c Config) Validate() error {
	if _, err := c.Relay.InitPrm(); err != nil {
		return fmt.Errorf("relay: %w", err)
	}
	if _, err := c.Storage.DBConfig(); err != nil {
		return fmt.Errorf("storage: %w", err)
	}
	if _, err := zap.ParseAtomicLevel(c.Logger.Level); err != nil {
		return fmt.Errorf("logger: %w", err)
	}
	switch c.Logger.Encoding {
	case "console", "json":
	default:
		return fmt.Errorf("logger: unknown encoding %q", c.Logger.Encoding)
	}
	return nil
}

// InitPrm converts relay section into relay initialization parameters.
func (r Relay) InitPrm() (relay.InitPrm, error) {
	var (
		prm relay.InitPrm
		err error
	)

	if prm.Admins, err = decodeAddresses(r.Admins); err != nil {
		return prm, fmt.Errorf("admins: %w", err)
	}
	if prm.Tokens, err = decodeAddresses(r.Tokens); err != nil {
		return prm, fmt.Errorf("tokens: %w", err)
	}
	if r.Relayer != "" {
		if prm.Relayer, err = address.StringToUint160(r.Relayer); err != nil {
			return prm, fmt.Errorf("relayer: %w", err)
		}
	}
	if r.StorageDeposit != "" {
		if prm.StorageDeposit, err = common.ParseAmount(r.StorageDeposit); err != nil {
			return prm, fmt.Errorf("storage deposit: %w", err)
		}
	}
	if r.MinBalance != "" {
		var v uint256.Int
		if v, err = common.ParseAmount(r.MinBalance); err != nil {
			return prm, fmt.Errorf("min balance: %w", err)
		}
		prm.MinBalance = &v
	}
	if prm.CrossContractGas, err = common.TGasToGas(r.CrossContractGasTGas); err != nil {
		return prm, err
	}

	return prm, nil
}

func decodeAddresses(list []string) ([]util.Uint160, error) {
	res := make([]util.Uint160, 0, len(list))
	for _, s := range list {
		h, err := address.StringToUint160(s)
		if err != nil {
			return nil, fmt.Errorf("%q: %w", s, err)
		}
		res = append(res, h)
	}
	return res, nil
}

// DBConfig converts storage section into neo-go storage configuration.
func (s Storage) DBConfig() (dbconfig.DBConfiguration, error) {
	cfg := dbconfig.DBConfiguration{Type: s.Type}
	switch s.Type {
	case dbconfig.InMemoryDB:
	case dbconfig.BoltDB:
		if s.Path == "" {
			return cfg, errors.New("boltdb path is required")
		}
		cfg.BoltDBOptions.FilePath = s.Path
	case dbconfig.LevelDB:
		if s.Path == "" {
			return cfg, errors.New("leveldb path is required")
		}
		cfg.LevelDBOptions.DataDirectoryPath = s.Path
	default:
		return cfg, fmt.Errorf("unknown storage type %q", s.Type)
	}
	return cfg, nil
}

// Build creates zap logger.
func (l Logger) Build() (*zap.Logger, error) {
	lvl, err := zap.ParseAtomicLevel(l.Level)
	if err != nil {
		return nil, err
	}

	cfg := zap.NewProductionConfig()
	cfg.Level = lvl
	cfg.Encoding = l.Encoding
	cfg.Sampling = nil
	if l.Encoding == "console" {
		cfg.EncoderConfig = zap.NewDevelopmentEncoderConfig()
	}
	return cfg.Build()
}
