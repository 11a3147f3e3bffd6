package main

import (
	"context"
	"errors"
	"fmt"

	"github.com/holiman/uint256"
	"github.com/nspcc-dev/ftrelay/config"
	"github.com/nspcc-dev/ftrelay/host"
	"github.com/nspcc-dev/ftrelay/metrics"
	"github.com/nspcc-dev/ftrelay/notify"
	"github.com/nspcc-dev/ftrelay/promise"
	"github.com/nspcc-dev/ftrelay/relay"
	rpcledger "github.com/nspcc-dev/ftrelay/rpc/ledger"
	"github.com/nspcc-dev/neo-go/pkg/core/storage"
	"github.com/nspcc-dev/neo-go/pkg/rpcclient"
	"github.com/nspcc-dev/neo-go/pkg/rpcclient/actor"
	"github.com/nspcc-dev/neo-go/pkg/rpcclient/gas"
	"github.com/nspcc-dev/neo-go/pkg/util"
	"github.com/nspcc-dev/neo-go/pkg/wallet"
	"github.com/prometheus/client_golang/prometheus"
	"github.com/urfave/cli"
	"go.uber.org/zap"
)

// node groups everything a command needs to serve relay operations. Remote
// calls are available only if the node is opened with RPC.
type node struct {
	cfg     config.Config
	log     *zap.Logger
	store   *storage.MemCachedStore
	journal *notify.Journal
	reg     *prometheus.Registry
	runtime *host.Runtime
	relay   *relay.Relay

	rpc            *rpcclient.Client
	rpcSender      util.Uint160
	shutdownTraces func(context.Context) error
}

func loadConfig(c *cli.Context) (config.Config, *zap.Logger, error) {
	cfg, err := config.Load(c.GlobalString("config"))
	if err != nil {
		return cfg, nil, err
	}
	log, err := cfg.Logger.Build()
	if err != nil {
		return cfg, nil, fmt.Errorf("build logger: %w", err)
	}
	return cfg, log, nil
}

func openStore(cfg config.Config) (*storage.MemCachedStore, error) {
	dbCfg, err := cfg.Storage.DBConfig()
	if err != nil {
		return nil, err
	}
	st, err := storage.NewStore(dbCfg)
	if err != nil {
		return nil, fmt.Errorf("open %s storage: %w", dbCfg.Type, err)
	}
	return storage.NewMemCachedStore(st), nil
}

// openNode opens relay state. With withRPC set, it dials the configured RPC
// node and uses the relay account GAS balance as the treasury.
func openNode(ctx context.Context, c *cli.Context, withRPC bool) (*node, error) {
	cfg, log, err := loadConfig(c)
	if err != nil {
		return nil, err
	}

	n := &node{cfg: cfg, log: log, reg: prometheus.NewRegistry()}
	if n.store, err = openStore(cfg); err != nil {
		return nil, err
	}

	ok := false
	defer func() {
		if !ok {
			n.close(ctx)
		}
	}()

	if n.shutdownTraces, err = cfg.Tracing.SetupTracing(ctx); err != nil {
		return nil, err
	}

	coll, err := metrics.New(n.reg)
	if err != nil {
		return nil, err
	}

	sinks := []notify.Sink{notify.NewLog(log)}
	if cfg.Journal.Path != "" {
		if n.journal, err = notify.OpenJournal(cfg.Journal.Path, log); err != nil {
			return nil, err
		}
		sinks = append(sinks, n.journal)
	}

	var (
		inv   host.Invoker = offline{}
		funds              = host.NewWallet(nil)
	)
	if withRPC {
		var act *actor.Actor
		if act, err = n.dial(ctx); err != nil {
			return nil, err
		}
		if funds, err = treasury(act); err != nil {
			return nil, err
		}
		inv, err = directory(n.store, act)
		if err != nil {
			return nil, err
		}
	}

	n.runtime = host.NewRuntime(host.RuntimePrm{
		Logger:  log,
		Invoker: inv,
		Wallet:  funds,
		Metrics: coll,
	})

	n.relay, err = relay.New(relay.Prm{
		Logger:    log,
		Store:     n.store,
		Scheduler: n.runtime,
		Sink:      coll.Sink(notify.Multi(sinks...)),
		Treasury:  funds,
	})
	if err != nil {
		return nil, fmt.Errorf("open relay: %w", err)
	}

	ok = true
	return n, nil
}

func (n *node) dial(ctx context.Context) (*actor.Actor, error) {
	if n.cfg.RPC.Endpoint == "" {
		return nil, errors.New("RPC endpoint is not configured")
	}
	acc, err := wallet.NewAccountFromWIF(n.cfg.RPC.WIF)
	if err != nil {
		return nil, fmt.Errorf("decode relay key: %w", err)
	}

	n.rpc, err = rpcclient.New(ctx, n.cfg.RPC.Endpoint, rpcclient.Options{
		DialTimeout:    n.cfg.RPC.DialTimeout,
		RequestTimeout: n.cfg.RPC.RequestTimeout,
	})
	if err != nil {
		return nil, fmt.Errorf("RPC client dial: %w", err)
	}
	if err := n.rpc.Init(); err != nil {
		return nil, fmt.Errorf("RPC client init: %w", err)
	}

	act, err := actor.NewSimple(n.rpc, acc)
	if err != nil {
		return nil, fmt.Errorf("init actor: %w", err)
	}
	n.rpcSender = act.Sender()
	return act, nil
}

func treasury(act *actor.Actor) (*host.Wallet, error) {
	b, err := gas.NewReader(act).BalanceOf(act.Sender())
	if err != nil {
		return nil, fmt.Errorf("get relay GAS balance: %w", err)
	}
	v, overflow := uint256.FromBig(b)
	if overflow {
		return nil, fmt.Errorf("relay GAS balance %s is out of range", b)
	}
	return host.NewWallet(v), nil
}

// directory binds every supported ledger and the configured relayer to RPC
// wrappers.
func directory(st *storage.MemCachedStore, act *actor.Actor) (*host.Directory, error) {
	r, err := relay.New(relay.Prm{Store: st, Scheduler: offline{}, Treasury: host.NewWallet(nil)})
	if err != nil {
		return nil, fmt.Errorf("open relay: %w", err)
	}

	d := host.NewDirectory(rpcledger.NewPayer(act))
	for _, t := range r.SupportedTokens() {
		d.AddLedger(t, rpcledger.NewService(act, t))
	}
	if h := r.Config().Relayer; !h.Equals(util.Uint160{}) {
		d.AddRelayer(h, rpcledger.NewRelayer(act, h))
	}
	return d, nil
}

// run performs all issued remote calls and persists resulting state.
func (n *node) run(ctx context.Context) error {
	if err := n.runtime.Run(ctx); err != nil {
		return err
	}
	return n.persist()
}

func (n *node) persist() error {
	if _, err := n.store.Persist(); err != nil {
		return fmt.Errorf("persist relay state: %w", err)
	}
	if p := n.cfg.Metrics.Path; p != "" {
		if err := prometheus.WriteToTextfile(p, n.reg); err != nil {
			return fmt.Errorf("write metrics: %w", err)
		}
	}
	return nil
}

func (n *node) close(ctx context.Context) {
	if n.rpc != nil {
		n.rpc.Close()
	}
	if n.journal != nil {
		if err := n.journal.Close(); err != nil {
			n.log.Warn("can't close event journal", zap.Error(err))
		}
	}
	if n.shutdownTraces != nil {
		if err := n.shutdownTraces(ctx); err != nil {
			n.log.Warn("can't flush traces", zap.Error(err))
		}
	}
	if err := n.store.Close(); err != nil {
		n.log.Warn("can't close storage", zap.Error(err))
	}
	_ = n.log.Sync()
}

// offline rejects every remote call, it serves commands not talking to
// ledgers.
type offline struct{}

var errOffline = errors.New("remote calls are not available offline")

func (offline) Invoke(context.Context, promise.Call) promise.Result {
	return promise.Result{Err: errOffline}
}

func (offline) Issue(p *promise.Promise) {
	_ = p.Resolve(promise.Result{Err: errOffline})
}
