package main

import (
	"context"
	"errors"
	"fmt"
	"strconv"

	"github.com/nspcc-dev/ftrelay/common"
	"github.com/nspcc-dev/ftrelay/relay"
	"github.com/nspcc-dev/neo-go/pkg/encoding/address"
	"github.com/nspcc-dev/neo-go/pkg/util"
	"github.com/urfave/cli"
	"go.uber.org/zap"
)

func initState(c *cli.Context) error {
	cfg, log, err := loadConfig(c)
	if err != nil {
		return err
	}
	defer func() { _ = log.Sync() }()

	prm, err := cfg.Relay.InitPrm()
	if err != nil {
		return err
	}

	st, err := openStore(cfg)
	if err != nil {
		return err
	}
	defer func() { _ = st.Close() }()

	if err := relay.Init(st, prm); err != nil {
		return fmt.Errorf("init relay state: %w", err)
	}
	if _, err := st.Persist(); err != nil {
		return fmt.Errorf("persist relay state: %w", err)
	}

	log.Info("relay state initialized",
		zap.Int("admins", len(prm.Admins)),
		zap.Int("tokens", len(prm.Tokens)))
	return nil
}

// adminAction opens the node offline and performs f on behalf of the admin.
func adminAction(f func(*relay.Relay, relay.Invocation, cli.Args) error) cli.ActionFunc {
	return func(c *cli.Context) error {
		admin, err := parseAddress(c.String("admin"), "admin")
		if err != nil {
			return err
		}

		ctx := context.Background()
		n, err := openNode(ctx, c, false)
		if err != nil {
			return err
		}
		defer n.close(ctx)

		if err := f(n.relay, relay.Invocation{Caller: admin}, c.Args()); err != nil {
			return err
		}
		return n.persist()
	}
}

var addToken = adminAction(func(r *relay.Relay, inv relay.Invocation, args cli.Args) error {
	token, err := parseAddress(args.First(), "ledger")
	if err != nil {
		return err
	}
	return r.AddSupportedToken(inv, token)
})

var removeToken = adminAction(func(r *relay.Relay, inv relay.Invocation, args cli.Args) error {
	token, err := parseAddress(args.First(), "ledger")
	if err != nil {
		return err
	}
	return r.RemoveSupportedToken(inv, token)
})

var setGas = adminAction(func(r *relay.Relay, inv relay.Invocation, args cli.Args) error {
	tgas, err := strconv.ParseUint(args.First(), 10, 64)
	if err != nil {
		return fmt.Errorf("invalid gas %q: %w", args.First(), err)
	}
	return r.SetCrossContractGas(inv, tgas)
})

var setStorageDeposit = adminAction(func(r *relay.Relay, inv relay.Invocation, args cli.Args) error {
	amount, err := common.ParseAmount(args.First())
	if err != nil {
		return err
	}
	return r.SetStorageDeposit(inv, &amount)
})

var pause = adminAction(func(r *relay.Relay, inv relay.Invocation, _ cli.Args) error {
	return r.Pause(inv)
})

var unpause = adminAction(func(r *relay.Relay, inv relay.Invocation, _ cli.Args) error {
	return r.Unpause(inv)
})

func listTokens(c *cli.Context) error {
	return view(c, func(r *relay.Relay) error {
		for _, t := range r.SupportedTokens() {
			fmt.Fprintln(c.App.Writer, address.Uint160ToString(t))
		}
		return nil
	})
}

func info(c *cli.Context) error {
	return view(c, func(r *relay.Relay) error {
		cfg := r.Config()
		w := c.App.Writer

		fmt.Fprintf(w, "Version:\t%s\n", common.VersionString(common.Version))
		for _, a := range r.Admins() {
			fmt.Fprintf(w, "Admin:\t\t%s\n", address.Uint160ToString(a))
		}
		fmt.Fprintf(w, "Relayer:\t%s\n", address.Uint160ToString(cfg.Relayer))
		fmt.Fprintf(w, "Deposit:\t%s\n", cfg.StorageDeposit.Dec())
		fmt.Fprintf(w, "Gas (TGas):\t%d\n", cfg.CrossContractGas/common.TGas)
		fmt.Fprintf(w, "Min balance:\t%s\n", cfg.MinBalance.Dec())
		fmt.Fprintf(w, "Paused:\t\t%t\n", cfg.Paused)
		return nil
	})
}

// view opens the node offline for read-only access.
func view(c *cli.Context, f func(*relay.Relay) error) error {
	ctx := context.Background()
	n, err := openNode(ctx, c, false)
	if err != nil {
		return err
	}
	defer n.close(ctx)
	return f(n.relay)
}

func parseAddress(s, what string) (util.Uint160, error) {
	if s == "" {
		return util.Uint160{}, errors.New("missing " + what + " address")
	}
	h, err := address.StringToUint160(s)
	if err != nil {
		return h, fmt.Errorf("invalid %s address %q: %w", what, s, err)
	}
	return h, nil
}
