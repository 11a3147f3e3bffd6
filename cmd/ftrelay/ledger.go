package main

import (
	"context"
	"fmt"
	"os/signal"
	"syscall"

	"github.com/holiman/uint256"
	"github.com/nspcc-dev/ftrelay/common"
	"github.com/nspcc-dev/ftrelay/ledger"
	"github.com/nspcc-dev/ftrelay/promise"
	"github.com/nspcc-dev/ftrelay/relay"
	"github.com/urfave/cli"
)

// online opens the node with RPC, starts operations with f and waits for all
// remote calls to complete.
func online(c *cli.Context, f func(*relay.Relay, relay.Invocation) (*promise.Promise, error)) (promise.Result, error) {
	ctx, cancel := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer cancel()

	n, err := openNode(ctx, c, true)
	if err != nil {
		return promise.Result{}, err
	}
	defer n.close(ctx)

	inv := relay.Invocation{Caller: n.rpcSender}
	if s := c.String("attach"); s != "" {
		if inv.Attached, err = common.ParseAmount(s); err != nil {
			return promise.Result{}, err
		}
	}

	p, err := f(n.relay, inv)
	if err != nil {
		return promise.Result{}, err
	}
	if err := n.run(ctx); err != nil {
		return promise.Result{}, err
	}

	res, ok := p.Result()
	if !ok {
		return res, fmt.Errorf("operation is not completed")
	}
	return res, res.Err
}

func register(c *cli.Context) error {
	token, err := parseAddress(c.Args().Get(0), "ledger")
	if err != nil {
		return err
	}
	account, err := parseAddress(c.Args().Get(1), "account")
	if err != nil {
		return err
	}

	res, err := online(c, func(r *relay.Relay, _ relay.Invocation) (*promise.Promise, error) {
		return r.EnsureRegistered(token, account)
	})
	if err != nil {
		return err
	}

	if registered, _ := res.Value.(bool); registered {
		fmt.Fprintln(c.App.Writer, "registered")
	} else {
		fmt.Fprintln(c.App.Writer, "already registered")
	}
	return nil
}

func transfer(c *cli.Context) error {
	token, err := parseAddress(c.Args().Get(0), "ledger")
	if err != nil {
		return err
	}
	receiver, err := parseAddress(c.Args().Get(1), "receiver")
	if err != nil {
		return err
	}
	amount, err := common.ParseAmount(c.Args().Get(2))
	if err != nil {
		return err
	}

	_, err = online(c, func(r *relay.Relay, inv relay.Invocation) (*promise.Promise, error) {
		return r.Transfer(inv, token, receiver, &amount, c.String("memo"))
	})
	if err != nil {
		return err
	}
	fmt.Fprintln(c.App.Writer, "transferred")
	return nil
}

func balance(c *cli.Context) error {
	token, err := parseAddress(c.Args().Get(0), "ledger")
	if err != nil {
		return err
	}
	account, err := parseAddress(c.Args().Get(1), "account")
	if err != nil {
		return err
	}

	var bp *promise.Promise
	res, err := online(c, func(r *relay.Relay, _ relay.Invocation) (*promise.Promise, error) {
		var err error
		if bp, err = r.BalanceOf(token, account); err != nil {
			return nil, err
		}
		return r.StorageBalanceOf(token, account)
	})
	if err != nil {
		return err
	}

	if br, ok := bp.Result(); ok && br.Err == nil {
		if v, ok := br.Value.(*uint256.Int); ok {
			fmt.Fprintf(c.App.Writer, "Balance:\t%s\n", v.Dec())
		}
	}
	if sb, ok := res.Value.(*ledger.StorageBalance); ok && sb != nil {
		fmt.Fprintf(c.App.Writer, "Storage:\t%s (%s available)\n", sb.Total.Dec(), sb.Available.Dec())
	} else {
		fmt.Fprintln(c.App.Writer, "Storage:\tnot registered")
	}
	return nil
}
