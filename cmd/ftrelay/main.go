package main

import (
	"fmt"
	"os"

	"github.com/nspcc-dev/ftrelay/common"
	"github.com/urfave/cli"
)

func main() {
	if err := newApp().Run(os.Args); err != nil {
		fmt.Fprintln(os.Stderr, err)
		os.Exit(1)
	}
}

func newApp() *cli.App {
	app := cli.NewApp()
	app.Name = "ftrelay"
	app.Usage = "relay for external token ledgers with storage allocation"
	app.Version = common.VersionString(common.Version)
	app.Flags = []cli.Flag{
		cli.StringFlag{
			Name:   "config, c",
			Usage:  "path to YAML configuration file",
			EnvVar: "FTRELAY_CONFIG",
		},
	}
	app.Commands = []cli.Command{
		{
			Name:   "init",
			Usage:  "initialize relay state from configuration",
			Action: initState,
		},
		{
			Name:  "token",
			Usage: "manage supported ledgers",
			Subcommands: []cli.Command{
				{
					Name:      "add",
					Usage:     "add ledger to the allow-list",
					ArgsUsage: "<ledger>",
					Flags:     []cli.Flag{adminFlag},
					Action:    addToken,
				},
				{
					Name:      "remove",
					Usage:     "remove ledger from the allow-list",
					ArgsUsage: "<ledger>",
					Flags:     []cli.Flag{adminFlag},
					Action:    removeToken,
				},
				{
					Name:   "list",
					Usage:  "print supported ledgers",
					Action: listTokens,
				},
			},
		},
		{
			Name:      "gas",
			Usage:     "set gas budget of remote calls",
			ArgsUsage: "<tgas>",
			Flags:     []cli.Flag{adminFlag},
			Action:    setGas,
		},
		{
			Name:      "storage-deposit",
			Usage:     "set amount paid for a single storage allocation",
			ArgsUsage: "<amount>",
			Flags:     []cli.Flag{adminFlag},
			Action:    setStorageDeposit,
		},
		{
			Name:   "pause",
			Usage:  "stop serving user operations",
			Flags:  []cli.Flag{adminFlag},
			Action: pause,
		},
		{
			Name:   "unpause",
			Usage:  "resume serving user operations",
			Flags:  []cli.Flag{adminFlag},
			Action: unpause,
		},
		{
			Name:   "info",
			Usage:  "print relay parameters",
			Action: info,
		},
		{
			Name:      "dump",
			Usage:     "print mirrored storage balances as CSV",
			ArgsUsage: "[ledger]",
			Action:    dumpMirror,
		},
		{
			Name:  "events",
			Usage: "print journaled events",
			Flags: []cli.Flag{
				cli.StringFlag{Name: "name", Usage: "event name filter"},
				cli.IntFlag{Name: "limit", Value: 100, Usage: "maximum number of events"},
			},
			Action: listEvents,
		},
		{
			Name:      "register",
			Usage:     "make sure the account has storage allocated on the ledger",
			ArgsUsage: "<ledger> <account>",
			Action:    register,
		},
		{
			Name:      "transfer",
			Usage:     "transfer tokens registering both parties if needed",
			ArgsUsage: "<ledger> <receiver> <amount>",
			Flags: []cli.Flag{
				cli.StringFlag{Name: "memo", Usage: "transfer memo"},
				cli.StringFlag{Name: "attach", Usage: "native payment attached to the call"},
			},
			Action: transfer,
		},
		{
			Name:      "balance",
			Usage:     "print token and storage balances of the account",
			ArgsUsage: "<ledger> <account>",
			Action:    balance,
		},
	}
	return app
}

var adminFlag = cli.StringFlag{
	Name:   "admin",
	Usage:  "address of the admin performing the operation",
	EnvVar: "FTRELAY_ADMIN",
}
