package main

import (
	"context"
	"encoding/csv"
	"fmt"
	"time"

	"github.com/nspcc-dev/ftrelay/mirror"
	"github.com/nspcc-dev/ftrelay/notify"
	"github.com/nspcc-dev/ftrelay/relay"
	"github.com/nspcc-dev/neo-go/pkg/encoding/address"
	"github.com/nspcc-dev/neo-go/pkg/util"
	"github.com/urfave/cli"
)

// dumpMirror prints mirror records as 'ledger,account,total,available' CSV,
// addresses are in Neo format and amounts are decimal.
func dumpMirror(c *cli.Context) error {
	var filter *util.Uint160
	if s := c.Args().First(); s != "" {
		h, err := parseAddress(s, "ledger")
		if err != nil {
			return err
		}
		filter = &h
	}

	return view(c, func(r *relay.Relay) error {
		w := csv.NewWriter(c.App.Writer)
		if err := w.Write([]string{"ledger", "account", "total", "available"}); err != nil {
			return err
		}

		var werr error
		err := r.Mirror().Iterate(filter, func(rec mirror.Record) bool {
			werr = w.Write([]string{
				address.Uint160ToString(rec.Ledger),
				address.Uint160ToString(rec.Account),
				rec.Balance.Total.Dec(),
				rec.Balance.Available.Dec(),
			})
			return werr == nil
		})
		if err != nil {
			return fmt.Errorf("iterate mirror: %w", err)
		}
		if werr != nil {
			return werr
		}

		w.Flush()
		if err := w.Error(); err != nil {
			return fmt.Errorf("flush CSV data: %w", err)
		}
		return nil
	})
}

func listEvents(c *cli.Context) error {
	cfg, _, err := loadConfig(c)
	if err != nil {
		return err
	}
	if cfg.Journal.Path == "" {
		return fmt.Errorf("event journal is not configured")
	}

	j, err := notify.OpenJournal(cfg.Journal.Path, nil)
	if err != nil {
		return err
	}
	defer func() { _ = j.Close() }()

	entries, err := j.List(context.Background(), c.String("name"), c.Int("limit"))
	if err != nil {
		return err
	}
	for _, e := range entries {
		fmt.Fprintf(c.App.Writer, "%d\t%s\t%s\t%s\n", e.ID, e.EmittedAt.Format(time.RFC3339), e.Name, e.Data)
	}
	return nil
}
