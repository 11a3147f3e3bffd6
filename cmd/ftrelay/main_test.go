package main

import (
	"bytes"
	"os"
	"path/filepath"
	"strings"
	"testing"

	"github.com/nspcc-dev/neo-go/pkg/encoding/address"
	"github.com/nspcc-dev/neo-go/pkg/util"
	"github.com/stretchr/testify/require"
)

var (
	admin  = address.Uint160ToString(util.Uint160{1})
	user   = address.Uint160ToString(util.Uint160{2})
	token  = address.Uint160ToString(util.Uint160{3})
	token2 = address.Uint160ToString(util.Uint160{4})
)

type testCLI struct {
	t      *testing.T
	config string
	dir    string
}

func newTestCLI(t *testing.T) *testCLI {
	dir := t.TempDir()
	cfg := `
Relay:
  Admins: [` + admin + `]
  Tokens: [` + token + `]
  StorageDeposit: "1250"
Storage:
  Type: boltdb
  Path: ` + filepath.Join(dir, "relay.bolt") + `
Journal:
  Path: ` + filepath.Join(dir, "events.db") + `
Metrics:
  Path: ` + filepath.Join(dir, "metrics.prom") + `
Logger:
  Level: error
`
	p := filepath.Join(dir, "config.yml")
	require.NoError(t, os.WriteFile(p, []byte(cfg), 0o644))
	return &testCLI{t: t, config: p, dir: dir}
}

func (c *testCLI) run(args ...string) (string, error) {
	var buf bytes.Buffer
	app := newApp()
	app.Writer = &buf
	app.ErrWriter = &buf
	err := app.Run(append([]string{"ftrelay", "--config", c.config}, args...))
	return buf.String(), err
}

func (c *testCLI) ok(args ...string) string {
	out, err := c.run(args...)
	require.NoError(c.t, err, out)
	return out
}

func TestAdminCommands(t *testing.T) {
	c := newTestCLI(t)

	c.ok("init")
	_, err := c.run("init")
	require.ErrorContains(t, err, "already initialized")

	out := c.ok("info")
	require.Contains(t, out, admin)
	require.Contains(t, out, "1250")
	require.Contains(t, out, "Gas (TGas):\t100\n")

	c.ok("token", "add", "--admin", admin, token2)
	out = c.ok("token", "list")
	require.ElementsMatch(t, []string{token, token2}, strings.Fields(out))

	_, err = c.run("token", "remove", "--admin", user, token2)
	require.ErrorContains(t, err, "unauthorized")
	_, err = c.run("token", "remove", token2)
	require.ErrorContains(t, err, "missing admin")

	c.ok("token", "remove", "--admin", admin, token2)
	require.Equal(t, []string{token}, strings.Fields(c.ok("token", "list")))

	c.ok("gas", "--admin", admin, "50")
	c.ok("storage-deposit", "--admin", admin, "2000")
	c.ok("pause", "--admin", admin)

	out = c.ok("info")
	require.Contains(t, out, "2000")
	require.Contains(t, out, "Gas (TGas):\t50\n")
	require.Contains(t, out, "Paused:\t\ttrue")

	c.ok("unpause", "--admin", admin)

	out = c.ok("events")
	for _, name := range []string{"token_added", "token_removed", "gas_updated", "storage_deposit_updated", "paused", "unpaused"} {
		require.Contains(t, out, name)
	}
	out = c.ok("events", "--name", "paused")
	require.Equal(t, 1, strings.Count(out, "\n"))

	require.FileExists(t, filepath.Join(c.dir, "metrics.prom"))
}

func TestDump(t *testing.T) {
	c := newTestCLI(t)
	c.ok("init")

	require.Equal(t, "ledger,account,total,available\n", c.ok("dump"))
	require.Equal(t, "ledger,account,total,available\n", c.ok("dump", token))

	_, err := c.run("dump", "bad")
	require.ErrorContains(t, err, "invalid ledger address")
}

func TestOnlineCommandsRequireRPC(t *testing.T) {
	c := newTestCLI(t)
	c.ok("init")

	_, err := c.run("register", token, user)
	require.ErrorContains(t, err, "RPC endpoint is not configured")

	_, err = c.run("register", token)
	require.ErrorContains(t, err, "missing account")
}

func TestNotInitialized(t *testing.T) {
	c := newTestCLI(t)

	_, err := c.run("token", "list")
	require.ErrorContains(t, err, "not initialized")
}
