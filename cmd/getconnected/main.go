// cmd/getconnected/main.go
package main

import (
	"context"
	"fmt"
	"io"
	"os"
	"path/filepath"
	"time"

	"getconnected/internal/app"
	"getconnected/internal/common/config"
	"getconnected/internal/common/database"
	"getconnected/internal/common/logger"
)

func main() {
	os.Exit(run(os.Args[1:], os.Stdout, os.Stderr))
}

func run(args []string, stdout, stderr io.Writer) int {
	if len(args) < 1 || args[0] == "help" || args[0] == "-h" || args[0] == "--help" {
		help(stdout)
		return 0
	}

	cfg, err := config.Load()
	if err != nil {
		fmt.Fprintln(stderr, errorMsg("config load failed: %v", err))
		return 1
	}
	if cfg.Storage.Driver == config.StorageMemory && cfg.Storage.SnapshotPath == "" {
		cfg.Storage.SnapshotPath = defaultSnapshotPath()
	}
	// Commands print their own results; only warnings reach stderr.
	zapLog, err := logger.Build(config.LoggingConfig{Level: "warn", Format: "console", Output: "stderr"}, "")
	if err != nil {
		fmt.Fprintln(stderr, errorMsg("logger setup failed: %v", err))
		return 1
	}
	defer zapLog.Sync()
	log := logger.NewZapAdapter(zapLog)

	ctx := context.Background()
	rt, err := app.New(ctx, cfg, log, app.Options{
		Wait: database.WaitPolicy{MaxAttempts: 3, InitialInterval: 200 * time.Millisecond, PingTimeout: 2 * time.Second},
	})
	if err != nil {
		fmt.Fprintln(stderr, errorMsg("startup failed: %v", err))
		return 1
	}

	c := &cli{rt: rt, out: stdout}
	code := 0
	if err := c.dispatch(ctx, args[0], args[1:]); err != nil {
		fmt.Fprintln(stderr, errorMsg("%v", err))
		code = 1
	}
	if err := rt.Close(ctx); err != nil {
		fmt.Fprintln(stderr, errorMsg("saving data failed: %v", err))
		code = 1
	}
	return code
}

// defaultSnapshotPath keeps CLI data in the user's home directory so it
// survives between invocations.
func defaultSnapshotPath() string {
	home, err := os.UserHomeDir()
	if err != nil {
		return ".getconnected.json"
	}
	return filepath.Join(home, ".getconnected", "store.json")
}

func help(w io.Writer) {
	fmt.Fprint(w, `
Usage: getconnected <command> [flags]

Commands:
  add-user        Add a user (-name, -email)
  add-preference  Set a platform preference (-user, -platform, -level, -account, -notes)
  list-users      List users with their preferences
  list-platforms  List catalog platforms (-features to score them)
  list-features   Show which platforms support each feature, by category
  find-common     Platforms every listed user has (-users)
  recommend       Rank common platforms (-users, -features, -compare)
  compare         Feature table for common platforms (-users, -features)
  schedule        Book a meeting (-users, -platform, -datetime, -minutes, -notes)
  export          Export an analysis (-users, -format json|csv|html|text, -out)
  help            Show this help message

Examples:
  getconnected add-user -name alice -email alice@example.com
  getconnected add-preference -user alice -platform signal -level 9
  getconnected recommend -users alice,bob -features endToEndEncryption,videoCalls
  getconnected schedule -users alice,bob -platform signal -datetime "2025-06-01 18:30"
`)
}
