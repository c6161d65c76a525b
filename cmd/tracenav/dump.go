package main

import (
	"errors"
	"fmt"
	"os"

	"github.com/spf13/cobra"

	"tracenav/internal/command"
	"tracenav/internal/session"
	"tracenav/trace"
)

var dumpCmd = &cobra.Command{
	Use:   "dump <session-file> [thread-index] [dump-flags]",
	Short: "One-shot dump of a trace session's items",
	Long: `Dump loads a session file and renders one window of trace items.
Everything after the session file is passed to the dump command itself:

  --raw --all --forwards --count N --skip N --id N|0xN
  --json --pretty-json --file <path>`,
	// The trailing args belong to the inner dump parser, not to cobra.
	DisableFlagParsing: true,
	RunE:               runDump,
}

func runDump(cmd *cobra.Command, args []string) error {
	if len(args) > 0 && (args[0] == "-h" || args[0] == "--help") {
		return cmd.Help()
	}
	if len(args) == 0 {
		return errors.New("dump requires a session file argument")
	}

	cfg, err := loadConfig(cmd)
	if err != nil {
		return err
	}
	applyColor(cmd, cfg)

	req, err := command.ParseDump(args[1:])
	if err != nil {
		return usageError(err)
	}

	dbg := session.NewDebugger(trace.NewNoOpLogger())
	if _, err := dbg.LoadTrace(args[0]); err != nil {
		return usageError(err)
	}

	exec := command.NewExecutor(dbg, cfg, os.Stdout)
	if err := exec.Dump(req); err != nil {
		return usageError(err)
	}
	return nil
}

// usageError reports a failure with the fixed "error: <text>" form callers
// grep for, then exits non-zero. No partial dump output precedes it.
func usageError(err error) error {
	fmt.Fprintf(os.Stderr, "error: %s\n", err)
	os.Exit(1)
	return nil
}
