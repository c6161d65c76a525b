package main

import (
	"bufio"
	"fmt"
	"os"

	"github.com/spf13/cobra"

	"tracenav/internal/command"
	"tracenav/internal/session"
	"tracenav/trace"
)

var shellCmd = &cobra.Command{
	Use:   "shell [session-file]",
	Short: "Interactive trace navigation shell",
	Long: `Shell reads navigation commands from stdin. With a session file argument
the trace is loaded up front; otherwise use 'trace load <path>' inside the
shell. An empty line repeats the last dump, continuing where it stopped.`,
	Args: cobra.MaximumNArgs(1),
	RunE: runShell,
}

func init() {
	shellCmd.Flags().Bool("verbose", false, "log session loading details")
}

func runShell(cmd *cobra.Command, args []string) error {
	cfg, err := loadConfig(cmd)
	if err != nil {
		return err
	}

	var logger trace.Logger = trace.NewNoOpLogger()
	if verbose, _ := cmd.Flags().GetBool("verbose"); verbose {
		logger = trace.NewStdLoggerWithWriter(os.Stdout, os.Stderr, trace.SeverityInfo)
	}

	dbg := session.NewDebugger(logger)
	disp := &command.Dispatcher{
		Debugger: dbg,
		Exec:     command.NewExecutor(dbg, cfg, os.Stdout),
		Out:      os.Stdout,
		ErrOut:   os.Stderr,
	}

	if len(args) == 1 {
		if !disp.HandleLine("trace load " + args[0]) {
			return nil
		}
	}

	scanner := bufio.NewScanner(os.Stdin)
	for {
		fmt.Print("(tracenav) ")
		if !scanner.Scan() {
			fmt.Println()
			return scanner.Err()
		}
		if !disp.HandleLine(scanner.Text()) {
			return nil
		}
	}
}
