package main

import (
	"os"

	"github.com/fatih/color"
	"github.com/spf13/cobra"
	"golang.org/x/term"

	"tracenav/internal/config"
	"tracenav/internal/version"
)

var rootCmd = &cobra.Command{
	Use:   "tracenav",
	Short: "Hardware execution trace navigator",
	Long:  `tracenav pages through decoded hardware execution traces of a process, thread by thread`,
	PersistentPreRunE: func(cmd *cobra.Command, args []string) error {
		cfg, err := loadConfig(cmd)
		if err != nil {
			return err
		}
		applyColor(cmd, cfg)
		return nil
	},
}

func main() {
	rootCmd.Version = version.Version

	rootCmd.AddCommand(shellCmd)
	rootCmd.AddCommand(dumpCmd)
	rootCmd.AddCommand(versionCmd)

	rootCmd.PersistentFlags().String("color", "", "colorize output (auto|on|off)")
	rootCmd.PersistentFlags().String("config", "", "path to a tracenav.toml config file")

	if err := rootCmd.Execute(); err != nil {
		os.Exit(1)
	}
}

func loadConfig(cmd *cobra.Command) (config.Config, error) {
	path, _ := cmd.Root().PersistentFlags().GetString("config")
	if path != "" {
		return config.Load(path, true)
	}
	return config.Load("tracenav.toml", false)
}

// applyColor resolves the color mode: the flag wins over the config file,
// auto means "stderr is a terminal".
func applyColor(cmd *cobra.Command, cfg config.Config) {
	mode, _ := cmd.Root().PersistentFlags().GetString("color")
	if mode == "" {
		mode = cfg.Output.Color
	}
	switch mode {
	case "on":
		color.NoColor = false
	case "off":
		color.NoColor = true
	default:
		color.NoColor = !isTerminal(os.Stderr)
	}
}

func isTerminal(f *os.File) bool {
	return term.IsTerminal(int(f.Fd()))
}
