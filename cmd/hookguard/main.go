package main

import (
	"os"

	"github.com/spf13/cobra"
	"golang.org/x/term"

	"hookguard/internal/version"
)

var rootCmd = &cobra.Command{
	Use:   "hookguard",
	Short: "Dependency-list misuse diagnostics for hook-style frameworks",
	Long:  `hookguard replays recorded render-cycle traces through the detection engine and reports dependency-list misuse.`,
}

func main() {
	rootCmd.Version = version.Plain()

	rootCmd.AddCommand(replayCmd)
	rootCmd.AddCommand(codesCmd)
	rootCmd.AddCommand(versionCmd)

	rootCmd.PersistentFlags().String("color", "auto", "colorize output (auto|on|off)")
	rootCmd.PersistentFlags().String("config", "", "path to a hookguard.toml tuning file")

	if err := rootCmd.Execute(); err != nil {
		os.Exit(1)
	}
}

// isTerminal reports whether f is attached to a terminal.
func isTerminal(f *os.File) bool {
	return term.IsTerminal(int(f.Fd()))
}

// colorEnabled resolves the tri-state color flag against the output stream.
func colorEnabled(mode string, out *os.File) bool {
	switch mode {
	case "on":
		return true
	case "off":
		return false
	}
	return isTerminal(out)
}
