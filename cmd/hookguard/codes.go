package main

import (
	"encoding/json"
	"fmt"
	"os"
	"strings"

	"github.com/fatih/color"
	"github.com/spf13/cobra"

	"hookguard/internal/diag"
)

var codesJSON bool

func init() {
	codesCmd.Flags().BoolVar(&codesJSON, "json", false, "emit machine-readable JSON")
}

var codesCmd = &cobra.Command{
	Use:   "codes",
	Short: "List every diagnostic code the engine can emit",
	Args:  cobra.NoArgs,
	RunE: func(cmd *cobra.Command, args []string) error {
		out := cmd.OutOrStdout()
		codes := diag.Codes()

		if codesJSON {
			type entry struct {
				ID    string `json:"id"`
				Title string `json:"title"`
			}
			entries := make([]entry, 0, len(codes))
			for _, c := range codes {
				if c == diag.UnknownCode {
					continue
				}
				entries = append(entries, entry{ID: c.ID(), Title: c.Title()})
			}
			enc := json.NewEncoder(out)
			enc.SetIndent("", "  ")
			return enc.Encode(entries)
		}

		colorMode, _ := cmd.Flags().GetString("color")
		colored := colorEnabled(colorMode, os.Stdout)
		idColor := color.New(color.FgCyan, color.Bold)

		group := ""
		for _, c := range codes {
			if c == diag.UnknownCode {
				continue
			}
			id := c.ID()
			if g := strings.TrimRight(id, "0123456789"); g != group {
				if group != "" {
					fmt.Fprintln(out)
				}
				group = g
				fmt.Fprintf(out, "%s\n", groupTitle(group))
			}
			if colored {
				id = idColor.Sprint(id)
			}
			fmt.Fprintf(out, "  %s  %s\n", id, c.Title())
		}
		return nil
	},
}

func groupTitle(prefix string) string {
	switch prefix {
	case "DEP":
		return "dependency lists"
	case "STB":
		return "reference stability"
	case "FRQ":
		return "change and recompute frequency"
	case "CTX":
		return "context consumption"
	case "LIF":
		return "lifecycle"
	}
	return prefix
}
