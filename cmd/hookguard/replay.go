package main

import (
	"encoding/json"
	"errors"
	"fmt"
	"os"

	"github.com/spf13/cobra"
	"golang.org/x/sync/errgroup"

	"hookguard"
	"hookguard/internal/config"
	"hookguard/internal/diagfmt"
	"hookguard/internal/trace"
)

var (
	replayJSON      bool
	replayThreshold int
	replayMax       int
)

func init() {
	replayCmd.Flags().BoolVar(&replayJSON, "json", false, "emit machine-readable JSON")
	replayCmd.Flags().IntVar(&replayThreshold, "threshold", 0, "excessive-recompute limit (0 keeps the default)")
	replayCmd.Flags().IntVar(&replayMax, "max-diagnostics", 0, "cap collected diagnostics per trace (0 keeps the default)")
}

var replayCmd = &cobra.Command{
	Use:   "replay <trace-file>...",
	Short: "Replay recorded cycle traces through the detection engine",
	Args:  cobra.MinimumNArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		tuning, err := resolveTuning(cmd)
		if err != nil {
			return err
		}
		if replayThreshold > 0 {
			tuning.RecomputeThreshold = replayThreshold
		}
		if replayMax > 0 {
			tuning.MaxDiagnostics = replayMax
		}

		// Traces are independent units: replay them in parallel. Each
		// replay owns its trackers and dedup store; only the output pass
		// below is sequential.
		results := make([]*hookguard.ReplayResult, len(args))
		var g errgroup.Group
		for i, path := range args {
			i, path := i, path
			g.Go(func() error {
				tr, err := trace.Load(path)
				if err != nil {
					return err
				}
				results[i] = hookguard.Replay(tr, tuning)
				return nil
			})
		}
		if err := g.Wait(); err != nil {
			return err
		}

		colorMode, _ := cmd.Flags().GetString("color")
		if colorMode == "auto" && tuning.Color != "" {
			colorMode = tuning.Color
		}

		out := cmd.OutOrStdout()
		warned := false
		if replayJSON {
			// One document for the whole invocation; a stream of documents
			// breaks most JSON consumers.
			doc := make([]traceReportJSON, 0, len(results))
			for i, res := range results {
				doc = append(doc, traceReportJSON{
					File:   args[i],
					Unit:   res.Unit,
					Cycles: res.Cycles,
					Sites:  res.Sites,
					Report: diagfmt.BuildOutput(res.Bag.Items(), diagfmt.JSONOpts{}),
				})
				if res.Bag.HasWarnings() {
					warned = true
				}
			}
			enc := json.NewEncoder(out)
			enc.SetIndent("", "  ")
			if err := enc.Encode(doc); err != nil {
				return err
			}
		} else {
			opts := diagfmt.DefaultOptions()
			opts.Color = colorEnabled(colorMode, os.Stdout)
			for i, res := range results {
				fmt.Fprintf(out, "%s: unit %q, %d cycles, %d sites, %d findings\n",
					args[i], res.Unit, res.Cycles, res.Sites, res.Bag.Len())
				diagfmt.Pretty(out, res.Bag.Items(), opts)
				if res.Bag.HasWarnings() {
					warned = true
				}
			}
		}
		if warned {
			return errors.New("issues detected")
		}
		return nil
	},
}

// traceReportJSON is one replayed trace file in the aggregated document.
type traceReportJSON struct {
	File   string         `json:"file"`
	Unit   string         `json:"unit"`
	Cycles int            `json:"cycles"`
	Sites  int            `json:"sites"`
	Report diagfmt.Output `json:"report"`
}

// resolveTuning loads the --config file when given, otherwise picks up a
// hookguard.toml in the working directory, otherwise defaults.
func resolveTuning(cmd *cobra.Command) (config.Tuning, error) {
	path, _ := cmd.Flags().GetString("config")
	if path != "" {
		return config.LoadTuning(path)
	}
	if _, err := os.Stat("hookguard.toml"); err == nil {
		return config.LoadTuning("hookguard.toml")
	}
	return config.DefaultTuning(), nil
}
