package main

import (
	"context"
	"encoding/json"
	"fmt"
	"log/slog"
	"os"
	"path/filepath"
	"strconv"
	"sync"

	"github.com/spf13/cobra"
	"github.com/spf13/viper"
	"golang.org/x/sync/errgroup"

	"github.com/haic-lab/haicmetrics"
	"github.com/haic-lab/haicmetrics/artifact"
	"github.com/haic-lab/haicmetrics/internal/profile"
	"github.com/haic-lab/haicmetrics/outcome"
	"github.com/haic-lab/haicmetrics/report"
	"github.com/haic-lab/haicmetrics/store"
	"github.com/haic-lab/haicmetrics/window"
)

var version = "0.4.0"

var (
	instanceProfile *profile.Profile

	rootCmd = &cobra.Command{
		Use:   "haicmetrics",
		Short: "Compute human-AI collaboration metrics from decision logs",
	}

	computeCmd = &cobra.Command{
		Use:   "compute <artifact.json> [more artifacts...]",
		Short: "Compute the metric vector for one or more decision artifacts",
		Args:  cobra.MinimumNArgs(1),
	}

	reportCmd = &cobra.Command{
		Use:   "report <artifact.json>",
		Short: "Render a markdown report for a decision artifact",
		Args:  cobra.ExactArgs(1),
	}

	summariesCmd = &cobra.Command{
		Use:   "summaries",
		Short: "List saved session summaries",
		Args:  cobra.NoArgs,
	}
)

func init() {
	// RunE is assigned here rather than in the literals above to avoid an
	// initialization cycle between the command variables and their run funcs.
	computeCmd.RunE = func(cmd *cobra.Command, args []string) error {
		return runCompute(cmd.Context(), args)
	}
	reportCmd.RunE = func(cmd *cobra.Command, args []string) error {
		return runReport(cmd.Context(), args[0])
	}
	summariesCmd.RunE = func(cmd *cobra.Command, args []string) error {
		return runSummaries(cmd.Context())
	}

	rootCmd.PersistentFlags().String("mode", "demo", `mode of the toolchain, can be "prod" or "dev" or "demo"`)
	rootCmd.PersistentFlags().String("data", ".", "data directory for logs and the summary database")
	rootCmd.PersistentFlags().String("metric-profile", "core", `metric profile, "core" or "full"`)
	rootCmd.PersistentFlags().Float64("rt-max", 0, "cognitive load saturation point in seconds (0 keeps the default)")
	rootCmd.PersistentFlags().Float64("baseline", 0, "baseline session duration in seconds for excess latency (0 disables)")
	rootCmd.PersistentFlags().String("window-basis", "", `evaluation window basis, "relative" or "absolute"`)
	rootCmd.PersistentFlags().String("window-start", "", "window start (offset seconds, epoch seconds, or ISO time, per basis)")
	rootCmd.PersistentFlags().String("window-end", "", "window end (offset seconds, epoch seconds, or ISO time, per basis)")
	rootCmd.PersistentFlags().Float64("window-last", 0, "trailing window length in seconds (relative basis only)")

	computeCmd.Flags().Bool("save", false, "persist computed summaries to the summary database")
	computeCmd.Flags().Bool("by-agent", false, "also compute per-agent metric vectors")
	reportCmd.Flags().String("out", "", "write the report to a file instead of stdout")
	summariesCmd.Flags().String("run-id", "", "filter by run id")
	summariesCmd.Flags().String("pilot-tag", "", "filter by pilot tag")
	summariesCmd.Flags().Int("limit", 20, "maximum number of summaries to list")

	if err := viper.BindPFlags(rootCmd.PersistentFlags()); err != nil {
		panic(err)
	}
	viper.SetEnvPrefix("haic")
	viper.AutomaticEnv()

	rootCmd.AddCommand(computeCmd, reportCmd, summariesCmd)
	rootCmd.PersistentPreRunE = func(cmd *cobra.Command, args []string) error {
		instanceProfile = &profile.Profile{
			Mode:          viper.GetString("mode"),
			Data:          viper.GetString("data"),
			MetricProfile: viper.GetString("metric-profile"),
			Version:       version,
		}
		instanceProfile.FromEnv()
		if viper.GetString("metric-profile") != "" {
			instanceProfile.MetricProfile = viper.GetString("metric-profile")
		}
		if v := viper.GetFloat64("rt-max"); v > 0 {
			instanceProfile.RTMaxS = v
		}
		if v := viper.GetFloat64("baseline"); v > 0 {
			instanceProfile.BaselineS = &v
		}
		return instanceProfile.Validate()
	}
}

func main() {
	if err := rootCmd.Execute(); err != nil {
		os.Exit(1)
	}
}

// windowSpecFromFlags builds a window spec from the persistent flags, or nil
// when no basis was requested. Bounds the user did not set stay nil so the
// resolver reports the missing field instead of a silent [0,0] window.
func windowSpecFromFlags() *window.Spec {
	basis := viper.GetString("window-basis")
	if basis == "" {
		return nil
	}
	spec := &window.Spec{Basis: basis}
	flags := rootCmd.PersistentFlags()
	if flags.Changed("window-last") {
		spec.Last = viper.GetFloat64("window-last")
		return spec
	}
	if flags.Changed("window-start") {
		spec.Start = windowBound(viper.GetString("window-start"))
	}
	if flags.Changed("window-end") {
		spec.End = windowBound(viper.GetString("window-end"))
	}
	return spec
}

// windowBound keeps numeric bounds numeric; anything else passes through as
// an ISO string for the absolute basis.
func windowBound(raw string) any {
	if f, err := strconv.ParseFloat(raw, 64); err == nil {
		return f
	}
	return raw
}

func computeOptions() *haicmetrics.Options {
	opts := haicmetrics.DefaultOptions()
	opts.Profile = instanceProfile.MetricProfile
	opts.RTMaxS = instanceProfile.RTMaxS
	opts.BaselineS = instanceProfile.BaselineS
	opts.Window = windowSpecFromFlags()
	opts.Vocabulary = outcome.DefaultVocabulary()
	return opts
}

type computeOutput struct {
	Artifact string                        `json:"artifact"`
	Metrics  map[string]float64            `json:"metrics"`
	ByAgent  map[string]map[string]float64 `json:"by_agent,omitempty"`
	Window   window.Summary                `json:"window_summary"`
	Warnings []string                      `json:"warnings"`
}

func runCompute(ctx context.Context, paths []string) error {
	logger := slog.Default()
	opts := computeOptions()
	save, _ := computeCmd.Flags().GetBool("save")
	byAgent, _ := computeCmd.Flags().GetBool("by-agent")

	var summaryStore *store.Store
	if save {
		st, err := store.New(ctx, instanceProfile.DSN)
		if err != nil {
			return err
		}
		defer st.Close()
		summaryStore = st
	}

	outputs := make([]*computeOutput, len(paths))
	var mu sync.Mutex

	g, gctx := errgroup.WithContext(ctx)
	for i, path := range paths {
		i, path := i, path
		g.Go(func() error {
			art, err := artifact.LoadDecisionsArtifact(path)
			if err != nil {
				return err
			}
			result, err := haicmetrics.Compute(art, opts)
			if err != nil {
				return err
			}
			out := &computeOutput{
				Artifact: path,
				Metrics:  result.Metrics,
				Window:   result.WindowSummary,
				Warnings: result.Warnings,
			}
			if byAgent {
				out.ByAgent, err = haicmetrics.ComputeByAgent(art, opts)
				if err != nil {
					return err
				}
			}
			outputs[i] = out

			if summaryStore != nil {
				windowJSON, err := json.Marshal(result.WindowSummary)
				if err != nil {
					return err
				}
				mu.Lock()
				_, err = summaryStore.SaveSummary(gctx, &store.SessionSummary{
					RunID:        art.RunID,
					SessionID:    art.SessionID,
					PilotTag:     instanceProfile.PilotTag,
					Profile:      opts.Profile,
					Metrics:      result.Metrics,
					WindowJSON:   string(windowJSON),
					WarningCount: len(result.Warnings),
				})
				mu.Unlock()
				if err != nil {
					return err
				}
				logger.Info("saved session summary",
					slog.String("artifact", path),
					slog.String("run_id", art.RunID))
			}
			return nil
		})
	}
	if err := g.Wait(); err != nil {
		return err
	}

	enc := json.NewEncoder(os.Stdout)
	enc.SetIndent("", "  ")
	for _, out := range outputs {
		if err := enc.Encode(out); err != nil {
			return err
		}
	}
	return nil
}

func runReport(ctx context.Context, path string) error {
	art, err := artifact.LoadDecisionsArtifact(path)
	if err != nil {
		return err
	}
	opts := computeOptions()
	result, err := haicmetrics.Compute(art, opts)
	if err != nil {
		return err
	}

	md, err := report.Render(result, art, report.Info{
		ArtifactPath: filepath.Base(path),
		Version:      version,
		RTMaxS:       opts.RTMaxS,
	})
	if err != nil {
		return err
	}

	if out, _ := reportCmd.Flags().GetString("out"); out != "" {
		return os.WriteFile(out, []byte(md), 0644)
	}
	_, err = fmt.Fprint(os.Stdout, md)
	return err
}

func runSummaries(ctx context.Context) error {
	st, err := store.New(ctx, instanceProfile.DSN)
	if err != nil {
		return err
	}
	defer st.Close()

	find := &store.FindSessionSummary{}
	if v, _ := summariesCmd.Flags().GetString("run-id"); v != "" {
		find.RunID = &v
	}
	if v, _ := summariesCmd.Flags().GetString("pilot-tag"); v != "" {
		find.PilotTag = &v
	}
	find.Limit, _ = summariesCmd.Flags().GetInt("limit")

	summaries, err := st.ListSummaries(ctx, find)
	if err != nil {
		return err
	}

	enc := json.NewEncoder(os.Stdout)
	enc.SetIndent("", "  ")
	return enc.Encode(summaries)
}
