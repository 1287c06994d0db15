package main

import (
	"context"
	"fmt"
	"io"
	"log"
	"strconv"

	jsoniter "github.com/json-iterator/go"
	"github.com/spf13/cobra"

	"github.com/schollz/beatcrop/internal/audio"
	"github.com/schollz/beatcrop/internal/beatstate"
	"github.com/schollz/beatcrop/internal/config"
	"github.com/schollz/beatcrop/internal/getbpm"
	"github.com/schollz/beatcrop/internal/storage"
	"github.com/schollz/beatcrop/internal/types"
)

var json = jsoniter.ConfigCompatibleWithStandardLibrary

var detectCmd = &cobra.Command{
	Use:   "detect FILE",
	Short: "Detect tempo and beat timestamps (local path or r2://key)",
	Args:  cobra.ExactArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		cfg := loadConfig(cmd)
		ctx, cancel := context.WithTimeout(cmd.Context(), cfg.FetchTimeout)
		defer cancel()

		fetcher, err := newFetcher(ctx, cfg)
		if err != nil {
			return err
		}
		buf, err := fetcher.Fetch(ctx, args[0])
		if err != nil {
			return err
		}
		grid := getbpm.DetectBeatGrid(buf)
		return writeGrid(cmd.OutOrStdout(), gridReport{
			Path:       args[0],
			SampleRate: buf.SampleRate,
			Duration:   buf.Duration,
			BeatGrid:   grid,
		})
	},
}

var gridCmd = &cobra.Command{
	Use:   "grid",
	Short: "Lay a rigid beat grid for --bpm over --duration",
	Args:  cobra.NoArgs,
	RunE: func(cmd *cobra.Command, args []string) error {
		grid := getbpm.BuildRigidGrid(flags.bpm, flags.duration)
		return writeGrid(cmd.OutOrStdout(), gridReport{Duration: flags.duration, BeatGrid: grid})
	},
}

var snapCmd = &cobra.Command{
	Use:   "snap TIME...",
	Short: "Snap times to the grid of --file, or a rigid --bpm/--duration grid",
	Args:  cobra.MinimumNArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		times := make([]float64, len(args))
		for i, a := range args {
			v, err := strconv.ParseFloat(a, 64)
			if err != nil {
				return fmt.Errorf("invalid time %q: %w", a, err)
			}
			times[i] = v
		}

		state := beatstate.New()
		if flags.file != "" {
			cfg := loadConfig(cmd)
			ctx, cancel := context.WithTimeout(cmd.Context(), cfg.FetchTimeout)
			defer cancel()
			fetcher, err := newFetcher(ctx, cfg)
			if err != nil {
				return err
			}
			if _, ok := state.Detect(ctx, fetcher, flags.file); !ok {
				return fmt.Errorf("beat detection failed for %s", flags.file)
			}
		} else {
			state.SetManualBPM(flags.bpm, flags.duration)
		}

		out := cmd.OutOrStdout()
		snapped := make([]snapResult, len(times))
		for i, t := range times {
			snapped[i] = snapResult{Time: t, Snapped: state.Snap(t)}
		}
		if flags.jsonOut {
			return encode(out, snapped)
		}
		for _, s := range snapped {
			fmt.Fprintf(out, "%.4f -> %.4f\n", s.Time, s.Snapped)
		}
		return nil
	},
}

func init() {
	for _, c := range []*cobra.Command{detectCmd, gridCmd, snapCmd} {
		c.Flags().BoolVar(&flags.jsonOut, "json", false, "Write JSON instead of text")
	}
	for _, c := range []*cobra.Command{gridCmd, snapCmd} {
		c.Flags().Float64Var(&flags.bpm, "bpm", types.DefaultBPM, "Tempo of the rigid grid")
		c.Flags().Float64Var(&flags.duration, "duration", 0, "Length of the rigid grid in seconds")
	}
	snapCmd.Flags().StringVarP(&flags.file, "file", "f", "", "Detect the grid from this file instead")
}

type gridReport struct {
	Path       string  `json:"path,omitempty"`
	SampleRate int     `json:"sampleRate,omitempty"`
	Duration   float64 `json:"duration"`
	types.BeatGrid
}

type snapResult struct {
	Time    float64 `json:"time"`
	Snapped float64 `json:"snapped"`
}

func writeGrid(w io.Writer, r gridReport) error {
	if flags.jsonOut {
		return encode(w, r)
	}
	if r.Path != "" {
		fmt.Fprintf(w, "file:  %s\n", r.Path)
	}
	fmt.Fprintf(w, "bpm:   %.2f\n", r.AverageBPM)
	fmt.Fprintf(w, "beats: %d\n", len(r.BeatTimestamps))
	for _, t := range r.BeatTimestamps {
		fmt.Fprintf(w, "%.4f\n", t)
	}
	return nil
}

func encode(w io.Writer, v interface{}) error {
	b, err := json.MarshalIndent(v, "", "  ")
	if err != nil {
		return err
	}
	_, err = fmt.Fprintln(w, string(b))
	return err
}

// newFetcher returns an audio fetcher, backed by R2 when credentials are
// configured.
func newFetcher(ctx context.Context, cfg config.Config) (*audio.Fetcher, error) {
	f := &audio.Fetcher{}
	if !cfg.HasR2() {
		return f, nil
	}
	client, err := storage.NewR2Client(ctx, cfg.R2Credentials())
	if err != nil {
		return nil, fmt.Errorf("r2: %w", err)
	}
	log.Printf("r2 bucket %s configured", cfg.R2Bucket)
	f.Remote = client
	return f, nil
}
