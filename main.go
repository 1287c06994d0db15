package main

import (
	"fmt"
	"io"
	"log"
	"os"

	tea "github.com/charmbracelet/bubbletea"
	"github.com/spf13/cobra"

	"github.com/schollz/beatcrop/internal/config"
)

var (
	Version = "dev"

	// Command-line configuration. Flags left unset fall back to the
	// environment (see internal/config).
	flags struct {
		debug         string
		oscHost       string
		oscPort       int
		oscListenPort int
		mode          string
		contextLength float64
		jsonOut       bool
		bpm           float64
		duration      float64
		file          string
		startTrim     float64
		stopTrim      float64
	}
)

var rootCmd = &cobra.Command{
	Use:   "beatcrop",
	Short: "Beat-synchronized crop editor for audio clips",
	Long: `beatcrop detects the beat grid of an audio clip and lets you crop it
with edges that snap to beats.

Commands:
• detect: estimate tempo and beat timestamps of an audio file (wav, aiff, mp3, ogg, flac)
• grid: lay a rigid beat grid for a tempo and duration
• snap: snap times to a beat grid
• edit: interactive terminal crop editor`,
	Version:           Version,
	PersistentPreRunE: setupLogging,
	SilenceUsage:      true,
}

func init() {
	rootCmd.PersistentFlags().StringVarP(&flags.debug, "log", "l", "",
		"Write debug logs to specified file (empty disables)")
	rootCmd.AddCommand(detectCmd, gridCmd, snapCmd, editCmd)
}

func main() {
	if err := rootCmd.Execute(); err != nil {
		fmt.Fprintln(os.Stderr, err)
		os.Exit(1)
	}
}

var logFile *os.File

func setupLogging(cmd *cobra.Command, args []string) error {
	if flags.debug == "" {
		log.SetOutput(io.Discard)
		return nil
	}
	f, err := tea.LogToFile(flags.debug, "debug")
	if err != nil {
		return fmt.Errorf("open log: %w", err)
	}
	logFile = f
	log.SetFlags(log.LstdFlags | log.Lshortfile)
	log.Printf("beatcrop %s: %s", Version, cmd.CommandPath())
	return nil
}

// loadConfig reads the environment and applies any flags set on cmd.
func loadConfig(cmd *cobra.Command) config.Config {
	cfg := config.Load()
	fs := cmd.Flags()
	if fs.Changed("osc-host") {
		cfg.OSCHost = flags.oscHost
	}
	if fs.Changed("osc-port") {
		cfg.OSCPort = flags.oscPort
	}
	if fs.Changed("osc-listen-port") {
		cfg.OSCListenPort = flags.oscListenPort
	}
	if fs.Changed("mode") {
		cfg.Mode = flags.mode
	}
	if fs.Changed("context") {
		cfg.ContextLength = flags.contextLength
	}
	return cfg
}
