package main

import (
	"context"
	"fmt"
	"log"
	"os"
	"path/filepath"

	tea "github.com/charmbracelet/bubbletea"
	"github.com/hypebeast/go-osc/osc"
	"github.com/spf13/cobra"

	"github.com/schollz/beatcrop/internal/beatstate"
	"github.com/schollz/beatcrop/internal/config"
	"github.com/schollz/beatcrop/internal/getbpm"
	"github.com/schollz/beatcrop/internal/input"
	"github.com/schollz/beatcrop/internal/model"
	"github.com/schollz/beatcrop/internal/playback"
	"github.com/schollz/beatcrop/internal/storage"
	"github.com/schollz/beatcrop/internal/types"
	"github.com/schollz/beatcrop/internal/views"
)

var editCmd = &cobra.Command{
	Use:   "edit FILE",
	Short: "Open the interactive crop editor",
	Args:  cobra.ExactArgs(1),
	RunE:  runEditor,
}

func init() {
	f := editCmd.Flags()
	f.StringVar(&flags.oscHost, "osc-host", "127.0.0.1", "Audio engine OSC host")
	f.IntVar(&flags.oscPort, "osc-port", 57120, "Audio engine OSC port")
	f.IntVar(&flags.oscListenPort, "osc-listen-port", 57121, "Port for playhead reports from the engine")
	f.StringVarP(&flags.mode, "mode", "m", "precede", "Context mode: precede, continuation or inpaint")
	f.Float64VarP(&flags.contextLength, "context", "c", 4.0, "Initial context length in seconds")
	f.Float64Var(&flags.startTrim, "start-trim", 0, "Earliest usable time in seconds")
	f.Float64Var(&flags.stopTrim, "stop-trim", 0, "Latest usable time in seconds (0 uses the full file)")
}

// editorApp wraps the model and implements the tea.Model interface
type editorApp struct {
	model  *model.Model
	editor *input.Editor
	view   *views.Editor
}

func (a *editorApp) Init() tea.Cmd {
	return a.editor.DetectCmd()
}

func (a *editorApp) Update(msg tea.Msg) (tea.Model, tea.Cmd) {
	return a, a.editor.Update(msg)
}

func (a *editorApp) View() string {
	return a.view.Render(a.model, a.editor.State())
}

func runEditor(cmd *cobra.Command, args []string) error {
	if logFile != nil {
		defer logFile.Close()
	}
	cfg := loadConfig(cmd)
	mode, err := types.ParseMode(cfg.Mode)
	if err != nil {
		return err
	}

	path := args[0]
	local, cleanup, err := localCopy(cmd.Context(), cfg, path)
	if err != nil {
		return err
	}
	defer cleanup()

	duration, sampleRate, channels, err := getbpm.Length(local)
	if err != nil {
		return err
	}
	log.Printf("%s: %.3fs, %d Hz, %d channels", path, duration, sampleRate, channels)

	beats := beatstate.New()
	unsubscribe := beats.Subscribe(func(s beatstate.Snapshot) {
		log.Printf("beat grid now %.2f bpm, %d beats, snap=%v", s.Grid.AverageBPM, len(s.Grid.BeatTimestamps), s.SnapToBeat)
	})
	defer unsubscribe()

	m := model.NewModel(beats)
	stop := flags.stopTrim
	if !(stop > 0) {
		stop = duration
	}
	m.Load(path, types.LoadedSample{Duration: duration, StartTrim: flags.startTrim, StopTrim: stop})
	m.SetContextLength(cfg.ContextLength)
	m.SetMode(mode)

	engine := playback.NewOSCEngine(cfg.OSCHost, cfg.OSCPort)
	transport := &playback.Transport{Engine: engine, Snapper: beats, Clock: &playback.Clock{}}

	fetcher, err := newFetcher(cmd.Context(), cfg)
	if err != nil {
		return err
	}
	editor, err := input.NewEditor(m, transport, fetcher)
	if err != nil {
		return err
	}
	editor.Source = local
	editor.WaveformLocal = local
	editor.FetchTimeout = cfg.FetchTimeout

	app := &editorApp{model: m, editor: editor, view: views.NewEditor()}
	p := tea.NewProgram(app, tea.WithAltScreen(), tea.WithMouseCellMotion(), tea.WithReportFocus())

	d := osc.NewStandardDispatcher()
	d.AddMsgHandler("/playhead", func(msg *osc.Message) {
		if t, ok := playback.ParsePlayhead(msg); ok {
			p.Send(input.PlayheadMsg{Time: t})
		}
	})
	server := &osc.Server{Addr: fmt.Sprintf(":%d", cfg.OSCListenPort), Dispatcher: d}
	go func() {
		log.Printf("Starting OSC server on port %d", cfg.OSCListenPort)
		if err := server.ListenAndServe(); err != nil {
			log.Printf("Error starting OSC server: %v", err)
		}
	}()

	if _, err := p.Run(); err != nil {
		return fmt.Errorf("editor: %w", err)
	}
	crop := m.CropRange()
	fmt.Fprintf(cmd.OutOrStdout(), "crop %s context %.3fs mode %s\n", crop, m.ContextLength(), m.Mode())
	return nil
}

// localCopy returns a local file for path, downloading r2:// objects to a
// temporary directory that cleanup removes.
func localCopy(ctx context.Context, cfg config.Config, path string) (string, func(), error) {
	key, ok := storage.ObjectKey(path)
	if !ok {
		return path, func() {}, nil
	}
	client, err := storage.NewR2Client(ctx, cfg.R2Credentials())
	if err != nil {
		return "", nil, fmt.Errorf("%s: %w", path, err)
	}
	dir, err := os.MkdirTemp("", "beatcrop-")
	if err != nil {
		return "", nil, err
	}
	cleanup := func() { os.RemoveAll(dir) }

	ctx, cancel := context.WithTimeout(ctx, cfg.FetchTimeout)
	defer cancel()
	dst := filepath.Join(dir, filepath.Base(key))
	if err := client.DownloadToFile(ctx, key, dst); err != nil {
		cleanup()
		return "", nil, err
	}
	return dst, cleanup, nil
}
