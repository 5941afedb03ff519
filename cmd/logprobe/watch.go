package main

import (
	"context"
	"errors"
	"fmt"
	"io"
	"os/signal"
	"syscall"
	"time"

	tea "github.com/charmbracelet/bubbletea"
	"github.com/rotisserie/eris"
	"github.com/spf13/cobra"
	"go.uber.org/zap"

	"github.com/clarabennett2626/logprobe/internal/probe"
	"github.com/clarabennett2626/logprobe/internal/report"
	"github.com/clarabennett2626/logprobe/internal/source"
	"github.com/clarabennett2626/logprobe/internal/tui"
)

var watchCmd = &cobra.Command{
	Use:   "watch <file>",
	Short: "Re-analyse a log file whenever it changes",
	Long: "Analyses the file once, then again each time writes to it settle. " +
		"Appends are sampled from the end of the file; after truncation or " +
		"rotation the file is sampled from the start.",
	Args: cobra.ExactArgs(1),
	RunE: runWatch,
}

func init() {
	watchCmd.Flags().Bool("tui", false, "show the latest report in an interactive viewer")
	watchCmd.Flags().Duration("debounce", source.DefaultDebounce, "quiet period before re-analysing")
	rootCmd.AddCommand(watchCmd)
}

func runWatch(cmd *cobra.Command, args []string) error {
	ctx, stop := signal.NotifyContext(cmd.Context(), syscall.SIGINT, syscall.SIGTERM)
	defer stop()

	debounce, _ := cmd.Flags().GetDuration("debounce")
	w := source.NewWatcher(args[0], source.WithDebounce(debounce))
	if err := w.Start(ctx); err != nil {
		return err
	}
	defer w.Stop()

	reports := make(chan *probe.Report, 1)
	errs := make(chan error, 1)
	go func() {
		defer close(reports)
		defer close(errs)
		watchLoop(ctx, w, args[0], reports, errs)
	}()

	text := textRenderer(cfg)
	if useTUI, _ := cmd.Flags().GetBool("tui"); useTUI {
		p := tea.NewProgram(tui.NewModel(args[0], text), tea.WithAltScreen(), tea.WithContext(ctx))
		tui.Listen(p, reports, errs)
		if _, err := p.Run(); err != nil && !errors.Is(err, tea.ErrProgramKilled) {
			return eris.Wrap(err, "run viewer")
		}
		return nil
	}
	return printReports(cmd.OutOrStdout(), cmd.ErrOrStderr(), reports, errs, text)
}

// watchLoop sends one report for the initial state and one per settled
// change until ctx is done or the watcher stops.
func watchLoop(ctx context.Context, w *source.Watcher, path string, reports chan<- *probe.Report, errs chan<- error) {
	sampler := source.NewSampler(cfg.SamplerOptions()...)
	run := func(fromStart bool) {
		read := sampler.ReadFileTail
		if fromStart {
			read = sampler.ReadFile
		}
		started := time.Now()
		sample, err := read(path)
		if err == nil {
			var rep *probe.Report
			if rep, err = analyze(ctx, sample); err == nil {
				zap.L().Debug("watch: re-analysed",
					zap.String("path", path),
					zap.Bool("from_start", fromStart),
					zap.Duration("elapsed", time.Since(started)))
				select {
				case reports <- rep:
				case <-ctx.Done():
				}
				return
			}
		}
		if ctx.Err() != nil {
			return
		}
		select {
		case errs <- err:
		case <-ctx.Done():
		}
	}

	run(true)
	for {
		select {
		case <-ctx.Done():
			return
		case c, ok := <-w.Changes():
			if !ok {
				return
			}
			run(c.Truncated || c.Replaced)
		case err, ok := <-w.Errors():
			if !ok {
				return
			}
			zap.L().Warn("watch error", zap.Error(err))
		}
	}
}

func printReports(out, errOut io.Writer, reports <-chan *probe.Report, errs <-chan error, text *report.TextRenderer) error {
	format := report.Format(cfg.Output.Format)
	for reports != nil || errs != nil {
		select {
		case rep, ok := <-reports:
			if !ok {
				reports = nil
				continue
			}
			if format == report.FormatText {
				fmt.Fprintf(out, "==> %s %s\n", time.Now().Format(time.TimeOnly), report.Summary(rep))
			}
			if err := report.Write(out, rep, format, text); err != nil {
				return err
			}
		case err, ok := <-errs:
			if !ok {
				errs = nil
				continue
			}
			fmt.Fprintf(errOut, "logprobe: %v\n", err)
		}
	}
	return nil
}
