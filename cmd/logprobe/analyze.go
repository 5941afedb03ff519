package main

import (
	"context"
	"os/signal"
	"syscall"

	tea "github.com/charmbracelet/bubbletea"
	"github.com/rotisserie/eris"
	"github.com/spf13/cobra"

	"github.com/clarabennett2626/logprobe/internal/probe"
	"github.com/clarabennett2626/logprobe/internal/report"
	"github.com/clarabennett2626/logprobe/internal/source"
	"github.com/clarabennett2626/logprobe/internal/tui"
)

// errNoInput is returned when there is neither a file argument nor piped stdin.
var errNoInput = eris.New("no input: pass a log file or pipe logs on stdin")

// stdinIsPipe is replaced in tests.
var stdinIsPipe = source.IsPipe

var analyzeCmd = &cobra.Command{
	Use:   "analyze [file]",
	Short: "Analyse a log file or stdin and print the inferred structure",
	Example: `  logprobe analyze /var/log/app.log
  kubectl logs pod | logprobe analyze -o json
  logprobe analyze --tail --tui app.log`,
	Args: cobra.MaximumNArgs(1),
	RunE: runAnalyze,
}

func init() {
	addAnalyzeFlags(analyzeCmd)
	rootCmd.AddCommand(analyzeCmd)
}

func addAnalyzeFlags(cmd *cobra.Command) {
	cmd.Flags().Bool("tui", false, "browse the report in an interactive viewer")
	cmd.Flags().Bool("tail", false, "sample the last lines of the file instead of the first")
}

func runAnalyze(cmd *cobra.Command, args []string) error {
	ctx, stop := signal.NotifyContext(cmd.Context(), syscall.SIGINT, syscall.SIGTERM)
	defer stop()

	tail, _ := cmd.Flags().GetBool("tail")
	sampler := source.NewSampler(append(cfg.SamplerOptions(), source.WithStdin(cmd.InOrStdin()))...)

	var (
		sample source.Sample
		err    error
	)
	switch {
	case len(args) == 1 && tail:
		sample, err = sampler.ReadFileTail(args[0])
	case len(args) == 1:
		sample, err = sampler.ReadFile(args[0])
	case stdinIsPipe():
		sample, err = sampler.ReadStdin()
	default:
		return errNoInput
	}
	if err != nil {
		return err
	}

	rep, err := analyze(ctx, sample)
	if err != nil {
		return err
	}

	text := textRenderer(cfg)
	if useTUI, _ := cmd.Flags().GetBool("tui"); useTUI {
		p := tea.NewProgram(tui.NewModelWithReport(rep, text), tea.WithAltScreen(), tea.WithContext(ctx))
		if _, err := p.Run(); err != nil {
			return eris.Wrap(err, "run viewer")
		}
		return nil
	}
	return report.Write(cmd.OutOrStdout(), rep, report.Format(cfg.Output.Format), text)
}

func analyze(ctx context.Context, sample source.Sample) (*probe.Report, error) {
	return probe.Run(ctx, sample, cfg.ProbeOptions())
}
