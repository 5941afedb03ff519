package main

import (
	"os"

	"github.com/rotisserie/eris"
	"github.com/spf13/cobra"
	"go.uber.org/zap"

	"github.com/clarabennett2626/logprobe/internal/config"
	"github.com/clarabennett2626/logprobe/internal/report"
)

var (
	cfg        *config.Config
	configFile string
)

var rootCmd = &cobra.Command{
	Use:   "logprobe [file]",
	Short: "Infer the structure of a log file",
	Long: "Samples a log file or stdin, decides between JSON lines and delimited text, " +
		"finds the column layout and which column holds the date, status, location, " +
		"thread and message, and lists the exception traces it contains.",
	Args:          cobra.MaximumNArgs(1),
	SilenceUsage:  true,
	SilenceErrors: true,
	PersistentPreRunE: func(cmd *cobra.Command, args []string) error {
		c, err := config.Load(configFile)
		if err != nil {
			return eris.Wrap(err, "load config")
		}
		applyFlags(cmd, c)
		if err := c.Validate(); err != nil {
			return err
		}
		cfg = c

		if err := config.InitLogger(cfg.Log); err != nil {
			return eris.Wrap(err, "init logger")
		}
		return nil
	},
	PersistentPostRun: func(cmd *cobra.Command, args []string) {
		_ = zap.L().Sync()
	},
	RunE: runAnalyze,
}

func init() {
	pf := rootCmd.PersistentFlags()
	pf.StringVar(&configFile, "config", "", "config file (default ./logprobe.yaml or ~/.config/logprobe/logprobe.yaml)")
	pf.Int("max-lines", 0, "maximum lines to sample")
	pf.Int("min-line-length", 0, "drop lines shorter than this many characters")
	pf.Int("min-lines", 0, "smallest sample that is analysed")
	pf.String("charset", "", "input encoding, e.g. utf-8, latin1, windows-1252")
	pf.StringP("output", "o", "", "output format: text, json or yaml")
	pf.String("theme", "", "text theme: dark, light or plain")
	pf.Int("width", 0, "truncate text output to this many columns")
	pf.Int("workers", 0, "parallel strategy evaluations")
	pf.String("log-level", "", "log level: debug, info, warn, error")

	addAnalyzeFlags(rootCmd)
}

// applyFlags overrides configuration with the flags the user set.
func applyFlags(cmd *cobra.Command, c *config.Config) {
	f := cmd.Flags()
	if f.Changed("max-lines") {
		c.Sample.MaxLines, _ = f.GetInt("max-lines")
	}
	if f.Changed("min-line-length") {
		c.Sample.MinLineLength, _ = f.GetInt("min-line-length")
	}
	if f.Changed("min-lines") {
		c.Sample.MinLines, _ = f.GetInt("min-lines")
	}
	if f.Changed("charset") {
		c.Sample.Charset, _ = f.GetString("charset")
	}
	if f.Changed("output") {
		c.Output.Format, _ = f.GetString("output")
	}
	if f.Changed("theme") {
		c.Output.Theme, _ = f.GetString("theme")
	}
	if f.Changed("width") {
		c.Output.Width, _ = f.GetInt("width")
	}
	if f.Changed("workers") {
		c.Analysis.Workers, _ = f.GetInt("workers")
	}
	if f.Changed("log-level") {
		c.Log.Level, _ = f.GetString("log-level")
	}
}

func textRenderer(c *config.Config) *report.TextRenderer {
	theme, _ := report.ParseTheme(c.Output.Theme)
	tc := report.DefaultTextConfig()
	tc.Theme = theme
	tc.Width = c.Output.Width
	return report.NewTextRenderer(tc)
}

func main() {
	if err := rootCmd.Execute(); err != nil {
		rootCmd.PrintErrln("Error:", err)
		os.Exit(1)
	}
}
