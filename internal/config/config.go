// Package config loads logprobe settings from an optional YAML file, the
// LOGPROBE_* environment and built-in defaults, and sets up the global zap
// logger.
package config

import (
	"fmt"
	"os"
	"path/filepath"
	"slices"
	"strings"

	"github.com/rotisserie/eris"
	"github.com/spf13/viper"
	"go.uber.org/zap"
	"go.uber.org/zap/zapcore"

	"github.com/clarabennett2626/logprobe/internal/probe"
	"github.com/clarabennett2626/logprobe/internal/source"
	"github.com/clarabennett2626/logprobe/internal/strategy"
)

// Output formats and themes accepted by Validate.
var (
	OutputFormats = []string{"text", "json", "yaml"}
	Themes        = []string{"dark", "light", "plain"}
)

// Config is the top-level configuration.
type Config struct {
	Sample   SampleConfig     `yaml:"sample" mapstructure:"sample"`
	Analysis AnalysisConfig   `yaml:"analysis" mapstructure:"analysis"`
	Scoring  strategy.Weights `yaml:"scoring" mapstructure:"scoring"`
	Output   OutputConfig     `yaml:"output" mapstructure:"output"`
	Log      LogConfig        `yaml:"log" mapstructure:"log"`
}

// SampleConfig bounds what the sampler reads.
type SampleConfig struct {
	MaxLines      int    `yaml:"max_lines" mapstructure:"max_lines"`
	MinLineLength int    `yaml:"min_line_length" mapstructure:"min_line_length"`
	Charset       string `yaml:"charset" mapstructure:"charset"`
	// MinLines is the smallest sample that is analysed at all.
	MinLines int `yaml:"min_lines" mapstructure:"min_lines"`
}

// AnalysisConfig holds the inference thresholds.
type AnalysisConfig struct {
	JSONThreshold   float64 `yaml:"json_threshold" mapstructure:"json_threshold"`
	ConfidenceFloor float64 `yaml:"confidence_floor" mapstructure:"confidence_floor"`
	Workers         int     `yaml:"workers" mapstructure:"workers"`
}

// OutputConfig configures report rendering.
type OutputConfig struct {
	Format string `yaml:"format" mapstructure:"format"`
	Theme  string `yaml:"theme" mapstructure:"theme"`
	Width  int    `yaml:"width" mapstructure:"width"`
}

// LogConfig configures logging.
type LogConfig struct {
	Level  string `yaml:"level" mapstructure:"level"`
	Format string `yaml:"format" mapstructure:"format"`
}

// Load reads configuration from file and environment. An empty file means
// logprobe.yaml is looked up in the working directory and in
// $HOME/.config/logprobe; a missing file there is not an error. An explicit
// file must exist.
func Load(file string) (*Config, error) {
	v := viper.New()

	if file != "" {
		v.SetConfigFile(file)
	} else {
		v.SetConfigName("logprobe")
		v.SetConfigType("yaml")
		v.AddConfigPath(".")
		if home, err := os.UserHomeDir(); err == nil {
			v.AddConfigPath(filepath.Join(home, ".config", "logprobe"))
		}
	}

	v.SetEnvPrefix("LOGPROBE")
	v.SetEnvKeyReplacer(strings.NewReplacer(".", "_"))
	v.AutomaticEnv()

	setDefaults(v)

	if err := v.ReadInConfig(); err != nil {
		if _, ok := err.(viper.ConfigFileNotFoundError); !ok || file != "" {
			return nil, eris.Wrap(err, "config: read file")
		}
	}

	var cfg Config
	if err := v.Unmarshal(&cfg); err != nil {
		return nil, eris.Wrap(err, "config: unmarshal")
	}
	return &cfg, nil
}

func setDefaults(v *viper.Viper) {
	v.SetDefault("sample.max_lines", source.DefaultMaxLines)
	v.SetDefault("sample.min_line_length", source.DefaultMinLineLength)
	v.SetDefault("sample.charset", source.DefaultCharset)
	v.SetDefault("sample.min_lines", probe.DefaultMinLines)

	defaults := probe.DefaultOptions()
	v.SetDefault("analysis.json_threshold", defaults.JSONThreshold)
	v.SetDefault("analysis.confidence_floor", defaults.Strategy.Floor)
	v.SetDefault("analysis.workers", 4)

	w := strategy.DefaultWeights()
	v.SetDefault("scoring.coverage", w.Coverage)
	v.SetDefault("scoring.support", w.Support)
	v.SetDefault("scoring.role_coverage", w.RoleCoverage)
	v.SetDefault("scoring.tailness", w.Tailness)
	v.SetDefault("scoring.stability", w.Stability)
	v.SetDefault("scoring.info_gain", w.InfoGain)
	v.SetDefault("scoring.single_column_factor", w.SingleColumnFactor)
	v.SetDefault("scoring.wide_columns", w.WideColumns)
	v.SetDefault("scoring.wide_tailness", w.WideTailness)
	v.SetDefault("scoring.wide_factor", w.WideFactor)
	v.SetDefault("scoring.fixed_bonus", w.FixedBonus)
	v.SetDefault("scoring.fixed_min_coverage", w.FixedMinCoverage)
	v.SetDefault("scoring.fixed_min_support", w.FixedMinSupport)

	v.SetDefault("output.format", "text")
	v.SetDefault("output.theme", "dark")
	v.SetDefault("output.width", 120)

	v.SetDefault("log.level", "warn")
	v.SetDefault("log.format", "console")
}

// Validate checks that the configuration is internally consistent.
func (c *Config) Validate() error {
	var errs []string

	if c.Sample.MaxLines <= 0 {
		errs = append(errs, "sample.max_lines must be > 0")
	}
	if c.Sample.MinLineLength < 0 {
		errs = append(errs, "sample.min_line_length must be >= 0")
	}
	if c.Sample.MinLines < 1 {
		errs = append(errs, "sample.min_lines must be >= 1")
	}
	if err := source.CheckCharset(c.Sample.Charset); err != nil {
		errs = append(errs, fmt.Sprintf("sample.charset %q is not supported", c.Sample.Charset))
	}

	if c.Analysis.JSONThreshold <= 0 || c.Analysis.JSONThreshold > 1 {
		errs = append(errs, "analysis.json_threshold must be in (0, 1]")
	}
	if c.Analysis.ConfidenceFloor <= 0 || c.Analysis.ConfidenceFloor >= 1 {
		errs = append(errs, "analysis.confidence_floor must be in (0, 1)")
	}
	if c.Analysis.Workers < 0 {
		errs = append(errs, "analysis.workers must be >= 0")
	}

	w := c.Scoring
	unit := []struct {
		name  string
		value float64
	}{
		{"scoring.coverage", w.Coverage},
		{"scoring.support", w.Support},
		{"scoring.role_coverage", w.RoleCoverage},
		{"scoring.tailness", w.Tailness},
		{"scoring.stability", w.Stability},
		{"scoring.info_gain", w.InfoGain},
		{"scoring.single_column_factor", w.SingleColumnFactor},
		{"scoring.wide_tailness", w.WideTailness},
		{"scoring.wide_factor", w.WideFactor},
		{"scoring.fixed_bonus", w.FixedBonus},
		{"scoring.fixed_min_coverage", w.FixedMinCoverage},
		{"scoring.fixed_min_support", w.FixedMinSupport},
	}
	for _, u := range unit {
		if u.value < 0 || u.value > 1 {
			errs = append(errs, fmt.Sprintf("%s must be in [0, 1]", u.name))
		}
	}
	if w.WideColumns < 2 {
		errs = append(errs, "scoring.wide_columns must be >= 2")
	}

	if !slices.Contains(OutputFormats, c.Output.Format) {
		errs = append(errs, fmt.Sprintf("output.format must be one of %s", strings.Join(OutputFormats, ", ")))
	}
	if !slices.Contains(Themes, c.Output.Theme) {
		errs = append(errs, fmt.Sprintf("output.theme must be one of %s", strings.Join(Themes, ", ")))
	}
	if c.Output.Width < 40 {
		errs = append(errs, "output.width must be >= 40")
	}

	if len(errs) > 0 {
		return eris.Errorf("config: validation failed: %s", strings.Join(errs, "; "))
	}
	return nil
}

// SamplerOptions returns the sampler settings.
func (c *Config) SamplerOptions() []source.Option {
	return []source.Option{
		source.WithMaxLines(c.Sample.MaxLines),
		source.WithMinLineLength(c.Sample.MinLineLength),
		source.WithCharset(c.Sample.Charset),
	}
}

// ProbeOptions returns the analysis settings.
func (c *Config) ProbeOptions() probe.Options {
	return probe.Options{
		MinLines:      c.Sample.MinLines,
		JSONThreshold: c.Analysis.JSONThreshold,
		Strategy: strategy.Options{
			Weights: c.Scoring,
			Floor:   c.Analysis.ConfidenceFloor,
			Workers: c.Analysis.Workers,
		},
	}
}

// InitLogger initializes the global zap logger. Logs go to stderr so that
// reports written to stdout stay clean.
func InitLogger(cfg LogConfig) error {
	var zapCfg zap.Config
	if cfg.Format == "json" {
		zapCfg = zap.NewProductionConfig()
	} else {
		zapCfg = zap.NewDevelopmentConfig()
	}
	zapCfg.OutputPaths = []string{"stderr"}
	zapCfg.ErrorOutputPaths = []string{"stderr"}

	level, err := zapcore.ParseLevel(cfg.Level)
	if err != nil {
		return eris.Wrap(err, "config: parse log level")
	}
	zapCfg.Level.SetLevel(level)

	logger, err := zapCfg.Build()
	if err != nil {
		return eris.Wrap(err, "config: build logger")
	}
	zap.ReplaceGlobals(logger)
	return nil
}
