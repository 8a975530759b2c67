package main

import (
	"fmt"
	"io"
	"log/slog"
	"os"
	"strings"

	"github.com/spf13/viper"
	"golang.org/x/term"

	"library-catalog/library"
)

const (
	configFileName = "library"
	configFileType = "yaml"
	envPrefix      = "LIBRARY"

	cfgKeyDailyRate      = "billing.daily_rate"
	cfgKeyBranchPolicy   = "circulation.branch_policy"
	cfgKeyJournalEnabled = "journal.enabled"
	cfgKeyJournalDSN     = "journal.dsn"
	cfgKeyLogLevel       = "log.level"
	cfgKeyLogFormat      = "log.format"

	logFormatText = "text"
	logFormatJSON = "json"
	logFormatAuto = "auto"
)

// settings is the resolved configuration for one CLI run.
type settings struct {
	DailyRate      library.Amount
	BranchPolicy   library.BranchPolicy
	JournalEnabled bool
	JournalDSN     string
	LogLevel       slog.Level
	LogFormat      string
}

// loadConfig reads library.yaml from path, or from the working directory when
// path is empty. A missing file is not an error. LIBRARY_* environment
// variables override file values (LIBRARY_BILLING_DAILY_RATE, ...).
func loadConfig(path string) (*viper.Viper, error) {
	v := viper.New()
	v.SetDefault(cfgKeyDailyRate, int64(library.DefaultDailyRate))
	v.SetDefault(cfgKeyBranchPolicy, string(library.BranchPolicyAppend))
	v.SetDefault(cfgKeyJournalEnabled, true)
	v.SetDefault(cfgKeyJournalDSN, library.DefaultJournalDSN)
	v.SetDefault(cfgKeyLogLevel, "warn")
	v.SetDefault(cfgKeyLogFormat, logFormatAuto)

	v.SetEnvPrefix(envPrefix)
	v.SetEnvKeyReplacer(strings.NewReplacer(".", "_"))
	v.AutomaticEnv()

	if path != "" {
		v.SetConfigFile(path)
	} else {
		v.SetConfigName(configFileName)
		v.SetConfigType(configFileType)
		v.AddConfigPath(".")
	}

	if err := v.ReadInConfig(); err != nil {
		if _, ok := err.(viper.ConfigFileNotFoundError); ok {
			return v, nil
		}
		return nil, fmt.Errorf("read config: %w", err)
	}
	return v, nil
}

// resolveSettings validates the raw configuration values.
func resolveSettings(v *viper.Viper) (settings, error) {
	policy, err := library.ParseBranchPolicy(v.GetString(cfgKeyBranchPolicy))
	if err != nil {
		return settings{}, fmt.Errorf("%s: %w", cfgKeyBranchPolicy, err)
	}

	var level slog.Level
	if err := level.UnmarshalText([]byte(v.GetString(cfgKeyLogLevel))); err != nil {
		return settings{}, fmt.Errorf("%s: %w", cfgKeyLogLevel, err)
	}

	format := v.GetString(cfgKeyLogFormat)
	switch format {
	case logFormatText, logFormatJSON, logFormatAuto:
	default:
		return settings{}, fmt.Errorf("%s: unknown format %q", cfgKeyLogFormat, format)
	}

	rate := v.GetInt64(cfgKeyDailyRate)
	if rate < 0 {
		return settings{}, fmt.Errorf("%s: %w", cfgKeyDailyRate, library.ErrInvalidAmount)
	}

	return settings{
		DailyRate:      library.Amount(rate),
		BranchPolicy:   policy,
		JournalEnabled: v.GetBool(cfgKeyJournalEnabled),
		JournalDSN:     v.GetString(cfgKeyJournalDSN),
		LogLevel:       level,
		LogFormat:      format,
	}, nil
}

// newLogger builds the CLI logger. The auto format writes text to a terminal
// and JSON otherwise.
func newLogger(w io.Writer, s settings) *slog.Logger {
	opts := &slog.HandlerOptions{Level: s.LogLevel}
	format := s.LogFormat
	if format == logFormatAuto {
		format = logFormatJSON
		if f, ok := w.(*os.File); ok && term.IsTerminal(int(f.Fd())) {
			format = logFormatText
		}
	}
	if format == logFormatText {
		return slog.New(slog.NewTextHandler(w, opts))
	}
	return slog.New(slog.NewJSONHandler(w, opts))
}

// managerOptions maps settings onto library.Options.
func (s settings) managerOptions(logger library.Logger, recorders ...library.Recorder) library.Options {
	opts := library.Options{
		DailyRate:    s.DailyRate,
		BranchPolicy: s.BranchPolicy,
		Recorders:    recorders,
		Logger:       logger,
	}
	if s.JournalEnabled {
		opts.JournalDSN = s.JournalDSN
	}
	return opts
}
