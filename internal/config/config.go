// Package config resolves runtime settings from flags, TABATA_* env vars,
// an optional .env file and an optional tabata.{yaml,json,toml} file, in
// that order of precedence.
package config

import (
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"strings"

	"github.com/joho/godotenv"
	"github.com/spf13/pflag"
	"github.com/spf13/viper"

	"github.com/lowaak/tabata-timer/internal/countdown"
	"github.com/lowaak/tabata-timer/internal/speech"
)

const (
	EnvPrefix      = "TABATA"
	ConfigName     = "tabata"
	DefaultWorkout = "workout.json"
)

// UI modes.
const (
	UIModeAuto   = "auto"
	UIModeCurses = "curses"
	UIModePlain  = "plain"
)

// Keys, also used as flag names where a flag exists.
const (
	KeyWorkout        = "workout"
	KeyUIMode         = "ui.mode"
	KeyRedZone        = "ui.red_zone_seconds"
	KeySpeechBackend  = "speech.backend"
	KeySpeechCommand  = "speech.command"
	KeySpeechArgs     = "speech.args"
	KeyMaxSeconds     = "countdown.max_seconds"
	KeyLogFile        = "log.file"
	KeyLogMaxSizeMB   = "log.max_size_mb"
	KeyLogMaxBackups  = "log.max_backups"
	KeyLogMaxAgeDays  = "log.max_age_days"
	KeyLogCompress    = "log.compress"
	flagUIMode        = "ui"
	flagSpeechBackend = "speech"
	flagSpeechCommand = "speech-command"
	flagLogFile       = "log-file"
	flagMaxSeconds    = "max-seconds"
)

type Config struct {
	Workout   string
	UI        UIConfig
	Speech    SpeechConfig
	Countdown CountdownConfig
	Log       LogConfig
	// File is the config file that was read, empty when none was found.
	File string
}

type UIConfig struct {
	Mode           string
	RedZoneSeconds int
}

type SpeechConfig struct {
	Backend string
	Command string
	Args    []string
}

type CountdownConfig struct {
	MaxSeconds int
}

type LogConfig struct {
	File       string
	MaxSizeMB  int
	MaxBackups int
	MaxAgeDays int
	Compress   bool
}

// RegisterFlags adds the command-line overrides to fs.
func RegisterFlags(fs *pflag.FlagSet) {
	fs.StringP(KeyWorkout, "w", DefaultWorkout, "workout file (json or yaml)")
	fs.String(flagUIMode, UIModeAuto, "ui mode: auto, curses or plain")
	fs.String(flagSpeechBackend, speech.BackendCommand, "speech backend: command, tone or none")
	fs.String(flagSpeechCommand, "", "text-to-speech executable (default: say on macOS, espeak elsewhere)")
	fs.String(flagLogFile, "", "log file path")
	fs.Int(flagMaxSeconds, countdown.DefaultMaxSeconds, "longest allowed phase in seconds")
	fs.StringP("config", "c", "", "config file (default: ./tabata.yaml or ~/.config/tabata/tabata.yaml)")
}

// Load resolves the configuration. flags may be nil. A missing .env or
// config file is not an error; a malformed one is.
func Load(flags *pflag.FlagSet) (*Config, error) {
	if err := godotenv.Load(); err != nil && !errors.Is(err, os.ErrNotExist) {
		return nil, fmt.Errorf("reading .env: %w", err)
	}

	v := viper.New()
	setDefaults(v)

	v.SetEnvPrefix(EnvPrefix)
	v.SetEnvKeyReplacer(strings.NewReplacer(".", "_"))
	v.AutomaticEnv()

	if flags != nil {
		if err := bindFlags(v, flags); err != nil {
			return nil, err
		}
	}

	configFile := ""
	if flags != nil {
		if f := flags.Lookup("config"); f != nil {
			configFile = f.Value.String()
		}
	}
	if configFile != "" {
		v.SetConfigFile(configFile)
	} else {
		v.SetConfigName(ConfigName)
		v.AddConfigPath(".")
		if home, err := os.UserHomeDir(); err == nil {
			v.AddConfigPath(filepath.Join(home, ".config", ConfigName))
		}
	}
	if err := v.ReadInConfig(); err != nil {
		var notFound viper.ConfigFileNotFoundError
		if configFile != "" || !errors.As(err, &notFound) {
			return nil, fmt.Errorf("reading config file: %w", err)
		}
	}

	cfg := &Config{
		Workout: v.GetString(KeyWorkout),
		UI: UIConfig{
			Mode:           strings.ToLower(v.GetString(KeyUIMode)),
			RedZoneSeconds: v.GetInt(KeyRedZone),
		},
		Speech: SpeechConfig{
			Backend: strings.ToLower(v.GetString(KeySpeechBackend)),
			Command: v.GetString(KeySpeechCommand),
			Args:    v.GetStringSlice(KeySpeechArgs),
		},
		Countdown: CountdownConfig{MaxSeconds: v.GetInt(KeyMaxSeconds)},
		Log: LogConfig{
			File:       v.GetString(KeyLogFile),
			MaxSizeMB:  v.GetInt(KeyLogMaxSizeMB),
			MaxBackups: v.GetInt(KeyLogMaxBackups),
			MaxAgeDays: v.GetInt(KeyLogMaxAgeDays),
			Compress:   v.GetBool(KeyLogCompress),
		},
		File: v.ConfigFileUsed(),
	}
	if cfg.Speech.Command == "" {
		cfg.Speech.Command = defaultSpeechCommand()
	}

	if err := cfg.validate(); err != nil {
		return nil, fmt.Errorf("config validation: %w", err)
	}
	return cfg, nil
}

func setDefaults(v *viper.Viper) {
	v.SetDefault(KeyWorkout, DefaultWorkout)
	v.SetDefault(KeyUIMode, UIModeAuto)
	v.SetDefault(KeyRedZone, 10)
	v.SetDefault(KeySpeechBackend, speech.BackendCommand)
	v.SetDefault(KeySpeechCommand, "")
	v.SetDefault(KeySpeechArgs, []string{})
	v.SetDefault(KeyMaxSeconds, countdown.DefaultMaxSeconds)
	v.SetDefault(KeyLogFile, defaultLogFile())
	v.SetDefault(KeyLogMaxSizeMB, 5)
	v.SetDefault(KeyLogMaxBackups, 3)
	v.SetDefault(KeyLogMaxAgeDays, 28)
	v.SetDefault(KeyLogCompress, false)
}

// bindFlags binds only flags the user actually set on top of defaults, so
// flag defaults never shadow env or file values.
func bindFlags(v *viper.Viper, flags *pflag.FlagSet) error {
	bindings := map[string]string{
		KeyWorkout:       KeyWorkout,
		KeyUIMode:        flagUIMode,
		KeySpeechBackend: flagSpeechBackend,
		KeySpeechCommand: flagSpeechCommand,
		KeyLogFile:       flagLogFile,
		KeyMaxSeconds:    flagMaxSeconds,
	}
	for key, name := range bindings {
		f := flags.Lookup(name)
		if f == nil || !f.Changed {
			continue
		}
		if err := v.BindPFlag(key, f); err != nil {
			return fmt.Errorf("binding flag --%s: %w", name, err)
		}
	}
	return nil
}

func defaultSpeechCommand() string {
	if _, err := os.Stat("/usr/bin/say"); err == nil {
		return "say"
	}
	return "espeak"
}

func defaultLogFile() string {
	dir, err := os.UserCacheDir()
	if err != nil {
		return filepath.Join(os.TempDir(), "tabata.log")
	}
	return filepath.Join(dir, ConfigName, "tabata.log")
}

func (c *Config) validate() error {
	if c.Workout == "" {
		return fmt.Errorf("%s is required", KeyWorkout)
	}
	switch c.UI.Mode {
	case UIModeAuto, UIModeCurses, UIModePlain:
	default:
		return fmt.Errorf("%s must be one of auto, curses, plain; got %q", KeyUIMode, c.UI.Mode)
	}
	switch c.Speech.Backend {
	case speech.BackendCommand, speech.BackendTone, speech.BackendNone:
	default:
		return fmt.Errorf("%s must be one of command, tone, none; got %q", KeySpeechBackend, c.Speech.Backend)
	}
	if c.UI.RedZoneSeconds < 0 {
		return fmt.Errorf("%s cannot be negative", KeyRedZone)
	}
	if c.Countdown.MaxSeconds <= 0 || c.Countdown.MaxSeconds > countdown.DefaultMaxSeconds {
		return fmt.Errorf("%s must be between 1 and %d, got %d", KeyMaxSeconds, countdown.DefaultMaxSeconds, c.Countdown.MaxSeconds)
	}
	if c.Log.MaxSizeMB <= 0 {
		return fmt.Errorf("%s must be positive", KeyLogMaxSizeMB)
	}
	return nil
}
