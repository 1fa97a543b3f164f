package config

import (
	"os"
	"path/filepath"
	"testing"

	"github.com/spf13/pflag"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/lowaak/tabata-timer/internal/countdown"
	"github.com/lowaak/tabata-timer/internal/speech"
)

// isolate runs the test from an empty directory so no stray tabata.yaml
// or .env is picked up.
func isolate(t *testing.T) string {
	t.Helper()
	dir := t.TempDir()
	wd, err := os.Getwd()
	require.NoError(t, err)
	require.NoError(t, os.Chdir(dir))
	t.Cleanup(func() { _ = os.Chdir(wd) })
	t.Setenv("HOME", dir)
	return dir
}

func newFlags(t *testing.T, args ...string) *pflag.FlagSet {
	t.Helper()
	fs := pflag.NewFlagSet("tabata", pflag.ContinueOnError)
	RegisterFlags(fs)
	require.NoError(t, fs.Parse(args))
	return fs
}

func TestLoad_Defaults(t *testing.T) {
	isolate(t)

	cfg, err := Load(nil)
	require.NoError(t, err)
	assert.Equal(t, DefaultWorkout, cfg.Workout)
	assert.Equal(t, UIModeAuto, cfg.UI.Mode)
	assert.Equal(t, 10, cfg.UI.RedZoneSeconds)
	assert.Equal(t, speech.BackendCommand, cfg.Speech.Backend)
	assert.NotEmpty(t, cfg.Speech.Command)
	assert.Equal(t, countdown.DefaultMaxSeconds, cfg.Countdown.MaxSeconds)
	assert.Equal(t, 5, cfg.Log.MaxSizeMB)
	assert.NotEmpty(t, cfg.Log.File)
	assert.Empty(t, cfg.File)
}

func TestLoad_ConfigFile(t *testing.T) {
	dir := isolate(t)
	content := `workout: hiit.yaml
ui:
  mode: plain
  red_zone_seconds: 5
speech:
  backend: command
  command: espeak
  args: ["-s", "160"]
log:
  file: /tmp/tabata-test.log
  compress: true
`
	require.NoError(t, os.WriteFile(filepath.Join(dir, "tabata.yaml"), []byte(content), 0o644))

	cfg, err := Load(newFlags(t))
	require.NoError(t, err)
	assert.Equal(t, "hiit.yaml", cfg.Workout)
	assert.Equal(t, UIModePlain, cfg.UI.Mode)
	assert.Equal(t, 5, cfg.UI.RedZoneSeconds)
	assert.Equal(t, "espeak", cfg.Speech.Command)
	assert.Equal(t, []string{"-s", "160"}, cfg.Speech.Args)
	assert.Equal(t, "/tmp/tabata-test.log", cfg.Log.File)
	assert.True(t, cfg.Log.Compress)
	assert.Contains(t, cfg.File, "tabata.yaml")
}

func TestLoad_Precedence(t *testing.T) {
	dir := isolate(t)
	require.NoError(t, os.WriteFile(filepath.Join(dir, "tabata.yaml"),
		[]byte("workout: from-file.json\nui:\n  mode: plain\n"), 0o644))
	t.Setenv("TABATA_WORKOUT", "from-env.json")
	t.Setenv("TABATA_SPEECH_BACKEND", "none")

	cfg, err := Load(newFlags(t))
	require.NoError(t, err)
	assert.Equal(t, "from-env.json", cfg.Workout, "env beats file")
	assert.Equal(t, UIModePlain, cfg.UI.Mode)
	assert.Equal(t, speech.BackendNone, cfg.Speech.Backend)

	cfg, err = Load(newFlags(t, "--workout", "from-flag.json", "--speech", "tone"))
	require.NoError(t, err)
	assert.Equal(t, "from-flag.json", cfg.Workout, "flag beats env")
	assert.Equal(t, speech.BackendTone, cfg.Speech.Backend)
}

func TestLoad_DotEnv(t *testing.T) {
	dir := isolate(t)
	// registers a restore for the variable godotenv is about to set
	t.Setenv("TABATA_UI_MODE", "")
	require.NoError(t, os.Unsetenv("TABATA_UI_MODE"))
	require.NoError(t, os.WriteFile(filepath.Join(dir, ".env"), []byte("TABATA_UI_MODE=curses\n"), 0o644))

	cfg, err := Load(nil)
	require.NoError(t, err)
	assert.Equal(t, UIModeCurses, cfg.UI.Mode)
}

func TestLoad_ExplicitConfigMustExist(t *testing.T) {
	dir := isolate(t)

	_, err := Load(newFlags(t, "--config", filepath.Join(dir, "nope.yaml")))
	assert.Error(t, err)
}

func TestLoad_Validation(t *testing.T) {
	isolate(t)

	tests := []struct {
		name string
		env  map[string]string
		want string
	}{
		{"ui mode", map[string]string{"TABATA_UI_MODE": "gui"}, KeyUIMode},
		{"speech backend", map[string]string{"TABATA_SPEECH_BACKEND": "morse"}, KeySpeechBackend},
		{"max seconds", map[string]string{"TABATA_COUNTDOWN_MAX_SECONDS": "6000"}, KeyMaxSeconds},
		{"red zone", map[string]string{"TABATA_UI_RED_ZONE_SECONDS": "-1"}, KeyRedZone},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			for k, v := range tt.env {
				t.Setenv(k, v)
			}
			_, err := Load(nil)
			require.Error(t, err)
			assert.Contains(t, err.Error(), tt.want)
		})
	}
}
