package config

import (
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/stretchr/testify/require"

	"github.com/oshokin/pose-timer/internal/domain/modeltimer"
)

// TestValidate checks required fields and format validations for Config.
func TestValidate(t *testing.T) {
	t.Parallel()

	require.ErrorIs(t, Validate(nil), errConfigIsNotSet)
	require.ErrorIs(t, Validate(new(Config)), errServerSocketRequired)

	// Bad socket.
	require.Error(t, Validate(&Config{ServerAddress: "bad:address"}))

	// Bad log level.
	require.ErrorIs(t, Validate(&Config{ServerAddress: "127.0.0.1:0", LogLevel: "loud"}), errUnknownLogLevel)

	// Negative duration.
	err := Validate(&Config{ServerAddress: "127.0.0.1:0", Timer: Timer{Alarm: -time.Second}})
	require.ErrorIs(t, err, errNegativeDuration)
	require.ErrorContains(t, err, "timer.alarm")

	// Empty pose length.
	err = Validate(&Config{ServerAddress: "127.0.0.1:0", Timer: Timer{PoseLengths: []time.Duration{time.Minute, 0}}})
	require.ErrorIs(t, err, errNonPositiveLength)
}

// TestValidate_FillsDefaults ensures an almost empty file yields a usable timer.
func TestValidate_FillsDefaults(t *testing.T) {
	t.Parallel()

	cfg := &Config{
		ServerAddress: "127.0.0.1:50051",
		Timer:         Timer{Pose: 15 * time.Minute},
	}
	require.NoError(t, Validate(cfg))

	require.Equal(t, DefaultTimeout, cfg.Timeout)
	require.Equal(t, DefaultHeartbeat, cfg.Timer.Heartbeat)

	settings := cfg.Timer.Settings()
	want := modeltimer.DefaultSettings()
	want.PoseDuration = 15 * time.Minute

	require.Equal(t, want, settings)
}

// TestSaveLoadRoundtrip ensures settings are persisted and loaded back correctly.
func TestSaveLoadRoundtrip(t *testing.T) {
	t.Parallel()

	dir := t.TempDir()
	path := filepath.Join(dir, "settings.yaml")

	settings := &Config{
		ServerAddress: "127.0.0.1:50051",
		LogLevel:      "debug",
		Timer: Timer{
			Pose:        25 * time.Minute,
			Break:       5 * time.Minute,
			PoseLengths: []time.Duration{10 * time.Minute, 15 * time.Minute},
		},
	}

	require.NoError(t, Save(path, settings))

	loaded, err := Load(path)
	require.NoError(t, err)
	require.Equal(t, settings, loaded)

	// File exists.
	_, err = os.Stat(path)
	require.NoError(t, err)
}

// TestLoad_ParsesDurations reads a hand-written settings file.
func TestLoad_ParsesDurations(t *testing.T) {
	t.Parallel()

	path := filepath.Join(t.TempDir(), DefaultConfigFilename)
	contents := `server_addr: 127.0.0.1:50051
timeout: 2s
timer:
  pose: 20m
  break: 7m
  alarm: 10s
  pose_lengths: [5m, 5m, 10m]
`
	require.NoError(t, os.WriteFile(path, []byte(contents), DefaultFilePermissions))

	cfg, err := Load(path)
	require.NoError(t, err)
	require.Equal(t, 2*time.Second, cfg.Timeout)
	require.Equal(t, 20*time.Minute, cfg.Timer.Pose)
	require.Equal(t, 10*time.Second, cfg.Timer.Alarm)
	require.Equal(t, modeltimer.DefaultAutoStartDuration, cfg.Timer.AutoStart)
	require.Equal(t, []time.Duration{5 * time.Minute, 5 * time.Minute, 10 * time.Minute}, cfg.Timer.PoseLengths)
}

// TestLoad_EnvOverrides checks that POSE_TIMER_* variables win over the file.
// It cannot run in parallel because it changes the environment.
func TestLoad_EnvOverrides(t *testing.T) {
	path := filepath.Join(t.TempDir(), DefaultConfigFilename)
	require.NoError(t, Save(path, &Config{ServerAddress: "127.0.0.1:50051"}))

	t.Setenv("POSE_TIMER_SERVER_ADDR", "127.0.0.1:6000")
	t.Setenv("POSE_TIMER_LOG_LEVEL", "warn")
	t.Setenv("POSE_TIMER_TIMEOUT", "750ms")

	cfg, err := Load(path)
	require.NoError(t, err)
	require.Equal(t, "127.0.0.1:6000", cfg.ServerAddress)
	require.Equal(t, "warn", cfg.LogLevel)
	require.Equal(t, 750*time.Millisecond, cfg.Timeout)
}

// TestLoad_MissingFile reports the read error.
func TestLoad_MissingFile(t *testing.T) {
	t.Parallel()

	_, err := Load(filepath.Join(t.TempDir(), "absent.yaml"))
	require.ErrorIs(t, err, os.ErrNotExist)
}
