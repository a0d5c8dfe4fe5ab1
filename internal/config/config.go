package config

import (
	"errors"
	"fmt"
	"net"
	"os"
	"path/filepath"
	"time"

	"github.com/caarlos0/env/v11"
	"gopkg.in/yaml.v3"

	"github.com/oshokin/pose-timer/internal/domain/modeltimer"
	"github.com/oshokin/pose-timer/internal/logger"
)

// Config holds the settings shared by the pose timer binaries.
type Config struct {
	// ServerAddress is the gRPC address of the timer server.
	ServerAddress string `env:"POSE_TIMER_SERVER_ADDR" yaml:"server_addr"`
	// Timeout bounds network operations and RPC calls.
	Timeout time.Duration `env:"POSE_TIMER_TIMEOUT" yaml:"timeout"`
	// LogLevel is the minimum level of the process logger.
	LogLevel string `env:"POSE_TIMER_LOG_LEVEL" yaml:"log_level,omitempty"`
	// Timer configures the session timer run by the server.
	Timer Timer `yaml:"timer"`
}

// Timer is the session timer block of the settings file.
type Timer struct {
	// Pose is the length of a pose segment.
	Pose time.Duration `yaml:"pose"`
	// Break is the length of a break segment.
	Break time.Duration `yaml:"break"`
	// Alarm is how long the alarm sounds before it times out.
	Alarm time.Duration `yaml:"alarm"`
	// AutoStart is how long an unattended session waits before restarting.
	AutoStart time.Duration `yaml:"auto_start"`
	// Alert1Minute is the remaining time of the last alert.
	Alert1Minute time.Duration `yaml:"alert_1_minute"`
	// Alert10Minutes is the remaining time of the first alert.
	Alert10Minutes time.Duration `yaml:"alert_10_minutes"`
	// TickPeriod is the nominal countdown tick period.
	TickPeriod time.Duration `yaml:"tick_period"`
	// PoseLengths is the initial pose-change schedule.
	PoseLengths []time.Duration `yaml:"pose_lengths,omitempty"`
	// Heartbeat is how often the server pushes a snapshot to idle watchers.
	Heartbeat time.Duration `yaml:"heartbeat"`
}

const (
	// DefaultConfigFilename is the default filename for the settings.
	DefaultConfigFilename = "pose-timer-settings.yaml"

	// DefaultTimeout is the default duration for network operations.
	DefaultTimeout = 5 * time.Second

	// DefaultHeartbeat is the default interval of snapshot heartbeats.
	DefaultHeartbeat = 30 * time.Second

	// DefaultFilePermissions is the default file permission for config files.
	DefaultFilePermissions = 0o600
)

var (
	// errConfigIsNotSet is returned when a nil configuration is provided.
	errConfigIsNotSet = errors.New("configuration is not set")
	// errServerSocketRequired is returned when server address is missing.
	errServerSocketRequired = errors.New("server address must be provided")
	// errNegativeDuration is returned for a timer duration below zero.
	errNegativeDuration = errors.New("duration must not be negative")
	// errNonPositiveLength is returned for a pose length that is not positive.
	errNonPositiveLength = errors.New("pose length must be positive")
	// errUnknownLogLevel is returned for a log level zap does not know.
	errUnknownLogLevel = errors.New("unknown log level")
)

// Load reads configuration from the provided path, applies environment
// overrides and validates the result.
func Load(path string) (*Config, error) {
	if path == "" {
		path = DefaultConfigFilename
	}

	contents, err := os.ReadFile(filepath.Clean(path))
	if err != nil {
		return nil, fmt.Errorf("read settings: %w", err)
	}

	var cfg Config
	if err := yaml.Unmarshal(contents, &cfg); err != nil {
		return nil, fmt.Errorf("unmarshal settings: %w", err)
	}

	if err := env.Parse(&cfg); err != nil {
		return nil, fmt.Errorf("parse env: %w", err)
	}

	if err := Validate(&cfg); err != nil {
		return nil, err
	}

	return &cfg, nil
}

// Save writes the settings to the provided path.
func Save(path string, cfg *Config) error {
	if cfg == nil {
		return errConfigIsNotSet
	}

	if path == "" {
		path = DefaultConfigFilename
	}

	if err := Validate(cfg); err != nil {
		return err
	}

	data, err := yaml.Marshal(cfg)
	if err != nil {
		return fmt.Errorf("marshal settings: %w", err)
	}

	if err := os.WriteFile(filepath.Clean(path), data, DefaultFilePermissions); err != nil {
		return fmt.Errorf("write settings: %w", err)
	}

	return nil
}

// Validate checks the settings and fills in defaults for missing values.
func Validate(settings *Config) error {
	if settings == nil {
		return errConfigIsNotSet
	}

	if settings.ServerAddress == "" {
		return errServerSocketRequired
	}

	if _, err := net.ResolveTCPAddr("tcp", settings.ServerAddress); err != nil {
		return fmt.Errorf("invalid server socket: %w", err)
	}

	if settings.Timeout <= 0 {
		settings.Timeout = DefaultTimeout
	}

	if _, ok := logger.ParseLogLevel(settings.LogLevel); !ok {
		return fmt.Errorf("%w: %q", errUnknownLogLevel, settings.LogLevel)
	}

	return settings.Timer.validate()
}

func (t *Timer) validate() error {
	fields := map[string]time.Duration{
		"pose":             t.Pose,
		"break":            t.Break,
		"alarm":            t.Alarm,
		"auto_start":       t.AutoStart,
		"alert_1_minute":   t.Alert1Minute,
		"alert_10_minutes": t.Alert10Minutes,
		"tick_period":      t.TickPeriod,
		"heartbeat":        t.Heartbeat,
	}

	for name, d := range fields {
		if d < 0 {
			return fmt.Errorf("timer.%s: %w", name, errNegativeDuration)
		}
	}

	for i, d := range t.PoseLengths {
		if d <= 0 {
			return fmt.Errorf("timer.pose_lengths[%d]: %w", i, errNonPositiveLength)
		}
	}

	defaults := modeltimer.DefaultSettings()

	fill := func(dst *time.Duration, def time.Duration) {
		if *dst == 0 {
			*dst = def
		}
	}

	fill(&t.Pose, defaults.PoseDuration)
	fill(&t.Break, defaults.BreakDuration)
	fill(&t.Alarm, defaults.AlarmDuration)
	fill(&t.AutoStart, defaults.AutoStartDuration)
	fill(&t.Alert1Minute, defaults.Alert1MinuteRemaining)
	fill(&t.Alert10Minutes, defaults.Alert10MinutesRemaining)
	fill(&t.TickPeriod, defaults.TickPeriod)
	fill(&t.Heartbeat, DefaultHeartbeat)

	return nil
}

// Settings converts the timer block into session timer settings.
func (t Timer) Settings() modeltimer.Settings {
	return modeltimer.Settings{
		PoseDuration:            t.Pose,
		BreakDuration:           t.Break,
		AlarmDuration:           t.Alarm,
		AutoStartDuration:       t.AutoStart,
		Alert1MinuteRemaining:   t.Alert1Minute,
		Alert10MinutesRemaining: t.Alert10Minutes,
		TickPeriod:              t.TickPeriod,
		PoseLengths:             t.PoseLengths,
	}
}
