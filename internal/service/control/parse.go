package control

import (
	"errors"
	"fmt"
	"math"
	"strconv"
	"strings"
	"time"

	"github.com/oshokin/pose-timer/internal/domain/modeltimer"
)

var (
	// errMissingArgument is returned when a command needs more arguments.
	errMissingArgument = errors.New("missing argument")
	// errBadDuration is returned for an argument that is not a duration.
	errBadDuration = errors.New("invalid duration")
	// errBadSwitch is returned for an argument that is not on/off.
	errBadSwitch = errors.New("expected on or off")
)

// aliases maps the short names accepted by the CLI and the console.
//
//nolint:gochecknoglobals // Read-only lookup table.
var aliases = map[string]modeltimer.CommandKind{
	"pause":    modeltimer.CommandStop,
	"add":      modeltimer.CommandAddOne,
	"+":        modeltimer.CommandAddOne,
	"subtract": modeltimer.CommandSubtractOne,
	"sub":      modeltimer.CommandSubtractOne,
	"-":        modeltimer.CommandSubtractOne,
	"silence":  modeltimer.CommandStopAlarm,
	"duration": modeltimer.CommandSetDuration,
	"poses":    modeltimer.CommandSetPoseLengths,
	"sync":     modeltimer.CommandSynchronize,
}

// ParseCommand builds a command from its name and arguments:
//
//	start [on|off]          start, optionally forcing the alerts
//	stop | pause
//	reset | next | stop-alarm | add | subtract
//	duration <d>            set the segment length
//	poses <d>...            set the pose-change schedule
//	sync <running|stopped> <duration> <remaining> [alarm]
//
// Durations accept Go syntax ("25m", "1m30s") or a bare number of minutes.
func ParseCommand(name string, args []string) (modeltimer.Command, error) {
	name = strings.ToLower(strings.TrimSpace(name))

	kind, ok := aliases[name]
	if !ok {
		var err error

		kind, err = modeltimer.ParseCommandKind(name)
		if err != nil {
			return modeltimer.Command{}, err
		}
	}

	cmd := modeltimer.Command{Kind: kind}

	switch kind {
	case modeltimer.CommandStart:
		if len(args) > 0 {
			on, err := parseSwitch(args[0])
			if err != nil {
				return modeltimer.Command{}, err
			}

			cmd.SoundAlerts = &on
		}
	case modeltimer.CommandSetDuration:
		if len(args) == 0 {
			return modeltimer.Command{}, fmt.Errorf("%s: %w", kind, errMissingArgument)
		}

		d, err := ParseDuration(args[0])
		if err != nil {
			return modeltimer.Command{}, err
		}

		cmd.Duration = d
	case modeltimer.CommandSetPoseLengths:
		cmd.PoseLengths = make([]time.Duration, 0, len(args))

		for _, arg := range args {
			d, err := ParseDuration(arg)
			if err != nil {
				return modeltimer.Command{}, err
			}

			cmd.PoseLengths = append(cmd.PoseLengths, d)
		}
	case modeltimer.CommandSynchronize:
		remote, err := parseRemote(args)
		if err != nil {
			return modeltimer.Command{}, err
		}

		cmd.Remote = remote
	}

	return cmd, nil
}

// maxMinutes bounds the bare minute counts a time.Duration can hold.
const maxMinutes = float64(math.MaxInt64) / float64(time.Minute)

// ParseDuration reads a Go duration or a bare number of minutes.
func ParseDuration(s string) (time.Duration, error) {
	s = strings.TrimSpace(s)

	if minutes, err := strconv.ParseFloat(s, 64); err == nil {
		if math.IsNaN(minutes) || minutes < 0 || minutes >= maxMinutes {
			return 0, fmt.Errorf("%w: %q", errBadDuration, s)
		}

		return time.Duration(minutes * float64(time.Minute)), nil
	}

	d, err := time.ParseDuration(s)
	if err != nil || d < 0 {
		return 0, fmt.Errorf("%w: %q", errBadDuration, s)
	}

	return d, nil
}

func parseSwitch(s string) (bool, error) {
	switch strings.ToLower(s) {
	case "on", "true", "yes", "alerts":
		return true, nil
	case "off", "false", "no", "quiet":
		return false, nil
	default:
		return false, fmt.Errorf("%w: %q", errBadSwitch, s)
	}
}

func parseRemote(args []string) (modeltimer.Info, error) {
	if len(args) < 3 {
		return modeltimer.Info{}, fmt.Errorf("%s: %w", modeltimer.CommandSynchronize, errMissingArgument)
	}

	var info modeltimer.Info

	switch strings.ToLower(args[0]) {
	case "running":
		info.Running = true
	case "stopped":
	default:
		return modeltimer.Info{}, fmt.Errorf("expected running or stopped, got %q", args[0])
	}

	var err error

	if info.Duration, err = ParseDuration(args[1]); err != nil {
		return modeltimer.Info{}, err
	}

	if info.Remaining, err = ParseDuration(args[2]); err != nil {
		return modeltimer.Info{}, err
	}

	info.AlarmSounding = len(args) > 3 && strings.EqualFold(args[3], "alarm")

	return info, nil
}
