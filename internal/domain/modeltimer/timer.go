package modeltimer

import (
	"slices"
	"time"

	"go.uber.org/zap"

	"github.com/oshokin/pose-timer/internal/clock"
	"github.com/oshokin/pose-timer/internal/domain/countdown"
	"github.com/oshokin/pose-timer/internal/logger"
)

// Default settings of a session.
const (
	DefaultPoseDuration            = 20 * time.Minute
	DefaultBreakDuration           = 7 * time.Minute
	DefaultAlarmDuration           = 10 * time.Second
	DefaultAutoStartDuration       = 30 * time.Second
	DefaultAlert1MinuteRemaining   = time.Minute
	DefaultAlert10MinutesRemaining = 10 * time.Minute

	// minSubtractDuration is the duration SubtractOne refuses to go below.
	minSubtractDuration = time.Minute
)

// Settings are the configuration scalars of a session timer.
type Settings struct {
	// PoseDuration is the length of a pose segment.
	PoseDuration time.Duration
	// BreakDuration is the length of a break segment.
	BreakDuration time.Duration
	// AlarmDuration is how long the alarm sounds before it times out.
	AlarmDuration time.Duration
	// AutoStartDuration is how long an unattended timer waits before restarting.
	AutoStartDuration time.Duration
	// Alert1MinuteRemaining is the remaining time of the last alert.
	Alert1MinuteRemaining time.Duration
	// Alert10MinutesRemaining is the remaining time of the first alert. Runs
	// longer than this sound alerts by default.
	Alert10MinutesRemaining time.Duration
	// TickPeriod is the nominal tick period of both countdowns.
	TickPeriod time.Duration
	// PoseLengths is the initial pose-change schedule.
	PoseLengths []time.Duration
}

// DefaultSettings returns the standard 20 minute pose / 7 minute break setup.
func DefaultSettings() Settings {
	return Settings{
		PoseDuration:            DefaultPoseDuration,
		BreakDuration:           DefaultBreakDuration,
		AlarmDuration:           DefaultAlarmDuration,
		AutoStartDuration:       DefaultAutoStartDuration,
		Alert1MinuteRemaining:   DefaultAlert1MinuteRemaining,
		Alert10MinutesRemaining: DefaultAlert10MinutesRemaining,
		TickPeriod:              countdown.DefaultTickPeriod,
	}
}

// Info is the snapshot shared with displays and remote peers.
type Info struct {
	Running       bool
	Duration      time.Duration
	Remaining     time.Duration
	AlarmSounding bool
}

// Status extends Info with the session state that is not part of the
// synchronization contract.
type Status struct {
	Info

	Segment          Segment
	Elapsed          time.Duration
	AutoStartRunning bool
	SoundAlerts      bool
	PoseLengths      []time.Duration
	ChangePoseTimes  []time.Duration
}

// Timer is the session timer.
type Timer struct {
	// clock schedules ticks and the alarm timeout.
	clock clock.Clock
	// log receives diagnostics about ignored commands.
	log *zap.SugaredLogger
	// settings holds the configuration scalars.
	settings Settings

	// main times the current pose or break.
	main *countdown.Timer
	// autoStart restarts the session when it expires unattended.
	autoStart *countdown.Timer
	// segment is the kind of interval main is timing.
	segment Segment

	// alarm is the pending alarm timeout; non-nil while the alarm sounds.
	alarm *clock.Handle
	// starting suppresses alarm entry from inside Start until it has fired
	// OnTimerStarted.
	starting bool

	// soundAlerts is decided at Start and frozen for the run.
	soundAlerts bool
	// alert10Sounded latches the 10 minutes alert for the current run.
	alert10Sounded bool
	// alert1Sounded latches the 1 minute alert for the current run.
	alert1Sounded bool

	// poseLengths is the user supplied pose-change schedule.
	poseLengths []time.Duration
	// changePoseTimes are the absolute elapsed thresholds still ahead.
	changePoseTimes []time.Duration

	handlers handlers
}

// handlers holds at most one callback per event.
type handlers struct {
	tick         func(Info)
	alarm        func(bool)
	timerStarted func()
	alert10      func()
	alert1       func()
	changePose   func()
}

// Option configures a Timer.
type Option func(*Timer)

// WithSettings replaces the default settings. Zero fields keep their defaults.
func WithSettings(s Settings) Option {
	return func(t *Timer) {
		t.settings = mergeSettings(t.settings, s)
	}
}

// WithLogger sets the diagnostics logger.
func WithLogger(l *zap.SugaredLogger) Option {
	return func(t *Timer) {
		if l != nil {
			t.log = l
		}
	}
}

// New creates an idle timer set up for a pose.
func New(c clock.Clock, opts ...Option) *Timer {
	t := &Timer{
		clock:    c,
		log:      logger.Logger().Named("model-timer"),
		settings: DefaultSettings(),
		segment:  SegmentPose,
	}

	for _, opt := range opts {
		opt(t)
	}

	t.main = countdown.New(c,
		countdown.WithDuration(t.settings.PoseDuration),
		countdown.WithTickPeriod(t.settings.TickPeriod),
	)
	t.main.OnTick(t.onMainTick)

	t.autoStart = countdown.New(c,
		countdown.WithDuration(t.settings.AutoStartDuration),
		countdown.WithTickPeriod(t.settings.TickPeriod),
	)
	t.autoStart.OnTick(t.onAutoStartTick)

	t.SetPoseLengths(t.settings.PoseLengths)

	return t
}

// Settings returns the configuration scalars.
func (t *Timer) Settings() Settings {
	s := t.settings
	s.PoseLengths = slices.Clone(t.poseLengths)

	return s
}

// Running reports whether the main countdown is counting.
func (t *Timer) Running() bool {
	return t.main.Running()
}

// Duration returns the length of the current segment.
func (t *Timer) Duration() time.Duration {
	return t.main.Duration()
}

// Remaining returns the time left in the current segment.
func (t *Timer) Remaining() time.Duration {
	return t.main.Remaining()
}

// Elapsed returns the time counted in the current segment.
func (t *Timer) Elapsed() time.Duration {
	return t.main.Elapsed()
}

// Expired reports whether the current segment has run out.
func (t *Timer) Expired() bool {
	return t.main.Expired()
}

// TimeRemaining renders the remaining time for display.
func (t *Timer) TimeRemaining() string {
	return t.main.String()
}

// Segment returns the kind of the current segment.
func (t *Timer) Segment() Segment {
	return t.segment
}

// AlarmSounding reports whether the alarm window is open.
func (t *Timer) AlarmSounding() bool {
	return t.alarm != nil
}

// AutoStartRunning reports whether an unattended restart is pending.
func (t *Timer) AutoStartRunning() bool {
	return t.autoStart.Running()
}

// SoundAlerts reports whether the current run sounds threshold alerts.
func (t *Timer) SoundAlerts() bool {
	return t.soundAlerts
}

// Info returns the synchronization snapshot.
func (t *Timer) Info() Info {
	return Info{
		Running:       t.main.Running(),
		Duration:      t.main.Duration(),
		Remaining:     t.main.Remaining(),
		AlarmSounding: t.AlarmSounding(),
	}
}

// Status returns the full session state.
func (t *Timer) Status() Status {
	return Status{
		Info:             t.Info(),
		Segment:          t.segment,
		Elapsed:          t.main.Elapsed(),
		AutoStartRunning: t.autoStart.Running(),
		SoundAlerts:      t.soundAlerts,
		PoseLengths:      slices.Clone(t.poseLengths),
		ChangePoseTimes:  slices.Clone(t.changePoseTimes),
	}
}

// OnTick registers the tick handler. nil clears it.
func (t *Timer) OnTick(fn func(Info)) { t.handlers.tick = fn }

// OnAlarm registers the handler told when the alarm starts or stops sounding.
func (t *Timer) OnAlarm(fn func(sounding bool)) { t.handlers.alarm = fn }

// OnTimerStarted registers the handler fired after each start.
func (t *Timer) OnTimerStarted(fn func()) { t.handlers.timerStarted = fn }

// OnAlert10MinutesRemaining registers the first threshold alert handler.
func (t *Timer) OnAlert10MinutesRemaining(fn func()) { t.handlers.alert10 = fn }

// OnAlert1MinuteRemaining registers the last threshold alert handler.
func (t *Timer) OnAlert1MinuteRemaining(fn func()) { t.handlers.alert1 = fn }

// OnChangePose registers the pose-change handler.
func (t *Timer) OnChangePose(fn func()) { t.handlers.changePose = fn }

// Start starts the main countdown. A nil soundAlerts lets the timer decide:
// alerts sound only for runs longer than the 10 minutes threshold without a
// pose-change schedule. Start is ignored while the countdown is running.
func (t *Timer) Start(soundAlerts *bool) {
	if t.main.Running() {
		return
	}

	if t.AlarmSounding() {
		t.StopAlarm()
	}

	t.alert10Sounded = false
	t.alert1Sounded = false
	t.autoStart.Reset()

	if soundAlerts != nil {
		t.soundAlerts = *soundAlerts
	} else {
		t.soundAlerts = len(t.poseLengths) == 0 && t.main.Duration() > t.settings.Alert10MinutesRemaining
	}

	t.starting = true
	t.main.Start()
	t.starting = false

	if t.handlers.timerStarted != nil {
		t.handlers.timerStarted()
	}

	if t.main.Expired() && !t.AlarmSounding() {
		t.startAlarm()
	}
}

// Stop pauses the main countdown. Alarm and auto-start are left alone.
func (t *Timer) Stop() {
	t.main.Stop()
}

// Pause is an alias of Stop.
func (t *Timer) Pause() {
	t.Stop()
}

// Next moves to the following segment: a pose becomes a break and a break a
// pose. It is ignored while the countdown is running.
func (t *Timer) Next() {
	if t.main.Running() {
		t.log.Warnw("Next ignored while the timer is running", "segment", t.segment.String())

		return
	}

	if t.AlarmSounding() {
		t.StopAlarm()
	}

	t.advance()
}

// Reset returns to the idle state: the alarm is silenced, both countdowns
// are cleared and the pose-change schedule starts over. The segment is kept.
func (t *Timer) Reset() {
	if t.AlarmSounding() {
		t.StopAlarm()
	}

	t.autoStart.Reset()
	t.main.Reset()
	t.rebuildChangePoseTimes()
}

// SetDuration replaces the length of the current segment and stops the
// countdown. A sounding alarm is stopped first.
func (t *Timer) SetDuration(d time.Duration) {
	if t.AlarmSounding() {
		t.StopAlarm()
	}

	t.main.SetDuration(d)
	t.rebuildChangePoseTimes()
}

// AddOne lengthens the segment by a minute and cancels any pending auto-start.
func (t *Timer) AddOne() {
	t.main.AddOne()
	t.autoStart.Reset()
}

// SubtractOne shortens the segment by a minute unless it is a minute or
// shorter, and cancels any pending auto-start.
func (t *Timer) SubtractOne() {
	if t.main.Duration() > minSubtractDuration {
		t.main.SubtractOne()
	}

	t.autoStart.Reset()
}

// Synchronize adopts a remote snapshot of the main countdown.
func (t *Timer) Synchronize(running bool, duration, remaining time.Duration) {
	t.main.Synchronize(running, duration, remaining)

	if t.main.Running() {
		t.autoStart.Reset()
	}

	t.rebuildChangePoseTimes()
}

// SynchronizeInfo adopts a remote snapshot including its alarm state.
func (t *Timer) SynchronizeInfo(info Info) {
	t.Synchronize(info.Running, info.Duration, info.Remaining)

	if info.AlarmSounding == t.AlarmSounding() {
		return
	}

	if info.AlarmSounding {
		t.startAlarm()
	} else {
		t.StopAlarm()
	}
}

// advance swaps the main countdown to the following segment.
func (t *Timer) advance() {
	t.segment = t.segment.next()

	duration := t.settings.PoseDuration
	if t.segment == SegmentBreak {
		duration = t.settings.BreakDuration
	}

	t.main.Reset()
	t.main.SetDuration(duration)
	t.rebuildChangePoseTimes()
}

func (t *Timer) onMainTick(reason countdown.Reason) {
	if reason == countdown.ReasonExpired && !t.starting && !t.AlarmSounding() {
		t.startAlarm()
	}

	t.tick()

	// Only the passage of time moves the countdown across a threshold;
	// commands that jump the elapsed time rebuild the schedule instead.
	switch reason {
	case countdown.ReasonStart:
		t.checkAlerts()
	case countdown.ReasonTick:
		t.checkAlerts()
		t.checkChangePose()
	}
}

func (t *Timer) onAutoStartTick(reason countdown.Reason) {
	if reason != countdown.ReasonExpired {
		return
	}

	t.log.Infow("Restarting unattended timer", "segment", t.segment.String())

	t.Reset()
	t.Start(nil)
}

func (t *Timer) tick() {
	if t.handlers.tick != nil {
		t.handlers.tick(t.Info())
	}
}

// mergeSettings overlays the non-zero fields of override onto base.
func mergeSettings(base, override Settings) Settings {
	pick := func(dst *time.Duration, v time.Duration) {
		if v > 0 {
			*dst = v
		}
	}

	pick(&base.PoseDuration, override.PoseDuration)
	pick(&base.BreakDuration, override.BreakDuration)
	pick(&base.AlarmDuration, override.AlarmDuration)
	pick(&base.AutoStartDuration, override.AutoStartDuration)
	pick(&base.Alert1MinuteRemaining, override.Alert1MinuteRemaining)
	pick(&base.Alert10MinutesRemaining, override.Alert10MinutesRemaining)
	pick(&base.TickPeriod, override.TickPeriod)

	if override.PoseLengths != nil {
		base.PoseLengths = slices.Clone(override.PoseLengths)
	}

	return base
}
