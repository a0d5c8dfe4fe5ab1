package modeltimer

// startAlarm opens the alarm window and arms the unattended restart.
func (t *Timer) startAlarm() {
	if t.AlarmSounding() {
		t.log.Debugw("Alarm start ignored, already sounding")

		return
	}

	t.alarm = t.clock.AfterFunc(t.settings.AlarmDuration, t.onAlarmTimeout)

	t.autoStart.Reset()
	t.autoStart.Start()

	t.notifyAlarm(true)
}

// StopAlarm silences a sounding alarm. The countdown stays where it is and a
// pending auto-start keeps running.
func (t *Timer) StopAlarm() {
	if !t.AlarmSounding() {
		return
	}

	t.alarm.Cancel()
	t.alarm = nil

	t.notifyAlarm(false)
}

// onAlarmTimeout closes an alarm nobody acknowledged and prepares the next
// segment. The handle is cleared first so the ticks of the segment swap
// already report a silent alarm.
func (t *Timer) onAlarmTimeout() {
	t.alarm = nil
	t.advance()

	t.notifyAlarm(false)
}

func (t *Timer) notifyAlarm(sounding bool) {
	if t.handlers.alarm != nil {
		t.handlers.alarm(sounding)
	}
}
