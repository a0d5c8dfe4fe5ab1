package modeltimer

// checkAlerts fires each threshold alert at most once per run. Reaching the
// 1 minute threshold also retires a 10 minutes alert that never sounded.
func (t *Timer) checkAlerts() {
	if !t.soundAlerts {
		return
	}

	remaining := t.main.Remaining()
	if remaining == 0 {
		return
	}

	switch {
	case !t.alert1Sounded && remaining <= t.settings.Alert1MinuteRemaining:
		t.alert1Sounded = true
		t.alert10Sounded = true

		if t.handlers.alert1 != nil {
			t.handlers.alert1()
		}
	case !t.alert10Sounded && remaining <= t.settings.Alert10MinutesRemaining:
		t.alert10Sounded = true

		if t.handlers.alert10 != nil {
			t.handlers.alert10()
		}
	}
}
