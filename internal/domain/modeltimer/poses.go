package modeltimer

import (
	"slices"
	"time"
)

// SetPoseLengths replaces the pose-change schedule. Lengths accumulate into
// elapsed-time thresholds; thresholds already reached in the current segment
// are dropped, so reassigning mid-run only affects future change points.
// Non-positive lengths are ignored.
func (t *Timer) SetPoseLengths(lengths []time.Duration) {
	t.poseLengths = slices.DeleteFunc(slices.Clone(lengths), func(d time.Duration) bool { return d <= 0 })
	t.rebuildChangePoseTimes()
}

// PoseLengths returns the pose-change schedule.
func (t *Timer) PoseLengths() []time.Duration {
	return slices.Clone(t.poseLengths)
}

// ChangePoseTimes returns the elapsed-time thresholds that have not fired yet.
func (t *Timer) ChangePoseTimes() []time.Duration {
	return slices.Clone(t.changePoseTimes)
}

func (t *Timer) rebuildChangePoseTimes() {
	var (
		elapsed = t.main.Elapsed()
		at      time.Duration
	)

	t.changePoseTimes = t.changePoseTimes[:0]

	for _, length := range t.poseLengths {
		at += length
		if at > elapsed {
			t.changePoseTimes = append(t.changePoseTimes, at)
		}
	}
}

// checkChangePose fires OnChangePose once for every threshold the elapsed
// time has reached. Breaks and expired segments never change pose.
func (t *Timer) checkChangePose() {
	if t.segment != SegmentPose || t.main.Expired() {
		return
	}

	elapsed := t.main.Elapsed()

	for len(t.changePoseTimes) > 0 && t.changePoseTimes[0] <= elapsed {
		t.changePoseTimes = t.changePoseTimes[1:]

		if t.handlers.changePose != nil {
			t.handlers.changePose()
		}
	}
}
