// Package countdown implements a drift-correct countdown clock.
//
// A Timer tracks elapsed and remaining time against a duration across any
// number of start/stop segments. Ticks are aligned to whole periods of the
// remaining time, and a final tick is delivered exactly at expiry.
// The Timer is not goroutine safe; drive it from a single goroutine such as a
// clock.Loop.
package countdown
