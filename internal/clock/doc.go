// Package clock is the time source and callback scheduler behind the timers.
//
// Clock hides wall-clock reads and deferred callbacks behind one interface so
// the timer state machines can run against real time (Loop) or against a
// virtual clock in tests (Manual). Every scheduled callback returns a Handle
// whose Cancel is idempotent.
//
// Loop serializes all callbacks and submitted commands onto a single
// goroutine; code running inside a Loop callback needs no locking.
package clock
