// Package modeltimer implements the session timer used to time model poses.
//
// A Timer orchestrates a main countdown, an alarm window that opens when the
// countdown expires, an auto-start countdown that restarts an unattended
// session, threshold alerts (10 minutes and 1 minute remaining) and a
// schedule of mid-pose "change pose" notifications.
//
// Sessions alternate between pose and break segments. The segment is an
// explicit tag rather than something inferred from the duration.
//
// Like the countdown it is built on, a Timer is single-threaded: every
// command and every clock callback must run on the same goroutine.
package modeltimer
