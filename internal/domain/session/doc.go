// Package session contains the audit types kept by the timer server.
//
// It defines Actor (who issued a command), Change (which command and when)
// and State (the timer status plus the last change), with Clone helpers to
// avoid leaking internal references.
package session
