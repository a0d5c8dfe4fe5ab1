// Package console implements the interactive pose-timer console.
//
// The console reads commands from the keyboard with readline, sends them to
// the server and prints the resulting state. It understands the same command
// names as the one-shot CLI plus status, help and quit.
package console
