// Package control runs one-shot commands against the pose timer server.
//
// It parses command names and arguments shared by the pose-timer CLI and the
// interactive console, executes them with the client from package common and
// renders the resulting state.
package control
