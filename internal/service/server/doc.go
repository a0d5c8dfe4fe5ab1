// Package server runs the pose timer gRPC server.
//
// The server owns the authoritative session timer. It runs the timer on a
// single event loop, applies commands from clients, and streams every tick
// and alarm to watchers together with periodic snapshots.
package server
