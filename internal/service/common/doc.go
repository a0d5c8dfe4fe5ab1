// Package common holds helpers shared by the pose-timer client commands.
//
// It provides a gRPC client wrapper with timeouts, event streaming and a
// health wait, and a helper to detect the current system actor
// (hostname/username) for the server's audit log.
//
//nolint:revive,nolintlint // Package name "common" is intentional for shared helpers.
package common
