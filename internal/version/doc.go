// Package version holds the build metadata of the pose timer binaries, the
// shared `version` subcommand and the user agent clients send to the server.
package version
