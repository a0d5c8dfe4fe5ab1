// Package follower mirrors the server's session timer locally.
//
// A follower runs its own session timer on a local event loop and keeps it
// in step with the server by applying the snapshots streamed by Watch. Local
// alarms, alerts and pose changes are reported through the logger, so a
// follower behaves like one more display of the shared session.
package follower
