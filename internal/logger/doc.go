// Package logger wraps zap for the pose-timer binaries:
//   - a global sugared logger with a console encoder and an atomic level,
//   - context helpers (ToContext/FromContext/WithName/WithKV),
//   - level parsing for configuration and flags,
//   - leveled helpers (Infof, WarnKV, ...) that log through the context logger.
//
// Services put a named logger into their context once and pass the context
// down, so every line carries the component that wrote it.
package logger
