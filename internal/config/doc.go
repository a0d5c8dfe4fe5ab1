// Package config defines the settings shared by the pose timer binaries and
// provides helpers to load, validate and save them in YAML format.
//
// Load applies POSE_TIMER_* environment overrides on top of the file, and
// Validate fills every timer duration left empty with its default.
package config
