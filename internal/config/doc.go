// Package config loads cliffordt settings. The schema, with defaults and
// constraints, is an embedded CUE definition; an optional user file is
// unified with it, checked for concreteness and decoded into Config.
// Command-line flags override the decoded values.
package config
