// Package logging provides file-based structured logging with rotation for scout.
//
// One-shot commands log to stderr at the configured level. With --debug, or
// whenever the interactive TUI owns the terminal, logs go to ~/.scout/logs/
// instead so they never interleave with what the user is looking at.
package logging
