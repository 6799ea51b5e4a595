// Package logging builds the phuslu/log logger shared by every component.
//
// Without a log file, entries are written to stderr by a ConsoleWriter at the
// configured level (warn by default), colored when stderr is a terminal. With
// a file, entries are written as JSON lines through a rotating FileWriter so
// the logs command can tail and format them. The monitor TUI always logs to
// a file so output does not tear the screen.
package logging
