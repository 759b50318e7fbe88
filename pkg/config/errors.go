package config

import (
	"errors"
	"fmt"
	"strings"
)

var (
	// ErrSyntax marks a configuration file that could not be parsed.
	ErrSyntax = errors.New("syntax error")
	// ErrSchema marks a configuration file with an unexpected shape.
	ErrSchema = errors.New("schema validation failed")
	// ErrInvalidSettings marks merged settings the engine does not accept.
	ErrInvalidSettings = errors.New("invalid settings")
)

// Issue is a single problem found in a configuration source.
type Issue struct {
	Location string // JSON pointer or line:column, may be empty
	Message  string
}

func (i Issue) String() string {
	location := strings.TrimSpace(i.Location)
	if location == "" {
		return i.Message
	}
	return fmt.Sprintf("%s: %s", location, i.Message)
}

// Error is a configuration resolution failure.
type Error struct {
	Path   string // configuration file, empty for command-line data
	Err    error
	Issues []Issue
}

func (e *Error) Error() string {
	msg := e.Err.Error()
	if e.Path != "" {
		msg = fmt.Sprintf("%s: %s", e.Path, msg)
	}
	if len(e.Issues) == 0 {
		return msg
	}
	parts := make([]string, 0, len(e.Issues))
	for _, issue := range e.Issues {
		parts = append(parts, issue.String())
	}
	return msg + ": " + strings.Join(parts, "; ")
}

func (e *Error) Unwrap() error {
	return e.Err
}

// Diagnostic renders one issue per line.
func (e *Error) Diagnostic() string {
	if len(e.Issues) <= 1 {
		return e.Error()
	}
	var b strings.Builder
	if e.Path != "" {
		b.WriteString(e.Path)
		b.WriteString(": ")
	}
	fmt.Fprintf(&b, "%v (%d issues)", e.Err, len(e.Issues))
	for _, issue := range e.Issues {
		b.WriteString("\n  ")
		b.WriteString(issue.String())
	}
	return b.String()
}

// Issues returns the issues carried by err, if any.
func Issues(err error) []Issue {
	var cfgErr *Error
	if errors.As(err, &cfgErr) {
		return cfgErr.Issues
	}
	return nil
}
