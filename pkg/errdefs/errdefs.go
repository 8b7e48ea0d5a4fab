package errdefs

import (
	"errors"
	"fmt"
	"strings"
	"time"
)

// ConfigError indicates a malformed or incomplete distribution descriptor.
// Configuration errors are fatal at load time and are never retried.
type ConfigError struct {
	File    string
	Message string
}

func (e *ConfigError) Error() string {
	if e.File != "" {
		return fmt.Sprintf("%s: %s", e.File, e.Message)
	}
	return e.Message
}

func NewConfigError(file, format string, args ...interface{}) *ConfigError {
	return &ConfigError{
		File:    file,
		Message: fmt.Sprintf(format, args...),
	}
}

func IsConfigError(err error) bool {
	var configErr *ConfigError
	return errors.As(err, &configErr)
}

// CompatibilityError indicates that a remote unit advertised a spec which
// conflicts with the local one. This is a permanent fault requiring operator
// intervention, reported distinctly from a relation that is merely not ready.
type CompatibilityError struct {
	Unit   string
	Key    string
	Local  string
	Remote string
}

func (e *CompatibilityError) Error() string {
	return fmt.Sprintf("spec mismatch with unit %s: %s: %q != %q",
		e.Unit, e.Key, e.Local, e.Remote)
}

func NewCompatibilityError(unit, key, local, remote string) *CompatibilityError {
	return &CompatibilityError{
		Unit:   unit,
		Key:    key,
		Local:  local,
		Remote: remote,
	}
}

func IsCompatibilityError(err error) bool {
	var compatErr *CompatibilityError
	return errors.As(err, &compatErr)
}

// TimeoutError indicates a readiness wait exhausted its deadline. Callers use
// this to distinguish "still converging" from a broken administrative command.
type TimeoutError struct {
	Op      string
	Timeout time.Duration
	Detail  string
}

func (e *TimeoutError) Error() string {
	msg := fmt.Sprintf("timed out after %s waiting for %s", e.Timeout, e.Op)
	if e.Detail != "" {
		msg += ": " + e.Detail
	}
	return msg
}

func NewTimeoutError(op string, timeout time.Duration, detail string) *TimeoutError {
	return &TimeoutError{Op: op, Timeout: timeout, Detail: detail}
}

func IsTimeout(err error) bool {
	var timeoutErr *TimeoutError
	return errors.As(err, &timeoutErr)
}

// CommandError wraps a non-zero exit from an administrative command with its
// captured output. Output is attached verbatim so operators can see what the
// underlying tool reported.
type CommandError struct {
	Cmd    string
	Output string
	Err    error
}

func (e *CommandError) Error() string {
	msg := fmt.Sprintf("command %q failed: %v", e.Cmd, e.Err)
	if out := strings.TrimSpace(e.Output); out != "" {
		msg += "\n" + out
	}
	return msg
}

func (e *CommandError) Unwrap() error {
	return e.Err
}

func NewCommandError(cmd string, output string, err error) *CommandError {
	return &CommandError{Cmd: cmd, Output: output, Err: err}
}

func IsCommandError(err error) bool {
	var cmdErr *CommandError
	return errors.As(err, &cmdErr)
}

var (
	ErrStoreClosed  = errors.New("state store closed")
	ErrKeyNotFound  = errors.New("key not found")
	ErrNotTwoNodes  = errors.New("HA failover heuristic requires exactly two candidate nodes")
	ErrNotConverged = errors.New("placeholder resolution did not converge")
)
