package sandbox

import (
	"errors"
	"fmt"
)

// EnvError means the execution environment itself is broken: a file could not be
// written or renamed, a toolchain binary is missing, and so on. It never describes a
// problem with the submitted code.
type EnvError struct {
	Op  string
	Err error
}

func (e *EnvError) Error() string {
	return fmt.Sprintf("environment fault: %s: %v", e.Op, e.Err)
}

func (e *EnvError) Unwrap() error {
	return e.Err
}

func NewEnvError(op string, err error) *EnvError {
	return &EnvError{Op: op, Err: err}
}

func IsEnvError(err error) bool {
	var envErr *EnvError
	return errors.As(err, &envErr)
}
