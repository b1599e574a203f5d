package main

import (
	"context"
	"errors"
	"fmt"

	"github.com/sbvh/collegematch/internal/matcherr"
)

// exitCodeFor maps a command error to §6's exit code table. cobra's own
// "invalid arguments" errors (unknown flag, wrong arg count) already read
// as a plain error here, so they fall through to the 2 default alongside
// argValidationError.
func exitCodeFor(err error) int {
	if err == nil {
		return 0
	}
	if errors.Is(err, context.Canceled) {
		return 5
	}
	if matcherr.IsKind(err, matcherr.KindMasterIndexCorruption) {
		return 3
	}
	if matcherr.IsKind(err, matcherr.KindRowStoreError) {
		return 4
	}
	var argErr argValidationError
	if errors.As(err, &argErr) {
		return 2
	}
	return 2
}

// argValidationError marks a command-line usage error (§6 exit code 2).
type argValidationError struct{ msg string }

func (e argValidationError) Error() string { return e.msg }

func invalidArgs(format string, args ...interface{}) error {
	return argValidationError{msg: fmt.Sprintf(format, args...)}
}
