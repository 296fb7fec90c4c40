package common

import (
	"errors"
	"fmt"

	"github.com/opsdesk/helpdesk/logger"
)

func NewErrorf(format string, a ...any) error {
	return errors.New(fmt.Sprintf(format, a...))
}

func NewError(a ...any) error {
	return errors.New(fmt.Sprint(a...))
}

// Combine joins the non-nil errors, returning nil when there are none.
func Combine(errs ...error) error {
	return errors.Join(errs...)
}

// Recover logs a recovered panic under msg. Call it deferred.
func Recover(msg string) any {
	panicErr := recover()
	if panicErr != nil && msg != "" {
		logger.Error(msg, " panic: ", panicErr)
	}
	return panicErr
}
