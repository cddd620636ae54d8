package app

import (
	"errors"

	"github.com/chriscorrea/workbench/internal/prompt"
	"github.com/chriscorrea/workbench/internal/store"
)

// process exit codes
const (
	ExitOK          = 0
	ExitFailure     = 1
	ExitInvalid     = 2 // field values or a template file failed validation
	ExitUnavailable = 3 // unknown or disabled template, project or snippet
	ExitDispatch    = 4 // the compiled prompt could not be delivered
)

// ExitCode maps an error returned by a command to a process exit code
func ExitCode(err error) int {
	var invalid *InvalidError
	var validation *prompt.ValidationError
	var dispatch *DispatchError

	switch {
	case err == nil:
		return ExitOK
	case errors.As(err, &invalid), errors.As(err, &validation):
		return ExitInvalid
	case errors.Is(err, store.ErrNotFound), errors.Is(err, ErrTemplateDisabled):
		return ExitUnavailable
	case errors.As(err, &dispatch):
		return ExitDispatch
	default:
		return ExitFailure
	}
}
