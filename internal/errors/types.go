package errors

import "errors"

var (
	ErrManifestNotFound    = errors.New("pipeline manifest not found")
	ErrManifestParseFailed = errors.New("pipeline manifest parsing failed")
	ErrStepFailed          = errors.New("pipeline step failed")
	ErrRuntimeFailed       = errors.New("runtime operation failed")
	ErrConfigInvalid       = errors.New("configuration invalid")
	ErrNotifyFailed        = errors.New("notification failed")
	ErrVCSFailed           = errors.New("version control operation failed")
	ErrFileSystemFailed    = errors.New("filesystem operation failed")
)

type ShipgateError struct {
	Type        error
	Context     string
	Cause       string
	Suggestion  string
	OriginalErr error
}

func (e *ShipgateError) Error() string {
	return e.OriginalErr.Error()
}

func (e *ShipgateError) Unwrap() error {
	return e.OriginalErr
}

func NewShipgateError(errorType error, context, cause, suggestion string, originalErr error) *ShipgateError {
	return &ShipgateError{
		Type:        errorType,
		Context:     context,
		Cause:       cause,
		Suggestion:  suggestion,
		OriginalErr: originalErr,
	}
}

func NewManifestError(context, cause, suggestion string, originalErr error) *ShipgateError {
	return NewShipgateError(ErrManifestNotFound, context, cause, suggestion, originalErr)
}

func NewParseError(context, cause, suggestion string, originalErr error) *ShipgateError {
	return NewShipgateError(ErrManifestParseFailed, context, cause, suggestion, originalErr)
}

func NewStepError(context, cause, suggestion string, originalErr error) *ShipgateError {
	return NewShipgateError(ErrStepFailed, context, cause, suggestion, originalErr)
}

func NewRuntimeError(context, cause, suggestion string, originalErr error) *ShipgateError {
	return NewShipgateError(ErrRuntimeFailed, context, cause, suggestion, originalErr)
}

func NewConfigError(context, cause, suggestion string, originalErr error) *ShipgateError {
	return NewShipgateError(ErrConfigInvalid, context, cause, suggestion, originalErr)
}

func NewNotifyError(context, cause, suggestion string, originalErr error) *ShipgateError {
	return NewShipgateError(ErrNotifyFailed, context, cause, suggestion, originalErr)
}

func NewVCSError(context, cause, suggestion string, originalErr error) *ShipgateError {
	return NewShipgateError(ErrVCSFailed, context, cause, suggestion, originalErr)
}

func NewFileSystemError(context, cause, suggestion string, originalErr error) *ShipgateError {
	return NewShipgateError(ErrFileSystemFailed, context, cause, suggestion, originalErr)
}
