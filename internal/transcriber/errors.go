package transcriber

import "errors"

// FatalTranscriptionError is a setup problem that repeats on every chunk until
// fixed, such as a missing model file. Gate.Check reports it at startup.
type FatalTranscriptionError struct {
	Adapter string
	Err     error
}

func (e *FatalTranscriptionError) Error() string {
	if e.Adapter == "" {
		return e.Err.Error()
	}
	return e.Adapter + ": " + e.Err.Error()
}

func (e *FatalTranscriptionError) Unwrap() error { return e.Err }

// NewFatalTranscriptionError returns nil for a nil err.
func NewFatalTranscriptionError(adapter string, err error) error {
	if err == nil {
		return nil
	}
	return &FatalTranscriptionError{Adapter: adapter, Err: err}
}

func IsFatalTranscriptionError(err error) bool {
	var fatal *FatalTranscriptionError
	return errors.As(err, &fatal)
}
