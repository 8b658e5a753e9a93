package errs

import "errors"

var (
	ErrInvalidInput    = errors.New("invalid input")
	ErrNotFound        = errors.New("not found")
	ErrBusy            = errors.New("operation already in progress")
	ErrCapture         = errors.New("capture failed")
	ErrTurnLimit       = errors.New("conversation turn limit reached")
	ErrAttachmentLimit = errors.New("attachment limit reached")
)

func IsNotFound(err error) bool {
	return errors.Is(err, ErrNotFound)
}
