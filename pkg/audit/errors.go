package audit

import "errors"

var (
	// ErrEventValidation indicates event validation failed.
	ErrEventValidation = errors.New("event validation failed")

	// ErrBufferFull indicates the async buffer rejected an event.
	ErrBufferFull = errors.New("async buffer is full")

	// ErrStorageClosed indicates a write after the async writer was closed.
	ErrStorageClosed = errors.New("audit storage is closed")
)
