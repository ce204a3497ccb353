package errors

import "fmt"

var (
	ErrWorkerPanic     = fmt.Errorf("worker panic")
	ErrMailboxClosed   = fmt.Errorf("mailbox closed")
	ErrDecode          = fmt.Errorf("decode error")
	ErrFrameTooLarge   = fmt.Errorf("frame too large")
	ErrInvalidUsername = fmt.Errorf("invalid username")
	ErrUsernameTaken   = fmt.Errorf("username taken")
	ErrUnknownSession  = fmt.Errorf("unknown session")
)
