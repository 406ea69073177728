package errors

import "fmt"

var (
	ErrWorkerPanic   = fmt.Errorf("worker panic")
	ErrEmptyIdentity = fmt.Errorf("identity is empty")
	ErrIdentityTaken = fmt.Errorf("identity already taken")
	ErrSlowConsumer  = fmt.Errorf("send buffer full")
	ErrServiceClosed = fmt.Errorf("service is shutting down")
)
