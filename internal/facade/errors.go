package facade

import "fmt"

// TransportError tags a failure to reach the networked backend or to get a
// well-formed response out of it: connection refused, timeout, aborted
// request, undecodable body. It is the only error class that triggers
// fail-over to the offline backend.
type TransportError struct {
	Err error
}

func (e *TransportError) Error() string {
	return fmt.Sprintf("transport failure: %v", e.Err)
}

func (e *TransportError) Unwrap() error {
	return e.Err
}

// AppError tags a well-formed failure response from a reachable backend
// (validation, not-found). It is returned to the caller as-is and never
// triggers fail-over: the network path is up and functioning.
type AppError struct {
	Status  int
	Message string
}

func (e *AppError) Error() string {
	return e.Message
}
