package ai

import "fmt"

// ErrorKind classifies a failed model call.
type ErrorKind int

const (
	Timeout ErrorKind = iota + 1
	AuthenticationFailed
	ServiceUnavailable
	MalformedResponse
	NetworkError
)

func (k ErrorKind) String() string {
	switch k {
	case Timeout:
		return "timeout"
	case AuthenticationFailed:
		return "authentication_failed"
	case ServiceUnavailable:
		return "service_unavailable"
	case MalformedResponse:
		return "malformed_response"
	case NetworkError:
		return "network_error"
	default:
		return "unknown"
	}
}

// RequestError is returned by Ask for every outbound call failure.
type RequestError struct {
	Kind    ErrorKind
	Status  int // HTTP status when one was received
	Message string
	Err     error
}

func (e *RequestError) Error() string {
	if e.Err != nil {
		return fmt.Sprintf("%s: %s: %v", e.Kind, e.Message, e.Err)
	}
	return fmt.Sprintf("%s: %s", e.Kind, e.Message)
}

func (e *RequestError) Unwrap() error {
	return e.Err
}
