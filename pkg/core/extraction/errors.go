package extraction

import "fmt"

// RequestError reports a transport or service-level failure of the
// extraction call. No partial state is recorded when it surfaces.
type RequestError struct {
	Err error
}

func (e *RequestError) Error() string {
	return fmt.Sprintf("analysis extraction failed: %v", e.Err)
}

func (e *RequestError) Unwrap() error { return e.Err }

// MalformedResultError reports a structured response that failed schema
// validation or parsing. The pipeline never returns a partially populated
// entity alongside it.
type MalformedResultError struct {
	Err error
}

func (e *MalformedResultError) Error() string {
	return fmt.Sprintf("malformed analysis result: %v", e.Err)
}

func (e *MalformedResultError) Unwrap() error { return e.Err }
