package router

// CodedError carries a stable error code and a caller-safe message. The
// wrapped cause stays internal; it is logged, never serialized.
type CodedError struct {
	Code    string
	Message string
	err     error
}

func (e *CodedError) Error() string {
	if e.err != nil {
		return e.Code + ": " + e.err.Error()
	}
	return e.Code + ": " + e.Message
}

func (e *CodedError) Unwrap() error { return e.err }
