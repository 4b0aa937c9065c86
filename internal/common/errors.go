package common

// AppError is the failure shape domain services hand to HTTP handlers: a
// stable machine code the register client can branch on, an operator-facing
// message, and the HTTP status to answer with. The wrapped cause keeps
// errors.Is/As working across the service boundary.
type AppError struct {
	Code       string
	Message    string
	HTTPStatus int
	Err        error
	Details    any
}

func (e *AppError) Error() string {
	if e == nil {
		return ""
	}
	if e.Err != nil {
		return e.Err.Error()
	}
	return e.Message
}

func (e *AppError) Unwrap() error {
	if e == nil {
		return nil
	}
	return e.Err
}

// NewAppError builds an AppError carrying the HTTP status the register
// client should see for this failure.
func NewAppError(code, message string, status int, err error) *AppError {
	return &AppError{Code: code, Message: message, HTTPStatus: status, Err: err}
}
