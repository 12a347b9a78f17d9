package usecase

import "errors"

// Failure kinds surfaced by the auth services. The text of each is safe to
// show to the client; handlers pick the HTTP status with errors.Is.
var (
	ErrNotFound           = errors.New("User not found")
	ErrInvalidCredentials = errors.New("Invalid credentials")

	ErrNoCodeFound  = errors.New("No code found. Please request a new one.")
	ErrCodeExpired  = errors.New("Code has expired. Please request a new one.")
	ErrCodeMismatch = errors.New("Invalid code")
	ErrNoSession    = errors.New("Invalid or expired session.")

	ErrFieldMissing     = errors.New("All fields are required")
	ErrPasswordMismatch = errors.New("Passwords do not match")
	ErrPasswordTooShort = errors.New("Password is too short")
	ErrPasswordTooLong  = errors.New("Password is too long")

	ErrCaptchaFailed      = errors.New("reCAPTCHA verification failed")
	ErrCaptchaUnavailable = errors.New("Unable to verify reCAPTCHA")
	ErrDispatchFailure    = errors.New("Failed to send verification code")
	ErrStoreFailure       = errors.New("Internal server error")

	// ErrEmailMismatch rejects an authenticated request naming another user's email.
	ErrEmailMismatch = errors.New("Email does not match the signed-in user")
)

// inputError carries a client-facing message while matching its kind with errors.Is.
type inputError struct {
	kind error
	msg  string
}

func (e *inputError) Error() string { return e.msg }
func (e *inputError) Unwrap() error { return e.kind }

func invalidInput(kind error, msg string) error {
	return &inputError{kind: kind, msg: msg}
}
