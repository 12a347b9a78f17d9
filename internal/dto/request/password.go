package request

type VerifyCaptchaRequest struct {
	Token string `json:"token" validate:"required"`
}

type ForgotPasswordRequest struct {
	Email          string `json:"email" validate:"required,email"`
	RecaptchaToken string `json:"recaptchaToken" validate:"required"`
}

// SetPasswordRequest completes both the reset and the change flow.
type SetPasswordRequest struct {
	Email           string `json:"email" validate:"required,email"`
	NewPassword     string `json:"newPassword" validate:"required"`
	ConfirmPassword string `json:"confirmPassword" validate:"required"`
}

type VerifyCurrentPasswordRequest struct {
	Email           string `json:"email" validate:"required,email"`
	CurrentPassword string `json:"currentPassword" validate:"required"`
}

type SendPasswordChangeCodeRequest struct {
	Email string `json:"email" validate:"required,email"`
}
