package request

type LoginRequest struct {
	EmployeeNumber string `json:"employeeNumber" validate:"required"`
	Password       string `json:"password" validate:"required"`
}

type SendTwoFactorCodeRequest struct {
	Email          string `json:"email" validate:"required,email"`
	EmployeeNumber string `json:"employeeNumber" validate:"required"`
}

// VerifyCodeRequest is shared by every step that checks a one-time code.
type VerifyCodeRequest struct {
	Email string `json:"email" validate:"required,email"`
	Code  string `json:"code" validate:"required"`
}

type CompleteLoginRequest struct {
	Email          string `json:"email" validate:"required,email"`
	EmployeeNumber string `json:"employeeNumber" validate:"required"`
}
