package response

type CaptchaResponse struct {
	Success bool   `json:"success"`
	Message string `json:"message"`
}

type VerifyResetCodeResponse struct {
	Message  string `json:"message"`
	UserID   string `json:"userId"`
	Verified bool   `json:"verified"`
}
