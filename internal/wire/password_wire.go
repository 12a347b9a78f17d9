package wire

import (
	"net/http"

	"hris-auth/internal/adaptor"

	"github.com/go-chi/chi/v5"
)

func wirePassword(r chi.Router, passwordHandler *adaptor.PasswordHandler, authenticated func(http.Handler) http.Handler) {
	// ==================== RESET (public) ====================
	r.Post("/verify-recaptcha", passwordHandler.VerifyCaptcha)
	r.Post("/forgot-password", passwordHandler.ForgotPassword)
	r.Post("/verify-reset-code", passwordHandler.VerifyResetCode)
	r.Post("/reset-password", passwordHandler.ResetPassword)

	// ==================== CHANGE ====================
	r.Group(func(r chi.Router) {
		r.Use(authenticated)

		r.Post("/verify-current-password", passwordHandler.VerifyCurrentPassword)
		r.Post("/send-password-change-code", passwordHandler.SendPasswordChangeCode)
	})
	r.Post("/verify-password-change-code", passwordHandler.VerifyPasswordChangeCode)
	r.Post("/complete-password-change", passwordHandler.CompletePasswordChange)
}
