package wire

import (
	"hris-auth/internal/adaptor"

	"github.com/go-chi/chi/v5"
)

// wireAuth mounts the two-factor login steps. All are public; the token is
// only minted by the last one.
func wireAuth(r chi.Router, authHandler *adaptor.AuthHandler) {
	r.Post("/login", authHandler.Login)
	r.Post("/send-2fa-code", authHandler.SendTwoFactorCode)
	r.Post("/verify-2fa-code", authHandler.VerifyTwoFactorCode)
	r.Post("/complete-2fa-login", authHandler.CompleteTwoFactorLogin)
}
