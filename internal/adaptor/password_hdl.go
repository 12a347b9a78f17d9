package adaptor

import (
	"net/http"

	"hris-auth/internal/dto/request"
	"hris-auth/internal/dto/response"
	"hris-auth/internal/usecase"
	"hris-auth/pkg/utils"

	"go.uber.org/zap"
)

type PasswordHandler struct {
	service usecase.PasswordService
	log     *zap.Logger
}

func NewPasswordHandler(service usecase.PasswordService, log *zap.Logger) *PasswordHandler {
	return &PasswordHandler{
		service: service,
		log:     log.With(zap.String("handler", "password")),
	}
}

// VerifyCaptcha handles POST /verify-recaptcha
func (h *PasswordHandler) VerifyCaptcha(w http.ResponseWriter, r *http.Request) {
	var req request.VerifyCaptchaRequest
	if !decodeJSON(w, r, &req) {
		return
	}

	if err := h.service.VerifyCaptcha(r.Context(), &req, clientIP(r)); err != nil {
		handleServiceError(h.log, w, err, "verify reCAPTCHA")
		return
	}

	utils.ResponseSuccess(w, response.CaptchaResponse{Success: true, Message: "reCAPTCHA verified"})
}

// ForgotPassword handles POST /forgot-password
func (h *PasswordHandler) ForgotPassword(w http.ResponseWriter, r *http.Request) {
	var req request.ForgotPasswordRequest
	if !decodeJSON(w, r, &req) {
		return
	}

	if err := h.service.ForgotPassword(r.Context(), &req, clientIP(r)); err != nil {
		handleServiceError(h.log, w, err, "forgot password")
		return
	}

	utils.ResponseMessage(w, "Password reset code sent")
}

// VerifyResetCode handles POST /verify-reset-code
func (h *PasswordHandler) VerifyResetCode(w http.ResponseWriter, r *http.Request) {
	var req request.VerifyCodeRequest
	if !decodeJSON(w, r, &req) {
		return
	}

	res, err := h.service.VerifyResetCode(r.Context(), &req)
	if err != nil {
		handleServiceError(h.log, w, err, "verify reset code")
		return
	}

	utils.ResponseSuccess(w, res)
}

// ResetPassword handles POST /reset-password
func (h *PasswordHandler) ResetPassword(w http.ResponseWriter, r *http.Request) {
	var req request.SetPasswordRequest
	if !decodeJSON(w, r, &req) {
		return
	}

	if err := h.service.ResetPassword(r.Context(), &req); err != nil {
		handleServiceError(h.log, w, err, "reset password")
		return
	}

	utils.ResponseMessage(w, "Password has been reset")
}

// VerifyCurrentPassword handles POST /verify-current-password (authenticated)
func (h *PasswordHandler) VerifyCurrentPassword(w http.ResponseWriter, r *http.Request) {
	var req request.VerifyCurrentPasswordRequest
	if !decodeJSON(w, r, &req) || !requireOwnEmail(h.log, w, r, req.Email) {
		return
	}

	if err := h.service.VerifyCurrentPassword(r.Context(), &req); err != nil {
		handleServiceError(h.log, w, err, "verify current password")
		return
	}

	utils.ResponseSuccess(w, response.VerifiedResponse{Message: "Current password verified", Verified: true})
}

// SendPasswordChangeCode handles POST /send-password-change-code (authenticated)
func (h *PasswordHandler) SendPasswordChangeCode(w http.ResponseWriter, r *http.Request) {
	var req request.SendPasswordChangeCodeRequest
	if !decodeJSON(w, r, &req) || !requireOwnEmail(h.log, w, r, req.Email) {
		return
	}

	if err := h.service.SendPasswordChangeCode(r.Context(), &req); err != nil {
		handleServiceError(h.log, w, err, "send password change code")
		return
	}

	utils.ResponseMessage(w, "Verification code sent")
}

// VerifyPasswordChangeCode handles POST /verify-password-change-code
func (h *PasswordHandler) VerifyPasswordChangeCode(w http.ResponseWriter, r *http.Request) {
	var req request.VerifyCodeRequest
	if !decodeJSON(w, r, &req) {
		return
	}

	if err := h.service.VerifyPasswordChangeCode(r.Context(), &req); err != nil {
		handleServiceError(h.log, w, err, "verify password change code")
		return
	}

	utils.ResponseSuccess(w, response.VerifiedResponse{Message: "Code verified", Verified: true})
}

// CompletePasswordChange handles POST /complete-password-change
func (h *PasswordHandler) CompletePasswordChange(w http.ResponseWriter, r *http.Request) {
	var req request.SetPasswordRequest
	if !decodeJSON(w, r, &req) {
		return
	}

	if err := h.service.CompletePasswordChange(r.Context(), &req); err != nil {
		handleServiceError(h.log, w, err, "complete password change")
		return
	}

	utils.ResponseMessage(w, "Password changed successfully")
}
