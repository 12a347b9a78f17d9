package adaptor

import (
	"errors"
	"net/http"

	"hris-auth/internal/dto/request"
	"hris-auth/internal/dto/response"
	"hris-auth/internal/usecase"
	"hris-auth/pkg/utils"

	"go.uber.org/zap"
)

type AuthHandler struct {
	service usecase.AuthService
	log     *zap.Logger
}

func NewAuthHandler(service usecase.AuthService, log *zap.Logger) *AuthHandler {
	return &AuthHandler{
		service: service,
		log:     log.With(zap.String("handler", "auth")),
	}
}

// Login handles POST /login
func (h *AuthHandler) Login(w http.ResponseWriter, r *http.Request) {
	var req request.LoginRequest
	if !decodeJSON(w, r, &req) {
		return
	}

	res, err := h.service.Login(r.Context(), &req)
	if err != nil {
		// unknown users and wrong passwords look the same to the client
		if errors.Is(err, usecase.ErrNotFound) || errors.Is(err, usecase.ErrInvalidCredentials) {
			h.log.Warn("login failed", zap.Error(err))
			utils.ResponseBadRequest(w, "Invalid employee number or password")
			return
		}
		handleServiceError(h.log, w, err, "login")
		return
	}

	utils.ResponseSuccess(w, res)
}

// SendTwoFactorCode handles POST /send-2fa-code
func (h *AuthHandler) SendTwoFactorCode(w http.ResponseWriter, r *http.Request) {
	var req request.SendTwoFactorCodeRequest
	if !decodeJSON(w, r, &req) {
		return
	}

	if err := h.service.SendTwoFactorCode(r.Context(), &req); err != nil {
		handleServiceError(h.log, w, err, "send 2FA code")
		return
	}

	utils.ResponseMessage(w, "Verification code sent")
}

// VerifyTwoFactorCode handles POST /verify-2fa-code
func (h *AuthHandler) VerifyTwoFactorCode(w http.ResponseWriter, r *http.Request) {
	var req request.VerifyCodeRequest
	if !decodeJSON(w, r, &req) {
		return
	}

	if err := h.service.VerifyTwoFactorCode(r.Context(), &req); err != nil {
		handleServiceError(h.log, w, err, "verify 2FA code")
		return
	}

	utils.ResponseSuccess(w, response.VerifiedResponse{Message: "Code verified", Verified: true})
}

// CompleteTwoFactorLogin handles POST /complete-2fa-login
func (h *AuthHandler) CompleteTwoFactorLogin(w http.ResponseWriter, r *http.Request) {
	var req request.CompleteLoginRequest
	if !decodeJSON(w, r, &req) {
		return
	}

	res, err := h.service.CompleteTwoFactorLogin(r.Context(), &req)
	if err != nil {
		// nothing verified for this email means no login to complete
		if errors.Is(err, usecase.ErrNoSession) {
			h.log.Warn("complete 2FA login failed - no verified code", zap.Error(err))
			utils.ResponseNotFound(w, err.Error())
			return
		}
		handleServiceError(h.log, w, err, "complete 2FA login")
		return
	}

	utils.ResponseSuccess(w, res)
}
