package adaptor

import (
	"encoding/json"
	"errors"
	"net"
	"net/http"
	"strings"

	"hris-auth/internal/usecase"
	"hris-auth/pkg/utils"

	"go.uber.org/zap"
)

type Handler struct {
	Auth     *AuthHandler
	Password *PasswordHandler
}

func NewHandler(service *usecase.Service, log *zap.Logger) *Handler {
	return &Handler{
		Auth:     NewAuthHandler(service.Auth, log),
		Password: NewPasswordHandler(service.Password, log),
	}
}

// decodeJSON reads the body into dst and answers 400 itself when it cannot.
func decodeJSON(w http.ResponseWriter, r *http.Request, dst any) bool {
	if err := json.NewDecoder(r.Body).Decode(dst); err != nil {
		utils.ResponseBadRequest(w, "Invalid request body")
		return false
	}
	return true
}

// requireOwnEmail rejects an authenticated request that names another user's email.
// An empty email is left for the service to reject as missing.
func requireOwnEmail(log *zap.Logger, w http.ResponseWriter, r *http.Request, email string) bool {
	claims, ok := utils.GetClaimsFromContext(r.Context())
	if !ok {
		utils.ResponseUnauthorized(w, "Unauthorized")
		return false
	}
	if email != "" && !strings.EqualFold(claims.Email, email) {
		handleServiceError(log, w, usecase.ErrEmailMismatch, "authorize "+r.URL.Path)
		return false
	}
	return true
}

func clientIP(r *http.Request) string {
	host, _, err := net.SplitHostPort(r.RemoteAddr)
	if err != nil {
		return r.RemoteAddr
	}
	return host
}

// handleServiceError maps a service failure onto its status code.
// Client-side failures carry their own message; server-side ones are masked.
func handleServiceError(log *zap.Logger, w http.ResponseWriter, err error, operation string) {
	switch {
	case errors.Is(err, usecase.ErrFieldMissing),
		errors.Is(err, usecase.ErrPasswordMismatch),
		errors.Is(err, usecase.ErrPasswordTooShort),
		errors.Is(err, usecase.ErrPasswordTooLong):
		log.Warn(operation+" validation failed", zap.Error(err))
		utils.ResponseBadRequest(w, err.Error())

	case errors.Is(err, usecase.ErrNoCodeFound),
		errors.Is(err, usecase.ErrCodeExpired),
		errors.Is(err, usecase.ErrCodeMismatch):
		log.Warn(operation+" failed - code rejected", zap.Error(err))
		utils.ResponseBadRequest(w, err.Error())

	case errors.Is(err, usecase.ErrNoSession):
		log.Warn(operation+" failed - no verified code", zap.Error(err))
		utils.ResponseBadRequest(w, err.Error())

	case errors.Is(err, usecase.ErrInvalidCredentials):
		log.Warn(operation+" failed - invalid credentials", zap.Error(err))
		utils.ResponseBadRequest(w, err.Error())

	case errors.Is(err, usecase.ErrCaptchaFailed):
		log.Warn(operation+" failed - captcha rejected", zap.Error(err))
		utils.ResponseBadRequest(w, err.Error())

	case errors.Is(err, usecase.ErrEmailMismatch):
		log.Warn(operation+" failed - email mismatch", zap.Error(err))
		utils.ResponseForbidden(w, err.Error())

	case errors.Is(err, usecase.ErrNotFound):
		log.Warn(operation+" failed - not found", zap.Error(err))
		utils.ResponseNotFound(w, err.Error())

	case errors.Is(err, usecase.ErrCaptchaUnavailable):
		log.Error(operation+" failed - captcha unavailable", zap.Error(err))
		utils.ResponseInternalError(w, usecase.ErrCaptchaUnavailable.Error())

	case errors.Is(err, usecase.ErrDispatchFailure):
		log.Error(operation+" failed - code not delivered", zap.Error(err))
		utils.ResponseInternalError(w, usecase.ErrDispatchFailure.Error())

	default:
		log.Error("Failed to "+operation, zap.Error(err), zap.String("operation", operation))
		utils.ResponseInternalError(w, "Internal server error")
	}
}
