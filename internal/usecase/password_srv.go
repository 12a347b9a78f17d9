package usecase

import (
	"context"
	"errors"
	"fmt"

	"hris-auth/internal/data/entity"
	"hris-auth/internal/data/repository"
	"hris-auth/internal/dto/request"
	"hris-auth/internal/dto/response"
	"hris-auth/pkg/metrics"
	"hris-auth/pkg/utils"

	"github.com/google/uuid"
	"go.uber.org/zap"
)

// PasswordService covers the unauthenticated reset flow and the
// authenticated change flow. Both share the recovery code registry.
type PasswordService interface {
	VerifyCaptcha(ctx context.Context, req *request.VerifyCaptchaRequest, remoteIP string) error
	ForgotPassword(ctx context.Context, req *request.ForgotPasswordRequest, remoteIP string) error
	VerifyResetCode(ctx context.Context, req *request.VerifyCodeRequest) (*response.VerifyResetCodeResponse, error)
	ResetPassword(ctx context.Context, req *request.SetPasswordRequest) error

	VerifyCurrentPassword(ctx context.Context, req *request.VerifyCurrentPasswordRequest) error
	SendPasswordChangeCode(ctx context.Context, req *request.SendPasswordChangeCodeRequest) error
	VerifyPasswordChangeCode(ctx context.Context, req *request.VerifyCodeRequest) error
	CompletePasswordChange(ctx context.Context, req *request.SetPasswordRequest) error
}

type passwordService struct {
	repo    *repository.Repository
	codes   *codeFlow
	hasher  PasswordHasher
	captcha CaptchaVerifier
	config  *utils.Config
	log     *zap.Logger
}

func NewPasswordService(
	repo *repository.Repository,
	config *utils.Config,
	deps Dependencies,
	log *zap.Logger,
) PasswordService {
	log = log.With(zap.String("service", "password"))

	return &passwordService{
		repo: repo,
		codes: &codeFlow{
			registry: repo.RecoveryCodes,
			notifier: deps.Notifier,
			generate: deps.Generate,
			now:      deps.Now,
			validFor: config.OTP.Expiry(),
			log:      log,
		},
		hasher:  deps.Hasher,
		captcha: deps.Captcha,
		config:  config,
		log:     log,
	}
}

func (s *passwordService) VerifyCaptcha(ctx context.Context, req *request.VerifyCaptchaRequest, remoteIP string) error {
	if err := validateRequest(req); err != nil {
		return err
	}

	return s.checkCaptcha(ctx, req.Token, remoteIP)
}

func (s *passwordService) checkCaptcha(ctx context.Context, token, remoteIP string) error {
	ok, err := s.captcha.Verify(ctx, token, remoteIP)
	if err != nil {
		s.log.Error("Captcha provider unavailable", zap.Error(err))
		return fmt.Errorf("%w: %w", ErrCaptchaUnavailable, err)
	}
	if !ok {
		s.log.Warn("Captcha rejected", zap.String("remote_ip", remoteIP))
		return ErrCaptchaFailed
	}
	return nil
}

// ForgotPassword checks the captcha before touching the user store, then
// mails a reset code to a registered address.
func (s *passwordService) ForgotPassword(ctx context.Context, req *request.ForgotPasswordRequest, remoteIP string) error {
	if err := validateRequest(req); err != nil {
		return err
	}

	if err := s.checkCaptcha(ctx, req.RecaptchaToken, remoteIP); err != nil {
		return err
	}

	user, err := s.findByEmail(ctx, req.Email)
	if err != nil {
		return err
	}

	return s.codes.issue(ctx, req.Email, &user.ID, entity.CodePurposePasswordReset)
}

func (s *passwordService) VerifyResetCode(ctx context.Context, req *request.VerifyCodeRequest) (*response.VerifyResetCodeResponse, error) {
	if err := validateRequest(req); err != nil {
		return nil, err
	}

	entry, err := s.codes.verify(ctx, req.Email, req.Code, entity.CodePurposePasswordReset)
	if err != nil {
		return nil, err
	}

	res := &response.VerifyResetCodeResponse{
		Message:  "Code verified",
		Verified: true,
	}
	if entry.UserID != nil {
		res.UserID = entry.UserID.String()
	}
	return res, nil
}

// ResetPassword replaces the password of a user holding a verified reset code.
// It does not touch the default-password flag.
func (s *passwordService) ResetPassword(ctx context.Context, req *request.SetPasswordRequest) error {
	if err := validateRequest(req); err != nil {
		return err
	}
	if req.NewPassword != req.ConfirmPassword {
		return ErrPasswordMismatch
	}
	if err := checkMaxLength(req.NewPassword); err != nil {
		return err
	}

	return s.writePassword(ctx, req.Email, req.NewPassword, "reset", s.repo.User.UpdatePassword)
}

func (s *passwordService) VerifyCurrentPassword(ctx context.Context, req *request.VerifyCurrentPasswordRequest) error {
	if err := validateRequest(req); err != nil {
		return err
	}

	user, err := s.findByEmail(ctx, req.Email)
	if err != nil {
		return err
	}

	if !s.hasher.Compare(req.CurrentPassword, user.PasswordHash) {
		s.log.Warn("Current password rejected", zap.String("email", req.Email))
		return ErrInvalidCredentials
	}
	return nil
}

func (s *passwordService) SendPasswordChangeCode(ctx context.Context, req *request.SendPasswordChangeCodeRequest) error {
	if err := validateRequest(req); err != nil {
		return err
	}

	user, err := s.findByEmail(ctx, req.Email)
	if err != nil {
		return err
	}

	return s.codes.issue(ctx, req.Email, &user.ID, entity.CodePurposePasswordChange)
}

func (s *passwordService) VerifyPasswordChangeCode(ctx context.Context, req *request.VerifyCodeRequest) error {
	if err := validateRequest(req); err != nil {
		return err
	}

	_, err := s.codes.verify(ctx, req.Email, req.Code, entity.CodePurposePasswordChange)
	return err
}

// CompletePasswordChange enforces the minimum length, writes the new hash and
// clears the default-password flag. Input is rejected before any store access.
func (s *passwordService) CompletePasswordChange(ctx context.Context, req *request.SetPasswordRequest) error {
	if err := validateRequest(req); err != nil {
		return err
	}
	if req.NewPassword != req.ConfirmPassword {
		return ErrPasswordMismatch
	}
	if minLen := s.config.Password.MinLength; len(req.NewPassword) < minLen {
		return invalidInput(ErrPasswordTooShort, fmt.Sprintf("Password must be at least %d characters", minLen))
	}
	if err := checkMaxLength(req.NewPassword); err != nil {
		return err
	}

	return s.writePassword(ctx, req.Email, req.NewPassword, "change", s.repo.User.UpdatePasswordAndClearDefault)
}

// checkMaxLength counts bytes, since bcrypt rejects anything longer.
func checkMaxLength(password string) error {
	if len(password) > utils.MaxPasswordBytes {
		return invalidInput(ErrPasswordTooLong, fmt.Sprintf("Password must be at most %d bytes", utils.MaxPasswordBytes))
	}
	return nil
}

type passwordWriter func(ctx context.Context, userID uuid.UUID, passwordHash string) error

// writePassword requires a verified recovery code, stores the new hash on the
// account the code was issued for and consumes the code.
func (s *passwordService) writePassword(ctx context.Context, email, password, flow string, write passwordWriter) error {
	entry, err := s.codes.session(ctx, email)
	if err != nil {
		return err
	}
	if entry.UserID == nil {
		s.log.Warn("Verified code carries no account", zap.String("email", email))
		return ErrNoSession
	}

	hash, err := s.hasher.Hash(password)
	if err != nil {
		s.log.Error("Failed to hash password", zap.Error(err))
		return fmt.Errorf("hash password: %w", err)
	}

	if err := write(ctx, *entry.UserID, hash); err != nil {
		if errors.Is(err, repository.ErrUserNotFound) {
			return ErrNotFound
		}
		return fmt.Errorf("%w: %w", ErrStoreFailure, err)
	}

	s.codes.discard(ctx, email, entry.Code)
	metrics.PasswordChanges.WithLabelValues(flow).Inc()
	s.log.Info("Password updated",
		zap.String("email", email),
		zap.String("user_id", entry.UserID.String()),
		zap.String("flow", flow),
	)

	return nil
}

func (s *passwordService) findByEmail(ctx context.Context, email string) (*entity.User, error) {
	user, err := s.repo.User.FindByEmail(ctx, email)
	if err != nil {
		return nil, fmt.Errorf("%w: %w", ErrStoreFailure, err)
	}
	if user == nil {
		return nil, ErrNotFound
	}
	return user, nil
}
