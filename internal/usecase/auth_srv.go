package usecase

import (
	"context"
	"fmt"
	"strings"
	"time"

	"hris-auth/internal/data/entity"
	"hris-auth/internal/data/repository"
	"hris-auth/internal/dto/request"
	"hris-auth/internal/dto/response"
	"hris-auth/pkg/metrics"
	"hris-auth/pkg/utils"

	"go.uber.org/zap"
)

// AuthService runs the two-factor login: password check, code issue, code
// verification and token minting.
type AuthService interface {
	Login(ctx context.Context, req *request.LoginRequest) (*response.LoginResponse, error)
	SendTwoFactorCode(ctx context.Context, req *request.SendTwoFactorCodeRequest) error
	VerifyTwoFactorCode(ctx context.Context, req *request.VerifyCodeRequest) error
	CompleteTwoFactorLogin(ctx context.Context, req *request.CompleteLoginRequest) (*response.CompleteLoginResponse, error)
}

type authService struct {
	repo   *repository.Repository
	codes  *codeFlow
	hasher PasswordHasher
	config *utils.Config
	now    func() time.Time
	log    *zap.Logger
}

func NewAuthService(
	repo *repository.Repository,
	config *utils.Config,
	deps Dependencies,
	log *zap.Logger,
) AuthService {
	log = log.With(zap.String("service", "auth"))

	return &authService{
		repo: repo,
		codes: &codeFlow{
			registry: repo.LoginCodes,
			notifier: deps.Notifier,
			generate: deps.Generate,
			now:      deps.Now,
			validFor: config.OTP.Expiry(),
			log:      log,
		},
		hasher: deps.Hasher,
		config: config,
		now:    deps.Now,
		log:    log,
	}
}

func (s *authService) Login(ctx context.Context, req *request.LoginRequest) (*response.LoginResponse, error) {
	if err := validateRequest(req); err != nil {
		s.log.Warn("Login validation failed", zap.Error(err))
		return nil, err
	}

	user, err := s.repo.User.FindByEmployeeNumber(ctx, req.EmployeeNumber)
	if err != nil {
		return nil, fmt.Errorf("%w: %w", ErrStoreFailure, err)
	}
	if user == nil {
		metrics.Logins.WithLabelValues("unknown_user").Inc()
		return nil, ErrNotFound
	}

	if !s.hasher.Compare(req.Password, user.PasswordHash) {
		metrics.Logins.WithLabelValues("bad_password").Inc()
		s.log.Warn("Login rejected", zap.String("employee_number", req.EmployeeNumber))
		return nil, ErrInvalidCredentials
	}

	metrics.Logins.WithLabelValues("password_ok").Inc()
	return response.UserToLoginResponse(user), nil
}

func (s *authService) SendTwoFactorCode(ctx context.Context, req *request.SendTwoFactorCodeRequest) error {
	if err := validateRequest(req); err != nil {
		return err
	}

	user, err := s.repo.User.FindByEmailAndEmployeeNumber(ctx, req.Email, req.EmployeeNumber)
	if err != nil {
		return fmt.Errorf("%w: %w", ErrStoreFailure, err)
	}
	if user == nil {
		return ErrNotFound
	}

	return s.codes.issue(ctx, req.Email, &user.ID, entity.CodePurposeLogin)
}

func (s *authService) VerifyTwoFactorCode(ctx context.Context, req *request.VerifyCodeRequest) error {
	if err := validateRequest(req); err != nil {
		return err
	}

	_, err := s.codes.verify(ctx, req.Email, req.Code, entity.CodePurposeLogin)
	return err
}

// CompleteTwoFactorLogin mints the session token once the login code for
// req.Email has been verified. The code is consumed on success.
func (s *authService) CompleteTwoFactorLogin(ctx context.Context, req *request.CompleteLoginRequest) (*response.CompleteLoginResponse, error) {
	if err := validateRequest(req); err != nil {
		return nil, err
	}

	entry, err := s.codes.session(ctx, req.Email)
	if err != nil {
		return nil, err
	}

	user, err := s.repo.User.FindByEmailOrEmployeeNumber(ctx, req.Email, req.EmployeeNumber)
	if err != nil {
		return nil, fmt.Errorf("%w: %w", ErrStoreFailure, err)
	}
	// the token must describe the owner of the verified mailbox
	if user == nil || !strings.EqualFold(user.Email, req.Email) {
		return nil, ErrNotFound
	}

	claims := utils.Claims{
		EmployeeNumber: user.EmployeeNumber,
		Role:           string(user.Role),
		Username:       user.FullName(),
		Email:          user.Email,
		FirstName:      user.FirstName,
		MiddleName:     user.MiddleName,
		LastName:       user.LastName,
		NameExtension:  user.NameExtension,
	}
	token, err := utils.GenerateToken(claims, []byte(s.config.JWT.Secret), s.config.JWT.Expiry(), s.now())
	if err != nil {
		s.log.Error("Failed to sign token", zap.Error(err), zap.String("employee_number", user.EmployeeNumber))
		return nil, fmt.Errorf("complete login: %w", err)
	}

	s.codes.discard(ctx, req.Email, entry.Code)
	metrics.Logins.WithLabelValues("completed").Inc()
	s.log.Info("User logged in",
		zap.String("user_id", user.ID.String()),
		zap.String("employee_number", user.EmployeeNumber),
	)

	return response.UserToCompleteLoginResponse(user, token), nil
}
