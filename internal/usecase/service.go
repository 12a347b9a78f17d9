package usecase

import (
	"context"
	"time"

	"hris-auth/internal/data/entity"
	"hris-auth/internal/data/repository"
	"hris-auth/pkg/utils"

	"go.uber.org/zap"
)

// Notifier delivers a one-time code to the user's registered address.
type Notifier interface {
	SendCode(ctx context.Context, email, code string, purpose entity.CodePurpose) error
}

// CaptchaVerifier reports false for a rejected token and an error when the
// provider could not be reached.
type CaptchaVerifier interface {
	Verify(ctx context.Context, token, remoteIP string) (bool, error)
}

type PasswordHasher interface {
	Hash(password string) (string, error)
	Compare(password, hash string) bool
}

// Dependencies are the external collaborators of the auth core. Zero values of
// Hasher, Now and Generate fall back to the production implementations.
type Dependencies struct {
	Notifier Notifier
	Captcha  CaptchaVerifier
	Hasher   PasswordHasher
	Now      func() time.Time
	Generate func() (string, error)
}

type Service struct {
	Auth     AuthService
	Password PasswordService
}

func NewService(repo *repository.Repository, config *utils.Config, deps Dependencies, log *zap.Logger) *Service {
	if deps.Hasher == nil {
		deps.Hasher = utils.NewPasswordHasher(config.Password.BcryptCost)
	}
	if deps.Now == nil {
		deps.Now = time.Now
	}
	if deps.Generate == nil {
		deps.Generate = utils.GenerateOTP
	}

	return &Service{
		Auth:     NewAuthService(repo, config, deps, log),
		Password: NewPasswordService(repo, config, deps, log),
	}
}

func validateRequest(req any) error {
	if errs := utils.ValidateStruct(req); len(errs) > 0 {
		return invalidInput(ErrFieldMissing, "Validation failed: "+utils.FormatValidationErrors(errs))
	}
	return nil
}
