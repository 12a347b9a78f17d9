package usecase

import (
	"context"
	"crypto/subtle"
	"fmt"
	"time"

	"hris-auth/internal/data/entity"
	"hris-auth/internal/data/repository"
	"hris-auth/pkg/metrics"

	"github.com/google/uuid"
	"go.uber.org/zap"
)

// codeFlow runs the issue, verify and consume steps of one code registry.
type codeFlow struct {
	registry repository.CodeRegistry
	notifier Notifier
	generate func() (string, error)
	now      func() time.Time
	validFor time.Duration
	log      *zap.Logger
}

// issue stores a fresh code for email, replacing any earlier one, and mails it.
// When delivery fails the stored code is withdrawn unless a newer one replaced it.
func (f *codeFlow) issue(ctx context.Context, email string, userID *uuid.UUID, purpose entity.CodePurpose) error {
	code, err := f.generate()
	if err != nil {
		f.log.Error("Failed to generate code", zap.Error(err))
		return fmt.Errorf("generate code: %w", err)
	}

	entry := &entity.CodeEntry{
		Code:      code,
		ExpiresAt: f.now().Add(f.validFor),
		UserID:    userID,
	}
	if err := f.registry.Set(ctx, email, entry, f.validFor); err != nil {
		f.log.Error("Failed to store code", zap.Error(err), zap.String("email", email))
		return fmt.Errorf("%w: store code: %w", ErrStoreFailure, err)
	}
	metrics.CodesIssued.WithLabelValues(string(purpose)).Inc()

	if err := f.notifier.SendCode(ctx, email, code, purpose); err != nil {
		f.log.Error("Failed to send code",
			zap.Error(err),
			zap.String("email", email),
			zap.String("purpose", string(purpose)),
		)
		f.discard(ctx, email, code)
		return fmt.Errorf("%w: %w", ErrDispatchFailure, err)
	}

	f.log.Info("Code issued", zap.String("email", email), zap.String("purpose", string(purpose)))
	return nil
}

// verify checks code against the live entry and marks it verified on a match.
// A mismatch leaves the entry untouched; an expired entry is discarded. An entry
// replaced between the read and the mark counts as a mismatch.
func (f *codeFlow) verify(ctx context.Context, email, code string, purpose entity.CodePurpose) (*entity.CodeEntry, error) {
	entry, err := f.registry.Get(ctx, email)
	if err != nil {
		f.log.Error("Failed to read code", zap.Error(err), zap.String("email", email))
		return nil, fmt.Errorf("%w: read code: %w", ErrStoreFailure, err)
	}

	result := "verified"
	defer func() {
		metrics.CodeVerifications.WithLabelValues(string(purpose), result).Inc()
	}()

	if entry == nil {
		result = "not_found"
		return nil, ErrNoCodeFound
	}

	if entry.Expired(f.now()) {
		result = "expired"
		f.discard(ctx, email, entry.Code)
		return nil, ErrCodeExpired
	}

	if subtle.ConstantTimeCompare([]byte(code), []byte(entry.Code)) != 1 {
		result = "mismatch"
		return nil, ErrCodeMismatch
	}

	marked, err := f.registry.MarkVerified(ctx, email, entry.Code)
	if err != nil {
		result = "error"
		f.log.Error("Failed to mark code verified", zap.Error(err), zap.String("email", email))
		return nil, fmt.Errorf("%w: store code: %w", ErrStoreFailure, err)
	}
	if !marked {
		result = "mismatch"
		return nil, ErrCodeMismatch
	}

	entry.Verified = true
	return entry, nil
}

// session returns the verified, unexpired entry for email or ErrNoSession.
func (f *codeFlow) session(ctx context.Context, email string) (*entity.CodeEntry, error) {
	entry, err := f.registry.Get(ctx, email)
	if err != nil {
		f.log.Error("Failed to read code", zap.Error(err), zap.String("email", email))
		return nil, fmt.Errorf("%w: read code: %w", ErrStoreFailure, err)
	}
	if entry == nil || !entry.Verified {
		return nil, ErrNoSession
	}
	if entry.Expired(f.now()) {
		f.discard(ctx, email, entry.Code)
		return nil, ErrNoSession
	}

	return entry, nil
}

// discard removes the entry for email while it still holds code, so a newer
// code issued in the meantime survives. Failures are logged only.
func (f *codeFlow) discard(ctx context.Context, email, code string) {
	if _, err := f.registry.DeleteIf(ctx, email, code); err != nil {
		f.log.Warn("Failed to delete code", zap.Error(err), zap.String("email", email))
	}
}
