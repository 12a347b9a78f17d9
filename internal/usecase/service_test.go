package usecase

import (
	"context"
	"errors"
	"fmt"
	"sync"
	"testing"
	"time"

	"hris-auth/internal/data/entity"
	"hris-auth/internal/data/repository"
	"hris-auth/pkg/utils"

	"github.com/google/uuid"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"
	"golang.org/x/crypto/bcrypt"
)

// --- fakes ---

type fakeUserRepo struct {
	mu      sync.Mutex
	users   []*entity.User
	findErr error
	writes  int
}

func (f *fakeUserRepo) find(match func(*entity.User) bool) (*entity.User, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	if f.findErr != nil {
		return nil, f.findErr
	}
	for _, u := range f.users {
		if match(u) {
			c := *u
			return &c, nil
		}
	}
	return nil, nil
}

func (f *fakeUserRepo) FindByEmployeeNumber(_ context.Context, employeeNumber string) (*entity.User, error) {
	return f.find(func(u *entity.User) bool { return u.EmployeeNumber == employeeNumber })
}

func (f *fakeUserRepo) FindByEmail(_ context.Context, email string) (*entity.User, error) {
	return f.find(func(u *entity.User) bool { return u.Email == email })
}

func (f *fakeUserRepo) FindByEmailAndEmployeeNumber(_ context.Context, email, employeeNumber string) (*entity.User, error) {
	return f.find(func(u *entity.User) bool { return u.Email == email && u.EmployeeNumber == employeeNumber })
}

func (f *fakeUserRepo) FindByEmailOrEmployeeNumber(_ context.Context, email, employeeNumber string) (*entity.User, error) {
	if u, err := f.FindByEmail(context.Background(), email); u != nil || err != nil {
		return u, err
	}
	return f.FindByEmployeeNumber(context.Background(), employeeNumber)
}

func (f *fakeUserRepo) UpdatePassword(_ context.Context, id uuid.UUID, hash string) error {
	return f.update(id, hash, false)
}

func (f *fakeUserRepo) UpdatePasswordAndClearDefault(_ context.Context, id uuid.UUID, hash string) error {
	return f.update(id, hash, true)
}

func (f *fakeUserRepo) update(id uuid.UUID, hash string, clearDefault bool) error {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.writes++
	for _, u := range f.users {
		if u.ID == id {
			u.PasswordHash = hash
			if clearDefault {
				u.IsDefaultPassword = false
			}
			return nil
		}
	}
	return fmt.Errorf("update password for user %s: %w", id, repository.ErrUserNotFound)
}

type sentCode struct {
	email   string
	code    string
	purpose entity.CodePurpose
}

type fakeNotifier struct {
	mu   sync.Mutex
	sent []sentCode
	err  error
}

func (f *fakeNotifier) SendCode(_ context.Context, email, code string, purpose entity.CodePurpose) error {
	f.mu.Lock()
	defer f.mu.Unlock()
	if f.err != nil {
		return f.err
	}
	f.sent = append(f.sent, sentCode{email: email, code: code, purpose: purpose})
	return nil
}

func (f *fakeNotifier) last() sentCode {
	f.mu.Lock()
	defer f.mu.Unlock()
	return f.sent[len(f.sent)-1]
}

type fakeCaptcha struct {
	ok    bool
	err   error
	calls int
}

func (f *fakeCaptcha) Verify(_ context.Context, token, _ string) (bool, error) {
	f.calls++
	return f.ok && token != "", f.err
}

type fakeClock struct {
	mu  sync.Mutex
	now time.Time
}

func (c *fakeClock) Now() time.Time {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.now
}

func (c *fakeClock) Advance(d time.Duration) {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.now = c.now.Add(d)
}

// sequenceGenerator hands out 100001, 100002, ... so every issued code differs.
func sequenceGenerator() func() (string, error) {
	var mu sync.Mutex
	n := 100000
	return func() (string, error) {
		mu.Lock()
		defer mu.Unlock()
		n++
		return fmt.Sprintf("%d", n), nil
	}
}

// --- fixture ---

type fixture struct {
	users    *fakeUserRepo
	login    *repository.MemoryCodeRegistry
	recovery *repository.MemoryCodeRegistry
	notifier *fakeNotifier
	captcha  *fakeCaptcha
	clock    *fakeClock
	hasher   *utils.PasswordHasher
	config   *utils.Config
	service  *Service
}

const (
	testEmail    = "e100@example.com"
	testNumber   = "E100"
	testPassword = "correct"
)

func newFixture(t *testing.T) *fixture {
	t.Helper()

	hasher := utils.NewPasswordHasher(bcrypt.MinCost)
	hash, err := hasher.Hash(testPassword)
	require.NoError(t, err)

	f := &fixture{
		users: &fakeUserRepo{users: []*entity.User{{
			Base:              entity.Base{ID: uuid.New()},
			EmployeeNumber:    testNumber,
			Email:             testEmail,
			PasswordHash:      hash,
			Role:              entity.RoleStaff,
			IsDefaultPassword: true,
			Person:            entity.Person{FirstName: "Juan", MiddleName: "Santos", LastName: "Dela Cruz"},
		}}},
		login:    repository.NewMemoryCodeRegistry(),
		recovery: repository.NewMemoryCodeRegistry(),
		notifier: &fakeNotifier{},
		captcha:  &fakeCaptcha{ok: true},
		clock:    &fakeClock{now: time.Date(2024, 3, 1, 8, 0, 0, 0, time.UTC)},
		hasher:   hasher,
		config: &utils.Config{
			JWT:      utils.JWTConfig{Secret: "test-secret", ExpiryHours: 10},
			OTP:      utils.OTPConfig{ExpiryMinutes: 15},
			Password: utils.PasswordConfig{BcryptCost: bcrypt.MinCost, MinLength: 6},
		},
	}

	f.service = f.rewire(f.notifier, f.login, f.recovery)
	return f
}

// rewire builds a service over the fixture's users and clock with the given
// notifier and registries.
func (f *fixture) rewire(notifier Notifier, login, recovery repository.CodeRegistry) *Service {
	repo := &repository.Repository{User: f.users, LoginCodes: login, RecoveryCodes: recovery}
	return NewService(repo, f.config, Dependencies{
		Notifier: notifier,
		Captcha:  f.captcha,
		Hasher:   f.hasher,
		Now:      f.clock.Now,
		Generate: sequenceGenerator(),
	}, zap.NewNop())
}

// failingRegistry reports a store outage on every call.
type failingRegistry struct{}

var errRegistryDown = errors.New("registry down")

func (failingRegistry) Set(context.Context, string, *entity.CodeEntry, time.Duration) error {
	return errRegistryDown
}

func (failingRegistry) Get(context.Context, string) (*entity.CodeEntry, error) {
	return nil, errRegistryDown
}

func (failingRegistry) MarkVerified(context.Context, string, string) (bool, error) {
	return false, errRegistryDown
}

func (failingRegistry) DeleteIf(context.Context, string, string) (bool, error) {
	return false, errRegistryDown
}

func (failingRegistry) Delete(context.Context, string) error {
	return errRegistryDown
}
