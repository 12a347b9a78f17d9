package repository

import (
	"context"
	"errors"
	"fmt"

	"hris-auth/internal/data/entity"
	"hris-auth/pkg/database"

	"github.com/google/uuid"
	"github.com/jackc/pgx/v5"
	"go.uber.org/zap"
)

// ErrUserNotFound is returned by updates that matched no credential row.
var ErrUserNotFound = errors.New("user not found")

type UserRepository interface {
	FindByEmployeeNumber(ctx context.Context, employeeNumber string) (*entity.User, error)
	FindByEmail(ctx context.Context, email string) (*entity.User, error)
	FindByEmailAndEmployeeNumber(ctx context.Context, email, employeeNumber string) (*entity.User, error)
	FindByEmailOrEmployeeNumber(ctx context.Context, email, employeeNumber string) (*entity.User, error)
	UpdatePassword(ctx context.Context, id uuid.UUID, passwordHash string) error
	UpdatePasswordAndClearDefault(ctx context.Context, id uuid.UUID, passwordHash string) error
}

type userRepository struct {
	db  database.PgxIface
	log *zap.Logger
}

func NewUserRepository(db database.PgxIface, log *zap.Logger) UserRepository {
	return &userRepository{
		db:  db,
		log: log.With(zap.String("repository", "user")),
	}
}

// selectUser reads the credential row together with the optional person row.
const selectUser = `
	SELECT u.id, u.employee_number, u.email, u.password, u.role,
	       u.is_default_password, u.created_at, u.updated_at,
	       COALESCE(p.first_name, ''), COALESCE(p.middle_name, ''),
	       COALESCE(p.last_name, ''), COALESCE(p.name_extension, '')
	FROM users u
	LEFT JOIN person_table p ON p.employee_number = u.employee_number
`

func (ur *userRepository) FindByEmployeeNumber(ctx context.Context, employeeNumber string) (*entity.User, error) {
	query := selectUser + `WHERE u.employee_number = $1`

	user, err := ur.scanOne(ur.db.QueryRow(ctx, query, employeeNumber))
	if err != nil {
		ur.log.Error("Failed to find user by employee number",
			zap.Error(err),
			zap.String("employee_number", employeeNumber),
		)
		return nil, fmt.Errorf("find user by employee number %s: %w", employeeNumber, err)
	}

	return user, nil
}

func (ur *userRepository) FindByEmail(ctx context.Context, email string) (*entity.User, error) {
	query := selectUser + `WHERE u.email = $1 ORDER BY u.created_at, u.id LIMIT 1`

	user, err := ur.scanOne(ur.db.QueryRow(ctx, query, email))
	if err != nil {
		ur.log.Error("Failed to find user by email",
			zap.Error(err),
			zap.String("email", email),
		)
		return nil, fmt.Errorf("find user by email %s: %w", email, err)
	}

	return user, nil
}

// FindByEmailAndEmployeeNumber requires both identifiers to point at the same row.
func (ur *userRepository) FindByEmailAndEmployeeNumber(ctx context.Context, email, employeeNumber string) (*entity.User, error) {
	query := selectUser + `WHERE u.email = $1 AND u.employee_number = $2`

	user, err := ur.scanOne(ur.db.QueryRow(ctx, query, email, employeeNumber))
	if err != nil {
		ur.log.Error("Failed to find user by email and employee number",
			zap.Error(err),
			zap.String("email", email),
			zap.String("employee_number", employeeNumber),
		)
		return nil, fmt.Errorf("find user by email %s and employee number %s: %w", email, employeeNumber, err)
	}

	return user, nil
}

func (ur *userRepository) FindByEmailOrEmployeeNumber(ctx context.Context, email, employeeNumber string) (*entity.User, error) {
	// a row matching the email always wins over one matching only the number
	query := selectUser + `
		WHERE u.email = $1 OR u.employee_number = $2
		ORDER BY (u.email = $1) DESC, (u.employee_number = $2) DESC
		LIMIT 1
	`

	user, err := ur.scanOne(ur.db.QueryRow(ctx, query, email, employeeNumber))
	if err != nil {
		ur.log.Error("Failed to find user by email or employee number",
			zap.Error(err),
			zap.String("email", email),
			zap.String("employee_number", employeeNumber),
		)
		return nil, fmt.Errorf("find user by email %s or employee number %s: %w", email, employeeNumber, err)
	}

	return user, nil
}

// UpdatePassword writes one row by id; email is shared between accounts.
func (ur *userRepository) UpdatePassword(ctx context.Context, id uuid.UUID, passwordHash string) error {
	query := `
		UPDATE users
		SET password = $2, updated_at = NOW()
		WHERE id = $1
	`

	return ur.execPasswordUpdate(ctx, query, id, passwordHash)
}

// UpdatePasswordAndClearDefault is the only write that resets is_default_password.
func (ur *userRepository) UpdatePasswordAndClearDefault(ctx context.Context, id uuid.UUID, passwordHash string) error {
	query := `
		UPDATE users
		SET password = $2, is_default_password = FALSE, updated_at = NOW()
		WHERE id = $1
	`

	return ur.execPasswordUpdate(ctx, query, id, passwordHash)
}

func (ur *userRepository) execPasswordUpdate(ctx context.Context, query string, id uuid.UUID, passwordHash string) error {
	result, err := ur.db.Exec(ctx, query, id, passwordHash)
	if err != nil {
		ur.log.Error("Failed to update password",
			zap.Error(err),
			zap.String("user_id", id.String()),
		)
		return fmt.Errorf("update password for user %s: %w", id, err)
	}

	if result.RowsAffected() == 0 {
		return fmt.Errorf("update password for user %s: %w", id, ErrUserNotFound)
	}

	return nil
}

// scanOne returns (nil, nil) when the row does not exist.
func (ur *userRepository) scanOne(row pgx.Row) (*entity.User, error) {
	var user entity.User
	err := row.Scan(
		&user.ID,
		&user.EmployeeNumber,
		&user.Email,
		&user.PasswordHash,
		&user.Role,
		&user.IsDefaultPassword,
		&user.CreatedAt,
		&user.UpdatedAt,
		&user.FirstName,
		&user.MiddleName,
		&user.LastName,
		&user.NameExtension,
	)

	if errors.Is(err, pgx.ErrNoRows) {
		return nil, nil
	}
	if err != nil {
		return nil, err
	}

	return &user, nil
}
