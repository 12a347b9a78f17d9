package repository

import (
	"hris-auth/pkg/database"

	"go.uber.org/zap"
)

// Repository groups the credential store with the two code registries. The
// login and recovery registries are separate so a code minted for one flow
// cannot be replayed in the other.
type Repository struct {
	User          UserRepository
	LoginCodes    CodeRegistry
	RecoveryCodes CodeRegistry
}

func NewRepository(db database.PgxIface, loginCodes, recoveryCodes CodeRegistry, log *zap.Logger) *Repository {
	return &Repository{
		User:          NewUserRepository(db, log),
		LoginCodes:    loginCodes,
		RecoveryCodes: recoveryCodes,
	}
}
