package entity

import "strings"

type UserRole string

const (
	RoleStaff      UserRole = "staff"
	RoleAdmin      UserRole = "administrator"
	RoleSuperAdmin UserRole = "superadmin"
	RoleTechnical  UserRole = "technical"
)

// User is the credential record of one employee joined with its person record.
type User struct {
	Base
	EmployeeNumber    string   `db:"employee_number"`
	Email             string   `db:"email"`
	PasswordHash      string   `db:"password"`
	Role              UserRole `db:"role"`
	IsDefaultPassword bool     `db:"is_default_password"`
	Person
}

// Person holds the display name components. Empty when no person row exists.
type Person struct {
	FirstName     string `db:"first_name"`
	MiddleName    string `db:"middle_name"`
	LastName      string `db:"last_name"`
	NameExtension string `db:"name_extension"`
}

// FullName joins the non-empty name components with single spaces.
func (p Person) FullName() string {
	parts := make([]string, 0, 4)
	for _, s := range []string{p.FirstName, p.MiddleName, p.LastName, p.NameExtension} {
		if s = strings.TrimSpace(s); s != "" {
			parts = append(parts, s)
		}
	}
	return strings.Join(parts, " ")
}
