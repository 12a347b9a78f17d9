package response

import "hris-auth/internal/data/entity"

type LoginResponse struct {
	Email          string `json:"email"`
	EmployeeNumber string `json:"employeeNumber"`
	FullName       string `json:"fullName"`
}

type CompleteLoginResponse struct {
	Token             string `json:"token"`
	Role              string `json:"role"`
	EmployeeNumber    string `json:"employeeNumber"`
	Email             string `json:"email"`
	Username          string `json:"username"`
	FirstName         string `json:"firstName"`
	MiddleName        string `json:"middleName"`
	LastName          string `json:"lastName"`
	NameExtension     string `json:"nameExtension"`
	IsDefaultPassword bool   `json:"isDefaultPassword"`
}

type VerifiedResponse struct {
	Message  string `json:"message"`
	Verified bool   `json:"verified"`
}

func UserToLoginResponse(user *entity.User) *LoginResponse {
	return &LoginResponse{
		Email:          user.Email,
		EmployeeNumber: user.EmployeeNumber,
		FullName:       user.FullName(),
	}
}

func UserToCompleteLoginResponse(user *entity.User, token string) *CompleteLoginResponse {
	return &CompleteLoginResponse{
		Token:             token,
		Role:              string(user.Role),
		EmployeeNumber:    user.EmployeeNumber,
		Email:             user.Email,
		Username:          user.FullName(),
		FirstName:         user.FirstName,
		MiddleName:        user.MiddleName,
		LastName:          user.LastName,
		NameExtension:     user.NameExtension,
		IsDefaultPassword: user.IsDefaultPassword,
	}
}
