package validators

import "strings"

type UserRegistrationRequest struct {
	Name     string `json:"name" validate:"required,min=2,max=100"`
	Email    string `json:"email" validate:"required,email"`
	Phone    string `json:"phone" validate:"required,phone_number"`
	Password string `json:"password" validate:"required,min=6,max=128"`
}

type UserLoginRequest struct {
	Email    string `json:"email" validate:"required,email"`
	Password string `json:"password" validate:"required"`
}

func (r *UserRegistrationRequest) Normalize() {
	r.Name = strings.TrimSpace(r.Name)
	r.Email = strings.ToLower(strings.TrimSpace(r.Email))
	r.Phone = strings.TrimSpace(r.Phone)
}

func (r *UserLoginRequest) Normalize() {
	r.Email = strings.ToLower(strings.TrimSpace(r.Email))
}

func ValidateUserRegistration(req *UserRegistrationRequest) error {
	req.Normalize()
	return ValidateStruct(req).AppError()
}

func ValidateUserLogin(req *UserLoginRequest) error {
	req.Normalize()
	return ValidateStruct(req).AppError()
}
