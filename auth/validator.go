package auth

import (
	"chat-shell/errors"
	stderrors "errors"
	"fmt"
	"strings"

	"github.com/go-playground/validator/v10"
)

var validate = validator.New()

type LoginRequest struct {
	Email    string `json:"email" validate:"required,email"`
	Password string `json:"password" validate:"required"`
}

type RegisterRequest struct {
	Name     string `json:"name" validate:"required,max=100"`
	Email    string `json:"email" validate:"required,email"`
	Password string `json:"password" validate:"required,min=6,max=72"`
}

// ProfileUpdateRequest is the PATCH body: only changed fields are sent.
type ProfileUpdateRequest struct {
	Name     *string `json:"name,omitempty" validate:"omitempty,min=1,max=100"`
	Password *string `json:"password,omitempty" validate:"omitempty,min=6,max=72"`
}

func (r ProfileUpdateRequest) IsEmpty() bool {
	return r.Name == nil && r.Password == nil
}

func ValidateLogin(req LoginRequest) error {
	return check(req)
}

func ValidateRegister(req RegisterRequest) error {
	if strings.TrimSpace(req.Name) == "" {
		return errors.New(errors.KindValidation, "name is required")
	}
	return check(req)
}

func ValidateProfileUpdate(req ProfileUpdateRequest) error {
	if req.Name != nil && strings.TrimSpace(*req.Name) == "" {
		return errors.New(errors.KindValidation, "name cannot be blank")
	}
	return check(req)
}

// check turns the first failing rule into a display message such as
// "email must be a valid email".
func check(req any) error {
	err := validate.Struct(req)
	if err == nil {
		return nil
	}
	var fieldErrors validator.ValidationErrors
	if !stderrors.As(err, &fieldErrors) || len(fieldErrors) == 0 {
		return errors.Wrap(errors.KindValidation, "invalid input", err)
	}
	return errors.Wrap(errors.KindValidation, describe(fieldErrors[0]), err)
}

func describe(fe validator.FieldError) string {
	field := strings.ToLower(fe.Field())
	switch fe.Tag() {
	case "required":
		return fmt.Sprintf("%s is required", field)
	case "email":
		return fmt.Sprintf("%s must be a valid email", field)
	case "min":
		return fmt.Sprintf("%s must be at least %s characters", field, fe.Param())
	case "max":
		return fmt.Sprintf("%s must be at most %s characters", field, fe.Param())
	default:
		return fmt.Sprintf("%s is invalid", field)
	}
}
