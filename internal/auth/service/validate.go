package service

import (
	"fmt"
	"regexp"

	"community-platform/backend/internal/auth/domain"
)

var (
	emailPattern    = regexp.MustCompile(`^[a-zA-Z0-9._%+-]+@[a-zA-Z0-9.-]+\.[a-zA-Z]{2,}$`)
	passwordPattern = regexp.MustCompile(`^[a-zA-Z0-9_.-]*$`)
)

func validateEmail(email string) error {
	if email == "" {
		return fmt.Errorf("%w: email is required", domain.ErrValidation)
	}
	if !emailPattern.MatchString(email) {
		return fmt.Errorf("%w: you must give a valid email", domain.ErrValidation)
	}
	return nil
}

func validatePassword(password string) error {
	if password == "" {
		return fmt.Errorf("%w: password is required", domain.ErrValidation)
	}
	if len(password) < 8 {
		return fmt.Errorf("%w: your password must be at least 8 characters long", domain.ErrValidation)
	}
	if len(password) > 64 {
		return fmt.Errorf("%w: your password can not be longer than 64 characters", domain.ErrValidation)
	}
	if !passwordPattern.MatchString(password) {
		return fmt.Errorf("%w: password should contain only alphabets and numbers", domain.ErrValidation)
	}
	return nil
}

func validateName(field, value string) error {
	if len(value) < 3 {
		return fmt.Errorf("%w: %s must be at least 3 characters", domain.ErrValidation, field)
	}
	return nil
}
