package session

import (
	"strings"

	"github.com/najubudeen/vanturalog/internal/domain"
)

// LoginInput holds credentials for the login operation.
type LoginInput struct {
	Username string
	Password string
}

// Validate validates the login input.
func (i LoginInput) Validate() error {
	var errs []domain.FieldError

	if i.Username == "" {
		errs = append(errs, domain.FieldError{Field: "username", Message: "required"})
	} else if len(i.Username) > 255 {
		errs = append(errs, domain.FieldError{Field: "username", Message: "too long"})
	}

	if i.Password == "" {
		errs = append(errs, domain.FieldError{Field: "password", Message: "required"})
	} else if len(i.Password) > 4096 {
		errs = append(errs, domain.FieldError{Field: "password", Message: "too long"})
	}

	if len(errs) > 0 {
		return &domain.ValidationError{Errors: errs}
	}
	return nil
}

// RegisterInput holds parameters for account registration.
type RegisterInput struct {
	Username string
	Email    string
	Password string
}

// Validate validates the registration input.
func (i RegisterInput) Validate() error {
	var errs []domain.FieldError

	if i.Username == "" {
		errs = append(errs, domain.FieldError{Field: "username", Message: "required"})
	} else if len(i.Username) > 60 {
		errs = append(errs, domain.FieldError{Field: "username", Message: "too long"})
	}

	if i.Email == "" {
		errs = append(errs, domain.FieldError{Field: "email", Message: "required"})
	} else if !strings.Contains(i.Email, "@") {
		errs = append(errs, domain.FieldError{Field: "email", Message: "invalid format"})
	}

	if i.Password == "" {
		errs = append(errs, domain.FieldError{Field: "password", Message: "required"})
	} else if len(i.Password) < 8 {
		errs = append(errs, domain.FieldError{Field: "password", Message: "too short"})
	}

	if len(errs) > 0 {
		return &domain.ValidationError{Errors: errs}
	}
	return nil
}
