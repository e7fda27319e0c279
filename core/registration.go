package core

import (
	"regexp"
	"strings"
)

const MinPasswordLength = 6

var emailPattern = regexp.MustCompile(`^[^\s@]+@[^\s@]+\.[^\s@]+$`)

// RegistrationInput is the sign-up form as collected from the user.
type RegistrationInput struct {
	FirstName string
	LastName  string
	Email     string
	Password  string
	Role      Role

	// Counselor only
	Phone          string
	Specialization string
	Experience     string
	Availability   string
}

// RegistrationPayload is the body sent to register.php. Counselor fields are
// omitted for students.
type RegistrationPayload struct {
	FirstName      string `json:"firstName"`
	LastName       string `json:"lastName"`
	Email          string `json:"email"`
	Password       string `json:"password"`
	Role           Role   `json:"role"`
	Phone          string `json:"phone,omitempty"`
	Specialization string `json:"specialization,omitempty"`
	Experience     string `json:"experience,omitempty"`
	Availability   string `json:"availability,omitempty"`
}

func (in RegistrationInput) Validate() error {
	switch {
	case strings.TrimSpace(in.FirstName) == "":
		return ErrFirstNameRequired
	case strings.TrimSpace(in.LastName) == "":
		return ErrLastNameRequired
	case strings.TrimSpace(in.Email) == "":
		return ErrEmailRequired
	case in.Password == "":
		return ErrPasswordRequired
	case !in.Role.Valid():
		return ErrRoleInvalid
	}

	if len(in.Password) < MinPasswordLength {
		return ErrPasswordTooShort
	}
	if !ValidEmail(in.Email) {
		return ErrInvalidEmail
	}

	if in.Role == RoleCounselor {
		for _, field := range []string{in.Phone, in.Specialization, in.Experience, in.Availability} {
			if strings.TrimSpace(field) == "" {
				return ErrCounselorFieldsMissing
			}
		}
	}
	return nil
}

// Payload shapes the request body for the input's role.
func (in RegistrationInput) Payload() RegistrationPayload {
	p := RegistrationPayload{
		FirstName: strings.TrimSpace(in.FirstName),
		LastName:  strings.TrimSpace(in.LastName),
		Email:     strings.TrimSpace(in.Email),
		Password:  in.Password,
		Role:      in.Role,
	}
	if in.Role == RoleCounselor {
		p.Phone = strings.TrimSpace(in.Phone)
		p.Specialization = strings.TrimSpace(in.Specialization)
		p.Experience = strings.TrimSpace(in.Experience)
		p.Availability = strings.TrimSpace(in.Availability)
	}
	return p
}

func ValidEmail(email string) bool {
	return emailPattern.MatchString(email)
}
