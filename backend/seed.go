package backend

import (
	"errors"

	"github.com/lborres/careerguide/core"
)

const DemoPassword = "password123"

// Demo account emails created by SeedDemoAccounts.
const (
	DemoStudentEmail   = "student@careerguide.dev"
	DemoCounselorEmail = "counselor@careerguide.dev"
)

// SeedDemoAccounts registers one student and one counselor sharing
// DemoPassword. Accounts that already exist are left alone.
func (b *Backend) SeedDemoAccounts() error {
	demo := []core.RegistrationInput{
		{
			FirstName: "Sam",
			LastName:  "Student",
			Email:     DemoStudentEmail,
			Password:  DemoPassword,
			Role:      core.RoleStudent,
		},
		{
			FirstName:      "Sarah",
			LastName:       "Johnson",
			Email:          DemoCounselorEmail,
			Password:       DemoPassword,
			Role:           core.RoleCounselor,
			Phone:          "+1 555 0100",
			Specialization: "Technology",
			Experience:     "8 years",
			Availability:   "Weekdays 9-17",
		},
	}

	for _, in := range demo {
		if _, err := b.Register(in.Payload()); err != nil && !errors.Is(err, ErrEmailTaken) {
			return err
		}
	}
	return nil
}
