package backend

import (
	"strconv"

	"github.com/shopspring/decimal"

	"github.com/lborres/careerguide/core"
)

// Directory returns the static counselor directory served by the backend.
func Directory() []core.Counselor {
	return []core.Counselor{
		{
			ID:           1,
			Name:         "Dr. Sarah Johnson",
			Specialty:    "Technology",
			Experience:   "8 years",
			Rating:       4.8,
			Reviews:      127,
			Availability: "Available",
			Avatar:       "👩‍💼",
			Description:  "Expert in software development careers and tech industry transitions.",
			Languages:    []string{"English", "Spanish"},
			HourlyRate:   decimal.NewFromInt(75),
		},
		{
			ID:           2,
			Name:         "Michael Chen",
			Specialty:    "Healthcare",
			Experience:   "12 years",
			Rating:       4.9,
			Reviews:      203,
			Availability: "Available",
			Avatar:       "👨‍⚕️",
			Description:  "Specialized in medical careers, nursing, and healthcare administration.",
			Languages:    []string{"English", "Mandarin"},
			HourlyRate:   decimal.NewFromInt(85),
		},
		{
			ID:           3,
			Name:         "Dr. Emily Rodriguez",
			Specialty:    "Business",
			Experience:   "10 years",
			Rating:       4.7,
			Reviews:      156,
			Availability: "Available",
			Avatar:       "👩‍💼",
			Description:  "Career strategist for business professionals and entrepreneurs.",
			Languages:    []string{"English", "Portuguese"},
			HourlyRate:   decimal.NewFromInt(90),
		},
		{
			ID:           4,
			Name:         "James Wilson",
			Specialty:    "Engineering",
			Experience:   "15 years",
			Rating:       4.9,
			Reviews:      189,
			Availability: "Available",
			Avatar:       "👨‍🔬",
			Description:  "Mechanical and electrical engineering career guidance expert.",
			Languages:    []string{"English"},
			HourlyRate:   decimal.NewFromInt(80),
		},
		{
			ID:           5,
			Name:         "Lisa Thompson",
			Specialty:    "Education",
			Experience:   "6 years",
			Rating:       4.6,
			Reviews:      94,
			Availability: "Available",
			Avatar:       "👩‍🏫",
			Description:  "Educational leadership and teaching career development specialist.",
			Languages:    []string{"English", "French"},
			HourlyRate:   decimal.NewFromInt(70),
		},
	}
}

func (b *Backend) Counselors() []core.Counselor {
	b.mu.RLock()
	defer b.mu.RUnlock()
	out := make([]core.Counselor, len(b.counselors))
	copy(out, b.counselors)
	return out
}

func (b *Backend) Counselor(id string) (*core.Counselor, error) {
	n, err := strconv.Atoi(id)
	if err != nil {
		return nil, ErrCounselorNotFound
	}

	b.mu.RLock()
	defer b.mu.RUnlock()
	for _, c := range b.counselors {
		if c.ID == n {
			found := c
			return &found, nil
		}
	}
	return nil, ErrCounselorNotFound
}
