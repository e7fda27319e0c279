package core

import "strings"

type Role string

const (
	RoleNone      Role = ""
	RoleStudent   Role = "student"
	RoleCounselor Role = "counselor"
)

// Login types accepted by login.php. Students log in as "user".
const (
	LoginAsUser      = "user"
	LoginAsCounselor = "counselor"
)

// ParseRole normalizes a role reported by the backend. The backend calls
// students "user".
func ParseRole(s string) Role {
	switch strings.ToLower(strings.TrimSpace(s)) {
	case "student", "user":
		return RoleStudent
	case "counselor":
		return RoleCounselor
	default:
		return RoleNone
	}
}

func (r Role) Valid() bool {
	return r == RoleStudent || r == RoleCounselor
}

// NormalizeLoginAs defaults an empty login type to "user".
func NormalizeLoginAs(loginAs string) (string, error) {
	switch strings.ToLower(strings.TrimSpace(loginAs)) {
	case "", LoginAsUser, string(RoleStudent):
		return LoginAsUser, nil
	case LoginAsCounselor:
		return LoginAsCounselor, nil
	default:
		return "", ErrLoginAsInvalid
	}
}
