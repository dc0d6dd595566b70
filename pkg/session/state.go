package session

import "github.com/aussiebroadwan/banksync/pkg/jwtx"

// State is the derived authentication state.
type State int

const (
	Anonymous State = iota
	User
	UserPreauth
	Student
	StudentPreauth
)

func (s State) String() string {
	switch s {
	case Anonymous:
		return "anonymous"
	case User:
		return "user"
	case UserPreauth:
		return "user_preauth"
	case Student:
		return "student"
	case StudentPreauth:
		return "student_preauth"
	default:
		return "unknown"
	}
}

// IsStudent reports whether s is one of the student states.
func (s State) IsStudent() bool { return s == Student || s == StudentPreauth }

// IsPreauthorized reports whether s is one of the preauthorized states.
func (s State) IsPreauthorized() bool { return s == UserPreauth || s == StudentPreauth }

// Derive maps decoded claims to a state. Any kind other than student is
// treated as a regular user.
func Derive(c jwtx.Claims) State {
	preauth := c.IsPreauthorized()

	if c.IsStudent() {
		if preauth {
			return StudentPreauth
		}
		return Student
	}

	if preauth {
		return UserPreauth
	}
	return User
}
