package session

import (
	"context"
	"errors"
)

// HintKey is the storage key holding the persisted hint.
const HintKey = "session"

const (
	hintStudent byte = 1 << iota
	hintPreauth
)

// Hint is the minimal persisted encoding of a derived state.
type Hint struct {
	IsStudent bool
	IsPreauth bool
}

// Store is the persistence collaborator, a plain key/value byte store.
// During hydration any Get error (missing key included) counts as absence.
type Store interface {
	Get(ctx context.Context, key string) ([]byte, error)
	Set(ctx context.Context, key string, value []byte) error
	Remove(ctx context.Context, key string) error
}

var errCorruptHint = errors.New("session: corrupt hint")

func hintFor(s State) Hint {
	return Hint{IsStudent: s.IsStudent(), IsPreauth: s.IsPreauthorized()}
}

// State returns the tentative state the hint stands for.
func (h Hint) State() State {
	switch {
	case h.IsStudent && h.IsPreauth:
		return StudentPreauth
	case h.IsStudent:
		return Student
	case h.IsPreauth:
		return UserPreauth
	default:
		return User
	}
}

// MarshalBinary encodes the hint as a single ASCII digit '0'..'3'.
func (h Hint) MarshalBinary() ([]byte, error) {
	var bits byte
	if h.IsStudent {
		bits |= hintStudent
	}
	if h.IsPreauth {
		bits |= hintPreauth
	}
	return []byte{'0' + bits}, nil
}

func (h *Hint) UnmarshalBinary(b []byte) error {
	if len(b) != 1 || b[0] < '0' || b[0] > '3' {
		return errCorruptHint
	}

	bits := b[0] - '0'
	h.IsStudent = bits&hintStudent != 0
	h.IsPreauth = bits&hintPreauth != 0
	return nil
}
